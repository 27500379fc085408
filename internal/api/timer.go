package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

// StateResponse is the live read model polled by a display.
type StateResponse struct {
	TimerState        model.TimerState `json:"timerState"`
	ActiveEntry       *model.TimeEntry `json:"activeEntry"`
	ElapsedSeconds    int64            `json:"elapsedSeconds"`
	TodayTotalMinutes float64          `json:"todayTotalMinutes"`
}

type StartRequest struct {
	ProjectID string `json:"projectId"`
}

type ForgotPauseRequest struct {
	Minutes int               `json:"minutes"`
	Action  tracker.FixAction `json:"action" binding:"required,oneof=end resume"`
}

type ForgotStopRequest struct {
	Minutes int `json:"minutes"`
}

func GetState(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		resp := StateResponse{
			TimerState:        tr.TimerState(),
			ElapsedSeconds:    tr.ElapsedSeconds(),
			TodayTotalMinutes: tr.TodayTotalMinutes(),
		}
		if e, ok := tr.ActiveEntry(); ok {
			resp.ActiveEntry = &e
		}
		c.JSON(http.StatusOK, resp)
	}
}

func StartTimer(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		e, err := tr.Start(req.ProjectID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

// transition adapts a no-argument timer operation to a handler.
func transition(op func() (model.TimeEntry, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		e, err := op()
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func PauseTimer(tr *tracker.Tracker) gin.HandlerFunc  { return transition(tr.Pause) }
func ResumeTimer(tr *tracker.Tracker) gin.HandlerFunc { return transition(tr.Resume) }
func StopTimer(tr *tracker.Tracker) gin.HandlerFunc   { return transition(tr.Stop) }

func FixForgotPause(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotPauseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e, err := tr.FixForgotPause(req.Minutes, req.Action)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func FixForgotStop(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ForgotStopRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e, err := tr.FixForgotStop(req.Minutes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func SetActiveProject(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartRequest
		if !bindOptionalJSON(c, &req) {
			return
		}
		e, err := tr.UpdateActiveProject(req.ProjectID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}
