// Package api exposes the tracker over JSON HTTP endpoints for a
// presentation layer.
package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/sa3aty/internal/tracker"
)

// NewRouter wires every endpoint onto a gin engine. A nil logger uses
// log.Default().
func NewRouter(tr *tracker.Tracker, logger *log.Logger) *gin.Engine {
	if logger == nil {
		logger = log.Default()
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/health", HealthCheck)
	r.GET("/state", GetState(tr))

	timer := r.Group("/timer")
	timer.POST("/start", StartTimer(tr))
	timer.POST("/pause", PauseTimer(tr))
	timer.POST("/resume", ResumeTimer(tr))
	timer.POST("/stop", StopTimer(tr))
	timer.POST("/forgot-pause", FixForgotPause(tr))
	timer.POST("/forgot-stop", FixForgotStop(tr))
	timer.PUT("/project", SetActiveProject(tr))

	entries := r.Group("/entries")
	entries.GET("", ListEntries(tr))
	entries.POST("", CreateRetroEntry(tr, logger))
	entries.POST("/quick", CreateQuickTime(tr, logger))
	entries.GET("/days", ListDays(tr))
	entries.PATCH("/:id", UpdateEntry(tr))
	entries.DELETE("/:id", DeleteEntry(tr))

	projects := r.Group("/projects")
	projects.GET("", ListProjects(tr))
	projects.POST("", CreateProject(tr, logger))
	projects.PATCH("/:id", ArchiveProject(tr))
	projects.DELETE("/:id", DeleteProject(tr))

	r.GET("/report", GetReport(tr))

	return r
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// respondError maps tracker errors onto status codes: bad input is 400,
// unknown ids 404 and illegal timer transitions 409.
func respondError(c *gin.Context, err error) {
	var verr *tracker.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": verr.Error(), "field": verr.Field})
	case errors.Is(err, tracker.ErrEntryNotFound), errors.Is(err, tracker.ErrProjectNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case tracker.IsPrecondition(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// bindOptionalJSON accepts an empty body.
func bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
