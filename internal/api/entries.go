package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

type RetroEntryRequest struct {
	ProjectID string     `json:"projectId"`
	StartAt   time.Time  `json:"startAt"`
	EndAt     *time.Time `json:"endAt"`
	Note      string     `json:"note"`
}

type QuickTimeRequest struct {
	Minutes int `json:"minutes"`
}

// EntryPatchRequest mirrors tracker.EntryPatch; omitted fields stay unchanged.
type EntryPatchRequest struct {
	ProjectID *string    `json:"projectId"`
	StartAt   *time.Time `json:"startAt"`
	EndAt     *time.Time `json:"endAt"`
	Note      *string    `json:"note"`
}

// EntriesResponse lists entries newest first.
type EntriesResponse struct {
	Entries []model.TimeEntry `json:"entries"`
	Total   int               `json:"total"`
}

func ListEntries(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries := tr.Entries()
		tracker.SortEntries(entries)
		c.JSON(http.StatusOK, EntriesResponse{Entries: entries, Total: len(entries)})
	}
}

func ListDays(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"days": tr.GroupByDay()})
	}
}

func CreateRetroEntry(tr *tracker.Tracker, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RetroEntryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Printf("Bind error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e, err := tr.AddRetroEntry(req.ProjectID, req.StartAt, req.EndAt, req.Note)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

func CreateQuickTime(tr *tracker.Tracker, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req QuickTimeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Printf("Bind error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e, err := tr.AddQuickTime(req.Minutes)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, e)
	}
}

func UpdateEntry(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req EntryPatchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		e, err := tr.UpdateEntry(c.Param("id"), tracker.EntryPatch(req))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, e)
	}
}

func DeleteEntry(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tr.DeleteEntry(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "entry deleted"})
	}
}
