package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Tiliavir/sa3aty/internal/model"
	"github.com/Tiliavir/sa3aty/internal/timecalc"
	"github.com/Tiliavir/sa3aty/internal/tracker"
)

type CreateProjectRequest struct {
	Name  string   `json:"name"`
	Color string   `json:"color"`
	Rate  *float64 `json:"rate"`
}

type ArchiveProjectRequest struct {
	Archived bool `json:"archived"`
}

type ProjectsResponse struct {
	Projects []model.Project `json:"projects"`
	Total    int             `json:"total"`
}

// ListProjects hides archived projects unless ?all=true.
func ListProjects(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects := tr.ActiveProjects()
		if c.Query("all") == "true" {
			projects = tr.Projects()
		}
		c.JSON(http.StatusOK, ProjectsResponse{Projects: projects, Total: len(projects)})
	}
}

func CreateProject(tr *tracker.Tracker, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			logger.Printf("Bind error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Color == "" {
			req.Color = tracker.DefaultColors[len(tr.Projects())%len(tracker.DefaultColors)]
		}
		p, err := tr.AddProject(req.Name, req.Color, req.Rate)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, p)
	}
}

func ArchiveProject(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ArchiveProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		p, err := tr.ArchiveProject(c.Param("id"), req.Archived)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func DeleteProject(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := tr.DeleteProject(c.Param("id")); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "project deleted"})
	}
}

// GetReport totals minutes per project over ?from=&to= (YYYY-MM-DD),
// defaulting to the current week.
func GetReport(tr *tracker.Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, to, err := timecalc.ParseRange(c.Query("from"), c.Query("to"), tr.Now())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"from":     from.Format("2006-01-02"),
			"to":       to.Format("2006-01-02"),
			"projects": tr.ProjectTotals(from, to),
		})
	}
}
