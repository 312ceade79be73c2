package jobs

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/internal/models"
	jobService "github.com/LeiShi1313/readrepeat/internal/services/jobs"
)

// Get returns a single job
// @Summary      Get job
// @Tags         jobs
// @Produce      json
// @Param        id path int true "Job ID"
// @Success      200 {object} types.JobResponse
// @Failure      400 {object} types.ErrorResponse "Invalid job ID"
// @Failure      404 {object} types.ErrorResponse "Job not found"
// @Router       /api/jobs/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := types.ParseUintParam(c, "id")
		if !ok {
			return
		}

		job, err := deps.JobService.GetJob(c.Request.Context(), id)
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.JobResponse{Job: job})
	}
}

// List returns jobs, newest first
// @Summary      List jobs
// @Tags         jobs
// @Produce      json
// @Param        status query string false "PENDING, PROCESSING, COMPLETED or FAILED"
// @Param        type query string false "Job type"
// @Param        lessonId query string false "Lesson ID"
// @Param        audioFileId query string false "Audio file ID"
// @Param        limit query int false "Maximum results (default 100, max 500)"
// @Success      200 {object} types.JobsResponse
// @Failure      400 {object} types.ErrorResponse "Invalid filter"
// @Router       /api/jobs [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, ok := parseFilter(c)
		if !ok {
			return
		}

		list, err := deps.JobService.ListJobs(c.Request.Context(), filter)
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.JobsResponse{Jobs: list, Count: len(list)})
	}
}

func parseFilter(c *gin.Context) (jobService.ListFilter, bool) {
	filter := jobService.ListFilter{
		Status:      models.JobStatus(c.Query("status")),
		Type:        models.JobType(c.Query("type")),
		LessonID:    c.Query("lessonId"),
		AudioFileID: c.Query("audioFileId"),
	}

	switch filter.Status {
	case "", models.JobStatusPending, models.JobStatusProcessing, models.JobStatusCompleted, models.JobStatusFailed:
	default:
		types.SendBadRequest(c, "Invalid status: "+string(filter.Status))
		return filter, false
	}

	if filter.Type != "" && !knownType(filter.Type) {
		types.SendBadRequest(c, "Invalid type: "+string(filter.Type))
		return filter, false
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			types.SendBadRequest(c, "Invalid limit")
			return filter, false
		}
		filter.Limit = limit
	}
	return filter, true
}

func knownType(jobType models.JobType) bool {
	for _, known := range models.KnownJobTypes {
		if known == jobType {
			return true
		}
	}
	return false
}
