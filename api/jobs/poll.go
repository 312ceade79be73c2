package jobs

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/api/auth"
	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/internal/models"
	jobService "github.com/LeiShi1313/readrepeat/internal/services/jobs"
)

// Poll claims the oldest pending job for the calling worker
// @Summary      Claim next job
// @Description  Atomically claims the oldest PENDING job and returns it with the lesson, sentences or audio file it refers to. Returns {"job": null} when the queue is empty.
// @Tags         jobs
// @Security     BearerAuth
// @Produce      json
// @Success      200 {object} models.PollResponse
// @Failure      401 {object} types.ErrorResponse "Missing or invalid worker token"
// @Failure      429 {object} types.ErrorResponse "Rate limited"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/jobs/poll [get]
func Poll(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		worker := auth.WorkerName(c)

		claimed, err := deps.JobService.ClaimNext(c.Request.Context(), worker)
		if err != nil {
			if errors.Is(err, jobService.ErrNoJobsAvailable) {
				c.JSON(http.StatusOK, models.PollResponse{})
				return
			}
			types.SendError(c, err)
			return
		}

		log.Infof("Worker %s claimed %s job %d", worker, claimed.Type, claimed.ID)
		c.JSON(http.StatusOK, models.PollResponse{Job: claimed})
	}
}

// Report applies a worker's terminal report for a job
// @Summary      Report job result
// @Description  Marks a claimed job COMPLETED or FAILED and applies its results. Reports for jobs that were already cancelled or reaped are acknowledged with superseded=true and change nothing.
// @Tags         jobs
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        report body models.JobReport true "Job report"
// @Success      200 {object} models.ReportResponse
// @Failure      400 {object} types.ErrorResponse "Malformed or invalid report"
// @Failure      401 {object} types.ErrorResponse "Missing or invalid worker token"
// @Failure      404 {object} types.ErrorResponse "Unknown job"
// @Failure      500 {object} types.ErrorResponse
// @Router       /api/jobs/poll [post]
func Report(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var report models.JobReport
		if !types.BindJSONOrError(c, &report) {
			return
		}

		worker := auth.WorkerName(c)
		resp, err := deps.JobService.Report(c.Request.Context(), worker, &report)
		if err != nil {
			log.WithError(err).Warnf("Rejected report for job %d from %s", report.JobID, worker)
			types.SendError(c, err)
			return
		}

		if report.Status == models.JobStatusFailed && !resp.Superseded {
			log.Warnf("Worker %s failed job %d: %s", worker, report.JobID, report.ErrorMessage)
		}
		c.JSON(http.StatusOK, resp)
	}
}
