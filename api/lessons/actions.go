package lessons

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	lessonService "github.com/LeiShi1313/readrepeat/internal/services/lessons"
	"github.com/LeiShi1313/readrepeat/pkg/finetune"
)

// AttachAudioRequest points a lesson at an uploaded audio file
type AttachAudioRequest struct {
	AudioPath string `json:"audioPath" binding:"required" example:"./data/uploads/lessons/0b6f.../original.mp3"`
}

// AttachAudio attaches audio and starts full processing
// @Summary      Attach audio
// @Description  Records the lesson's original audio and queues a PROCESS_LESSON job. Existing sentences are discarded.
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Param        audio body AttachAudioRequest true "Audio location"
// @Success      202 {object} types.LessonResponse
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is already processing"
// @Router       /api/lessons/{id}/audio [post]
func AttachAudio(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req AttachAudioRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		lesson, err := deps.LessonService.AttachAudio(c.Request.Context(), c.Param("id"), req.AudioPath)
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, types.LessonResponse{Lesson: lesson})
	}
}

// StartSynthesis queues text-to-speech generation for the lesson
// @Summary      Synthesize audio
// @Description  Queues a GENERATE_TTS_LESSON job. An empty body uses the default voice in article mode.
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Param        options body lessonService.TTSOptions false "Voice options"
// @Success      202 {object} types.LessonResponse
// @Failure      400 {object} types.ErrorResponse "Invalid options"
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is already processing"
// @Router       /api/lessons/{id}/tts [post]
func StartSynthesis(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var opts lessonService.TTSOptions
		if err := c.ShouldBindJSON(&opts); err != nil && !errors.Is(err, io.EOF) {
			types.SendBadRequest(c, "Invalid request body")
			return
		}

		lesson, err := deps.LessonService.StartSynthesis(c.Request.Context(), c.Param("id"), opts)
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, types.LessonResponse{Lesson: lesson})
	}
}

// Reprocess runs the full pipeline again on the existing audio
// @Summary      Reprocess lesson
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      202 {object} types.LessonResponse
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is not READY or FAILED, or has no audio"
// @Router       /api/lessons/{id}/reprocess [post]
func Reprocess(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, err := deps.LessonService.Reprocess(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, types.LessonResponse{Lesson: lesson})
	}
}

// Cancel fails the lesson's outstanding jobs
// @Summary      Cancel processing
// @Description  Fails every PENDING or PROCESSING job of the lesson with "Cancelled by user". The lesson becomes FAILED, or UPLOADED when it has no audio. Reports arriving later are ignored.
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      200 {object} types.LessonResponse
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is not processing"
// @Router       /api/lessons/{id}/cancel [post]
func Cancel(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		lesson, err := deps.LessonService.Cancel(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.LessonResponse{Lesson: lesson})
	}
}

// SaveFineTune applies a fine-tune session to a READY lesson
// @Summary      Save fine-tune
// @Description  Applies deletes, creates and timing updates in one transaction, re-derives sentence order and queues one RESLICE_AUDIO job. Only READY lessons accept a save.
// @Tags         lessons
// @Accept       json
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Param        changes body finetune.SaveRequest true "Fine-tune diff"
// @Success      202 {object} lessonService.SaveResult
// @Failure      400 {object} types.ErrorResponse "Invalid diff"
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Failure      409 {object} types.ErrorResponse "Lesson is not READY"
// @Router       /api/lessons/{id}/finetune [post]
func SaveFineTune(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req finetune.SaveRequest
		if !types.BindJSONOrError(c, &req) {
			return
		}

		result, err := deps.LessonService.SaveFineTune(c.Request.Context(), c.Param("id"), req)
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, result)
	}
}

// Jobs lists the jobs that reference a lesson, newest first
// @Summary      Lesson jobs
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Success      200 {object} types.JobsResponse
// @Failure      404 {object} types.ErrorResponse "Lesson not found"
// @Router       /api/lessons/{id}/jobs [get]
func Jobs(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.LessonService.Jobs(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.JobsResponse{Jobs: list, Count: len(list)})
	}
}
