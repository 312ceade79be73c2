package recordings

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	recordingService "github.com/LeiShi1313/readrepeat/internal/services/recordings"
)

// Create stores a learner's attempt at a sentence
// @Summary      Add recording
// @Tags         recordings
// @Accept       json
// @Produce      json
// @Param        id path string true "Sentence ID"
// @Param        recording body recordingService.CreateInput true "Recording"
// @Success      201 {object} types.RecordingResponse
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Failure      404 {object} types.ErrorResponse "Sentence not found"
// @Router       /api/sentences/{id}/recordings [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input recordingService.CreateInput
		if !types.BindJSONOrError(c, &input) {
			return
		}

		recording, err := deps.RecordingService.Create(c.Request.Context(), c.Param("id"), input)
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendCreated(c, types.RecordingResponse{Recording: recording})
	}
}

// List returns the recordings of a sentence, newest first
// @Summary      List recordings
// @Tags         recordings
// @Produce      json
// @Param        id path string true "Sentence ID"
// @Success      200 {object} types.RecordingsResponse
// @Failure      404 {object} types.ErrorResponse "Sentence not found"
// @Router       /api/sentences/{id}/recordings [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.RecordingService.List(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.RecordingsResponse{Recordings: list, Count: len(list)})
	}
}

// Get returns one recording
// @Summary      Get recording
// @Tags         recordings
// @Produce      json
// @Param        id path string true "Recording ID"
// @Success      200 {object} types.RecordingResponse
// @Failure      404 {object} types.ErrorResponse "Recording not found"
// @Router       /api/recordings/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		recording, err := deps.RecordingService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.RecordingResponse{Recording: recording})
	}
}

// Delete removes one recording
// @Summary      Delete recording
// @Tags         recordings
// @Param        id path string true "Recording ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.ErrorResponse "Recording not found"
// @Router       /api/recordings/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.RecordingService.Delete(c.Request.Context(), c.Param("id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
