package audiofiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/LeiShi1313/readrepeat/api/types"
	audioFileService "github.com/LeiShi1313/readrepeat/internal/services/audiofiles"
)

// Create registers an audio file and queues its transcription
// @Summary      Register audio file
// @Description  Records an uploaded file (or an http(s) URL the worker downloads) and queues a TRANSCRIBE_AUDIO job
// @Tags         audio-files
// @Accept       json
// @Produce      json
// @Param        file body audioFileService.CreateInput true "Audio file"
// @Success      202 {object} types.AudioFileResponse
// @Failure      400 {object} types.ErrorResponse "Invalid request"
// @Router       /api/audio-files [post]
func Create(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input audioFileService.CreateInput
		if !types.BindJSONOrError(c, &input) {
			return
		}

		file, err := deps.AudioFileService.Create(c.Request.Context(), input)
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, types.AudioFileResponse{AudioFile: file})
	}
}

// Get returns an audio file with its transcription once available
// @Summary      Get audio file
// @Tags         audio-files
// @Produce      json
// @Param        id path string true "Audio file ID"
// @Success      200 {object} types.AudioFileResponse
// @Failure      404 {object} types.ErrorResponse "Audio file not found"
// @Router       /api/audio-files/{id} [get]
func Get(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, err := deps.AudioFileService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		types.SendSuccess(c, types.AudioFileResponse{AudioFile: file})
	}
}

// List returns all audio files, newest first
// @Summary      List audio files
// @Tags         audio-files
// @Produce      json
// @Success      200 {object} types.AudioFilesResponse
// @Router       /api/audio-files [get]
func List(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := deps.AudioFileService.List(c.Request.Context())
		if err != nil {
			types.SendError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.AudioFilesResponse{AudioFiles: list, Count: len(list)})
	}
}

// Delete removes an audio file and fails its outstanding transcription
// @Summary      Delete audio file
// @Tags         audio-files
// @Param        id path string true "Audio file ID"
// @Success      204 "Deleted"
// @Failure      404 {object} types.ErrorResponse "Audio file not found"
// @Router       /api/audio-files/{id} [delete]
func Delete(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := deps.AudioFileService.Delete(c.Request.Context(), c.Param("id")); err != nil {
			types.SendError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
