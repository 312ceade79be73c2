package lessons

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/internal/models"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

const (
	defaultResolution = 1000
	maxResolution     = 10000
	waveformTimeout   = 30 * time.Second
)

// GetWaveform returns peak data for the fine-tune timeline
// @Summary      Lesson waveform
// @Description  Computes normalized peaks from the lesson audio. The 16 kHz working copy is used when a worker has produced one.
// @Tags         lessons
// @Produce      json
// @Param        id path string true "Lesson ID"
// @Param        resolution query int false "Number of peaks (default 1000, max 10000)"
// @Success      200 {object} types.WaveformResponse
// @Failure      400 {object} types.ErrorResponse "Invalid resolution"
// @Failure      404 {object} types.ErrorResponse "Lesson or audio not found"
// @Failure      409 {object} types.ErrorResponse "Lesson has no audio"
// @Failure      503 {object} types.ErrorResponse "Waveform generation unavailable"
// @Router       /api/lessons/{id}/waveform [get]
func GetWaveform(deps *types.Dependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		resolution := defaultResolution
		if raw := c.Query("resolution"); raw != "" {
			value, err := strconv.Atoi(raw)
			if err != nil || value <= 0 || value > maxResolution {
				types.SendBadRequest(c, "Invalid resolution")
				return
			}
			resolution = value
		}

		if deps.Waveforms == nil {
			types.SendError(c, apperrors.Unavailable("Waveform service"))
			return
		}

		lesson, err := deps.LessonService.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			types.SendError(c, err)
			return
		}
		if !lesson.HasAudio() {
			types.SendError(c, apperrors.Conflict("lesson", "lesson has no audio"))
			return
		}

		source := waveformSource(*lesson.AudioOriginalPath)
		if _, err := os.Stat(source); err != nil {
			types.SendNotFound(c, "Lesson audio not found")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), waveformTimeout)
		defer cancel()

		data, err := deps.Waveforms.GenerateWaveform(ctx, source, resolution)
		if err != nil {
			log.WithError(err).Errorf("Failed to generate waveform for lesson %s", lesson.ID)
			types.SendInternalError(c, "Failed to generate waveform")
			return
		}

		types.SendSuccess(c, types.WaveformResponse{
			LessonID:   lesson.ID,
			Peaks:      data.Peaks,
			Duration:   data.Duration,
			Resolution: data.Resolution,
			SampleRate: data.SampleRate,
		})
	}
}

// waveformSource prefers the normalized copy next to the original
func waveformSource(original string) string {
	normalized := filepath.Join(filepath.Dir(original), models.NormalizedAudioFilename)
	if _, err := os.Stat(normalized); err == nil {
		return normalized
	}
	return original
}
