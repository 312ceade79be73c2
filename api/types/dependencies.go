package types

import (
	"context"

	"github.com/LeiShi1313/readrepeat/internal/database"
	"github.com/LeiShi1313/readrepeat/internal/services/audiofiles"
	"github.com/LeiShi1313/readrepeat/internal/services/auth"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	"github.com/LeiShi1313/readrepeat/internal/services/lessons"
	"github.com/LeiShi1313/readrepeat/internal/services/recordings"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

// WaveformGenerator computes peak data for an audio file
type WaveformGenerator interface {
	GenerateWaveform(ctx context.Context, input string, resolution int) (*ffmpeg.WaveformData, error)
}

// Dependencies holds all the dependencies needed by handlers
type Dependencies struct {
	DB               *database.DB
	JobService       jobs.Service
	LessonService    lessons.Service
	AudioFileService audiofiles.Service
	RecordingService recordings.Service
	AuthService      *auth.Service
	Waveforms        WaveformGenerator
}
