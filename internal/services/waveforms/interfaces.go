package waveforms

import (
	"context"

	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

// Generator computes peak data for an audio file
type Generator interface {
	GenerateWaveform(ctx context.Context, input string, resolution int) (*ffmpeg.WaveformData, error)
}
