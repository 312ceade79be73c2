package workers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

const (
	// DefaultClipPaddingMs is added before and after every sentence clip
	DefaultClipPaddingMs = 200
	placeholderClipMs    = 1000
)

// AudioTool is the subset of ffmpeg the processors use
type AudioTool interface {
	Normalize(ctx context.Context, input, output string) error
	ExtractClip(ctx context.Context, input, output string, window ffmpeg.Window) error
	SilentClip(ctx context.Context, output string, durationMs int) error
}

var _ AudioTool = (*ffmpeg.FFmpeg)(nil)

// clipCutter writes clips/<idx>.wav for one sentence at a time
type clipCutter struct {
	audio     AudioTool
	paddingMs int
}

func newClipCutter(audio AudioTool, paddingMs int) *clipCutter {
	if paddingMs < 0 {
		paddingMs = DefaultClipPaddingMs
	}
	return &clipCutter{audio: audio, paddingMs: paddingMs}
}

// resetClipsDir empties <dir>/clips, so clips of removed sentences do not linger
func resetClipsDir(dir string) (string, error) {
	clipsDir := filepath.Join(dir, models.ClipsDirName)
	if err := os.RemoveAll(clipsDir); err != nil {
		return "", fmt.Errorf("removing old clips: %w", err)
	}
	if err := os.MkdirAll(clipsDir, 0755); err != nil {
		return "", fmt.Errorf("creating clips dir: %w", err)
	}
	return clipsDir, nil
}

// cut never fails: unusable timings or an ffmpeg error leave a silent
// placeholder so every sentence keeps a playable clip. It returns the clip path.
func (c *clipCutter) cut(ctx context.Context, input, clipsDir string, idx int, startMs, endMs *int, confidence *float64) string {
	output := filepath.Join(clipsDir, fmt.Sprintf("%d.wav", idx))
	usable := startMs != nil && endMs != nil && (confidence == nil || *confidence != 0)

	if usable {
		window := ffmpeg.ClipWindow(*startMs, *endMs, c.paddingMs)
		if window.DurationMs() > 0 {
			err := c.audio.ExtractClip(ctx, input, output, window)
			if err == nil {
				log.Debugf("Created clip %d: %dms - %dms", idx, window.StartMs, window.EndMs)
				return output
			}
			log.Errorf("Failed to create clip %d: %v", idx, err)
		}
	}

	log.Warnf("Created silent placeholder for sentence %d", idx)
	if err := c.audio.SilentClip(ctx, output, placeholderClipMs); err != nil {
		log.Errorf("Failed to create silent clip %d: %v", idx, err)
		if f, err := os.Create(output); err == nil {
			f.Close()
		}
	}
	return output
}
