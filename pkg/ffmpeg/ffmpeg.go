package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultSampleRate is the rate used for normalized audio and clips
const DefaultSampleRate = 16000

// FFmpeg wraps ffmpeg and ffprobe functionality
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
	timeout     time.Duration
	sampleRate  int
}

// New creates a new FFmpeg instance
func New(ffmpegPath, ffprobePath string, timeout time.Duration) *FFmpeg {
	return &FFmpeg{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
		timeout:     timeout,
		sampleRate:  DefaultSampleRate,
	}
}

// WithSampleRate overrides the output sample rate
func (f *FFmpeg) WithSampleRate(rate int) *FFmpeg {
	if rate > 0 {
		f.sampleRate = rate
	}
	return f
}

// ValidateBinaries checks if ffmpeg and ffprobe are available
func (f *FFmpeg) ValidateBinaries() error {
	if _, err := exec.LookPath(f.ffmpegPath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFmpegNotFound, f.ffmpegPath)
	}
	if _, err := exec.LookPath(f.ffprobePath); err != nil {
		return fmt.Errorf("%w: %s", ErrFFprobeNotFound, f.ffprobePath)
	}
	return nil
}

// Normalize converts input to mono 16-bit PCM WAV at the configured sample rate
func (f *FFmpeg) Normalize(ctx context.Context, input, output string) error {
	if _, err := os.Stat(input); err != nil {
		return NewProcessingError("normalize", input, err, "")
	}
	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return NewProcessingError("normalize", output, err, "")
	}
	return f.run(ctx, "normalize", input, f.normalizeArgs(input, output))
}

// ExtractClip cuts window out of input into a mono PCM WAV file
func (f *FFmpeg) ExtractClip(ctx context.Context, input, output string, window Window) error {
	if window.DurationMs() <= 0 {
		return NewProcessingError("extract_clip", input, ErrInvalidWindow, "")
	}
	return f.run(ctx, "extract_clip", input, f.clipArgs(input, output, window))
}

// SilentClip writes a silent mono PCM WAV of the given length
func (f *FFmpeg) SilentClip(ctx context.Context, output string, durationMs int) error {
	return f.run(ctx, "silent_clip", output, f.silenceArgs(output, durationMs))
}

func (f *FFmpeg) normalizeArgs(input, output string) []string {
	return []string{
		"-y",
		"-i", input,
		"-ar", strconv.Itoa(f.sampleRate),
		"-ac", "1",
		"-c:a", "pcm_s16le",
		output,
	}
}

func (f *FFmpeg) clipArgs(input, output string, window Window) []string {
	return []string{
		"-y",
		"-ss", seconds(window.StartMs),
		"-i", input,
		"-t", seconds(window.DurationMs()),
		"-c:a", "pcm_s16le",
		"-ar", strconv.Itoa(f.sampleRate),
		"-ac", "1",
		output,
	}
}

func (f *FFmpeg) silenceArgs(output string, durationMs int) []string {
	return []string{
		"-y",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", f.sampleRate),
		"-t", seconds(durationMs),
		"-c:a", "pcm_s16le",
		output,
	}
}

func (f *FFmpeg) run(ctx context.Context, operation, file string, args []string) error {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, f.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return NewProcessingError(operation, file, err, stderr.String())
	}
	return nil
}

func seconds(ms int) string {
	return strconv.FormatFloat(float64(ms)/1000.0, 'f', 3, 64)
}
