package ffmpeg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrFFmpegNotFound   = errors.New("ffmpeg binary not found")
	ErrFFprobeNotFound  = errors.New("ffprobe binary not found")
	ErrInvalidAudioFile = errors.New("invalid or unsupported audio file")
	ErrInvalidWindow    = errors.New("clip window has no duration")
)

// stderrTailLines bounds how much ffmpeg chatter ends up in job error messages
const stderrTailLines = 5

// ProcessingError is a failed ffmpeg or ffprobe step on one file
type ProcessingError struct {
	Operation string // normalize, extract_clip, silent_clip, probe, ...
	File      string
	Err       error
	Stderr    string // last lines only
}

func (e *ProcessingError) Error() string {
	msg := fmt.Sprintf("ffmpeg %s failed for %s: %v", e.Operation, e.File, e.Err)
	if e.Stderr != "" {
		msg += " (stderr: " + e.Stderr + ")"
	}
	return msg
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

func NewProcessingError(operation, file string, err error, stderr string) *ProcessingError {
	return &ProcessingError{
		Operation: operation,
		File:      file,
		Err:       err,
		Stderr:    tail(stderr, stderrTailLines),
	}
}

func tail(output string, n int) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
