package waveforms

import "errors"

var (
	// ErrInvalidInput is returned when no audio path is given
	ErrInvalidInput = errors.New("invalid audio input")

	// ErrInvalidResolution is returned for a non-positive peak count
	ErrInvalidResolution = errors.New("invalid waveform resolution")
)
