package ffmpeg

// AudioMetadata is what ffprobe reports for the first audio stream
type AudioMetadata struct {
	Duration   float64 `json:"duration"`   // seconds
	SampleRate int     `json:"sampleRate"` // Hz
	Channels   int     `json:"channels"`
	Format     string  `json:"format"`
	Codec      string  `json:"codec"`
	Size       int64   `json:"size"`
}

// DurationMs rounds Duration to whole milliseconds
func (m AudioMetadata) DurationMs() int {
	return int(m.Duration*1000 + 0.5)
}

// WaveformData represents audio waveform peak data
type WaveformData struct {
	Peaks      []float32 `json:"peaks"`      // 0.0 - 1.0
	Duration   float64   `json:"duration"`   // seconds
	Resolution int       `json:"resolution"` // number of peaks
	SampleRate int       `json:"sampleRate"` // rate of the analysed PCM stream
}

// Window is a clip range in milliseconds, padding already applied
type Window struct {
	StartMs int
	EndMs   int
}

// DurationMs returns the window length
func (w Window) DurationMs() int {
	return w.EndMs - w.StartMs
}

// ClipWindow pads [startMs, endMs] on both sides, flooring the start at zero
func ClipWindow(startMs, endMs, paddingMs int) Window {
	start := startMs - paddingMs
	if start < 0 {
		start = 0
	}
	return Window{StartMs: start, EndMs: endMs + paddingMs}
}
