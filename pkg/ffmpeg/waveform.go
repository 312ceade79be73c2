package ffmpeg

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"strconv"
)

const waveformSampleRate = 8000

// GenerateWaveform decodes input to mono float PCM and reduces it to resolution peaks
func (f *FFmpeg) GenerateWaveform(ctx context.Context, input string, resolution int) (*WaveformData, error) {
	if resolution <= 0 {
		resolution = 1000
	}

	metadata, err := f.Probe(ctx, input)
	if err != nil {
		return nil, err
	}

	rawFile, err := os.CreateTemp("", "waveform_*.raw")
	if err != nil {
		return nil, NewProcessingError("temp_file_creation", input, err, "")
	}
	rawPath := rawFile.Name()
	rawFile.Close()
	defer os.Remove(rawPath)

	args := []string{
		"-y",
		"-i", input,
		"-f", "f32le",
		"-ac", "1",
		"-ar", strconv.Itoa(waveformSampleRate),
		rawPath,
	}
	if err := f.run(ctx, "pcm_conversion", input, args); err != nil {
		return nil, err
	}

	file, err := os.Open(rawPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	peaks, err := computePeaks(bufio.NewReader(file), stat.Size()/4, resolution)
	if err != nil {
		return nil, NewProcessingError("peak_analysis", input, err, "")
	}

	return &WaveformData{
		Peaks:      peaks,
		Duration:   metadata.Duration,
		Resolution: len(peaks),
		SampleRate: waveformSampleRate,
	}, nil
}

// computePeaks reads totalSamples little-endian float32 samples and returns
// up to resolution absolute peaks normalized to [0, 1]
func computePeaks(r io.Reader, totalSamples int64, resolution int) ([]float32, error) {
	samplesPerPeak := totalSamples / int64(resolution)
	if samplesPerPeak < 1 {
		samplesPerPeak = 1
	}

	peaks := make([]float32, 0, resolution)
	buf := make([]byte, 4)
	var globalMax float32

	for len(peaks) < resolution {
		var peak float32
		var read int64
		for ; read < samplesPerPeak; read++ {
			if _, err := io.ReadFull(r, buf); err != nil {
				if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
					break
				}
				return nil, err
			}
			sample := float32(math.Abs(float64(math.Float32frombits(binary.LittleEndian.Uint32(buf)))))
			if sample > peak {
				peak = sample
			}
		}
		if read == 0 {
			break
		}
		peaks = append(peaks, peak)
		if peak > globalMax {
			globalMax = peak
		}
	}

	if globalMax > 0 {
		for i := range peaks {
			peaks[i] /= globalMax
		}
	}
	return peaks, nil
}
