package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
)

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
	Duration   string `json:"duration"`
}

type probeOutput struct {
	Format struct {
		Duration   string `json:"duration"`
		Size       string `json:"size"`
		FormatName string `json:"format_name"`
	} `json:"format"`
	Streams []probeStream `json:"streams"`
}

// Probe reads duration and stream details of the first audio stream
func (f *FFmpeg) Probe(ctx context.Context, path string) (*AudioMetadata, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath,
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "format=duration,size,format_name:stream=codec_type,codec_name,sample_rate,channels,duration",
		"-of", "json",
		path,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, NewProcessingError("probe", path, err, stderr.String())
	}
	return parseProbe(stdout.Bytes(), path)
}

func parseProbe(data []byte, path string) (*AudioMetadata, error) {
	var out probeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, NewProcessingError("probe_parse", path, err, "")
	}

	metadata := &AudioMetadata{
		Format:   out.Format.FormatName,
		Duration: parseSeconds(out.Format.Duration),
	}
	metadata.Size, _ = strconv.ParseInt(out.Format.Size, 10, 64)

	if audio := firstAudioStream(out.Streams); audio != nil {
		metadata.Codec = audio.CodecName
		metadata.Channels = audio.Channels
		metadata.SampleRate, _ = strconv.Atoi(audio.SampleRate)
		if metadata.Duration == 0 {
			metadata.Duration = parseSeconds(audio.Duration)
		}
	}

	if metadata.Duration <= 0 {
		return nil, NewProcessingError("probe", path,
			fmt.Errorf("%w: could not determine audio duration", ErrInvalidAudioFile), "")
	}
	return metadata, nil
}

func firstAudioStream(streams []probeStream) *probeStream {
	for i := range streams {
		if streams[i].CodecType == "audio" {
			return &streams[i]
		}
	}
	return nil
}

// parseSeconds returns 0 for ffprobe's "N/A" and other unparsable values
func parseSeconds(value string) float64 {
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil || seconds < 0 {
		return 0
	}
	return seconds
}
