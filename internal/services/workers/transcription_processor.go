package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/download"
	"github.com/LeiShi1313/readrepeat/pkg/whisper"
)

// Transcriber turns a 16 kHz mono WAV file into timed text
type Transcriber interface {
	Transcribe(ctx context.Context, wavPath, language, model string) (*whisper.Transcript, error)
}

// Fetcher downloads remote audio to a local temp file
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, prefix string) (*download.Result, error)
}

var (
	_ Transcriber = (*whisper.Whisper)(nil)
	_ Fetcher     = (*download.Downloader)(nil)
)

// TranscriptionProcessor processes TRANSCRIBE_AUDIO jobs
type TranscriptionProcessor struct {
	audio       AudioTool
	transcriber Transcriber
	fetcher     Fetcher
}

// NewTranscriptionProcessor creates a new transcription processor
func NewTranscriptionProcessor(audio AudioTool, transcriber Transcriber, fetcher Fetcher) *TranscriptionProcessor {
	return &TranscriptionProcessor{
		audio:       audio,
		transcriber: transcriber,
		fetcher:     fetcher,
	}
}

func (p *TranscriptionProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeTranscribeAudio
}

func (p *TranscriptionProcessor) ProcessJob(ctx context.Context, job *models.ClaimedJob) (*models.JobReport, error) {
	if !p.CanProcess(job.Type) {
		return nil, fmt.Errorf("unsupported job type: %s", job.Type)
	}

	decoded, err := job.DecodePayload()
	if err != nil {
		return nil, fmt.Errorf("invalid job payload: %w", err)
	}
	payload := decoded.(models.TranscribeAudioPayload)

	if job.AudioFile == nil {
		return nil, errors.New("No audio file data in job")
	}

	source := job.AudioFile.FilePath
	if download.IsRemote(source) {
		if p.fetcher == nil {
			return nil, fmt.Errorf("cannot fetch remote audio %s: no downloader configured", source)
		}
		result, err := p.fetcher.Fetch(ctx, source, "audio_"+job.AudioFile.ID)
		if err != nil {
			return nil, fmt.Errorf("downloading audio: %w", err)
		}
		defer download.Cleanup(result.FilePath)
		source = result.FilePath
	}

	workDir, err := os.MkdirTemp("", "transcribe-*")
	if err != nil {
		return nil, fmt.Errorf("creating work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	normalized := filepath.Join(workDir, models.NormalizedAudioFilename)
	if err := p.audio.Normalize(ctx, source, normalized); err != nil {
		return nil, fmt.Errorf("normalizing audio: %w", err)
	}

	model := payload.WhisperModel
	if model == "" {
		model = models.DefaultWhisperModel
	}
	log.Infof("Transcribing audio file %s (language: %s, model: %s)", job.AudioFile.ID, languageLabel(payload.Language), model)

	transcript, err := p.transcriber.Transcribe(ctx, normalized, payload.Language, model)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}

	result := models.TranscriptionResult{
		Text:     transcript.Text,
		Language: transcript.Language,
		Segments: make([]models.TranscriptionSegment, 0, len(transcript.Segments)),
	}
	for _, s := range transcript.Segments {
		segment := models.TranscriptionSegment{
			StartMs: s.StartMs,
			EndMs:   s.EndMs,
			Text:    s.Text,
		}
		for _, w := range s.Words {
			segment.Words = append(segment.Words, models.TranscriptionWord{
				Word:        w.Text,
				StartMs:     w.StartMs,
				EndMs:       w.EndMs,
				Probability: w.Probability,
			})
		}
		result.Segments = append(result.Segments, segment)
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encoding transcription: %w", err)
	}

	log.Infof("Transcription complete: %d segments, language: %s", len(result.Segments), result.Language)
	return &models.JobReport{Result: datatypes.JSON(raw)}, nil
}

func languageLabel(language string) string {
	if language == "" {
		return "auto-detect"
	}
	return language
}
