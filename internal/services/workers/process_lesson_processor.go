package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/align"
	"github.com/LeiShi1313/readrepeat/pkg/segment"
)

// ProcessLessonProcessor turns a lesson's text and audio into timed sentences
// with one clip each
type ProcessLessonProcessor struct {
	audio       AudioTool
	transcriber Transcriber
	clips       *clipCutter
}

// NewProcessLessonProcessor creates a lesson processor. transcriber may be nil,
// in which case only lessons backed by a cached transcription can be processed.
func NewProcessLessonProcessor(audio AudioTool, transcriber Transcriber, paddingMs int) *ProcessLessonProcessor {
	return &ProcessLessonProcessor{
		audio:       audio,
		transcriber: transcriber,
		clips:       newClipCutter(audio, paddingMs),
	}
}

func (p *ProcessLessonProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeProcessLesson
}

// ProcessJob segments both texts, aligns the foreign sentences against word
// timings and cuts clips/<i>.wav for every sentence
func (p *ProcessLessonProcessor) ProcessJob(ctx context.Context, job *models.ClaimedJob) (*models.JobReport, error) {
	if !p.CanProcess(job.Type) {
		return nil, fmt.Errorf("unsupported job type: %s", job.Type)
	}
	lesson := job.Lesson
	if lesson == nil {
		return nil, errors.New("No lesson data in job")
	}
	if !lesson.HasAudio() {
		return nil, errors.New("Missing audioOriginalPath in lesson")
	}

	foreignLang := orDefault(lesson.ForeignLang, models.DefaultForeignLang)
	translationLang := orDefault(lesson.TranslationLang, models.DefaultTranslationLang)
	model := orDefault(lesson.WhisperModel, models.DefaultWhisperModel)

	foreign := segment.Split(lesson.ForeignTextRaw, foreignLang)
	if len(foreign) == 0 {
		return nil, errors.New("No sentences found in foreign text")
	}
	translations := segment.Split(lesson.TranslationTextRaw, translationLang)
	log.Infof("Processing lesson %s: %d sentences, %d translations", lesson.ID, len(foreign), len(translations))

	audioPath := *lesson.AudioOriginalPath
	outputDir := filepath.Dir(audioPath)
	normalized := filepath.Join(outputDir, models.NormalizedAudioFilename)
	if err := p.audio.Normalize(ctx, audioPath, normalized); err != nil {
		return nil, fmt.Errorf("normalizing audio: %w", err)
	}

	words, err := p.words(ctx, job.AudioFile, normalized, foreignLang, model)
	if err != nil {
		return nil, err
	}

	timings := align.Sentences(foreign, words, foreignLang)
	mapped := align.Translations(foreign, translations)

	clipsDir, err := resetClipsDir(outputDir)
	if err != nil {
		return nil, err
	}

	results := make([]models.SentenceResult, 0, len(foreign))
	for i, text := range foreign {
		start, end, confidence := timings[i].StartMs, timings[i].EndMs, timings[i].Confidence
		clipPath := p.clips.cut(ctx, normalized, clipsDir, i, &start, &end, &confidence)
		results = append(results, models.SentenceResult{
			ID:              uuid.NewString(),
			Idx:             i,
			ForeignText:     text,
			TranslationText: mapped[i],
			StartMs:         &start,
			EndMs:           &end,
			ClipPath:        &clipPath,
			Confidence:      &confidence,
		})
	}

	log.Infof("Processed lesson %s into %d sentences", lesson.ID, len(results))
	return &models.JobReport{Sentences: results}, nil
}

// words prefers the word timings of an already transcribed audio file and
// runs whisper on the normalized audio otherwise
func (p *ProcessLessonProcessor) words(ctx context.Context, cached *models.AudioFile, normalized, lang, model string) ([]align.Word, error) {
	if cached != nil && len(cached.Transcription) > 0 {
		var result models.TranscriptionResult
		if err := json.Unmarshal(cached.Transcription, &result); err != nil {
			log.Warnf("Ignoring unreadable transcription of audio file %s: %v", cached.ID, err)
		} else if cachedWords := result.Words(); len(cachedWords) > 0 {
			log.Infof("Using cached transcription of audio file %s (%d words)", cached.ID, len(cachedWords))
			words := make([]align.Word, len(cachedWords))
			for i, w := range cachedWords {
				words[i] = align.Word{Text: w.Word, StartMs: w.StartMs, EndMs: w.EndMs}
			}
			return words, nil
		}
	}

	if p.transcriber == nil {
		return nil, errors.New("transcription is not available on this worker")
	}
	transcript, err := p.transcriber.Transcribe(ctx, normalized, lang, model)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}

	transcribed := transcript.Words()
	if len(transcribed) == 0 {
		log.Warn("Transcription returned no words; sentences will not be aligned")
	}
	words := make([]align.Word, len(transcribed))
	for i, w := range transcribed {
		words[i] = align.Word{Text: w.Text, StartMs: w.StartMs, EndMs: w.EndMs}
	}
	return words, nil
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
