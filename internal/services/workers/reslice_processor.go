package workers

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// ResliceProcessor cuts per-sentence clips after timing edits
type ResliceProcessor struct {
	audio AudioTool
	clips *clipCutter
}

// NewResliceProcessor creates a reslice processor; a negative padding uses the default
func NewResliceProcessor(audio AudioTool, paddingMs int) *ResliceProcessor {
	return &ResliceProcessor{audio: audio, clips: newClipCutter(audio, paddingMs)}
}

func (p *ResliceProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeResliceAudio
}

// ProcessJob slices the lesson audio into clips/<i>.wav next to the original
func (p *ResliceProcessor) ProcessJob(ctx context.Context, job *models.ClaimedJob) (*models.JobReport, error) {
	if !p.CanProcess(job.Type) {
		return nil, fmt.Errorf("unsupported job type: %s", job.Type)
	}
	if job.Lesson == nil {
		return nil, errors.New("No lesson data in job")
	}
	if !job.Lesson.HasAudio() {
		return nil, errors.New("Missing audioOriginalPath in lesson")
	}

	audioPath := *job.Lesson.AudioOriginalPath
	outputDir := filepath.Dir(audioPath)
	log.Infof("Re-slicing lesson %s with %d sentences", job.Lesson.ID, len(job.Sentences))

	normalized := filepath.Join(outputDir, models.NormalizedAudioFilename)
	if _, err := os.Stat(normalized); err != nil {
		log.Debugf("Normalizing %s", audioPath)
		if err := p.audio.Normalize(ctx, audioPath, normalized); err != nil {
			return nil, fmt.Errorf("normalizing audio: %w", err)
		}
	}

	clipsDir, err := resetClipsDir(outputDir)
	if err != nil {
		return nil, err
	}

	updates := make([]models.ClipUpdate, 0, len(job.Sentences))
	for i, sentence := range job.Sentences {
		clipPath := p.clips.cut(ctx, normalized, clipsDir, i, sentence.StartMs, sentence.EndMs, sentence.Confidence)
		updates = append(updates, models.ClipUpdate{ID: sentence.ID, ClipPath: &clipPath})
	}

	log.Infof("Re-slicing complete for lesson %s", job.Lesson.ID)
	return &models.JobReport{UpdatedSentences: updates}, nil
}
