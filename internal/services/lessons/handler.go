package lessons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

// jobHandler applies worker results for one lesson job type
type jobHandler struct {
	svc     *service
	jobType models.JobType
}

var _ jobs.Handler = (*jobHandler)(nil)

func lessonIDOf(payload models.JobPayload) (string, error) {
	ref, ok := payload.(models.LessonReference)
	if !ok {
		return "", fmt.Errorf("%w: %s payload has no lesson reference", models.ErrInvalidPayload, payload.JobType())
	}
	return ref.LessonRef(), nil
}

// Prepare attaches the lesson, and for re-slicing its ordered sentences
func (h *jobHandler) Prepare(ctx context.Context, tx *gorm.DB, claimed *models.ClaimedJob, payload models.JobPayload) error {
	lessonID, err := lessonIDOf(payload)
	if err != nil {
		return err
	}

	repo := h.svc.repo.WithTx(tx)
	lesson, err := repo.GetLesson(ctx, lessonID)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return fmt.Errorf("%w: lesson %s", jobs.ErrReferenceMissing, lessonID)
		}
		return err
	}
	claimed.Lesson = lesson

	if h.jobType == models.JobTypeProcessLesson && lesson.HasAudio() {
		audio, err := repo.FindTranscribedAudio(ctx, *lesson.AudioOriginalPath)
		if err != nil {
			return err
		}
		claimed.AudioFile = audio
	}

	if h.jobType == models.JobTypeResliceAudio {
		if !lesson.HasAudio() {
			return fmt.Errorf("%w: lesson %s has no audio to slice", jobs.ErrReferenceMissing, lessonID)
		}
		sentences, err := repo.GetSentences(ctx, lessonID)
		if err != nil {
			return err
		}
		claimed.Sentences = sentences
	}
	return nil
}

// Validate checks that a COMPLETED report carries this job type's result
func (h *jobHandler) Validate(report *models.JobReport) error {
	if h.jobType == models.JobTypeResliceAudio {
		if report.UpdatedSentences == nil {
			return apperrors.MissingFieldError("updatedSentences")
		}
		for i, update := range report.UpdatedSentences {
			if strings.TrimSpace(update.ID) == "" {
				return apperrors.MissingFieldError(fmt.Sprintf("updatedSentences[%d].id", i))
			}
		}
		return nil
	}

	if report.Sentences == nil {
		return apperrors.MissingFieldError("sentences")
	}
	for i, s := range report.Sentences {
		if s.StartMs != nil && s.EndMs != nil && *s.EndMs < *s.StartMs {
			return apperrors.ValidationError(fmt.Sprintf("sentences[%d]", i),
				fmt.Sprintf("end %d is before start %d", *s.EndMs, *s.StartMs))
		}
	}
	return nil
}

// Complete stores the worker's result and moves the lesson to READY.
// Results for lessons that are gone or no longer processing are dropped.
func (h *jobHandler) Complete(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, report *models.JobReport) error {
	lesson, ok, err := h.processingLesson(ctx, tx, job, payload)
	if err != nil || !ok {
		return err
	}
	repo := h.svc.repo.WithTx(tx)

	switch h.jobType {
	case models.JobTypeResliceAudio:
		updated := 0
		for _, update := range report.UpdatedSentences {
			n, err := repo.UpdateClipPath(ctx, lesson.ID, update.ID, update.ClipPath)
			if err != nil {
				return err
			}
			updated += int(n)
		}
		log.Debugf("Re-slice job %d updated %d/%d clip(s) of lesson %s", job.ID, updated, len(report.UpdatedSentences), lesson.ID)

	default:
		if err := repo.DeleteSentences(ctx, lesson.ID); err != nil {
			return err
		}
		sentences := sentencesFromResults(lesson.ID, report.Sentences)
		if err := repo.CreateSentences(ctx, sentences); err != nil {
			return err
		}
		if h.jobType == models.JobTypeGenerateTTSLesson {
			path := CanonicalAudioPath(h.svc.dataDir, lesson.ID)
			lesson.AudioOriginalPath = &path
		}
		log.Debugf("%s job %d stored %d sentence(s) for lesson %s", h.jobType, job.ID, len(sentences), lesson.ID)
	}

	if err := lesson.TransitionTo(models.LessonStatusReady); err != nil {
		return err
	}
	lesson.ErrorMessage = nil
	return repo.UpdateLesson(ctx, lesson, models.LessonStatusProcessing)
}

// Fail records the failure on the lesson; the audio path is kept for retries
func (h *jobHandler) Fail(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, message string) error {
	lesson, ok, err := h.processingLesson(ctx, tx, job, payload)
	if err != nil || !ok {
		return err
	}
	if err := lesson.MarkFailed(message); err != nil {
		return err
	}
	log.Warnf("%s job %d failed for lesson %s: %s", h.jobType, job.ID, lesson.ID, *lesson.ErrorMessage)
	return h.svc.repo.WithTx(tx).UpdateLesson(ctx, lesson, models.LessonStatusProcessing)
}

// processingLesson loads the job's lesson; ok is false when the outcome should
// be ignored
func (h *jobHandler) processingLesson(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload) (*models.Lesson, bool, error) {
	lessonID, err := lessonIDOf(payload)
	if err != nil {
		return nil, false, err
	}
	lesson, err := h.svc.repo.WithTx(tx).GetLesson(ctx, lessonID)
	if errors.Is(err, ErrLessonNotFound) {
		log.Infof("Ignoring %s outcome of job %d: lesson %s no longer exists", h.jobType, job.ID, lessonID)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !lesson.IsProcessing() {
		log.Infof("Ignoring %s outcome of job %d: lesson %s is %s", h.jobType, job.ID, lessonID, lesson.Status)
		return nil, false, nil
	}
	return lesson, true, nil
}

// sentencesFromResults builds sentence rows with idx derived from start times
func sentencesFromResults(lessonID string, results []models.SentenceResult) []models.Sentence {
	sentences := make([]models.Sentence, 0, len(results))
	seen := make(map[string]bool, len(results))
	for _, r := range results {
		sentence := models.Sentence{
			LessonID:        lessonID,
			Idx:             r.Idx,
			ForeignText:     r.ForeignText,
			TranslationText: r.TranslationText,
			StartMs:         r.StartMs,
			EndMs:           r.EndMs,
			ClipPath:        r.ClipPath,
			Confidence:      r.Confidence,
		}
		// Worker supplied ids are kept only if they are well formed and unique
		if _, err := uuid.Parse(r.ID); err == nil && !seen[r.ID] {
			sentence.ID = r.ID
		} else {
			sentence.ID = uuid.NewString()
		}
		seen[sentence.ID] = true
		sentences = append(sentences, sentence)
	}
	orderSentences(sentences)
	return sentences
}
