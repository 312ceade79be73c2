package lessons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
	"github.com/LeiShi1313/readrepeat/pkg/finetune"
)

// Option configures the lesson service
type Option func(*service)

// WithDataDir sets the storage root used for lesson files
func WithDataDir(dir string) Option {
	return func(s *service) {
		s.dataDir = dir
	}
}

type service struct {
	db      *gorm.DB
	repo    Repository
	jobs    jobs.Service
	dataDir string
}

// NewService creates the lesson service and registers its job handlers with
// the queue
func NewService(db *gorm.DB, repo Repository, jobService jobs.Service, opts ...Option) Service {
	s := &service{
		db:      db,
		repo:    repo,
		jobs:    jobService,
		dataDir: "./data",
	}
	for _, opt := range opts {
		opt(s)
	}

	for _, jobType := range []models.JobType{
		models.JobTypeProcessLesson,
		models.JobTypeGenerateTTSLesson,
		models.JobTypeResliceAudio,
	} {
		jobService.Register(jobType, &jobHandler{svc: s, jobType: jobType})
	}
	return s
}

// LessonDir returns the directory holding a lesson's uploaded and generated files
func LessonDir(dataDir, lessonID string) string {
	return filepath.Join(dataDir, "uploads", "lessons", lessonID)
}

// CanonicalAudioPath is where synthesized audio for a lesson is written
func CanonicalAudioPath(dataDir, lessonID string) string {
	return filepath.Join(LessonDir(dataDir, lessonID), models.CanonicalAudioFilename)
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Lesson, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.MissingFieldError("title")
	}
	if strings.TrimSpace(input.ForeignTextRaw) == "" {
		return nil, apperrors.MissingFieldError("foreignTextRaw")
	}

	lesson := &models.Lesson{
		Title:              strings.TrimSpace(input.Title),
		ForeignTextRaw:     input.ForeignTextRaw,
		TranslationTextRaw: input.TranslationTextRaw,
		ForeignLang:        valueOr(input.ForeignLang, models.DefaultForeignLang),
		TranslationLang:    valueOr(input.TranslationLang, models.DefaultTranslationLang),
		WhisperModel:       valueOr(input.WhisperModel, models.DefaultWhisperModel),
		IsDialog:           input.IsDialog,
		Status:             models.LessonStatusUploaded,
	}
	if err := s.repo.CreateLesson(ctx, lesson); err != nil {
		return nil, apperrors.DatabaseError("create lesson", err)
	}

	log.Infof("Created lesson %s (%q)", lesson.ID, lesson.Title)
	return lesson, nil
}

// Get returns the lesson with its sentences ordered by idx
func (s *service) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.getLesson(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	sentences, err := s.repo.GetSentences(ctx, id)
	if err != nil {
		return nil, apperrors.DatabaseError("get sentences", err)
	}
	lesson.Sentences = sentences
	return lesson, nil
}

func (s *service) List(ctx context.Context) ([]models.Lesson, error) {
	lessons, err := s.repo.ListLessons(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("list lessons", err)
	}
	return lessons, nil
}

func (s *service) Jobs(ctx context.Context, id string) ([]models.Job, error) {
	if _, err := s.getLesson(ctx, s.repo, id); err != nil {
		return nil, err
	}
	return s.jobs.ListJobs(ctx, jobs.ListFilter{LessonID: id})
}

// Edit applies a partial update. Content changes on a lesson that has already
// been processed send it back through the pipeline.
func (s *service) Edit(ctx context.Context, id string, input EditInput) (*models.Lesson, error) {
	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, apperrors.ValidationError("title", "must not be empty")
	}
	if input.ForeignTextRaw != nil && strings.TrimSpace(*input.ForeignTextRaw) == "" {
		return nil, apperrors.ValidationError("foreignTextRaw", "must not be empty")
	}

	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		lesson, err = s.getLesson(ctx, repo, id)
		if err != nil {
			return err
		}
		if lesson.IsProcessing() {
			return apperrors.Conflict("lesson", "lesson is processing; cancel it before editing")
		}

		from := lesson.Status
		if input.Title != nil {
			lesson.Title = strings.TrimSpace(*input.Title)
		}
		contentChanged := applyContent(lesson, input)

		reprocess := contentChanged && lesson.HasAudio() &&
			(from == models.LessonStatusReady || from == models.LessonStatusFailed)
		if !reprocess {
			return repo.UpdateLesson(ctx, lesson, from)
		}

		log.Infof("Lesson %s content changed, reprocessing", lesson.ID)
		return s.enterProcessing(ctx, tx, lesson, from, models.ProcessLessonPayload{LessonID: lesson.ID})
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return lesson, nil
}

// applyContent copies the pipeline-relevant fields and reports whether any changed
func applyContent(lesson *models.Lesson, input EditInput) bool {
	changed := false
	setString := func(dst *string, src *string) {
		if src != nil && *src != *dst {
			*dst = *src
			changed = true
		}
	}
	setString(&lesson.ForeignTextRaw, input.ForeignTextRaw)
	setString(&lesson.TranslationTextRaw, input.TranslationTextRaw)
	setString(&lesson.ForeignLang, input.ForeignLang)
	setString(&lesson.TranslationLang, input.TranslationLang)
	setString(&lesson.WhisperModel, input.WhisperModel)
	if input.IsDialog != nil && *input.IsDialog != lesson.IsDialog {
		lesson.IsDialog = *input.IsDialog
		changed = true
	}
	return changed
}

func (s *service) AttachAudio(ctx context.Context, id, audioPath string) (*models.Lesson, error) {
	if strings.TrimSpace(audioPath) == "" {
		return nil, apperrors.MissingFieldError("audioPath")
	}

	return s.startJob(ctx, id, func(lesson *models.Lesson) (models.JobPayload, error) {
		lesson.AudioOriginalPath = &audioPath
		return models.ProcessLessonPayload{LessonID: lesson.ID}, nil
	})
}

func (s *service) StartSynthesis(ctx context.Context, id string, opts TTSOptions) (*models.Lesson, error) {
	payload := models.GenerateTTSPayload{
		LessonID:    id,
		VoiceName:   opts.VoiceName,
		TTSModel:    opts.TTSModel,
		SpeakerMode: opts.SpeakerMode,
		Voice2Name:  opts.Voice2Name,
	}.WithDefaults()
	if err := payload.Validate(); err != nil {
		return nil, apperrors.ValidationError("speakerMode", err.Error())
	}

	return s.startJob(ctx, id, func(lesson *models.Lesson) (models.JobPayload, error) {
		return payload, nil
	})
}

func (s *service) Reprocess(ctx context.Context, id string) (*models.Lesson, error) {
	return s.startJob(ctx, id, func(lesson *models.Lesson) (models.JobPayload, error) {
		if lesson.Status != models.LessonStatusReady && lesson.Status != models.LessonStatusFailed {
			return nil, apperrors.Conflict("lesson", fmt.Sprintf("cannot reprocess a %s lesson", lesson.Status))
		}
		if !lesson.HasAudio() {
			return nil, apperrors.Conflict("lesson", "lesson has no audio to process")
		}
		return models.ProcessLessonPayload{LessonID: lesson.ID}, nil
	})
}

// startJob loads the lesson, lets prepare mutate it and pick the payload, then
// moves it to PROCESSING with a fresh job in one transaction
func (s *service) startJob(ctx context.Context, id string, prepare func(*models.Lesson) (models.JobPayload, error)) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		lesson, err = s.getLesson(ctx, s.repo.WithTx(tx), id)
		if err != nil {
			return err
		}
		if lesson.IsProcessing() {
			return apperrors.Conflict("lesson", "lesson is already processing")
		}

		from := lesson.Status
		payload, err := prepare(lesson)
		if err != nil {
			return err
		}
		return s.enterProcessing(ctx, tx, lesson, from, payload)
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return lesson, nil
}

// enterProcessing clears the lesson's sentences, enqueues payload and moves the
// lesson to PROCESSING. It must run inside tx.
func (s *service) enterProcessing(ctx context.Context, tx *gorm.DB, lesson *models.Lesson, from models.LessonStatus, payload models.JobPayload) error {
	if err := lesson.TransitionTo(models.LessonStatusProcessing); err != nil {
		return err
	}
	lesson.ErrorMessage = nil

	repo := s.repo.WithTx(tx)
	if err := repo.DeleteSentences(ctx, lesson.ID); err != nil {
		return err
	}
	job, err := s.jobs.EnqueueTx(ctx, tx, payload)
	if err != nil {
		return err
	}
	if err := repo.UpdateLesson(ctx, lesson, from); err != nil {
		return err
	}
	lesson.Sentences = nil

	log.Infof("Lesson %s queued %s job %d", lesson.ID, job.Type, job.ID)
	return nil
}

// Cancel stops outstanding processing. The lesson falls back to FAILED when it
// has audio, or to UPLOADED when it never had any.
func (s *service) Cancel(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson *models.Lesson
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var err error
		lesson, err = s.getLesson(ctx, repo, id)
		if err != nil {
			return err
		}
		if !lesson.IsProcessing() {
			return apperrors.Conflict("lesson", fmt.Sprintf("lesson is %s, not processing", lesson.Status))
		}

		if _, err := s.jobs.CancelForLesson(ctx, tx, lesson.ID, models.CancelledByUserMessage); err != nil {
			return err
		}

		if lesson.HasAudio() {
			err = lesson.MarkFailed(models.CancelledByUserMessage)
		} else {
			err = lesson.TransitionTo(models.LessonStatusUploaded)
			lesson.ErrorMessage = nil
		}
		if err != nil {
			return err
		}
		return repo.UpdateLesson(ctx, lesson, models.LessonStatusProcessing)
	})
	if err != nil {
		return nil, s.mapError(err)
	}

	log.Infof("Cancelled processing of lesson %s", lesson.ID)
	return lesson, nil
}

// Delete fails outstanding jobs and removes the lesson with its sentences,
// recordings and files
func (s *service) Delete(ctx context.Context, id string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := s.getLesson(ctx, repo, id); err != nil {
			return err
		}
		if _, err := s.jobs.CancelForLesson(ctx, tx, id, models.LessonDeletedMessage); err != nil {
			return err
		}
		return repo.DeleteLesson(ctx, id)
	})
	if err != nil {
		return s.mapError(err)
	}

	if s.dataDir != "" {
		if err := os.RemoveAll(LessonDir(s.dataDir, id)); err != nil {
			log.Warnf("Failed to remove files of lesson %s: %v", id, err)
		}
	}
	log.Infof("Deleted lesson %s", id)
	return nil
}

// SaveFineTune applies a fine-tune diff to a READY lesson and queues exactly one
// re-slice job. Deletes run first, then creates, then timing updates, then idx
// is re-derived from start times.
func (s *service) SaveFineTune(ctx context.Context, id string, req finetune.SaveRequest) (*SaveResult, error) {
	if err := req.Validate(); err != nil {
		var reqErr *finetune.RequestError
		if errors.As(err, &reqErr) {
			return nil, apperrors.ValidationError(reqErr.Field, reqErr.Reason)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	result := &SaveResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lesson, err := s.getLesson(ctx, repo, id)
		if err != nil {
			return err
		}
		if lesson.Status != models.LessonStatusReady {
			return apperrors.Conflict("lesson", fmt.Sprintf("only READY lessons can be fine-tuned, lesson is %s", lesson.Status))
		}

		existing, err := repo.GetSentences(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkOwnership(ctx, repo, id, existing, req); err != nil {
			return err
		}

		deleted, err := repo.DeleteSentencesByID(ctx, id, req.Deletes)
		if err != nil {
			return err
		}
		if skipped := int64(len(req.Deletes)) - deleted; skipped > 0 {
			log.Debugf("Fine-tune of lesson %s skipped %d missing delete(s)", id, skipped)
		}

		creates := make([]models.Sentence, 0, len(req.Creates))
		for _, c := range req.Creates {
			startMs, endMs := c.StartMs, c.EndMs
			sentence := models.Sentence{
				LessonID:        id,
				Idx:             c.Idx,
				ForeignText:     c.ForeignText,
				TranslationText: c.TranslationText,
				StartMs:         &startMs,
				EndMs:           &endMs,
			}
			sentence.ID = c.ID
			creates = append(creates, sentence)
		}
		if err := repo.CreateSentences(ctx, creates); err != nil {
			return err
		}

		for _, t := range req.Timings {
			if _, err := repo.UpdateTiming(ctx, id, t.ID, t.StartMs, t.EndMs); err != nil {
				return err
			}
		}

		if err := s.reindex(ctx, repo, id); err != nil {
			return err
		}

		job, err := s.jobs.EnqueueTx(ctx, tx, models.ResliceAudioPayload{LessonID: id})
		if err != nil {
			return err
		}
		if err := lesson.TransitionTo(models.LessonStatusProcessing); err != nil {
			return err
		}
		lesson.ErrorMessage = nil
		if err := repo.UpdateLesson(ctx, lesson, models.LessonStatusReady); err != nil {
			return err
		}

		if lesson.Sentences, err = repo.GetSentences(ctx, id); err != nil {
			return err
		}
		result.Lesson = lesson
		result.JobID = job.ID

		log.Infof("Fine-tune of lesson %s saved: %d timing(s), %d delete(s), %d create(s); reslice job %d",
			id, len(req.Timings), len(req.Deletes), len(req.Creates), job.ID)
		return nil
	})
	if err != nil {
		return nil, s.mapError(err)
	}
	return result, nil
}

// checkOwnership verifies that every timing targets a sentence of the lesson
// (or one being created) and that created ids are free to use
func (s *service) checkOwnership(ctx context.Context, repo Repository, lessonID string, existing []models.Sentence, req finetune.SaveRequest) error {
	owned := make(map[string]bool, len(existing))
	for _, sentence := range existing {
		owned[sentence.ID] = true
	}
	deleting := make(map[string]bool, len(req.Deletes))
	for _, id := range req.Deletes {
		deleting[id] = true
	}

	createIDs := make([]string, 0, len(req.Creates))
	creating := make(map[string]bool, len(req.Creates))
	for _, c := range req.Creates {
		createIDs = append(createIDs, c.ID)
		creating[c.ID] = true
	}

	for i, t := range req.Timings {
		if !owned[t.ID] && !creating[t.ID] {
			return apperrors.ValidationError(fmt.Sprintf("timings[%d].id", i),
				fmt.Sprintf("sentence %s does not belong to lesson %s", t.ID, lessonID))
		}
	}

	owners, err := repo.FindSentenceOwners(ctx, createIDs)
	if err != nil {
		return err
	}
	for i, c := range req.Creates {
		owner, exists := owners[c.ID]
		if !exists || (owner == lessonID && deleting[c.ID]) {
			continue
		}
		return apperrors.ValidationError(fmt.Sprintf("creates[%d].id", i),
			fmt.Sprintf("sentence id %s is already in use", c.ID))
	}
	return nil
}

// reindex re-derives idx for every sentence of the lesson from start times
func (s *service) reindex(ctx context.Context, repo Repository, lessonID string) error {
	sentences, err := repo.GetSentences(ctx, lessonID)
	if err != nil {
		return err
	}
	changed := orderSentences(sentences)
	if len(changed) == 0 {
		return nil
	}

	idx := make(map[string]int, len(sentences))
	for _, sentence := range sentences {
		idx[sentence.ID] = sentence.Idx
	}
	for _, id := range changed {
		if err := repo.UpdateIdx(ctx, id, idx[id]); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) getLesson(ctx context.Context, repo Repository, id string) (*models.Lesson, error) {
	lesson, err := repo.GetLesson(ctx, id)
	if err != nil {
		if errors.Is(err, ErrLessonNotFound) {
			return nil, apperrors.NotFound("lesson", id).WithCause(err)
		}
		return nil, apperrors.DatabaseError("get lesson", err)
	}
	return lesson, nil
}

// mapError turns state machine and repository errors into AppErrors
func (s *service) mapError(err error) error {
	if _, ok := apperrors.As(err); ok {
		return err
	}
	var transitionErr *models.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, transitionErr.Error())
	case errors.Is(err, ErrLessonChanged):
		return apperrors.Wrap(err, apperrors.ErrCodeConflict, "lesson was modified by another request")
	case errors.Is(err, ErrLessonNotFound):
		return apperrors.Wrap(err, apperrors.ErrCodeNotFound, "lesson not found")
	}
	return apperrors.Wrap(err, apperrors.ErrCodeInternal, "lesson operation failed")
}

func valueOr(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
