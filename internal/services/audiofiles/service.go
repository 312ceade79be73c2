package audiofiles

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

const audioFileDeletedMessage = "Audio file deleted"

type service struct {
	db      *gorm.DB
	repo    Repository
	jobs    jobs.Service
	dataDir string
}

// NewService creates the audio file service and registers the transcription
// handler with the queue. Files under dataDir are removed on delete.
func NewService(db *gorm.DB, repo Repository, jobService jobs.Service, dataDir string) Service {
	s := &service{db: db, repo: repo, jobs: jobService, dataDir: dataDir}
	jobService.Register(models.JobTypeTranscribeAudio, &transcribeHandler{svc: s})
	return s
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.AudioFile, error) {
	if strings.TrimSpace(input.FilePath) == "" {
		return nil, apperrors.MissingFieldError("filePath")
	}

	file := &models.AudioFile{
		FilePath:     input.FilePath,
		OriginalName: input.OriginalName,
		Language:     input.Language,
		WhisperModel: input.WhisperModel,
		Status:       models.AudioFileStatusPending,
	}
	if file.OriginalName == "" {
		file.OriginalName = filepath.Base(input.FilePath)
	}
	if file.Language == "" {
		file.Language = models.DefaultForeignLang
	}
	if file.WhisperModel == "" {
		file.WhisperModel = models.DefaultWhisperModel
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, file); err != nil {
			return err
		}
		_, err := s.jobs.EnqueueTx(ctx, tx, models.TranscribeAudioPayload{
			AudioFileID:  file.ID,
			Language:     file.Language,
			WhisperModel: file.WhisperModel,
		})
		return err
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return nil, err
		}
		return nil, apperrors.DatabaseError("create audio file", err)
	}

	log.Infof("Registered audio file %s (%s) for transcription", file.ID, file.OriginalName)
	return file, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.AudioFile, error) {
	file, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAudioFileNotFound) {
			return nil, apperrors.NotFound("audio file", id).WithCause(err)
		}
		return nil, apperrors.DatabaseError("get audio file", err)
	}
	return file, nil
}

func (s *service) List(ctx context.Context) ([]models.AudioFile, error) {
	files, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.DatabaseError("list audio files", err)
	}
	return files, nil
}

// Delete fails any outstanding transcription and removes the row. The file
// itself is removed only when it lives under the data directory.
func (s *service) Delete(ctx context.Context, id string) error {
	file, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.jobs.CancelForAudioFile(ctx, tx, id, audioFileDeletedMessage); err != nil {
			return err
		}
		return s.repo.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, ErrAudioFileNotFound) {
			return apperrors.NotFound("audio file", id).WithCause(err)
		}
		return apperrors.DatabaseError("delete audio file", err)
	}

	if s.ownsPath(file.FilePath) {
		if err := os.Remove(file.FilePath); err != nil && !os.IsNotExist(err) {
			log.Warnf("Failed to remove audio file %s: %v", file.FilePath, err)
		}
	} else {
		log.Debugf("Leaving %s in place: outside data directory", file.FilePath)
	}
	return nil
}

func (s *service) ownsPath(path string) bool {
	if s.dataDir == "" || path == "" {
		return false
	}
	root, err := filepath.Abs(s.dataDir)
	if err != nil {
		return false
	}
	target, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(root, target)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

// transcribeHandler applies TRANSCRIBE_AUDIO results to the audio file row
type transcribeHandler struct {
	svc *service
}

var _ jobs.Handler = (*transcribeHandler)(nil)

func (h *transcribeHandler) Prepare(ctx context.Context, tx *gorm.DB, claimed *models.ClaimedJob, payload models.JobPayload) error {
	p, ok := payload.(models.TranscribeAudioPayload)
	if !ok {
		return fmt.Errorf("%w: expected %s payload", models.ErrInvalidPayload, models.JobTypeTranscribeAudio)
	}

	repo := h.svc.repo.WithTx(tx)
	file, err := repo.Get(ctx, p.AudioFileID)
	if err != nil {
		if errors.Is(err, ErrAudioFileNotFound) {
			return fmt.Errorf("%w: audio file %s", jobs.ErrReferenceMissing, p.AudioFileID)
		}
		return err
	}
	if err := repo.SetStatus(ctx, file.ID, models.AudioFileStatusProcessing, nil); err != nil {
		return err
	}
	file.Status = models.AudioFileStatusProcessing
	claimed.AudioFile = file
	return nil
}

func (h *transcribeHandler) Validate(report *models.JobReport) error {
	if len(report.Result) == 0 {
		return apperrors.MissingFieldError("result")
	}
	var result models.TranscriptionResult
	if err := json.Unmarshal(report.Result, &result); err != nil {
		return apperrors.ValidationError("result", fmt.Sprintf("not a transcription: %v", err))
	}
	return nil
}

func (h *transcribeHandler) Complete(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, report *models.JobReport) error {
	p := payload.(models.TranscribeAudioPayload)
	if err := h.svc.repo.WithTx(tx).SetTranscription(ctx, p.AudioFileID, datatypes.JSON(report.Result)); err != nil {
		return err
	}
	log.Debugf("Stored transcription of audio file %s from job %d", p.AudioFileID, job.ID)
	return nil
}

func (h *transcribeHandler) Fail(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, message string) error {
	p := payload.(models.TranscribeAudioPayload)
	if message == "" {
		message = models.GenericFailureMessage
	}
	log.Warnf("Transcription job %d failed for audio file %s: %s", job.ID, p.AudioFileID, message)
	return h.svc.repo.WithTx(tx).SetStatus(ctx, p.AudioFileID, models.AudioFileStatusFailed, &message)
}
