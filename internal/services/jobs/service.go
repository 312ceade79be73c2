package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

// ErrReferenceMissing is wrapped by handlers when the entity a job points at is gone
var ErrReferenceMissing = errors.New("referenced entity no longer exists")

// maxClaimAttempts bounds how many jobs one poll may race for or skip
const maxClaimAttempts = 25

type service struct {
	db   *gorm.DB
	repo Repository

	mu       sync.RWMutex
	handlers map[models.JobType]Handler
}

// NewService creates the job queue service
func NewService(db *gorm.DB, repo Repository) Service {
	return &service{
		db:       db,
		repo:     repo,
		handlers: make(map[models.JobType]Handler),
	}
}

func (s *service) Register(jobType models.JobType, handler Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[jobType] = handler
}

func (s *service) Handler(jobType models.JobType) (Handler, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.handlers[jobType]
	return h, ok
}

func (s *service) Enqueue(ctx context.Context, payload models.JobPayload) (*models.Job, error) {
	return s.EnqueueTx(ctx, s.db, payload)
}

func (s *service) EnqueueTx(ctx context.Context, tx *gorm.DB, payload models.JobPayload) (*models.Job, error) {
	job, err := models.NewJob(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, err.Error())
	}

	if err := s.repo.WithTx(tx).CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("creating job: %w", err)
	}

	log.Debugf("Enqueued %s job ID %d", job.Type, job.ID)
	return job, nil
}

func (s *service) GetJob(ctx context.Context, jobID uint) (*models.Job, error) {
	job, err := s.repo.GetJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, ErrJobNotFound) {
			return nil, apperrors.NotFound("job", jobID).WithCause(err)
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return job, nil
}

func (s *service) ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error) {
	return s.repo.ListJobs(ctx, filter)
}

// ClaimNext claims the oldest PENDING job and resolves its references.
// Jobs whose referenced entity has disappeared are failed and skipped.
func (s *service) ClaimNext(ctx context.Context, workerID string) (*models.ClaimedJob, error) {
	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		claimed, err := s.claimOnce(ctx, workerID)
		switch {
		case err == nil:
			log.Debugf("Worker %s claimed %s job ID %d", workerID, claimed.Type, claimed.ID)
			return claimed, nil
		case errors.Is(err, ErrNoJobsAvailable):
			return nil, err
		case errors.Is(err, ErrJobAlreadyClaimed), errors.Is(err, errJobSkipped):
			continue
		default:
			return nil, fmt.Errorf("claiming job: %w", err)
		}
	}
	return nil, ErrNoJobsAvailable
}

var errJobSkipped = errors.New("job skipped")

func (s *service) claimOnce(ctx context.Context, workerID string) (*models.ClaimedJob, error) {
	var claimed *models.ClaimedJob
	var skipped bool

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		job, err := repo.NextPendingJob(ctx)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := repo.MarkProcessing(ctx, job.ID, workerID, now); err != nil {
			return err
		}
		job.Status = models.JobStatusProcessing
		job.WorkerID = workerID
		job.StartedAt = &now

		payload, err := job.DecodePayload()
		if err != nil {
			skipped = true
			return s.finishInTx(ctx, tx, job, nil, models.JobStatusFailed, fmt.Sprintf("Invalid payload: %v", err), nil)
		}

		result := models.NewClaimedJob(job)
		if handler, ok := s.Handler(job.Type); ok {
			if err := handler.Prepare(ctx, tx, result, payload); err != nil {
				if errors.Is(err, ErrReferenceMissing) {
					log.Warnf("Skipping %s job ID %d: %v", job.Type, job.ID, err)
					skipped = true
					return s.finishInTx(ctx, tx, job, payload, models.JobStatusFailed, err.Error(), nil)
				}
				return fmt.Errorf("preparing %s job %d: %w", job.Type, job.ID, err)
			}
		}

		claimed = result
		return nil
	})
	if err != nil {
		return nil, err
	}
	if skipped {
		return nil, errJobSkipped
	}
	return claimed, nil
}

// Report applies a worker's terminal report
func (s *service) Report(ctx context.Context, workerID string, report *models.JobReport) (*models.ReportResponse, error) {
	if report == nil || report.JobID == 0 {
		return nil, apperrors.MissingFieldError("jobId")
	}
	if !report.Status.IsTerminal() {
		return nil, apperrors.ValidationError("status", fmt.Sprintf("must be %s or %s, got %q",
			models.JobStatusCompleted, models.JobStatusFailed, report.Status))
	}

	job, err := s.GetJob(ctx, report.JobID)
	if err != nil {
		return nil, err
	}

	if report.JobType != "" && report.JobType != job.Type {
		return nil, apperrors.ValidationError("jobType", fmt.Sprintf("job %d is %s, not %s", job.ID, job.Type, report.JobType))
	}

	if job.IsTerminal() {
		log.Infof("Ignoring late %s report for job %d from %s: job already %s", report.Status, job.ID, workerID, job.Status)
		return &models.ReportResponse{Status: "ok", Superseded: true}, nil
	}

	payload, err := job.DecodePayload()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "stored job payload is invalid")
	}

	handler, hasHandler := s.Handler(job.Type)
	message := report.ErrorMessage
	if report.Status == models.JobStatusCompleted {
		message = ""
		if hasHandler {
			if err := handler.Validate(report); err != nil {
				return nil, err
			}
		}
	} else if message == "" {
		message = models.GenericFailureMessage
	}

	superseded := false
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := s.finishInTx(ctx, tx, job, payload, report.Status, message, report)
		if errors.Is(err, ErrJobAlreadyFinished) {
			superseded = true
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	if superseded {
		log.Infof("Report for job %d from %s raced with another terminal transition", job.ID, workerID)
	} else {
		log.Debugf("Worker %s reported %s for %s job ID %d", workerID, report.Status, job.Type, job.ID)
	}
	return &models.ReportResponse{Status: "ok", Superseded: superseded}, nil
}

// finishInTx performs the terminal transition and the handler side effects in tx
func (s *service) finishInTx(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, status models.JobStatus, message string, report *models.JobReport) error {
	var result []byte
	if report != nil && len(report.Result) > 0 {
		result = report.Result
	}

	if err := s.repo.WithTx(tx).FinishJob(ctx, job.ID, status, message, result); err != nil {
		return err
	}
	job.Status = status
	job.Error = message

	handler, ok := s.Handler(job.Type)
	if !ok || payload == nil {
		return nil
	}
	if status == models.JobStatusCompleted {
		return handler.Complete(ctx, tx, job, payload, report)
	}
	return handler.Fail(ctx, tx, job, payload, message)
}

func (s *service) CancelForLesson(ctx context.Context, tx *gorm.DB, lessonID, message string) (int64, error) {
	return s.cancelActive(ctx, tx, "lesson_id", lessonID, message)
}

func (s *service) CancelForAudioFile(ctx context.Context, tx *gorm.DB, audioFileID, message string) (int64, error) {
	return s.cancelActive(ctx, tx, "audio_file_id", audioFileID, message)
}

func (s *service) cancelActive(ctx context.Context, tx *gorm.DB, column, id, message string) (int64, error) {
	if tx == nil {
		tx = s.db
	}
	n, err := s.repo.WithTx(tx).FailActive(ctx, column, id, message)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		log.Debugf("Failed %d active job(s) for %s=%s: %s", n, column, id, message)
	}
	return n, nil
}

// ReapStale fails PROCESSING jobs claimed more than olderThan ago through the
// normal failure path, so their lessons leave PROCESSING as well
func (s *service) ReapStale(ctx context.Context, olderThan time.Duration) (int, error) {
	if olderThan <= 0 {
		return 0, nil
	}

	stale, err := s.repo.GetStaleJobs(ctx, time.Now().UTC().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	reaped := 0
	for i := range stale {
		job := &stale[i]
		payload, err := job.DecodePayload()
		if err != nil {
			log.Warnf("Job ID %d has an unreadable payload, failing it by reference: %v", job.ID, err)
			var ok bool
			if payload, ok = job.ReferencePayload(); !ok {
				log.Errorf("Job ID %d references nothing; only the job itself is failed", job.ID)
			}
		}

		err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.finishInTx(ctx, tx, job, payload, models.JobStatusFailed, models.JobTimedOutMessage, nil)
		})
		if errors.Is(err, ErrJobAlreadyFinished) {
			continue
		}
		if err != nil {
			return reaped, fmt.Errorf("reaping job %d: %w", job.ID, err)
		}
		log.Warnf("Reaped %s job ID %d claimed by %s at %v", job.Type, job.ID, job.WorkerID, job.StartedAt)
		reaped++
	}
	return reaped, nil
}

func (s *service) CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error) {
	if retentionDays <= 0 {
		return 0, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	deleted, err := s.repo.DeleteOldJobs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleaning up old jobs: %w", err)
	}

	if deleted > 0 {
		log.Infof("Cleaned up %d old jobs (older than %d days)", deleted, retentionDays)
	}
	return deleted, nil
}
