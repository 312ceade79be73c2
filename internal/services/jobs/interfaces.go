package jobs

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// Service defines the business logic interface for the job queue
type Service interface {
	// Handler registry
	Register(jobType models.JobType, handler Handler)
	Handler(jobType models.JobType) (Handler, bool)

	// Enqueue operations
	Enqueue(ctx context.Context, payload models.JobPayload) (*models.Job, error)
	EnqueueTx(ctx context.Context, tx *gorm.DB, payload models.JobPayload) (*models.Job, error)

	// Status and retrieval
	GetJob(ctx context.Context, jobID uint) (*models.Job, error)
	ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error)

	// Worker protocol
	ClaimNext(ctx context.Context, workerID string) (*models.ClaimedJob, error)
	Report(ctx context.Context, workerID string, report *models.JobReport) (*models.ReportResponse, error)

	// Cancellation of outstanding work, inside the caller's transaction
	CancelForLesson(ctx context.Context, tx *gorm.DB, lessonID, message string) (int64, error)
	CancelForAudioFile(ctx context.Context, tx *gorm.DB, audioFileID, message string) (int64, error)

	// Maintenance
	ReapStale(ctx context.Context, olderThan time.Duration) (int, error)
	CleanupOldJobs(ctx context.Context, retentionDays int) (int64, error)
}

// Handler carries the job-type specific side of the protocol.
// Every method receives the transaction the job row is being changed in and
// must do all of its reads and writes through it.
type Handler interface {
	// Prepare attaches what a worker needs to a freshly claimed job.
	// Returning an error wrapping ErrReferenceMissing fails the job and the
	// claim moves on to the next one.
	Prepare(ctx context.Context, tx *gorm.DB, claimed *models.ClaimedJob, payload models.JobPayload) error

	// Validate checks the shape of a COMPLETED report before anything is written
	Validate(report *models.JobReport) error

	// Complete applies a COMPLETED report
	Complete(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, report *models.JobReport) error

	// Fail applies a failure, reported by a worker or decided by the server
	Fail(ctx context.Context, tx *gorm.DB, job *models.Job, payload models.JobPayload, message string) error
}

// ListFilter narrows ListJobs; zero values match everything
type ListFilter struct {
	Status      models.JobStatus
	Type        models.JobType
	LessonID    string
	AudioFileID string
	Limit       int
}
