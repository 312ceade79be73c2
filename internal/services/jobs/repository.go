package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// Repository errors
var (
	ErrJobNotFound        = errors.New("job not found")
	ErrNoJobsAvailable    = errors.New("no jobs available")
	ErrJobAlreadyClaimed  = errors.New("job already claimed")
	ErrJobAlreadyFinished = errors.New("job already finished")
)

const maxListLimit = 500

// Repository defines the interface for job persistence
type Repository interface {
	// WithTx returns a repository bound to tx
	WithTx(tx *gorm.DB) Repository

	// Create operations
	CreateJob(ctx context.Context, job *models.Job) error

	// Read operations
	GetJob(ctx context.Context, id uint) (*models.Job, error)
	ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error)
	CountActiveForLesson(ctx context.Context, lessonID string) (int64, error)
	GetStaleJobs(ctx context.Context, startedBefore time.Time) ([]models.Job, error)

	// Claim operations
	NextPendingJob(ctx context.Context) (*models.Job, error)
	MarkProcessing(ctx context.Context, jobID uint, workerID string, at time.Time) error

	// Update operations
	FinishJob(ctx context.Context, jobID uint, status models.JobStatus, errorMsg string, result datatypes.JSON) error
	FailActive(ctx context.Context, column, value, errorMsg string) (int64, error)

	// Delete operations
	DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error)
}

// repository implements Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new job repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{
		db: db,
	}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

// CreateJob creates a new job
func (r *repository) CreateJob(ctx context.Context, job *models.Job) error {
	return r.db.WithContext(ctx).Create(job).Error
}

// GetJob retrieves a job by ID
func (r *repository) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).First(&job, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("getting job: %w", err)
	}
	return &job, nil
}

// ListJobs returns jobs newest first
func (r *repository) ListJobs(ctx context.Context, filter ListFilter) ([]models.Job, error) {
	query := r.db.WithContext(ctx).Model(&models.Job{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.LessonID != "" {
		query = query.Where("lesson_id = ?", filter.LessonID)
	}
	if filter.AudioFileID != "" {
		query = query.Where("audio_file_id = ?", filter.AudioFileID)
	}

	limit := filter.Limit
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}

	var jobs []models.Job
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&jobs).Error; err != nil {
		return nil, fmt.Errorf("listing jobs: %w", err)
	}
	return jobs, nil
}

// CountActiveForLesson counts PENDING and PROCESSING jobs referencing the lesson
func (r *repository) CountActiveForLesson(ctx context.Context, lessonID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("lesson_id = ?", lessonID).
		Where("status IN ?", []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("counting active jobs: %w", err)
	}
	return count, nil
}

// GetStaleJobs returns PROCESSING jobs claimed before the cutoff
func (r *repository) GetStaleJobs(ctx context.Context, startedBefore time.Time) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.WithContext(ctx).
		Where("status = ?", models.JobStatusProcessing).
		Where("started_at < ?", startedBefore).
		Order("started_at ASC, id ASC").
		Find(&jobs).Error
	if err != nil {
		return nil, fmt.Errorf("finding stale jobs: %w", err)
	}
	return jobs, nil
}

// NextPendingJob locks and returns the oldest PENDING job.
// Row locks are skipped on SQLite, where the write lock serializes claims.
func (r *repository) NextPendingJob(ctx context.Context) (*models.Job, error) {
	var job models.Job
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status = ?", models.JobStatusPending).
		Order("created_at ASC, id ASC").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoJobsAvailable
		}
		return nil, fmt.Errorf("finding job to claim: %w", err)
	}
	return &job, nil
}

// MarkProcessing flips a job from PENDING to PROCESSING; it fails with
// ErrJobAlreadyClaimed when another claimant got there first
func (r *repository) MarkProcessing(ctx context.Context, jobID uint, workerID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ? AND status = ?", jobID, models.JobStatusPending).
		Updates(map[string]interface{}{
			"status":     models.JobStatusProcessing,
			"worker_id":  workerID,
			"started_at": at,
		})
	if result.Error != nil {
		return fmt.Errorf("updating claimed job: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrJobAlreadyClaimed
	}
	return nil
}

// FinishJob moves a non-terminal job to a terminal status
func (r *repository) FinishJob(ctx context.Context, jobID uint, status models.JobStatus, errorMsg string, result datatypes.JSON) error {
	if !status.IsTerminal() {
		return fmt.Errorf("finishing job %d: %s is not a terminal status", jobID, status)
	}

	updates := map[string]interface{}{
		"status":       status,
		"error":        errorMsg,
		"completed_at": time.Now().UTC(),
	}
	if len(result) > 0 {
		updates["result"] = result
	}

	res := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where("id = ?", jobID).
		Where("status IN ?", []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing}).
		Updates(updates)
	if res.Error != nil {
		return fmt.Errorf("finishing job: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrJobAlreadyFinished
	}
	return nil
}

// FailActive fails every PENDING or PROCESSING job whose reference column matches
func (r *repository) FailActive(ctx context.Context, column, value, errorMsg string) (int64, error) {
	switch column {
	case "lesson_id", "audio_file_id":
	default:
		return 0, fmt.Errorf("failing jobs: unsupported reference column %q", column)
	}

	res := r.db.WithContext(ctx).
		Model(&models.Job{}).
		Where(column+" = ?", value).
		Where("status IN ?", []models.JobStatus{models.JobStatusPending, models.JobStatusProcessing}).
		Updates(map[string]interface{}{
			"status":       models.JobStatusFailed,
			"error":        errorMsg,
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, fmt.Errorf("failing jobs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteOldJobs deletes terminal jobs created before olderThan
func (r *repository) DeleteOldJobs(ctx context.Context, olderThan time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", olderThan).
		Where("status IN ?", []models.JobStatus{
			models.JobStatusCompleted,
			models.JobStatusFailed,
		}).
		Delete(&models.Job{})

	if result.Error != nil {
		return 0, fmt.Errorf("deleting old jobs: %w", result.Error)
	}

	return result.RowsAffected, nil
}
