package recordings

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// Repository errors
var (
	ErrSentenceNotFound  = errors.New("sentence not found")
	ErrRecordingNotFound = errors.New("recording not found")
)

// Repository defines the interface for recording persistence
type Repository interface {
	SentenceExists(ctx context.Context, sentenceID string) error
	Create(ctx context.Context, recording *models.UserRecording) error
	ListBySentence(ctx context.Context, sentenceID string) ([]models.UserRecording, error)
	GetByID(ctx context.Context, id string) (*models.UserRecording, error)
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new recording repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SentenceExists(ctx context.Context, sentenceID string) error {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Sentence{}).Where("id = ?", sentenceID).Count(&count).Error; err != nil {
		return fmt.Errorf("checking sentence: %w", err)
	}
	if count == 0 {
		return ErrSentenceNotFound
	}
	return nil
}

func (r *repository) Create(ctx context.Context, recording *models.UserRecording) error {
	if err := r.db.WithContext(ctx).Create(recording).Error; err != nil {
		return fmt.Errorf("creating recording: %w", err)
	}
	return nil
}

// ListBySentence returns recordings newest first
func (r *repository) ListBySentence(ctx context.Context, sentenceID string) ([]models.UserRecording, error) {
	var recordings []models.UserRecording
	err := r.db.WithContext(ctx).
		Where("sentence_id = ?", sentenceID).
		Order("created_at DESC").
		Find(&recordings).Error
	if err != nil {
		return nil, fmt.Errorf("listing recordings: %w", err)
	}
	return recordings, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*models.UserRecording, error) {
	var recording models.UserRecording
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&recording).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordingNotFound
		}
		return nil, fmt.Errorf("getting recording: %w", err)
	}
	return &recording, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.UserRecording{})
	if res.Error != nil {
		return fmt.Errorf("deleting recording: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrRecordingNotFound
	}
	return nil
}
