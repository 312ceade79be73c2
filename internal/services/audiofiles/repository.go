package audiofiles

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// ErrAudioFileNotFound is returned when no audio file has the requested id
var ErrAudioFileNotFound = errors.New("audio file not found")

// Repository defines the interface for audio file persistence
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, file *models.AudioFile) error
	Get(ctx context.Context, id string) (*models.AudioFile, error)
	List(ctx context.Context) ([]models.AudioFile, error)
	SetStatus(ctx context.Context, id string, status models.AudioFileStatus, errorMsg *string) error
	SetTranscription(ctx context.Context, id string, transcription datatypes.JSON) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new audio file repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, file *models.AudioFile) error {
	if err := r.db.WithContext(ctx).Create(file).Error; err != nil {
		return fmt.Errorf("creating audio file: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*models.AudioFile, error) {
	var file models.AudioFile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&file).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAudioFileNotFound
		}
		return nil, fmt.Errorf("getting audio file: %w", err)
	}
	return &file, nil
}

func (r *repository) List(ctx context.Context) ([]models.AudioFile, error) {
	var files []models.AudioFile
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&files).Error; err != nil {
		return nil, fmt.Errorf("listing audio files: %w", err)
	}
	return files, nil
}

func (r *repository) SetStatus(ctx context.Context, id string, status models.AudioFileStatus, errorMsg *string) error {
	err := r.db.WithContext(ctx).
		Model(&models.AudioFile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        status,
			"error_message": errorMsg,
		}).Error
	if err != nil {
		return fmt.Errorf("updating audio file status: %w", err)
	}
	return nil
}

// SetTranscription stores the result and marks the file COMPLETED
func (r *repository) SetTranscription(ctx context.Context, id string, transcription datatypes.JSON) error {
	err := r.db.WithContext(ctx).
		Model(&models.AudioFile{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        models.AudioFileStatusCompleted,
			"transcription": transcription,
			"error_message": nil,
		}).Error
	if err != nil {
		return fmt.Errorf("storing transcription: %w", err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.AudioFile{})
	if res.Error != nil {
		return fmt.Errorf("deleting audio file: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAudioFileNotFound
	}
	return nil
}
