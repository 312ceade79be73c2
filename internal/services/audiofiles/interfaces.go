package audiofiles

import (
	"context"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// Service manages standalone audio files and their transcription jobs
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.AudioFile, error)
	Get(ctx context.Context, id string) (*models.AudioFile, error)
	List(ctx context.Context) ([]models.AudioFile, error)
	Delete(ctx context.Context, id string) error
}

// CreateInput registers an audio file already written to storage
type CreateInput struct {
	FilePath     string `json:"filePath" binding:"required" example:"./data/uploads/audio/interview.mp3"`
	OriginalName string `json:"originalName,omitempty" example:"interview.mp3"`
	Language     string `json:"language,omitempty" example:"en"`
	WhisperModel string `json:"whisperModel,omitempty" example:"base"`
}
