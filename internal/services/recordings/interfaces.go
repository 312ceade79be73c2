package recordings

import (
	"context"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

// Service stores a learner's shadow-reading attempts
type Service interface {
	Create(ctx context.Context, sentenceID string, input CreateInput) (*models.UserRecording, error)
	List(ctx context.Context, sentenceID string) ([]models.UserRecording, error)
	Get(ctx context.Context, id string) (*models.UserRecording, error)
	Delete(ctx context.Context, id string) error
}

// CreateInput registers a recording already written to storage
type CreateInput struct {
	AudioPath  string `json:"audioPath" binding:"required" example:"./data/recordings/take1.webm"`
	DurationMs *int   `json:"durationMs,omitempty" example:"2300"`
}

// Prober reads the duration of a stored recording
type Prober interface {
	Probe(ctx context.Context, path string) (*ffmpeg.AudioMetadata, error)
}
