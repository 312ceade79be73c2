package lessons

import (
	"context"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/finetune"
)

// Service defines the lesson state machine and the fine-tune save
type Service interface {
	// CRUD
	Create(ctx context.Context, input CreateInput) (*models.Lesson, error)
	Get(ctx context.Context, id string) (*models.Lesson, error)
	List(ctx context.Context) ([]models.Lesson, error)
	Edit(ctx context.Context, id string, input EditInput) (*models.Lesson, error)
	Delete(ctx context.Context, id string) error

	// Pipeline actions
	AttachAudio(ctx context.Context, id, audioPath string) (*models.Lesson, error)
	StartSynthesis(ctx context.Context, id string, opts TTSOptions) (*models.Lesson, error)
	Reprocess(ctx context.Context, id string) (*models.Lesson, error)
	Cancel(ctx context.Context, id string) (*models.Lesson, error)

	// Fine-tune
	SaveFineTune(ctx context.Context, id string, req finetune.SaveRequest) (*SaveResult, error)

	// Jobs referencing the lesson, newest first
	Jobs(ctx context.Context, id string) ([]models.Job, error)
}

// CreateInput holds the fields accepted when creating a lesson
type CreateInput struct {
	Title              string `json:"title" binding:"required" example:"At the cafe"`
	ForeignTextRaw     string `json:"foreignTextRaw" binding:"required" example:"Hello. A coffee, please."`
	TranslationTextRaw string `json:"translationTextRaw" example:"你好。请来一杯咖啡。"`
	ForeignLang        string `json:"foreignLang,omitempty" example:"en"`
	TranslationLang    string `json:"translationLang,omitempty" example:"zh"`
	WhisperModel       string `json:"whisperModel,omitempty" example:"base"`
	IsDialog           bool   `json:"isDialog,omitempty"`
}

// EditInput holds a partial lesson update; nil fields are left unchanged
type EditInput struct {
	Title              *string `json:"title,omitempty"`
	ForeignTextRaw     *string `json:"foreignTextRaw,omitempty"`
	TranslationTextRaw *string `json:"translationTextRaw,omitempty"`
	ForeignLang        *string `json:"foreignLang,omitempty"`
	TranslationLang    *string `json:"translationLang,omitempty"`
	WhisperModel       *string `json:"whisperModel,omitempty"`
	IsDialog           *bool   `json:"isDialog,omitempty"`
}

// TTSOptions selects the voice used to synthesize lesson audio
type TTSOptions struct {
	VoiceName   string `json:"voiceName,omitempty" example:"Zephyr"`
	TTSModel    string `json:"ttsModel,omitempty"`
	SpeakerMode string `json:"speakerMode,omitempty" example:"article"`
	Voice2Name  string `json:"voice2Name,omitempty" example:"Kore"`
}

// SaveResult is returned by a successful fine-tune save
type SaveResult struct {
	Lesson *models.Lesson `json:"lesson"`
	JobID  uint           `json:"jobId"`
}
