package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UUIDModel is the shared primary key and timestamp block for entities that are
// addressed by string ids (lessons, sentences, audio files, recordings).
type UUIDModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID when the caller did not supply one
func (m *UUIDModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// Lesson is one unit of learning content: a text pair plus its aligned audio
type Lesson struct {
	UUIDModel
	Title              string       `json:"title" gorm:"not null"`
	ForeignTextRaw     string       `json:"foreignTextRaw" gorm:"type:text;not null"`
	TranslationTextRaw string       `json:"translationTextRaw" gorm:"type:text"`
	ForeignLang        string       `json:"foreignLang" gorm:"default:'en'"`
	TranslationLang    string       `json:"translationLang" gorm:"default:'zh'"`
	WhisperModel       string       `json:"whisperModel" gorm:"default:'base'"`
	IsDialog           bool         `json:"isDialog" gorm:"default:false"`
	Status             LessonStatus `json:"status" gorm:"not null;default:'UPLOADED';index"`
	ErrorMessage       *string      `json:"errorMessage"`
	AudioOriginalPath  *string      `json:"audioOriginalPath"`
	Sentences          []Sentence   `json:"sentences,omitempty" gorm:"foreignKey:LessonID;constraint:OnDelete:CASCADE"`
}

// Sentence is one time-bounded, independently playable segment of a lesson
type Sentence struct {
	UUIDModel
	LessonID        string          `json:"lessonId" gorm:"type:varchar(36);not null;index:idx_sentences_lesson_idx"`
	Idx             int             `json:"idx" gorm:"not null;index:idx_sentences_lesson_idx"`
	ForeignText     string          `json:"foreignText" gorm:"type:text;not null"`
	TranslationText string          `json:"translationText" gorm:"type:text"`
	StartMs         *int            `json:"startMs"`
	EndMs           *int            `json:"endMs"`
	ClipPath        *string         `json:"clipPath"`
	Confidence      *float64        `json:"confidence"`
	Recordings      []UserRecording `json:"-" gorm:"foreignKey:SentenceID;constraint:OnDelete:CASCADE"`
}

// UserRecording is a learner's shadow-reading attempt for one sentence
type UserRecording struct {
	UUIDModel
	SentenceID string `json:"sentenceId" gorm:"type:varchar(36);not null;index"`
	AudioPath  string `json:"audioPath" gorm:"not null"`
	DurationMs *int   `json:"durationMs"`
}

// AudioFileStatus mirrors the lifecycle of the TRANSCRIBE_AUDIO job that owns it
type AudioFileStatus string

const (
	AudioFileStatusPending    AudioFileStatus = "PENDING"
	AudioFileStatusProcessing AudioFileStatus = "PROCESSING"
	AudioFileStatusCompleted  AudioFileStatus = "COMPLETED"
	AudioFileStatusFailed     AudioFileStatus = "FAILED"
)

// AudioFile is a standalone upload transcribed outside of any lesson
type AudioFile struct {
	UUIDModel
	FilePath      string          `json:"filePath" gorm:"not null"`
	OriginalName  string          `json:"originalName"`
	Language      string          `json:"language" gorm:"default:'en'"`
	WhisperModel  string          `json:"whisperModel" gorm:"default:'base'"`
	Status        AudioFileStatus `json:"status" gorm:"not null;default:'PENDING';index"`
	Transcription datatypes.JSON  `json:"transcription" gorm:"type:json"`
	ErrorMessage  *string         `json:"errorMessage"`
}

// TableName specifies the table name for GORM
func (UserRecording) TableName() string {
	return "user_recordings"
}

// TableName specifies the table name for GORM
func (AudioFile) TableName() string {
	return "audio_files"
}

// All returns every persisted model in migration order
func All() []any {
	return []any{&Lesson{}, &Sentence{}, &UserRecording{}, &AudioFile{}, &Job{}}
}
