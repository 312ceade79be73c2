package lessons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// Repository errors
var (
	ErrLessonNotFound = errors.New("lesson not found")
	ErrLessonChanged  = errors.New("lesson status changed concurrently")
)

// Repository defines the interface for lesson and sentence persistence
type Repository interface {
	// WithTx returns a repository bound to tx
	WithTx(tx *gorm.DB) Repository

	// Lessons
	CreateLesson(ctx context.Context, lesson *models.Lesson) error
	GetLesson(ctx context.Context, id string) (*models.Lesson, error)
	ListLessons(ctx context.Context) ([]models.Lesson, error)
	UpdateLesson(ctx context.Context, lesson *models.Lesson, expected models.LessonStatus) error
	DeleteLesson(ctx context.Context, id string) error

	// Sentences
	GetSentences(ctx context.Context, lessonID string) ([]models.Sentence, error)
	FindSentenceOwners(ctx context.Context, ids []string) (map[string]string, error)
	CreateSentences(ctx context.Context, sentences []models.Sentence) error
	DeleteSentences(ctx context.Context, lessonID string) error
	DeleteSentencesByID(ctx context.Context, lessonID string, ids []string) (int64, error)
	UpdateTiming(ctx context.Context, lessonID, id string, startMs, endMs int) (int64, error)
	UpdateIdx(ctx context.Context, id string, idx int) error
	UpdateClipPath(ctx context.Context, lessonID, id string, clipPath *string) (int64, error)

	// Audio files
	FindTranscribedAudio(ctx context.Context, filePath string) (*models.AudioFile, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new lesson repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateLesson(ctx context.Context, lesson *models.Lesson) error {
	if err := r.db.WithContext(ctx).Create(lesson).Error; err != nil {
		return fmt.Errorf("creating lesson: %w", err)
	}
	return nil
}

func (r *repository) GetLesson(ctx context.Context, id string) (*models.Lesson, error) {
	var lesson models.Lesson
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLessonNotFound
		}
		return nil, fmt.Errorf("getting lesson: %w", err)
	}
	return &lesson, nil
}

// ListLessons returns lessons newest first, without sentences
func (r *repository) ListLessons(ctx context.Context) ([]models.Lesson, error) {
	var lessons []models.Lesson
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&lessons).Error; err != nil {
		return nil, fmt.Errorf("listing lessons: %w", err)
	}
	return lessons, nil
}

// UpdateLesson writes every mutable column, provided the stored status is still
// expected. ErrLessonChanged means another request moved the lesson first.
func (r *repository) UpdateLesson(ctx context.Context, lesson *models.Lesson, expected models.LessonStatus) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ? AND status = ?", lesson.ID, expected).
		Updates(map[string]interface{}{
			"title":                lesson.Title,
			"foreign_text_raw":     lesson.ForeignTextRaw,
			"translation_text_raw": lesson.TranslationTextRaw,
			"foreign_lang":         lesson.ForeignLang,
			"translation_lang":     lesson.TranslationLang,
			"whisper_model":        lesson.WhisperModel,
			"is_dialog":            lesson.IsDialog,
			"status":               lesson.Status,
			"error_message":        lesson.ErrorMessage,
			"audio_original_path":  lesson.AudioOriginalPath,
			"updated_at":           now,
		})
	if res.Error != nil {
		return fmt.Errorf("updating lesson: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLessonChanged
	}
	lesson.UpdatedAt = now
	return nil
}

// DeleteLesson removes the lesson together with its sentences and recordings
func (r *repository) DeleteLesson(ctx context.Context, id string) error {
	if err := r.DeleteSentences(ctx, id); err != nil {
		return err
	}
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Lesson{})
	if res.Error != nil {
		return fmt.Errorf("deleting lesson: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

// GetSentences returns the lesson's sentences ordered by idx
func (r *repository) GetSentences(ctx context.Context, lessonID string) ([]models.Sentence, error) {
	var sentences []models.Sentence
	err := r.db.WithContext(ctx).
		Where("lesson_id = ?", lessonID).
		Order("idx ASC").
		Find(&sentences).Error
	if err != nil {
		return nil, fmt.Errorf("getting sentences: %w", err)
	}
	return sentences, nil
}

// FindSentenceOwners maps each existing sentence id to its lesson id
func (r *repository) FindSentenceOwners(ctx context.Context, ids []string) (map[string]string, error) {
	owners := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return owners, nil
	}

	var rows []models.Sentence
	err := r.db.WithContext(ctx).
		Select("id", "lesson_id").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("looking up sentences: %w", err)
	}
	for _, row := range rows {
		owners[row.ID] = row.LessonID
	}
	return owners, nil
}

func (r *repository) CreateSentences(ctx context.Context, sentences []models.Sentence) error {
	if len(sentences) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&sentences).Error; err != nil {
		return fmt.Errorf("creating sentences: %w", err)
	}
	return nil
}

// DeleteSentences removes every sentence of the lesson and their recordings
func (r *repository) DeleteSentences(ctx context.Context, lessonID string) error {
	owned := r.db.Model(&models.Sentence{}).Select("id").Where("lesson_id = ?", lessonID)
	if err := r.db.WithContext(ctx).Where("sentence_id IN (?)", owned).Delete(&models.UserRecording{}).Error; err != nil {
		return fmt.Errorf("deleting recordings: %w", err)
	}
	if err := r.db.WithContext(ctx).Where("lesson_id = ?", lessonID).Delete(&models.Sentence{}).Error; err != nil {
		return fmt.Errorf("deleting sentences: %w", err)
	}
	return nil
}

// DeleteSentencesByID removes the listed sentences owned by the lesson; ids
// that do not exist or belong elsewhere are skipped
func (r *repository) DeleteSentencesByID(ctx context.Context, lessonID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	owned := r.db.Model(&models.Sentence{}).Select("id").Where("lesson_id = ? AND id IN ?", lessonID, ids)
	if err := r.db.WithContext(ctx).Where("sentence_id IN (?)", owned).Delete(&models.UserRecording{}).Error; err != nil {
		return 0, fmt.Errorf("deleting recordings: %w", err)
	}
	res := r.db.WithContext(ctx).Where("lesson_id = ? AND id IN ?", lessonID, ids).Delete(&models.Sentence{})
	if res.Error != nil {
		return 0, fmt.Errorf("deleting sentences: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdateTiming(ctx context.Context, lessonID, id string, startMs, endMs int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sentence{}).
		Where("id = ? AND lesson_id = ?", id, lessonID).
		Updates(map[string]interface{}{"start_ms": startMs, "end_ms": endMs})
	if res.Error != nil {
		return 0, fmt.Errorf("updating sentence timing: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository) UpdateIdx(ctx context.Context, id string, idx int) error {
	err := r.db.WithContext(ctx).
		Model(&models.Sentence{}).
		Where("id = ?", id).
		Update("idx", idx).Error
	if err != nil {
		return fmt.Errorf("updating sentence idx: %w", err)
	}
	return nil
}

func (r *repository) UpdateClipPath(ctx context.Context, lessonID, id string, clipPath *string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Sentence{}).
		Where("id = ? AND lesson_id = ?", id, lessonID).
		Update("clip_path", clipPath)
	if res.Error != nil {
		return 0, fmt.Errorf("updating clip path: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// FindTranscribedAudio returns the newest completed audio file stored at
// filePath, or nil when that audio was never transcribed
func (r *repository) FindTranscribedAudio(ctx context.Context, filePath string) (*models.AudioFile, error) {
	var files []models.AudioFile
	err := r.db.WithContext(ctx).
		Where("file_path = ? AND status = ?", filePath, models.AudioFileStatusCompleted).
		Order("updated_at DESC").
		Limit(1).
		Find(&files).Error
	if err != nil {
		return nil, fmt.Errorf("finding transcribed audio: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}
	return &files[0], nil
}
