// Package testutil holds fixtures shared by service and handler tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// A single connection is used so transactions and plain queries see the
// same database; code under test must route queries inside a transaction
// through the transaction handle.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "?", "_", "&", "_", "=", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// SeedLesson inserts a lesson in the given status
func SeedLesson(t testing.TB, db *gorm.DB, status models.LessonStatus, audioPath string) *models.Lesson {
	t.Helper()
	lesson := &models.Lesson{
		Title:              "Lesson",
		ForeignTextRaw:     "Hello there. How are you? Fine.",
		TranslationTextRaw: "你好。你好吗？很好。",
		ForeignLang:        models.DefaultForeignLang,
		TranslationLang:    models.DefaultTranslationLang,
		WhisperModel:       models.DefaultWhisperModel,
		Status:             status,
	}
	if audioPath != "" {
		lesson.AudioOriginalPath = &audioPath
	}
	require.NoError(t, db.Create(lesson).Error)
	return lesson
}

// SeedSentences inserts n sentences of one second each, starting at 0
func SeedSentences(t testing.TB, db *gorm.DB, lessonID string, n int) []models.Sentence {
	t.Helper()
	sentences := make([]models.Sentence, 0, n)
	for i := 0; i < n; i++ {
		sentence := models.Sentence{
			LessonID:        lessonID,
			Idx:             i,
			ForeignText:     fmt.Sprintf("Sentence %d.", i),
			TranslationText: fmt.Sprintf("句子 %d。", i),
			StartMs:         Ptr(i * 1000),
			EndMs:           Ptr((i + 1) * 1000),
			Confidence:      Ptr(0.9),
		}
		require.NoError(t, db.Create(&sentence).Error)
		sentences = append(sentences, sentence)
	}
	return sentences
}
