package lessons

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	"github.com/LeiShi1313/readrepeat/internal/testutil"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

func (e *testEnv) claim(t *testing.T) *models.ClaimedJob {
	t.Helper()
	claimed, err := e.jobs.ClaimNext(context.Background(), "test-worker")
	require.NoError(t, err)
	return claimed
}

func TestProcessLessonCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, lesson.ID, "/audio/a.mp3")
	require.NoError(t, err)

	claimed := env.claim(t)
	assert.Equal(t, models.JobTypeProcessLesson, claimed.Type)
	require.NotNil(t, claimed.Lesson)
	assert.Equal(t, lesson.ID, claimed.Lesson.ID)
	assert.Empty(t, claimed.Sentences)

	// Results arrive out of order; idx follows start time
	resp, err := env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:  claimed.ID,
		Status: models.JobStatusCompleted,
		Sentences: []models.SentenceResult{
			{Idx: 0, ForeignText: "Second.", StartMs: testutil.Ptr(1500), EndMs: testutil.Ptr(2500), ClipPath: testutil.Ptr("clips/1.wav")},
			{Idx: 1, ForeignText: "First.", TranslationText: "第一。", StartMs: testutil.Ptr(0), EndMs: testutil.Ptr(1500), Confidence: testutil.Ptr(0.8)},
		},
	})
	require.NoError(t, err)
	assert.False(t, resp.Superseded)

	ready := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusReady, ready.Status)
	assert.Nil(t, ready.ErrorMessage)
	require.Len(t, ready.Sentences, 2)
	assert.Equal(t, "First.", ready.Sentences[0].ForeignText)
	assert.Equal(t, 0, ready.Sentences[0].Idx)
	assert.Equal(t, "Second.", ready.Sentences[1].ForeignText)
	assert.Equal(t, 1, ready.Sentences[1].Idx)
	assert.Equal(t, "/audio/a.mp3", *ready.AudioOriginalPath)
}

func TestProcessLessonEmptyCompletion(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusReady, "/a.wav")
	testutil.SeedSentences(t, env.db, lesson.ID, 2)
	_, err := env.lessons.Reprocess(ctx, lesson.ID)
	require.NoError(t, err)

	claimed := env.claim(t)
	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:     claimed.ID,
		Status:    models.JobStatusCompleted,
		Sentences: []models.SentenceResult{},
	})
	require.NoError(t, err)

	ready := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusReady, ready.Status)
	assert.Empty(t, ready.Sentences)
}

func TestProcessLessonCarriesCachedTranscription(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	transcribed := &models.AudioFile{
		FilePath:      "/audio/talk.wav",
		Status:        models.AudioFileStatusCompleted,
		Transcription: datatypes.JSON(`{"text":"Hello.","segments":[{"startMs":0,"endMs":600,"text":"Hello.","words":[{"word":"Hello.","startMs":0,"endMs":600,"probability":0.9}]}]}`),
	}
	require.NoError(t, env.db.Create(transcribed).Error)
	require.NoError(t, env.db.Create(&models.AudioFile{FilePath: "/audio/talk.wav", Status: models.AudioFileStatusFailed}).Error)
	require.NoError(t, env.db.Create(&models.AudioFile{FilePath: "/audio/other.wav", Status: models.AudioFileStatusCompleted}).Error)

	cached := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, cached.ID, "/audio/talk.wav")
	require.NoError(t, err)

	claimed := env.claim(t)
	assert.Equal(t, cached.ID, claimed.Lesson.ID)
	require.NotNil(t, claimed.AudioFile)
	assert.Equal(t, transcribed.ID, claimed.AudioFile.ID)
	assert.JSONEq(t, string(transcribed.Transcription), string(claimed.AudioFile.Transcription))

	fresh := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err = env.lessons.AttachAudio(ctx, fresh.ID, "/audio/new.wav")
	require.NoError(t, err)

	claimed = env.claim(t)
	assert.Equal(t, fresh.ID, claimed.Lesson.ID)
	assert.Nil(t, claimed.AudioFile)
}

func TestCompletionRequiresSentences(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, lesson.ID, "/a.wav")
	require.NoError(t, err)
	claimed := env.claim(t)

	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{JobID: claimed.ID, Status: models.JobStatusCompleted})
	assertCode(t, err, apperrors.ErrCodeMissingField)
	assert.Equal(t, models.LessonStatusProcessing, env.reload(t, lesson.ID).Status)

	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:     claimed.ID,
		Status:    models.JobStatusCompleted,
		Sentences: []models.SentenceResult{{ForeignText: "x", StartMs: testutil.Ptr(500), EndMs: testutil.Ptr(100)}},
	})
	assertCode(t, err, apperrors.ErrCodeValidation)
}

func TestTTSCompletionRecordsCanonicalPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.StartSynthesis(ctx, lesson.ID, TTSOptions{})
	require.NoError(t, err)

	claimed := env.claim(t)
	assert.Equal(t, models.JobTypeGenerateTTSLesson, claimed.Type)
	require.NotNil(t, claimed.Lesson)

	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:     claimed.ID,
		Status:    models.JobStatusCompleted,
		JobType:   models.JobTypeGenerateTTSLesson,
		Sentences: []models.SentenceResult{{ForeignText: "Hi.", StartMs: testutil.Ptr(0), EndMs: testutil.Ptr(800)}},
	})
	require.NoError(t, err)

	ready := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusReady, ready.Status)
	require.NotNil(t, ready.AudioOriginalPath)
	assert.Equal(t, CanonicalAudioPath(env.dataDir, lesson.ID), *ready.AudioOriginalPath)
	assert.Len(t, ready.Sentences, 1)
}

func TestFailedReportKeepsAudioPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, lesson.ID, "/a.wav")
	require.NoError(t, err)
	claimed := env.claim(t)

	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:        claimed.ID,
		Status:       models.JobStatusFailed,
		ErrorMessage: "whisper crashed",
	})
	require.NoError(t, err)

	failed := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusFailed, failed.Status)
	require.NotNil(t, failed.ErrorMessage)
	assert.Equal(t, "whisper crashed", *failed.ErrorMessage)
	require.NotNil(t, failed.AudioOriginalPath)
	assert.Equal(t, "/a.wav", *failed.AudioOriginalPath)

	// A failed lesson with audio can be retried
	_, err = env.lessons.Reprocess(ctx, lesson.ID)
	require.NoError(t, err)
}

func TestResliceRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusReady, "/lessons/x/original.wav")
	sentences := testutil.SeedSentences(t, env.db, lesson.ID, 3)
	_, err := env.lessons.SaveFineTune(ctx, lesson.ID, finetuneRetime(sentences[2].ID, 2000, 2900))
	require.NoError(t, err)

	claimed := env.claim(t)
	assert.Equal(t, models.JobTypeResliceAudio, claimed.Type)
	require.NotNil(t, claimed.Lesson)
	require.Len(t, claimed.Sentences, 3)
	for i, s := range claimed.Sentences {
		assert.Equal(t, i, s.Idx)
	}

	_, err = env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:  claimed.ID,
		Status: models.JobStatusCompleted,
		UpdatedSentences: []models.ClipUpdate{
			{ID: sentences[0].ID, ClipPath: testutil.Ptr("/lessons/x/clips/0.wav")},
			{ID: sentences[2].ID, ClipPath: testutil.Ptr("/lessons/x/clips/2.wav")},
			{ID: "unknown", ClipPath: testutil.Ptr("/lessons/x/clips/9.wav")},
		},
	})
	require.NoError(t, err)

	ready := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusReady, ready.Status)
	require.Len(t, ready.Sentences, 3)
	assert.Equal(t, "/lessons/x/clips/0.wav", *ready.Sentences[0].ClipPath)
	assert.Nil(t, ready.Sentences[1].ClipPath)
	assert.Equal(t, "/lessons/x/clips/2.wav", *ready.Sentences[2].ClipPath)
	assert.Equal(t, 2900, *ready.Sentences[2].EndMs)
}

func TestLateCompletionAfterCancelIsIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	lesson := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, lesson.ID, "/a.wav")
	require.NoError(t, err)
	claimed := env.claim(t)

	_, err = env.lessons.Cancel(ctx, lesson.ID)
	require.NoError(t, err)

	resp, err := env.jobs.Report(ctx, "test-worker", &models.JobReport{
		JobID:     claimed.ID,
		Status:    models.JobStatusCompleted,
		Sentences: []models.SentenceResult{{ForeignText: "Late."}},
	})
	require.NoError(t, err)
	assert.True(t, resp.Superseded)

	cancelled := env.reload(t, lesson.ID)
	assert.Equal(t, models.LessonStatusFailed, cancelled.Status)
	assert.Equal(t, models.CancelledByUserMessage, *cancelled.ErrorMessage)
	assert.Empty(t, cancelled.Sentences)
}

func TestClaimSkipsJobsOfVanishedLessons(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	gone := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	kept := testutil.SeedLesson(t, env.db, models.LessonStatusUploaded, "")
	_, err := env.lessons.AttachAudio(ctx, gone.ID, "/gone.wav")
	require.NoError(t, err)
	_, err = env.lessons.AttachAudio(ctx, kept.ID, "/kept.wav")
	require.NoError(t, err)

	// Remove the row behind the service's back
	require.NoError(t, env.db.Where("id = ?", gone.ID).Delete(&models.Lesson{}).Error)

	claimed := env.claim(t)
	assert.Equal(t, kept.ID, claimed.Lesson.ID)

	skipped := env.lessonJobs(t, gone.ID)
	require.Len(t, skipped, 1)
	assert.Equal(t, models.JobStatusFailed, skipped[0].Status)
	assert.Contains(t, skipped[0].Error, gone.ID)

	_, err = env.jobs.ClaimNext(ctx, "test-worker")
	assert.ErrorIs(t, err, jobs.ErrNoJobsAvailable)
}
