package audiofiles

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	"github.com/LeiShi1313/readrepeat/internal/testutil"
	apperrors "github.com/LeiShi1313/readrepeat/pkg/errors"
)

func setup(t *testing.T) (jobs.Service, Service, string) {
	t.Helper()
	db := testutil.NewDB(t)
	jobService := jobs.NewService(db, jobs.NewRepository(db))
	dataDir := t.TempDir()
	return jobService, NewService(db, NewRepository(db), jobService, dataDir), dataDir
}

func TestCreateEnqueuesTranscription(t *testing.T) {
	jobService, svc, _ := setup(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{})
	assert.Equal(t, apperrors.ErrCodeMissingField, apperrors.GetCode(err))

	file, err := svc.Create(ctx, CreateInput{FilePath: "/in/talk.mp3", Language: "ja"})
	require.NoError(t, err)
	assert.Equal(t, "talk.mp3", file.OriginalName)
	assert.Equal(t, models.DefaultWhisperModel, file.WhisperModel)
	assert.Equal(t, models.AudioFileStatusPending, file.Status)

	list, err := jobService.ListJobs(ctx, jobs.ListFilter{AudioFileID: file.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	payload, err := list[0].DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, models.TranscribeAudioPayload{AudioFileID: file.ID, Language: "ja", WhisperModel: models.DefaultWhisperModel}, payload)
}

func TestTranscriptionLifecycle(t *testing.T) {
	jobService, svc, _ := setup(t)
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{FilePath: "/in/talk.mp3"})
	require.NoError(t, err)

	claimed, err := jobService.ClaimNext(ctx, "w1")
	require.NoError(t, err)
	require.NotNil(t, claimed.AudioFile)
	assert.Equal(t, file.ID, claimed.AudioFile.ID)

	got, err := svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AudioFileStatusProcessing, got.Status)

	_, err = jobService.Report(ctx, "w1", &models.JobReport{JobID: claimed.ID, Status: models.JobStatusCompleted})
	assert.Equal(t, apperrors.ErrCodeMissingField, apperrors.GetCode(err))

	result, err := json.Marshal(models.TranscriptionResult{
		Text:     "Hello world",
		Language: "en",
		Segments: []models.TranscriptionSegment{{StartMs: 0, EndMs: 900, Text: "Hello world"}},
	})
	require.NoError(t, err)
	_, err = jobService.Report(ctx, "w1", &models.JobReport{JobID: claimed.ID, Status: models.JobStatusCompleted, Result: result})
	require.NoError(t, err)

	got, err = svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AudioFileStatusCompleted, got.Status)
	var stored models.TranscriptionResult
	require.NoError(t, json.Unmarshal(got.Transcription, &stored))
	assert.Equal(t, "Hello world", stored.Text)
	require.Len(t, stored.Segments, 1)
}

func TestTranscriptionFailure(t *testing.T) {
	jobService, svc, _ := setup(t)
	ctx := context.Background()

	file, err := svc.Create(ctx, CreateInput{FilePath: "/in/talk.mp3"})
	require.NoError(t, err)
	claimed, err := jobService.ClaimNext(ctx, "w1")
	require.NoError(t, err)

	_, err = jobService.Report(ctx, "w1", &models.JobReport{JobID: claimed.ID, Status: models.JobStatusFailed})
	require.NoError(t, err)

	got, err := svc.Get(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AudioFileStatusFailed, got.Status)
	require.NotNil(t, got.ErrorMessage)
	assert.Equal(t, models.GenericFailureMessage, *got.ErrorMessage)
}

func TestDelete(t *testing.T) {
	jobService, svc, dataDir := setup(t)
	ctx := context.Background()

	owned := filepath.Join(dataDir, "uploads", "audio", "a.mp3")
	require.NoError(t, os.MkdirAll(filepath.Dir(owned), 0o755))
	require.NoError(t, os.WriteFile(owned, []byte("audio"), 0o644))
	outside := filepath.Join(t.TempDir(), "b.mp3")
	require.NoError(t, os.WriteFile(outside, []byte("audio"), 0o644))

	a, err := svc.Create(ctx, CreateInput{FilePath: owned})
	require.NoError(t, err)
	b, err := svc.Create(ctx, CreateInput{FilePath: outside})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.NoError(t, svc.Delete(ctx, b.ID))

	assert.NoFileExists(t, owned)
	assert.FileExists(t, outside)

	list, err := jobService.ListJobs(ctx, jobs.ListFilter{AudioFileID: a.ID})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.JobStatusFailed, list[0].Status)

	_, err = svc.Get(ctx, a.ID)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(svc.Delete(ctx, a.ID)))

	_, err = jobService.ClaimNext(ctx, "w1")
	assert.ErrorIs(t, err, jobs.ErrNoJobsAvailable)
}
