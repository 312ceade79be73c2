package workers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

func TestClientPoll(t *testing.T) {
	audio := "/data/uploads/lessons/l1/original.wav"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/jobs/poll", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.PollResponse{Job: &models.ClaimedJob{
			ID:      7,
			Type:    models.JobTypeResliceAudio,
			Status:  models.JobStatusProcessing,
			Payload: []byte(`{"lessonId":"l1"}`),
			Lesson:  &models.Lesson{UUIDModel: models.UUIDModel{ID: "l1"}, AudioOriginalPath: &audio},
		}})
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", "tok", time.Second)
	job, err := client.Poll(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, uint(7), job.ID)
	assert.Equal(t, "l1", job.Lesson.ID)

	payload, err := job.DecodePayload()
	require.NoError(t, err)
	assert.Equal(t, models.ResliceAudioPayload{LessonID: "l1"}, payload)
}

func TestClientPollEmptyQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "gpu-box", r.Header.Get("X-Worker-Name"))
		_, _ = w.Write([]byte(`{"job": null}`))
	}))
	defer server.Close()

	job, err := NewClient(server.URL, "", 0).WithName("gpu-box").Poll(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
}

func TestClientReport(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"status": "ok", "superseded": true}`))
	}))
	defer server.Close()

	resp, err := NewClient(server.URL, "", 0).Report(context.Background(), &models.JobReport{
		JobID:            3,
		Status:           models.JobStatusCompleted,
		JobType:          models.JobTypeResliceAudio,
		UpdatedSentences: []models.ClipUpdate{},
	})
	require.NoError(t, err)
	assert.True(t, resp.Superseded)

	assert.Equal(t, float64(3), got["jobId"])
	assert.Equal(t, "COMPLETED", got["status"])
	assert.Equal(t, []interface{}{}, got["updatedSentences"])
	assert.Nil(t, got["sentences"])
}

func TestClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status": "error", "error": "UNAUTHORIZED", "message": "Invalid or expired token"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, "bad", 0).Poll(context.Background())
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, "Invalid or expired token", statusErr.Message)
}
