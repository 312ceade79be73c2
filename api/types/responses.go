package types

import "github.com/LeiShi1313/readrepeat/internal/models"

// Status constants for API responses
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// ErrorResponse for detailed error information
type ErrorResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Error   string      `json:"error,omitempty"`   // Error code/type
	Details interface{} `json:"details,omitempty"` // Additional error details
}

// LessonResponse wraps a single lesson
type LessonResponse struct {
	Lesson *models.Lesson `json:"lesson"`
}

// LessonsResponse wraps the lesson list
type LessonsResponse struct {
	Lessons []models.Lesson `json:"lessons"`
	Count   int             `json:"count"`
}

// JobResponse wraps a single job
type JobResponse struct {
	Job *models.Job `json:"job"`
}

// JobsResponse wraps a job list
type JobsResponse struct {
	Jobs  []models.Job `json:"jobs"`
	Count int          `json:"count"`
}

// AudioFileResponse wraps a single audio file
type AudioFileResponse struct {
	AudioFile *models.AudioFile `json:"audioFile"`
}

// AudioFilesResponse wraps the audio file list
type AudioFilesResponse struct {
	AudioFiles []models.AudioFile `json:"audioFiles"`
	Count      int                `json:"count"`
}

// RecordingResponse wraps a single recording
type RecordingResponse struct {
	Recording *models.UserRecording `json:"recording"`
}

// RecordingsResponse wraps the recordings of one sentence
type RecordingsResponse struct {
	Recordings []models.UserRecording `json:"recordings"`
	Count      int                    `json:"count"`
}

// WaveformResponse carries the peaks used by the fine-tune timeline
type WaveformResponse struct {
	LessonID   string    `json:"lessonId"`
	Peaks      []float32 `json:"peaks"`
	Duration   float64   `json:"duration"` // seconds
	Resolution int       `json:"resolution"`
	SampleRate int       `json:"sampleRate,omitempty"`
}
