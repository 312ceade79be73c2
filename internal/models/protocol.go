package models

import (
	"time"

	"gorm.io/datatypes"
)

// Wire types shared by the HTTP worker endpoints and the worker client.

// ClaimedJob is a claimed job plus everything a worker needs to act on it
type ClaimedJob struct {
	ID        uint           `json:"id"`
	Type      JobType        `json:"type"`
	Status    JobStatus      `json:"status"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"createdAt"`

	Lesson    *Lesson    `json:"lesson,omitempty"`
	Sentences []Sentence `json:"sentences,omitempty"`
	AudioFile *AudioFile `json:"audioFile,omitempty"`
}

// NewClaimedJob wraps a freshly claimed job row
func NewClaimedJob(job *Job) *ClaimedJob {
	return &ClaimedJob{
		ID:        job.ID,
		Type:      job.Type,
		Status:    job.Status,
		Payload:   job.Payload,
		CreatedAt: job.CreatedAt,
	}
}

// DecodePayload returns the typed payload of the claimed job
func (c *ClaimedJob) DecodePayload() (JobPayload, error) {
	return DecodePayload(c.Type, c.Payload)
}

// PollResponse is the body of GET /api/jobs/poll; Job is nil when the queue is empty
type PollResponse struct {
	Job *ClaimedJob `json:"job"`
}

// SentenceResult is one aligned sentence produced by a full processing job
type SentenceResult struct {
	ID              string   `json:"id,omitempty"`
	Idx             int      `json:"idx"`
	ForeignText     string   `json:"foreignText"`
	TranslationText string   `json:"translationText"`
	StartMs         *int     `json:"startMs"`
	EndMs           *int     `json:"endMs"`
	ClipPath        *string  `json:"clipPath"`
	Confidence      *float64 `json:"confidence"`
}

// ClipUpdate is a sparse in-place update produced by a re-slice job
type ClipUpdate struct {
	ID       string  `json:"id"`
	ClipPath *string `json:"clipPath"`
}

// TranscriptionWord is one word of a transcription with its own timing
type TranscriptionWord struct {
	Word        string  `json:"word"`
	StartMs     int     `json:"startMs"`
	EndMs       int     `json:"endMs"`
	Probability float64 `json:"probability"`
}

// TranscriptionSegment is one timed span of a transcription
type TranscriptionSegment struct {
	StartMs int                 `json:"startMs"`
	EndMs   int                 `json:"endMs"`
	Text    string              `json:"text"`
	Words   []TranscriptionWord `json:"words,omitempty"`
}

// TranscriptionResult is the result of a TRANSCRIBE_AUDIO job
type TranscriptionResult struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language,omitempty"`
	Segments []TranscriptionSegment `json:"segments"`
}

// Words returns the word timings of all segments in order
func (r TranscriptionResult) Words() []TranscriptionWord {
	var words []TranscriptionWord
	for _, s := range r.Segments {
		words = append(words, s.Words...)
	}
	return words
}

// JobReport is the body of POST /api/jobs/poll.
// Sentences and UpdatedSentences distinguish absent (nil) from empty.
type JobReport struct {
	JobID            uint             `json:"jobId"`
	Status           JobStatus        `json:"status"`
	JobType          JobType          `json:"jobType,omitempty"`
	ErrorMessage     string           `json:"errorMessage,omitempty"`
	Sentences        []SentenceResult `json:"sentences"`
	UpdatedSentences []ClipUpdate     `json:"updatedSentences"`
	Result           datatypes.JSON   `json:"result,omitempty"`
}

// ReportResponse acknowledges a report. Superseded is true when the job had
// already reached a terminal state (cancelled or reaped) and nothing changed.
type ReportResponse struct {
	Status     string `json:"status"`
	Superseded bool   `json:"superseded"`
}
