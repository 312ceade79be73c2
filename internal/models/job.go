package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// JobStatus represents the status of a job in the queue
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// IsTerminal reports whether no further transition is possible
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// JobType represents the type of job to be processed
type JobType string

const (
	JobTypeProcessLesson     JobType = "PROCESS_LESSON"
	JobTypeGenerateTTSLesson JobType = "GENERATE_TTS_LESSON"
	JobTypeResliceAudio      JobType = "RESLICE_AUDIO"
	JobTypeTranscribeAudio   JobType = "TRANSCRIBE_AUDIO"
)

// KnownJobTypes lists every job type with a registered payload shape
var KnownJobTypes = []JobType{
	JobTypeProcessLesson,
	JobTypeGenerateTTSLesson,
	JobTypeResliceAudio,
	JobTypeTranscribeAudio,
}

// Job represents a unit of queued pipeline work.
// The auto-increment ID doubles as insertion order for claim tie breaks.
type Job struct {
	ID          uint           `json:"id" gorm:"primaryKey;autoIncrement"`
	Type        JobType        `json:"type" gorm:"not null;index:idx_jobs_type_status"`
	Status      JobStatus      `json:"status" gorm:"not null;default:'PENDING';index:idx_jobs_status_created;index:idx_jobs_type_status"`
	Payload     datatypes.JSON `json:"payload" gorm:"type:json;not null"`
	LessonID    *string        `json:"lessonId,omitempty" gorm:"type:varchar(36);index"`
	AudioFileID *string        `json:"audioFileId,omitempty" gorm:"type:varchar(36);index"`
	Error       string         `json:"error,omitempty"`
	Result      datatypes.JSON `json:"result,omitempty" gorm:"type:json"`
	WorkerID    string         `json:"workerId,omitempty"`
	StartedAt   *time.Time     `json:"startedAt,omitempty"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
	CreatedAt   time.Time      `json:"createdAt" gorm:"index:idx_jobs_status_created"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Job) TableName() string {
	return "jobs"
}

// NewJob builds a PENDING job from a typed payload, validating it first
func NewJob(payload JobPayload) (*Job, error) {
	if payload == nil {
		return nil, fmt.Errorf("%w: nil payload", ErrInvalidPayload)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", payload.JobType(), err)
	}

	job := &Job{
		Type:    payload.JobType(),
		Status:  JobStatusPending,
		Payload: datatypes.JSON(raw),
	}
	if ref, ok := payload.(LessonReference); ok {
		id := ref.LessonRef()
		job.LessonID = &id
	}
	if ref, ok := payload.(AudioFileReference); ok {
		id := ref.AudioFileRef()
		job.AudioFileID = &id
	}
	return job, nil
}

// DecodePayload returns the typed payload stored on the job
func (j *Job) DecodePayload() (JobPayload, error) {
	return DecodePayload(j.Type, j.Payload)
}

// ReferencePayload rebuilds the minimal payload implied by the job's
// reference columns. It is used when the stored payload no longer decodes.
func (j *Job) ReferencePayload() (JobPayload, bool) {
	lessonID := ""
	if j.LessonID != nil {
		lessonID = *j.LessonID
	}

	var payload JobPayload
	switch j.Type {
	case JobTypeProcessLesson:
		payload = ProcessLessonPayload{LessonID: lessonID}
	case JobTypeGenerateTTSLesson:
		payload = GenerateTTSPayload{LessonID: lessonID}.WithDefaults()
	case JobTypeResliceAudio:
		payload = ResliceAudioPayload{LessonID: lessonID}
	case JobTypeTranscribeAudio:
		if j.AudioFileID == nil {
			return nil, false
		}
		payload = TranscribeAudioPayload{AudioFileID: *j.AudioFileID}
	default:
		return nil, false
	}
	if payload.Validate() != nil {
		return nil, false
	}
	return payload, true
}

// IsTerminal returns true if the job is in a terminal state
func (j *Job) IsTerminal() bool {
	return j.Status.IsTerminal()
}

// ReferencesLesson reports whether the job's payload points at the lesson
func (j *Job) ReferencesLesson(lessonID string) bool {
	return j.LessonID != nil && *j.LessonID == lessonID
}
