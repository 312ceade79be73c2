package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidPayload is returned when a payload does not match its job type
var ErrInvalidPayload = errors.New("invalid job payload")

// ErrUnknownJobType is returned for job types without a payload shape
var ErrUnknownJobType = errors.New("unknown job type")

// JobPayload is implemented by exactly one struct per job type
type JobPayload interface {
	JobType() JobType
	Validate() error
}

// LessonReference is implemented by payloads that point at a lesson
type LessonReference interface {
	LessonRef() string
}

// AudioFileReference is implemented by payloads that point at an audio file
type AudioFileReference interface {
	AudioFileRef() string
}

// Speaker modes for synthesized lessons
const (
	SpeakerModeArticle = "article"
	SpeakerModeDialog  = "dialog"
)

// TTS defaults
const (
	DefaultVoiceName  = "Zephyr"
	DefaultVoice2Name = "Kore"
	DefaultTTSModel   = "gemini-2.5-flash-preview-tts"
)

// ProcessLessonPayload asks a worker to align a lesson's text with its audio
type ProcessLessonPayload struct {
	LessonID string `json:"lessonId"`
}

func (p ProcessLessonPayload) JobType() JobType  { return JobTypeProcessLesson }
func (p ProcessLessonPayload) LessonRef() string { return p.LessonID }

func (p ProcessLessonPayload) Validate() error {
	return requireField(p.JobType(), "lessonId", p.LessonID)
}

// GenerateTTSPayload asks a worker to synthesize audio and then align it
type GenerateTTSPayload struct {
	LessonID    string `json:"lessonId"`
	VoiceName   string `json:"voiceName"`
	TTSModel    string `json:"ttsModel"`
	SpeakerMode string `json:"speakerMode"`
	Voice2Name  string `json:"voice2Name,omitempty"`
}

func (p GenerateTTSPayload) JobType() JobType  { return JobTypeGenerateTTSLesson }
func (p GenerateTTSPayload) LessonRef() string { return p.LessonID }

func (p GenerateTTSPayload) Validate() error {
	if err := requireField(p.JobType(), "lessonId", p.LessonID); err != nil {
		return err
	}
	switch p.SpeakerMode {
	case "", SpeakerModeArticle, SpeakerModeDialog:
	default:
		return fmt.Errorf("%w: %s speakerMode must be %q or %q, got %q",
			ErrInvalidPayload, p.JobType(), SpeakerModeArticle, SpeakerModeDialog, p.SpeakerMode)
	}
	return nil
}

// WithDefaults fills unset voice options
func (p GenerateTTSPayload) WithDefaults() GenerateTTSPayload {
	if p.VoiceName == "" {
		p.VoiceName = DefaultVoiceName
	}
	if p.TTSModel == "" {
		p.TTSModel = DefaultTTSModel
	}
	if p.SpeakerMode == "" {
		p.SpeakerMode = SpeakerModeArticle
	}
	if p.SpeakerMode == SpeakerModeDialog && p.Voice2Name == "" {
		p.Voice2Name = DefaultVoice2Name
	}
	return p
}

// ResliceAudioPayload asks a worker to cut new clips from updated timings
type ResliceAudioPayload struct {
	LessonID string `json:"lessonId"`
}

func (p ResliceAudioPayload) JobType() JobType  { return JobTypeResliceAudio }
func (p ResliceAudioPayload) LessonRef() string { return p.LessonID }

func (p ResliceAudioPayload) Validate() error {
	return requireField(p.JobType(), "lessonId", p.LessonID)
}

// TranscribeAudioPayload asks a worker to transcribe a standalone audio file
type TranscribeAudioPayload struct {
	AudioFileID  string `json:"audioFileId"`
	Language     string `json:"language,omitempty"`
	WhisperModel string `json:"whisperModel,omitempty"`
}

func (p TranscribeAudioPayload) JobType() JobType     { return JobTypeTranscribeAudio }
func (p TranscribeAudioPayload) AudioFileRef() string { return p.AudioFileID }

func (p TranscribeAudioPayload) Validate() error {
	return requireField(p.JobType(), "audioFileId", p.AudioFileID)
}

// DecodePayload decodes raw JSON into the payload shape registered for jobType
func DecodePayload(jobType JobType, raw []byte) (JobPayload, error) {
	var payload JobPayload
	var err error

	switch jobType {
	case JobTypeProcessLesson:
		var p ProcessLessonPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeGenerateTTSLesson:
		var p GenerateTTSPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeResliceAudio:
		var p ResliceAudioPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	case JobTypeTranscribeAudio:
		var p TranscribeAudioPayload
		err = json.Unmarshal(raw, &p)
		payload = p
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownJobType, jobType)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: decoding %s payload: %v", ErrInvalidPayload, jobType, err)
	}
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	return payload, nil
}

func requireField(jobType JobType, field, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s requires %s", ErrInvalidPayload, jobType, field)
	}
	return nil
}
