package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJobSetsReferences(t *testing.T) {
	tests := []struct {
		name        string
		payload     JobPayload
		wantType    JobType
		wantLesson  string
		wantAudioID string
	}{
		{
			name:       "process lesson",
			payload:    ProcessLessonPayload{LessonID: "lesson-1"},
			wantType:   JobTypeProcessLesson,
			wantLesson: "lesson-1",
		},
		{
			name:       "tts lesson",
			payload:    GenerateTTSPayload{LessonID: "lesson-2", SpeakerMode: SpeakerModeDialog},
			wantType:   JobTypeGenerateTTSLesson,
			wantLesson: "lesson-2",
		},
		{
			name:       "reslice",
			payload:    ResliceAudioPayload{LessonID: "lesson-3"},
			wantType:   JobTypeResliceAudio,
			wantLesson: "lesson-3",
		},
		{
			name:        "transcribe",
			payload:     TranscribeAudioPayload{AudioFileID: "audio-1", Language: "ja"},
			wantType:    JobTypeTranscribeAudio,
			wantAudioID: "audio-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, err := NewJob(tt.payload)
			require.NoError(t, err)

			assert.Equal(t, tt.wantType, job.Type)
			assert.Equal(t, JobStatusPending, job.Status)
			if tt.wantLesson != "" {
				require.NotNil(t, job.LessonID)
				assert.Equal(t, tt.wantLesson, *job.LessonID)
				assert.True(t, job.ReferencesLesson(tt.wantLesson))
			} else {
				assert.Nil(t, job.LessonID)
			}
			if tt.wantAudioID != "" {
				require.NotNil(t, job.AudioFileID)
				assert.Equal(t, tt.wantAudioID, *job.AudioFileID)
			}

			decoded, err := job.DecodePayload()
			require.NoError(t, err)
			assert.Equal(t, tt.payload, decoded)
		})
	}
}

func TestNewJobRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload JobPayload
	}{
		{"nil payload", nil},
		{"missing lesson id", ProcessLessonPayload{}},
		{"missing reslice lesson id", ResliceAudioPayload{}},
		{"missing audio file id", TranscribeAudioPayload{Language: "en"}},
		{"bad speaker mode", GenerateTTSPayload{LessonID: "l1", SpeakerMode: "choir"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewJob(tt.payload)
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
}

func TestDecodePayload(t *testing.T) {
	t.Run("unknown type", func(t *testing.T) {
		_, err := DecodePayload(JobType("MAKE_COFFEE"), []byte(`{}`))
		assert.ErrorIs(t, err, ErrUnknownJobType)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := DecodePayload(JobTypeProcessLesson, []byte(`{"lessonId":`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})

	t.Run("shape mismatch", func(t *testing.T) {
		_, err := DecodePayload(JobTypeResliceAudio, []byte(`{"audioFileId":"a1"}`))
		assert.ErrorIs(t, err, ErrInvalidPayload)
	})
}

func TestJobReferencePayload(t *testing.T) {
	lessonID, audioFileID := "l1", "a1"

	tests := []struct {
		name string
		job  Job
		want JobPayload
	}{
		{name: "process", job: Job{Type: JobTypeProcessLesson, LessonID: &lessonID}, want: ProcessLessonPayload{LessonID: "l1"}},
		{name: "tts", job: Job{Type: JobTypeGenerateTTSLesson, LessonID: &lessonID}, want: GenerateTTSPayload{LessonID: "l1"}.WithDefaults()},
		{name: "reslice", job: Job{Type: JobTypeResliceAudio, LessonID: &lessonID}, want: ResliceAudioPayload{LessonID: "l1"}},
		{name: "transcribe", job: Job{Type: JobTypeTranscribeAudio, AudioFileID: &audioFileID}, want: TranscribeAudioPayload{AudioFileID: "a1"}},
		{name: "no lesson", job: Job{Type: JobTypeProcessLesson}},
		{name: "no audio file", job: Job{Type: JobTypeTranscribeAudio, LessonID: &lessonID}},
		{name: "unknown type", job: Job{Type: JobType("MAKE_COFFEE"), LessonID: &lessonID}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, ok := tt.job.ReferencePayload()
			assert.Equal(t, tt.want != nil, ok)
			assert.Equal(t, tt.want, payload)
		})
	}
}

func TestGenerateTTSPayloadDefaults(t *testing.T) {
	article := GenerateTTSPayload{LessonID: "l1"}.WithDefaults()
	assert.Equal(t, DefaultVoiceName, article.VoiceName)
	assert.Equal(t, DefaultTTSModel, article.TTSModel)
	assert.Equal(t, SpeakerModeArticle, article.SpeakerMode)
	assert.Empty(t, article.Voice2Name)

	dialog := GenerateTTSPayload{LessonID: "l1", SpeakerMode: SpeakerModeDialog, VoiceName: "Puck"}.WithDefaults()
	assert.Equal(t, "Puck", dialog.VoiceName)
	assert.Equal(t, DefaultVoice2Name, dialog.Voice2Name)
}

func TestJobReportDistinguishesEmptyFromAbsentSentences(t *testing.T) {
	var empty JobReport
	require.NoError(t, json.Unmarshal([]byte(`{"jobId":1,"status":"COMPLETED","sentences":[]}`), &empty))
	assert.NotNil(t, empty.Sentences)
	assert.Len(t, empty.Sentences, 0)

	var absent JobReport
	require.NoError(t, json.Unmarshal([]byte(`{"jobId":1,"status":"FAILED","errorMessage":"boom"}`), &absent))
	assert.Nil(t, absent.Sentences)
	assert.Nil(t, absent.UpdatedSentences)
}
