package workers

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/models"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pipeline scripts need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	path := filepath.Join(t.TempDir(), "pipeline.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755))
	return path
}

func lessonJob(jobType models.JobType, audioPath string) *models.ClaimedJob {
	lesson := &models.Lesson{
		UUIDModel:      models.UUIDModel{ID: "lesson-1"},
		Title:          "Greetings",
		ForeignTextRaw: "Hello. Bye.",
	}
	if audioPath != "" {
		lesson.AudioOriginalPath = &audioPath
	}
	return &models.ClaimedJob{ID: 5, Type: jobType, Lesson: lesson}
}

func TestPipelineProcessor(t *testing.T) {
	dataDir := t.TempDir()
	script := writeScript(t, `cat > "$DATA_DIR/job.json"
printf '%s' "$READREPEAT_JOB_TYPE" > "$DATA_DIR/type"
printf '%s' "$READREPEAT_AUDIO_OUTPUT" > "$DATA_DIR/output"
echo '{"sentences": [{"idx": 0, "foreignText": "Hello.", "translationText": "Hi.", "startMs": 0, "endMs": 900, "clipPath": null, "confidence": 0.8}]}'
`)

	p, err := NewPipelineProcessor(script, dataDir, time.Minute)
	require.NoError(t, err)

	report, err := p.ProcessJob(context.Background(), lessonJob(models.JobTypeGenerateTTSLesson, ""))
	require.NoError(t, err)
	require.Len(t, report.Sentences, 1)
	assert.Equal(t, "Hello.", report.Sentences[0].ForeignText)
	assert.Equal(t, 900, *report.Sentences[0].EndMs)

	raw, err := os.ReadFile(filepath.Join(dataDir, "job.json"))
	require.NoError(t, err)
	var received models.ClaimedJob
	require.NoError(t, json.Unmarshal(raw, &received))
	assert.Equal(t, uint(5), received.ID)
	assert.Equal(t, "Hello. Bye.", received.Lesson.ForeignTextRaw)

	jobType, _ := os.ReadFile(filepath.Join(dataDir, "type"))
	assert.Equal(t, "GENERATE_TTS_LESSON", string(jobType))
	output, _ := os.ReadFile(filepath.Join(dataDir, "output"))
	assert.Equal(t, filepath.Join(dataDir, "uploads", "lessons", "lesson-1", "original.wav"), string(output))
}

func TestPipelineProcessorFailures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		job     *models.ClaimedJob
		wantErr string
	}{
		{
			name:    "stderr becomes the error",
			script:  "echo 'loading model' >&2\necho 'No sentences found in foreign text' >&2\nexit 1\n",
			job:     lessonJob(models.JobTypeGenerateTTSLesson, ""),
			wantErr: "No sentences found in foreign text",
		},
		{
			name:    "garbage output",
			script:  "echo hello\n",
			job:     lessonJob(models.JobTypeGenerateTTSLesson, ""),
			wantErr: "not valid JSON",
		},
		{
			name:    "missing sentences",
			script:  "echo '{}'\n",
			job:     lessonJob(models.JobTypeGenerateTTSLesson, ""),
			wantErr: "no sentences",
		},
		{
			name:    "lesson processing is native",
			script:  "echo '{\"sentences\": []}'\n",
			job:     lessonJob(models.JobTypeProcessLesson, "/data/a.wav"),
			wantErr: "unsupported job type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipelineProcessor(writeScript(t, tt.script), t.TempDir(), time.Minute)
			require.NoError(t, err)

			_, err = p.ProcessJob(context.Background(), tt.job)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPipelineEmptySentencesIsValid(t *testing.T) {
	p, err := NewPipelineProcessor(writeScript(t, "cat >/dev/null\necho '{\"sentences\": []}'\n"), t.TempDir(), 0)
	require.NoError(t, err)

	report, err := p.ProcessJob(context.Background(), lessonJob(models.JobTypeGenerateTTSLesson, ""))
	require.NoError(t, err)
	assert.NotNil(t, report.Sentences)
	assert.Empty(t, report.Sentences)
}

func TestNewPipelineProcessorRequiresCommand(t *testing.T) {
	_, err := NewPipelineProcessor("   ", "/data", 0)
	assert.Error(t, err)

	p, err := NewPipelineProcessor("python3 -m readrepeat_pipeline", "/data", 0)
	require.NoError(t, err)
	assert.False(t, p.CanProcess(models.JobTypeProcessLesson))
	assert.True(t, p.CanProcess(models.JobTypeGenerateTTSLesson))
	assert.False(t, p.CanProcess(models.JobTypeResliceAudio))
}
