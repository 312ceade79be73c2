package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/lessons"
)

// PipelineProcessor hands GENERATE_TTS_LESSON jobs to an external speech
// synthesis command. The claimed job is written to its stdin as JSON; the
// command writes READREPEAT_AUDIO_OUTPUT and prints {"sentences": [...]}.
type PipelineProcessor struct {
	command []string
	dataDir string
	timeout time.Duration
}

type pipelineOutput struct {
	Sentences []models.SentenceResult `json:"sentences"`
}

// NewPipelineProcessor creates a processor for command, split on whitespace
func NewPipelineProcessor(command, dataDir string, timeout time.Duration) (*PipelineProcessor, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return nil, errors.New("pipeline command is empty")
	}
	return &PipelineProcessor{command: args, dataDir: dataDir, timeout: timeout}, nil
}

func (p *PipelineProcessor) CanProcess(jobType models.JobType) bool {
	return jobType == models.JobTypeGenerateTTSLesson
}

func (p *PipelineProcessor) ProcessJob(ctx context.Context, job *models.ClaimedJob) (*models.JobReport, error) {
	if !p.CanProcess(job.Type) {
		return nil, fmt.Errorf("unsupported job type: %s", job.Type)
	}
	if job.Lesson == nil {
		return nil, errors.New("No lesson data in job")
	}

	input, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("encoding job: %w", err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, p.command[0], p.command[1:]...)
	cmd.Env = append(os.Environ(), p.env(job)...)
	cmd.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Infof("Running pipeline for lesson %s (job %d, %s)", job.Lesson.ID, job.ID, job.Type)
	if err := cmd.Run(); err != nil {
		if msg := lastLine(stderr.String()); msg != "" {
			return nil, errors.New(msg)
		}
		return nil, fmt.Errorf("pipeline command failed: %w", err)
	}

	var out pipelineOutput
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		return nil, fmt.Errorf("pipeline output is not valid JSON: %w", err)
	}
	if out.Sentences == nil {
		return nil, errors.New("pipeline output has no sentences")
	}

	log.Infof("Pipeline produced %d sentences for lesson %s", len(out.Sentences), job.Lesson.ID)
	return &models.JobReport{Sentences: out.Sentences}, nil
}

func (p *PipelineProcessor) env(job *models.ClaimedJob) []string {
	return []string{
		"DATA_DIR=" + p.dataDir,
		"READREPEAT_JOB_TYPE=" + string(job.Type),
		"READREPEAT_LESSON_DIR=" + lessons.LessonDir(p.dataDir, job.Lesson.ID),
		"READREPEAT_AUDIO_OUTPUT=" + lessons.CanonicalAudioPath(p.dataDir, job.Lesson.ID),
	}
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndex(s, "\n"); i >= 0 {
		return strings.TrimSpace(s[i+1:])
	}
	return s
}
