package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/internal/services/workers"
	"github.com/LeiShi1313/readrepeat/pkg/config"
	"github.com/LeiShi1313/readrepeat/pkg/download"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
	"github.com/LeiShi1313/readrepeat/pkg/whisper"
)

func newWorkerCmd() *cobra.Command {
	workerCmd := &cobra.Command{
		Use:   "worker",
		Short: "Run a job worker against an API server",
		Long: `Run a pool of workers that poll the API server for jobs.

Workers claim one job at a time, process it locally and report the result.
Lesson processing and clip re-slicing need ffmpeg, transcription needs a
whisper.cpp binary and model, and speech synthesis runs the configured
worker.pipeline_command. Without whisper, lessons can still be processed
when their audio already has a stored transcription.

Example:
  readrepeat worker
  readrepeat worker --api-url http://api:3000 --concurrency 2
  READREPEAT_WORKER_TOKEN=... readrepeat worker --name gpu-1`,
		RunE: runWorker,
	}

	workerCmd.Flags().String("api-url", "", "API base URL (overrides worker.api_base_url)")
	workerCmd.Flags().String("name", "", "worker name reported to the server (overrides worker.name)")
	workerCmd.Flags().String("token", "", "worker bearer token (overrides worker.token)")
	workerCmd.Flags().Int("concurrency", 0, "number of concurrent workers (overrides worker.concurrency)")
	return workerCmd
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyWorkerFlags(cmd, cfg)

	processors, err := buildProcessors(cfg)
	if err != nil {
		return err
	}

	name := workerName(cfg.Worker.Name)
	client := workers.NewClient(cfg.Worker.APIBaseURL, cfg.Worker.Token, cfg.Worker.RequestTimeout).WithName(name)
	pool := workers.NewWorkerPool(name, client, cfg.Worker.Concurrency, cfg.Worker.PollInterval)
	for _, processor := range processors {
		pool.RegisterProcessor(processor)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pool.Start(ctx); err != nil {
		return err
	}
	log.Infof("Worker %s polling %s every %v", name, cfg.Worker.APIBaseURL, cfg.Worker.PollInterval)

	<-ctx.Done()
	log.Info("Shutting down workers...")
	pool.Stop()
	return nil
}

func applyWorkerFlags(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		cfg.Worker.APIBaseURL = v
	}
	if v, _ := cmd.Flags().GetString("name"); v != "" {
		cfg.Worker.Name = v
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		cfg.Worker.Token = v
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Worker.Concurrency = v
	}
}

// buildProcessors returns the processors this machine can run. Lesson
// processing and re-slicing are always registered; transcription needs whisper
// and TTS needs a pipeline command.
func buildProcessors(cfg *config.Config) ([]workers.JobProcessor, error) {
	tool := ffmpeg.New(cfg.Processing.FFmpegPath, ffprobePath(cfg.Processing.FFmpegPath), cfg.Processing.FFmpegTimeout).
		WithSampleRate(cfg.Processing.SampleRate)
	if err := tool.ValidateBinaries(); err != nil {
		log.Warnf("ffmpeg check failed, clip jobs will fail: %v", err)
	}

	processors := []workers.JobProcessor{
		workers.NewResliceProcessor(tool, cfg.Processing.ClipPaddingMs),
	}

	var lessonTranscriber workers.Transcriber
	transcriber := whisper.New(cfg.Worker.WhisperPath, cfg.Worker.WhisperModelDir)
	if err := transcriber.ValidateBinary(); err != nil {
		log.Warnf("Transcription disabled: %v", err)
	} else {
		lessonTranscriber = transcriber
		processors = append(processors, workers.NewTranscriptionProcessor(tool, transcriber, download.NewDownloader(download.DefaultOptions())))
	}
	processors = append(processors, workers.NewProcessLessonProcessor(tool, lessonTranscriber, cfg.Processing.ClipPaddingMs))

	if cfg.Worker.PipelineCommand == "" {
		log.Warn("worker.pipeline_command is not set; TTS jobs will fail as unknown")
		return processors, nil
	}
	pipeline, err := workers.NewPipelineProcessor(cfg.Worker.PipelineCommand, cfg.Storage.DataDir, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid worker.pipeline_command: %w", err)
	}
	return append(processors, pipeline), nil
}

// workerName falls back to the host name, then to a random id
func workerName(configured string) string {
	if configured != "" {
		return configured
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-" + uuid.NewString()[:8]
}
