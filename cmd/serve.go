package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LeiShi1313/readrepeat/api"
	"github.com/LeiShi1313/readrepeat/api/types"
	"github.com/LeiShi1313/readrepeat/internal/database"
	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/internal/services/audiofiles"
	"github.com/LeiShi1313/readrepeat/internal/services/auth"
	"github.com/LeiShi1313/readrepeat/internal/services/cache"
	"github.com/LeiShi1313/readrepeat/internal/services/cleanup"
	"github.com/LeiShi1313/readrepeat/internal/services/jobs"
	"github.com/LeiShi1313/readrepeat/internal/services/lessons"
	"github.com/LeiShi1313/readrepeat/internal/services/recordings"
	"github.com/LeiShi1313/readrepeat/internal/services/waveforms"
	"github.com/LeiShi1313/readrepeat/pkg/config"
	"github.com/LeiShi1313/readrepeat/pkg/ffmpeg"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long: `Start the ReadRepeat API server with the configured settings.

The server owns the database and the job queue. Workers started with
"readrepeat worker" poll it for jobs and report results back.

Example:
  readrepeat serve
  readrepeat serve --port 9090
  readrepeat serve --host 0.0.0.0 --port 8080`,
		RunE: runServer,
	}

	serveCmd.Flags().String("host", "", "server host (overrides config)")
	serveCmd.Flags().Int("port", 0, "server port (overrides config)")
	return serveCmd
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if cmd.Flags().Changed("host") {
		cfg.Server.Host, _ = cmd.Flags().GetString("host")
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}

	if err := os.MkdirAll(cfg.Storage.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := database.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Warnf("Failed to close database: %v", err)
		}
	}()

	if err := prepareSchema(db, cfg.Database.AutoMigrate); err != nil {
		return err
	}

	deps := buildDependencies(cfg, db)

	server := api.NewServer(cfg)
	server.SetDependencies(deps)
	if err := server.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := cleanup.NewService(deps.JobService, cfg.Jobs.StaleAfter, cfg.Jobs.RetentionDays, cfg.Jobs.ReapInterval)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	if !deps.AuthService.Enabled() {
		log.Warn("Worker authentication is disabled; set worker.token_secret to require tokens")
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Infof("ReadRepeat API listening on %s", server.Addr())

	select {
	case <-ctx.Done():
		log.Info("Shutting down server...")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
		return err
	}

	log.Info("Server gracefully stopped")
	return nil
}

// prepareSchema creates the schema with GORM or, when auto migration is off,
// applies the versioned SQL migrations
func prepareSchema(db *database.DB, autoMigrate bool) error {
	if autoMigrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return fmt.Errorf("failed to auto-migrate database: %w", err)
		}
		return nil
	}
	return db.MigrateUp()
}

// buildDependencies wires the services the HTTP handlers use
func buildDependencies(cfg *config.Config, db *database.DB) *types.Dependencies {
	dataDir := cfg.Storage.DataDir
	jobService := jobs.NewService(db.DB, jobs.NewRepository(db.DB))

	tool := ffmpeg.New(cfg.Processing.FFmpegPath, ffprobePath(cfg.Processing.FFmpegPath), cfg.Processing.FFmpegTimeout).
		WithSampleRate(cfg.Processing.SampleRate)
	toolErr := tool.ValidateBinaries()

	var recordingOpts []recordings.Option
	if toolErr == nil {
		recordingOpts = append(recordingOpts, recordings.WithProber(tool))
	}

	deps := &types.Dependencies{
		DB:               db,
		JobService:       jobService,
		LessonService:    lessons.NewService(db.DB, lessons.NewRepository(db.DB), jobService, lessons.WithDataDir(dataDir)),
		AudioFileService: audiofiles.NewService(db.DB, audiofiles.NewRepository(db.DB), jobService, dataDir),
		RecordingService: recordings.NewService(recordings.NewRepository(db.DB), recordingOpts...),
		AuthService:      auth.NewService(cfg.Worker.TokenSecret, cfg.Worker.TokenTTL),
	}

	if toolErr != nil {
		log.Warnf("Waveforms and recording durations disabled: %v", toolErr)
	} else {
		deps.Waveforms = newWaveforms(cfg.Processing, tool)
	}
	return deps
}

// newWaveforms puts the in-memory peak cache in front of ffmpeg unless it is sized to zero
func newWaveforms(cfg config.ProcessingConfig, tool waveforms.Generator) types.WaveformGenerator {
	if cfg.WaveformCacheMB <= 0 {
		return tool
	}
	log.Debugf("Caching waveforms in up to %d MB for %v", cfg.WaveformCacheMB, cfg.WaveformCacheTTL)
	return waveforms.NewService(tool, cache.NewMemoryCache(cfg.WaveformCacheMB), cfg.WaveformCacheTTL)
}

// ffprobePath assumes ffprobe sits next to the configured ffmpeg binary
func ffprobePath(ffmpegPath string) string {
	if ffmpegPath == "" || filepath.Base(ffmpegPath) == ffmpegPath {
		return "ffprobe"
	}
	return filepath.Join(filepath.Dir(ffmpegPath), "ffprobe")
}
