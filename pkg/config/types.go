package config

import "time"

// Config represents the complete application configuration
type Config struct {
	Environment  string           `mapstructure:"environment" yaml:"environment"`
	Server       ServerConfig     `mapstructure:"server" yaml:"server"`
	Database     DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Storage      StorageConfig    `mapstructure:"storage" yaml:"storage"`
	Jobs         JobsConfig       `mapstructure:"jobs" yaml:"jobs"`
	Worker       WorkerConfig     `mapstructure:"worker" yaml:"worker"`
	Processing   ProcessingConfig `mapstructure:"processing" yaml:"processing"`
	RateLimiting RateLimitConfig  `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Security     SecurityConfig   `mapstructure:"security" yaml:"security"`
	Logging      LoggingConfig    `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host"`
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxHeaderBytes  int           `mapstructure:"max_header_bytes" yaml:"max_header_bytes"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
}

// DatabaseConfig contains database settings
type DatabaseConfig struct {
	Driver                string        `mapstructure:"driver" yaml:"driver"` // sqlite or postgres
	Path                  string        `mapstructure:"path" yaml:"path"`     // sqlite file
	DSN                   string        `mapstructure:"dsn" yaml:"dsn"`       // postgres connection string
	MaxConnections        int           `mapstructure:"max_connections" yaml:"max_connections"`
	MaxIdleConnections    int           `mapstructure:"max_idle_connections" yaml:"max_idle_connections"`
	ConnectionMaxLifetime time.Duration `mapstructure:"connection_max_lifetime" yaml:"connection_max_lifetime"`
	EnableWAL             bool          `mapstructure:"enable_wal" yaml:"enable_wal"`
	EnableForeignKeys     bool          `mapstructure:"enable_foreign_keys" yaml:"enable_foreign_keys"`
	BusyTimeout           time.Duration `mapstructure:"busy_timeout" yaml:"busy_timeout"`
	LogQueries            bool          `mapstructure:"log_queries" yaml:"log_queries"`
	AutoMigrate           bool          `mapstructure:"auto_migrate" yaml:"auto_migrate"`
}

// StorageConfig contains file layout settings
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir" yaml:"data_dir"`
}

// JobsConfig contains queue maintenance settings
type JobsConfig struct {
	StaleAfter    time.Duration `mapstructure:"stale_after" yaml:"stale_after"` // 0 disables the reaper
	ReapInterval  time.Duration `mapstructure:"reap_interval" yaml:"reap_interval"`
	RetentionDays int           `mapstructure:"retention_days" yaml:"retention_days"` // 0 keeps finished jobs
}

// WorkerConfig contains settings for the `worker` command
type WorkerConfig struct {
	APIBaseURL      string        `mapstructure:"api_base_url" yaml:"api_base_url"`
	PollInterval    time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	Concurrency     int           `mapstructure:"concurrency" yaml:"concurrency"`
	Name            string        `mapstructure:"name" yaml:"name"`
	TokenSecret     string        `mapstructure:"token_secret" yaml:"token_secret"` // server side; empty disables auth
	Token           string        `mapstructure:"token" yaml:"token"`               // worker side bearer token
	TokenTTL        time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
	PipelineCommand string        `mapstructure:"pipeline_command" yaml:"pipeline_command"`
	WhisperPath     string        `mapstructure:"whisper_path" yaml:"whisper_path"`
	WhisperModelDir string        `mapstructure:"whisper_model_dir" yaml:"whisper_model_dir"`
}

// ProcessingConfig contains audio processing settings
type ProcessingConfig struct {
	FFmpegPath    string        `mapstructure:"ffmpeg_path" yaml:"ffmpeg_path"`
	FFmpegTimeout time.Duration `mapstructure:"ffmpeg_timeout" yaml:"ffmpeg_timeout"`
	ClipPaddingMs int           `mapstructure:"clip_padding_ms" yaml:"clip_padding_ms"`
	SampleRate    int           `mapstructure:"sample_rate" yaml:"sample_rate"`

	// Waveform peaks are cached in memory; 0 MB disables the cache
	WaveformCacheMB  int64         `mapstructure:"waveform_cache_mb" yaml:"waveform_cache_mb"`
	WaveformCacheTTL time.Duration `mapstructure:"waveform_cache_ttl" yaml:"waveform_cache_ttl"`
}

// RateLimitConfig contains rate limiting settings
type RateLimitConfig struct {
	Enabled     bool `mapstructure:"enabled" yaml:"enabled"`
	WorkerRPS   int  `mapstructure:"worker_rps" yaml:"worker_rps"`
	WorkerBurst int  `mapstructure:"worker_burst" yaml:"worker_burst"`
	APIRPS      int  `mapstructure:"api_rps" yaml:"api_rps"`
	APIBurst    int  `mapstructure:"api_burst" yaml:"api_burst"`
}

// SecurityConfig contains security settings
type SecurityConfig struct {
	EnableCORS  bool     `mapstructure:"enable_cors" yaml:"enable_cors"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // text or json
}
