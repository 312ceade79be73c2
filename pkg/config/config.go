package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when no --config flag is given
const DefaultConfigFile = "./config/settings.yaml"

var (
	once       sync.Once
	initErr    error
	configFile = DefaultConfigFile
)

// SetConfigFile overrides the settings file location; call before Init
func SetConfigFile(path string) {
	if path != "" {
		configFile = path
	}
}

// Init initializes the configuration system
// This should be called once at application startup
func Init() error {
	once.Do(func() {
		initErr = Load()
	})
	return initErr
}

// Load reads .env, defaults, the settings file and the environment into viper.
// Unlike Init it runs every time it is called.
func Load() error {
	// .env is optional; real environment variables win over it
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env: %w", err)
	}

	setDefaults()

	viper.SetEnvPrefix("READREPEAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Names used by existing worker deployments
	_ = viper.BindEnv("worker.api_base_url", "READREPEAT_WORKER_API_BASE_URL", "API_BASE_URL")
	_ = viper.BindEnv("storage.data_dir", "READREPEAT_STORAGE_DATA_DIR", "DATA_DIR")

	path := filepath.Clean(configFile)
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// GetConfig returns the current configuration as a struct
// Init() must be called before using this
func GetConfig() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

// GetString returns a string config value
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration returns a time.Duration config value
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

func validate() error {
	port := viper.GetInt("server.port")
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid server port: %d", port)
	}

	switch driver := viper.GetString("database.driver"); driver {
	case "sqlite":
		if viper.GetString("database.path") == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if viper.GetString("database.dsn") == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", driver)
	}

	if viper.GetDuration("worker.poll_interval") <= 0 {
		viper.Set("worker.poll_interval", 5*time.Second)
	}
	if viper.GetInt("worker.concurrency") <= 0 {
		viper.Set("worker.concurrency", 1)
	}
	if viper.GetDuration("jobs.stale_after") < 0 {
		return fmt.Errorf("jobs.stale_after must not be negative")
	}

	env := viper.GetString("environment")
	if (env == "production" || env == "prod") && viper.GetString("worker.token_secret") == "" {
		fmt.Fprintln(os.Stderr, "Warning: worker.token_secret is empty - worker endpoints are unauthenticated")
	}

	return nil
}

// Validate validates a Config struct (for testing)
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unsupported database driver: %q", c.Database.Driver)
	}

	if c.Worker.PollInterval <= 0 {
		c.Worker.PollInterval = 5 * time.Second
	}
	if c.Worker.Concurrency <= 0 {
		c.Worker.Concurrency = 1
	}
	if c.Jobs.StaleAfter < 0 {
		return fmt.Errorf("jobs.stale_after must not be negative")
	}

	return nil
}

// DefaultsYAML renders the default settings as a YAML document.
// Durations are written in their string form so viper reads them back unchanged.
func DefaultsYAML() ([]byte, error) {
	v := viper.New()
	applyDefaults(v)
	return yaml.Marshal(yamlSafe(v.AllSettings()))
}

func yamlSafe(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, inner := range v {
			out[key] = yamlSafe(inner)
		}
		return out
	case time.Duration:
		return v.String()
	default:
		return v
	}
}

func setDefaults() {
	applyDefaults(viper.GetViper())
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.max_header_bytes", 1048576)
	v.SetDefault("server.max_body_bytes", 4*1048576)

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/readrepeat.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.max_idle_connections", 5)
	v.SetDefault("database.connection_max_lifetime", time.Hour)
	v.SetDefault("database.enable_wal", true)
	v.SetDefault("database.enable_foreign_keys", true)
	v.SetDefault("database.busy_timeout", 5*time.Second)
	v.SetDefault("database.log_queries", false)
	v.SetDefault("database.auto_migrate", true)

	// Storage defaults
	v.SetDefault("storage.data_dir", "./data")

	// Job queue maintenance
	v.SetDefault("jobs.stale_after", time.Duration(0))
	v.SetDefault("jobs.reap_interval", time.Minute)
	v.SetDefault("jobs.retention_days", 0)

	// Worker defaults
	v.SetDefault("worker.api_base_url", "http://localhost:3000")
	v.SetDefault("worker.poll_interval", 5*time.Second)
	v.SetDefault("worker.request_timeout", 30*time.Second)
	v.SetDefault("worker.concurrency", 1)
	v.SetDefault("worker.name", "")
	v.SetDefault("worker.token_secret", "")
	v.SetDefault("worker.token", "")
	v.SetDefault("worker.token_ttl", 30*24*time.Hour)
	v.SetDefault("worker.pipeline_command", "")
	v.SetDefault("worker.whisper_path", "whisper-cli")
	v.SetDefault("worker.whisper_model_dir", "./models")

	// Processing defaults
	v.SetDefault("processing.ffmpeg_path", "ffmpeg")
	v.SetDefault("processing.ffmpeg_timeout", 5*time.Minute)
	v.SetDefault("processing.clip_padding_ms", 200)
	v.SetDefault("processing.sample_rate", 16000)
	v.SetDefault("processing.waveform_cache_mb", 32)
	v.SetDefault("processing.waveform_cache_ttl", 24*time.Hour)

	// Rate limiting defaults
	v.SetDefault("rate_limiting.enabled", true)
	v.SetDefault("rate_limiting.worker_rps", 20)
	v.SetDefault("rate_limiting.worker_burst", 40)
	v.SetDefault("rate_limiting.api_rps", 10)
	v.SetDefault("rate_limiting.api_burst", 20)

	// Security defaults
	v.SetDefault("security.enable_cors", true)
	v.SetDefault("security.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}
