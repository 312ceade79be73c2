package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeiShi1313/readrepeat/internal/models"
	"github.com/LeiShi1313/readrepeat/pkg/config"
)

func sqliteConfig(path string) config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:            DriverSQLite,
		Path:              path,
		EnableForeignKeys: true,
		EnableWAL:         true,
		BusyTimeout:       2 * time.Second,
	}
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DatabaseConfig
		wantErr bool
	}{
		{name: "in-memory database", cfg: sqliteConfig(":memory:")},
		{name: "file database in new directory", cfg: sqliteConfig(filepath.Join(t.TempDir(), "nested", "test.db"))},
		{name: "empty path creates in-memory database", cfg: sqliteConfig("")},
		{name: "unknown driver", cfg: config.DatabaseConfig{Driver: "oracle"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := Initialize(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer conn.Close()

			assert.NotNil(t, conn.DB)
			assert.Equal(t, DriverSQLite, conn.Driver)
			assert.NoError(t, conn.HealthCheck())
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.DatabaseConfig
		want string
	}{
		{
			name: "file with every pragma",
			cfg:  sqliteConfig("./data/readrepeat.db"),
			want: "./data/readrepeat.db?_busy_timeout=2000&_foreign_keys=1&_journal_mode=WAL",
		},
		{
			name: "memory skips WAL",
			cfg:  sqliteConfig(":memory:"),
			want: ":memory:?_busy_timeout=2000&_foreign_keys=1",
		},
		{
			name: "existing query string is extended",
			cfg:  config.DatabaseConfig{Path: "file:test?mode=memory&cache=shared", EnableForeignKeys: true},
			want: "file:test?mode=memory&cache=shared&_foreign_keys=1",
		},
		{
			name: "no pragmas",
			cfg:  config.DatabaseConfig{Path: "plain.db"},
			want: "plain.db",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SQLiteDSN(tt.cfg))
		})
	}
}

func TestHealthCheckUninitialized(t *testing.T) {
	var db *DB
	assert.Error(t, db.HealthCheck())
}

func TestMigrations(t *testing.T) {
	conn, err := Initialize(sqliteConfig(filepath.Join(t.TempDir(), "migrate.db")))
	require.NoError(t, err)
	defer conn.Close()

	status, err := conn.MigrationVersion()
	require.NoError(t, err)
	assert.False(t, status.Applied)

	require.NoError(t, conn.MigrateUp())
	// Running again is a no-op
	require.NoError(t, conn.MigrateUp())

	status, err = conn.MigrationVersion()
	require.NoError(t, err)
	assert.True(t, status.Applied)
	assert.Equal(t, uint(1), status.Version)
	assert.False(t, status.Dirty)

	for _, table := range []string{"lessons", "sentences", "user_recordings", "audio_files", "jobs"} {
		assert.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}

	// The SQL schema must accept the GORM models as written
	lesson := models.Lesson{Title: "t", ForeignTextRaw: "Hello.", Status: models.LessonStatusUploaded}
	require.NoError(t, conn.Create(&lesson).Error)
	job, err := models.NewJob(models.ProcessLessonPayload{LessonID: lesson.ID})
	require.NoError(t, err)
	require.NoError(t, conn.Create(job).Error)
	assert.NotZero(t, job.ID)

	require.NoError(t, conn.MigrateDown(0))
	assert.False(t, conn.Migrator().HasTable("lessons"))
}

func TestAutoMigrate(t *testing.T) {
	conn, err := Initialize(sqliteConfig(":memory:"))
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.AutoMigrate(models.All()...))
	assert.True(t, conn.Migrator().HasTable(&models.Job{}))
	assert.True(t, conn.Migrator().HasTable(&models.Sentence{}))
}
