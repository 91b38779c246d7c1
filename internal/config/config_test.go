package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		App:    AppConfig{Environment: "development"},
		Logger: LoggerConfig{Level: "info"},
		Server: ServerConfig{Port: "5002", BaseURL: "http://localhost:5002"},
		Storage: StorageConfig{
			DataDir: t.TempDir(),
		},
		MusicBrainz: MusicBrainzConfig{
			UserAgent:     "MuzaServer/test",
			RateInterval:  time.Second,
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
		},
		Ingest: IngestConfig{MaxUploadSize: 1 << 20},
	}
}

func TestValidate(t *testing.T) {
	cfg := validConfig(t)
	require.NoError(t, cfg.Validate())
}

func TestValidateRejectsBadEnvironment(t *testing.T) {
	cfg := validConfig(t)
	cfg.App.Environment = "testing"
	assert.ErrorContains(t, cfg.Validate(), "invalid environment")
}

func TestValidateRejectsBadLogLevel(t *testing.T) {
	cfg := validConfig(t)
	cfg.Logger.Level = "verbose"
	assert.ErrorContains(t, cfg.Validate(), "invalid log level")
}

func TestValidateRejectsZeroRateInterval(t *testing.T) {
	cfg := validConfig(t)
	cfg.MusicBrainz.RateInterval = 0
	assert.ErrorContains(t, cfg.Validate(), "rate interval")
}

func TestValidateRequiresS3BucketWithEndpoint(t *testing.T) {
	cfg := validConfig(t)
	cfg.Storage.S3Endpoint = "minio.local:9000"
	cfg.Storage.S3AccessKey = "key"
	cfg.Storage.S3SecretKey = "secret"
	assert.ErrorContains(t, cfg.Validate(), "S3_BUCKET")

	cfg.Storage.S3Bucket = "muza"
	assert.NoError(t, cfg.Validate())
}

func TestS3Configured(t *testing.T) {
	cfg := validConfig(t)
	assert.False(t, cfg.S3Configured())
	cfg.Storage.S3Endpoint = "minio.local:9000"
	assert.True(t, cfg.S3Configured())
}

func TestExpandStoragePathsDerivesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := &Config{Storage: StorageConfig{DataDir: dir}}
	require.NoError(t, cfg.expandStoragePaths())

	assert.Equal(t, filepath.Join(dir, "files"), cfg.Storage.FilesDir)
	assert.Equal(t, filepath.Join(dir, "muza.db"), cfg.Storage.DatabasePath)
	assert.Equal(t, filepath.Join(dir, "cache", "metadata"), cfg.Storage.CacheDir)
	assert.Equal(t, filepath.Join(dir, "search.bleve"), cfg.Storage.IndexPath)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/music", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "music"), got)

	got, err = expandPath("", "/fallback")
	require.NoError(t, err)
	assert.Equal(t, "/fallback", got)
}

func TestGetConfigValuePrecedence(t *testing.T) {
	t.Setenv("MUZA_TEST_KEY", "from-env")

	assert.Equal(t, "from-flag", getConfigValue("from-flag", "MUZA_TEST_KEY", "fallback"))
	assert.Equal(t, "from-env", getConfigValue("", "MUZA_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getConfigValue("", "MUZA_TEST_MISSING", "fallback"))
}

func TestGetBoolConfigValue(t *testing.T) {
	t.Setenv("MUZA_TEST_BOOL", "yes")
	assert.True(t, getBoolConfigValue("", "MUZA_TEST_BOOL", false))

	t.Setenv("MUZA_TEST_BOOL", "nope")
	assert.False(t, getBoolConfigValue("", "MUZA_TEST_BOOL", true))

	assert.True(t, getBoolConfigValue("", "MUZA_TEST_BOOL_MISSING", true))
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nMUZA_ENVFILE_A=hello\nMUZA_ENVFILE_B=\"quoted\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("MUZA_ENVFILE_A", "")
	t.Setenv("MUZA_ENVFILE_B", "")
	os.Unsetenv("MUZA_ENVFILE_A")
	os.Unsetenv("MUZA_ENVFILE_B")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "hello", os.Getenv("MUZA_ENVFILE_A"))
	assert.Equal(t, "quoted", os.Getenv("MUZA_ENVFILE_B"))
}
