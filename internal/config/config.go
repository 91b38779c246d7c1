// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App         AppConfig
	Logger      LoggerConfig
	Server      ServerConfig
	Storage     StorageConfig
	MusicBrainz MusicBrainzConfig
	Ingest      IngestConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Name          string
	BaseURL       string        // Public URL for serving files (default: http://localhost:{port})
	Port          string        // Server port (default: 5002)
	ReadTimeout   time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout  time.Duration // HTTP write timeout (default: 60s)
	IdleTimeout   time.Duration // HTTP idle timeout (default: 60s)
	AdvertiseMDNS bool          // Advertise the server on the local network (default: true)
}

// StorageConfig holds file and database storage configuration.
type StorageConfig struct {
	// DataDir is the base directory for all local state (default: ~/Muza/data)
	DataDir string
	// FilesDir is the directory for stored audio and covers (default: {data}/files)
	FilesDir string
	// DatabasePath is the SQLite database location (default: {data}/muza.db)
	DatabasePath string
	// CacheDir is the metadata cache location (default: {data}/cache/metadata)
	CacheDir string
	// IndexPath is the search index location (default: {data}/search.bleve)
	IndexPath string
	// CDNDomain rewrites stored object URLs to a CDN host when set
	CDNDomain string

	// S3 object storage, disabled unless an endpoint is configured
	S3Endpoint  string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3UseSSL    bool
}

// MusicBrainzConfig holds MusicBrainz API and scraping configuration.
type MusicBrainzConfig struct {
	APIBaseURL      string // Web service root (default: https://musicbrainz.org/ws/2)
	SiteBaseURL     string // Website root for release page scraping
	CoverArtBaseURL string // Cover Art Archive root
	UserAgent       string
	RateInterval    time.Duration // Minimum gap between outbound calls (default: 1s)
	Timeout         time.Duration // Per-call timeout (default: 10s)
	RetryAttempts   int           // Attempts per call (default: 3)
	RetryBaseDelay  time.Duration // First backoff delay (default: 1s)
	RetryMaxDelay   time.Duration // Backoff ceiling (default: 10s)
}

// IngestConfig holds upload ingestion configuration.
type IngestConfig struct {
	// InboxDir, when set, is watched for dropped FLAC files
	InboxDir string
	// MaxUploadSize caps multipart uploads in bytes (default: 256 MiB)
	MaxUploadSize int64
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig() (*Config, error) {
	// Define command-line flags.
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 5002)")
	baseURL := flag.String("base-url", "", "Public base URL for served files")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")

	// Storage flags
	dataDir := flag.String("data-dir", "", "Base directory for local state")
	filesDir := flag.String("files-dir", "", "Directory for stored audio and covers")
	cdnDomain := flag.String("cdn-domain", "", "CDN host for rewriting stored object URLs")

	// MusicBrainz flags
	mbUserAgent := flag.String("mb-user-agent", "", "User-Agent for MusicBrainz requests")
	mbRateInterval := flag.String("mb-rate-interval", "", "Minimum gap between MusicBrainz calls (default: 1s)")
	mbTimeout := flag.String("mb-timeout", "", "Per-call MusicBrainz timeout (default: 10s)")
	mbRetryAttempts := flag.String("mb-retry-attempts", "", "Attempts per MusicBrainz call (default: 3)")

	// Ingest flags
	inboxDir := flag.String("inbox-dir", "", "Directory watched for dropped FLAC files")
	maxUploadSize := flag.String("max-upload-size", "", "Maximum upload size in bytes (default: 268435456)")

	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	// Build config with proper precedence.
	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Name:          getConfigValue(*serverName, "SERVER_NAME", "Muza Server"),
			Port:          getConfigValue(*serverPort, "SERVER_PORT", "5002"),
			BaseURL:       getConfigValue(*baseURL, "SERVER_BASE_URL", ""),
			AdvertiseMDNS: getBoolConfigValue("", "SERVER_ADVERTISE_MDNS", true),
		},
		Storage: StorageConfig{
			DataDir:     getConfigValue(*dataDir, "DATA_DIR", ""),
			FilesDir:    getConfigValue(*filesDir, "FILES_DIR", ""),
			CDNDomain:   getConfigValue(*cdnDomain, "CDN_DOMAIN", ""),
			S3Endpoint:  getConfigValue("", "S3_ENDPOINT", ""),
			S3Bucket:    getConfigValue("", "S3_BUCKET", ""),
			S3AccessKey: getConfigValue("", "S3_ACCESS_KEY", ""),
			S3SecretKey: getConfigValue("", "S3_SECRET_KEY", ""),
			S3UseSSL:    getBoolConfigValue("", "S3_USE_SSL", true),
		},
		MusicBrainz: MusicBrainzConfig{
			APIBaseURL:      getConfigValue("", "MB_API_BASE_URL", "https://musicbrainz.org/ws/2"),
			SiteBaseURL:     getConfigValue("", "MB_SITE_BASE_URL", "https://musicbrainz.org"),
			CoverArtBaseURL: getConfigValue("", "COVERART_BASE_URL", "https://coverartarchive.org"),
			UserAgent:       getConfigValue(*mbUserAgent, "MB_USER_AGENT", "MuzaServer/1.0 (https://github.com/muzaapp/muza-server)"),
			RetryAttempts:   getIntConfigValue(*mbRetryAttempts, "MB_RETRY_ATTEMPTS", 3),
		},
		Ingest: IngestConfig{
			InboxDir:      getConfigValue(*inboxDir, "INBOX_DIR", ""),
			MaxUploadSize: int64(getIntConfigValue(*maxUploadSize, "MAX_UPLOAD_SIZE", 256<<20)),
		},
	}

	// Parse durations.
	durations := []struct {
		dst      *time.Duration
		flagVal  string
		envKey   string
		fallback string
		label    string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "60s", "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
		{&cfg.MusicBrainz.RateInterval, *mbRateInterval, "MB_RATE_INTERVAL", "1s", "rate interval"},
		{&cfg.MusicBrainz.Timeout, *mbTimeout, "MB_TIMEOUT", "10s", "call timeout"},
		{&cfg.MusicBrainz.RetryBaseDelay, "", "MB_RETRY_BASE_DELAY", "1s", "retry base delay"},
		{&cfg.MusicBrainz.RetryMaxDelay, "", "MB_RETRY_MAX_DELAY", "10s", "retry max delay"},
	}
	for _, d := range durations {
		raw := getConfigValue(d.flagVal, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.label, raw, err)
		}
		*d.dst = parsed
	}

	// Expand and derive storage paths.
	if err := cfg.expandStoragePaths(); err != nil {
		return nil, fmt.Errorf("invalid storage path: %w", err)
	}

	// Expand inbox path when configured.
	if cfg.Ingest.InboxDir != "" {
		expanded, err := expandPath(cfg.Ingest.InboxDir, "")
		if err != nil {
			return nil, fmt.Errorf("invalid inbox path: %w", err)
		}
		cfg.Ingest.InboxDir = expanded
	}

	// Default the public base URL from the port.
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:" + cfg.Server.Port
	}
	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")

	// Validate configuration.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Storage.DataDir == "" {
		return errors.New("data dir cannot be empty after expansion")
	}

	if c.MusicBrainz.UserAgent == "" {
		return errors.New("MusicBrainz user agent is required")
	}
	if c.MusicBrainz.RateInterval <= 0 {
		return errors.New("MusicBrainz rate interval must be positive")
	}
	if c.MusicBrainz.RetryAttempts < 1 {
		return errors.New("MusicBrainz retry attempts must be at least 1")
	}

	if c.S3Configured() {
		if c.Storage.S3Bucket == "" {
			return errors.New("S3_BUCKET is required when S3_ENDPOINT is set")
		}
		if c.Storage.S3AccessKey == "" || c.Storage.S3SecretKey == "" {
			return errors.New("S3 credentials are required when S3_ENDPOINT is set")
		}
	}

	if c.Ingest.MaxUploadSize <= 0 {
		return errors.New("max upload size must be positive")
	}

	return nil
}

// S3Configured reports whether object storage should be used.
func (c *Config) S3Configured() bool {
	return c.Storage.S3Endpoint != ""
}

// expandStoragePaths expands ~ in the data dir and derives the dependent
// paths that were not set explicitly.
func (c *Config) expandStoragePaths() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}
	defaultData := filepath.Join(homeDir, "Muza", "data")

	expanded, err := expandPath(c.Storage.DataDir, defaultData)
	if err != nil {
		return err
	}
	c.Storage.DataDir = expanded

	files, err := expandPath(c.Storage.FilesDir, filepath.Join(c.Storage.DataDir, "files"))
	if err != nil {
		return err
	}
	c.Storage.FilesDir = files

	if c.Storage.DatabasePath == "" {
		c.Storage.DatabasePath = filepath.Join(c.Storage.DataDir, "muza.db")
	}
	if c.Storage.CacheDir == "" {
		c.Storage.CacheDir = filepath.Join(c.Storage.DataDir, "cache", "metadata")
	}
	if c.Storage.IndexPath == "" {
		c.Storage.IndexPath = filepath.Join(c.Storage.DataDir, "search.bleve")
	}
	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	var result int
	if _, err := fmt.Sscanf(strValue, "%d", &result); err != nil {
		return defaultValue
	}
	return result
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		value = strings.Trim(value, `"'`)

		// Env vars take precedence over the .env file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
