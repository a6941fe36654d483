// Package config loads the sync configuration from command-line flags, environment variables, a .env file and a TOML config file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
)

const (
	// DefaultFileName is the config file looked up next to the executable.
	DefaultFileName = "config.toml"

	defaultEndpoint   = "https://api.hardcover.app/v1/graphql"
	defaultSQLitePath = "/mnt/onboard/.kobo/KoboReader.sqlite"
	defaultLogName    = "hardcover-sync.log"

	// Hardcover allows 60 requests per minute per token.
	defaultRequestsPerMinute = 60
)

// BookmarkMode controls when bookmarks are written to the reading journal.
type BookmarkMode string

// Bookmark sync modes.
const (
	BookmarksAlways   BookmarkMode = "always"
	BookmarksNever    BookmarkMode = "never"
	BookmarksFinished BookmarkMode = "finished"
)

// ParseBookmarkMode parses a mode case-insensitively.
func ParseBookmarkMode(s string) (BookmarkMode, error) {
	switch mode := BookmarkMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case BookmarksAlways, BookmarksNever, BookmarksFinished:
		return mode, nil
	default:
		return "", fmt.Errorf("%s is not a valid sync_bookmarks value (must be always, never, or finished)", s)
	}
}

// Config holds the application configuration.
type Config struct {
	// Path is the config file the values were read from.
	Path      string
	Hardcover HardcoverConfig
	Kobo      KoboConfig
	Sync      SyncConfig
	Logger    LoggerConfig
}

// HardcoverConfig holds remote API configuration.
type HardcoverConfig struct {
	// Authorization is the API token, always prefixed with "Bearer " once loaded.
	Authorization     string
	Endpoint          string
	RequestsPerMinute int
}

// KoboConfig holds the location of the e-reader's database.
type KoboConfig struct {
	SQLitePath string
}

// SyncConfig holds synchronization behavior.
type SyncConfig struct {
	Bookmarks BookmarkMode
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level  string
	Format string
	// File is the rotating log file; empty disables file logging.
	File  string
	Debug bool
}

// Options carries the command-line flag values. Empty values fall through to
// the next source.
type Options struct {
	ConfigPath    string
	EnvFile       string
	LogLevel      string
	Authorization string
	SQLitePath    string
}

// fileConfig is the on-disk layout of config.toml.
type fileConfig struct {
	Authorization     string `toml:"authorization"`
	Endpoint          string `toml:"endpoint"`
	RequestsPerMinute int    `toml:"requests_per_minute"`
	SQLitePath        string `toml:"sqlite_path"`
	SyncBookmarks     string `toml:"sync_bookmarks"`
	LogLevel          string `toml:"log_level"`
	LogFormat         string `toml:"log_format"`
	LogFile           string `toml:"log_file"`
	Debug             bool   `toml:"debug"`
}

func defaultFileConfig() fileConfig {
	return fileConfig{
		Endpoint:          defaultEndpoint,
		RequestsPerMinute: defaultRequestsPerMinute,
		SQLitePath:        defaultSQLitePath,
		SyncBookmarks:     string(BookmarksAlways),
		LogLevel:          "info",
		LogFormat:         "pretty",
	}
}

// Load loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Config file (written with defaults when missing).
// 5. Default values (lowest priority).
func Load(opts Options) (*Config, error) {
	path, err := resolveConfigPath(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	fc, err := readOrCreate(path)
	if err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = filepath.Join(filepath.Dir(path), ".env")
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, syncerrors.Configf("read %s: %v", envFile, err)
	}

	cfg := &Config{
		Path: path,
		Hardcover: HardcoverConfig{
			Authorization:     getConfigValue(opts.Authorization, "HARDCOVER_AUTHORIZATION", fc.Authorization),
			Endpoint:          getConfigValue("", "HARDCOVER_ENDPOINT", fc.Endpoint),
			RequestsPerMinute: getIntConfigValue("", "HARDCOVER_REQUESTS_PER_MINUTE", fc.RequestsPerMinute),
		},
		Kobo: KoboConfig{
			SQLitePath: getConfigValue(opts.SQLitePath, "KOBO_SQLITE_PATH", fc.SQLitePath),
		},
		Logger: LoggerConfig{
			Level:  getConfigValue(opts.LogLevel, "LOG_LEVEL", fc.LogLevel),
			Format: getConfigValue("", "LOG_FORMAT", fc.LogFormat),
			File:   getConfigValue("", "LOG_FILE", fc.LogFile),
			Debug:  getBoolConfigValue("", "DEBUG", fc.Debug),
		},
	}

	mode, err := ParseBookmarkMode(getConfigValue("", "SYNC_BOOKMARKS", fc.SyncBookmarks))
	if err != nil {
		return nil, syncerrors.Configf("%v", err)
	}
	cfg.Sync.Bookmarks = mode

	cfg.Hardcover.Authorization = normalizeAuthorization(cfg.Hardcover.Authorization)

	baseDir := filepath.Dir(path)
	if cfg.Kobo.SQLitePath, err = expandPath(cfg.Kobo.SQLitePath, baseDir); err != nil {
		return nil, syncerrors.Configf("invalid sqlite path: %v", err)
	}

	if cfg.Logger.File == "" && cfg.Logger.Debug {
		cfg.Logger.File = defaultLogName
	}
	if cfg.Logger.File != "" {
		if cfg.Logger.File, err = expandPath(cfg.Logger.File, baseDir); err != nil {
			return nil, syncerrors.Configf("invalid log file: %v", err)
		}
	}
	if cfg.Logger.Debug && cfg.Logger.Level == "info" {
		cfg.Logger.Level = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, syncerrors.Configf("config validation failed: %v", err)
	}

	return cfg, nil
}

// Validate checks that all config values are present and valid.
func (c *Config) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "" && c.Logger.Format != "pretty" && c.Logger.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be pretty or json)", c.Logger.Format)
	}

	if c.Hardcover.Endpoint == "" {
		return errors.New("endpoint cannot be empty")
	}

	if c.Hardcover.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute cannot be negative: %d", c.Hardcover.RequestsPerMinute)
	}

	if c.Kobo.SQLitePath == "" {
		return errors.New("sqlite_path cannot be empty")
	}

	if _, err := ParseBookmarkMode(string(c.Sync.Bookmarks)); err != nil {
		return err
	}

	return nil
}

// RequireAuthorization fails when no API token is configured.
// Only commands that reach Hardcover.app call it.
func (c *Config) RequireAuthorization() error {
	if c.Hardcover.Authorization == "" {
		return syncerrors.Configf("Please set the Hardcover.app authorization token in <i>%s</i>", c.Path)
	}
	return nil
}

// normalizeAuthorization prefixes a bare token with "Bearer ".
func normalizeAuthorization(token string) string {
	token = strings.TrimSpace(token)
	if token == "" || strings.HasPrefix(token, "Bearer") {
		return token
	}
	return "Bearer " + token
}

// resolveConfigPath returns the explicit path or config.toml next to the executable.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		return expandPath(path, "")
	}

	exe, err := os.Executable()
	if err != nil {
		return "", syncerrors.Configf("failed to get current exe path: %v", err)
	}
	return filepath.Join(filepath.Dir(exe), DefaultFileName), nil
}

// readOrCreate decodes the config file over the defaults, writing the
// defaults out first when the file does not exist yet.
func readOrCreate(path string) (fileConfig, error) {
	fc := defaultFileConfig()

	_, err := toml.DecodeFile(path, &fc)
	switch {
	case err == nil:
		return fc, nil
	case errors.Is(err, fs.ErrNotExist):
		if err := writeDefault(path); err != nil {
			return fileConfig{}, err
		}
		return fc, nil
	default:
		return fileConfig{}, syncerrors.Configf("failed to parse config file %s: %v", path, err)
	}
}

func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return syncerrors.Configf("failed to create config directory: %v", err)
	}

	f, err := os.Create(path) //#nosec G304 -- config path comes from the user
	if err != nil {
		return syncerrors.Configf("failed to write default config: %v", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(defaultFileConfig()); err != nil {
		return syncerrors.Configf("failed to write default config: %v", err)
	}
	return nil
}

// expandPath expands ~ and resolves relative paths against baseDir
// (the working directory when baseDir is empty).
func expandPath(path, baseDir string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		if baseDir != "" {
			path = filepath.Join(baseDir, path)
		} else {
			absPath, err := filepath.Abs(path)
			if err != nil {
				return "", fmt.Errorf("failed to get absolute path: %w", err)
			}
			path = absPath
		}
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or fallback.
func getConfigValue(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return fallback
}

// getBoolConfigValue returns a bool from flag, env var, or fallback.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, fallback bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return fallback
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or fallback.
func getIntConfigValue(flagValue, envKey string, fallback int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return fallback
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return fallback
	}
	return result
}
