package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains the directories the import pipeline reads from and writes to.
type Paths struct {
	ImportDir string `toml:"import_dir"`
	MetaDir   string `toml:"meta_dir"`
	DataDir   string `toml:"data_dir"`
	CacheDir  string `toml:"cache_dir"`
	LogDir    string `toml:"log_dir"`
}

// Show contains settings describing the radio show itself.
type Show struct {
	Name string `toml:"name"`
}

// Mixcloud contains configuration for the enrichment API and its disk cache.
type Mixcloud struct {
	Profile        string `toml:"profile"`
	APIBaseURL     string `toml:"api_base_url"`
	SiteBaseURL    string `toml:"site_base_url"`
	UserAgent      string `toml:"user_agent"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	CacheTTLHours  int    `toml:"cache_ttl_hours"`
	MinIntervalMS  int    `toml:"min_interval_ms"`
	Workers        int    `toml:"workers"`
}

// Catalog contains the output artifact locations. Relative file names are
// resolved against paths.data_dir.
type Catalog struct {
	LibraryFile   string `toml:"library_file"`
	SnapshotFile  string `toml:"snapshot_file"`
	SQLiteEnabled bool   `toml:"sqlite_enabled"`
	SQLitePath    string `toml:"sqlite_path"`
}

// FillerTrack names a recurring intro or outro bumper by artist and the
// title variants it ships under.
type FillerTrack struct {
	Artist string   `toml:"artist"`
	Titles []string `toml:"titles"`
}

// Filler lists bumpers hidden from the first and last tracklist positions.
type Filler struct {
	Intro []FillerTrack `toml:"intro"`
	Outro []FillerTrack `toml:"outro"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pbrlib.
//
// Configuration sections by subsystem:
//   - Paths: import, metadata, data, cache, and log directories
//   - Show: show name used in default titles
//   - Mixcloud: enrichment API, throttle, and cache TTL
//   - Catalog: library, snapshot, and SQLite mirror locations
//   - Filler: intro/outro bumpers hidden from tracklists
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Show     Show     `toml:"show"`
	Mixcloud Mixcloud `toml:"mixcloud"`
	Catalog  Catalog  `toml:"catalog"`
	Filler   Filler   `toml:"filler"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	// A missing .env is the common case.
	_ = godotenv.Load()

	cfg := Default()
	cfg.applyEnvDefaults()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directories a run writes into. The cache
// directory is only created when enrichment will use it.
func (c *Config) EnsureDirectories(withCache bool) error {
	dirs := []string{c.Paths.DataDir}
	if c.Paths.LogDir != "" {
		dirs = append(dirs, c.Paths.LogDir)
	}
	if withCache {
		dirs = append(dirs, c.Paths.CacheDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LibraryPath returns the absolute path of the catalog document.
func (c *Config) LibraryPath() string {
	return c.dataFile(c.Catalog.LibraryFile)
}

// SnapshotPath returns the absolute path of the read snapshot.
func (c *Config) SnapshotPath() string {
	return c.dataFile(c.Catalog.SnapshotFile)
}

// SQLitePath returns the absolute path of the relational mirror.
func (c *Config) SQLitePath() string {
	return c.dataFile(c.Catalog.SQLitePath)
}

// LockPath returns the path of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, lockFileName)
}

func (c *Config) dataFile(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Paths.DataDir, name)
}

// MixcloudTimeout returns the HTTP timeout for enrichment requests.
func (c *Config) MixcloudTimeout() time.Duration {
	return time.Duration(c.Mixcloud.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long cached enrichment responses stay fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Mixcloud.CacheTTLHours) * time.Hour
}

// MinInterval returns the minimum gap between uncached enrichment requests.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.Mixcloud.MinIntervalMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
