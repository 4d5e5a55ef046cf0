package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeShow()
	c.normalizeMixcloud()
	c.normalizeCatalog()
	c.normalizeFiller()
	c.normalizeLogging()
	return nil
}

// applyEnvDefaults lets the environment (or .env) replace built-in defaults.
// Values from the config file are decoded on top and still win.
func (c *Config) applyEnvDefaults() {
	if value := strings.Trim(strings.TrimSpace(os.Getenv("MIXCLOUD_PROFILE")), "/"); value != "" {
		c.Mixcloud.Profile = value
	}
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("PBRLIB_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.ImportDir) == "" {
		c.Paths.ImportDir = defaultImportDir
	}
	if strings.TrimSpace(c.Paths.MetaDir) == "" {
		c.Paths.MetaDir = defaultMetaDir
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir
	}

	var err error
	if c.Paths.ImportDir, err = expandPath(strings.TrimSpace(c.Paths.ImportDir)); err != nil {
		return fmt.Errorf("paths.import_dir: %w", err)
	}
	if c.Paths.MetaDir, err = expandPath(strings.TrimSpace(c.Paths.MetaDir)); err != nil {
		return fmt.Errorf("paths.meta_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.CacheDir, err = expandPath(strings.TrimSpace(c.Paths.CacheDir)); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeShow() {
	c.Show.Name = strings.TrimSpace(c.Show.Name)
}

func (c *Config) normalizeMixcloud() {
	c.Mixcloud.Profile = strings.Trim(strings.TrimSpace(c.Mixcloud.Profile), "/")
	if c.Mixcloud.Profile == "" {
		if value, ok := os.LookupEnv("MIXCLOUD_PROFILE"); ok {
			c.Mixcloud.Profile = strings.Trim(strings.TrimSpace(value), "/")
		}
	}
	if c.Mixcloud.Profile == "" {
		c.Mixcloud.Profile = defaultMixcloudProfile
	}
	c.Mixcloud.APIBaseURL = strings.TrimRight(strings.TrimSpace(c.Mixcloud.APIBaseURL), "/")
	if c.Mixcloud.APIBaseURL == "" {
		c.Mixcloud.APIBaseURL = defaultAPIBaseURL
	}
	c.Mixcloud.SiteBaseURL = strings.TrimRight(strings.TrimSpace(c.Mixcloud.SiteBaseURL), "/")
	if c.Mixcloud.SiteBaseURL == "" {
		c.Mixcloud.SiteBaseURL = defaultSiteBaseURL
	}
	c.Mixcloud.UserAgent = strings.TrimSpace(c.Mixcloud.UserAgent)
	if c.Mixcloud.UserAgent == "" {
		c.Mixcloud.UserAgent = defaultUserAgent
	}
	if c.Mixcloud.Workers <= 0 {
		c.Mixcloud.Workers = 1
	}
}

func (c *Config) normalizeCatalog() {
	c.Catalog.LibraryFile = strings.TrimSpace(c.Catalog.LibraryFile)
	if c.Catalog.LibraryFile == "" {
		c.Catalog.LibraryFile = defaultLibraryFile
	}
	c.Catalog.SnapshotFile = strings.TrimSpace(c.Catalog.SnapshotFile)
	if c.Catalog.SnapshotFile == "" {
		c.Catalog.SnapshotFile = defaultSnapshotFile
	}
	c.Catalog.SQLitePath = strings.TrimSpace(c.Catalog.SQLitePath)
	if c.Catalog.SQLitePath == "" {
		c.Catalog.SQLitePath = defaultSQLitePath
	}
}

func (c *Config) normalizeFiller() {
	if len(c.Filler.Intro) == 0 && len(c.Filler.Outro) == 0 {
		c.Filler = defaultFiller()
	}
	c.Filler.Intro = normalizeFillerTracks(c.Filler.Intro)
	c.Filler.Outro = normalizeFillerTracks(c.Filler.Outro)
}

func normalizeFillerTracks(tracks []FillerTrack) []FillerTrack {
	out := tracks[:0]
	for _, track := range tracks {
		track.Artist = strings.TrimSpace(track.Artist)
		titles := make([]string, 0, len(track.Titles))
		for _, title := range track.Titles {
			if title = strings.TrimSpace(title); title != "" {
				titles = append(titles, title)
			}
		}
		track.Titles = titles
		if track.Artist == "" || len(track.Titles) == 0 {
			continue
		}
		out = append(out, track)
	}
	return out
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
