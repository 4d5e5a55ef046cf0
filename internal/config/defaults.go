package config

const (
	defaultConfigPath      = "~/.config/pbrlib/config.toml"
	projectConfigName      = "pbrlib.toml"
	lockFileName           = "pbrlib.lock"
	defaultImportDir       = "data/import"
	defaultMetaDir         = "data/import/meta"
	defaultDataDir         = "data"
	defaultCacheDir        = "data/cache/mixcloud"
	defaultShowName        = "Point Break Radio"
	defaultMixcloudProfile = "pointbreakradio"
	defaultAPIBaseURL      = "https://api.mixcloud.com"
	defaultSiteBaseURL     = "https://www.mixcloud.com"
	defaultUserAgent       = "pbrlib/dev"
	defaultTimeoutSeconds  = 12
	defaultCacheTTLHours   = 24
	defaultMinIntervalMS   = 500
	defaultWorkers         = 4
	defaultLibraryFile     = "library.json"
	defaultSnapshotFile    = "shows.json"
	defaultSQLitePath      = "library.db"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ImportDir: defaultImportDir,
			MetaDir:   defaultMetaDir,
			DataDir:   defaultDataDir,
			CacheDir:  defaultCacheDir,
		},
		Show: Show{
			Name: defaultShowName,
		},
		Mixcloud: Mixcloud{
			Profile:        defaultMixcloudProfile,
			APIBaseURL:     defaultAPIBaseURL,
			SiteBaseURL:    defaultSiteBaseURL,
			UserAgent:      defaultUserAgent,
			TimeoutSeconds: defaultTimeoutSeconds,
			CacheTTLHours:  defaultCacheTTLHours,
			MinIntervalMS:  defaultMinIntervalMS,
			Workers:        defaultWorkers,
		},
		Catalog: Catalog{
			LibraryFile:   defaultLibraryFile,
			SnapshotFile:  defaultSnapshotFile,
			SQLiteEnabled: true,
			SQLitePath:    defaultSQLitePath,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

// defaultFiller is applied when the config file names no bumpers at all.
func defaultFiller() Filler {
	return Filler{
		Intro: []FillerTrack{
			{Artist: "No Doubt", Titles: []string{"BND", "BND - Album Version"}},
		},
		Outro: []FillerTrack{
			{Artist: "I Monster", Titles: []string{"The Blue Wrath"}},
		},
	}
}
