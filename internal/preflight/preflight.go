package preflight

import (
	"fmt"
	"strings"

	"pbrlib/internal/config"
	"pbrlib/internal/services"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks an import needs. The cache directory
// is only checked when enrichment is enabled.
func RunAll(cfg *config.Config, enrich bool) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckReadableDirectory("Import directory", cfg.Paths.ImportDir),
		CheckDirectoryAccess("Data directory", cfg.Paths.DataDir),
	}
	if enrich {
		results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	}
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	return results
}

// Err folds failed results into a configuration error, or returns nil when
// every check passed.
func Err(results []Result) error {
	var failed []string
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", r.Name, r.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return services.Wrap(services.ErrConfiguration, "preflight", "check directories", strings.Join(failed, "; "), nil)
}
