package metadata

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pbrlib/internal/logging"
)

// Override holds the optional per-show fields a curator may pin. Nil means
// "not provided".
type Override struct {
	Slug             *string
	Title            *string
	Description      *string
	PublishedAt      *string
	DurationSeconds  *int
	HeroImage        *string
	Tags             []string
	Year             *int
	MixcloudPath     *string
	MixcloudURL      *string
	MixcloudEmbedURL *string
}

// Loader reads override files from a directory.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader constructs a Loader for dir. An empty dir disables overrides.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	return &Loader{
		dir:    strings.TrimSpace(dir),
		logger: logging.NewComponentLogger(logger, "metadata"),
	}
}

// Path returns the override file location for date.
func (l *Loader) Path(date string) string {
	return filepath.Join(l.dir, date+".json")
}

// Load returns the overrides for date. The second result is false when no
// usable override file exists.
func (l *Loader) Load(ctx context.Context, date string) (Override, bool) {
	if l == nil || l.dir == "" {
		return Override{}, false
	}
	logger := logging.WithContext(ctx, l.logger)
	path := l.Path(date)

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.WarnWithContext(logger, "metadata override unreadable", "metadata_read_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "show uses default metadata"))
		}
		return Override{}, false
	}

	override, unknown, err := parseOverride(data)
	if err != nil {
		logging.WarnWithContext(logger, "metadata override malformed", "metadata_malformed",
			logging.String("path", path),
			logging.Error(err),
			logging.String(logging.FieldImpact, "show uses default metadata"),
			logging.String(logging.FieldErrorHint, "the file must contain a JSON object"))
		return Override{}, false
	}
	for _, issue := range unknown {
		logger.Warn("metadata override key ignored",
			logging.String("path", path),
			logging.String("key", issue.key),
			logging.String("reason", issue.reason),
			logging.String(logging.FieldEventType, "metadata_key_ignored"))
	}
	logger.Debug("metadata override loaded", logging.String("path", path))
	return override, true
}

type keyIssue struct {
	key    string
	reason string
}

func parseOverride(data []byte) (Override, []keyIssue, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Override{}, nil, err
	}
	if raw == nil {
		return Override{}, nil, errors.New("override document is null")
	}

	var (
		out    Override
		issues []keyIssue
	)
	decoders := map[string]func(json.RawMessage) error{
		"slug":               field(&out.Slug),
		"title":              field(&out.Title),
		"description":        field(&out.Description),
		"published_at":       field(&out.PublishedAt),
		"duration_seconds":   field(&out.DurationSeconds),
		"hero_image":         field(&out.HeroImage),
		"tags":               field(&out.Tags),
		"year":               field(&out.Year),
		"mixcloud_path":      field(&out.MixcloudPath),
		"mixcloud_url":       field(&out.MixcloudURL),
		"mixcloud_embed_url": field(&out.MixcloudEmbedURL),
	}

	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		decode, ok := decoders[key]
		if !ok {
			issues = append(issues, keyIssue{key: key, reason: "unknown key"})
			continue
		}
		if err := decode(raw[key]); err != nil {
			issues = append(issues, keyIssue{key: key, reason: "wrong type"})
		}
	}
	return out, issues, nil
}

// field decodes into a scratch value so a type mismatch leaves dst untouched.
func field[T any](dst *T) func(json.RawMessage) error {
	return func(raw json.RawMessage) error {
		var value T
		if err := json.Unmarshal(raw, &value); err != nil {
			return err
		}
		*dst = value
		return nil
	}
}
