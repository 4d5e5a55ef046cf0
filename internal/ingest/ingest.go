package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"pbrlib/internal/logging"
	"pbrlib/internal/services"
)

// File is one parsed tracklist.
type File struct {
	Path        string
	BaseName    string
	Date        string
	Rows        []Row
	SkippedRows int
}

// Ingestor discovers and parses tracklist files.
type Ingestor struct {
	logger *slog.Logger
}

// New constructs an Ingestor.
func New(logger *slog.Logger) *Ingestor {
	return &Ingestor{logger: logging.NewComponentLogger(logger, "ingest")}
}

// Discover returns the .csv files directly inside dir in lexical order.
func Discover(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", "import directory not found: "+dir, nil)
		}
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", "stat import directory", err)
	}
	if !info.IsDir() {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", dir+" is not a directory", nil)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "ingest", "discover", "read import directory", err)
	}
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// BaseName returns the file name without directory or .csv extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return name[:len(name)-len(filepath.Ext(name))]
}

// Load parses the tracklist at path. Files without a date in their name
// return an ErrInput error.
func (i *Ingestor) Load(ctx context.Context, path string) (File, error) {
	file := File{Path: path, BaseName: BaseName(path)}
	date, ok := ExtractDate(file.BaseName)
	if !ok {
		return file, services.Wrap(services.ErrInput, "ingest", "date", "unable to determine date from file name "+filepath.Base(path), nil)
	}
	file.Date = date

	data, err := os.ReadFile(path)
	if err != nil {
		return file, services.Wrap(services.ErrInput, "ingest", "read", filepath.Base(path), err)
	}

	logger := logging.WithContext(ctx, i.logger)
	rows, skipped, err := parseRows(data, func(line int, err error) {
		logging.WarnWithContext(logger, "unparseable csv row skipped", "ingest_row_malformed",
			logging.String("file", filepath.Base(path)),
			logging.Int("line", line),
			logging.Error(err),
			logging.String(logging.FieldImpact, "row dropped from the tracklist"),
			logging.String(logging.FieldErrorHint, "check quoting on that line"))
	})
	if err != nil {
		return file, services.Wrap(services.ErrInput, "ingest", "parse", filepath.Base(path), err)
	}
	file.Rows = rows
	file.SkippedRows = skipped

	logger.Debug("tracklist loaded",
		logging.String("file", filepath.Base(path)),
		logging.String("date", date),
		logging.Int("rows", len(rows)),
		logging.Int("skipped_rows", skipped))
	return file, nil
}

func parseRows(data []byte, onMalformed func(line int, err error)) ([]Row, int, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var (
		headers []string
		rows    []Row
		skipped int
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if !errors.As(err, &parseErr) {
				return nil, 0, fmt.Errorf("read csv: %w", err)
			}
			skipped++
			if onMalformed != nil {
				onMalformed(parseErr.Line, parseErr.Err)
			}
			continue
		}
		if blankRecord(record) {
			continue
		}
		if headers == nil {
			headers = NormalizeHeaders(record)
			continue
		}
		row, ok := MapRow(headers, record)
		if !ok {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

func blankRecord(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
