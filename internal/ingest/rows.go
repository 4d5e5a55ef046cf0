package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	headerSeparator = regexp.MustCompile(`[^a-z0-9]+`)
	tagSeparator    = regexp.MustCompile(`[|,]`)
	isoDate         = regexp.MustCompile(`(\d{4}-\d{2}-\d{2})`)
)

// Row is one tracklist entry after column mapping.
type Row struct {
	Date            string
	Order           int
	Artist          string
	Track           string
	Album           string
	DurationSeconds *int
	Tags            []string
}

// ExtractDate returns the first YYYY-MM-DD substring of name.
func ExtractDate(name string) (string, bool) {
	match := isoDate.FindString(name)
	return match, match != ""
}

// NormalizeHeader lowercases a column name and replaces runs of characters
// outside [a-z0-9] with an underscore.
func NormalizeHeader(header string) string {
	return headerSeparator.ReplaceAllString(strings.ToLower(strings.TrimSpace(header)), "_")
}

// NormalizeHeaders applies NormalizeHeader to every column.
func NormalizeHeaders(headers []string) []string {
	out := make([]string, len(headers))
	for i, header := range headers {
		out[i] = NormalizeHeader(header)
	}
	return out
}

// ParseTags splits a tag cell on '|' or ',' and returns the trimmed,
// lowercased, non-empty segments.
func ParseTags(value string) []string {
	tags := []string{}
	if strings.TrimSpace(value) == "" {
		return tags
	}
	for _, segment := range tagSeparator.Split(value, -1) {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		tags = append(tags, strings.ToLower(segment))
	}
	return tags
}

// MapRow binds cells to normalized headers. The second result is false when
// the row lacks an artist or a track.
func MapRow(headers, cells []string) (Row, bool) {
	fields := make(map[string]string, len(headers))
	for i, header := range headers {
		if _, seen := fields[header]; seen {
			continue
		}
		if i < len(cells) {
			fields[header] = strings.TrimSpace(cells[i])
		} else {
			fields[header] = ""
		}
	}

	row := Row{
		Date:   fields["date"],
		Artist: fields["artist"],
		Track:  fields["track"],
		Album:  fields["album"],
		Tags:   ParseTags(fields["tags"]),
	}
	if order, ok := leadingInt(fields["order"]); ok {
		row.Order = order
	}
	if duration, ok := leadingInt(fields["duration"]); ok {
		row.DurationSeconds = &duration
	}
	if row.Artist == "" || row.Track == "" {
		return row, false
	}
	return row, true
}

// leadingInt parses an optional sign followed by digits at the start of
// value, ignoring anything after them ("180s" is 180).
func leadingInt(value string) (int, bool) {
	value = strings.TrimSpace(value)
	end := 0
	if end < len(value) && (value[end] == '-' || value[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(value) && value[end] >= '0' && value[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}
	n, err := strconv.Atoi(value[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
