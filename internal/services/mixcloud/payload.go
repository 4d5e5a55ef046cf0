package mixcloud

import (
	"encoding/json"
	"errors"
	"strings"
)

// ShowPayload is the subset of a Mixcloud cloudcast the enricher reads. Every
// field is optional.
type ShowPayload struct {
	Name        string
	Description string
	AudioLength int
	CreatedTime string
	URL         string
	Pictures    map[string]string
	Tags        []string
}

// DecodeShowPayload parses a cloudcast response. Fields that are missing or
// carry an unexpected type are left empty; only a body that is not a JSON
// object is an error.
func DecodeShowPayload(body []byte) (*ShowPayload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, errors.New("payload is null")
	}

	payload := &ShowPayload{}
	payload.Name = rawString(raw["name"])
	payload.Description = rawString(raw["description"])
	payload.CreatedTime = rawString(raw["created_time"])
	payload.URL = rawString(raw["url"])

	var length float64
	if json.Unmarshal(raw["audio_length"], &length) == nil && length > 0 {
		payload.AudioLength = int(length)
	}

	var pictures map[string]json.RawMessage
	if json.Unmarshal(raw["pictures"], &pictures) == nil {
		payload.Pictures = make(map[string]string, len(pictures))
		for size, value := range pictures {
			if s := rawString(value); s != "" {
				payload.Pictures[size] = s
			}
		}
	}

	var tags []json.RawMessage
	if json.Unmarshal(raw["tags"], &tags) == nil {
		for _, tag := range tags {
			var named struct {
				Name json.RawMessage `json:"name"`
			}
			if json.Unmarshal(tag, &named) != nil {
				continue
			}
			if name := strings.TrimSpace(rawString(named.Name)); name != "" {
				payload.Tags = append(payload.Tags, name)
			}
		}
	}
	return payload, nil
}

// UnwrapEmbed returns the "html" member when body is a JSON object carrying
// one, otherwise body itself.
func UnwrapEmbed(body []byte) string {
	var wrapper map[string]json.RawMessage
	if json.Unmarshal(body, &wrapper) == nil {
		if html, ok := wrapper["html"]; ok {
			var s string
			if json.Unmarshal(html, &s) == nil {
				return s
			}
		}
	}
	return string(body)
}

func rawString(value json.RawMessage) string {
	if len(value) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return ""
	}
	return s
}
