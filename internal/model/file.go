package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Tags decodes the tag set of a file. APIs have been observed returning
// null, a single string, or an array; decoding always yields a slice and
// encoding never emits null.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		*t = Tags{}
		return nil
	}

	if strings.HasPrefix(trimmed, "[") {
		var values []string
		if err := json.Unmarshal(data, &values); err != nil {
			return err
		}
		if values == nil {
			values = []string{}
		}
		*t = values
		return nil
	}

	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*t = Tags{}
		return nil
	}
	*t = Tags{single}
	return nil
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

type StoredFile struct {
	ID              string     `json:"id"`
	Key             string     `json:"key"`
	OriginalName    string     `json:"originalName"`
	SizeBytes       int64      `json:"sizeBytes"`
	ContentType     string     `json:"contentType"`
	Checksum        string     `json:"checksum"`
	Tags            Tags       `json:"tags"`
	CreatedAtUTC    time.Time  `json:"createdAtUtc"`
	DeletedAtUTC    *time.Time `json:"deletedAtUtc"`
	Version         *int       `json:"version"`
	CreatedByUserID string     `json:"createdByUserId"`
}

// Deleted reports whether the file has been soft-deleted.
func (f StoredFile) Deleted() bool {
	return f.DeletedAtUTC != nil
}

type FileUploadResponse struct {
	ID           string    `json:"id"`
	Key          string    `json:"key"`
	OriginalName string    `json:"originalName"`
	SizeBytes    int64     `json:"sizeBytes"`
	ContentType  string    `json:"contentType"`
	Checksum     string    `json:"checksum"`
	Tags         Tags      `json:"tags"`
	CreatedAtUTC time.Time `json:"createdAtUtc"`
	Version      *int      `json:"version"`
}

// FileListParams carries the filter and paging fields sent to GET /files.
// Zero values are omitted from the query string. Every non-empty filter is
// conjunctive with the others.
type FileListParams struct {
	Name        string
	Tag         string
	ContentType string
	StartDate   string
	EndDate     string
	PageNumber  int
	PageSize    int
}

// SplitTags turns a free-text comma-separated tag string into a clean
// tag list: items trimmed, empties dropped.
func SplitTags(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
