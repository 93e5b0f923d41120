// Package store persists file metadata and content for the dev server.
// Two implementations exist: an in-memory store for demos and tests, and a
// Postgres store selected by DATABASE_URL.
package store

import (
	"context"
	"time"

	"fileconsole/internal/model"
)

// ListQuery carries the conjunctive filter criteria plus 1-based paging.
// Zero-value fields do not filter. Soft-deleted files are never listed.
type ListQuery struct {
	Name        string
	Tag         string
	ContentType string
	StartDate   time.Time
	EndDate     time.Time
	Page        int
	PageSize    int
}

type Store interface {
	// Create inserts a new file with its content.
	Create(ctx context.Context, meta model.StoredFile, content []byte) error
	// List returns one page of active files plus the total count of
	// matching active files.
	List(ctx context.Context, q ListQuery) ([]model.StoredFile, int, error)
	// Get returns metadata for any stored file, including soft-deleted
	// ones.
	Get(ctx context.Context, id string) (model.StoredFile, error)
	// Content returns the file's bytes alongside its metadata.
	Content(ctx context.Context, id string) (model.StoredFile, []byte, error)
	// SoftDelete stamps deletedAtUtc; the file stays recoverable.
	SoftDelete(ctx context.Context, id string) error
	// HardDelete removes the record and content irreversibly.
	HardDelete(ctx context.Context, id string) error
	Close()
}

// Matches reports whether a file satisfies every non-empty criterion of q.
// Name and tag match case-insensitively on substrings, content type on a
// plain substring, and the date bounds are inclusive.
func Matches(f model.StoredFile, q ListQuery) bool {
	if q.Name != "" && !containsFold(f.OriginalName, q.Name) {
		return false
	}

	if q.Tag != "" {
		found := false
		for _, tag := range f.Tags {
			if containsFold(tag, q.Tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if q.ContentType != "" && !containsSubstring(f.ContentType, q.ContentType) {
		return false
	}

	if !q.StartDate.IsZero() && f.CreatedAtUTC.Before(q.StartDate) {
		return false
	}

	if !q.EndDate.IsZero() && f.CreatedAtUTC.After(q.EndDate) {
		return false
	}

	return true
}
