package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"fileconsole/internal/model"
)

type memoryRecord struct {
	meta    model.StoredFile
	content []byte
}

// Memory keeps everything in a map guarded by a mutex. Good enough for the
// dev server and the integration tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string]*memoryRecord
}

func NewMemory() *Memory {
	return &Memory{files: map[string]*memoryRecord{}}
}

func (m *Memory) Create(_ context.Context, meta model.StoredFile, content []byte) error {
	if meta.Tags == nil {
		meta.Tags = model.Tags{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(content))
	copy(buf, content)
	m.files[meta.ID] = &memoryRecord{meta: meta, content: buf}
	return nil
}

func (m *Memory) List(_ context.Context, q ListQuery) ([]model.StoredFile, int, error) {
	m.mu.RLock()
	matched := make([]model.StoredFile, 0, len(m.files))
	for _, rec := range m.files {
		if rec.meta.Deleted() {
			continue
		}
		if Matches(rec.meta, q) {
			matched = append(matched, rec.meta)
		}
	}
	m.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAtUTC.Equal(matched[j].CreatedAtUTC) {
			return matched[i].ID < matched[j].ID
		}
		return matched[i].CreatedAtUTC.After(matched[j].CreatedAtUTC)
	})

	total := len(matched)
	return paginate(matched, q.Page, q.PageSize), total, nil
}

func paginate(files []model.StoredFile, page int, pageSize int) []model.StoredFile {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		return files
	}

	start := (page - 1) * pageSize
	if start >= len(files) {
		return []model.StoredFile{}
	}
	end := start + pageSize
	if end > len(files) {
		end = len(files)
	}
	return files[start:end]
}

func (m *Memory) Get(_ context.Context, id string) (model.StoredFile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.files[id]
	if !ok {
		return model.StoredFile{}, model.ErrFileNotFound
	}
	return rec.meta, nil
}

func (m *Memory) Content(_ context.Context, id string) (model.StoredFile, []byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.files[id]
	if !ok {
		return model.StoredFile{}, nil, model.ErrFileNotFound
	}

	buf := make([]byte, len(rec.content))
	copy(buf, rec.content)
	return rec.meta, buf, nil
}

func (m *Memory) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return model.ErrFileNotFound
	}
	if rec.meta.Deleted() {
		return nil
	}

	now := time.Now().UTC()
	rec.meta.DeletedAtUTC = &now
	return nil
}

func (m *Memory) HardDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return model.ErrFileNotFound
	}
	delete(m.files, id)
	return nil
}

func (m *Memory) Close() {}

func containsFold(haystack string, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func containsSubstring(haystack string, needle string) bool {
	return strings.Contains(haystack, needle)
}
