package uploader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"fileconsole/internal/model"
	"fileconsole/internal/transport"
	"fileconsole/internal/util"
	"fileconsole/pkg/apierror"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

const genericUploadError = "Upload failed"

// FileSource is one selected file: a name, its size, and a way to open the
// content when the upload is dispatched.
type FileSource struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Entry is a read-only snapshot of one file's upload bookkeeping.
type Entry struct {
	Name     string
	Size     int64
	Progress int
	Status   Status
	Error    string
	Response *model.FileUploadResponse
}

// Stats aggregates entry counts by status.
type Stats struct {
	Total     int
	Pending   int
	Uploading int
	Success   int
	Error     int
}

// Transport is the slice of the files API the queue needs.
type Transport interface {
	Upload(ctx context.Context, req transport.UploadRequest, onProgress func(percent int)) (model.FileUploadResponse, error)
}

type entry struct {
	name     string
	size     int64
	progress int
	status   Status
	errMsg   string
	response *model.FileUploadResponse
	cancel   context.CancelFunc
	removed  bool
}

// Queue tracks one entry per submitted file. Every valid file uploads on
// its own goroutine; by default nothing throttles them, an optional
// concurrency cap can be configured.
type Queue struct {
	mu          sync.Mutex
	transport   Transport
	maxFileSize int64
	sem         chan struct{}
	entries     []*entry
	wg          sync.WaitGroup
}

type QueueOption func(*Queue)

// WithMaxFileSize overrides the per-file size limit (default 200 MiB).
func WithMaxFileSize(limit int64) QueueOption {
	return func(q *Queue) {
		if limit > 0 {
			q.maxFileSize = limit
		}
	}
}

// WithConcurrency caps the number of simultaneous uploads. Zero keeps the
// default of unconstrained parallelism.
func WithConcurrency(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.sem = make(chan struct{}, n)
		}
	}
}

func New(t Transport, opts ...QueueOption) *Queue {
	q := &Queue{
		transport:   t,
		maxFileSize: 200 << 20,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Submit validates each source and starts its upload. Oversized files are
// recorded as error entries without touching the transport. The tags
// string is split on commas, trimmed, and shared by every dispatched file.
func (q *Queue) Submit(ctx context.Context, sources []FileSource, tags string) {
	tagList := model.SplitTags(tags)

	for _, source := range sources {
		if source.Size > q.maxFileSize {
			q.mu.Lock()
			q.entries = append(q.entries, &entry{
				name:   source.Name,
				size:   source.Size,
				status: StatusError,
				errMsg: fmt.Sprintf("File size exceeds %s", util.FormatSize(q.maxFileSize)),
			})
			q.mu.Unlock()
			continue
		}

		entryCtx, cancel := context.WithCancel(ctx)
		e := &entry{
			name:   source.Name,
			size:   source.Size,
			status: StatusPending,
			cancel: cancel,
		}

		q.mu.Lock()
		q.entries = append(q.entries, e)
		q.mu.Unlock()

		q.wg.Add(1)
		go q.dispatch(entryCtx, e, source, tagList)
	}
}

func (q *Queue) dispatch(ctx context.Context, e *entry, source FileSource, tags []string) {
	defer q.wg.Done()
	defer e.cancel()

	if q.sem != nil {
		select {
		case q.sem <- struct{}{}:
			defer func() { <-q.sem }()
		case <-ctx.Done():
			q.fail(e, context.Cause(ctx))
			return
		}
	}

	q.mu.Lock()
	if e.removed {
		q.mu.Unlock()
		return
	}
	e.status = StatusUploading
	e.progress = 0
	q.mu.Unlock()

	body, err := source.Open()
	if err != nil {
		q.fail(e, err)
		return
	}
	defer body.Close()

	response, err := q.transport.Upload(ctx, transport.UploadRequest{
		Name: source.Name,
		Size: source.Size,
		Body: body,
		Tags: tags,
	}, func(percent int) {
		q.mu.Lock()
		if !e.removed && e.status == StatusUploading {
			e.progress = percent
		}
		q.mu.Unlock()
	})
	if err != nil {
		q.fail(e, err)
		return
	}

	q.mu.Lock()
	if !e.removed {
		e.status = StatusSuccess
		e.progress = 100
		e.response = &response
	}
	q.mu.Unlock()
}

// fail flips the entry to error, resets its progress, and records a
// human-readable message: the server title when the transport surfaced
// one, else the error text, else a generic fallback.
func (q *Queue) fail(e *entry, err error) {
	message := genericUploadError
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) && strings.TrimSpace(apiErr.Message) != "" {
		message = apiErr.Message
	} else if err != nil && strings.TrimSpace(err.Error()) != "" {
		message = err.Error()
	}

	q.mu.Lock()
	if !e.removed {
		e.status = StatusError
		e.progress = 0
		e.errMsg = message
	}
	q.mu.Unlock()
}

// Remove drops the entry at index, cancelling its request first when it is
// still in flight. Once removed, an entry never sees another progress or
// status update.
func (q *Queue) Remove(index int) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 || index >= len(q.entries) {
		return
	}

	e := q.entries[index]
	e.removed = true
	if e.cancel != nil {
		e.cancel()
	}
	q.entries = append(q.entries[:index], q.entries[index+1:]...)
}

// ClearCompleted drops every success and error entry, keeping pending and
// uploading ones in place.
func (q *Queue) ClearCompleted() {
	q.mu.Lock()
	defer q.mu.Unlock()

	kept := q.entries[:0]
	for _, e := range q.entries {
		if e.status == StatusPending || e.status == StatusUploading {
			kept = append(kept, e)
		}
	}
	q.entries = kept
}

// Entries returns a point-in-time snapshot of the queue.
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Entry, len(q.entries))
	for i, e := range q.entries {
		out[i] = Entry{
			Name:     e.name,
			Size:     e.size,
			Progress: e.progress,
			Status:   e.status,
			Error:    e.errMsg,
			Response: e.response,
		}
	}
	return out
}

// AllComplete is true iff the queue is non-empty and every entry reached a
// terminal status.
func (q *Queue) AllComplete() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return false
	}
	for _, e := range q.entries {
		if e.status != StatusSuccess && e.status != StatusError {
			return false
		}
	}
	return true
}

// Stats counts entries by status.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	s := Stats{Total: len(q.entries)}
	for _, e := range q.entries {
		switch e.status {
		case StatusPending:
			s.Pending++
		case StatusUploading:
			s.Uploading++
		case StatusSuccess:
			s.Success++
		case StatusError:
			s.Error++
		}
	}
	return s
}

// Wait blocks until every dispatched upload has settled.
func (q *Queue) Wait() {
	q.wg.Wait()
}
