package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"fileconsole/internal/model"
	"fileconsole/pkg/apierror"
)

// Client issues single request/response exchanges against a remote files
// API. There is no retry logic at this layer; every failure is surfaced to
// the caller as an *apierror.APIError.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      func() string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, mainly for tests and
// custom timeouts.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource installs a bearer token provider. An empty token means
// the request goes out unauthenticated.
func WithTokenSource(fn func() string) Option {
	return func(c *Client) {
		if fn != nil {
			c.token = fn
		}
	}
}

// NewClient creates a files API client rooted at baseURL, e.g.
// "http://localhost:8080/api".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    strings.TrimSuffix(strings.TrimSpace(baseURL), "/"),
		token:      func() string { return "" },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) filesURL(parts ...string) string {
	u := c.baseURL + "/files"
	for _, p := range parts {
		u += "/" + url.PathEscape(p)
	}
	return u
}

func (c *Client) newRequest(ctx context.Context, method string, rawURL string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// List fetches one page of file metadata. The returned total is the
// server-reported row count when the response carries one, otherwise the
// length of the returned page.
func (c *Client) List(ctx context.Context, params model.FileListParams) ([]model.StoredFile, int, error) {
	query := url.Values{}
	setNonEmpty := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			query.Set(key, value)
		}
	}
	setNonEmpty("name", params.Name)
	setNonEmpty("tag", params.Tag)
	setNonEmpty("contentType", params.ContentType)
	setNonEmpty("startDate", params.StartDate)
	setNonEmpty("endDate", params.EndDate)
	if params.PageNumber > 0 {
		query.Set("pageNumber", strconv.Itoa(params.PageNumber))
	}
	if params.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(params.PageSize))
	}

	listURL := c.filesURL()
	if encoded := query.Encode(); encoded != "" {
		listURL += "?" + encoded
	}

	req, err := c.newRequest(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("list files: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, 0, readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("read list response: %w", err)
	}

	files, total, _ := DecodeFileList(body)
	return files, total, nil
}

// Get fetches a single file's metadata by id.
func (c *Client) Get(ctx context.Context, id string) (model.StoredFile, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.filesURL(id), nil)
	if err != nil {
		return model.StoredFile{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("get file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.StoredFile{}, readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("read file response: %w", err)
	}

	return decodeStoredFile(body)
}

// Download streams a file's binary content. The caller owns the returned
// reader and must close it. The filename comes from Content-Disposition
// when the server supplies one, else it falls back to the id.
func (c *Client) Download(ctx context.Context, id string) (io.ReadCloser, string, int64, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.filesURL(id, "download"), nil)
	if err != nil {
		return nil, "", 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", 0, fmt.Errorf("download file: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", 0, readError(resp)
	}

	filename := id
	if disposition := resp.Header.Get("Content-Disposition"); disposition != "" {
		if _, dispParams, parseErr := mime.ParseMediaType(disposition); parseErr == nil {
			if name := strings.TrimSpace(dispParams["filename"]); name != "" {
				filename = name
			}
		}
	}

	return resp.Body, filename, resp.ContentLength, nil
}

// Preview streams binary content meant for inline rendering. Only images
// and PDFs are previewable; the decision is the caller's, this layer just
// moves bytes. The caller must close the reader.
func (c *Client) Preview(ctx context.Context, id string) (io.ReadCloser, string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.filesURL(id, "preview"), nil)
	if err != nil {
		return nil, "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("preview file: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, "", readError(resp)
	}

	return resp.Body, resp.Header.Get("Content-Type"), nil
}

// SoftDelete marks a file deleted. The file stays recoverable server-side
// and disappears from listings.
func (c *Client) SoftDelete(ctx context.Context, id string) error {
	return c.delete(ctx, c.filesURL(id))
}

// HardDelete removes a file irreversibly. Restricting it to admins is the
// caller's responsibility, not this layer's.
func (c *Client) HardDelete(ctx context.Context, id string) error {
	return c.delete(ctx, c.filesURL(id, "hard"))
}

func (c *Client) delete(ctx context.Context, rawURL string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readError(resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// errorPayload covers the error body shapes seen in the wild: RFC 7807
// style documents with a title, and success/error envelopes.
type errorPayload struct {
	Title   string          `json:"title"`
	Message string          `json:"message"`
	Error   *model.APIError `json:"error"`
}

// readError converts a non-2xx response into an *apierror.APIError,
// preferring a server-supplied title over a generic message.
func readError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))

	var payload errorPayload
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case strings.TrimSpace(payload.Title) != "":
			return apierror.FromStatus(resp.StatusCode, payload.Title)
		case payload.Error != nil && strings.TrimSpace(payload.Error.Message) != "":
			return apierror.New(payload.Error.Code, payload.Error.Message, payload.Error.Details, resp.StatusCode)
		case strings.TrimSpace(payload.Message) != "":
			return apierror.FromStatus(resp.StatusCode, payload.Message)
		}
	}

	return apierror.FromStatus(resp.StatusCode, fmt.Sprintf("server returned %s", resp.Status))
}
