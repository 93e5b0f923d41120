package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileconsole/internal/config"
	"fileconsole/internal/model"
	"fileconsole/internal/server/store"
	"fileconsole/internal/session"
	"fileconsole/internal/transport"
	"fileconsole/pkg/apierror"
)

const testSecret = "integration-test-secret"

func newTestServer(t *testing.T, maxUploadSize int64) *httptest.Server {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:    testSecret,
		CORSOrigins:  []string{"*"},
		RateLimitRPM: 600,
	}
	handler := NewFilesHandler(store.NewMemory(), maxUploadSize)
	srv := httptest.NewServer(NewRouter(cfg, handler))
	t.Cleanup(srv.Close)
	return srv
}

// newTestClient logs in through the session manager and returns a transport
// client that sends the minted token, exactly as the console wires it.
func newTestClient(t *testing.T, srv *httptest.Server, username string) *transport.Client {
	t.Helper()

	manager := session.NewManager(filepath.Join(t.TempDir(), "session.json"), testSecret, time.Hour)
	_, err := manager.Login(username, "pw")
	require.NoError(t, err)

	return transport.NewClient(srv.URL+"/api", transport.WithTokenSource(manager.Token))
}

func uploadText(t *testing.T, client *transport.Client, name string, content string, tags ...string) model.FileUploadResponse {
	t.Helper()

	uploaded, err := client.Upload(context.Background(), transport.UploadRequest{
		Name: name,
		Size: int64(len(content)),
		Body: strings.NewReader(content),
		Tags: tags,
	}, nil)
	require.NoError(t, err)
	return uploaded
}

func TestFilesEndToEnd(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	client := newTestClient(t, srv, "alice")

	uploaded := uploadText(t, client, "notes.txt", "hello from the console", "work", "draft")
	assert.NotEmpty(t, uploaded.ID)
	assert.NotEmpty(t, uploaded.Key)
	assert.Equal(t, "notes.txt", uploaded.OriginalName)
	assert.Equal(t, int64(22), uploaded.SizeBytes)
	assert.Equal(t, "text/plain; charset=utf-8", uploaded.ContentType)
	assert.Len(t, uploaded.Checksum, 64)
	assert.Equal(t, []string{"work", "draft"}, []string(uploaded.Tags))
	require.NotNil(t, uploaded.Version)
	assert.Equal(t, 1, *uploaded.Version)

	files, total, err := client.List(context.Background(), model.FileListParams{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, files, 1)
	assert.Equal(t, uploaded.ID, files[0].ID)
	assert.NotEmpty(t, files[0].CreatedByUserID)

	file, err := client.Get(context.Background(), uploaded.ID)
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", file.OriginalName)
	assert.False(t, file.Deleted())

	body, filename, size, err := client.Download(context.Background(), uploaded.ID)
	require.NoError(t, err)
	content, err := io.ReadAll(body)
	require.NoError(t, err)
	body.Close()
	assert.Equal(t, "notes.txt", filename)
	assert.Equal(t, int64(22), size)
	assert.Equal(t, "hello from the console", string(content))
}

func TestListFiltersAndPaging(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	client := newTestClient(t, srv, "alice")

	uploadText(t, client, "report-january.txt", "jan", "finance")
	uploadText(t, client, "report-february.txt", "feb", "finance")
	uploadText(t, client, "holiday-plan.txt", "fun")

	t.Run("name filter", func(t *testing.T) {
		files, total, err := client.List(context.Background(), model.FileListParams{Name: "REPORT"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Len(t, files, 2)
	})

	t.Run("tag filter", func(t *testing.T) {
		_, total, err := client.List(context.Background(), model.FileListParams{Tag: "finance"})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
	})

	t.Run("paging carries the full total", func(t *testing.T) {
		files, total, err := client.List(context.Background(), model.FileListParams{PageNumber: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Len(t, files, 1)
	})

	t.Run("invalid pageNumber is a 400", func(t *testing.T) {
		manager := session.NewManager(filepath.Join(t.TempDir(), "session.json"), testSecret, time.Hour)
		_, err := manager.Login("alice", "pw")
		require.NoError(t, err)

		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/files?pageNumber=zero", nil)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+manager.Token())

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var envelope model.APIResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		assert.False(t, envelope.Success)
		require.NotNil(t, envelope.Error)
		assert.Contains(t, envelope.Error.Message, "pageNumber")
	})
}

func TestSoftAndHardDelete(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	userClient := newTestClient(t, srv, "alice")
	adminClient := newTestClient(t, srv, "admin")

	uploaded := uploadText(t, userClient, "notes.txt", "content")

	require.NoError(t, userClient.SoftDelete(context.Background(), uploaded.ID))

	t.Run("soft-deleted file leaves listings", func(t *testing.T) {
		_, total, err := userClient.List(context.Background(), model.FileListParams{})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("metadata stays fetchable with the deletion stamp", func(t *testing.T) {
		file, err := userClient.Get(context.Background(), uploaded.ID)
		require.NoError(t, err)
		assert.True(t, file.Deleted())
	})

	t.Run("content is gone for download and preview", func(t *testing.T) {
		_, _, _, err := userClient.Download(context.Background(), uploaded.ID)
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)

		_, _, err = userClient.Preview(context.Background(), uploaded.ID)
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	})

	t.Run("soft delete is idempotent", func(t *testing.T) {
		assert.NoError(t, userClient.SoftDelete(context.Background(), uploaded.ID))
	})

	t.Run("hard delete needs the admin role", func(t *testing.T) {
		err := userClient.HardDelete(context.Background(), uploaded.ID)
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusForbidden, apiErr.HTTPStatus)

		require.NoError(t, adminClient.HardDelete(context.Background(), uploaded.ID))

		_, err = adminClient.Get(context.Background(), uploaded.ID)
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	})
}

func TestAuthGuards(t *testing.T) {
	srv := newTestServer(t, 200<<20)

	t.Run("missing token is a 401", func(t *testing.T) {
		client := transport.NewClient(srv.URL + "/api")
		_, _, err := client.List(context.Background(), model.FileListParams{})
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	})

	t.Run("garbage token is a 401", func(t *testing.T) {
		client := transport.NewClient(srv.URL+"/api", transport.WithTokenSource(func() string { return "not-a-jwt" }))
		_, _, err := client.List(context.Background(), model.FileListParams{})
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	})

	t.Run("token signed with a different key is a 401", func(t *testing.T) {
		manager := session.NewManager(filepath.Join(t.TempDir(), "session.json"), "some-other-key", time.Hour)
		_, err := manager.Login("alice", "pw")
		require.NoError(t, err)

		client := transport.NewClient(srv.URL+"/api", transport.WithTokenSource(manager.Token))
		_, _, err = client.List(context.Background(), model.FileListParams{})
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnauthorized, apiErr.HTTPStatus)
	})

	t.Run("health endpoint needs no token", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/health")
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestUploadLimits(t *testing.T) {
	srv := newTestServer(t, 512)
	client := newTestClient(t, srv, "alice")

	payload := strings.Repeat("x", 10<<10)
	_, err := client.Upload(context.Background(), transport.UploadRequest{
		Name: "big.bin",
		Size: int64(len(payload)),
		Body: strings.NewReader(payload),
	}, nil)

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusRequestEntityTooLarge, apiErr.HTTPStatus)
	assert.Equal(t, "File exceeds the maximum upload size", apiErr.Message)
}

func TestUploadValidation(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	client := newTestClient(t, srv, "alice")

	t.Run("missing file part is a 400", func(t *testing.T) {
		_, err := client.Upload(context.Background(), transport.UploadRequest{
			Name: "",
			Size: 0,
			Body: strings.NewReader(""),
			Tags: []string{"only-tags"},
		}, nil)
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("hostile filenames are sanitized", func(t *testing.T) {
		uploaded := uploadText(t, client, "../../etc/passwd", "boring content")
		assert.Equal(t, "passwd", uploaded.OriginalName)
	})
}

func TestPreview(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	client := newTestClient(t, srv, "alice")

	t.Run("small image streams back as an image", func(t *testing.T) {
		img := image.NewRGBA(image.Rect(0, 0, 8, 8))
		for y := 0; y < 8; y++ {
			for x := 0; x < 8; x++ {
				img.Set(x, y, color.RGBA{R: uint8(x * 32), G: uint8(y * 32), B: 128, A: 255})
			}
		}
		var buf bytes.Buffer
		require.NoError(t, png.Encode(&buf, img))

		uploaded, err := client.Upload(context.Background(), transport.UploadRequest{
			Name: "pixel.png",
			Size: int64(buf.Len()),
			Body: bytes.NewReader(buf.Bytes()),
		}, nil)
		require.NoError(t, err)
		assert.Equal(t, "image/png", uploaded.ContentType)

		body, contentType, err := client.Preview(context.Background(), uploaded.ID)
		require.NoError(t, err)
		defer body.Close()

		assert.Equal(t, "image/png", contentType)
		decoded, format, err := image.Decode(body)
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 8, decoded.Bounds().Dx())
	})

	t.Run("non-previewable content type is a 415", func(t *testing.T) {
		uploaded := uploadText(t, client, "notes.txt", "plain text")

		_, _, err := client.Preview(context.Background(), uploaded.ID)
		var apiErr *apierror.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusUnsupportedMediaType, apiErr.HTTPStatus)
	})
}

func TestEnvelopeShape(t *testing.T) {
	srv := newTestServer(t, 200<<20)
	client := newTestClient(t, srv, "alice")
	uploadText(t, client, "notes.txt", "content")

	manager := session.NewManager(filepath.Join(t.TempDir(), "session.json"), testSecret, time.Hour)
	_, err := manager.Login("alice", "pw")
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/files?pageSize=5", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+manager.Token())

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Success bool               `json:"success"`
		Data    []model.StoredFile `json:"data"`
		Meta    *model.Meta        `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))

	assert.True(t, envelope.Success)
	assert.Len(t, envelope.Data, 1)
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, 1, envelope.Meta.Page)
	assert.Equal(t, 5, envelope.Meta.Limit)
	assert.Equal(t, 1, envelope.Meta.Total)
	assert.Equal(t, 1, envelope.Meta.TotalPages)
}
