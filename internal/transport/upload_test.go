package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {
	t.Run("sends file part and repeated tags", func(t *testing.T) {
		var gotTags []string
		var gotFilename, gotContent string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			gotTags = r.MultipartForm.Value["tags"]

			fileHeaders := r.MultipartForm.File["file"]
			require.Len(t, fileHeaders, 1)
			gotFilename = fileHeaders[0].Filename

			f, err := fileHeaders[0].Open()
			require.NoError(t, err)
			defer f.Close()
			content, err := io.ReadAll(f)
			require.NoError(t, err)
			gotContent = string(content)

			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id":"f1","originalName":"notes.txt","sizeBytes":11}`))
		}))
		defer srv.Close()

		client := NewClient(srv.URL + "/api")
		body := strings.NewReader("hello world")
		uploaded, err := client.Upload(context.Background(), UploadRequest{
			Name: "notes.txt",
			Size: body.Size(),
			Body: body,
			Tags: []string{"work", "draft"},
		}, nil)
		require.NoError(t, err)

		assert.Equal(t, "f1", uploaded.ID)
		assert.Equal(t, []string{"work", "draft"}, gotTags)
		assert.Equal(t, "notes.txt", gotFilename)
		assert.Equal(t, "hello world", gotContent)
	})

	t.Run("progress climbs and ends at 100 on success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			w.Write([]byte(`{"id":"f1"}`))
		}))
		defer srv.Close()

		payload := bytes.Repeat([]byte("x"), 256<<10)
		var seen []int
		client := NewClient(srv.URL + "/api")
		_, err := client.Upload(context.Background(), UploadRequest{
			Name: "big.bin",
			Size: int64(len(payload)),
			Body: bytes.NewReader(payload),
		}, func(pct int) {
			seen = append(seen, pct)
		})
		require.NoError(t, err)

		require.NotEmpty(t, seen)
		last := -1
		for _, pct := range seen {
			assert.GreaterOrEqual(t, pct, 0)
			assert.LessOrEqual(t, pct, 100)
			assert.Greater(t, pct, last)
			last = pct
		}
		assert.Equal(t, 100, seen[len(seen)-1])
	})

	t.Run("server error means no terminal 100", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			io.Copy(io.Discard, r.Body)
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			w.Write([]byte(`{"title":"File too large"}`))
		}))
		defer srv.Close()

		var seen []int
		client := NewClient(srv.URL + "/api")
		body := strings.NewReader("content")
		_, err := client.Upload(context.Background(), UploadRequest{
			Name: "notes.txt",
			Size: body.Size(),
			Body: body,
		}, func(pct int) {
			seen = append(seen, pct)
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "File too large")
		assert.NotContains(t, seen, 100)
	})

	t.Run("cancellation aborts without terminal progress", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			<-release
		}))
		defer srv.Close()
		defer close(release)

		ctx, cancel := context.WithCancel(context.Background())
		var seen []int
		client := NewClient(srv.URL + "/api")

		done := make(chan error, 1)
		go func() {
			body := strings.NewReader("content")
			_, err := client.Upload(ctx, UploadRequest{
				Name: "notes.txt",
				Size: body.Size(),
				Body: body,
			}, func(pct int) {
				seen = append(seen, pct)
			})
			done <- err
		}()

		cancel()
		err := <-done
		require.Error(t, err)
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotContains(t, seen, 100)
	})
}
