package server

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"fileconsole/internal/model"
	"fileconsole/internal/server/middleware"
	"fileconsole/internal/server/store"
	"fileconsole/internal/util"
	"fileconsole/pkg/apierror"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

type FilesHandler struct {
	store         store.Store
	maxUploadSize int64
}

func NewFilesHandler(s store.Store, maxUploadSize int64) *FilesHandler {
	return &FilesHandler{store: s, maxUploadSize: maxUploadSize}
}

// List serves one filtered page wrapped in the success envelope, with
// paging metadata the client derives total pages from.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}

	files, total, err := h.store.List(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}

	totalPages := (total + query.PageSize - 1) / query.PageSize
	writeSuccess(w, http.StatusOK, files, &model.Meta{
		Page:       query.Page,
		Limit:      query.PageSize,
		Total:      total,
		TotalPages: totalPages,
	})
}

func parseListQuery(r *http.Request) (store.ListQuery, error) {
	values := r.URL.Query()

	query := store.ListQuery{
		Name:        strings.TrimSpace(values.Get("name")),
		Tag:         strings.TrimSpace(values.Get("tag")),
		ContentType: strings.TrimSpace(values.Get("contentType")),
		Page:        1,
		PageSize:    defaultPageSize,
	}

	if raw := strings.TrimSpace(values.Get("pageNumber")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.ListQuery{}, apierror.New("BAD_REQUEST", "pageNumber must be a positive integer", raw, http.StatusBadRequest)
		}
		query.Page = n
	}
	if raw := strings.TrimSpace(values.Get("pageSize")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return store.ListQuery{}, apierror.New("BAD_REQUEST", "pageSize must be a positive integer", raw, http.StatusBadRequest)
		}
		if n > maxPageSize {
			n = maxPageSize
		}
		query.PageSize = n
	}

	if raw := strings.TrimSpace(values.Get("startDate")); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return store.ListQuery{}, apierror.New("BAD_REQUEST", "startDate must be YYYY-MM-DD", raw, http.StatusBadRequest)
		}
		query.StartDate = day
	}
	if raw := strings.TrimSpace(values.Get("endDate")); raw != "" {
		day, err := time.ParseInLocation("2006-01-02", raw, time.Local)
		if err != nil {
			return store.ListQuery{}, apierror.New("BAD_REQUEST", "endDate must be YYYY-MM-DD", raw, http.StatusBadRequest)
		}
		// Inclusive through the end of the day.
		query.EndDate = day.Add(24*time.Hour - time.Millisecond)
	}

	return query, nil
}

func (h *FilesHandler) Get(w http.ResponseWriter, r *http.Request) {
	file, err := h.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, file, nil)
}

func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	file, content, err := h.activeContent(r)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.OriginalName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	_, _ = w.Write(content)
}

// Preview serves inline content for images and PDFs. Images larger than
// the preview bound are re-encoded as a scaled JPEG; everything else
// previewable streams raw.
func (h *FilesHandler) Preview(w http.ResponseWriter, r *http.Request) {
	file, content, err := h.activeContent(r)
	if err != nil {
		writeError(w, err)
		return
	}

	isImage := strings.HasPrefix(file.ContentType, "image/")
	isPDF := strings.Contains(file.ContentType, "pdf")
	if !isImage && !isPDF {
		writeError(w, apierror.New("UNSUPPORTED_TYPE", "only images and PDFs are previewable", file.ContentType, http.StatusUnsupportedMediaType))
		return
	}

	contentType := file.ContentType
	if isImage {
		if scaled, scaledType, scaleErr := scalePreview(content); scaleErr == nil {
			content = scaled
			contentType = scaledType
		}
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.OriginalName}))
	w.Header().Set("Content-Length", strconv.Itoa(len(content)))
	_, _ = w.Write(content)
}

// activeContent loads content for download/preview, hiding soft-deleted
// files the same way listings do.
func (h *FilesHandler) activeContent(r *http.Request) (model.StoredFile, []byte, error) {
	file, content, err := h.store.Content(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		return model.StoredFile{}, nil, err
	}
	if file.Deleted() {
		return model.StoredFile{}, nil, model.ErrFileNotFound
	}
	return file, content, nil
}

// Upload accepts one multipart file plus repeated tags fields and stores
// it with server-assigned identity, checksum, and sniffed content type.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	reader, err := r.MultipartReader()
	if err != nil {
		writeError(w, apierror.New("BAD_REQUEST", "invalid multipart body", "", http.StatusBadRequest))
		return
	}

	var (
		tags     = []string{}
		content  []byte
		filename string
		partType string
		gotFile  bool
	)

	for {
		part, nextErr := reader.NextPart()
		if nextErr == io.EOF {
			break
		}
		if nextErr != nil {
			if isPayloadTooLarge(nextErr) {
				writeError(w, model.ErrFileTooLarge)
				return
			}
			writeError(w, apierror.New("BAD_REQUEST", "invalid multipart stream", nextErr.Error(), http.StatusBadRequest))
			return
		}

		switch part.FormName() {
		case "tags":
			value, _ := io.ReadAll(part)
			if tag := strings.TrimSpace(string(value)); tag != "" {
				tags = append(tags, tag)
			}
		case "file":
			if strings.TrimSpace(part.FileName()) == "" {
				_ = part.Close()
				continue
			}
			data, readErr := io.ReadAll(part)
			if readErr != nil {
				_ = part.Close()
				if isPayloadTooLarge(readErr) {
					writeError(w, model.ErrFileTooLarge)
					return
				}
				writeError(w, apierror.New("BAD_REQUEST", "failed to read file part", readErr.Error(), http.StatusBadRequest))
				return
			}
			content = data
			filename = util.SanitizeFilename(part.FileName())
			partType = part.Header.Get("Content-Type")
			gotFile = true
		}
		_ = part.Close()
	}

	if !gotFile {
		writeError(w, apierror.New("BAD_REQUEST", "multipart field 'file' is required", "", http.StatusBadRequest))
		return
	}

	checksum := sha256.Sum256(content)
	version := 1
	now := time.Now().UTC()

	file := model.StoredFile{
		ID:           uuid.NewString(),
		Key:          uuid.NewString(),
		OriginalName: filename,
		SizeBytes:    int64(len(content)),
		ContentType:  detectContentType(content, partType),
		Checksum:     hex.EncodeToString(checksum[:]),
		Tags:         tags,
		CreatedAtUTC: now,
		Version:      &version,
	}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		file.CreatedByUserID = user.ID
	}

	if err := h.store.Create(r.Context(), file, content); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, model.FileUploadResponse{
		ID:           file.ID,
		Key:          file.Key,
		OriginalName: file.OriginalName,
		SizeBytes:    file.SizeBytes,
		ContentType:  file.ContentType,
		Checksum:     file.Checksum,
		Tags:         file.Tags,
		CreatedAtUTC: file.CreatedAtUTC,
		Version:      file.Version,
	}, nil)
}

func (h *FilesHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.SoftDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *FilesHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.store.HardDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func detectContentType(content []byte, declared string) string {
	sniffed := http.DetectContentType(content)
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	declared = strings.TrimSpace(declared)
	if declared != "" {
		return declared
	}
	return sniffed
}

func isPayloadTooLarge(err error) bool {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "request body too large")
}
