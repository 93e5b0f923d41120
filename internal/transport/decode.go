package transport

import (
	"bytes"
	"encoding/json"

	"fileconsole/internal/model"
)

// ListShape tags which of the known response layouts a list payload used.
type ListShape int

const (
	// ShapeEmpty covers null, malformed, or otherwise unrecognized
	// payloads; they decode to an empty result set instead of an error.
	ShapeEmpty ListShape = iota
	// ShapeArray is a bare JSON array of files.
	ShapeArray
	// ShapeEnvelope is an object wrapping the rows in a data, items, or
	// results field, optionally with paging metadata.
	ShapeEnvelope
)

type listEnvelope struct {
	Data    json.RawMessage `json:"data"`
	Items   json.RawMessage `json:"items"`
	Results json.RawMessage `json:"results"`
	Meta    *model.Meta     `json:"meta"`
}

// DecodeFileList decodes the GET /files payload. The API has returned a
// bare array, a wrapped object, and null across revisions, so decoding is
// an explicit shape dispatch with a fallback to an empty result set.
// Returned slices are never nil and every file's tags are normalized.
func DecodeFileList(body []byte) ([]model.StoredFile, int, ListShape) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []model.StoredFile{}, 0, ShapeEmpty
	}

	if trimmed[0] == '[' {
		files, ok := decodeFileArray(trimmed)
		if !ok {
			return []model.StoredFile{}, 0, ShapeEmpty
		}
		return files, len(files), ShapeArray
	}

	var envelope listEnvelope
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return []model.StoredFile{}, 0, ShapeEmpty
	}

	for _, raw := range []json.RawMessage{envelope.Data, envelope.Items, envelope.Results} {
		if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		files, ok := decodeFileArray(raw)
		if !ok {
			continue
		}
		total := len(files)
		if envelope.Meta != nil && envelope.Meta.Total > 0 {
			total = envelope.Meta.Total
		}
		return files, total, ShapeEnvelope
	}

	return []model.StoredFile{}, 0, ShapeEmpty
}

func decodeFileArray(raw []byte) ([]model.StoredFile, bool) {
	var files []model.StoredFile
	if err := json.Unmarshal(raw, &files); err != nil {
		return nil, false
	}
	if files == nil {
		files = []model.StoredFile{}
	}
	for i := range files {
		if files[i].Tags == nil {
			files[i].Tags = model.Tags{}
		}
	}
	return files, true
}

// decodeStoredFile accepts both a bare file object and a success envelope
// around one.
func decodeStoredFile(body []byte) (model.StoredFile, error) {
	var envelope struct {
		Data *model.StoredFile `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		file := *envelope.Data
		if file.Tags == nil {
			file.Tags = model.Tags{}
		}
		return file, nil
	}

	var file model.StoredFile
	if err := json.Unmarshal(body, &file); err != nil {
		return model.StoredFile{}, err
	}
	if file.Tags == nil {
		file.Tags = model.Tags{}
	}
	return file, nil
}

// decodeUploadResponse accepts both a bare upload result and an envelope.
func decodeUploadResponse(body []byte) (model.FileUploadResponse, error) {
	var envelope struct {
		Data *model.FileUploadResponse `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Data != nil {
		out := *envelope.Data
		if out.Tags == nil {
			out.Tags = model.Tags{}
		}
		return out, nil
	}

	var out model.FileUploadResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return model.FileUploadResponse{}, err
	}
	if out.Tags == nil {
		out.Tags = model.Tags{}
	}
	return out, nil
}
