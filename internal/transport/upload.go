package transport

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"fileconsole/internal/model"
)

// UploadRequest describes one file to send. Size drives the progress
// percentage; a zero or unknown size disables intermediate progress and
// the callback only fires with 100 on completion.
type UploadRequest struct {
	Name string
	Size int64
	Body io.Reader
	Tags []string
}

// Upload sends one file as a multipart POST ("file" part plus one "tags"
// part per tag) and reports progress through onProgress with values in
// 0..100. The terminal 100 is only emitted on success. Cancelling ctx
// aborts the request; no progress callbacks fire after cancellation.
func (c *Client) Upload(ctx context.Context, req UploadRequest, onProgress func(percent int)) (model.FileUploadResponse, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := writeMultipart(ctx, mw, req, onProgress)
		if closeErr := mw.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	httpReq, err := c.newRequest(ctx, http.MethodPost, c.filesURL(), pr)
	if err != nil {
		return model.FileUploadResponse{}, err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return model.FileUploadResponse{}, fmt.Errorf("upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return model.FileUploadResponse{}, readError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.FileUploadResponse{}, fmt.Errorf("read upload response: %w", err)
	}

	uploaded, err := decodeUploadResponse(body)
	if err != nil {
		return model.FileUploadResponse{}, fmt.Errorf("decode upload response: %w", err)
	}

	if onProgress != nil && ctx.Err() == nil {
		onProgress(100)
	}
	return uploaded, nil
}

func writeMultipart(ctx context.Context, mw *multipart.Writer, req UploadRequest, onProgress func(int)) error {
	for _, tag := range req.Tags {
		if err := mw.WriteField("tags", tag); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", req.Name)
	if err != nil {
		return err
	}

	src := &progressReader{ctx: ctx, r: req.Body, total: req.Size, emit: onProgress, lastPct: -1}
	if _, err := io.Copy(part, src); err != nil {
		return err
	}
	return nil
}

// progressReader emits a percentage as the wrapped reader is consumed.
// Emission stops as soon as the context is cancelled, and 100 is withheld
// here so the caller can reserve it for a confirmed server response.
type progressReader struct {
	ctx     context.Context
	r       io.Reader
	total   int64
	read    int64
	lastPct int
	emit    func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.emit != nil && p.total > 0 && p.ctx.Err() == nil {
			pct := int(p.read * 100 / p.total)
			if pct > 99 {
				pct = 99
			}
			if pct != p.lastPct {
				p.lastPct = pct
				p.emit(pct)
			}
		}
	}
	return n, err
}
