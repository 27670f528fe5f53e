package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FileUpload describes a document sent to the file translation endpoint.
type FileUpload struct {
	Name       string
	Content    io.Reader
	SourceLang string
	TargetLang string
}

// TranslateFile uploads a document and streams the translated document into
// w. onProgress, when set, receives 0–50 while uploading and 50–100 while
// downloading; download progress is only reported when the backend sends a
// Content-Length.
func (c *Client) TranslateFile(ctx context.Context, up FileUpload, w io.Writer, onProgress func(int)) (int64, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", up.Name)
	if err != nil {
		return 0, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, up.Content); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", up.Name, err)
	}
	if err := mw.WriteField("source_lang", up.SourceLang); err != nil {
		return 0, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.WriteField("target_lang", up.TargetLang); err != nil {
		return 0, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return 0, fmt.Errorf("failed to build upload: %w", err)
	}

	total := int64(body.Len())
	upload := &progressReader{r: &body, total: total, onRead: func(loaded, total int64) {
		if onProgress != nil {
			onProgress(int(loaded * 50 / total))
		}
	}}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/translate", upload, mw.FormDataContentType())
	if err != nil {
		return 0, err
	}
	req.ContentLength = total
	req.Header.Set("Accept", "*/*")

	resp, err := c.send(req)
	if err != nil {
		return 0, fmt.Errorf("file translation failed: %w", err)
	}
	defer resp.Body.Close()

	var src io.Reader = resp.Body
	if resp.ContentLength > 0 {
		src = &progressReader{r: resp.Body, total: resp.ContentLength, onRead: func(loaded, total int64) {
			if onProgress != nil {
				onProgress(50 + int(loaded*50/total))
			}
		}}
	}

	n, err := io.Copy(w, src)
	if err != nil {
		return n, fmt.Errorf("failed to download translated file: %w", err)
	}
	return n, nil
}

type progressReader struct {
	r      io.Reader
	total  int64
	loaded int64
	onRead func(loaded, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 && p.total > 0 {
		p.loaded += int64(n)
		if p.loaded > p.total {
			p.loaded = p.total
		}
		p.onRead(p.loaded, p.total)
	}
	return n, err
}
