package analyzer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const (
	// bypassHeader skips the free-tier ngrok interstitial page.
	bypassHeader = "ngrok-skip-browser-warning"
	bypassValue  = "true"

	fileField = "file"
)

// FileInput is an uploaded source file.
type FileInput struct {
	Name    string
	Content io.Reader
}

// Input is exactly one of Code or File.
type Input struct {
	Code string
	File *FileInput
}

// Text returns an Input carrying pasted source.
func Text(code string) Input { return Input{Code: code} }

// File returns an Input carrying an uploaded file.
func File(name string, r io.Reader) Input { return Input{File: &FileInput{Name: name, Content: r}} }

func (in Input) hasFile() bool { return in.File != nil && in.File.Content != nil }

func (in Input) valid() bool {
	return in.hasFile() != (in.Code != "")
}

// buildBody returns the request headers and body for in.
func buildBody(in Input) (http.Header, []byte, error) {
	headers := http.Header{}
	headers.Set(bypassHeader, bypassValue)

	if in.hasFile() {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		part, err := mw.CreateFormFile(fileField, in.File.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := io.Copy(part, in.File.Content); err != nil {
			return nil, nil, fmt.Errorf("copy file content: %w", err)
		}
		if err := mw.Close(); err != nil {
			return nil, nil, fmt.Errorf("close multipart writer: %w", err)
		}
		// The writer owns the boundary.
		headers.Set("Content-Type", mw.FormDataContentType())
		return headers, buf.Bytes(), nil
	}

	body, err := json.Marshal(map[string]string{"code": in.Code})
	if err != nil {
		return nil, nil, fmt.Errorf("marshal code: %w", err)
	}
	headers.Set("Content-Type", "application/json")
	return headers, body, nil
}
