// Package netx builds request bodies that net/http leaves to the caller.
package netx

import (
	"bytes"
	"fmt"
	"mime/multipart"
)

// MultipartFile encodes data as a single-file multipart/form-data body under
// field, returning the body and the Content-Type header (with boundary).
func MultipartFile(field, filename string, data []byte) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), w.FormDataContentType(), nil
}
