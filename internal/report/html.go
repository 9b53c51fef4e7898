package report

import (
	"bytes"

	"github.com/selimozcann/StoreHunter/internal/output"
)

// RenderHTML renders page into a byte slice.
func RenderHTML(page output.PageData) ([]byte, error) {
	var buf bytes.Buffer
	if err := output.RenderHTML(&buf, page); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteHTML renders page to path.
func WriteHTML(path string, page output.PageData) (string, error) {
	data, err := RenderHTML(page)
	if err != nil {
		return "", err
	}
	return WriteFile(path, data)
}
