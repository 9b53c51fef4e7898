// Package report persists batch results as JSON and HTML documents, locally
// or in S3.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/selimozcann/StoreHunter/internal/model"
)

// Document is the persisted form of one batch.
type Document struct {
	Timestamp string             `json:"timestamp"`
	TestedURL string             `json:"testedUrl"`
	Summary   model.Summary      `json:"summary"`
	Results   []model.TestResult `json:"results"`
}

// NewDocument stamps a batch with at in UTC.
func NewDocument(url string, results []model.TestResult, summary model.Summary, at time.Time) Document {
	if results == nil {
		results = []model.TestResult{}
	}
	return Document{
		Timestamp: at.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		TestedURL: url,
		Summary:   summary,
		Results:   results,
	}
}

// Encode renders doc indented by two spaces without HTML escaping, so URLs
// keep their & characters.
func Encode(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return buf.Bytes(), nil
}
