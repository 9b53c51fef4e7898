package report_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/selimozcann/StoreHunter/internal/model"
	"github.com/selimozcann/StoreHunter/internal/output"
	"github.com/selimozcann/StoreHunter/internal/report"
)

var stamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func sampleDocument() report.Document {
	r := model.NewResult(model.DeviceProfile{Name: "Pixel", Platform: model.PlatformAndroid})
	r.RedirectChain = []string{"https://lnkd.in/x", "https://play.google.com/store/apps/details?id=a&hl=en"}
	r.FinalURL = r.RedirectChain[1]
	r.Settle(model.StatusPass, true, "")
	return report.NewDocument("https://lnkd.in/x?a=1&b=2", []model.TestResult{r}, model.Summary{Total: 1, Passed: 1, SuccessRate: 100}, stamp)
}

func TestEncode(t *testing.T) {
	data, err := report.Encode(sampleDocument())
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	text := string(data)
	if !strings.Contains(text, `"timestamp": "2024-01-02T03:04:05.000Z"`) {
		t.Fatalf("unexpected timestamp in %s", text)
	}
	if !strings.Contains(text, "\n  \"testedUrl\": \"https://lnkd.in/x?a=1&b=2\"") {
		t.Fatalf("expected two-space indent and unescaped ampersands:\n%s", text)
	}
	if strings.Contains(text, `\u0026`) {
		t.Fatalf("HTML escaping must be disabled")
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"timestamp", "testedUrl", "summary", "results"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q", key)
		}
	}
}

func TestNewDocumentEmptyResults(t *testing.T) {
	data, err := report.Encode(report.NewDocument("https://x", nil, model.Summary{}, stamp))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.Contains(string(data), `"results": []`) {
		t.Fatalf("expected empty results array, got %s", data)
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "nested", "out", "results.json")
	abs, err := report.WriteFile(target, []byte("{}"))
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := os.ReadFile(abs)
	if err != nil || string(got) != "{}" {
		t.Fatalf("unexpected file content %q (%v)", got, err)
	}
}

func TestWriteHTML(t *testing.T) {
	doc := sampleDocument()
	page := output.BuildPage(doc.TestedURL, doc.Results, doc.Summary, nil, stamp)
	abs, err := report.WriteHTML(filepath.Join(t.TempDir(), "r.html"), page)
	if err != nil {
		t.Fatalf("write html: %v", err)
	}
	got, _ := os.ReadFile(abs)
	if !strings.Contains(string(got), "StoreHunter Report") {
		t.Fatalf("unexpected html")
	}
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.input = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3UploadDocument(t *testing.T) {
	fake := &fakeS3{}
	up, err := report.NewS3Uploader(fake, "bucket", "reports/", nil)
	if err != nil {
		t.Fatalf("new uploader: %v", err)
	}
	loc, err := up.UploadDocument(context.Background(), sampleDocument(), stamp)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if loc != "s3://bucket/reports/storehunter-20240102T030405Z.json" {
		t.Fatalf("unexpected location %s", loc)
	}
	if *fake.input.Bucket != "bucket" || *fake.input.ContentType != "application/json" {
		t.Fatalf("unexpected input %+v", fake.input)
	}
	if *fake.input.ContentLength != int64(len(fake.body)) || !strings.Contains(string(fake.body), "testedUrl") {
		t.Fatalf("unexpected body")
	}
}

func TestS3UploadErrors(t *testing.T) {
	if _, err := report.NewS3Uploader(&fakeS3{}, "", "", nil); err == nil {
		t.Fatalf("expected missing bucket error")
	}
	boom := errors.New("denied")
	up, _ := report.NewS3Uploader(&fakeS3{err: boom}, "b", "", nil)
	if _, err := up.Upload(context.Background(), "k", "text/html", []byte("x")); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
