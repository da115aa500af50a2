package extractor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/storage/localfs"
)

// renderStub emulates pdftoppm -singlefile by writing <prefix>.png.
type renderStub struct {
	mu       sync.Mutex
	pages    []string
	failPage string
}

func (r *renderStub) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var page string
	for i, a := range args {
		if a == "-f" && i+1 < len(args) {
			page = args[i+1]
		}
	}
	r.pages = append(r.pages, page)
	if page == r.failPage {
		return nil, []byte("render error"), errors.New("exit status 1")
	}
	prefix := args[len(args)-1]
	return nil, nil, os.WriteFile(prefix+".png", []byte("png"), 0o600)
}

type recognizerStub struct {
	mu    sync.Mutex
	paths []string
	err   error
}

func (r *recognizerStub) Recognize(_ context.Context, path string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("image missing: %w", err)
	}
	r.paths = append(r.paths, path)
	if r.err != nil {
		return "", r.err
	}
	return "text of " + filepath.Base(path), nil
}

func newExtractorForTest(t *testing.T, pages int, runner *renderStub, recognizer *recognizerStub) (*Extractor, *localfs.Storage, string) {
	t.Helper()
	storage, err := localfs.New(t.TempDir())
	if err != nil {
		t.Fatalf("localfs.New() error = %v", err)
	}
	tmp := t.TempDir()
	ext := New(storage, recognizer, runner, Config{TempDir: tmp}, nil)
	ext.countPages = func(string) (int, error) { return pages, nil }
	return ext, storage, tmp
}

func save(t *testing.T, storage *localfs.Storage, key, body string) {
	t.Helper()
	if err := storage.Save(context.Background(), key, strings.NewReader(body)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestPDFPageCountIsBounded(t *testing.T) {
	cases := []struct {
		total    int
		maxPages int
		want     int
	}{
		{total: 10, maxPages: 0, want: 3},
		{total: 10, maxPages: 9, want: 5},
		{total: 2, maxPages: 5, want: 2},
		{total: 4, maxPages: -3, want: 1},
	}
	for _, tc := range cases {
		runner := &renderStub{}
		recognizer := &recognizerStub{}
		ext, storage, tmp := newExtractorForTest(t, tc.total, runner, recognizer)
		save(t, storage, "doc.pdf", "%PDF-1.4")

		text, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "doc.pdf", MimeType: "application/pdf", Name: "order.pdf"}, tc.maxPages)
		if err != nil {
			t.Fatalf("Extract() error = %v", err)
		}
		if len(runner.pages) != tc.want || len(recognizer.paths) != tc.want {
			t.Fatalf("total=%d max=%d: expected %d pages, rendered %d recognized %d", tc.total, tc.maxPages, tc.want, len(runner.pages), len(recognizer.paths))
		}
		if got := strings.Count(text, "\n") + 1; got != tc.want {
			t.Fatalf("expected %d newline-joined page texts, got %q", tc.want, text)
		}
		entries, _ := os.ReadDir(tmp)
		if len(entries) != 0 {
			t.Fatalf("expected temp dir to be cleaned up, found %d entries", len(entries))
		}
	}
}

func TestPDFSkipsFailedPages(t *testing.T) {
	runner := &renderStub{failPage: "2"}
	recognizer := &recognizerStub{}
	ext, storage, _ := newExtractorForTest(t, 3, runner, recognizer)
	save(t, storage, "doc.pdf", "%PDF-1.4")

	text, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "doc.pdf", MimeType: "application/pdf", Name: "order.pdf"}, 3)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "text of page-1.png\ntext of page-3.png" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestPDFWithEveryPageFailingIsExtractionError(t *testing.T) {
	recognizer := &recognizerStub{err: errors.New("ocr engine down")}
	ext, storage, _ := newExtractorForTest(t, 2, &renderStub{}, recognizer)
	save(t, storage, "doc.pdf", "%PDF-1.4")

	_, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "doc.pdf", MimeType: "application/pdf", Name: "order.pdf"}, 3)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
}

func TestImageIsRecognizedDirectly(t *testing.T) {
	recognizer := &recognizerStub{}
	ext, storage, _ := newExtractorForTest(t, 0, &renderStub{}, recognizer)
	save(t, storage, "scan.jpg", "jpeg bytes")

	text, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "scan.jpg", MimeType: "image/jpeg", Name: "scan.jpg"}, 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "text of source.jpg" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestPlainTextIsReturnedVerbatim(t *testing.T) {
	ext, storage, _ := newExtractorForTest(t, 0, &renderStub{}, &recognizerStub{})
	save(t, storage, "note.txt", "\xEF\xBB\xBF  Vakalatnama filed  \n")

	text, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "note.txt", MimeType: "text/plain", Name: "note.txt"}, 0)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Vakalatnama filed" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestUnsupportedTypeIsExtractionError(t *testing.T) {
	ext, _, _ := newExtractorForTest(t, 0, &renderStub{}, &recognizerStub{})
	_, err := ext.Extract(context.Background(), domain.FileRef{StorageKey: "a.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", Name: "a.docx"}, 0)
	if !domain.IsKind(err, domain.ErrExtraction) {
		t.Fatalf("expected ErrExtraction, got %v", err)
	}
	if !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported type message, got %v", err)
	}
}
