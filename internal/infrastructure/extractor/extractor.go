package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/ocr"
)

const (
	DefaultMaxPages = 3
	MaxPagesCeiling = 5
)

// Recognizer turns one image file into text.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath string) (string, error)
}

type Config struct {
	Pdftoppm string
	DPI      int
	TempDir  string
}

// Extractor dispatches by file kind: PDFs are rasterised page by page and OCRed, images are
// OCRed directly and text files are returned verbatim.
type Extractor struct {
	storage    ports.ObjectStorage
	plain      *plaintext.Extractor
	recognizer Recognizer
	runner     ocr.Runner
	countPages func(path string) (int, error)
	cfg        Config
	logger     *slog.Logger
}

func New(storage ports.ObjectStorage, recognizer Recognizer, runner ocr.Runner, cfg Config, logger *slog.Logger) *Extractor {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if runner == nil {
		runner = ocr.ExecRunner{Logger: logger}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		storage:    storage,
		plain:      plaintext.NewExtractor(storage),
		recognizer: recognizer,
		runner:     runner,
		countPages: countPDFPages,
		cfg:        cfg,
		logger:     logger,
	}
}

func (e *Extractor) Extract(ctx context.Context, file domain.FileRef, maxPages int) (string, error) {
	switch kind := domain.DetectFileKind(file.MimeType, file.Name); kind {
	case domain.FileKindText:
		return e.plain.Extract(ctx, file)
	case domain.FileKindPDF:
		return e.withLocalCopy(ctx, file, ".pdf", func(workDir, path string) (string, error) {
			return e.extractPDF(ctx, workDir, path, maxPages, file.Name)
		})
	case domain.FileKindImage:
		ext := strings.ToLower(filepath.Ext(file.Name))
		if ext == "" {
			ext = ".img"
		}
		return e.withLocalCopy(ctx, file, ext, func(_ string, path string) (string, error) {
			text, err := e.recognizer.Recognize(ctx, path)
			if err != nil {
				return "", domain.WrapError(domain.ErrExtraction, "recognize image", err)
			}
			return strings.TrimSpace(text), nil
		})
	default:
		label := file.MimeType
		if label == "" {
			label = filepath.Ext(file.Name)
		}
		return "", domain.WrapError(domain.ErrExtraction, "extract text", fmt.Errorf("unsupported file type: %s", label))
	}
}

// ClampPages bounds the number of PDF pages sent to OCR.
func ClampPages(maxPages int) int {
	switch {
	case maxPages == 0:
		return DefaultMaxPages
	case maxPages < 1:
		return 1
	case maxPages > MaxPagesCeiling:
		return MaxPagesCeiling
	default:
		return maxPages
	}
}

func (e *Extractor) extractPDF(ctx context.Context, workDir, path string, maxPages int, name string) (string, error) {
	total, err := e.countPages(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read pdf", err)
	}
	limit := min(total, ClampPages(maxPages))

	texts := make([]string, 0, limit)
	failures := 0
	for page := 1; page <= limit; page++ {
		if err := ctx.Err(); err != nil {
			return "", domain.WrapError(domain.ErrExtraction, "extract pdf", err)
		}
		text, err := e.recognizePage(ctx, workDir, path, page)
		if err != nil {
			failures++
			e.logger.Warn("extract.pdf.page_failed", "file", name, "page", page, "error", err)
			continue
		}
		texts = append(texts, text)
	}
	if limit > 0 && failures == limit {
		return "", domain.WrapError(domain.ErrExtraction, "extract pdf", fmt.Errorf("none of %d pages could be recognized", limit))
	}
	e.logger.Debug("extract.pdf.done", "file", name, "pages_total", total, "pages_processed", limit, "pages_failed", failures)
	return strings.Join(texts, "\n"), nil
}

// recognizePage renders a single page and always removes the rendered image.
func (e *Extractor) recognizePage(ctx context.Context, workDir, pdfPath string, page int) (string, error) {
	prefix := filepath.Join(workDir, fmt.Sprintf("page-%d", page))
	image := prefix + ".png"
	defer func() {
		if err := os.Remove(image); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("extract.pdf.cleanup_failed", "path", image, "error", err)
		}
	}()

	// pdftoppm -r <dpi> -png -f <n> -l <n> -singlefile <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm,
		"-r", fmt.Sprintf("%d", e.cfg.DPI),
		"-png",
		"-f", fmt.Sprintf("%d", page),
		"-l", fmt.Sprintf("%d", page),
		"-singlefile",
		pdfPath, prefix,
	)
	if err != nil {
		return "", fmt.Errorf("render page %d: %w: %s", page, err, strings.TrimSpace(string(errb)))
	}
	text, err := e.recognizer.Recognize(ctx, image)
	if err != nil {
		return "", fmt.Errorf("recognize page %d: %w", page, err)
	}
	return strings.TrimSpace(text), nil
}

// withLocalCopy materialises the stored file in a private temp dir removed on return.
func (e *Extractor) withLocalCopy(ctx context.Context, file domain.FileRef, ext string, fn func(workDir, path string) (string, error)) (string, error) {
	workDir, err := os.MkdirTemp(e.cfg.TempDir, "legal-ocr-*")
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "create work dir", err)
	}
	defer func() {
		if err := os.RemoveAll(workDir); err != nil {
			e.logger.Warn("extract.cleanup_failed", "path", workDir, "error", err)
		}
	}()

	src, err := e.storage.Open(ctx, file.StorageKey)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open source document", err)
	}
	defer src.Close()

	path := filepath.Join(workDir, "source"+ext)
	dst, err := os.Create(path)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "stage source document", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return "", domain.WrapError(domain.ErrExtraction, "stage source document", err)
	}
	if err := dst.Close(); err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "stage source document", err)
	}
	return fn(workDir, path)
}
