package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

type documentUploader interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// IndexerUseCase scans a directory below the configured index root and imports selected files.
type IndexerUseCase struct {
	root     string
	scanner  ports.FileScanner
	uploader documentUploader
}

func NewIndexerUseCase(root string, scanner ports.FileScanner, uploader documentUploader) *IndexerUseCase {
	return &IndexerUseCase{root: root, scanner: scanner, uploader: uploader}
}

func (uc *IndexerUseCase) Scan(ctx context.Context, dir string) ([]domain.IndexedFile, error) {
	path, err := uc.resolve(dir)
	if err != nil {
		return nil, err
	}
	return uc.scanner.Scan(ctx, path)
}

// Import uploads each path as a new PENDING document. It stops at the first failure and returns the
// documents imported so far.
func (uc *IndexerUseCase) Import(ctx context.Context, paths []string) ([]domain.Document, error) {
	if len(paths) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import files", errors.New("no paths selected"))
	}
	imported := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := uc.importOne(ctx, p)
		if err != nil {
			return imported, err
		}
		imported = append(imported, *doc)
	}
	return imported, nil
}

func (uc *IndexerUseCase) importOne(ctx context.Context, p string) (*domain.Document, error) {
	path, err := uc.resolve(p)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import file", err)
	}
	if info.IsDir() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "import file", fmt.Errorf("%s is a directory", p))
	}
	name := filepath.Base(path)
	return uc.uploader.Upload(ctx, name, mime.TypeByExtension(strings.ToLower(filepath.Ext(name))), f)
}

// resolve keeps every path inside the index root.
func (uc *IndexerUseCase) resolve(p string) (string, error) {
	if strings.TrimSpace(uc.root) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve index path", errors.New("directory indexing is disabled"))
	}
	root, err := filepath.Abs(uc.root)
	if err != nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve index path", err)
	}
	target := p
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	target = filepath.Clean(target)
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", domain.WrapError(domain.ErrInvalidInput, "resolve index path", fmt.Errorf("%s is outside the index root", p))
	}
	return target, nil
}
