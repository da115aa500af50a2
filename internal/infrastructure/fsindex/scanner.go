package fsindex

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

var relevantExtensions = map[string]bool{
	".pdf": true, ".jpg": true, ".jpeg": true, ".png": true, ".doc": true, ".docx": true, ".txt": true,
}

// Scanner walks a directory tree and lists files that look like legal documents.
type Scanner struct {
	logger *slog.Logger
}

func NewScanner(logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scanner{logger: logger}
}

func (s *Scanner) Scan(ctx context.Context, root string) ([]domain.IndexedFile, error) {
	var files []domain.IndexedFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			s.logger.Warn("fsindex.skip", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || !d.Type().IsRegular() {
			return nil
		}
		mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
		if !IsRelevant(name, mimeType) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			s.logger.Warn("fsindex.stat_failed", "path", path, "error", err)
			return nil
		}
		files = append(files, domain.IndexedFile{
			Path:     path,
			Name:     name,
			Size:     info.Size(),
			MimeType: mimeType,
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrInvalidInput, "scan directory", err)
		}
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

// IsRelevant accepts the document extensions plus any PDF or image MIME type.
func IsRelevant(name, mimeType string) bool {
	if relevantExtensions[strings.ToLower(filepath.Ext(name))] {
		return true
	}
	base := strings.TrimSpace(strings.SplitN(mimeType, ";", 2)[0])
	return base == "application/pdf" || strings.HasPrefix(base, "image/")
}
