package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

// IngestDocumentUseCase stores uploads and registers them as PENDING. The registry change hook
// wakes the pipeline.
type IngestDocumentUseCase struct {
	docs    ports.DocumentRepository
	storage ports.ObjectStorage
	now     func() time.Time
}

func NewIngestDocumentUseCase(docs ports.DocumentRepository, storage ports.ObjectStorage) *IngestDocumentUseCase {
	return &IngestDocumentUseCase{
		docs:    docs,
		storage: storage,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (uc *IngestDocumentUseCase) Upload(
	ctx context.Context,
	filename, mimeType string,
	body io.Reader,
) (*domain.Document, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "upload document", errors.New("filename is required"))
	}
	id := uuid.NewString()
	storageKey := fmt.Sprintf("%s_%s", id, sanitizeFilename(filename))
	now := uc.now()

	counter := &countingReader{r: body}
	if err := uc.storage.Save(ctx, storageKey, counter); err != nil {
		return nil, fmt.Errorf("save to object storage: %w", err)
	}

	doc, err := uc.docs.AddDocument(domain.Document{
		ID:           id,
		StorageKey:   storageKey,
		MimeType:     mimeType,
		OriginalName: filename,
		CurrentName:  filename,
		Size:         counter.n,
		UploadedAt:   now,
		Status:       domain.StatusPending,
		UpdatedAt:    now,
	})
	if err != nil {
		_ = uc.storage.Delete(ctx, storageKey)
		return nil, fmt.Errorf("register document: %w", err)
	}
	return &doc, nil
}

// Resubmit resets a FAILED document to PENDING with its error cleared.
func (uc *IngestDocumentUseCase) Resubmit(_ context.Context, id string) (*domain.Document, error) {
	doc, err := uc.docs.UpdateDocument(id, func(d *domain.Document) error {
		if d.Status != domain.StatusFailed {
			return domain.WrapError(domain.ErrConflict, "resubmit document", fmt.Errorf("document %s is %s, only FAILED documents can be resubmitted", d.ID, d.Status))
		}
		d.Status = domain.StatusPending
		d.Error = ""
		d.UpdatedAt = uc.now()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (uc *IngestDocumentUseCase) Delete(ctx context.Context, id string) error {
	doc, err := uc.docs.DeleteDocument(id)
	if err != nil {
		return err
	}
	if err := uc.storage.Delete(ctx, doc.StorageKey); err != nil {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

func (uc *IngestDocumentUseCase) Get(_ context.Context, id string) (*domain.Document, error) {
	doc, err := uc.docs.GetDocument(id)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (uc *IngestDocumentUseCase) List(_ context.Context, caseID string) ([]domain.Document, error) {
	return uc.docs.ListDocuments(caseID), nil
}

func (uc *IngestDocumentUseCase) Stats(context.Context) (domain.ProcessingStats, error) {
	return uc.docs.Stats(), nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	base = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r
		case r >= 'A' && r <= 'Z':
			return r
		case r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
	if base == "" || base == "." || base == ".." {
		return "document.bin"
	}
	return base
}
