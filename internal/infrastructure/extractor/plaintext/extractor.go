package plaintext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract returns the raw text of a text/plain upload.
func (e *Extractor) Extract(ctx context.Context, file domain.FileRef) (string, error) {
	reader, err := e.storage.Open(ctx, file.StorageKey)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "open source document", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", domain.WrapError(domain.ErrExtraction, "read source document", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	if !utf8.Valid(raw) {
		return "", domain.WrapError(domain.ErrExtraction, "decode text document", fmt.Errorf("%s is not valid UTF-8", file.Name))
	}
	return strings.TrimSpace(string(raw)), nil
}
