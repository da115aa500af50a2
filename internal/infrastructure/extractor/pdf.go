package extractor

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

func countPDFPages(path string) (int, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()
	return reader.NumPage(), nil
}
