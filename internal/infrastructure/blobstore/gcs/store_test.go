package gcs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"google.golang.org/api/googleapi"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func TestWrapErrorMapsAuthFailures(t *testing.T) {
	err := wrapError("get backup blob", fmt.Errorf("reader: %w", &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}))
	if !domain.IsKind(err, domain.ErrCredential) {
		t.Fatalf("expected ErrCredential, got %v", err)
	}
	err = wrapError("get backup blob", &googleapi.Error{Code: http.StatusServiceUnavailable})
	if !domain.IsKind(err, domain.ErrSync) || domain.IsKind(err, domain.ErrCredential) {
		t.Fatalf("expected ErrSync, got %v", err)
	}
	if !domain.IsKind(wrapError("put", errors.New("eof")), domain.ErrSync) {
		t.Fatalf("expected ErrSync for transport errors")
	}
}
