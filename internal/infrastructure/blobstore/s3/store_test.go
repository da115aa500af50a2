package s3

import (
	"errors"
	"net/http"
	"testing"

	"github.com/minio/minio-go/v7"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}) {
		t.Fatalf("NoSuchKey must be a miss")
	}
	if isNotFound(minio.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}) {
		t.Fatalf("server error must not be a miss")
	}
	if isNotFound(errors.New("connection refused")) {
		t.Fatalf("transport error must not be a miss")
	}
}

func TestWrapErrorClassifiesAccessProblems(t *testing.T) {
	denied := wrapError("put backup blob", minio.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden})
	if !domain.IsKind(denied, domain.ErrCredential) {
		t.Fatalf("expected ErrCredential, got %v", denied)
	}
	badKey := wrapError("put backup blob", minio.ErrorResponse{Code: "InvalidAccessKeyId", StatusCode: http.StatusBadRequest})
	if !domain.IsKind(badKey, domain.ErrCredential) {
		t.Fatalf("expected ErrCredential, got %v", badKey)
	}
	other := wrapError("put backup blob", errors.New("dial tcp: timeout"))
	if !domain.IsKind(other, domain.ErrSync) || domain.IsKind(other, domain.ErrCredential) {
		t.Fatalf("expected ErrSync only, got %v", other)
	}
}
