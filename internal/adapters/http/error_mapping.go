package httpadapter

import (
	"net/http"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrCredential):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrAuthentication):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrDocumentNotFound),
		domain.IsKind(err, domain.ErrCaseNotFound),
		domain.IsKind(err, domain.ErrHearingNotFound),
		domain.IsKind(err, domain.ErrBackupNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrConflict):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrExtraction), domain.IsKind(err, domain.ErrClassification):
		return http.StatusUnprocessableEntity
	case domain.IsKind(err, domain.ErrSync), domain.IsKind(err, domain.ErrAssistant), domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
