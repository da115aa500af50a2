package domain

import (
	"errors"
	"fmt"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrCaseNotFound     = errors.New("case not found")
	ErrHearingNotFound  = errors.New("hearing not found")
	ErrBackupNotFound   = errors.New("backup not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrTemporary        = errors.New("temporary failure")

	// Pipeline and collaborator failures.
	ErrExtraction     = errors.New("extraction failed")
	ErrClassification = errors.New("classification failed")
	ErrAuthentication = errors.New("authentication failed")
	ErrSync           = errors.New("sync failed")
	ErrCredential     = errors.New("credential missing or rejected")
	ErrAssistant      = errors.New("assistant unavailable")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}
