package nats

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

// publishStatusOp names the breaker shared by every document status event.
const publishStatusOp = "nats.publish_document_status"

// classifyPublishError decides how a failed status event counts against the publish breaker.
// A malformed or oversized event is the publisher's own fault and leaves the breaker alone.
func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case errors.Is(err, nats.ErrBadSubject), errors.Is(err, nats.ErrMaxPayload), errors.Is(err, nats.ErrInvalidMsg):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err),
		errors.Is(err, nats.ErrNoServers),
		errors.Is(err, nats.ErrTimeout),
		errors.Is(err, nats.ErrConnectionClosed),
		errors.Is(err, nats.ErrConnectionDraining),
		errors.Is(err, nats.ErrConnectionReconnecting),
		errors.Is(err, nats.ErrDisconnected):
		return resilience.ErrorClassification{Transient: true, RecordFailure: true}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

// wrapPublishError names the event that was lost and marks broker trouble as temporary.
func wrapPublishError(event domain.DocumentEvent, err error) error {
	if err == nil {
		return nil
	}
	op := fmt.Sprintf("publish %s event for document %s", strings.ToLower(string(event.Status)), event.DocumentID)
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Transient {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
