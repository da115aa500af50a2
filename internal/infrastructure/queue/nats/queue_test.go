package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/nats-io/nats.go"
)

func TestEncodeEventRoutesByStatus(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	subject, payload, err := encodeEvent(DefaultSubject, domain.DocumentEvent{
		DocumentID: "d1",
		Status:     domain.StatusFailed,
		Error:      "unsupported file type: application/zip",
		At:         at,
	})
	if err != nil {
		t.Fatalf("encodeEvent() error = %v", err)
	}
	if subject != "dossier.documents.status.failed" {
		t.Fatalf("unexpected subject %q", subject)
	}
	var decoded domain.DocumentEvent
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if decoded.DocumentID != "d1" || decoded.Status != domain.StatusFailed || !decoded.At.Equal(at) {
		t.Fatalf("unexpected payload %+v", decoded)
	}
}

func TestEncodeEventRequiresDocumentID(t *testing.T) {
	if _, _, err := encodeEvent(DefaultSubject, domain.DocumentEvent{Status: domain.StatusCompleted}); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestWrapPublishErrorNamesEvent(t *testing.T) {
	event := domain.DocumentEvent{DocumentID: "doc-3", Status: domain.StatusCompleted}

	err := wrapPublishError(event, fmt.Errorf("nats publish: %w", nats.ErrConnectionClosed))
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected closed connection to be temporary, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "publish completed event for document doc-3") {
		t.Fatalf("expected event in error, got %q", err)
	}

	err = wrapPublishError(event, errors.New("broker refused"))
	if domain.IsKind(err, domain.ErrTemporary) || !strings.Contains(err.Error(), "doc-3") {
		t.Fatalf("unexpected permanent error %v", err)
	}
	if wrapPublishError(event, nil) != nil {
		t.Fatalf("nil error must stay nil")
	}
}

func TestClassifyPublishErrorSparesBreakerForBadEvents(t *testing.T) {
	cases := []struct {
		name      string
		err       error
		transient bool
		counted   bool
	}{
		{name: "cancelled", err: context.Canceled},
		{name: "oversized event", err: fmt.Errorf("nats publish: %w", nats.ErrMaxPayload)},
		{name: "bad subject", err: nats.ErrBadSubject},
		{name: "no servers", err: nats.ErrNoServers, transient: true, counted: true},
		{name: "reconnecting", err: nats.ErrConnectionReconnecting, transient: true, counted: true},
		{name: "unknown", err: errors.New("boom"), counted: true},
	}
	for _, tc := range cases {
		got := classifyPublishError(tc.err)
		if got.Transient != tc.transient || got.RecordFailure != tc.counted {
			t.Fatalf("%s: unexpected classification %+v", tc.name, got)
		}
	}
}
