package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const DefaultSubject = "dossier.documents.status"

// Publisher announces document status transitions on a NATS subject. Each event goes to
// <subject>.<status> so consumers can subscribe to a single outcome.
type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func NewPublisher(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}

	conn, err := nats.Connect(
		url,
		nats.Name("legal-dossier"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.FlushTimeout(5 * time.Second)
		p.conn.Close()
	}
}

func (p *Publisher) PublishDocumentStatus(ctx context.Context, event domain.DocumentEvent) error {
	subject, payload, err := encodeEvent(p.subject, event)
	if err != nil {
		return err
	}
	call := func(_ context.Context) error {
		if err := p.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, publishStatusOp, call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	return wrapPublishError(event, err)
}

func encodeEvent(base string, event domain.DocumentEvent) (string, []byte, error) {
	if event.DocumentID == "" {
		return "", nil, domain.WrapError(domain.ErrInvalidInput, "encode document event", fmt.Errorf("document id is required"))
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return "", nil, fmt.Errorf("marshal document event: %w", err)
	}
	return base + "." + strings.ToLower(string(event.Status)), payload, nil
}
