package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

// DocumentProcessor runs one admitted document through the pipeline.
type DocumentProcessor interface {
	Process(ctx context.Context, documentID string) error
}

// AdmissionPolicy decides whether the scheduler may start new work.
type AdmissionPolicy interface {
	AllowProcessing() bool
}

type pendingSource interface {
	FirstPending() (domain.Document, bool)
}

// Scheduler keeps at most one document in the pipeline. It is woken by the registry's change hook.
type Scheduler struct {
	source    pendingSource
	processor DocumentProcessor
	policy    AdmissionPolicy
	metrics   ports.PipelineMetrics
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inFlight string
	closed   bool
	wg       sync.WaitGroup
}

func NewScheduler(
	source pendingSource,
	processor DocumentProcessor,
	policy AdmissionPolicy,
	metrics ports.PipelineMetrics,
	logger *slog.Logger,
) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		source:    source,
		processor: processor,
		policy:    policy,
		metrics:   metrics,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// OnCollectionChanged admits the first pending document when the slot is free.
// Calls made while a document is in flight are no-ops.
func (s *Scheduler) OnCollectionChanged() {
	s.mu.Lock()
	if s.closed || s.inFlight != "" {
		s.mu.Unlock()
		return
	}
	if s.policy != nil && !s.policy.AllowProcessing() {
		s.mu.Unlock()
		return
	}
	doc, ok := s.source.FirstPending()
	if !ok {
		s.mu.Unlock()
		return
	}
	s.inFlight = doc.ID
	s.wg.Add(1)
	s.mu.Unlock()

	if s.metrics != nil && !doc.UploadedAt.IsZero() {
		s.metrics.ObserveQueueWait(time.Since(doc.UploadedAt))
	}
	s.logger.Info("pipeline.admit", "document_id", doc.ID, "name", doc.OriginalName)
	go s.run(doc.ID)
}

// InFlight returns the id of the document currently owned by the pipeline.
func (s *Scheduler) InFlight() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight, s.inFlight != ""
}

func (s *Scheduler) run(documentID string) {
	defer s.wg.Done()

	if err := s.processor.Process(s.ctx, documentID); err != nil {
		s.logger.Warn("pipeline.failed", "document_id", documentID, "error", err)
	}

	s.mu.Lock()
	s.inFlight = ""
	s.mu.Unlock()

	s.OnCollectionChanged()
}

// Close stops admitting documents and waits for the one in flight. When ctx expires first the
// running document is cancelled.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.cancel()
		return nil
	case <-ctx.Done():
		s.cancel()
		<-done
		return ctx.Err()
	}
}
