package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const (
	pipelineMaxPages       = 3
	defaultExtractTimeout  = 2 * time.Minute
	defaultClassifyTimeout = 60 * time.Second
)

// SettingsProvider exposes the cached user settings.
type SettingsProvider interface {
	Current() domain.Settings
}

type PipelineTimeouts struct {
	Extract  time.Duration
	Classify time.Duration
}

// errDocumentGone stops the pipeline quietly when the document was deleted mid-flight.
var errDocumentGone = errors.New("document removed during processing")

type ProcessDocumentUseCase struct {
	docs       ports.DocumentRepository
	cases      ports.CaseRepository
	extractor  ports.TextExtractor
	classifier ports.MetadataClassifier
	settings   SettingsProvider
	events     ports.EventPublisher
	metrics    ports.PipelineMetrics
	timeouts   PipelineTimeouts
	logger     *slog.Logger
	now        func() time.Time
}

func NewProcessDocumentUseCase(
	docs ports.DocumentRepository,
	cases ports.CaseRepository,
	extractor ports.TextExtractor,
	classifier ports.MetadataClassifier,
	settings SettingsProvider,
	events ports.EventPublisher,
	metrics ports.PipelineMetrics,
	timeouts PipelineTimeouts,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if timeouts.Extract <= 0 {
		timeouts.Extract = defaultExtractTimeout
	}
	if timeouts.Classify <= 0 {
		timeouts.Classify = defaultClassifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		docs:       docs,
		cases:      cases,
		extractor:  extractor,
		classifier: classifier,
		settings:   settings,
		events:     events,
		metrics:    metrics,
		timeouts:   timeouts,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Process moves a PENDING document to COMPLETED or FAILED. A document that is not PENDING is rejected
// with ErrConflict and left untouched.
func (uc *ProcessDocumentUseCase) Process(ctx context.Context, documentID string) error {
	started := uc.now()
	doc, err := uc.markStatus(documentID, domain.StatusOCRProcessing, func(d *domain.Document) error {
		if d.Status != domain.StatusPending {
			return domain.WrapError(domain.ErrConflict, "start processing", fmt.Errorf("document %s is %s", d.ID, d.Status))
		}
		d.Error = ""
		return nil
	})
	if err != nil {
		return err
	}
	if uc.metrics != nil {
		uc.metrics.StartDocument()
	}
	uc.publish(ctx, doc)

	completed, err := uc.processPipeline(ctx, doc)
	switch {
	case errors.Is(err, errDocumentGone):
		uc.logger.Info("pipeline.removed", "document_id", documentID)
		uc.finish("removed", started)
		return nil
	case err != nil:
		failErr := uc.markFailed(ctx, documentID, err)
		if errors.Is(failErr, errDocumentGone) {
			uc.finish("removed", started)
			return nil
		}
		uc.finish(string(domain.StatusFailed), started)
		if failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	uc.publish(ctx, completed)
	uc.finish(string(domain.StatusCompleted), started)
	uc.logger.Info("pipeline.completed",
		"document_id", documentID,
		"case_id", completed.CaseID,
		"name", completed.CurrentName,
	)
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, doc domain.Document) (domain.Document, error) {
	text, err := uc.extractText(ctx, doc)
	if err != nil {
		return domain.Document{}, err
	}

	doc, err = uc.markStatus(doc.ID, domain.StatusAIProcessing, func(d *domain.Document) error {
		d.OCRText = text
		return nil
	})
	if err != nil {
		return domain.Document{}, err
	}
	uc.publish(ctx, doc)

	settings := uc.currentSettings()
	classification, err := uc.classify(ctx, doc, text, settings)
	if err != nil {
		return domain.Document{}, err
	}

	caseID, err := uc.ensureCase(classification.Metadata, settings)
	if err != nil {
		return domain.Document{}, err
	}

	metadata := classification.Metadata
	return uc.markStatus(doc.ID, domain.StatusCompleted, func(d *domain.Document) error {
		d.Metadata = &metadata
		d.CurrentName = classification.SuggestedFilename
		d.CaseID = caseID
		d.Error = ""
		return nil
	})
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc domain.Document) (string, error) {
	extractCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Extract)
	defer cancel()

	text, err := uc.extractor.Extract(extractCtx, doc.FileRef(), pipelineMaxPages)
	if err != nil {
		if errors.Is(extractCtx.Err(), context.DeadlineExceeded) {
			return "", domain.WrapError(domain.ErrExtraction, "extract text", fmt.Errorf("timed out after %s", uc.timeouts.Extract))
		}
		if !domain.IsKind(err, domain.ErrExtraction) {
			return "", domain.WrapError(domain.ErrExtraction, "extract text", err)
		}
		return "", err
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) classify(
	ctx context.Context,
	doc domain.Document,
	text string,
	settings domain.Settings,
) (domain.Classification, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < domain.MinClassifyChars {
		return domain.Classification{}, domain.WrapError(
			domain.ErrClassification,
			"classify document",
			errors.New("extracted text is too short or empty for analysis"),
		)
	}

	classifyCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Classify)
	defer cancel()

	classification, err := uc.classifier.Classify(classifyCtx, domain.ClassifyRequest{
		Text:           domain.TruncateRunes(text, domain.MaxClassifyChars),
		Filename:       doc.OriginalName,
		NamingTemplate: settings.NamingTemplate,
		Strictness:     settings.AIStrictness,
	})
	if err != nil {
		if errors.Is(classifyCtx.Err(), context.DeadlineExceeded) {
			return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", fmt.Errorf("timed out after %s", uc.timeouts.Classify))
		}
		if !domain.IsKind(err, domain.ErrClassification) {
			return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", err)
		}
		return domain.Classification{}, err
	}
	return classification, nil
}

// ensureCase links the document to the case named in its metadata, creating the case when needed.
func (uc *ProcessDocumentUseCase) ensureCase(metadata domain.DocMetadata, settings domain.Settings) (string, error) {
	number := domain.NormalizeCaseNumber(metadata.CaseNumber)
	if number == "" {
		return "", nil
	}
	court := strings.TrimSpace(metadata.Court)
	if court == "" {
		court = settings.DefaultCourt
	}

	c, created, err := uc.cases.EnsureCase(number, func(id string) domain.Case {
		return domain.NewFiledCase(id, number, court)
	})
	if err != nil {
		return "", fmt.Errorf("ensure case %q: %w", number, err)
	}
	if created {
		uc.logger.Info("pipeline.case_created", "case_id", c.ID, "case_number", c.CaseNumber, "court", c.CourtName)
	}
	return c.ID, nil
}

func (uc *ProcessDocumentUseCase) markStatus(
	documentID string,
	status domain.ProcessingStatus,
	mutate func(*domain.Document) error,
) (domain.Document, error) {
	doc, err := uc.docs.UpdateDocument(documentID, func(d *domain.Document) error {
		if mutate != nil {
			if err := mutate(d); err != nil {
				return err
			}
		}
		d.Status = status
		d.UpdatedAt = uc.now()
		return nil
	})
	if domain.IsKind(err, domain.ErrDocumentNotFound) && status != domain.StatusOCRProcessing {
		return domain.Document{}, errDocumentGone
	}
	return doc, err
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	doc, err := uc.markStatus(documentID, domain.StatusFailed, func(d *domain.Document) error {
		d.Error = processErr.Error()
		return nil
	})
	if err != nil {
		return err
	}
	uc.publish(ctx, doc)
	return nil
}

func (uc *ProcessDocumentUseCase) currentSettings() domain.Settings {
	if uc.settings == nil {
		return domain.DefaultSettings()
	}
	return uc.settings.Current()
}

// publish announces a status transition. Delivery failures are logged and never fail the pipeline.
func (uc *ProcessDocumentUseCase) publish(ctx context.Context, doc domain.Document) {
	if uc.events == nil || !uc.currentSettings().NotificationsEnabled {
		return
	}
	event := domain.DocumentEvent{
		DocumentID: doc.ID,
		Status:     doc.Status,
		CaseID:     doc.CaseID,
		Error:      doc.Error,
		At:         doc.UpdatedAt,
	}
	if err := uc.events.PublishDocumentStatus(ctx, event); err != nil {
		uc.logger.Warn("pipeline.publish_failed", "document_id", doc.ID, "status", doc.Status, "error", err)
	}
}

func (uc *ProcessDocumentUseCase) finish(status string, started time.Time) {
	if uc.metrics != nil {
		uc.metrics.FinishDocument(status, uc.now().Sub(started))
	}
}
