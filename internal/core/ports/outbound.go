package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// ObjectStorage stores original uploaded files.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// TextExtractor turns a stored file into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, file domain.FileRef, maxPages int) (string, error)
}

// MetadataClassifier derives legal metadata and a filename from extracted text.
type MetadataClassifier interface {
	Classify(ctx context.Context, req domain.ClassifyRequest) (domain.Classification, error)
}

// CauseListParser extracts listed matters from cause-list text.
type CauseListParser interface {
	ParseCauseList(ctx context.Context, text string) ([]domain.CauseListEntry, error)
}

// CaseStatusLookup queries a remote source for the current status of a case.
type CaseStatusLookup interface {
	LookupCaseStatus(ctx context.Context, c domain.Case) (domain.CaseStatusReport, error)
}

// LegalAssistant converses about the workspace and researches legal questions with web search.
type LegalAssistant interface {
	Chat(ctx context.Context, briefs []domain.DocumentBrief, history []domain.ChatMessage, message string) (string, error)
	Research(ctx context.Context, query string) (domain.ResearchFindings, error)
}

// CredentialHolder is implemented by AI clients that need an API key at runtime.
type CredentialHolder interface {
	Configure(apiKey string)
	HasCredential() bool
}

// BlobStore keeps a single named blob per account.
type BlobStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, bool, error)
}

// SnapshotCipher seals backup payloads with a passphrase.
type SnapshotCipher interface {
	Encrypt(plaintext []byte, passphrase string) ([]byte, error)
	Decrypt(blob []byte, passphrase string) ([]byte, error)
}

// EventPublisher announces document status transitions.
type EventPublisher interface {
	PublishDocumentStatus(ctx context.Context, event domain.DocumentEvent) error
}

type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

type CredentialStore interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, apiKey string) error
	Clear(ctx context.Context) error
}

type CalendarEncoder interface {
	EncodeHearing(h domain.Hearing, c domain.Case) ([]byte, error)
	Filename(h domain.Hearing) string
}

type RegisterExporter interface {
	WriteRegister(w io.Writer, cases []domain.Case, hearings []domain.Hearing) error
}

type FileScanner interface {
	Scan(ctx context.Context, root string) ([]domain.IndexedFile, error)
}

// PipelineMetrics records processing outcomes.
type PipelineMetrics interface {
	StartDocument()
	FinishDocument(status string, duration time.Duration)
	ObserveQueueWait(wait time.Duration)
}

// PipelineTrigger is the wake signal of the processing scheduler.
type PipelineTrigger interface {
	OnCollectionChanged()
}

// DocumentRepository is the document half of the in-memory registry.
type DocumentRepository interface {
	AddDocument(doc domain.Document) (domain.Document, error)
	GetDocument(id string) (domain.Document, error)
	ListDocuments(caseID string) []domain.Document
	UpdateDocument(id string, fn func(*domain.Document) error) (domain.Document, error)
	DeleteDocument(id string) (domain.Document, error)
	FirstPending() (domain.Document, bool)
	Stats() domain.ProcessingStats
}

// CaseRepository holds cases and hearings keyed by the normalized case number.
type CaseRepository interface {
	CreateCase(c domain.Case) (domain.Case, error)
	UpdateCase(id string, c domain.Case) (domain.Case, error)
	GetCase(id string) (domain.Case, error)
	FindCaseByNumber(caseNumber string) (domain.Case, bool)
	ListCases() []domain.Case
	EnsureCase(caseNumber string, build func(id string) domain.Case) (domain.Case, bool, error)
	MergeCaseSync(id string, patch domain.CaseSyncPatch, now time.Time) (domain.Case, error)
	AdvanceHearingDate(id, hearingDate string) (domain.Case, error)
	AddHearings(hearings []domain.Hearing) ([]domain.Hearing, error)
	GetHearing(id string) (domain.Hearing, error)
	ListHearings(caseID string) []domain.Hearing
}

type SnapshotRepository interface {
	Snapshot(now time.Time) domain.Snapshot
	Restore(snap domain.Snapshot) error
}
