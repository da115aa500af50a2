package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

// DocumentService is the inbound contract for document intake and inspection.
type DocumentService interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
	Resubmit(ctx context.Context, id string) (*domain.Document, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, caseID string) ([]domain.Document, error)
	Stats(ctx context.Context) (domain.ProcessingStats, error)
}

// CaseService is the inbound contract for the case and hearing registry.
type CaseService interface {
	Create(ctx context.Context, c domain.Case) (*domain.Case, error)
	Update(ctx context.Context, id string, c domain.Case) (*domain.Case, error)
	Get(ctx context.Context, id string) (*domain.Case, error)
	List(ctx context.Context) ([]domain.Case, error)
	Hearings(ctx context.Context, caseID string) ([]domain.Hearing, error)
	HearingCalendar(ctx context.Context, hearingID string) (string, []byte, error)
	ExportRegister(ctx context.Context, w io.Writer) error
}

// CaseSyncService previews and confirms remote case status.
type CaseSyncService interface {
	Preview(ctx context.Context, caseID string) (domain.CaseStatusReport, error)
	Confirm(ctx context.Context, caseID string, report domain.CaseStatusReport) (*domain.Case, error)
}

type CauseListImporter interface {
	Import(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.CauseListImport, error)
}

// BackupService moves the encrypted registry snapshot to and from the blob store.
type BackupService interface {
	Push(ctx context.Context, passphrase string) (*domain.BackupReceipt, error)
	Pull(ctx context.Context, passphrase string) (*domain.BackupReceipt, error)
}

type SettingsService interface {
	Get(ctx context.Context) (domain.Settings, error)
	Update(ctx context.Context, settings domain.Settings) (domain.Settings, error)
	ConfigureCredential(ctx context.Context, apiKey string) error
	ClearCredential(ctx context.Context) error
	CredentialConfigured(ctx context.Context) bool
}

// AssistantService answers chat turns over processed documents and runs legal research.
type AssistantService interface {
	Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error)
	Research(ctx context.Context, query string) (*domain.ResearchMemo, error)
}

// CloudSession holds the bearer token granted by the storage provider's consent flow.
type CloudSession interface {
	Connect(accessToken string, expiresIn time.Duration) error
	Disconnect()
	Connected() bool
}

type DirectoryIndexer interface {
	Scan(ctx context.Context, dir string) ([]domain.IndexedFile, error)
	Import(ctx context.Context, paths []string) ([]domain.Document, error)
}
