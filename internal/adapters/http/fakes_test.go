package httpadapter

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

type documentsFake struct {
	uploaded []string
	err      error
	doc      domain.Document
}

func (f *documentsFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.uploaded = append(f.uploaded, filename)
	return &domain.Document{
		ID:           "doc-" + filename,
		OriginalName: filename,
		CurrentName:  filename,
		MimeType:     mimeType,
		Size:         int64(len(raw)),
		Status:       domain.StatusPending,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

func (f *documentsFake) Resubmit(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{ID: id, Status: domain.StatusPending}, nil
}

func (f *documentsFake) Delete(context.Context, string) error { return f.err }

func (f *documentsFake) Get(_ context.Context, id string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	doc := f.doc
	doc.ID = id
	return &doc, nil
}

func (f *documentsFake) List(_ context.Context, caseID string) ([]domain.Document, error) {
	return []domain.Document{{ID: "d1", CaseID: caseID}}, f.err
}

func (f *documentsFake) Stats(context.Context) (domain.ProcessingStats, error) {
	return domain.ProcessingStats{Total: 1, Pending: 1}, f.err
}

type casesFake struct {
	err     error
	created domain.Case
	export  []byte
}

func (f *casesFake) Create(_ context.Context, c domain.Case) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = "case-1"
	f.created = c
	return &c, nil
}

func (f *casesFake) Update(_ context.Context, id string, c domain.Case) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	c.ID = id
	return &c, nil
}

func (f *casesFake) Get(_ context.Context, id string) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Case{ID: id, CaseNumber: "CS 1-2024"}, nil
}

func (f *casesFake) List(context.Context) ([]domain.Case, error) {
	return []domain.Case{{ID: "case-1"}}, f.err
}

func (f *casesFake) Hearings(context.Context, string) ([]domain.Hearing, error) {
	return []domain.Hearing{{ID: "h1", HearingDate: "2024-07-15"}}, f.err
}

func (f *casesFake) HearingCalendar(_ context.Context, id string) (string, []byte, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return "hearing_2024-07-15.ics", []byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"), nil
}

func (f *casesFake) ExportRegister(_ context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := w.Write(f.export)
	return err
}

type syncFake struct {
	err       error
	confirmed domain.CaseStatusReport
}

func (f *syncFake) Preview(context.Context, string) (domain.CaseStatusReport, error) {
	return domain.CaseStatusReport{Found: true, Stage: "Arguments"}, f.err
}

func (f *syncFake) Confirm(_ context.Context, id string, report domain.CaseStatusReport) (*domain.Case, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.confirmed = report
	return &domain.Case{ID: id, CurrentStage: report.Stage}, nil
}

type causeListFake struct {
	err error
}

func (f *causeListFake) Import(context.Context, string, string, io.Reader) (*domain.CauseListImport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.CauseListImport{Entries: 2, CasesCreated: 1, Hearings: []domain.Hearing{{ID: "h1"}, {ID: "h2"}}}, nil
}

type backupFake struct {
	err        error
	passphrase string
}

func (f *backupFake) Push(_ context.Context, passphrase string) (*domain.BackupReceipt, error) {
	f.passphrase = passphrase
	if f.err != nil {
		return nil, f.err
	}
	return &domain.BackupReceipt{Name: "legal_dossier_backup.enc", Bytes: 42}, nil
}

func (f *backupFake) Pull(_ context.Context, passphrase string) (*domain.BackupReceipt, error) {
	f.passphrase = passphrase
	if f.err != nil {
		return nil, f.err
	}
	return &domain.BackupReceipt{Name: "legal_dossier_backup.enc", Cases: 1}, nil
}

type settingsServiceFake struct {
	settings domain.Settings
	apiKey   string
}

func (f *settingsServiceFake) Get(context.Context) (domain.Settings, error) { return f.settings, nil }

func (f *settingsServiceFake) Update(_ context.Context, s domain.Settings) (domain.Settings, error) {
	if err := s.Validate(); err != nil {
		return domain.Settings{}, err
	}
	f.settings = s
	return s, nil
}

func (f *settingsServiceFake) ConfigureCredential(_ context.Context, apiKey string) error {
	f.apiKey = apiKey
	return nil
}

func (f *settingsServiceFake) ClearCredential(context.Context) error {
	f.apiKey = ""
	return nil
}

func (f *settingsServiceFake) CredentialConfigured(context.Context) bool { return f.apiKey != "" }

type cloudFake struct {
	token string
}

func (f *cloudFake) Connect(token string, _ time.Duration) error {
	f.token = token
	return nil
}

func (f *cloudFake) Disconnect()     { f.token = "" }
func (f *cloudFake) Connected() bool { return f.token != "" }

type indexerFake struct {
	err error
}

func (f *indexerFake) Scan(_ context.Context, dir string) ([]domain.IndexedFile, error) {
	return []domain.IndexedFile{{Path: dir + "/a.pdf", Name: "a.pdf"}}, f.err
}

func (f *indexerFake) Import(_ context.Context, paths []string) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(paths))
	for _, p := range paths {
		out = append(out, domain.Document{ID: p, Status: domain.StatusPending})
	}
	return out, f.err
}

type assistantServiceFake struct {
	err   error
	chat  domain.ChatRequest
	query string
}

func (f *assistantServiceFake) Chat(_ context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	f.chat = req
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ChatReply{Answer: "Listed on 15 April.", ContextDocuments: 3}, nil
}

func (f *assistantServiceFake) Research(_ context.Context, query string) (*domain.ResearchMemo, error) {
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return &domain.ResearchMemo{
		Query:   query,
		Memo:    "Memo\n\n**Sources:**\n- [Act](https://example.org/act)\n",
		Sources: []domain.ResearchSource{{Title: "Act", URI: "https://example.org/act"}},
	}, nil
}

func newTestServices() Services {
	return Services{
		Documents:  &documentsFake{},
		Cases:      &casesFake{export: []byte("PK")},
		Sync:       &syncFake{},
		CauseLists: &causeListFake{},
		Backup:     &backupFake{},
		Settings:   &settingsServiceFake{settings: domain.DefaultSettings()},
		Cloud:      &cloudFake{},
		Indexer:    &indexerFake{},
		Assistant:  &assistantServiceFake{},
	}
}

func newTestHandler(cfg config.Config) http.Handler {
	return NewRouter(cfg, newTestServices()).Handler()
}
