package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/config"
	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
	"github.com/kirillkom/legal-dossier/internal/core/registry"
	"github.com/kirillkom/legal-dossier/internal/core/usecase"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/blobstore/gcs"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/blobstore/gdrive"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/blobstore/s3"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/calendar"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/encryption"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/export"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/extractor"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/fsindex"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/llm/vertex"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/ocr"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/preferences"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/legal-dossier/internal/observability/metrics"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Registry  *registry.Registry
	Scheduler *usecase.Scheduler
	Services  Services

	HTTPMetrics *metrics.HTTPServerMetrics

	closeFn []func()
}

// Services are the inbound use cases exposed by the transport layer. Cloud is nil unless the
// backup provider is Google Drive.
type Services struct {
	Documents  *usecase.IngestDocumentUseCase
	Cases      *usecase.CaseUseCase
	Sync       *usecase.CaseSyncUseCase
	CauseLists *usecase.CauseListUseCase
	Backup     *usecase.BackupUseCase
	Settings   *usecase.SettingsUseCase
	Indexer    *usecase.IndexerUseCase
	Assistant  *usecase.AssistantUseCase
	Cloud      ports.CloudSession
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger}
	if err := app.build(ctx); err != nil {
		app.Close()
		return nil, err
	}
	return app, nil
}

func (a *App) build(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	prefsStorage, err := localfs.New(filepath.Join(cfg.DataDir, "preferences"))
	if err != nil {
		return fmt.Errorf("init preferences storage: %w", err)
	}

	executor := resilience.NewExecutor(cfg.Resilience()).WithLogger(logger)

	var pipelineMetrics ports.PipelineMetrics
	if cfg.MetricsEnabled {
		a.HTTPMetrics = metrics.NewHTTPServerMetrics("api")
		pipelineMetrics = metrics.NewPipelineMetrics("api", a.HTTPMetrics.Registerer())
		a.HTTPMetrics.Registerer().MustRegister(metrics.NewBreakerCollector("api", executor.BreakerStates))
	}

	recognizer, err := a.recognizer(ctx)
	if err != nil {
		return err
	}
	textExtractor := extractor.New(storage, recognizer, ocr.ExecRunner{Logger: logger}, extractor.Config{
		Pdftoppm: cfg.PdftoppmBin,
		DPI:      cfg.OCRDPI,
	}, logger)

	geminiClient := gemini.New(cfg.GeminiURL, cfg.GeminiModel, gemini.Options{
		HTTPTimeout:        cfg.GeminiHTTPTimeout,
		ResilienceExecutor: executor,
	})
	var (
		classifier ports.MetadataClassifier = gemini.NewClassifier(geminiClient)
		parser     ports.CauseListParser    = gemini.NewCauseListParser(geminiClient)
		holder     ports.CredentialHolder   = geminiClient
	)
	if strings.EqualFold(cfg.LLMProvider, "vertex") {
		vertexClient, err := vertex.New(ctx, cfg.VertexProject, cfg.VertexRegion, cfg.VertexModel, executor)
		if err != nil {
			return fmt.Errorf("init vertex client: %w", err)
		}
		a.onClose(func() { _ = vertexClient.Close() })
		classifier, parser = vertexClient, vertexClient
		holder = credentialFanout{primary: vertexClient, rest: []ports.CredentialHolder{geminiClient}}
	}

	var events ports.EventPublisher
	if strings.TrimSpace(cfg.NATSURL) != "" {
		publisher, err := nats.NewPublisher(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			return fmt.Errorf("init event publisher: %w", err)
		}
		a.onClose(publisher.Close)
		events = publisher
	}

	target, err := OpenBlobStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.onClose(target.Close)
	var cloud ports.CloudSession
	if target.Session != nil {
		cloud = target.Session
	}

	reg := registry.New()
	a.Registry = reg

	settingsUC := usecase.NewSettingsUseCase(
		preferences.NewSettingsStore(prefsStorage, domain.DefaultSettings()),
		preferences.NewCredentialStore(prefsStorage),
		holder,
	)
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		holder.Configure(cfg.GeminiAPIKey)
	}
	if err := settingsUC.Load(ctx); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	timeouts := usecase.PipelineTimeouts{Extract: cfg.ExtractTimeout, Classify: cfg.ClassifyTimeout}
	processUC := usecase.NewProcessDocumentUseCase(reg, reg, textExtractor, classifier, settingsUC, events, pipelineMetrics, timeouts, logger)
	ingestUC := usecase.NewIngestDocumentUseCase(reg, storage)

	scheduler := usecase.NewScheduler(reg, processUC, settingsUC, pipelineMetrics, logger)
	a.Scheduler = scheduler
	reg.SetOnChange(scheduler.OnCollectionChanged)
	settingsUC.SetTrigger(scheduler)

	a.Services = Services{
		Documents:  ingestUC,
		Cases:      usecase.NewCaseUseCase(reg, calendar.NewEncoder(), export.NewRegisterWriter()),
		Sync:       usecase.NewCaseSyncUseCase(reg, gemini.NewCaseStatusLookup(geminiClient), cfg.SyncTimeout, logger),
		CauseLists: usecase.NewCauseListUseCase(reg, storage, textExtractor, parser, settingsUC, timeouts, logger),
		Backup:     usecase.NewBackupUseCase(reg, encryption.New(), target.Store, cfg.BackupFilename, logger),
		Settings:   settingsUC,
		Indexer:    usecase.NewIndexerUseCase(cfg.IndexRoot, fsindex.NewScanner(logger), ingestUC),
		Assistant:  usecase.NewAssistantUseCase(reg, gemini.NewAssistant(geminiClient), cfg.AssistantTimeout, logger),
		Cloud:      cloud,
	}

	logger.Info("bootstrap.ready",
		"llm_provider", cfg.LLMProvider,
		"ocr_provider", cfg.OCRProvider,
		"backup_provider", cfg.BackupProvider,
		"events_enabled", events != nil,
		"metrics_enabled", cfg.MetricsEnabled,
	)
	return nil
}

func (a *App) recognizer(ctx context.Context) (extractor.Recognizer, error) {
	cfg := a.Config
	if strings.EqualFold(cfg.OCRProvider, "vision") {
		vision, err := ocr.NewVision(ctx)
		if err != nil {
			return nil, fmt.Errorf("init vision ocr: %w", err)
		}
		a.onClose(func() { _ = vision.Close() })
		return vision, nil
	}
	return ocr.NewTesseract(ocr.TesseractConfig{
		Binary:      cfg.TesseractBin,
		Lang:        cfg.TesseractLang,
		TessdataDir: cfg.TessdataDir,
	}, ocr.ExecRunner{Logger: a.Logger}), nil
}

// BlobTarget is the backup destination chosen by BACKUP_PROVIDER. Session is set only for
// Google Drive, whose store needs a consent token before use.
type BlobTarget struct {
	Store   ports.BlobStore
	Session *gdrive.Session

	closeFn func()
}

func (t *BlobTarget) Close() {
	if t.closeFn != nil {
		t.closeFn()
	}
}

func OpenBlobStore(ctx context.Context, cfg config.Config) (*BlobTarget, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.BackupProvider)) {
	case "gdrive":
		session := gdrive.NewSession()
		store, err := gdrive.New(ctx, session)
		if err != nil {
			return nil, fmt.Errorf("init drive backup store: %w", err)
		}
		return &BlobTarget{Store: store, Session: session}, nil
	case "gcs":
		store, err := gcs.New(ctx, cfg.GCSBucket)
		if err != nil {
			return nil, fmt.Errorf("init gcs backup store: %w", err)
		}
		return &BlobTarget{Store: store, closeFn: func() { _ = store.Close() }}, nil
	case "s3":
		store, err := s3.New(ctx, s3.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			Bucket:          cfg.S3Bucket,
			UseSSL:          cfg.S3UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 backup store: %w", err)
		}
		return &BlobTarget{Store: store}, nil
	case "postgres":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewBackupRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return &BlobTarget{Store: repo, closeFn: func() { _ = db.Close() }}, nil
	case "", "localfs":
		storage, err := localfs.New(filepath.Join(cfg.DataDir, "backups"))
		if err != nil {
			return nil, fmt.Errorf("init local backup store: %w", err)
		}
		return &BlobTarget{Store: localfs.NewBlobStore(storage)}, nil
	default:
		return nil, fmt.Errorf("unknown backup provider %q", cfg.BackupProvider)
	}
}

func (a *App) onClose(fn func()) {
	a.closeFn = append(a.closeFn, fn)
}

// Close releases clients in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closeFn) - 1; i >= 0; i-- {
		a.closeFn[i]()
	}
	a.closeFn = nil
}

// credentialFanout hands a configured key to every AI client while admission follows the
// primary classifier.
type credentialFanout struct {
	primary ports.CredentialHolder
	rest    []ports.CredentialHolder
}

func (f credentialFanout) Configure(apiKey string) {
	f.primary.Configure(apiKey)
	for _, h := range f.rest {
		h.Configure(apiKey)
	}
}

func (f credentialFanout) HasCredential() bool {
	return f.primary.HasCredential()
}
