package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const causeListMaxPages = 2

// CauseListUseCase imports a court cause list into cases and hearings.
type CauseListUseCase struct {
	cases     ports.CaseRepository
	storage   ports.ObjectStorage
	extractor ports.TextExtractor
	parser    ports.CauseListParser
	settings  SettingsProvider
	timeouts  PipelineTimeouts
	logger    *slog.Logger
}

func NewCauseListUseCase(
	cases ports.CaseRepository,
	storage ports.ObjectStorage,
	extractor ports.TextExtractor,
	parser ports.CauseListParser,
	settings SettingsProvider,
	timeouts PipelineTimeouts,
	logger *slog.Logger,
) *CauseListUseCase {
	if timeouts.Extract <= 0 {
		timeouts.Extract = defaultExtractTimeout
	}
	if timeouts.Classify <= 0 {
		timeouts.Classify = defaultClassifyTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CauseListUseCase{
		cases:     cases,
		storage:   storage,
		extractor: extractor,
		parser:    parser,
		settings:  settings,
		timeouts:  timeouts,
		logger:    logger,
	}
}

func (uc *CauseListUseCase) Import(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.CauseListImport, error) {
	text, err := uc.extract(ctx, filename, mimeType, body)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrExtraction, "import cause list", errors.New("no text found in cause list"))
	}

	parseCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Classify)
	defer cancel()
	entries, err := uc.parser.ParseCauseList(parseCtx, text)
	if err != nil {
		if errors.Is(parseCtx.Err(), context.DeadlineExceeded) {
			return nil, domain.WrapError(domain.ErrClassification, "parse cause list", fmt.Errorf("timed out after %s", uc.timeouts.Classify))
		}
		return nil, err
	}

	result := &domain.CauseListImport{Entries: len(entries), Hearings: []domain.Hearing{}}
	court := domain.DefaultCourt
	if uc.settings != nil {
		court = uc.settings.Current().DefaultCourt
	}

	valid := make([]domain.CauseListEntry, 0, len(entries))
	for _, entry := range entries {
		entry.CaseNumber = domain.NormalizeCaseNumber(entry.CaseNumber)
		if entry.CaseNumber == "" {
			result.Skipped++
			continue
		}
		if _, err := time.Parse(domain.HearingDateLayout, entry.HearingDate); err != nil {
			uc.logger.Warn("causelist.skip_entry", "case_number", entry.CaseNumber, "hearing_date", entry.HearingDate)
			result.Skipped++
			continue
		}
		valid = append(valid, entry)
	}

	// Every hearing below references a case returned by EnsureCase and carries a parsed date,
	// so AddHearings cannot reject the batch after cases were created.
	hearings := make([]domain.Hearing, 0, len(valid))
	latest := make(map[string]string)
	for _, entry := range valid {
		c, created, err := uc.cases.EnsureCase(entry.CaseNumber, func(id string) domain.Case {
			c := domain.NewFiledCase(id, entry.CaseNumber, court)
			if v := strings.TrimSpace(entry.Petitioner); v != "" {
				c.PetitionerName = v
			}
			if v := strings.TrimSpace(entry.Respondent); v != "" {
				c.RespondentName = v
			}
			return c
		})
		if err != nil {
			return nil, fmt.Errorf("ensure case %q: %w", entry.CaseNumber, err)
		}
		if created {
			result.CasesCreated++
		}

		hearings = append(hearings, domain.Hearing{
			ID:          uuid.NewString(),
			CaseID:      c.ID,
			HearingDate: entry.HearingDate,
			Purpose:     domain.DefaultHearingTitle,
			JudgeName:   strings.TrimSpace(entry.JudgeName),
			ItemNumber:  strings.TrimSpace(entry.ItemNumber),
			CourtRoom:   strings.TrimSpace(entry.CourtRoom),
		})
		if entry.HearingDate > latest[c.ID] {
			latest[c.ID] = entry.HearingDate
		}
	}

	added, err := uc.cases.AddHearings(hearings)
	if err != nil {
		return nil, fmt.Errorf("add hearings: %w", err)
	}
	result.Hearings = added

	for caseID, date := range latest {
		if _, err := uc.cases.AdvanceHearingDate(caseID, date); err != nil {
			return nil, fmt.Errorf("advance hearing date: %w", err)
		}
	}

	uc.logger.Info("causelist.imported",
		"entries", result.Entries,
		"skipped", result.Skipped,
		"cases_created", result.CasesCreated,
		"hearings", len(result.Hearings),
	)
	return result, nil
}

// extract stores the upload under a temporary key, OCRs it and removes it again.
func (uc *CauseListUseCase) extract(ctx context.Context, filename, mimeType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("causelist_%s_%s", uuid.NewString(), sanitizeFilename(filename))
	if err := uc.storage.Save(ctx, key, body); err != nil {
		return "", fmt.Errorf("save cause list: %w", err)
	}
	defer func() {
		if err := uc.storage.Delete(context.WithoutCancel(ctx), key); err != nil {
			uc.logger.Warn("causelist.cleanup_failed", "key", key, "error", err)
		}
	}()

	extractCtx, cancel := context.WithTimeout(ctx, uc.timeouts.Extract)
	defer cancel()

	text, err := uc.extractor.Extract(extractCtx, domain.FileRef{StorageKey: key, MimeType: mimeType, Name: filename}, causeListMaxPages)
	if err != nil {
		if errors.Is(extractCtx.Err(), context.DeadlineExceeded) {
			return "", domain.WrapError(domain.ErrExtraction, "extract cause list", fmt.Errorf("timed out after %s", uc.timeouts.Extract))
		}
		if !domain.IsKind(err, domain.ErrExtraction) {
			return "", domain.WrapError(domain.ErrExtraction, "extract cause list", err)
		}
		return "", err
	}
	return text, nil
}
