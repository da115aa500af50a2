package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const defaultSyncTimeout = 90 * time.Second

// CaseSyncUseCase looks a case up remotely and merges the report once the user confirms it.
type CaseSyncUseCase struct {
	cases   ports.CaseRepository
	lookup  ports.CaseStatusLookup
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

func NewCaseSyncUseCase(cases ports.CaseRepository, lookup ports.CaseStatusLookup, timeout time.Duration, logger *slog.Logger) *CaseSyncUseCase {
	if timeout <= 0 {
		timeout = defaultSyncTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CaseSyncUseCase{
		cases:   cases,
		lookup:  lookup,
		timeout: timeout,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Preview queries the remote source without changing the case.
func (uc *CaseSyncUseCase) Preview(ctx context.Context, caseID string) (domain.CaseStatusReport, error) {
	c, err := uc.cases.GetCase(caseID)
	if err != nil {
		return domain.CaseStatusReport{}, err
	}

	lookupCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	report, err := uc.lookup.LookupCaseStatus(lookupCtx, c)
	if err != nil {
		if errors.Is(lookupCtx.Err(), context.DeadlineExceeded) {
			return domain.CaseStatusReport{}, domain.WrapError(domain.ErrSync, "lookup case status", fmt.Errorf("timed out after %s", uc.timeout))
		}
		if !domain.IsKind(err, domain.ErrSync) && !domain.IsKind(err, domain.ErrCredential) {
			return domain.CaseStatusReport{}, domain.WrapError(domain.ErrSync, "lookup case status", err)
		}
		return domain.CaseStatusReport{}, err
	}
	uc.logger.Info("casesync.preview", "case_id", caseID, "found", report.Found)
	return report, nil
}

// Confirm merges a previously previewed report. Fields the report leaves empty keep their local value.
func (uc *CaseSyncUseCase) Confirm(_ context.Context, caseID string, report domain.CaseStatusReport) (*domain.Case, error) {
	if report.NextHearingDate != "" {
		if _, err := time.Parse(domain.HearingDateLayout, report.NextHearingDate); err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "confirm case sync", fmt.Errorf("next hearing date %q: %w", report.NextHearingDate, err))
		}
	}
	merged, err := uc.cases.MergeCaseSync(caseID, domain.PatchFromReport(report), uc.now())
	if err != nil {
		return nil, err
	}
	uc.logger.Info("casesync.confirmed", "case_id", caseID, "stage", merged.CurrentStage, "next_hearing_date", merged.NextHearingDate)
	return &merged, nil
}
