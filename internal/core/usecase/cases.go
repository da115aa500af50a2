package usecase

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

// CaseUseCase is manual case management plus the hearing exports.
type CaseUseCase struct {
	cases    ports.CaseRepository
	calendar ports.CalendarEncoder
	exporter ports.RegisterExporter
}

func NewCaseUseCase(cases ports.CaseRepository, calendar ports.CalendarEncoder, exporter ports.RegisterExporter) *CaseUseCase {
	return &CaseUseCase{
		cases:    cases,
		calendar: calendar,
		exporter: exporter,
	}
}

func (uc *CaseUseCase) Create(_ context.Context, c domain.Case) (*domain.Case, error) {
	applyCaseDefaults(&c)
	created, err := uc.cases.CreateCase(c)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (uc *CaseUseCase) Update(_ context.Context, id string, c domain.Case) (*domain.Case, error) {
	applyCaseDefaults(&c)
	updated, err := uc.cases.UpdateCase(id, c)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (uc *CaseUseCase) Get(_ context.Context, id string) (*domain.Case, error) {
	c, err := uc.cases.GetCase(id)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (uc *CaseUseCase) List(context.Context) ([]domain.Case, error) {
	return uc.cases.ListCases(), nil
}

func (uc *CaseUseCase) Hearings(_ context.Context, caseID string) ([]domain.Hearing, error) {
	if _, err := uc.cases.GetCase(caseID); err != nil {
		return nil, err
	}
	return uc.cases.ListHearings(caseID), nil
}

// HearingCalendar renders one hearing as an iCalendar file and returns its download name.
func (uc *CaseUseCase) HearingCalendar(_ context.Context, hearingID string) (string, []byte, error) {
	h, err := uc.cases.GetHearing(hearingID)
	if err != nil {
		return "", nil, err
	}
	c, err := uc.cases.GetCase(h.CaseID)
	if err != nil {
		return "", nil, err
	}
	data, err := uc.calendar.EncodeHearing(h, c)
	if err != nil {
		return "", nil, err
	}
	return uc.calendar.Filename(h), data, nil
}

func (uc *CaseUseCase) ExportRegister(_ context.Context, w io.Writer) error {
	if err := uc.exporter.WriteRegister(w, uc.cases.ListCases(), uc.cases.ListHearings("")); err != nil {
		return fmt.Errorf("export register: %w", err)
	}
	return nil
}

func applyCaseDefaults(c *domain.Case) {
	if c.Status == "" {
		c.Status = domain.CasePending
	}
	if strings.TrimSpace(c.CurrentStage) == "" {
		c.CurrentStage = domain.DefaultFilingStage
	}
	if strings.TrimSpace(c.CaseType) == "" {
		c.CaseType = domain.DefaultCaseType
	}
	if strings.TrimSpace(c.PetitionerName) == "" {
		c.PetitionerName = domain.DefaultPetitioner
	}
	if strings.TrimSpace(c.RespondentName) == "" {
		c.RespondentName = domain.DefaultRespondent
	}
}
