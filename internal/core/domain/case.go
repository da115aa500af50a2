package domain

import (
	"strings"
	"time"
)

type CaseStatus string

const (
	CasePending  CaseStatus = "Pending"
	CaseDisposed CaseStatus = "Disposed"
)

const (
	DefaultCaseType     = "Unknown"
	DefaultPetitioner   = "Petitioner"
	DefaultRespondent   = "Respondent"
	DefaultFilingStage  = "New Filing"
	SyncedRawStatus     = "Synced via Gemini Search"
	HearingDateLayout   = "2006-01-02"
	DefaultHearingTitle = "Hearing"
)

type CaseOrder struct {
	Date  string `json:"date"`
	Title string `json:"title"`
	URL   string `json:"url,omitempty"`
}

type ECourtsData struct {
	NextHearingDate string      `json:"next_hearing_date,omitempty"`
	Stage           string      `json:"stage,omitempty"`
	Orders          []CaseOrder `json:"orders,omitempty"`
	RawStatus       string      `json:"raw_status,omitempty"`
}

type Case struct {
	ID              string       `json:"id"`
	CNRNumber       string       `json:"cnr_number,omitempty"`
	CaseNumber      string       `json:"case_number"`
	CourtName       string       `json:"court_name"`
	CaseType        string       `json:"case_type"`
	PetitionerName  string       `json:"petitioner_name"`
	RespondentName  string       `json:"respondent_name"`
	Status          CaseStatus   `json:"status"`
	CurrentStage    string       `json:"current_stage"`
	IsUrgent        bool         `json:"is_urgent"`
	NextHearingDate string       `json:"next_hearing_date,omitempty"`
	ECourts         *ECourtsData `json:"ecourts,omitempty"`
	LastSyncedAt    *time.Time   `json:"last_synced_at,omitempty"`
}

// NewFiledCase builds the case record created when a document references an unknown case number.
func NewFiledCase(id, caseNumber, court string) Case {
	return Case{
		ID:             id,
		CaseNumber:     NormalizeCaseNumber(caseNumber),
		CourtName:      court,
		CaseType:       DefaultCaseType,
		PetitionerName: DefaultPetitioner,
		RespondentName: DefaultRespondent,
		Status:         CasePending,
		CurrentStage:   DefaultFilingStage,
	}
}

// NormalizeCaseNumber trims and collapses internal whitespace. Matching stays case-sensitive.
func NormalizeCaseNumber(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}

func (c Case) Validate() error {
	if NormalizeCaseNumber(c.CaseNumber) == "" {
		return WrapError(ErrInvalidInput, "validate case", errEmpty("case_number"))
	}
	switch c.Status {
	case CasePending, CaseDisposed:
	default:
		return WrapError(ErrInvalidInput, "validate case", errUnknown("status", string(c.Status)))
	}
	if c.NextHearingDate != "" {
		if _, err := time.Parse(HearingDateLayout, c.NextHearingDate); err != nil {
			return WrapError(ErrInvalidInput, "validate case", err)
		}
	}
	return nil
}

// CaseStatusReport is what a remote status lookup found for a case.
type CaseStatusReport struct {
	Found           bool        `json:"found"`
	NextHearingDate string      `json:"next_hearing_date,omitempty"`
	Stage           string      `json:"stage,omitempty"`
	CourtName       string      `json:"court_name,omitempty"`
	Petitioner      string      `json:"petitioner,omitempty"`
	Respondent      string      `json:"respondent,omitempty"`
	CNRNumber       string      `json:"cnr_number,omitempty"`
	Orders          []CaseOrder `json:"orders,omitempty"`
}

// CaseSyncPatch lists the fields a confirmed sync overwrites. Nil fields keep the local value.
type CaseSyncPatch struct {
	NextHearingDate *string
	CurrentStage    *string
	CNRNumber       *string
	ECourts         *ECourtsData
}

// PatchFromReport keeps local values wherever the remote report is silent.
func PatchFromReport(report CaseStatusReport) CaseSyncPatch {
	patch := CaseSyncPatch{
		ECourts: &ECourtsData{
			NextHearingDate: report.NextHearingDate,
			Stage:           report.Stage,
			Orders:          append([]CaseOrder(nil), report.Orders...),
			RawStatus:       SyncedRawStatus,
		},
	}
	if v := strings.TrimSpace(report.NextHearingDate); v != "" {
		patch.NextHearingDate = &v
	}
	if v := strings.TrimSpace(report.Stage); v != "" {
		patch.CurrentStage = &v
	}
	if v := strings.TrimSpace(report.CNRNumber); v != "" {
		patch.CNRNumber = &v
	}
	return patch
}

func (c *Case) ApplySync(patch CaseSyncPatch, now time.Time) {
	if patch.NextHearingDate != nil {
		c.NextHearingDate = *patch.NextHearingDate
	}
	if patch.CurrentStage != nil {
		c.CurrentStage = *patch.CurrentStage
	}
	if patch.CNRNumber != nil {
		c.CNRNumber = *patch.CNRNumber
	}
	if patch.ECourts != nil {
		ec := *patch.ECourts
		c.ECourts = &ec
	}
	synced := now.UTC()
	c.LastSyncedAt = &synced
}
