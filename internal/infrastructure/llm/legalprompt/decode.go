package legalprompt

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

type classificationWire struct {
	Court             string `json:"court"`
	CaseNumber        string `json:"caseNumber"`
	Parties           string `json:"parties"`
	Date              string `json:"date"`
	DocType           string `json:"docType"`
	SuggestedFilename string `json:"suggestedFilename"`
	FolderPath        string `json:"folderPath"`
	Summary           string `json:"summary"`
}

// DecodeClassification validates the model output and applies the filing defaults.
func DecodeClassification(raw, originalFilename string) (domain.Classification, error) {
	payload := []byte(ExtractJSON(raw))
	if err := Validate(ClassificationSchema(), payload); err != nil {
		return domain.Classification{}, err
	}
	var wire classificationWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return domain.Classification{}, fmt.Errorf("decode classification: %w", err)
	}

	docType := strings.TrimSpace(wire.DocType)
	if docType == "" {
		docType = DefaultDocType
	}
	return domain.Classification{
		Metadata: domain.DocMetadata{
			Court:      strings.TrimSpace(wire.Court),
			CaseNumber: MeaningfulCaseNumber(wire.CaseNumber),
			Parties:    strings.TrimSpace(wire.Parties),
			DocType:    docType,
			Date:       strings.TrimSpace(wire.Date),
			Summary:    strings.TrimSpace(wire.Summary),
			FolderPath: strings.TrimSpace(wire.FolderPath),
		},
		SuggestedFilename: SanitizeFilename(wire.SuggestedFilename, originalFilename),
	}, nil
}

// SanitizeFilename strips directories from the suggestion and keeps the original extension.
func SanitizeFilename(suggested, original string) string {
	name := strings.TrimSpace(suggested)
	name = strings.NewReplacer("/", "-", "\\", "-", "\x00", "").Replace(name)
	ext := filepath.Ext(original)
	if name == "" || name == "." || name == ".." {
		return "Unprocessed" + ext
	}
	if ext != "" && !strings.EqualFold(filepath.Ext(name), ext) {
		name += ext
	}
	return name
}

type causeListWire struct {
	CaseNumber  string `json:"caseNumber"`
	CourtRoom   string `json:"courtRoom"`
	ItemNumber  string `json:"itemNumber"`
	HearingDate string `json:"hearingDate"`
	JudgeName   string `json:"judgeName"`
	Petitioner  string `json:"petitioner"`
	Respondent  string `json:"respondent"`
}

func DecodeCauseList(raw string) ([]domain.CauseListEntry, error) {
	payload := []byte(ExtractJSON(raw))
	if err := Validate(CauseListSchema(), payload); err != nil {
		return nil, err
	}
	var wire []causeListWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("decode cause list: %w", err)
	}
	out := make([]domain.CauseListEntry, 0, len(wire))
	for _, w := range wire {
		out = append(out, domain.CauseListEntry{
			CaseNumber:  domain.NormalizeCaseNumber(w.CaseNumber),
			HearingDate: strings.TrimSpace(w.HearingDate),
			CourtRoom:   strings.TrimSpace(w.CourtRoom),
			ItemNumber:  strings.TrimSpace(w.ItemNumber),
			JudgeName:   strings.TrimSpace(w.JudgeName),
			Petitioner:  strings.TrimSpace(w.Petitioner),
			Respondent:  strings.TrimSpace(w.Respondent),
		})
	}
	return out, nil
}

type caseStatusWire struct {
	Found           bool               `json:"found"`
	NextHearingDate string             `json:"nextHearingDate"`
	Stage           string             `json:"stage"`
	CourtName       string             `json:"courtName"`
	Petitioner      string             `json:"petitioner"`
	Respondent      string             `json:"respondent"`
	CNRNumber       string             `json:"cnrNumber"`
	Orders          []domain.CaseOrder `json:"orders"`
}

func DecodeCaseStatus(raw string) (domain.CaseStatusReport, error) {
	payload := []byte(ExtractJSON(raw))
	if err := Validate(CaseStatusSchema(), payload); err != nil {
		return domain.CaseStatusReport{}, err
	}
	var wire caseStatusWire
	if err := json.Unmarshal(payload, &wire); err != nil {
		return domain.CaseStatusReport{}, fmt.Errorf("decode case status: %w", err)
	}
	report := domain.CaseStatusReport{
		Found:      wire.Found,
		Stage:      strings.TrimSpace(wire.Stage),
		CourtName:  strings.TrimSpace(wire.CourtName),
		Petitioner: strings.TrimSpace(wire.Petitioner),
		Respondent: strings.TrimSpace(wire.Respondent),
		CNRNumber:  strings.TrimSpace(wire.CNRNumber),
		Orders:     wire.Orders,
	}
	if date := strings.TrimSpace(wire.NextHearingDate); date != "" {
		if _, err := time.Parse(domain.HearingDateLayout, date); err == nil {
			report.NextHearingDate = date
		}
	}
	return report, nil
}
