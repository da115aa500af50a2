package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

const (
	casesSheet    = "Cases"
	hearingsSheet = "Hearings"
)

var (
	caseHeaders    = []string{"Case Number", "Court", "Case Type", "Petitioner", "Respondent", "Status", "Stage", "Urgent", "Next Hearing", "CNR", "Last Synced"}
	hearingHeaders = []string{"Case Number", "Hearing Date", "Purpose", "Court Room", "Item No", "Judge", "Outcome"}
)

// RegisterWriter writes the case register as an XLSX workbook with one sheet for cases and
// one for hearings.
type RegisterWriter struct{}

func NewRegisterWriter() *RegisterWriter {
	return &RegisterWriter{}
}

func (RegisterWriter) WriteRegister(w io.Writer, cases []domain.Case, hearings []domain.Hearing) error {
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	// NewFile starts with Sheet1; rename it rather than leaving an empty sheet behind.
	if err := f.SetSheetName("Sheet1", casesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(hearingsSheet); err != nil {
		return fmt.Errorf("create hearings sheet: %w", err)
	}
	index, _ := f.GetSheetIndex(casesSheet)
	f.SetActiveSheet(index)

	writeHeader(f, casesSheet, caseHeaders)
	numbers := make(map[string]string, len(cases))
	for i, c := range cases {
		numbers[c.ID] = c.CaseNumber
		synced := ""
		if c.LastSyncedAt != nil {
			synced = c.LastSyncedAt.UTC().Format("2006-01-02 15:04")
		}
		urgent := "No"
		if c.IsUrgent {
			urgent = "Yes"
		}
		writeRow(f, casesSheet, i+2, []any{
			c.CaseNumber, c.CourtName, c.CaseType, c.PetitionerName, c.RespondentName,
			string(c.Status), c.CurrentStage, urgent, c.NextHearingDate, c.CNRNumber, synced,
		})
	}

	writeHeader(f, hearingsSheet, hearingHeaders)
	for i, h := range hearings {
		writeRow(f, hearingsSheet, i+2, []any{
			numbers[h.CaseID], h.HearingDate, h.Purpose, h.CourtRoom, h.ItemNumber, h.JudgeName, h.Outcome,
		})
	}

	_ = f.SetColWidth(casesSheet, "A", "A", 20)
	_ = f.SetColWidth(casesSheet, "B", "B", 28)
	_ = f.SetColWidth(casesSheet, "D", "E", 26)
	_ = f.SetColWidth(hearingsSheet, "A", "B", 18)
	_ = f.SetColWidth(hearingsSheet, "C", "C", 24)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) {
	values := make([]any, len(headers))
	for i, h := range headers {
		values[i] = h
	}
	writeRow(f, sheet, 1, values)
	_ = f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})
}

func writeRow(f *excelize.File, sheet string, row int, values []any) {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}
