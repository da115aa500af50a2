package legalprompt

import (
	"strings"
	"testing"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

func TestDecodeClassificationAppliesDefaults(t *testing.T) {
	raw := "```json\n" + `{"court":"High Court of Delhi","caseNumber":" WPPIL  161-2024 ","docType":"","suggestedFilename":"2024-WPPIL 161-2024-Order","folderPath":"High Court of Delhi/WPPIL 161-2024/"}` + "\n```"

	cls, err := DecodeClassification(raw, "scan_001.pdf")
	if err != nil {
		t.Fatalf("DecodeClassification() error = %v", err)
	}
	if cls.Metadata.CaseNumber != "WPPIL 161-2024" {
		t.Fatalf("unexpected case number %q", cls.Metadata.CaseNumber)
	}
	if cls.Metadata.DocType != DefaultDocType {
		t.Fatalf("expected default doc type, got %q", cls.Metadata.DocType)
	}
	if cls.SuggestedFilename != "2024-WPPIL 161-2024-Order.pdf" {
		t.Fatalf("expected extension to be restored, got %q", cls.SuggestedFilename)
	}
}

func TestDecodeClassificationRejectsMissingRequiredField(t *testing.T) {
	_, err := DecodeClassification(`{"court":"X","caseNumber":"Y","docType":"Order","folderPath":"X/Y/"}`, "a.pdf")
	if err == nil || !strings.Contains(err.Error(), "schema") {
		t.Fatalf("expected schema error, got %v", err)
	}
	if _, err := DecodeClassification(`not json at all`, "a.pdf"); err == nil {
		t.Fatalf("expected error for unparsable output")
	}
}

func TestDecodeClassificationDropsPlaceholderCaseNumber(t *testing.T) {
	cls, err := DecodeClassification(`{"court":"","caseNumber":"Unknown","docType":"Letter","suggestedFilename":"Unprocessed.pdf","folderPath":""}`, "a.pdf")
	if err != nil {
		t.Fatalf("DecodeClassification() error = %v", err)
	}
	if cls.Metadata.CaseNumber != "" {
		t.Fatalf("expected placeholder case number to be dropped, got %q", cls.Metadata.CaseNumber)
	}
}

func TestSanitizeFilename(t *testing.T) {
	if got := SanitizeFilename("../etc/passwd", "a.pdf"); strings.ContainsAny(got, "/\\") {
		t.Fatalf("expected separators to be stripped, got %q", got)
	}
	if got := SanitizeFilename("  ", "scan.jpeg"); got != "Unprocessed.jpeg" {
		t.Fatalf("unexpected fallback %q", got)
	}
	if got := SanitizeFilename("Order.PDF", "scan.pdf"); got != "Order.PDF" {
		t.Fatalf("extension match should be case-insensitive, got %q", got)
	}
}

func TestDecodeCauseList(t *testing.T) {
	entries, err := DecodeCauseList(`[{"caseNumber":"CS 1-2024","hearingDate":"2024-07-01","itemNumber":"12"},{"caseNumber":"CS 2-2024","hearingDate":"2024-07-01"}]`)
	if err != nil {
		t.Fatalf("DecodeCauseList() error = %v", err)
	}
	if len(entries) != 2 || entries[0].ItemNumber != "12" {
		t.Fatalf("unexpected entries %+v", entries)
	}
	if _, err := DecodeCauseList(`[{"caseNumber":"CS 1-2024"}]`); err == nil {
		t.Fatalf("expected schema error for missing hearing date")
	}
}

func TestDecodeCaseStatusFromProse(t *testing.T) {
	raw := "Here is what I found:\n{\"found\": true, \"stage\": \"Final Arguments\", \"nextHearingDate\": \"15-08-2024\", \"orders\": [{\"date\": \"2024-07-01\", \"title\": \"Adjourned\"}]}\nHope this helps."
	report, err := DecodeCaseStatus(raw)
	if err != nil {
		t.Fatalf("DecodeCaseStatus() error = %v", err)
	}
	if !report.Found || report.Stage != "Final Arguments" || len(report.Orders) != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if report.NextHearingDate != "" {
		t.Fatalf("malformed hearing date should be dropped, got %q", report.NextHearingDate)
	}
}

func TestBuildClassificationPromptTruncatesText(t *testing.T) {
	text := strings.Repeat("ज", MaxClassifyChars+100)
	prompt := BuildClassificationPrompt(domain.ClassifyRequest{Text: text, Filename: "a.pdf", Strictness: domain.StrictnessStrict})
	if strings.Count(prompt, "ज") != MaxClassifyChars {
		t.Fatalf("expected text to be capped at %d runes", MaxClassifyChars)
	}
	if !strings.Contains(prompt, domain.DefaultNamingFormat) {
		t.Fatalf("expected default naming template in prompt")
	}
}

func TestBuildAssistantContextFillsPlaceholders(t *testing.T) {
	prompt := BuildAssistantContext([]domain.DocumentBrief{
		{Name: "2024-WPPIL 161-2024-Order.pdf", CaseNumber: "WPPIL 161-2024", Summary: "Notice issued to respondents."},
		{Name: "letter.pdf"},
	})
	if !strings.Contains(prompt, "- 2024-WPPIL 161-2024-Order.pdf (WPPIL 161-2024): Notice issued to respondents.\n") {
		t.Fatalf("missing document line in %q", prompt)
	}
	if !strings.Contains(prompt, "- letter.pdf (No Case No): No summary\n") {
		t.Fatalf("expected placeholders for bare document in %q", prompt)
	}
	if !strings.Contains(BuildAssistantContext(nil), "No processed documents yet") {
		t.Fatalf("expected empty workspace note")
	}
}
