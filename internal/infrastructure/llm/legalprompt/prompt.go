package legalprompt

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
)

const (
	MinClassifyChars  = domain.MinClassifyChars
	MaxClassifyChars  = domain.MaxClassifyChars
	MaxCauseListChars = 20000
	DefaultDocType    = "General Document"
)

func Truncate(text string, limit int) string {
	return domain.TruncateRunes(text, limit)
}

func Extension(filename string) string {
	return strings.TrimPrefix(filepath.Ext(filename), ".")
}

func BuildClassificationPrompt(req domain.ClassifyRequest) string {
	template := strings.TrimSpace(req.NamingTemplate)
	if template == "" {
		template = domain.DefaultNamingFormat
	}
	ext := Extension(req.Filename)

	var b strings.Builder
	b.WriteString("Act as a senior legal clerk. Analyze the legal document text below and file it into a digital case file system.\n\n")
	b.WriteString("Rules:\n")
	b.WriteString("1. Identify the court and the case number; folderPath must be \"<Court>/<Case Number>/\".\n")
	b.WriteString("2. Normalize case numbers, for example \"W.P.(PIL) No. 161 of 2024\" becomes \"WPPIL 161-2024\".\n")
	b.WriteString(fmt.Sprintf("3. If the document type is unclear use docType \"%s\".\n", DefaultDocType))
	b.WriteString(fmt.Sprintf("4. Build suggestedFilename from the template %q where {YEAR} is the document year, {CASE_NO} the normalized case number and {DOC_TYPE} the document type; keep the extension \".%s\".\n", template, ext))
	b.WriteString(fmt.Sprintf("5. If the text is illegible set suggestedFilename to \"Unprocessed.%s\".\n", ext))
	b.WriteString("6. Dates use the YYYY-MM-DD format. summary is a single sentence.\n")
	if req.Strictness == domain.StrictnessStrict {
		b.WriteString("7. Only report facts present in the text. Leave a field empty rather than guessing.\n")
	}
	b.WriteString(fmt.Sprintf("\nOriginal filename: %s\n\nDocument text:\n", req.Filename))
	b.WriteString(Truncate(req.Text, MaxClassifyChars))
	return b.String()
}

func BuildCauseListPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Act as a legal schedule manager. Analyze this raw text from a daily cause list.\n")
	b.WriteString("Return one entry per listed matter with caseNumber, courtRoom, itemNumber, hearingDate (YYYY-MM-DD), judgeName, petitioner and respondent.\n")
	b.WriteString("Normalize case numbers, for example \"W.P.(PIL) No. 161 of 2024\" becomes \"WPPIL 161-2024\".\n\n")
	b.WriteString("Raw text:\n")
	b.WriteString(Truncate(text, MaxCauseListChars))
	return b.String()
}

func BuildCaseStatusPrompt(c domain.Case) string {
	var b strings.Builder
	b.WriteString("Search public Indian court records (eCourts, High Court and Supreme Court case status pages) for this case.\n")
	b.WriteString(fmt.Sprintf("Case number: %s\n", c.CaseNumber))
	if c.CNRNumber != "" {
		b.WriteString(fmt.Sprintf("CNR number: %s\n", c.CNRNumber))
	}
	if c.CourtName != "" {
		b.WriteString(fmt.Sprintf("Court: %s\n", c.CourtName))
	}
	if c.PetitionerName != "" && c.PetitionerName != domain.DefaultPetitioner {
		b.WriteString(fmt.Sprintf("Parties: %s vs %s\n", c.PetitionerName, c.RespondentName))
	}
	b.WriteString("\nAnswer with a single JSON object and nothing else, using the keys found (boolean), nextHearingDate (YYYY-MM-DD), stage, courtName, petitioner, respondent, cnrNumber and orders (array of {date, title, url}).\n")
	b.WriteString("Set found to false when the case cannot be located.\n")
	return b.String()
}

// MeaningfulCaseNumber drops placeholder values the model emits when no case number is present.
func MeaningfulCaseNumber(raw string) string {
	number := domain.NormalizeCaseNumber(raw)
	switch strings.ToLower(number) {
	case "", "unknown", "n/a", "na", "none", "null", "-", "not found", "not available":
		return ""
	}
	return number
}

// AssistantAck is the model turn that follows the workspace context in a chat.
const AssistantAck = "Understood. I have reviewed the workspace context."

// BuildAssistantContext lists the processed documents the assistant may discuss.
func BuildAssistantContext(briefs []domain.DocumentBrief) string {
	var b strings.Builder
	b.WriteString("You are a legal case assistant for an Indian litigation practice.\n")
	b.WriteString("Workspace context:\n")
	if len(briefs) == 0 {
		b.WriteString("- No processed documents yet.\n")
	}
	for _, d := range briefs {
		caseNumber := d.CaseNumber
		if caseNumber == "" {
			caseNumber = "No Case No"
		}
		summary := d.Summary
		if summary == "" {
			summary = "No summary"
		}
		b.WriteString(fmt.Sprintf("- %s (%s): %s\n", d.Name, caseNumber, summary))
	}
	b.WriteString("\nAnswer questions about these files or general legal questions.\n")
	return b.String()
}

func BuildResearchPrompt(query string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Research this legal query in the context of Indian law: %q.\n", query))
	b.WriteString("Cite relevant sections, case law and precedents. Format the answer as a professional legal memo.\n")
	return b.String()
}
