package legalprompt

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func str(description string) map[string]any {
	if description == "" {
		return map[string]any{"type": "string"}
	}
	return map[string]any{"type": "string", "description": description}
}

func ClassificationSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"court":             str("Name of the court, e.g. Supreme Court of India, High Court of Delhi."),
			"caseNumber":        str("Normalized case number, e.g. WPPIL 161-2024."),
			"parties":           str("Case title or parties, e.g. State vs. John Doe."),
			"date":              str("Document date in YYYY-MM-DD format."),
			"docType":           str("Legal document type, e.g. Order, Judgment, Petition, Affidavit, Vakalatnama."),
			"suggestedFilename": str("Formatted filename including the original extension."),
			"folderPath":        str("Folder structure: Court Name/Case Number/"),
			"summary":           str("One sentence summary of the legal content."),
		},
		"required": []any{"court", "caseNumber", "docType", "suggestedFilename", "folderPath"},
	}
}

func CauseListSchema() map[string]any {
	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"caseNumber":  str(""),
				"courtRoom":   str(""),
				"itemNumber":  str(""),
				"hearingDate": str("Hearing date in YYYY-MM-DD format."),
				"judgeName":   str(""),
				"petitioner":  str(""),
				"respondent":  str(""),
			},
			"required": []any{"caseNumber", "hearingDate"},
		},
	}
}

func CaseStatusSchema() map[string]any {
	order := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"date":  str(""),
			"title": str(""),
			"url":   str(""),
		},
	}
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"found":           map[string]any{"type": "boolean"},
			"nextHearingDate": str(""),
			"stage":           str(""),
			"courtName":       str(""),
			"petitioner":      str(""),
			"respondent":      str(""),
			"cnrNumber":       str(""),
			"orders":          map[string]any{"type": "array", "items": order},
		},
		"required": []any{"found"},
	}
}

// Validate checks data against a JSON Schema expressed as a map.
func Validate(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// ExtractJSON trims prose or code fences around the first JSON object or array in raw.
func ExtractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	open := strings.IndexAny(raw, "{[")
	if open < 0 {
		return raw
	}
	closer := "}"
	if raw[open] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(raw, closer)
	if end > open {
		return raw[open : end+1]
	}
	return raw
}
