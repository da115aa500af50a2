package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/llm/legalprompt"
)

type Classifier struct {
	client *Client
}

func NewClassifier(client *Client) *Classifier {
	return &Classifier{client: client}
}

func (c *Classifier) Classify(ctx context.Context, req domain.ClassifyRequest) (domain.Classification, error) {
	if len([]rune(strings.TrimSpace(req.Text))) < legalprompt.MinClassifyChars {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", errors.New("extracted text is too short or empty for analysis"))
	}

	raw, err := c.client.generate(ctx, generation{
		prompt:      legalprompt.BuildClassificationPrompt(req),
		temperature: req.Strictness.Temperature(),
		schema:      legalprompt.ClassificationSchema(),
	}, "classify")
	if err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", err)
	}
	cls, err := legalprompt.DecodeClassification(raw, req.Filename)
	if err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", err)
	}
	return cls, nil
}

type CauseListParser struct {
	client *Client
}

func NewCauseListParser(client *Client) *CauseListParser {
	return &CauseListParser{client: client}
}

func (p *CauseListParser) ParseCauseList(ctx context.Context, text string) ([]domain.CauseListEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", errors.New("cause list text is empty"))
	}
	raw, err := p.client.generate(ctx, generation{
		prompt: legalprompt.BuildCauseListPrompt(text),
		schema: legalprompt.CauseListSchema(),
	}, "cause_list")
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", err)
	}
	entries, err := legalprompt.DecodeCauseList(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", err)
	}
	return entries, nil
}

// CaseStatusLookup asks the model to search public court records for a case.
type CaseStatusLookup struct {
	client *Client
}

func NewCaseStatusLookup(client *Client) *CaseStatusLookup {
	return &CaseStatusLookup{client: client}
}

func (l *CaseStatusLookup) LookupCaseStatus(ctx context.Context, c domain.Case) (domain.CaseStatusReport, error) {
	raw, err := l.client.generate(ctx, generation{
		prompt: legalprompt.BuildCaseStatusPrompt(c),
		search: true,
	}, "case_status")
	if err != nil {
		return domain.CaseStatusReport{}, domain.WrapError(domain.ErrSync, "lookup case status", err)
	}
	report, err := legalprompt.DecodeCaseStatus(raw)
	if err != nil {
		return domain.CaseStatusReport{}, domain.WrapError(domain.ErrSync, "lookup case status", err)
	}
	return report, nil
}
