package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/core/ports"
)

const (
	defaultAssistantTimeout = 90 * time.Second
	maxChatHistory          = 12
	maxContextDocuments     = 200

	chatFallbackAnswer = "I apologize, I couldn't generate a response."
	researchNoResult   = "No result found."
)

// AssistantUseCase answers questions over the processed documents and runs grounded legal
// research. Only COMPLETED documents reach the model.
type AssistantUseCase struct {
	docs      ports.DocumentRepository
	assistant ports.LegalAssistant
	timeout   time.Duration
	logger    *slog.Logger
}

func NewAssistantUseCase(docs ports.DocumentRepository, assistant ports.LegalAssistant, timeout time.Duration, logger *slog.Logger) *AssistantUseCase {
	if timeout <= 0 {
		timeout = defaultAssistantTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AssistantUseCase{
		docs:      docs,
		assistant: assistant,
		timeout:   timeout,
		logger:    logger,
	}
}

func (uc *AssistantUseCase) Chat(ctx context.Context, req domain.ChatRequest) (*domain.ChatReply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "assistant chat", errors.New("message is required"))
	}
	history, err := normalizeHistory(req.History)
	if err != nil {
		return nil, err
	}
	briefs := uc.workspaceBriefs()

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	answer, err := uc.assistant.Chat(callCtx, briefs, history, message)
	if err != nil {
		return nil, uc.callError(callCtx, "assistant chat", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		answer = chatFallbackAnswer
	}
	uc.logger.Info("assistant.chat", "context_documents", len(briefs), "history_turns", len(history))
	return &domain.ChatReply{Answer: answer, ContextDocuments: len(briefs)}, nil
}

// Research returns a memo for query with the cited web pages appended under a Sources heading.
func (uc *AssistantUseCase) Research(ctx context.Context, query string) (*domain.ResearchMemo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "legal research", errors.New("query is required"))
	}
	if n := len([]rune(query)); n > domain.MaxResearchQueryChars {
		return nil, domain.WrapError(domain.ErrInvalidInput, "legal research", fmt.Errorf("query has %d characters, limit is %d", n, domain.MaxResearchQueryChars))
	}

	callCtx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()
	findings, err := uc.assistant.Research(callCtx, query)
	if err != nil {
		return nil, uc.callError(callCtx, "legal research", err)
	}

	sources := uniqueSources(findings.Sources)
	memo := &domain.ResearchMemo{
		Query:   query,
		Memo:    renderMemo(findings.Text, sources),
		Sources: sources,
	}
	uc.logger.Info("assistant.research", "sources", len(sources))
	return memo, nil
}

func (uc *AssistantUseCase) callError(callCtx context.Context, op string, err error) error {
	if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return domain.WrapError(domain.ErrAssistant, op, fmt.Errorf("timed out after %s", uc.timeout))
	}
	for _, kind := range []error{domain.ErrInvalidInput, domain.ErrCredential, domain.ErrAssistant} {
		if domain.IsKind(err, kind) {
			return err
		}
	}
	return domain.WrapError(domain.ErrAssistant, op, err)
}

// workspaceBriefs lists COMPLETED documents, most recently processed first.
func (uc *AssistantUseCase) workspaceBriefs() []domain.DocumentBrief {
	docs := uc.docs.ListDocuments("")
	completed := make([]domain.Document, 0, len(docs))
	for _, d := range docs {
		if d.Status == domain.StatusCompleted {
			completed = append(completed, d)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].UpdatedAt.After(completed[j].UpdatedAt)
	})
	if len(completed) > maxContextDocuments {
		completed = completed[:maxContextDocuments]
	}

	briefs := make([]domain.DocumentBrief, 0, len(completed))
	for _, d := range completed {
		brief := domain.DocumentBrief{Name: d.CurrentName}
		if brief.Name == "" {
			brief.Name = d.OriginalName
		}
		if d.Metadata != nil {
			brief.CaseNumber = d.Metadata.CaseNumber
			brief.Summary = d.Metadata.Summary
		}
		briefs = append(briefs, brief)
	}
	return briefs
}

func normalizeHistory(in []domain.ChatMessage) ([]domain.ChatMessage, error) {
	out := make([]domain.ChatMessage, 0, len(in))
	for i, m := range in {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != domain.RoleUser && role != domain.RoleAssistant {
			return nil, domain.WrapError(domain.ErrInvalidInput, "assistant chat", fmt.Errorf("history[%d]: unknown role %q", i, m.Role))
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		out = append(out, domain.ChatMessage{Role: role, Content: content})
	}
	if len(out) > maxChatHistory {
		out = out[len(out)-maxChatHistory:]
	}
	return out, nil
}

func uniqueSources(in []domain.ResearchSource) []domain.ResearchSource {
	seen := make(map[string]struct{}, len(in))
	out := make([]domain.ResearchSource, 0, len(in))
	for _, s := range in {
		uri := strings.TrimSpace(s.URI)
		if uri == "" {
			continue
		}
		if _, ok := seen[uri]; ok {
			continue
		}
		seen[uri] = struct{}{}
		title := strings.TrimSpace(s.Title)
		if title == "" {
			title = uri
		}
		out = append(out, domain.ResearchSource{Title: title, URI: uri})
	}
	return out
}

func renderMemo(text string, sources []domain.ResearchSource) string {
	text = strings.TrimSpace(text)
	if text == "" {
		text = researchNoResult
	}
	if len(sources) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(text)
	b.WriteString("\n\n**Sources:**\n")
	for _, s := range sources {
		fmt.Fprintf(&b, "- [%s](%s)\n", s.Title, s.URI)
	}
	return b.String()
}
