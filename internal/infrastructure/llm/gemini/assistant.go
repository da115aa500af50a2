package gemini

import (
	"context"
	"errors"
	"strings"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/llm/legalprompt"
)

// Assistant backs the chat and research screens. Research runs with Google Search grounding
// and reports the web pages the answer drew on.
type Assistant struct {
	client *Client
}

func NewAssistant(client *Client) *Assistant {
	return &Assistant{client: client}
}

func (a *Assistant) Chat(ctx context.Context, briefs []domain.DocumentBrief, history []domain.ChatMessage, message string) (string, error) {
	turns := make([]content, 0, len(history)+3)
	turns = append(turns,
		content{Role: "user", Parts: []part{{Text: legalprompt.BuildAssistantContext(briefs)}}},
		content{Role: "model", Parts: []part{{Text: legalprompt.AssistantAck}}},
	)
	for _, m := range history {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "model"
		}
		turns = append(turns, content{Role: role, Parts: []part{{Text: m.Content}}})
	}
	turns = append(turns, content{Role: "user", Parts: []part{{Text: message}}})

	return a.client.generate(ctx, generation{turns: turns, temperature: 0.7}, "assistant_chat")
}

func (a *Assistant) Research(ctx context.Context, query string) (domain.ResearchFindings, error) {
	if strings.TrimSpace(query) == "" {
		return domain.ResearchFindings{}, domain.WrapError(domain.ErrInvalidInput, "legal research", errors.New("query is empty"))
	}
	out, err := a.client.generateContent(ctx, generation{
		prompt: legalprompt.BuildResearchPrompt(query),
		search: true,
	}, "research")
	if err != nil {
		return domain.ResearchFindings{}, err
	}
	return domain.ResearchFindings{Text: out.text, Sources: out.sources}, nil
}
