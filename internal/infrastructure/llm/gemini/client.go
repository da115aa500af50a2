package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.5-flash"
)

// Client talks to the Gemini generateContent REST endpoint. The API key is supplied at
// runtime through Configure and is never read from package state.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	executor   *resilience.Executor

	mu     sync.RWMutex
	apiKey string
}

type Options struct {
	HTTPTimeout        time.Duration
	ResilienceExecutor *resilience.Executor
}

func New(baseURL, model string, options Options) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	timeout := options.HTTPTimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		executor:   options.ResilienceExecutor,
	}
}

func (c *Client) Configure(apiKey string) {
	c.mu.Lock()
	c.apiKey = strings.TrimSpace(apiKey)
	c.mu.Unlock()
}

func (c *Client) HasCredential() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiKey != ""
}

func (c *Client) credential(operation string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.apiKey == "" {
		return "", domain.WrapError(domain.ErrCredential, operation, errors.New("gemini api key is not configured"))
	}
	return c.apiKey, nil
}

// generation is one generateContent call. turns, when set, replace prompt with a multi-turn
// conversation.
type generation struct {
	prompt      string
	turns       []content
	temperature float32
	schema      map[string]any
	search      bool
}

type generated struct {
	text    string
	sources []domain.ResearchSource
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generateResponse struct {
	Candidates []struct {
		Content           content `json:"content"`
		FinishReason      string  `json:"finishReason"`
		GroundingMetadata *struct {
			GroundingChunks []struct {
				Web *struct {
					URI   string `json:"uri"`
					Title string `json:"title"`
				} `json:"web"`
			} `json:"groundingChunks"`
		} `json:"groundingMetadata"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

func (c *Client) generate(ctx context.Context, gen generation, operation string) (string, error) {
	out, err := c.generateContent(ctx, gen, operation)
	return out.text, err
}

func (c *Client) generateContent(ctx context.Context, gen generation, operation string) (generated, error) {
	apiKey, err := c.credential(operation)
	if err != nil {
		return generated{}, err
	}

	config := map[string]any{"temperature": gen.temperature}
	if gen.schema != nil {
		config["responseMimeType"] = "application/json"
		config["responseSchema"] = toGeminiSchema(gen.schema)
	}
	contents := gen.turns
	if len(contents) == 0 {
		contents = []content{{Role: "user", Parts: []part{{Text: gen.prompt}}}}
	}
	payload := map[string]any{
		"contents":         contents,
		"generationConfig": config,
	}
	if gen.search {
		payload["tools"] = []map[string]any{{"google_search": map[string]any{}}}
	}

	var response generateResponse
	call := func(callCtx context.Context) error {
		response = generateResponse{}
		return c.postJSON(callCtx, "/v1beta/models/"+c.model+":generateContent", apiKey, payload, &response, operation)
	}
	if c.executor != nil {
		err = c.executor.Execute(ctx, "gemini."+operation, call, classifyGeminiError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return generated{}, wrapCallError("gemini "+operation, err)
	}

	if response.PromptFeedback != nil && response.PromptFeedback.BlockReason != "" {
		return generated{}, fmt.Errorf("gemini %s blocked: %s", operation, response.PromptFeedback.BlockReason)
	}
	if len(response.Candidates) == 0 {
		return generated{}, fmt.Errorf("gemini %s returned no candidates", operation)
	}
	candidate := response.Candidates[0]
	var b strings.Builder
	for _, p := range candidate.Content.Parts {
		b.WriteString(p.Text)
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return generated{}, fmt.Errorf("gemini %s returned empty text (finish reason %s)", operation, candidate.FinishReason)
	}

	out := generated{text: text}
	if candidate.GroundingMetadata != nil {
		for _, chunk := range candidate.GroundingMetadata.GroundingChunks {
			if chunk.Web != nil && strings.TrimSpace(chunk.Web.URI) != "" {
				out.sources = append(out.sources, domain.ResearchSource{Title: strings.TrimSpace(chunk.Web.Title), URI: strings.TrimSpace(chunk.Web.URI)})
			}
		}
	}
	return out, nil
}

// toGeminiSchema converts a JSON Schema map into the OpenAPI subset accepted by responseSchema.
func toGeminiSchema(schema map[string]any) map[string]any {
	out := make(map[string]any, len(schema))
	for key, value := range schema {
		switch key {
		case "type":
			if s, ok := value.(string); ok {
				out[key] = strings.ToUpper(s)
			}
		case "properties":
			props, _ := value.(map[string]any)
			converted := make(map[string]any, len(props))
			for name, prop := range props {
				if m, ok := prop.(map[string]any); ok {
					converted[name] = toGeminiSchema(m)
				}
			}
			out[key] = converted
		case "items":
			if m, ok := value.(map[string]any); ok {
				out[key] = toGeminiSchema(m)
			}
		case "required", "description", "enum", "format", "nullable":
			out[key] = value
		}
	}
	return out
}
