package vertex

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"github.com/kirillkom/legal-dossier/internal/core/domain"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/llm/legalprompt"
	"github.com/kirillkom/legal-dossier/internal/infrastructure/resilience"
)

const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You are a meticulous legal clerk for Indian courts. Answer only with JSON that matches the response schema."

// generateFunc is the single model call the adapter depends on; tests replace it.
type generateFunc func(ctx context.Context, prompt string, temperature float32, schema *genai.Schema) (string, error)

// Client classifies documents and parses cause lists through Vertex AI using application
// default credentials.
type Client struct {
	base     *genai.Client
	model    string
	executor *resilience.Executor
	generate generateFunc
}

func New(ctx context.Context, projectID, region, model string, executor *resilience.Executor) (*Client, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("vertex: project and region are required")
	}
	if model == "" {
		model = DefaultModel
	}
	base, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	c := &Client{base: base, model: model, executor: executor}
	c.generate = c.generateContent
	return c, nil
}

func (c *Client) Close() error {
	if c.base != nil {
		return c.base.Close()
	}
	return nil
}

func (c *Client) generateContent(ctx context.Context, prompt string, temperature float32, schema *genai.Schema) (string, error) {
	model := c.base.GenerativeModel(c.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(temperature),
	}

	var resp *genai.GenerateContentResponse
	call := func(callCtx context.Context) error {
		var err error
		resp, err = model.GenerateContent(callCtx, genai.Text(prompt))
		return err
	}
	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "vertex.generate", call, classifyVertexError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		if resilience.IsCircuitOpen(err) {
			return "", domain.WrapError(domain.ErrTemporary, "vertex generate", err)
		}
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	return responseText(resp)
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("vertex returned no candidates")
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if txt, ok := p.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", errors.New("vertex returned an empty response")
	}
	return text, nil
}

func classifyVertexError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	return resilience.ErrorClassification{RecordFailure: true}
}

func (c *Client) Classify(ctx context.Context, req domain.ClassifyRequest) (domain.Classification, error) {
	if len([]rune(strings.TrimSpace(req.Text))) < legalprompt.MinClassifyChars {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", errors.New("extracted text is too short or empty for analysis"))
	}
	raw, err := c.generate(ctx, legalprompt.BuildClassificationPrompt(req), req.Strictness.Temperature(), toVertexSchema(legalprompt.ClassificationSchema()))
	if err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", err)
	}
	cls, err := legalprompt.DecodeClassification(raw, req.Filename)
	if err != nil {
		return domain.Classification{}, domain.WrapError(domain.ErrClassification, "classify document", err)
	}
	return cls, nil
}

func (c *Client) ParseCauseList(ctx context.Context, text string) ([]domain.CauseListEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", errors.New("cause list text is empty"))
	}
	raw, err := c.generate(ctx, legalprompt.BuildCauseListPrompt(text), 0, toVertexSchema(legalprompt.CauseListSchema()))
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", err)
	}
	entries, err := legalprompt.DecodeCauseList(raw)
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "parse cause list", err)
	}
	return entries, nil
}

// Vertex authenticates with application default credentials, so an API key is never needed.
func (c *Client) Configure(string) {}

func (c *Client) HasCredential() bool { return true }

func toVertexSchema(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}
	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = vertexType(t)
	}
	if d, ok := schema["description"].(string); ok {
		out.Description = d
	}
	if f, ok := schema["format"].(string); ok {
		out.Format = f
	}
	if n, ok := schema["nullable"].(bool); ok {
		out.Nullable = n
	}
	out.Enum = stringList(schema["enum"])
	out.Required = stringList(schema["required"])
	if items, ok := schema["items"].(map[string]any); ok {
		out.Items = toVertexSchema(items)
	}
	if props, ok := schema["properties"].(map[string]any); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if m, ok := prop.(map[string]any); ok {
				out.Properties[name] = toVertexSchema(m)
			}
		}
	}
	return out
}

func vertexType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "array":
		return genai.TypeArray
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}

func stringList(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
