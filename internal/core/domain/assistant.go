package domain

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	// MaxResearchQueryChars bounds a research query sent to the model.
	MaxResearchQueryChars = 2000
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is one assistant turn: the prior conversation plus the new user message.
type ChatRequest struct {
	History []ChatMessage `json:"history"`
	Message string        `json:"message"`
}

type ChatReply struct {
	Answer           string `json:"answer"`
	ContextDocuments int    `json:"context_documents"`
}

// DocumentBrief is the slice of a processed document the assistant sees as workspace context.
type DocumentBrief struct {
	Name       string
	CaseNumber string
	Summary    string
}

type ResearchSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// ResearchFindings is the raw grounded answer returned by the model.
type ResearchFindings struct {
	Text    string
	Sources []ResearchSource
}

// ResearchMemo is a research answer with its web sources listed at the end of Memo.
type ResearchMemo struct {
	Query   string           `json:"query"`
	Memo    string           `json:"memo"`
	Sources []ResearchSource `json:"sources"`
}
