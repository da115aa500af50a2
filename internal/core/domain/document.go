package domain

import (
	"path/filepath"
	"strings"
	"time"
)

type ProcessingStatus string

const (
	StatusPending       ProcessingStatus = "PENDING"
	StatusOCRProcessing ProcessingStatus = "OCR_PROCESSING"
	StatusAIProcessing  ProcessingStatus = "AI_PROCESSING"
	StatusCompleted     ProcessingStatus = "COMPLETED"
	StatusFailed        ProcessingStatus = "FAILED"
)

func (s ProcessingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// InFlight reports whether the status belongs to a document currently owned by the pipeline.
func (s ProcessingStatus) InFlight() bool {
	return s == StatusOCRProcessing || s == StatusAIProcessing
}

type DocMetadata struct {
	Court      string `json:"court,omitempty"`
	CaseNumber string `json:"case_number,omitempty"`
	Parties    string `json:"parties,omitempty"`
	DocType    string `json:"doc_type,omitempty"`
	Date       string `json:"date,omitempty"`
	Summary    string `json:"summary,omitempty"`
	FolderPath string `json:"folder_path,omitempty"`
}

type Document struct {
	ID           string           `json:"id"`
	CaseID       string           `json:"case_id,omitempty"`
	StorageKey   string           `json:"storage_key"`
	MimeType     string           `json:"mime_type"`
	OriginalName string           `json:"original_name"`
	CurrentName  string           `json:"current_name"`
	Size         int64            `json:"size"`
	UploadedAt   time.Time        `json:"uploaded_at"`
	Status       ProcessingStatus `json:"status"`
	OCRText      string           `json:"ocr_text,omitempty"`
	Metadata     *DocMetadata     `json:"metadata,omitempty"`
	Error        string           `json:"error,omitempty"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

func (d Document) FileRef() FileRef {
	return FileRef{
		StorageKey: d.StorageKey,
		MimeType:   d.MimeType,
		Name:       d.OriginalName,
	}
}

// Classification is the structured result of the metadata classifier.
type Classification struct {
	Metadata          DocMetadata `json:"metadata"`
	SuggestedFilename string      `json:"suggested_filename"`
}

type ClassifyRequest struct {
	Text           string
	Filename       string
	NamingTemplate string
	Strictness     AIStrictness
}

type DocumentEvent struct {
	DocumentID string           `json:"document_id"`
	Status     ProcessingStatus `json:"status"`
	CaseID     string           `json:"case_id,omitempty"`
	Error      string           `json:"error,omitempty"`
	At         time.Time        `json:"at"`
}

type ProcessingStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	InFlight  int `json:"in_flight"`
	Processed int `json:"processed"`
	Failed    int `json:"failed"`
}

// FileRef points at a stored original file.
type FileRef struct {
	StorageKey string
	MimeType   string
	Name       string
}

type FileKind string

const (
	FileKindPDF         FileKind = "pdf"
	FileKindImage       FileKind = "image"
	FileKindText        FileKind = "text"
	FileKindUnsupported FileKind = "unsupported"
)

// DetectFileKind resolves the extractor strategy from the MIME type, falling back to the extension.
func DetectFileKind(mimeType, filename string) FileKind {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if i := strings.Index(mt, ";"); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch {
	case mt == "application/pdf":
		return FileKindPDF
	case strings.HasPrefix(mt, "image/"):
		return FileKindImage
	case mt == "text/plain":
		return FileKindText
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FileKindPDF
	case ".png", ".jpg", ".jpeg", ".tif", ".tiff", ".bmp", ".webp":
		return FileKindImage
	case ".txt":
		return FileKindText
	}
	return FileKindUnsupported
}

const (
	// MinClassifyChars is the shortest extracted text worth sending to the classifier.
	MinClassifyChars = 50
	MaxClassifyChars = 15000
)

// TruncateRunes keeps at most limit runes of text.
func TruncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
