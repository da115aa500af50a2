package domain

import "time"

// Snapshot is the serialisable registry state carried by an encrypted backup.
type Snapshot struct {
	Timestamp time.Time  `json:"timestamp"`
	Cases     []Case     `json:"cases"`
	Hearings  []Hearing  `json:"hearings"`
	Documents []Document `json:"documents"`
}

type BackupReceipt struct {
	Name      string    `json:"name"`
	Bytes     int       `json:"bytes"`
	Timestamp time.Time `json:"timestamp"`
	Cases     int       `json:"cases"`
	Hearings  int       `json:"hearings"`
	Documents int       `json:"documents"`
}

// IndexedFile is a candidate document found by scanning a local directory.
type IndexedFile struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	MimeType string    `json:"mime_type"`
	Modified time.Time `json:"modified"`
}
