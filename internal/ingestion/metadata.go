package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Source says where a job description came from
type Source string

const (
	SourceFile  Source = "file"
	SourcePDF   Source = "pdf"
	SourceURL   Source = "url"
	SourceStdin Source = "stdin"
	SourceText  Source = "text"
)

// Metadata describes an ingested job description
type Metadata struct {
	Source    Source `json:"source"`
	Location  string `json:"location,omitempty"` // path or URL
	Platform  string `json:"platform,omitempty"` // job board, URL sources only
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA256 of the cleaned text
}

// NewMetadata creates Metadata stamped with the current time
func NewMetadata(content string, source Source, location string) *Metadata {
	return &Metadata{
		Source:    source,
		Location:  location,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// Label is a short description of the source for the pipeline state, such as
// "url:https://..." or "stdin".
func (m *Metadata) Label() string {
	if m.Location == "" {
		return string(m.Source)
	}
	return string(m.Source) + ":" + m.Location
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
