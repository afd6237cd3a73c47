// Package model provides data models for the DocQA platform.
package model

import (
	"time"
)

// Document status values. A document that failed during ingestion is kept in
// the registry with StatusError so the failure stays visible to clients.
const (
	StatusProcessed = "processed"
	StatusError     = "error"
)

// Document represents an uploaded document tracked by the registry.
type Document struct {
	ID              string    `json:"id"`
	Filename        string    `json:"filename"`
	FileType        string    `json:"file_type"`
	TotalChunks     int       `json:"total_chunks"`
	TotalWords      int       `json:"total_words"`
	TotalCharacters int       `json:"total_characters"`
	Status          string    `json:"status"`
	UploadedAt      time.Time `json:"uploaded_at"`
}

// Chunk represents a single text chunk produced from a document.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	ChunkIndex int    `json:"chunk_index"`
	Content    string `json:"content"`
	WordCount  int    `json:"word_count"`
	CharCount  int    `json:"char_count"`
}

// SearchResult represents a retrieved chunk with its similarity score.
type SearchResult struct {
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	ChunkIndex int     `json:"chunk_index"`
	Content    string  `json:"content"`
	Score      float32 `json:"score"`
}

// ChunkSource is the truncated source record attached to a chat answer.
type ChunkSource struct {
	Content      string  `json:"content"`
	Filename     string  `json:"filename"`
	DocumentID   string  `json:"document_id"`
	DocumentType string  `json:"document_type"`
	Score        float32 `json:"score"`
}

// QueryMetadata carries diagnostic fields alongside a chat answer.
type QueryMetadata struct {
	ContextChunksFound int    `json:"context_chunks_found"`
	DocumentID         string `json:"document_id,omitempty"`
	QueryType          string `json:"query_type,omitempty"`
	Error              string `json:"error,omitempty"`
}

// QueryResult represents a complete chat answer with sources and metadata.
type QueryResult struct {
	Answer   string        `json:"answer"`
	Sources  []ChunkSource `json:"sources"`
	Metadata QueryMetadata `json:"metadata"`
}

// UploadResult summarizes the outcome of a document ingestion.
type UploadResult struct {
	DocumentID  string `json:"document_id"`
	Filename    string `json:"filename"`
	Status      string `json:"status"`
	TotalChunks int    `json:"total_chunks"`
	TotalWords  int    `json:"total_words"`
	FileSize    int    `json:"file_size"`
	Error       string `json:"error,omitempty"`
}
