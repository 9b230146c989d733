// Package board collects post titles, bodies and comments from the theqoo
// hot board. Extraction is selector-based against rendered HTML; any single
// missing field degrades to its zero value instead of failing the page.
package board

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// TitleEntry is one (title, link) row lifted from a listing page. Batch-local
// and immutable once created.
type TitleEntry struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	PageNum       int    `json:"page_num"`
	CollectedDate string `json:"collected_date"`
}

// Document is the unit of ingested content: post fields, comments and the
// LLM analysis. Serialized wholesale to the audit JSON file and flattened
// into the vector store payload. Immutable once stored.
type Document struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Link          string   `json:"link"`
	PageNum       int      `json:"page_num,omitempty"`
	PostDatetime  string   `json:"post_datetime"`
	Content       string   `json:"content"`
	Comments      []string `json:"comments"`
	CommentsCount int      `json:"comments_count"`
	Analysis      string   `json:"analysis"`
	CollectedDate string   `json:"collected_date"`
}

// DocumentID derives the logical id, e.g. "theqoo_2025-07-21_3".
func DocumentID(date string, seq int) string {
	return fmt.Sprintf("theqoo_%s_%d", date, seq)
}

// DocumentsFilename embeds the collection date for traceability.
func DocumentsFilename(t time.Time) string {
	return fmt.Sprintf("theqoo_documents_%s.json", t.Format("20060102"))
}

// SaveDocuments writes the audit file: a UTF-8 JSON array with human-readable
// indentation.
func SaveDocuments(path string, docs []Document) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("board: marshal documents: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("board: write %s: %w", path, err)
	}
	return nil
}

// LoadDocuments reads a file written by SaveDocuments.
func LoadDocuments(path string) ([]Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("board: read %s: %w", path, err)
	}
	var docs []Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("board: parse %s: %w", path, err)
	}
	return docs, nil
}
