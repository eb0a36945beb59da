// Package transcript reads coding-assistant conversation logs incrementally
// and extracts the text worth narrating.
package transcript

import (
	"bytes"
	"encoding/json"
)

// Entry type and content item kinds recognized in transcript lines. Anything
// else passes through parsing untouched and is filtered out downstream.
const (
	EntryTypeAssistant = "assistant"
	ContentTypeText    = "text"
)

// Entry is one parsed line of a JSONL transcript file.
type Entry struct {
	Type    string  `json:"type"`
	Message Message `json:"message"`
}

// Message holds the ordered content items of one entry.
type Message struct {
	Content []ContentItem `json:"content"`
}

// ContentItem is a single piece of message content. Only text items carry a
// narratable payload.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// IsAssistant reports whether the entry was authored by the assistant.
func (e Entry) IsAssistant() bool {
	return e.Type == EntryTypeAssistant
}

// ParseEntry parses a single transcript line. Blank lines and lines that are
// not valid JSON objects yield ok=false; they are skipped, never fatal.
func ParseEntry(line []byte) (Entry, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Entry{}, false
	}

	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}
