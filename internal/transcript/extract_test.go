package transcript

import (
	"strings"
	"testing"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		wantOK bool
		want   Entry
	}{
		{
			name:   "assistant text",
			line:   `{"type":"assistant","message":{"content":[{"type":"text","text":"hello"}]}}`,
			wantOK: true,
			want: Entry{
				Type:    "assistant",
				Message: Message{Content: []ContentItem{{Type: "text", Text: "hello"}}},
			},
		},
		{
			name:   "user entry parses too",
			line:   `{"type":"user","message":{"content":[]}}`,
			wantOK: true,
			want:   Entry{Type: "user", Message: Message{Content: []ContentItem{}}},
		},
		{
			name:   "unknown fields ignored",
			line:   `{"type":"assistant","uuid":"abc","message":{"content":[{"type":"text","text":"hi"}]}}`,
			wantOK: true,
			want: Entry{
				Type:    "assistant",
				Message: Message{Content: []ContentItem{{Type: "text", Text: "hi"}}},
			},
		},
		{name: "blank line", line: "   ", wantOK: false},
		{name: "not json", line: "definitely not json", wantOK: false},
		{name: "truncated json", line: `{"type":"assis`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEntry([]byte(tt.line))
			if ok != tt.wantOK {
				t.Fatalf("ParseEntry() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Type != tt.want.Type {
				t.Errorf("Type = %q, want %q", got.Type, tt.want.Type)
			}
			if len(got.Message.Content) != len(tt.want.Message.Content) {
				t.Fatalf("content length = %d, want %d", len(got.Message.Content), len(tt.want.Message.Content))
			}
			for i, item := range got.Message.Content {
				if item != tt.want.Message.Content[i] {
					t.Errorf("content[%d] = %+v, want %+v", i, item, tt.want.Message.Content[i])
				}
			}
		})
	}
}

func TestExtract(t *testing.T) {
	assistant := func(items ...ContentItem) Entry {
		return Entry{Type: EntryTypeAssistant, Message: Message{Content: items}}
	}
	text := func(s string) ContentItem { return ContentItem{Type: ContentTypeText, Text: s} }

	tests := []struct {
		name    string
		entries []Entry
		want    []string
	}{
		{
			name:    "single text item",
			entries: []Entry{assistant(text("hello world"))},
			want:    []string{"hello world"},
		},
		{
			name:    "non-assistant filtered",
			entries: []Entry{{Type: "user", Message: Message{Content: []ContentItem{text("nope")}}}},
			want:    nil,
		},
		{
			name:    "tool use filtered",
			entries: []Entry{assistant(ContentItem{Type: "tool_use"}, text("after the tool"))},
			want:    []string{"after the tool"},
		},
		{
			name:    "whitespace only filtered",
			entries: []Entry{assistant(text("  \n\t "))},
			want:    nil,
		},
		{
			name:    "surrounding whitespace trimmed",
			entries: []Entry{assistant(text("  padded  "))},
			want:    []string{"padded"},
		},
		{
			name: "multiple items stay separate units",
			entries: []Entry{
				assistant(text("first"), text("second")),
				assistant(text("third")),
			},
			want: []string{"first", "second", "third"},
		},
	}

	x := NewExtractor(0)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := x.Extract(tt.entries)
			if len(got) != len(tt.want) {
				t.Fatalf("Extract() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("unit[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExtractTruncation(t *testing.T) {
	x := NewExtractor(10)

	long := strings.Repeat("a", 50)
	got := x.Extract([]Entry{{
		Type:    EntryTypeAssistant,
		Message: Message{Content: []ContentItem{{Type: ContentTypeText, Text: long}}},
	}})
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d units, want 1", len(got))
	}
	if want := strings.Repeat("a", 10) + "..."; got[0] != want {
		t.Errorf("truncated = %q, want %q", got[0], want)
	}
}

func TestExtractTruncationRuneBoundary(t *testing.T) {
	// The cut point lands inside the multi-byte rune; truncation must back up
	// to the rune start instead of emitting invalid UTF-8.
	x := NewExtractor(5)

	got := x.Extract([]Entry{{
		Type:    EntryTypeAssistant,
		Message: Message{Content: []ContentItem{{Type: ContentTypeText, Text: "abcd€xyz"}}},
	}})
	if len(got) != 1 {
		t.Fatalf("Extract() returned %d units, want 1", len(got))
	}
	if want := "abcd..."; got[0] != want {
		t.Errorf("truncated = %q, want %q", got[0], want)
	}
}
