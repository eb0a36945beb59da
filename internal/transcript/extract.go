package transcript

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxNarrationLength bounds how much of a single message is narrated.
// Matches the truncation the narrator has always applied to long messages.
const DefaultMaxNarrationLength = 2000

// Extractor turns parsed entries into narratable text units: assistant text
// content only, in file order, one unit per text item. No merging happens
// across entries; every unit becomes an independent narration request.
type Extractor struct {
	maxLen int
}

// NewExtractor creates an extractor. maxLen <= 0 selects the default limit.
func NewExtractor(maxLen int) *Extractor {
	if maxLen <= 0 {
		maxLen = DefaultMaxNarrationLength
	}
	return &Extractor{maxLen: maxLen}
}

// Extract returns the text units of one poll cycle. A single entry may yield
// zero, one, or several units.
func (x *Extractor) Extract(entries []Entry) []string {
	var units []string
	for _, entry := range entries {
		if !entry.IsAssistant() {
			continue
		}
		for _, item := range entry.Message.Content {
			if item.Type != ContentTypeText {
				continue
			}
			text := strings.TrimSpace(item.Text)
			if text == "" {
				continue
			}
			units = append(units, x.truncate(text))
		}
	}
	return units
}

func (x *Extractor) truncate(text string) string {
	if len(text) <= x.maxLen {
		return text
	}
	cut := x.maxLen
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}
