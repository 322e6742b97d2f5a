package document

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Node types used inside a rich-text document.
const (
	TypeDoc       = "doc"
	TypeParagraph = "paragraph"
	TypeText      = "text"
	TypeHardBreak = "hardBreak"
)

// Inline is a leaf node inside a paragraph (text or hard break).
type Inline struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// Block is a block-level node. Only paragraphs are produced by the
// orchestrator, but unknown block types survive a round trip untouched.
type Block struct {
	Type    string                 `json:"type"`
	Content []Inline               `json:"content,omitempty"`
	Attrs   map[string]interface{} `json:"attrs,omitempty"`
}

// Document is the rich-text structure stored for every section.
// It mirrors the editor format the frontend renders, so what the agent
// saves is exactly what the user sees in the canvas panel.
type Document struct {
	Type    string  `json:"type"`
	Content []Block `json:"content"`
}

// Empty returns a valid document with no content.
func Empty() Document {
	return Document{Type: TypeDoc, Content: []Block{}}
}

// FromPlainText builds a document from plain prose. Each non-empty line
// becomes its own paragraph; blank lines separate paragraphs.
func FromPlainText(text string) Document {
	doc := Empty()
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		doc.Content = append(doc.Content, Block{
			Type:    TypeParagraph,
			Content: []Inline{{Type: TypeText, Text: line}},
		})
	}
	return doc
}

// PlainText projects the document to plain prose for LLM consumption.
// Paragraphs are joined with newlines, hard breaks become newlines.
func (d Document) PlainText() string {
	var sb strings.Builder
	for _, block := range d.Content {
		var para strings.Builder
		for _, inline := range block.Content {
			switch inline.Type {
			case TypeText:
				para.WriteString(inline.Text)
			case TypeHardBreak:
				para.WriteString("\n")
			}
		}
		text := strings.TrimSpace(para.String())
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// IsEmpty reports whether the document projects to no text at all.
// Persistence uses this as the gate for the no-empty-save rule.
func (d Document) IsEmpty() bool {
	return strings.TrimSpace(d.PlainText()) == ""
}

// Parse decodes raw JSON into a Document, validating the envelope.
func Parse(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Empty(), fmt.Errorf("invalid document JSON: %w", err)
	}
	if doc.Type != TypeDoc {
		return Empty(), fmt.Errorf("invalid document root type: %q", doc.Type)
	}
	if doc.Content == nil {
		doc.Content = []Block{}
	}
	return doc, nil
}

// JSON serializes the document. A Document is always serializable;
// the error path exists only for corrupted attrs injected by callers.
func (d Document) JSON() ([]byte, error) {
	return json.Marshal(d)
}
