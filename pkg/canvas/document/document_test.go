package document

import (
	"testing"
)

func TestFromPlainTextAndBack(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantBlocks int
		wantText   string
	}{
		{
			name:       "single line",
			input:      "My client is Dana.",
			wantBlocks: 1,
			wantText:   "My client is Dana.",
		},
		{
			name:       "multi line",
			input:      "pain_1: no leads\npain_2: no time",
			wantBlocks: 2,
			wantText:   "pain_1: no leads\npain_2: no time",
		},
		{
			name:       "blank lines dropped",
			input:      "first\n\n\nsecond",
			wantBlocks: 2,
			wantText:   "first\nsecond",
		},
		{
			name:       "whitespace only",
			input:      "   \n\t\n",
			wantBlocks: 0,
			wantText:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := FromPlainText(tt.input)
			if got := len(doc.Content); got != tt.wantBlocks {
				t.Errorf("block count = %d, want %d", got, tt.wantBlocks)
			}
			if got := doc.PlainText(); got != tt.wantText {
				t.Errorf("PlainText() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestIsEmpty(t *testing.T) {
	if !Empty().IsEmpty() {
		t.Error("Empty() should be empty")
	}
	if !FromPlainText("  \n ").IsEmpty() {
		t.Error("whitespace-only document should be empty")
	}
	if FromPlainText("content").IsEmpty() {
		t.Error("document with text should not be empty")
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantErr  bool
		wantText string
	}{
		{
			name:     "valid document",
			raw:      `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hello"}]}]}`,
			wantText: "hello",
		},
		{
			name: "hard break becomes newline",
			raw: `{"type":"doc","content":[{"type":"paragraph","content":[` +
				`{"type":"text","text":"a"},{"type":"hardBreak"},{"type":"text","text":"b"}]}]}`,
			wantText: "a\nb",
		},
		{
			name:     "null content normalized",
			raw:      `{"type":"doc"}`,
			wantText: "",
		},
		{
			name:    "wrong root type",
			raw:     `{"type":"paragraph","content":[]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			raw:     `this is prose`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Parse([]byte(tt.raw))
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if doc.Content == nil {
				t.Error("parsed content should never be nil")
			}
			if got := doc.PlainText(); got != tt.wantText {
				t.Errorf("PlainText() = %q, want %q", got, tt.wantText)
			}
		})
	}
}

func TestJSONRoundTrip(t *testing.T) {
	original := FromPlainText("line one\nline two")
	raw, err := original.JSON()
	if err != nil {
		t.Fatalf("JSON() error: %v", err)
	}
	parsed, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if parsed.PlainText() != original.PlainText() {
		t.Errorf("round trip changed text: %q -> %q", original.PlainText(), parsed.PlainText())
	}
}
