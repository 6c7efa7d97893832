package llm

import (
	"testing"

	"google.golang.org/genai"
)

func TestGeminiModelMapping(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"gemini-flash", "gemini-2.0-flash"},
		{"gemini-pro", "gemini-2.0-pro"},
		{"gemini-2.5-flash", "gemini-2.5-flash"},
	}
	for _, tt := range tests {
		if got := resolveModel(tt.input, geminiModels); got != tt.expected {
			t.Errorf("resolveModel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overall": map[string]any{"type": "string", "description": "summary"},
			"score":   map[string]any{"type": "integer", "minimum": 0.0, "maximum": 10.0},
			"verdict": map[string]any{"type": "string", "enum": []any{"hire", "no-hire"}},
			"answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":       "object",
					"properties": map[string]any{"number": map[string]any{"type": "integer"}},
				},
			},
		},
		"required": []any{"overall", "score"},
	}

	s := geminiSchema(def)

	if s.Type != genai.TypeObject {
		t.Fatalf("expected OBJECT, got %s", s.Type)
	}
	if len(s.Properties) != 4 {
		t.Fatalf("expected 4 properties, got %d", len(s.Properties))
	}
	if s.Properties["overall"].Description != "summary" {
		t.Fatalf("description not carried over")
	}
	score := s.Properties["score"]
	if score.Type != genai.TypeInteger || score.Minimum == nil || *score.Maximum != 10 {
		t.Fatalf("unexpected score schema: %+v", score)
	}
	if len(s.Properties["verdict"].Enum) != 2 {
		t.Fatalf("expected 2 enum values")
	}
	items := s.Properties["answers"].Items
	if items == nil || items.Properties["number"].Type != genai.TypeInteger {
		t.Fatalf("nested items not converted: %+v", items)
	}
	if len(s.Required) != 2 {
		t.Fatalf("expected 2 required fields, got %d", len(s.Required))
	}
}

func TestGeminiSchema_UnknownTypeFallsBackToString(t *testing.T) {
	if s := geminiSchema(map[string]any{"type": "null"}); s.Type != genai.TypeString {
		t.Fatalf("expected STRING fallback, got %s", s.Type)
	}
}
