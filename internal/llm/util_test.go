package llm

import (
	"testing"
	"unicode/utf8"
)

func TestCleanJSONBlock_MarkdownCodeBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "code block with language",
			input:    "```javascript\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestCleanJSONBlock_PreambleText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "preamble before JSON object",
			input:    "As requested, here is the JSON:\n{\"document_type\": \"project\"}",
			expected: `{"document_type": "project"}`,
		},
		{
			name:     "preamble before JSON array",
			input:    "Here are the insights:\n[\"insight one\", \"insight two\"]",
			expected: `["insight one", "insight two"]`,
		},
		{
			name:     "JSON with trailing text",
			input:    "{\"key\": \"value\"}\n\nLet me know if you need anything else!",
			expected: `{"key": "value"}`,
		},
		{
			name:     "nested objects",
			input:    "Output:\n{\"outer\": {\"inner\": \"value\"}}",
			expected: `{"outer": {"inner": "value"}}`,
		},
		{
			name:     "JSON with escaped quotes",
			input:    "Result: {\"reason\": \"titled \\\"Q3 plan\\\"\"}",
			expected: `{"reason": "titled \"Q3 plan\""}`,
		},
		{
			name:     "braces inside string values",
			input:    `{"template": "Hello {name}!"}`,
			expected: `{"template": "Hello {name}!"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJSONBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJSONBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple object",
			input:    `{"key": "value"}`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "object with array",
			input:    `{"items": [1, 2, 3]}`,
			expected: `{"items": [1, 2, 3]}`,
		},
		{
			name:     "object with trailing text",
			input:    `{"key": "value"} and some more text`,
			expected: `{"key": "value"}`,
		},
		{
			name:     "unbalanced braces",
			input:    `{"key": "value"`,
			expected: "",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
		{
			name:     "not starting with brace",
			input:    "not json",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractJSONObject(tt.input)
			if result != tt.expected {
				t.Errorf("extractJSONObject() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		max      int
		expected string
	}{
		{
			name:     "under the cap",
			input:    "short",
			max:      10,
			expected: "short",
		},
		{
			name:     "exactly at the cap",
			input:    "exact",
			max:      5,
			expected: "exact",
		},
		{
			name:     "ascii over the cap",
			input:    "truncate me",
			max:      8,
			expected: "truncate",
		},
		{
			name:     "cap lands inside a multibyte rune",
			input:    "ab世界", // 2 + 3 + 3 bytes
			max:      4,
			expected: "ab",
		},
		{
			name:     "cap lands on a rune boundary",
			input:    "ab世界",
			max:      5,
			expected: "ab世",
		},
		{
			name:     "non-positive cap leaves text alone",
			input:    "anything",
			max:      0,
			expected: "anything",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TruncateText(tt.input, tt.max)
			if result != tt.expected {
				t.Errorf("TruncateText() = %q, want %q", result, tt.expected)
			}
			if !utf8.ValidString(result) {
				t.Errorf("TruncateText() produced invalid UTF-8: %q", result)
			}
		})
	}
}
