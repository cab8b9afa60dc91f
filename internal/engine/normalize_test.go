package engine

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases",
			input:    "BELLO",
			expected: "bello",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  mangiare \t",
			expected: "mangiare",
		},
		{
			name:     "strips diacritics",
			input:    "più",
			expected: "piu",
		},
		{
			name:     "case and diacritics together",
			input:    " PERCHÉ ",
			expected: "perche",
		},
		{
			name:     "whitespace only normalizes to empty",
			input:    "   ",
			expected: "",
		},
		{
			name:     "interior whitespace preserved",
			input:    "fare colazione",
			expected: "fare colazione",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Normalize(tt.input)
			if result != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"", " PIÙ ", "perché", "Città", "fare colazione", "ÀÈÌÒÙ"}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize(Normalize(%q)) = %q, want %q", input, twice, once)
		}
	}
}

func TestValidateAnswer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		answer   string
		expected bool
	}{
		{
			name:     "case and diacritic insensitive match",
			input:    " PIÙ ",
			answer:   "piu",
			expected: true,
		},
		{
			name:     "different words do not match",
			input:    "bello",
			answer:   "brutto",
			expected: false,
		},
		{
			name:     "two empty strings are equal",
			input:    "",
			answer:   "",
			expected: true,
		},
		{
			name:     "empty input does not match an answer",
			input:    "",
			answer:   "bello",
			expected: false,
		},
		{
			name:     "whitespace only equals empty answer",
			input:    "   ",
			answer:   "",
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateAnswer(tt.input, tt.answer)
			if result != tt.expected {
				t.Errorf("ValidateAnswer(%q, %q) = %v, want %v", tt.input, tt.answer, result, tt.expected)
			}
		})
	}
}
