package core

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase and punctuation stripped",
			input: "What's the cost?",
			want:  "whats the cost",
		},
		{
			name:  "already normalized",
			input: "whats the cost",
			want:  "whats the cost",
		},
		{
			name:  "digits preserved",
			input: "Price of Course 101!",
			want:  "price of course 101",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only punctuation",
			input: "?!...",
			want:  "",
		},
		{
			name:  "spaces preserved",
			input: "hello   world",
			want:  "hello   world",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"What's the cost?",
		"HELLO!!! How are you???",
		"already normalized text",
		"",
		"a1 b2 c3",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q != %q", input, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("what is the price")
	if len(got) != 4 {
		t.Fatalf("Tokens() returned %d tokens, want 4", len(got))
	}
	if got[3] != "price" {
		t.Errorf("Tokens()[3] = %q, want %q", got[3], "price")
	}
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("price price of course")
	if len(set) != 3 {
		t.Errorf("TokenSet() has %d entries, want 3 (duplicates collapsed)", len(set))
	}
	if _, ok := set["course"]; !ok {
		t.Errorf("TokenSet() missing %q", "course")
	}
}
