package textfilter

import (
	"testing"
)

func TestFilter_Clean(t *testing.T) {
	f := New()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple replacement",
			input:    "What the hell is going on?",
			expected: "What the heck is going on?",
		},
		{
			name:     "multiple words",
			input:    "This damn printer is crap!",
			expected: "This darn printer is nonsense!",
		},
		{
			name:     "uppercase preserved",
			input:    "DAMN that meeting ran long",
			expected: "DARN that meeting ran long",
		},
		{
			name:     "title case preserved",
			input:    "Hell no, not another standup",
			expected: "Heck no, not another standup",
		},
		{
			name:     "compound word replaced whole",
			input:    "That is bullshit",
			expected: "That is baloney",
		},
		{
			name:     "partial matches untouched",
			input:    "The classic assessment passed",
			expected: "The classic assessment passed",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilter_ContainsProfanity(t *testing.T) {
	f := New()
	if !f.ContainsProfanity("well DAMN") {
		t.Error("expected profanity to be detected")
	}
	if f.ContainsProfanity("the class assembled") {
		t.Error("expected no profanity in clean text")
	}
}

func TestFilter_ExpandContractions(t *testing.T) {
	f := New()

	tests := []struct {
		input    string
		expected string
	}{
		{"I'm sure it's fine", "I am sure it is fine"},
		{"We can't ship that", "We cannot ship that"},
		{"Don't worry", "Do not worry"},
		{"gonna grab coffee", "going to grab coffee"},
		{"THAT'S urgent", "THAT IS urgent"},
		{"Nothing to expand.", "Nothing to expand."},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := f.ExpandContractions(tt.input); got != tt.expected {
				t.Errorf("ExpandContractions(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFilter_Formalize(t *testing.T) {
	f := New()
	got := f.Formalize("Damn, I can't find the report")
	want := "Darn, I cannot find the report"
	if got != want {
		t.Errorf("Formalize = %q, want %q", got, want)
	}
}

func TestUpperFirst(t *testing.T) {
	tests := map[string]string{
		"hello":      "Hello",
		"...well ok": "...Well ok",
		"":           "",
		"Already":    "Already",
	}
	for in, want := range tests {
		if got := UpperFirst(in); got != want {
			t.Errorf("UpperFirst(%q) = %q, want %q", in, got, want)
		}
	}
}
