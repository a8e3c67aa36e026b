package sanitize

import (
	"testing"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain ascii", "Input: Button 1", "Input: Button 1"},
		{"crlf", "a\r\nb", "a\nb"},
		{"lone cr", "a\rb", "a\nb"},
		{"cr before crlf", "a\r\r\nb", "a\n\nb"},
		{"tabs dropped", "a\tb", "ab"},
		{"control bytes dropped", "\x00\x01Driver\x7f", "Driver"},
		{"non ascii dropped", "café ✓ ok", "caf  ok"},
		{"newline kept", "\n\n", "\n\n"},
		{"empty", "", ""},
		{"only noise", "\x02\x03ÿ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestClean_OutputRange(t *testing.T) {
	var input []rune
	for r := rune(0); r < 400; r++ {
		input = append(input, r)
	}

	got := Clean(string(input))
	for _, r := range got {
		if r != '\n' && (r < 32 || r > 126) {
			t.Fatalf("unexpected rune %U in output", r)
		}
	}
}

func TestClean_StableOrder(t *testing.T) {
	input := "z\x01yéx\tw"
	got := Clean(input)
	if got != "zyxw" {
		t.Errorf("Clean(%q) = %q, want %q", input, got, "zyxw")
	}
}
