package photosite

import (
	"strings"
	"testing"
)

func TestConsoleAsker(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"n\n", false},
		{"  y  \n", true},
		{"maybe\nY\ny\n", true}, // reprompts until exactly y or n
	}
	for _, tt := range tests {
		var out strings.Builder
		a := NewConsoleAsker(strings.NewReader(tt.input), &out)
		got, err := a.Ask("allow #birds?")
		if err != nil {
			t.Fatalf("Ask(%q) failed: %v", tt.input, err)
		}
		if got != tt.want {
			t.Errorf("Ask(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if !strings.Contains(out.String(), "allow #birds? y/n") {
			t.Errorf("prompt missing from output: %q", out.String())
		}
	}
}

func TestConsoleAskerEOF(t *testing.T) {
	a := NewConsoleAsker(strings.NewReader(""), &strings.Builder{})
	if _, err := a.Ask("allow #birds?"); err == nil {
		t.Error("Ask should fail when input runs out")
	}
}
