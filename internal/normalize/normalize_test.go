package normalize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  Miles Davis  ", "Miles Davis"},
		{"strips null bytes", "Miles\x00 Davis\x00", "Miles Davis"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Miles Davis", "miles davis"},
		{"BJÖRK", "bjork"},
		{"Café Tacvba", "cafe tacvba"},
		{"  Kind of Blue ", "kind of blue"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Key(tt.input); got != tt.want {
				t.Errorf("Key(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestEqualFold(t *testing.T) {
	if !EqualFold("Kind Of Blue", "kind of blue") {
		t.Error("case difference should match")
	}
	if !EqualFold("Björk", "bjork") {
		t.Error("accent difference should match")
	}
	if EqualFold("Kind of Blue", "Bitches Brew") {
		t.Error("different titles should not match")
	}
}
