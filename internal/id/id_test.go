package id

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	got, err := Generate(PrefixTrack)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(got, "trk-") {
		t.Errorf("Generate() = %q, want trk- prefix", got)
	}
	// prefix + dash + 21 character nanoid
	if len(got) != len(PrefixTrack)+1+21 {
		t.Errorf("Generate() length = %d, want %d", len(got), len(PrefixTrack)+1+21)
	}
}

func TestGenerateUnique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := NewArtistID()
		if seen[id] {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestEntityConstructors(t *testing.T) {
	tests := []struct {
		name   string
		gen    func() string
		prefix string
	}{
		{"artist", NewArtistID, "art-"},
		{"album", NewAlbumID, "alb-"},
		{"track", NewTrackID, "trk-"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.gen(); !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("got %q, want %q prefix", got, tt.prefix)
			}
		})
	}
}
