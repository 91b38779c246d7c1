package cache

import (
	"log/slog"
	"testing"
)

type cachedRecording struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func openTestCache(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(t.TempDir(), slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRecordingRoundTrip(t *testing.T) {
	c := openTestCache(t)

	in := cachedRecording{ID: "mbid-1", Title: "So What"}
	c.SetRecording("mbid-1", in)

	var out cachedRecording
	if !c.GetRecording("mbid-1", &out) {
		t.Fatal("GetRecording() = miss, want hit")
	}
	if out != in {
		t.Errorf("got %+v, want %+v", out, in)
	}
}

func TestMissFallsThrough(t *testing.T) {
	c := openTestCache(t)

	var out cachedRecording
	if c.GetRecording("absent", &out) {
		t.Error("GetRecording() = hit for absent key")
	}
}

func TestSearchKeyDependsOnTerms(t *testing.T) {
	c := openTestCache(t)

	c.SetSearch([]string{"So What", "Miles Davis"}, cachedRecording{ID: "a"})

	var out cachedRecording
	if !c.GetSearch([]string{"So What", "Miles Davis"}, &out) {
		t.Fatal("same terms should hit")
	}
	if c.GetSearch([]string{"So What", "John Coltrane"}, &out) {
		t.Error("different terms should miss")
	}
	// Term boundaries matter: ["ab","c"] must not collide with ["a","bc"].
	c.SetSearch([]string{"ab", "c"}, cachedRecording{ID: "x"})
	if c.GetSearch([]string{"a", "bc"}, &out) {
		t.Error("shifted term boundaries should miss")
	}
}

func TestCreditsRoundTrip(t *testing.T) {
	c := openTestCache(t)

	in := []string{"trumpet: Miles Davis", "piano: Bill Evans"}
	c.SetCredits("rel-1", "So What", in)

	var out []string
	if !c.GetCredits("rel-1", "So What", &out) {
		t.Fatal("GetCredits() = miss, want hit")
	}
	if len(out) != 2 || out[0] != in[0] {
		t.Errorf("got %v, want %v", out, in)
	}
}
