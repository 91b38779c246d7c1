package musicbrainz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/muzaapp/muza-server/internal/ratelimit"
)

const releaseMBID = "f268b8bc-2768-426b-901b-c7966e76de29"

func newTestCoverArt(t *testing.T, handler http.Handler) *CoverArtClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewCoverArtClient(srv.URL, "MuzaServer/test", time.Second, ratelimit.Noop{}, testLogger())
}

func TestFrontCoverURLPrefersFront(t *testing.T) {
	client := newTestCoverArt(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release/"+releaseMBID {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"images": [
			{"front": false, "image": "https://img.example/back.jpg"},
			{"front": true, "image": "https://img.example/front.jpg"}
		]}`))
	}))

	got, err := client.FrontCoverURL(context.Background(), releaseMBID)
	if err != nil {
		t.Fatalf("FrontCoverURL() error = %v", err)
	}
	if got != "https://img.example/front.jpg" {
		t.Errorf("FrontCoverURL() = %q, want the front image", got)
	}
}

func TestFrontCoverURLFallsBackToFirstImage(t *testing.T) {
	client := newTestCoverArt(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"images": [
			{"front": false, "image": "https://img.example/booklet.jpg"},
			{"front": false, "image": "https://img.example/medium.jpg"}
		]}`))
	}))

	got, err := client.FrontCoverURL(context.Background(), releaseMBID)
	if err != nil {
		t.Fatalf("FrontCoverURL() error = %v", err)
	}
	if got != "https://img.example/booklet.jpg" {
		t.Errorf("FrontCoverURL() = %q, want first image", got)
	}
}

func TestFrontCoverURLNoImages(t *testing.T) {
	client := newTestCoverArt(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"images": []}`))
	}))

	_, err := client.FrontCoverURL(context.Background(), releaseMBID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestFrontCoverURLMissingRelease(t *testing.T) {
	client := newTestCoverArt(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "no cover art found", http.StatusNotFound)
	}))

	_, err := client.FrontCoverURL(context.Background(), releaseMBID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestDownloadCover(t *testing.T) {
	payload := []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3}
	client := newTestCoverArt(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write(payload)
	}))

	data, mime, err := client.DownloadCover(context.Background(), client.baseURL+"/some/image.jpg")
	if err != nil {
		t.Fatalf("DownloadCover() error = %v", err)
	}
	if mime != "image/jpeg" {
		t.Errorf("mime = %q", mime)
	}
	if len(data) != len(payload) {
		t.Errorf("len(data) = %d, want %d", len(data), len(payload))
	}
}
