package musicbrainz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/muzaapp/muza-server/internal/errors"
	"github.com/muzaapp/muza-server/internal/ratelimit"
)

// instantSleeper records requested delays without waiting.
type instantSleeper struct {
	delays []time.Duration
}

func (s *instantSleeper) Sleep(_ context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *instantSleeper) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sleeper := &instantSleeper{}
	client := New(Config{
		BaseURL:        srv.URL,
		UserAgent:      "MuzaServer/test",
		RetryAttempts:  3,
		RetryBaseDelay: time.Second,
		RetryMaxDelay:  10 * time.Second,
	}, ratelimit.Noop{}, testLogger(), WithSleeper(sleeper))
	return client, sleeper
}

const recordingJSON = `{
	"id": "d950afc5-0e06-4a91-b0b8-53d90b8e6232",
	"title": "So What",
	"length": 562000,
	"first-release-date": "1959-08-17",
	"artist-credit": [
		{"name": "Miles Davis", "artist": {"id": "561d854a-6a28-4aa7-8c99-323e6ce46c2a", "name": "Miles Davis"}}
	],
	"releases": [
		{"id": "f268b8bc-2768-426b-901b-c7966e76de29", "title": "Kind of Blue", "date": "1959-08-17", "status": "Official"}
	],
	"tags": [{"name": "jazz", "count": 12}]
}`

func TestLookupRecording(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording/d950afc5-0e06-4a91-b0b8-53d90b8e6232" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("fmt"); got != "json" {
			t.Errorf("fmt = %q, want json", got)
		}
		if got := r.URL.Query().Get("inc"); got != "artist-credits+releases+tags" {
			t.Errorf("inc = %q", got)
		}
		if got := r.Header.Get("User-Agent"); got != "MuzaServer/test" {
			t.Errorf("User-Agent = %q", got)
		}
		w.Write([]byte(recordingJSON))
	}))

	rec, err := client.LookupRecording(context.Background(), "d950afc5-0e06-4a91-b0b8-53d90b8e6232")
	if err != nil {
		t.Fatalf("LookupRecording() error = %v", err)
	}
	if rec.Title != "So What" {
		t.Errorf("Title = %q", rec.Title)
	}
	if got := rec.CreditedArtist().Name; got != "Miles Davis" {
		t.Errorf("CreditedArtist().Name = %q", got)
	}
	if len(rec.Releases) != 1 || rec.Releases[0].Title != "Kind of Blue" {
		t.Errorf("Releases = %+v", rec.Releases)
	}
	if rec.Releases[0].Year() != 1959 {
		t.Errorf("Year() = %d, want 1959", rec.Releases[0].Year())
	}
}

func TestLookupRecordingNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))

	_, err := client.LookupRecording(context.Background(), "d950afc5-0e06-4a91-b0b8-53d90b8e6232")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLookupRecordingRejectsInvalidMBID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("request should not reach the server, got %s", r.URL.Path)
	}))

	_, err := client.LookupRecording(context.Background(), "not-a-uuid")
	if !errors.Is(err, ErrInvalidMBID) {
		t.Errorf("error = %v, want ErrInvalidMBID", err)
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	client, sleeper := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(recordingJSON))
	}))

	_, err := client.LookupRecording(context.Background(), "d950afc5-0e06-4a91-b0b8-53d90b8e6232")
	if err != nil {
		t.Fatalf("LookupRecording() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	// Exponential backoff: 1s then 2s.
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(sleeper.delays) != len(want) {
		t.Fatalf("delays = %v, want %v", sleeper.delays, want)
	}
	for i := range want {
		if sleeper.delays[i] != want[i] {
			t.Errorf("delay[%d] = %v, want %v", i, sleeper.delays[i], want[i])
		}
	}
}

func TestRetriesExhausted(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "down", http.StatusInternalServerError)
	}))

	_, err := client.LookupRecording(context.Background(), "d950afc5-0e06-4a91-b0b8-53d90b8e6232")
	if !errors.Is(err, ErrServer) {
		t.Errorf("error = %v, want ErrServer", err)
	}
	var coded *apperrors.Error
	if !errors.As(err, &coded) || coded.Code != apperrors.CodeServiceUnavailable {
		t.Errorf("error = %v, want coded SERVICE_UNAVAILABLE after exhausted retries", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3 attempts", calls)
	}
}

func TestNotFoundIsNotRetried(t *testing.T) {
	var calls int
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "gone", http.StatusNotFound)
	}))

	_, err := client.LookupRecording(context.Background(), "d950afc5-0e06-4a91-b0b8-53d90b8e6232")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestSearchRecordings(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/recording" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		wantQuery := `recording:"So What" AND artist:"Miles Davis"`
		if got := r.URL.Query().Get("query"); got != wantQuery {
			t.Errorf("query = %q, want %q", got, wantQuery)
		}
		if got := r.URL.Query().Get("limit"); got != "5" {
			t.Errorf("limit = %q, want 5", got)
		}
		w.Write([]byte(`{"count": 1, "offset": 0, "recordings": [` + recordingJSON + `]}`))
	}))

	recs, err := client.SearchRecordings(context.Background(), "So What", "Miles Davis")
	if err != nil {
		t.Fatalf("SearchRecordings() error = %v", err)
	}
	if len(recs) != 1 || recs[0].Title != "So What" {
		t.Errorf("recordings = %+v", recs)
	}
}

func TestSearchRecordingsEmptyResult(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"count": 0, "offset": 0, "recordings": []}`))
	}))

	recs, err := client.SearchRecordings(context.Background(), "Nothing", "Nobody")
	if err != nil {
		t.Fatalf("SearchRecordings() error = %v", err)
	}
	if len(recs) != 0 {
		t.Errorf("recordings = %+v, want empty", recs)
	}
}

func TestSearchReleases(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/release" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		wantQuery := `release:"Kind of Blue" AND artist:"Miles Davis"`
		if got := r.URL.Query().Get("query"); got != wantQuery {
			t.Errorf("query = %q, want %q", got, wantQuery)
		}
		w.Write([]byte(`{"count": 1, "offset": 0, "releases": [
			{"id": "f268b8bc-2768-426b-901b-c7966e76de29", "title": "Kind of Blue",
			 "date": "1959-08-17", "label-info": [{"label": {"name": "Columbia"}}]}
		]}`))
	}))

	rels, err := client.SearchReleases(context.Background(), "Miles Davis", "Kind of Blue")
	if err != nil {
		t.Fatalf("SearchReleases() error = %v", err)
	}
	if len(rels) != 1 {
		t.Fatalf("releases = %+v", rels)
	}
	if got := rels[0].LabelName(); got != "Columbia" {
		t.Errorf("LabelName() = %q, want Columbia", got)
	}
}

func TestLuceneQueryEscaping(t *testing.T) {
	tests := []struct {
		name   string
		fields map[string]string
		want   string
	}{
		{
			name:   "plain",
			fields: map[string]string{"recording": "So What", "artist": "Miles Davis"},
			want:   `recording:"So What" AND artist:"Miles Davis"`,
		},
		{
			name:   "embedded quotes",
			fields: map[string]string{"recording": `The "One"`},
			want:   `recording:"The \"One\""`,
		},
		{
			name:   "empty field skipped",
			fields: map[string]string{"recording": "So What", "artist": ""},
			want:   `recording:"So What"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := luceneQuery(tt.fields); got != tt.want {
				t.Errorf("luceneQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	base, max := time.Second, 10*time.Second
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second}, // capped
		{8, 10 * time.Second},
	}
	for _, tt := range tests {
		if got := backoffDelay(tt.attempt, base, max); got != tt.want {
			t.Errorf("backoffDelay(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
