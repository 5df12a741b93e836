package transport

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dojolog/dojo/internal/journal"
)

func testSession(uid string) *journal.Session {
	return &journal.Session{
		UID:       uid,
		Date:      "2025-03-10",
		Activity:  journal.ActivityKarate,
		Duration:  60,
		Energy:    4,
		Emphasis:  journal.EmphasisTechnical,
		UpdatedAt: time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2025, 3, 10, 19, 0, 0, 0, time.UTC),
	}
}

func TestPush(t *testing.T) {
	var gotToken, gotAgent string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		gotToken = r.Header.Get("X-Sync-Token")
		gotAgent = r.Header.Get("User-Agent")
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"upserted": 2}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	n, err := c.Push(context.Background(), []*journal.Session{testSession("a"), testSession("b")})
	if err != nil {
		t.Fatalf("Push failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 upserted, got %d", n)
	}
	if gotToken != "secret-token" {
		t.Errorf("token header missing, got %q", gotToken)
	}
	if gotAgent != "dojo-sync/1.0" {
		t.Errorf("unexpected user agent %q", gotAgent)
	}

	var envelope struct {
		Items []map[string]any `json:"items"`
	}
	if err := json.Unmarshal(gotBody, &envelope); err != nil {
		t.Fatalf("push body is not the items envelope: %v", err)
	}
	if len(envelope.Items) != 2 {
		t.Fatalf("expected 2 items in envelope, got %d", len(envelope.Items))
	}
	if del, ok := envelope.Items[0]["deleted"].(float64); !ok || del != 0 {
		t.Errorf("deleted must travel as 0/1, got %v", envelope.Items[0]["deleted"])
	}
}

func TestPull(t *testing.T) {
	var gotSince string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSince = r.URL.Query().Get("since")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"uid":"x","session_date":"2025-03-10","activity_type":"run",
			 "duration_minutes":30,"energy_level":3,"session_emphasis":"physical",
			 "notes":"","deleted":0,
			 "updated_at":"2025-03-10T19:00:00Z","created_at":"2025-03-10T19:00:00Z"},
			{"uid":"y","session_date":"2025-03-09","activity_type":"karate",
			 "duration_minutes":90,"energy_level":4,"session_emphasis":"technical",
			 "notes":"","deleted":1,
			 "updated_at":"2025-03-10T20:00:00Z","created_at":"2025-03-09T18:00:00Z"}
		]`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	items, err := c.Pull(context.Background(), "2025-03-01T00:00:00.000000Z")
	if err != nil {
		t.Fatalf("Pull failed: %v", err)
	}
	if gotSince != "2025-03-01T00:00:00.000000Z" {
		t.Errorf("since parameter not forwarded, got %q", gotSince)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].UID != "x" || items[0].Deleted {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if !items[1].Deleted {
		t.Error("tombstone flag lost on pull")
	}
}

func TestNon2xxIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "wrong")
	if _, err := c.Pull(context.Background(), "x"); err == nil {
		t.Fatal("expected error for 403 response")
	} else if !strings.Contains(err.Error(), "bad token") {
		t.Errorf("error should carry the response body, got: %v", err)
	}
}

func TestNonJSONIsFailure(t *testing.T) {
	// A misconfigured server answering with an HTML error page must be
	// treated as a total phase failure, not parsed optimistically.
	long := strings.Repeat("x", 2000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>" + long + "</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	_, err := c.Push(context.Background(), []*journal.Session{testSession("a")})
	if err == nil {
		t.Fatal("expected error for non-JSON response")
	}
	if len(err.Error()) > 700 {
		t.Errorf("error body not truncated: %d chars", len(err.Error()))
	}
}

func TestMalformedJSONIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"upserted": `))
	}))
	defer srv.Close()

	c := New(srv.URL, "token")
	if _, err := c.Push(context.Background(), []*journal.Session{testSession("a")}); err == nil {
		t.Fatal("expected error for truncated JSON")
	}
}
