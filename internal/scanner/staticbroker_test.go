package scanner

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rank127/datascrub-pro-sub004/internal/model"
)

const listingPage = `<html><body>
<div class="results">
  <a href="/person/jane-doe-portland">Jane Doe, 36, Portland, OR</a>
  <a href="/person/jane-a-doe-salem">Jane A Doe, 41, Salem, OR</a>
  <a href="/about">About us</a>
  <a href="#top">Back to top</a>
</div>
</body></html>`

// TestStaticBrokerSearch tests HTML listing extraction and outcome
// classification against an httptest server.
func TestStaticBrokerSearch(t *testing.T) {
	t.Parallel()

	t.Run("parses listings into hits", func(t *testing.T) {
		t.Parallel()

		var gotQuery string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotQuery = r.URL.Query().Get("name")
			w.Write([]byte(listingPage))
		}))
		defer srv.Close()

		s := NewStaticBroker(srv.Client(), "spokeo", "Spokeo", srv.URL+"/search")
		hits, out := s.Search(context.Background(), testIdentity())

		if gotQuery != "Jane Doe" {
			t.Errorf("expected name query, got %q", gotQuery)
		}
		if out.Status != model.OutcomeSuccess {
			t.Fatalf("expected SUCCESS, got %q (%s)", out.Status, out.ErrorDetail)
		}
		if out.ResultCount != 2 || len(hits) != 2 {
			t.Fatalf("expected 2 hits, got %d (count %d)", len(hits), out.ResultCount)
		}

		first := hits[0]
		if first.Source != "spokeo" || first.SourceName != "Spokeo" {
			t.Errorf("hit identity wrong: %+v", first)
		}
		if first.DataPreview != "Jane Doe, 36, Portland, OR" {
			t.Errorf("unexpected preview %q", first.DataPreview)
		}
		if first.URL != srv.URL+"/person/jane-doe-portland" {
			t.Errorf("unexpected URL %q", first.URL)
		}
		if first.MatchedFields["city"] != "Portland" {
			t.Errorf("expected city matched field, got %v", first.MatchedFields)
		}
		if first.DataType != model.DataTypeProfile {
			t.Errorf("expected profile data type, got %q", first.DataType)
		}
	})

	t.Run("no listings is EMPTY", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html><body><p>No results found.</p></body></html>"))
		}))
		defer srv.Close()

		s := NewStaticBroker(srv.Client(), "spokeo", "Spokeo", srv.URL+"/search")
		hits, out := s.Search(context.Background(), testIdentity())

		if out.Status != model.OutcomeEmpty {
			t.Errorf("expected EMPTY, got %q", out.Status)
		}
		if len(hits) != 0 {
			t.Errorf("expected no hits, got %d", len(hits))
		}
	})

	t.Run("429 is BLOCKED", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer srv.Close()

		s := NewStaticBroker(srv.Client(), "spokeo", "Spokeo", srv.URL+"/search")
		_, out := s.Search(context.Background(), testIdentity())

		if out.Status != model.OutcomeBlocked {
			t.Errorf("expected BLOCKED, got %q", out.Status)
		}
		if out.HTTPStatus != http.StatusTooManyRequests {
			t.Errorf("expected 429 recorded, got %d", out.HTTPStatus)
		}
	})

	t.Run("captcha interstitial with 200 is BLOCKED", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte("<html><body>Please complete the CAPTCHA to continue.</body></html>"))
		}))
		defer srv.Close()

		s := NewStaticBroker(srv.Client(), "spokeo", "Spokeo", srv.URL+"/search")
		_, out := s.Search(context.Background(), testIdentity())

		if out.Status != model.OutcomeBlocked {
			t.Errorf("expected BLOCKED, got %q", out.Status)
		}
	})

	t.Run("unreachable source is ERROR not panic", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		srv.Close() // closed before use

		s := NewStaticBroker(http.DefaultClient, "spokeo", "Spokeo", srv.URL+"/search")
		_, out := s.Search(context.Background(), testIdentity())

		if out.Status != model.OutcomeError {
			t.Errorf("expected ERROR, got %q", out.Status)
		}
		if out.ErrorDetail == "" {
			t.Error("expected an error classification")
		}
	})

	t.Run("extra headers are sent", func(t *testing.T) {
		t.Parallel()

		var gotToken string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotToken = r.Header.Get("X-Partner-Token")
			w.Write([]byte(listingPage))
		}))
		defer srv.Close()

		s := NewStaticBroker(srv.Client(), "spokeo", "Spokeo", srv.URL+"/search",
			WithHeaders(map[string]string{"X-Partner-Token": "abc123"}),
		)
		s.Search(context.Background(), testIdentity())

		if gotToken != "abc123" {
			t.Errorf("expected partner token header, got %q", gotToken)
		}
	})
}
