package fda

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "")
}

func TestLookupBrandName(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drug/label.json" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("search"); got != `openfda.brand_name:"Advil"` {
			t.Errorf("search = %q", got)
		}
		if r.URL.Query().Get("limit") != "1" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`{"results":[{"warnings":["Allergy alert: ibuprofen may cause a severe allergic reaction"],"adverse_reactions":["nausea"]}]}`))
	})

	got, err := c.Lookup(context.Background(), " Advil ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Drug != "Advil" || got.MatchedOn != "brand_name" {
		t.Errorf("got %+v", got)
	}
	if got.Warnings != "Allergy alert: ibuprofen may cause a severe allergic reaction" {
		t.Errorf("Warnings = %q", got.Warnings)
	}
	if got.BoxedWarning != NoBoxedWarning {
		t.Errorf("BoxedWarning = %q", got.BoxedWarning)
	}
	if got.AdverseReactions != "nausea" {
		t.Errorf("AdverseReactions = %q", got.AdverseReactions)
	}
}

func TestLookupFallsBackToGenericName(t *testing.T) {
	var searches []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		search := r.URL.Query().Get("search")
		searches = append(searches, search)
		if search == `openfda.brand_name:"Paracetamol"` {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":{"code":"NOT_FOUND","message":"No matches found!"}}`))
			return
		}
		w.Write([]byte(`{"results":[{"boxed_warning":["Hepatotoxicity"]}]}`))
	})

	got, err := c.Lookup(context.Background(), "Paracetamol")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.MatchedOn != "generic_name" || got.BoxedWarning != "Hepatotoxicity" || got.Warnings != NoWarnings {
		t.Errorf("got %+v", got)
	}
	if len(searches) != 2 {
		t.Errorf("searches = %v", searches)
	}
}

func TestLookupNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := c.Lookup(context.Background(), "Notadrug")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"code":"OVER_RATE_LIMIT","message":"API rate limit exceeded"}}`))
	})

	_, err := c.Lookup(context.Background(), "Advil")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusTooManyRequests || apiErr.Message != "API rate limit exceeded" {
		t.Errorf("got %+v", apiErr)
	}
}

func TestLookupSendsAPIKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "secret" {
			t.Errorf("api_key = %q", r.URL.Query().Get("api_key"))
		}
		w.Write([]byte(`{"results":[{}]}`))
	}))
	defer srv.Close()

	got, err := NewClient(srv.URL+"/", "secret").Lookup(context.Background(), "Advil")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Warnings != NoWarnings || got.AdverseReactions != NoAdverseReactions {
		t.Errorf("got %+v", got)
	}
}

func TestLookupRequiresName(t *testing.T) {
	if _, err := (&Client{}).Lookup(context.Background(), "  "); err == nil {
		t.Fatal("expected error for blank name")
	}
}
