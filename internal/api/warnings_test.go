package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/fda"
	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/storage"
)

type fakeWarnings struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeWarnings) Lookup(ctx context.Context, drug string) (*fda.DrugWarnings, error) {
	f.mu.Lock()
	f.calls = append(f.calls, drug)
	f.mu.Unlock()

	switch drug {
	case "Advil":
		return &fda.DrugWarnings{Drug: drug, MatchedOn: "brand_name", Warnings: "Stomach bleeding warning", BoxedWarning: fda.NoBoxedWarning, AdverseReactions: fda.NoAdverseReactions}, nil
	case "Unknownium":
		return nil, fda.ErrNotFound
	default:
		return nil, errors.New("openFDA request failed: connection refused")
	}
}

func newWarningsServer(t *testing.T, w WarningsLookup, meds []models.Medication) (http.Handler, string) {
	t.Helper()
	store := storage.NewMemoryStore(time.Hour)
	sess := &storage.Session{ID: "sess-w", Medications: &models.MedicationResponse{Medications: meds}}
	if err := store.Save(context.Background(), sess); err != nil {
		t.Fatal(err)
	}
	h := &Handler{Pipeline: &fakeProcessor{}, Store: store, Warnings: w}
	return NewRouter(h, RouterConfig{AllowedOrigins: "*"}), sess.ID
}

func TestGetWarnings(t *testing.T) {
	lookup := &fakeWarnings{}
	router, id := newWarningsServer(t, lookup, []models.Medication{
		{MedicationName: "Advil"},
		{MedicationName: "advil"},
		{MedicationName: "Unknownium"},
		{MedicationName: "Flakyol"},
		{MedicationName: " "},
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/"+id+"/warnings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	rows := decode(t, rec)["warnings"].([]interface{})
	if len(rows) != 3 || len(lookup.calls) != 3 {
		t.Fatalf("rows = %v, calls = %v", rows, lookup.calls)
	}

	advil := rows[0].(map[string]interface{})
	if advil["drug"] != "Advil" || advil["warnings"] != "Stomach bleeding warning" || advil["error"] != nil {
		t.Errorf("advil row = %v", advil)
	}
	missing := rows[1].(map[string]interface{})
	if missing["drug"] != "Unknownium" || missing["error"] != fda.ErrNotFound.Error() {
		t.Errorf("not found row = %v", missing)
	}
	failed := rows[2].(map[string]interface{})
	if failed["drug"] != "Flakyol" || failed["error"] == nil || failed["warnings"] != nil {
		t.Errorf("failed row = %v", failed)
	}
}

func TestGetWarningsThroughFDAClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[{"warnings":["Do not exceed 4 g per day"]}]}`))
	}))
	defer srv.Close()

	router, id := newWarningsServer(t, fda.NewClient(srv.URL, ""), []models.Medication{{MedicationName: "Tylenol"}})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/"+id+"/warnings", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	row := decode(t, rec)["warnings"].([]interface{})[0].(map[string]interface{})
	if row["warnings"] != "Do not exceed 4 g per day" || row["boxed_warning"] != fda.NoBoxedWarning {
		t.Errorf("row = %v", row)
	}
}

func TestGetWarningsNotConfigured(t *testing.T) {
	router, id := newWarningsServer(t, nil, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/"+id+"/warnings", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestGetWarningsUnknownSession(t *testing.T) {
	router, _ := newWarningsServer(t, &fakeWarnings{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/prescriptions/missing/warnings", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
