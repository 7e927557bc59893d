package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/order"
	"github.com/google/uuid"
)

// Runs only against a real server: MONGO_TEST_URI=mongodb://localhost:27017
func TestMongoStore(t *testing.T) {
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	store, err := NewMongoStore(ctx, uri, "pharmacist_assistant_test", time.Hour)
	if err != nil {
		t.Fatalf("NewMongoStore: %v", err)
	}
	t.Cleanup(func() {
		store.collection.Drop(context.Background())
		store.Close(context.Background())
	})

	id := uuid.New().String()
	sess := &Session{
		ID:          id,
		RequestID:   "req-1",
		Source:      "upload",
		Medications: &models.MedicationResponse{Medications: []models.Medication{{MedicationName: "Advil", Dosage: "200mg", Quantity: 6}}},
		SpellCheck:  models.NewSpellCheckResponse(),
	}
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Medications.Medications[0].MedicationName != "Advil" {
		t.Errorf("round trip lost data: %+v", got.Medications)
	}

	lines := []order.Line{{MedicationName: "Advil", Dosage: "200mg", Quantity: 12}}
	if err := store.SaveOrder(ctx, id, lines, "msg"); err != nil {
		t.Fatalf("SaveOrder: %v", err)
	}
	got, _ = store.Get(ctx, id)
	if got.OrderMessage != "msg" || got.OrderLines[0].Quantity != 12 {
		t.Errorf("order not stored: %+v", got)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
	if err := store.SaveOrder(ctx, "missing", lines, "msg"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}
