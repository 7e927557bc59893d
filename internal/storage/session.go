// session.go - Prescription session records shared by the HTTP API handlers

package storage

import (
	"context"
	"errors"
	"time"

	"github.com/bosocmputer/pharmacist_assistant/internal/models"
	"github.com/bosocmputer/pharmacist_assistant/internal/order"
)

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = errors.New("session not found")

// Session is one processed prescription and the order built from it.
type Session struct {
	ID           string                     `bson:"_id" json:"session_id"`
	RequestID    string                     `bson:"request_id" json:"request_id"`
	Source       string                     `bson:"source" json:"source"`
	Medications  *models.MedicationResponse `bson:"medications" json:"medications"`
	SpellCheck   *models.SpellCheckResponse `bson:"spell_check" json:"spell_check"`
	OrderLines   []order.Line               `bson:"order_lines,omitempty" json:"order_lines,omitempty"`
	OrderMessage string                     `bson:"order_message,omitempty" json:"order_message,omitempty"`
	CreatedAt    time.Time                  `bson:"created_at" json:"created_at"`
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	SaveOrder(ctx context.Context, id string, lines []order.Line, message string) error
	Close(ctx context.Context) error
}
