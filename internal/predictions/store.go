// Package predictions persists the latest point estimate per user. The
// store is a best-effort collaborator: write failures are logged by the
// caller and never block or roll back an already-computed result.
package predictions

import (
	"context"
	"errors"
	"time"
)

// ErrNoPrediction is returned when a user has no stored prediction yet.
var ErrNoPrediction = errors.New("no prediction found")

// Record is one persisted point estimate, one row per (user, upload).
type Record struct {
	UserID         string    `json:"user_id"`
	PredictedPrice float64   `json:"predicted_price"`
	ActualPrice    float64   `json:"actual_price"`
	Confidence     int       `json:"confidence"`
	Accuracy       float64   `json:"accuracy"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store reads and writes prediction records.
type Store interface {
	// Save appends a record for the user.
	Save(ctx context.Context, rec Record) error
	// Latest returns the most recently created record for the user, or
	// ErrNoPrediction.
	Latest(ctx context.Context, userID string) (*Record, error)
	Close() error
}
