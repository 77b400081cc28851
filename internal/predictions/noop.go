package predictions

import "context"

// NoopStore discards writes and never finds records. It keeps the
// application serving when the database cannot be opened.
type NoopStore struct{}

func (NoopStore) Save(ctx context.Context, rec Record) error { return nil }

func (NoopStore) Latest(ctx context.Context, userID string) (*Record, error) {
	return nil, ErrNoPrediction
}

func (NoopStore) Close() error { return nil }
