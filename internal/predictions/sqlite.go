package predictions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists prediction records to a SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
	mu     sync.Mutex
}

// NewSQLiteStore opens (or creates) the SQLite database and runs
// migrations.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboard reads do not block upload writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger.With(slog.String("component", "prediction_store"))}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.logger.Info("sqlite prediction store opened", slog.String("path", dbPath))
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS predictions (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id         TEXT NOT NULL,
			predicted_price REAL NOT NULL,
			actual_price    REAL NOT NULL,
			confidence      INTEGER NOT NULL,
			accuracy        REAL NOT NULL,
			created_at      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_predictions_user_created
			ON predictions(user_id, created_at)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Save appends one record for the user.
func (s *SQLiteStore) Save(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `INSERT INTO predictions
		(user_id, predicted_price, actual_price, confidence, accuracy, created_at)
		VALUES (?,?,?,?,?,?)`,
		rec.UserID, rec.PredictedPrice, rec.ActualPrice,
		rec.Confidence, rec.Accuracy, createdAt.UnixMilli(),
	)
	return err
}

// Latest returns the most recent record for the user.
func (s *SQLiteStore) Latest(ctx context.Context, userID string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT
		user_id, predicted_price, actual_price, confidence, accuracy, created_at
		FROM predictions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC LIMIT 1`, userID)

	var rec Record
	var createdMillis int64
	err := row.Scan(&rec.UserID, &rec.PredictedPrice, &rec.ActualPrice,
		&rec.Confidence, &rec.Accuracy, &createdMillis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoPrediction
	}
	if err != nil {
		return nil, fmt.Errorf("query latest prediction: %w", err)
	}

	rec.CreatedAt = time.UnixMilli(createdMillis).UTC()
	return &rec, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing sqlite prediction store")
	return s.db.Close()
}
