package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// RecordRepo stores named text records, one row per name.
type RecordRepo struct {
	db *sql.DB
}

func NewRecordRepo(db *sql.DB) *RecordRepo {
	return &RecordRepo{db: db}
}

// GetRecord returns the body stored under name, or ErrNotFound.
func (r *RecordRepo) GetRecord(ctx context.Context, name string) (string, error) {
	var body string
	err := r.db.QueryRowContext(ctx, `SELECT body FROM records WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("GetRecord %q: %w", name, err)
	}
	return body, nil
}

// PutRecord replaces the body stored under name.
func (r *RecordRepo) PutRecord(ctx context.Context, name, body string) error {
	_, err := r.db.ExecContext(
		ctx,
		`INSERT INTO records(name, body) VALUES (?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = CURRENT_TIMESTAMP`,
		name, body,
	)
	if err != nil {
		return fmt.Errorf("PutRecord %q: %w", name, err)
	}
	return nil
}
