package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// GameSession is the archived summary of a finished sorting game.
type GameSession struct {
	ID            string    `json:"id"`
	PlayerName    string    `json:"player_name"`
	Passed        bool      `json:"passed"`
	Score         int64     `json:"score"`
	Accuracy      float64   `json:"accuracy"`
	CorrectMoves  int64     `json:"correct_moves"`
	TotalMoves    int64     `json:"total_moves"`
	TotalTimeMs   int64     `json:"total_time_ms"`
	AverageTimeMs float64   `json:"average_time_ms"`
	StartedAt     time.Time `json:"started_at"`
	CompletedAt   time.Time `json:"completed_at"`
}

// InsertFinishedSession archives a session and its moves in one transaction.
// It is idempotent per session id: inserted is false when the session was
// already archived.
func InsertFinishedSession(ctx context.Context, db *sql.DB, s GameSession, moves []GameMove) (inserted bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("InsertFinishedSession: begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var existing int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM game_sessions WHERE id = ?`, s.ID).Scan(&existing); err != nil {
		return false, fmt.Errorf("InsertFinishedSession: check existing: %w", err)
	}
	if existing > 0 {
		if err := tx.Commit(); err != nil {
			return false, err
		}
		committed = true
		return false, nil
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO game_sessions(id, player_name, passed, score, accuracy, correct_moves, total_moves, total_time_ms, average_time_ms, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.PlayerName, boolToInt(s.Passed), s.Score, s.Accuracy, s.CorrectMoves, s.TotalMoves,
		s.TotalTimeMs, s.AverageTimeMs, s.StartedAt.UTC(), s.CompletedAt.UTC(),
	); err != nil {
		if IsUniqueConstraint(err) {
			// Archived concurrently by another writer.
			return false, nil
		}
		return false, fmt.Errorf("InsertFinishedSession: insert session: %w", err)
	}
	for _, m := range moves {
		m.SessionID = s.ID
		if err := InsertMoveTx(ctx, tx, m); err != nil {
			return false, fmt.Errorf("InsertFinishedSession: insert move %d: %w", m.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("InsertFinishedSession: commit: %w", err)
	}
	committed = true
	return true, nil
}

const sessionColumns = `id, player_name, passed, score, accuracy, correct_moves, total_moves, total_time_ms, average_time_ms, started_at, completed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(r rowScanner) (GameSession, error) {
	var s GameSession
	var passed int
	if err := r.Scan(&s.ID, &s.PlayerName, &passed, &s.Score, &s.Accuracy, &s.CorrectMoves, &s.TotalMoves,
		&s.TotalTimeMs, &s.AverageTimeMs, &s.StartedAt, &s.CompletedAt); err != nil {
		return GameSession{}, err
	}
	s.Passed = passed != 0
	return s, nil
}

func GetSession(ctx context.Context, db *sql.DB, id string) (*GameSession, error) {
	s, err := scanSession(db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSessions returns the most recently completed sessions first.
func ListSessions(ctx context.Context, db *sql.DB, limit int64) ([]GameSession, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM game_sessions ORDER BY completed_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameSession{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
