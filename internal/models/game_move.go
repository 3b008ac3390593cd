package models

import (
	"context"
	"database/sql"
	"time"
)

// GameMove is one archived drop of a finished session.
type GameMove struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	Seq          int64     `json:"seq"`
	CardID       string    `json:"card_id"`
	CardCategory string    `json:"card_category"`
	CardValue    string    `json:"card_value"`
	Target       string    `json:"target"`
	Correct      bool      `json:"correct"`
	CreatedAt    time.Time `json:"created_at"`
}

func InsertMoveTx(ctx context.Context, tx *sql.Tx, m GameMove) error {
	_, err := tx.ExecContext(
		ctx,
		`INSERT INTO game_moves(session_id, seq, card_id, card_category, card_value, target, correct, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.SessionID, m.Seq, m.CardID, m.CardCategory, m.CardValue, m.Target, boolToInt(m.Correct), m.CreatedAt.UTC(),
	)
	return err
}

// ListMovesBySession returns the archived moves of a session in play order.
// wrongOnly limits the result to incorrect drops.
func ListMovesBySession(ctx context.Context, db *sql.DB, sessionID string, wrongOnly bool) ([]GameMove, error) {
	q := `SELECT id, session_id, seq, card_id, card_category, card_value, target, correct, created_at
	      FROM game_moves WHERE session_id = ?`
	if wrongOnly {
		q += ` AND correct = 0`
	}
	q += ` ORDER BY seq ASC`

	rows, err := db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []GameMove{}
	for rows.Next() {
		var m GameMove
		var correct int
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Seq, &m.CardID, &m.CardCategory, &m.CardValue, &m.Target, &correct, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Correct = correct != 0
		out = append(out, m)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
