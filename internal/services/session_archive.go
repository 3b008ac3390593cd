package services

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/models"
	"card-sorting-go/internal/tracing"

	"go.opentelemetry.io/otel/attribute"
)

// SessionArchive writes finished games to the local history tables.
type SessionArchive struct {
	db *sql.DB
}

func NewSessionArchive(db *sql.DB) *SessionArchive {
	return &SessionArchive{db: db}
}

// Archive is a sorting.CompletionObserver. Re-archiving the same session is a
// no-op.
func (a *SessionArchive) Archive(ctx context.Context, st sorting.State, res sorting.Results) error {
	ctx, span := tracing.StartSpan(ctx, "archive.session",
		attribute.String("session.id", st.SessionID),
		attribute.Int("session.moves", len(st.Moves)),
	)
	defer span.End()

	session, moves := SessionFromGame(st, res)
	inserted, err := models.InsertFinishedSession(ctx, a.db, session, moves)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("archive session %s: %w", st.SessionID, err)
	}
	if inserted {
		log.Printf("SessionArchive: archived session=%s moves=%d score=%d missed=%v", session.ID, len(moves), session.Score, missedCards(st))
	}
	return nil
}

// SessionFromGame converts a completed game into its archive rows.
func SessionFromGame(st sorting.State, res sorting.Results) (models.GameSession, []models.GameMove) {
	session := models.GameSession{
		ID:            st.SessionID,
		PlayerName:    st.PlayerName,
		Passed:        res.Passed,
		Score:         res.Score,
		Accuracy:      res.Accuracy,
		CorrectMoves:  int64(res.CorrectMoves),
		TotalMoves:    int64(res.TotalMoves),
		TotalTimeMs:   res.TotalTimeMs,
		AverageTimeMs: res.AverageTimeMs,
		StartedAt:     st.Timing.StartedAt,
		CompletedAt:   st.Timing.CompletedAt,
	}

	moves := make([]models.GameMove, 0, len(st.Moves))
	for i, mv := range st.Moves {
		moves = append(moves, models.GameMove{
			SessionID:    st.SessionID,
			Seq:          int64(i + 1),
			CardID:       mv.Card.ID,
			CardCategory: string(mv.Card.Category),
			CardValue:    mv.Card.Value,
			Target:       string(mv.Target),
			Correct:      mv.Correct,
			CreatedAt:    mv.At,
		})
	}
	return session, moves
}

// missedCards lists the printable form of every card that was placed wrongly.
func missedCards(st sorting.State) []string {
	var out []string
	for _, mv := range st.Moves {
		if !mv.Correct {
			out = append(out, mv.Card.String())
		}
	}
	return out
}

func (a *SessionArchive) ListSessions(ctx context.Context, limit int64) ([]models.GameSession, error) {
	return models.ListSessions(ctx, a.db, limit)
}

// Moves returns the archived move log of a session, or ErrSessionNotFound.
func (a *SessionArchive) Moves(ctx context.Context, sessionID string, wrongOnly bool) ([]models.GameMove, error) {
	if _, err := models.GetSession(ctx, a.db, sessionID); err != nil {
		return nil, err
	}
	return models.ListMovesBySession(ctx, a.db, sessionID, wrongOnly)
}
