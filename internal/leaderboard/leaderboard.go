package leaderboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/models"
	"card-sorting-go/internal/tracing"
)

const (
	// DefaultKey names the persisted record holding the board.
	DefaultKey = "card-sorting-leaderboard"
	MaxEntries = 10
)

// Entry is one completed game on the board. Time is total milliseconds.
type Entry struct {
	Name     string  `json:"name"`
	Score    int64   `json:"score"`
	Accuracy float64 `json:"accuracy"`
	Time     int64   `json:"time"`
}

// RecordStore persists named text records.
type RecordStore interface {
	GetRecord(ctx context.Context, name string) (string, error)
	PutRecord(ctx context.Context, name, body string) error
}

// Store keeps a bounded top-N board as a single JSON record. Writers are
// expected to be serialized by the caller (the game engine runs one completion
// at a time).
type Store struct {
	records RecordStore
	key     string
}

func NewStore(records RecordStore, key string) *Store {
	if strings.TrimSpace(key) == "" {
		key = DefaultKey
	}
	return &Store{records: records, key: key}
}

// Rank orders entries by score descending then time ascending and keeps the
// top MaxEntries. Equal entries keep their incoming order.
func Rank(entries []Entry) []Entry {
	out := append([]Entry{}, entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Time < out[j].Time
	})
	if len(out) > MaxEntries {
		out = out[:MaxEntries]
	}
	return out
}

// Load returns the ranked board. Missing, unreadable or malformed storage
// yields an empty board.
func (s *Store) Load(ctx context.Context) []Entry {
	ctx, span := tracing.StartSpan(ctx, "leaderboard.Load")
	defer span.End()

	body, err := s.records.GetRecord(ctx, s.key)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			log.Printf("leaderboard.Load: read %q: %v", s.key, err)
		}
		return []Entry{}
	}
	entries, err := decode(body)
	if err != nil {
		log.Printf("leaderboard.Load: discarding malformed %q: %v", s.key, err)
		return []Entry{}
	}
	return Rank(entries)
}

// Record adds e, re-ranks and writes the board back. The ranked board is
// returned even when the write fails.
func (s *Store) Record(ctx context.Context, e Entry) ([]Entry, error) {
	ctx, span := tracing.StartSpan(ctx, "leaderboard.Record")
	defer span.End()

	ranked := Rank(append(s.Load(ctx), e))
	b, err := json.Marshal(ranked)
	if err != nil {
		return ranked, fmt.Errorf("leaderboard.Record: encode: %w", err)
	}
	if err := s.records.PutRecord(ctx, s.key, string(b)); err != nil {
		return ranked, fmt.Errorf("leaderboard.Record: write %q: %w", s.key, err)
	}
	return ranked, nil
}

// RecordResults is a sorting.CompletionObserver that files a finished game.
func (s *Store) RecordResults(ctx context.Context, st sorting.State, res sorting.Results) error {
	name := strings.TrimSpace(st.PlayerName)
	if name == "" {
		return nil
	}
	_, err := s.Record(ctx, Entry{
		Name:     name,
		Score:    res.Score,
		Accuracy: res.Accuracy,
		Time:     res.TotalTimeMs,
	})
	return err
}

func decode(body string) ([]Entry, error) {
	if strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(body), &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
