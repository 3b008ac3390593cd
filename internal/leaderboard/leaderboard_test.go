package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"

	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/models"
)

type memRecords struct {
	data     map[string]string
	getErr   error
	putErr   error
	putCalls int
}

func newMemRecords() *memRecords {
	return &memRecords{data: map[string]string{}}
}

func (m *memRecords) GetRecord(_ context.Context, name string) (string, error) {
	if m.getErr != nil {
		return "", m.getErr
	}
	body, ok := m.data[name]
	if !ok {
		return "", models.ErrNotFound
	}
	return body, nil
}

func (m *memRecords) PutRecord(_ context.Context, name, body string) error {
	m.putCalls++
	if m.putErr != nil {
		return m.putErr
	}
	m.data[name] = body
	return nil
}

func assertRanked(t *testing.T, entries []Entry) {
	t.Helper()
	if len(entries) > MaxEntries {
		t.Fatalf("board has %d entries, cap is %d", len(entries), MaxEntries)
	}
	for i := 1; i < len(entries); i++ {
		a, b := entries[i-1], entries[i]
		if a.Score < b.Score || (a.Score == b.Score && a.Time > b.Time) {
			t.Fatalf("entries %d and %d out of order: %+v then %+v", i-1, i, a, b)
		}
	}
}

func TestRecordKeepsRankingAndCap(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemRecords(), "")
	r := rand.New(rand.NewPCG(11, 12))

	for i := 0; i < 40; i++ {
		e := Entry{
			Name:     fmt.Sprintf("p%d", i),
			Score:    int64(r.IntN(5) * 1000),
			Accuracy: 100,
			Time:     int64(r.IntN(20_000) + 1),
		}
		board, err := store.Record(ctx, e)
		if err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
		assertRanked(t, board)
	}
	loaded := store.Load(ctx)
	if len(loaded) != MaxEntries {
		t.Fatalf("expected %d entries, got %d", MaxEntries, len(loaded))
	}
	assertRanked(t, loaded)
}

func TestTieOnScoreBrokenByFasterTime(t *testing.T) {
	got := Rank([]Entry{
		{Name: "slow", Score: 500, Time: 9000},
		{Name: "fast", Score: 500, Time: 3000},
		{Name: "best", Score: 900, Time: 12000},
	})
	want := []string{"best", "fast", "slow"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: expected %s, got %s", i, name, got[i].Name)
		}
	}
}

func TestLowerRankedEntryLeavesFullBoardUnchanged(t *testing.T) {
	ctx := context.Background()
	store := NewStore(newMemRecords(), DefaultKey)
	for i := 0; i < MaxEntries; i++ {
		if _, err := store.Record(ctx, Entry{Name: fmt.Sprintf("p%d", i), Score: int64(10_000 - i*100), Accuracy: 100, Time: 5000}); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}
	before := store.Load(ctx)

	after, err := store.Record(ctx, Entry{Name: "late", Score: 0, Accuracy: 40, Time: 1})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(after) != len(before) {
		t.Fatalf("board length changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("position %d changed: %+v -> %+v", i, before[i], after[i])
		}
	}
}

func TestLoadDegradesToEmpty(t *testing.T) {
	tests := []struct {
		name   string
		body   *string
		getErr error
	}{
		{name: "missing record"},
		{name: "garbage text", body: strPtr("not json at all {")},
		{name: "wrong shape", body: strPtr(`{"name":"x"}`)},
		{name: "json null", body: strPtr("null")},
		{name: "blank", body: strPtr("   ")},
		{name: "read failure", getErr: errors.New("disk unreadable")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs := newMemRecords()
			recs.getErr = tt.getErr
			if tt.body != nil {
				recs.data[DefaultKey] = *tt.body
			}
			got := NewStore(recs, DefaultKey).Load(context.Background())
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty non-nil board, got %#v", got)
			}
		})
	}
}

func TestRecordOverCorruptedStorageStartsFresh(t *testing.T) {
	recs := newMemRecords()
	recs.data[DefaultKey] = "][ corrupted"
	store := NewStore(recs, DefaultKey)

	board, err := store.Record(context.Background(), Entry{Name: "Ada", Score: 42, Accuracy: 100, Time: 1000})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(board) != 1 || board[0].Name != "Ada" {
		t.Fatalf("unexpected board: %+v", board)
	}
	if len(store.Load(context.Background())) != 1 {
		t.Fatalf("board was not persisted")
	}
}

func TestRecordReturnsBoardOnWriteFailure(t *testing.T) {
	recs := newMemRecords()
	recs.putErr = errors.New("read-only profile")
	board, err := NewStore(recs, DefaultKey).Record(context.Background(), Entry{Name: "Ada", Score: 1})
	if err == nil {
		t.Fatalf("expected write error")
	}
	if len(board) != 1 {
		t.Fatalf("expected ranked board despite failure, got %+v", board)
	}
}

func TestRecordResultsSkipsAnonymousPlayers(t *testing.T) {
	recs := newMemRecords()
	store := NewStore(recs, DefaultKey)
	ctx := context.Background()

	if err := store.RecordResults(ctx, sorting.State{PlayerName: "  "}, sorting.Results{Score: 10}); err != nil {
		t.Fatalf("anonymous: %v", err)
	}
	if recs.putCalls != 0 {
		t.Fatalf("anonymous game was recorded")
	}

	res := sorting.Results{Score: 6667, Accuracy: 100, TotalTimeMs: 15000}
	if err := store.RecordResults(ctx, sorting.State{PlayerName: "Ada"}, res); err != nil {
		t.Fatalf("record results: %v", err)
	}
	board := store.Load(ctx)
	want := Entry{Name: "Ada", Score: 6667, Accuracy: 100, Time: 15000}
	if len(board) != 1 || board[0] != want {
		t.Fatalf("expected %+v, got %+v", want, board)
	}
}

func strPtr(s string) *string { return &s }

func TestBlankKeyUsesDefaultRecord(t *testing.T) {
	recs := newMemRecords()
	if _, err := NewStore(recs, "  ").Record(context.Background(), Entry{Name: "Ada", Score: 10, Time: 1}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if _, ok := recs.data[DefaultKey]; !ok {
		t.Fatalf("board not stored under %q: %v", DefaultKey, recs.data)
	}
}
