package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"card-sorting-go/internal/config"
	"card-sorting-go/internal/game/common"
	"card-sorting-go/internal/game/sorting"
	"card-sorting-go/internal/leaderboard"
	"card-sorting-go/internal/middleware"
	"card-sorting-go/internal/models"

	"github.com/gin-gonic/gin"
)

type memRecords struct {
	data map[string]string
}

func (m *memRecords) GetRecord(_ context.Context, name string) (string, error) {
	body, ok := m.data[name]
	if !ok {
		return "", models.ErrNotFound
	}
	return body, nil
}

func (m *memRecords) PutRecord(_ context.Context, name, body string) error {
	m.data[name] = body
	return nil
}

type fakeHistory struct {
	sessions []models.GameSession
	moves    map[string][]models.GameMove
}

func (f *fakeHistory) ListSessions(_ context.Context, limit int64) ([]models.GameSession, error) {
	if int64(len(f.sessions)) > limit {
		return f.sessions[:limit], nil
	}
	return f.sessions, nil
}

func (f *fakeHistory) Moves(_ context.Context, id string, wrongOnly bool) ([]models.GameMove, error) {
	moves, ok := f.moves[id]
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if !wrongOnly {
		return moves, nil
	}
	out := []models.GameMove{}
	for _, m := range moves {
		if !m.Correct {
			out = append(out, m)
		}
	}
	return out, nil
}

type testServer struct {
	router *gin.Engine
	engine *sorting.Engine
	board  *leaderboard.Store
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		SessionSecret: "test-secret",
		SessionIssuer: "card-sorting",
		SessionTTL:    time.Hour,
		AppEnv:        "development",
	}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	ticks := 0
	ids := 0
	engine := sorting.NewEngine(
		sorting.WithSource(rand.New(rand.NewPCG(7, 8))),
		sorting.WithClock(func() time.Time {
			ticks++
			return base.Add(time.Duration(ticks) * time.Second)
		}),
		sorting.WithSessionIDs(func() string {
			ids++
			return fmt.Sprintf("session-%d", ids)
		}),
	)
	board := leaderboard.NewStore(&memRecords{data: map[string]string{}}, leaderboard.DefaultKey)
	engine.OnComplete(board.RecordResults)

	history := &fakeHistory{
		sessions: []models.GameSession{{ID: "old-1", PlayerName: "Ada"}, {ID: "old-2", PlayerName: "Grace"}},
		moves: map[string][]models.GameMove{
			"old-1": {{Seq: 1, Correct: true}, {Seq: 2, Correct: false}},
		},
	}

	r := gin.New()
	api := r.Group("/api")
	RegisterGameRoutes(api, engine, board, cfg)
	RegisterHistoryRoutes(api, history)
	return &testServer{router: r, engine: engine, board: board}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)
	return rr
}

func decodeGame(t *testing.T, rr *httptest.ResponseRecorder) gameResponse {
	t.Helper()
	var resp gameResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode %s: %v", rr.Body.String(), err)
	}
	return resp
}

func errorOf(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body %s: %v", rr.Body.String(), err)
	}
	return body.Error
}

func TestStartRejectsEmptyName(t *testing.T) {
	s := newTestServer(t)
	for _, name := range []string{"", "   "} {
		rr := s.do(t, http.MethodPost, "/api/game/start", "", startRequest{Name: name})
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("name %q: expected 400, got %d", name, rr.Code)
		}
		if got := errorOf(t, rr); got != "player name required" {
			t.Fatalf("name %q: unexpected error %q", name, got)
		}
	}
	if s.engine.View().Phase != sorting.PhaseSetup {
		t.Fatalf("engine left setup after rejected start")
	}
}

func TestStartSetsSessionCookieAndToken(t *testing.T) {
	s := newTestServer(t)
	rr := s.do(t, http.MethodPost, "/api/game/start", "", startRequest{Name: "Ada"})
	if rr.Code != http.StatusOK {
		t.Fatalf("start: %d %s", rr.Code, rr.Body.String())
	}
	resp := decodeGame(t, rr)
	if resp.Token == "" {
		t.Fatalf("missing token")
	}
	if resp.Game.Phase != sorting.PhasePlaying || resp.Game.CurrentCard == nil {
		t.Fatalf("unexpected game: %+v", resp.Game)
	}
	if resp.Game.DeckSize != common.DeckSize {
		t.Fatalf("deck size %d", resp.Game.DeckSize)
	}
	found := false
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == "cs_session" && ck.Value == resp.Token && ck.HttpOnly {
			found = true
		}
	}
	if !found {
		t.Fatalf("session cookie not set")
	}
}

func TestPlayThroughReturnsResultsAndLeaderboard(t *testing.T) {
	s := newTestServer(t)
	start := decodeGame(t, s.do(t, http.MethodPost, "/api/game/start", "", startRequest{Name: "Ada"}))
	token := start.Token

	game := start.Game
	var last gameResponse
	for i := 0; i < common.DeckSize; i++ {
		if game.CurrentCard == nil {
			t.Fatalf("no current card at %d", i)
		}
		rr := s.do(t, http.MethodPost, "/api/game/resolve", token, resolveRequest{Target: string(game.CurrentCard.Category)})
		if rr.Code != http.StatusOK {
			t.Fatalf("resolve %d: %d %s", i, rr.Code, rr.Body.String())
		}
		last = decodeGame(t, rr)
		if last.Move == nil || !last.Move.Correct {
			t.Fatalf("move %d not correct: %+v", i, last.Move)
		}
		game = last.Game
	}

	if last.Game.Phase != sorting.PhaseCompleted {
		t.Fatalf("expected completed, got %s", last.Game.Phase)
	}
	if last.Results == nil {
		t.Fatalf("missing results")
	}
	if !last.Results.Passed || last.Results.Accuracy != 100 {
		t.Fatalf("unexpected results: %+v", last.Results.Results)
	}
	if len(last.Results.Leaderboard) != 1 || last.Results.Leaderboard[0].Name != "Ada" {
		t.Fatalf("unexpected leaderboard: %+v", last.Results.Leaderboard)
	}

	rr := s.do(t, http.MethodPost, "/api/game/resolve", token, resolveRequest{Target: "hearts"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("resolve after completion: expected 409, got %d", rr.Code)
	}

	got := decodeGame(t, s.do(t, http.MethodGet, "/api/game", "", nil))
	if got.Results == nil || got.Results.Score != last.Results.Score {
		t.Fatalf("GET /game lost results: %+v", got.Results)
	}

	rr = s.do(t, http.MethodGet, "/api/leaderboard", "", nil)
	var lb struct {
		Leaderboard []leaderboard.Entry `json:"leaderboard"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &lb); err != nil {
		t.Fatalf("decode leaderboard: %v", err)
	}
	if len(lb.Leaderboard) != 1 || lb.Leaderboard[0].Score != last.Results.Score {
		t.Fatalf("unexpected leaderboard: %+v", lb.Leaderboard)
	}
}

func TestCardEventsRequireLiveSession(t *testing.T) {
	s := newTestServer(t)
	start := decodeGame(t, s.do(t, http.MethodPost, "/api/game/start", "", startRequest{Name: "Ada"}))
	card := start.Game.CurrentCard

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "missing token", token: "", want: http.StatusUnauthorized},
		{name: "garbage token", token: "not-a-jwt", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/api/game/drop", tt.token, dropRequest{CardID: card.ID, Target: string(card.Category)})
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
		})
	}

	restart := decodeGame(t, s.do(t, http.MethodPost, "/api/game/restart", "", nil))
	if restart.Game.PlayerName != "Ada" || restart.Token == start.Token {
		t.Fatalf("unexpected restart: %+v", restart.Game)
	}

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	rr := s.do(t, http.MethodPost, "/api/game/next", start.Token, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("stale token: expected 409, got %d", rr.Code)
	}
	if !strings.Contains(logs.String(), `player="Ada"`) {
		t.Fatalf("stale event not attributed to the player: %q", logs.String())
	}
	if got := errorOf(t, rr); got != "session no longer active" {
		t.Fatalf("unexpected error %q", got)
	}

	rr = s.do(t, http.MethodPost, "/api/game/next", restart.Token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("live token: expected 200, got %d %s", rr.Code, rr.Body.String())
	}
}

func TestDropValidation(t *testing.T) {
	s := newTestServer(t)
	start := decodeGame(t, s.do(t, http.MethodPost, "/api/game/start", "", startRequest{Name: "Ada"}))
	card := start.Game.CurrentCard

	tests := []struct {
		name    string
		body    any
		want    int
		wantErr string
	}{
		{name: "bad target", body: dropRequest{CardID: card.ID, Target: "stars"}, want: http.StatusBadRequest, wantErr: "invalid category"},
		{name: "unknown card", body: dropRequest{CardID: "joker-1", Target: "hearts"}, want: http.StatusBadRequest, wantErr: "card not dealt"},
		{name: "bad json", body: "[]", want: http.StatusBadRequest, wantErr: "invalid json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(t, http.MethodPost, "/api/game/drop", start.Token, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if got := errorOf(t, rr); got != tt.wantErr {
				t.Fatalf("expected error %q, got %q", tt.wantErr, got)
			}
		})
	}

	rr := s.do(t, http.MethodPost, "/api/game/drop", start.Token, dropRequest{CardID: card.ID, Target: " Hearts "})
	if rr.Code != http.StatusOK {
		t.Fatalf("drop: %d %s", rr.Code, rr.Body.String())
	}
	rr = s.do(t, http.MethodPost, "/api/game/drop", start.Token, dropRequest{CardID: card.ID, Target: "hearts"})
	if rr.Code != http.StatusConflict {
		t.Fatalf("second drop of same card: expected 409, got %d", rr.Code)
	}
}

func TestSessionHistoryRoutes(t *testing.T) {
	s := newTestServer(t)

	rr := s.do(t, http.MethodGet, "/api/sessions?limit=1", "", nil)
	var list struct {
		Sessions []models.GameSession `json:"sessions"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode sessions: %v", err)
	}
	if rr.Code != http.StatusOK || len(list.Sessions) != 1 {
		t.Fatalf("unexpected sessions response: %d %s", rr.Code, rr.Body.String())
	}

	tests := []struct {
		path  string
		want  int
		moves int
	}{
		{path: "/api/sessions/old-1/moves", want: http.StatusOK, moves: 2},
		{path: "/api/sessions/old-1/moves?wrong=true", want: http.StatusOK, moves: 1},
		{path: "/api/sessions/missing/moves", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := s.do(t, http.MethodGet, tt.path, "", nil)
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			if tt.want != http.StatusOK {
				return
			}
			var body struct {
				Moves []models.GameMove `json:"moves"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode moves: %v", err)
			}
			if len(body.Moves) != tt.moves {
				t.Fatalf("expected %d moves, got %d", tt.moves, len(body.Moves))
			}
		})
	}
}

func TestWebSocketOriginCheck(t *testing.T) {
	upgrader := newUpgrader(middleware.NewOriginPolicy(config.Config{
		AppEnv:           "production",
		WSAllowedOrigins: []string{"https://kiosk.test"},
	}))
	tests := []struct {
		origin string
		want   bool
	}{
		{origin: "", want: true},
		{origin: "https://kiosk.test", want: true},
		{origin: "https://evil.test", want: false},
		{origin: "http://localhost:5173", want: false},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/ws", nil)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		if got := upgrader.CheckOrigin(req); got != tt.want {
			t.Errorf("origin %q: got %v want %v", tt.origin, got, tt.want)
		}
	}
}
