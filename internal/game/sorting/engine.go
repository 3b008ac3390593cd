package sorting

import (
	"context"
	"log"
	"sync"
	"time"

	"card-sorting-go/internal/game/common"
	"card-sorting-go/internal/models"

	"github.com/google/uuid"
)

type sessionKey struct{}

// ExpectSession marks ctx as acting on behalf of sessionID. Mutations carrying
// it fail with models.ErrStaleSession once that session is no longer live.
func ExpectSession(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionKey{}, sessionID)
}

func (e *Engine) checkSessionLocked(ctx context.Context) error {
	want, ok := ctx.Value(sessionKey{}).(string)
	if !ok {
		return nil
	}
	if want == "" || want != e.state.SessionID {
		return models.ErrStaleSession
	}
	return nil
}

// CompletionObserver runs synchronously inside the event that completed the
// game. It must not call back into the Engine.
type CompletionObserver func(ctx context.Context, st State, res Results) error

// ChangeObserver receives the view after every applied transition.
type ChangeObserver func(view View)

// Engine owns the single live session and serializes every transition.
type Engine struct {
	mu      sync.Mutex
	state   State
	results *Results

	src   common.Source
	now   func() time.Time
	newID func() string

	onComplete []CompletionObserver
	onChange   []ChangeObserver
}

type Option func(*Engine)

func WithSource(src common.Source) Option {
	return func(e *Engine) { e.src = src }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithSessionIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		state: NewState(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Engine) OnComplete(fn CompletionObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onComplete = append(e.onComplete, fn)
}

func (e *Engine) OnChange(fn ChangeObserver) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = append(e.onChange, fn)
}

// Start deals a new game for name. An empty name leaves the engine untouched.
func (e *Engine) Start(ctx context.Context, name string) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.state.Start(name, common.NewDeck(e.src), e.newID(), e.now())
	if err != nil {
		return e.viewLocked(), err
	}
	e.results = nil
	return e.commitLocked(ctx, next), nil
}

// Restart discards the current session and deals again for the same player.
func (e *Engine) Restart(ctx context.Context) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := e.state.Restart(common.NewDeck(e.src), e.newID(), e.now())
	if err != nil {
		return e.viewLocked(), err
	}
	e.results = nil
	return e.commitLocked(ctx, next), nil
}

// Drop places a specific dealt card, which may be the cursor card or one
// skipped earlier.
func (e *Engine) Drop(ctx context.Context, cardID string, target common.Category) (Move, View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSessionLocked(ctx); err != nil {
		return Move{}, e.viewLocked(), err
	}
	next, mv, err := e.state.Place(cardID, target, e.now())
	if err != nil {
		return Move{}, e.viewLocked(), err
	}
	return mv, e.commitLocked(ctx, next), nil
}

// ResolveCurrent places the cursor card on target.
func (e *Engine) ResolveCurrent(ctx context.Context, target common.Category) (Move, View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSessionLocked(ctx); err != nil {
		return Move{}, e.viewLocked(), err
	}
	next, mv, err := e.state.ResolveCurrent(target, e.now())
	if err != nil {
		return Move{}, e.viewLocked(), err
	}
	return mv, e.commitLocked(ctx, next), nil
}

func (e *Engine) Next(ctx context.Context) (View, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkSessionLocked(ctx); err != nil {
		return e.viewLocked(), err
	}
	next, err := e.state.Next()
	if err != nil {
		return e.viewLocked(), err
	}
	return e.commitLocked(ctx, next), nil
}

func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.viewLocked()
}

// State returns a copy of the current snapshot.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.clone()
}

// Results returns the evaluation of the last completed game.
func (e *Engine) Results() (Results, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.results == nil {
		return Results{}, false
	}
	return *e.results, true
}

// SessionID names the live session, empty before the first start.
func (e *Engine) SessionID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.SessionID
}

// commitLocked installs next, runs the completion predicate and notifies
// observers. Completion fires at most once per session because Complete leaves
// the playing phase.
func (e *Engine) commitLocked(ctx context.Context, next State) View {
	if next.IsComplete() {
		next = next.Complete(e.now())
		res := Evaluate(next)
		e.state = next
		e.results = &res
		for _, fn := range e.onComplete {
			if err := fn(ctx, next, res); err != nil {
				log.Printf("Engine: completion observer failed: session=%s err=%v", next.SessionID, err)
			}
		}
	} else {
		e.state = next
	}

	v := e.viewLocked()
	for _, fn := range e.onChange {
		fn(v)
	}
	return v
}

func (e *Engine) viewLocked() View {
	return NewView(e.state)
}
