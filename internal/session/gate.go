// Package session derives a single "is this caller an authorized admin"
// verdict from an auth service and a profile store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Gate composes an AuthService and a ProfileStore into a three-state
// signal: loading, unauthenticated, or authenticated with a profile.
//
// Start subscribes to session changes and launches one goroutine that
// first bootstraps from the current session and then applies change
// events in order. Every transition replaces the whole State. Close
// releases the subscription and waits for that goroutine to exit.
type Gate struct {
	auth         AuthService
	profiles     ProfileStore
	logger       *slog.Logger
	changePolicy ChangePolicy
	retries      int
	backoff      time.Duration

	mu        sync.RWMutex
	state     State
	settled   chan struct{}
	isSettled bool
	watchers  map[int]chan State
	nextID    int
	started   bool
	closed    bool

	// session ids already signed out by SignIn or the change handler
	deniedIDs map[uuid.UUID]struct{}

	cancel      context.CancelFunc
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

// New creates a Gate in the loading state. Call Start to run it.
func New(auth AuthService, profiles ProfileStore, opts ...Option) *Gate {
	g := &Gate{
		auth:      auth,
		profiles:  profiles,
		logger:    slog.Default(),
		state:     State{Loading: true},
		settled:   make(chan struct{}),
		watchers:  make(map[int]chan State),
		deniedIDs: make(map[uuid.UUID]struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Start subscribes to session changes and bootstraps the gate in the
// background. It returns immediately.
func (g *Gate) Start(ctx context.Context) error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGateClosed
	}
	if g.started {
		g.mu.Unlock()
		return ErrGateStarted
	}
	g.started = true

	// Subscribe before reading the initial session so a change that lands
	// during bootstrap is queued rather than lost.
	events, unsubscribe := g.auth.Subscribe()
	runCtx, cancel := context.WithCancel(ctx)
	g.cancel = cancel
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	go g.run(runCtx, events)
	return nil
}

// Close stops the gate. It is safe to call more than once and from any
// goroutine other than a Watch consumer blocked on the gate itself.
func (g *Gate) Close() {
	g.closeOnce.Do(func() {
		g.mu.Lock()
		g.closed = true
		started := g.started
		cancel, unsubscribe := g.cancel, g.unsubscribe
		g.mu.Unlock()

		if started {
			cancel()
			unsubscribe()
			<-g.done
		}

		g.mu.Lock()
		for id, ch := range g.watchers {
			close(ch)
			delete(g.watchers, id)
		}
		g.mu.Unlock()
	})
}

// State returns the current verdict.
func (g *Gate) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Wait blocks until the gate has left the initial loading state.
func (g *Gate) Wait(ctx context.Context) (State, error) {
	select {
	case <-g.settled:
		return g.State(), nil
	case <-ctx.Done():
		return g.State(), ctx.Err()
	}
}

// Watch returns a channel carrying the current state followed by every
// later state. Slow readers only observe the latest value. The returned
// function stops the watch and closes the channel.
func (g *Gate) Watch() (<-chan State, func()) {
	ch := make(chan State, 1)

	g.mu.Lock()
	if g.closed {
		ch <- g.state
		close(ch)
		g.mu.Unlock()
		return ch, func() {}
	}
	id := g.nextID
	g.nextID++
	g.watchers[id] = ch
	ch <- g.state
	g.mu.Unlock()

	return ch, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if w, ok := g.watchers[id]; ok {
			close(w)
			delete(g.watchers, id)
		}
	}
}

// SignIn checks the credentials with the auth service and then requires
// an admin profile for the returned identity. Without one the new
// session is signed out again and ErrAuthorizationDenied is returned.
// Auth service errors are returned unchanged.
func (g *Gate) SignIn(ctx context.Context, email, password string) (*Profile, error) {
	sess, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrAuthorizationDenied
	}

	profile, err := g.fetchProfile(ctx, sess.UserID)
	if err != nil {
		g.denyOnce(context.WithoutCancel(ctx), sess)
		return nil, fmt.Errorf("%w: %w", ErrAuthorizationDenied, err)
	}

	return profile, nil
}

// SignOut asks the auth service to end the session. Local state is
// cleared when the resulting change notification arrives.
func (g *Gate) SignOut(ctx context.Context) error {
	return g.auth.SignOut(ctx)
}

func (g *Gate) run(ctx context.Context, events <-chan Event) {
	defer close(g.done)

	g.bootstrap(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ctx.Err() != nil {
				return
			}
			g.handleChange(ctx, ev)
		}
	}
}

func (g *Gate) bootstrap(ctx context.Context) {
	g.setState(State{Loading: true})

	sess, err := g.auth.GetSession(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		g.logger.Warn("gate: reading initial session failed", "error", err)
		g.setState(State{})
		return
	}
	if sess == nil || sess.Expired(time.Now()) {
		g.setState(State{})
		return
	}

	profile, err := g.fetchProfile(ctx, sess.UserID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		g.logger.Warn("gate: session has no admin profile, signing out", "userId", sess.UserID, "error", err)
		if outErr := g.auth.SignOut(ctx); outErr != nil {
			g.logger.Error("gate: sign-out after failed profile lookup failed", "userId", sess.UserID, "error", outErr)
		}
		g.setState(State{})
		return
	}

	g.setState(State{Session: sess, Profile: profile})
}

func (g *Gate) handleChange(ctx context.Context, ev Event) {
	// A notification that arrives after its session expired is treated as
	// a sign-out.
	if ev.Session == nil || ev.Session.Expired(time.Now()) {
		g.setState(State{})
		return
	}
	sess := ev.Session

	// A different identity must not be paired with the previous profile
	// while its own profile is being fetched.
	prev := g.State()
	if prev.Session == nil || prev.Session.UserID != sess.UserID {
		g.setState(State{Loading: prev.Loading, Session: sess})
	}

	profile, err := g.fetchProfile(ctx, sess.UserID)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		g.logger.Warn("gate: profile lookup after session change failed",
			"userId", sess.UserID,
			"policy", g.changePolicy.String(),
			"error", err,
		)
		if g.changePolicy == ChangePolicySignOut {
			g.denyOnce(ctx, sess)
			g.setState(State{})
			return
		}
		g.setState(State{Session: sess})
		return
	}

	g.setState(State{Session: sess, Profile: profile})
}

// denyOnce signs out sess unless it was already signed out by this gate,
// either by SignIn or by the change handler.
func (g *Gate) denyOnce(ctx context.Context, sess *Session) {
	g.mu.Lock()
	_, done := g.deniedIDs[sess.ID]
	g.deniedIDs[sess.ID] = struct{}{}
	g.mu.Unlock()
	if done {
		return
	}

	if err := g.auth.SignOut(ctx); err != nil {
		g.logger.Error("gate: signing out unauthorized session failed", "userId", sess.UserID, "error", err)
	}
}

func (g *Gate) fetchProfile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	for attempt := 0; ; attempt++ {
		profile, err := g.profiles.GetProfile(ctx, userID)
		if err == nil {
			if profile == nil || profile.ID != userID {
				return nil, ErrProfileNotFound
			}
			return profile, nil
		}
		if errors.Is(err, ErrProfileNotFound) || attempt >= g.retries {
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(g.backoff * time.Duration(attempt+1)):
		}
	}
}

func (g *Gate) setState(s State) {
	if s.Session == nil {
		s.Profile = nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.state = s
	if !s.Loading && !g.isSettled {
		g.isSettled = true
		close(g.settled)
	}

	for _, ch := range g.watchers {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- s
		}
	}
}
