package session_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/session"
)

var (
	userOne    = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	userTwo    = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	errBadPwd  = errors.New("invalid login credentials")
	errOffline = errors.New("dial tcp: connection refused")
)

// --- Fake auth service ---

type fakeAuth struct {
	mu            sync.Mutex
	current       *session.Session
	getSessionErr error
	signInErr     error
	signOutErr    error
	signInCalls   int
	signOutCalls  int
	subs          []chan session.Event
	// signOutEmits controls whether SignOut publishes a nil event.
	signOutEmits bool
}

func newFakeAuth(current *session.Session) *fakeAuth {
	return &fakeAuth{current: current, signOutEmits: true}
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (*session.Session, error) {
	f.mu.Lock()
	f.signInCalls++
	if f.signInErr != nil {
		err := f.signInErr
		f.mu.Unlock()
		return nil, err
	}
	sess := newSession(userOne, email)
	f.current = sess
	f.mu.Unlock()

	f.emit(session.Event{Session: sess})
	return sess, nil
}

func (f *fakeAuth) SignOut(_ context.Context) error {
	f.mu.Lock()
	f.signOutCalls++
	if f.signOutErr != nil {
		err := f.signOutErr
		f.mu.Unlock()
		return err
	}
	f.current = nil
	emits := f.signOutEmits
	f.mu.Unlock()

	if emits {
		f.emit(session.Event{})
	}
	return nil
}

func (f *fakeAuth) GetSession(_ context.Context) (*session.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getSessionErr != nil {
		return nil, f.getSessionErr
	}
	return f.current, nil
}

func (f *fakeAuth) Subscribe() (<-chan session.Event, func()) {
	ch := make(chan session.Event, 16)
	f.mu.Lock()
	f.subs = append(f.subs, ch)
	f.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s == ch {
					f.subs = append(f.subs[:i], f.subs[i+1:]...)
					break
				}
			}
			close(ch)
		})
	}
}

// emit delivers an event to every live subscriber.
func (f *fakeAuth) emit(ev session.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		ch <- ev
	}
}

func (f *fakeAuth) session() *session.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeAuth) signOuts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCalls
}

func (f *fakeAuth) subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// --- Fake profile store ---

type fakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*session.Profile
	// failures holds errors returned, in order, before the map is consulted.
	failures []error
	calls    int
}

func newFakeProfiles(profiles ...*session.Profile) *fakeProfiles {
	f := &fakeProfiles{profiles: make(map[uuid.UUID]*session.Profile)}
	for _, p := range profiles {
		f.profiles[p.ID] = p
	}
	return f
}

func (f *fakeProfiles) GetProfile(_ context.Context, userID uuid.UUID) (*session.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.failures) > 0 {
		err := f.failures[0]
		f.failures = f.failures[1:]
		return nil, err
	}
	p, ok := f.profiles[userID]
	if !ok {
		return nil, session.ErrProfileNotFound
	}
	return p, nil
}

func (f *fakeProfiles) lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// --- Helpers ---

func newSession(userID uuid.UUID, email string) *session.Session {
	return &session.Session{
		ID:          uuid.New(),
		UserID:      userID,
		Email:       email,
		AccessToken: "token-" + userID.String(),
		ExpiresAt:   time.Now().Add(time.Hour),
	}
}

func adminProfile(userID uuid.UUID) *session.Profile {
	now := time.Now().UTC()
	return &session.Profile{
		ID:        userID,
		Email:     "admin@example.com",
		Role:      session.RoleAdmin,
		FullName:  "Ada Admin",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
