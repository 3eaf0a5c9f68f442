package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/session"
)

const (
	testBcryptCost = 4 // low cost for fast tests
	testSecret     = "test-secret-with-enough-entropy"
	testIssuer     = "residentdesk-test"
)

// --- In-memory repository ---

type memRepo struct {
	mu        sync.Mutex
	accounts  map[string]*auth.Account
	sessions  map[uuid.UUID]*auth.SessionRecord
	revokeErr error
	getErr    error
}

func newMemRepo() *memRepo {
	return &memRepo{
		accounts: make(map[string]*auth.Account),
		sessions: make(map[uuid.UUID]*auth.SessionRecord),
	}
}

func (m *memRepo) CreateAccount(_ context.Context, a *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Email = strings.ToLower(a.Email)
	if _, ok := m.accounts[a.Email]; ok {
		return auth.ErrDuplicateEmail
	}
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.accounts[a.Email] = &cp
	return nil
}

func (m *memRepo) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memRepo) CountAccounts(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

func (m *memRepo) CreateSession(_ context.Context, s *auth.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memRepo) GetSession(_ context.Context, id uuid.UUID) (*auth.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memRepo) RevokeSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.revokeErr != nil {
		return m.revokeErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return auth.ErrSessionNotFound
	}
	if s.RevokedAt != nil {
		return auth.ErrSessionRevoked
	}
	now := time.Now().UTC()
	s.RevokedAt = &now
	return nil
}

func (m *memRepo) DeleteSessionsBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for id, s := range m.sessions {
		if s.ExpiresAt.Before(cutoff) || (s.RevokedAt != nil && s.RevokedAt.Before(cutoff)) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) revoked(id uuid.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return ok && s.RevokedAt != nil
}

// --- Profile creator ---

type memProfiles struct {
	created []*session.Profile
}

func (m *memProfiles) Create(_ context.Context, p *session.Profile) error {
	m.created = append(m.created, p)
	return nil
}

// --- Helpers ---

func newTestService(repo auth.Repository, ttl time.Duration) *auth.Service {
	return auth.NewService(repo, auth.NewTokenIssuer(testSecret, testIssuer), ttl, testBcryptCost)
}
