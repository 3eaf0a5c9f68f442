package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/residentdesk/residentdesk/internal/session"
)

// ErrInvalidCredentials is returned when the email/password pair is rejected.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// ErrWeakPassword is returned when a new password is too short.
var ErrWeakPassword = errors.New("password must be at least 8 characters")

const minPasswordLength = 8

// ProfileCreator creates admin profiles. It is satisfied by profile.Repository.
type ProfileCreator interface {
	Create(ctx context.Context, p *session.Profile) error
}

// Service provides credential checks and session lifecycle operations.
// Per-consumer session handling lives in Client.
type Service struct {
	repo       Repository
	tokens     *TokenIssuer
	ttl        time.Duration
	bcryptCost int
	now        func() time.Time

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewService creates a new auth Service.
func NewService(repo Repository, tokens *TokenIssuer, ttl time.Duration, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		tokens:     tokens,
		ttl:        ttl,
		bcryptCost: bcryptCost,
		now:        time.Now,
		clients:    make(map[*Client]struct{}),
	}
}

// CreateAccount hashes the password and stores a new account.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	a := &Account{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
	}
	if err := s.repo.CreateAccount(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate checks the credentials and opens a new session.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*session.Session, error) {
	a, err := s.repo.GetAccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("finding account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	rec := &SessionRecord{
		AccountID: a.ID,
		Email:     a.Email,
		ExpiresAt: s.now().Add(s.ttl).UTC(),
	}
	if err := s.repo.CreateSession(ctx, rec); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	token, err := s.tokens.Issue(rec)
	if err != nil {
		return nil, err
	}

	return toSession(rec, token), nil
}

// Verify resolves an access token to its live session. Tokens whose
// session was revoked or has expired are rejected.
func (s *Service) Verify(ctx context.Context, token string) (*session.Session, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	accountID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrInvalidToken
	}

	rec, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("loading session: %w", err)
	}

	if rec.AccountID != accountID {
		return nil, ErrInvalidToken
	}
	if rec.RevokedAt != nil {
		return nil, ErrSessionRevoked
	}
	if !s.now().Before(rec.ExpiresAt) {
		return nil, ErrTokenExpired
	}

	return toSession(rec, token), nil
}

// Revoke ends a session. Revoking an already revoked session succeeds.
// Clients in this process holding the session are told immediately;
// other processes learn about it through Listener.
func (s *Service) Revoke(ctx context.Context, sessionID uuid.UUID) error {
	if err := s.repo.RevokeSession(ctx, sessionID); err != nil && !errors.Is(err, ErrSessionRevoked) {
		return err
	}
	s.dispatchRevoked(sessionID)
	return nil
}

// NewClient returns a Client that persists its token in store.
func (s *Service) NewClient(store TokenStore) *Client {
	return &Client{
		svc:   s,
		store: store,
		subs:  make(map[int]chan session.Event),
	}
}

// BootstrapSuperAdmin creates the initial super admin if the accounts table
// is empty. Returns the generated password (only displayed once). If
// accounts already exist, returns empty string.
func (s *Service) BootstrapSuperAdmin(ctx context.Context, email string, profiles ProfileCreator) (string, error) {
	count, err := s.repo.CountAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("counting accounts: %w", err)
	}

	if count > 0 {
		return "", nil
	}

	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating random bytes: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(b)

	a, err := s.CreateAccount(ctx, email, password)
	if err != nil {
		return "", fmt.Errorf("creating super admin account: %w", err)
	}

	p := &session.Profile{
		ID:       a.ID,
		Email:    a.Email,
		Role:     session.RoleSuperAdmin,
		FullName: "Super Admin",
	}
	if err := profiles.Create(ctx, p); err != nil {
		return "", fmt.Errorf("creating super admin profile: %w", err)
	}

	slog.Info("super admin account created", "email", a.Email)

	return password, nil
}

func (s *Service) register(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = struct{}{}
}

func (s *Service) unregister(c *Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.clients, c)
}

// dispatchRevoked tells every subscribed client that sessionID ended.
func (s *Service) dispatchRevoked(sessionID uuid.UUID) {
	s.mu.Lock()
	clients := make([]*Client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		c.drop(sessionID)
	}
}

func toSession(rec *SessionRecord, token string) *session.Session {
	return &session.Session{
		ID:          rec.ID,
		UserID:      rec.AccountID,
		Email:       rec.Email,
		AccessToken: token,
		ExpiresAt:   rec.ExpiresAt,
	}
}
