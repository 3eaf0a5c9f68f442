package main

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/residentdesk/residentdesk/internal/api/validation"
	"github.com/residentdesk/residentdesk/internal/auth"
	"github.com/residentdesk/residentdesk/internal/issue"
	"github.com/residentdesk/residentdesk/internal/resident"
	"github.com/residentdesk/residentdesk/internal/session"
)

// --- Fakes ---

type memAuthRepo struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
	sessions map[uuid.UUID]*auth.SessionRecord
}

func (m *memAuthRepo) CreateAccount(_ context.Context, a *auth.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.Email = strings.ToLower(a.Email)
	if _, ok := m.accounts[a.Email]; ok {
		return auth.ErrDuplicateEmail
	}
	a.ID = uuid.New()
	cp := *a
	m.accounts[a.Email] = &cp
	return nil
}

func (m *memAuthRepo) GetAccountByEmail(_ context.Context, email string) (*auth.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[strings.ToLower(email)]
	if !ok {
		return nil, auth.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAuthRepo) CountAccounts(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.accounts), nil
}

func (m *memAuthRepo) CreateSession(_ context.Context, s *auth.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = uuid.New()
	s.CreatedAt = time.Now().UTC()
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memAuthRepo) GetSession(_ context.Context, id uuid.UUID) (*auth.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, auth.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memAuthRepo) RevokeSession(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *memAuthRepo) DeleteSessionsBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

type memProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]session.Profile
}

func (m *memProfiles) GetProfile(_ context.Context, id uuid.UUID) (*session.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, session.ErrProfileNotFound
	}
	return &p, nil
}

func (m *memProfiles) Create(_ context.Context, p *session.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.ID] = *p
	return nil
}

func (m *memProfiles) List(context.Context) ([]session.Profile, error) {
	return nil, nil
}

func (m *memProfiles) UpdateFullName(context.Context, uuid.UUID, string) (*session.Profile, error) {
	return nil, session.ErrProfileNotFound
}

func (m *memProfiles) remove(id uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, id)
}

// countingResidents records how often the repository was reached.
type countingResidents struct {
	resident.Repository
	calls   int
	created *resident.Resident
	stored  *resident.Resident
}

func (c *countingResidents) List(_ context.Context, f resident.ListFilter) (*resident.ListResult, error) {
	c.calls++
	return &resident.ListResult{Residents: []resident.Resident{}, Page: f.Page, Limit: f.Limit}, nil
}

func (c *countingResidents) Create(_ context.Context, res *resident.Resident) error {
	c.calls++
	res.ID = uuid.New()
	c.created = res
	return nil
}

func (c *countingResidents) GetByID(_ context.Context, id uuid.UUID) (*resident.Resident, error) {
	c.calls++
	if c.stored == nil || c.stored.ID != id {
		return nil, resident.ErrNotFound
	}
	return c.stored, nil
}

func (c *countingResidents) Update(_ context.Context, _ uuid.UUID, _ resident.UpdateFields) (*resident.Resident, error) {
	c.calls++
	return c.stored, nil
}

type recordingIssues struct {
	issue.Repository
	created issue.NewIssue
}

func (r *recordingIssues) Create(_ context.Context, in issue.NewIssue) (*issue.Issue, error) {
	r.created = in
	return &issue.Issue{ID: uuid.New(), Title: in.Title, Priority: in.Priority, Status: issue.StatusPending}, nil
}

// syncBuffer is a bytes.Buffer safe for a writer and a polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// --- Helpers ---

type fixture struct {
	app       *app
	authRepo  *memAuthRepo
	profiles  *memProfiles
	residents *countingResidents
	issues    *recordingIssues
	store     *auth.MemoryTokenStore
	out       *syncBuffer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		authRepo: &memAuthRepo{
			accounts: make(map[string]*auth.Account),
			sessions: make(map[uuid.UUID]*auth.SessionRecord),
		},
		profiles:  &memProfiles{profiles: make(map[uuid.UUID]session.Profile)},
		residents: &countingResidents{},
		issues:    &recordingIssues{},
		store:     auth.NewMemoryTokenStore(""),
		out:       &syncBuffer{},
	}
	f.app = &app{
		svc:       auth.NewService(f.authRepo, auth.NewTokenIssuer("cli-test-secret", "residentdesk-test"), time.Hour, 4),
		profiles:  f.profiles,
		residents: f.residents,
		issues:    f.issues,
		store:     f.store,
		out:       f.out,
	}
	return f
}

func (f *fixture) addAccount(t *testing.T, email string, withProfile bool) uuid.UUID {
	t.Helper()
	a, err := f.app.svc.CreateAccount(context.Background(), email, "password1")
	require.NoError(t, err)
	if withProfile {
		require.NoError(t, f.profiles.Create(context.Background(), &session.Profile{
			ID:    a.ID,
			Email: a.Email,
			Role:  session.RoleAdmin,
		}))
	}
	return a.ID
}

func storedToken(t *testing.T, s auth.TokenStore) string {
	t.Helper()
	token, err := s.Load()
	require.NoError(t, err)
	return token
}

// --- Tests ---

func TestLogin_StoresTokenForLaterCommands(t *testing.T) {
	f := newFixture(t)
	id := f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()

	p, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.NotEmpty(t, storedToken(t, f.store))

	got, err := f.app.requireAdmin(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}

func TestLogin_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)

	_, err := f.app.login(context.Background(), "admin@example.com", "not-the-password")

	assert.EqualError(t, err, "invalid email or password")
	assert.Empty(t, storedToken(t, f.store))
}

func TestLogin_NoProfileIsDenied(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "tenant@example.com", false)

	_, err := f.app.login(context.Background(), "tenant@example.com", "password1")

	assert.ErrorIs(t, err, session.ErrAuthorizationDenied)
	assert.Empty(t, storedToken(t, f.store), "denied session must not be remembered")
}

func TestLogin_InvalidEmail(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.login(context.Background(), "nope", "password1")

	assert.Error(t, err)
}

func TestRequireAdmin_NotSignedIn(t *testing.T) {
	f := newFixture(t)

	_, err := f.app.requireAdmin(context.Background())

	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestRequireAdmin_ProfileRemovedAfterLogin(t *testing.T) {
	f := newFixture(t)
	id := f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	f.profiles.remove(id)

	_, err = f.app.requireAdmin(ctx)
	assert.ErrorIs(t, err, errNotSignedIn)
	assert.Eventually(t, func() bool {
		token, _ := f.store.Load()
		return token == ""
	}, 2*time.Second, 5*time.Millisecond, "the stale session should be signed out")
}

func TestLogout_ClearsSession(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	require.NoError(t, f.app.logout(ctx))

	assert.Empty(t, storedToken(t, f.store))
	_, err = f.app.requireAdmin(ctx)
	assert.ErrorIs(t, err, errNotSignedIn)
}

func TestLogout_WithoutSessionIsNoop(t *testing.T) {
	f := newFixture(t)

	assert.NoError(t, f.app.logout(context.Background()))
}

func TestDataCommands_RefuseWithoutSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.app.listResidents(ctx, resident.ListFilter{Page: 1, Limit: 20})
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = f.app.createResident(ctx, validation.CreateResidentRequest{}, residentExtras{})
	assert.ErrorIs(t, err, errNotSignedIn)

	_, err = f.app.listIssues(ctx)
	assert.ErrorIs(t, err, errNotSignedIn)

	assert.Zero(t, f.residents.calls, "repository must not be reached without a session")
}

func TestCreateResident_ValidatesAndStores(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	_, err = f.app.createResident(ctx, validation.CreateResidentRequest{FirstName: "Jane"}, residentExtras{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lastName is required")

	notes := "prefers email"
	res, err := f.app.createResident(ctx, validation.CreateResidentRequest{
		FirstName:       " Jane ",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Phone:           "555-0100",
		ApartmentNumber: "4B",
		Building:        "North",
		MoveInDate:      "2024-03-01",
	}, residentExtras{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Jane", res.FirstName)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), res.MoveInDate)
	require.NotNil(t, f.residents.created)
	assert.Equal(t, &notes, f.residents.created.Notes)
}

func TestUpdateResident_MoveOutBeforeStoredMoveIn(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	f.residents.stored = &resident.Resident{ID: uuid.New(), MoveInDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
	moveOut := "2024-01-01"

	_, err = f.app.updateResident(ctx, f.residents.stored.ID, validation.UpdateResidentRequest{MoveOutDate: &moveOut}, residentExtras{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "moveOutDate must not be before moveInDate")
}

func TestCreateIssue_RecordsSignedInAdmin(t *testing.T) {
	f := newFixture(t)
	id := f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	_, err = f.app.createIssue(ctx, validation.CreateIssueRequest{
		Title:       "Broken lift",
		Description: "Stuck on floor 3",
		Priority:    "high",
	}, "Elevator", "4B")
	require.NoError(t, err)

	require.NotNil(t, f.issues.created.SubmittedBy)
	assert.Equal(t, id, *f.issues.created.SubmittedBy)
	assert.Equal(t, "Elevator", f.issues.created.Category)
	assert.Equal(t, issue.PriorityHigh, f.issues.created.Priority)
}

func TestSetIssueStatus_Invalid(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)
	ctx := context.Background()
	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)

	_, err = f.app.setIssueStatus(ctx, uuid.New(), "closed")

	assert.Error(t, err)
}

func TestWatch_ReportsRevocation(t *testing.T) {
	f := newFixture(t)
	f.addAccount(t, "admin@example.com", true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := f.app.login(ctx, "admin@example.com", "password1")
	require.NoError(t, err)
	sess, err := f.app.svc.Verify(ctx, storedToken(t, f.store))
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- f.app.watch(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "signed in as admin@example.com")
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, f.app.svc.Revoke(context.Background(), sess.ID))

	require.Eventually(t, func() bool {
		return strings.Contains(f.out.String(), "signed out")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not return after cancel")
	}
}
