package session

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatehouse/cmd/identity"
	"gatehouse/cmd/security/token"
)

// memStore is an in-memory Store for service tests. It mirrors the
// Postgres predicates, including ownership scoping and liveness
// filters.
type memStore struct {
	mu       sync.Mutex
	sessions map[string]Session
	users    map[string]identity.User
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[string]Session),
		users:    make(map[string]identity.User),
	}
}

func (m *memStore) putUser(u identity.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
}

func (m *memStore) Create(_ context.Context, in CreateInput) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, err := identity.NewULID(in.Now)
	if err != nil {
		return Session{}, err
	}
	row := Session{
		ID:        id,
		UserID:    in.UserID,
		TokenHash: in.TokenHash,
		ExpiresAt: in.ExpiresAt,
		UserAgent: in.UserAgent,
		IPAddress: in.IPAddress,
		IsActive:  true,
		CreatedAt: in.Now,
	}
	m.sessions[id] = row
	return row, nil
}

func (m *memStore) GetWithUserByTokenHash(_ context.Context, tokenHash string) (Session, identity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.sessions {
		if row.TokenHash == tokenHash && row.IsActive {
			return row, m.users[row.UserID], nil
		}
	}
	return Session{}, identity.User{}, ErrSessionNotFound
}

func (m *memStore) Refresh(_ context.Context, sessionID, newTokenHash string, newExpiresAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.sessions[sessionID]
	if !ok || !row.IsActive {
		return ErrSessionNotFound
	}
	row.TokenHash = newTokenHash
	row.ExpiresAt = newExpiresAt
	m.sessions[sessionID] = row
	return nil
}

func (m *memStore) ListActive(_ context.Context, userID string, now time.Time) ([]Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Session
	for _, row := range m.sessions {
		if row.UserID == userID && row.Live(now) {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *memStore) GetForUser(_ context.Context, sessionID, userID string, now time.Time) (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.sessions[sessionID]
	if !ok || row.UserID != userID || !row.Live(now) {
		return Session{}, ErrSessionNotFound
	}
	return row, nil
}

func (m *memStore) Terminate(_ context.Context, sessionID, userID string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.sessions[sessionID]
	if !ok || row.UserID != userID || !row.Live(now) {
		return ErrSessionNotFound
	}
	row.IsActive = false
	m.sessions[sessionID] = row
	return nil
}

func (m *memStore) TerminateAll(_ context.Context, userID string, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, row := range m.sessions {
		if row.UserID == userID && row.Live(now) {
			row.IsActive = false
			m.sessions[id] = row
			n++
		}
	}
	return n, nil
}

func (m *memStore) DeleteExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, row := range m.sessions {
		if row.ExpiresAt.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestService(t *testing.T, store Store) *Service {
	t.Helper()
	svc, err := NewService(DefaultConfig(), testKey, store)
	require.NoError(t, err)
	return svc
}

func activeUser(store *memStore, id string) identity.User {
	u := identity.User{
		ID:       id,
		Email:    id + "@example.com",
		Username: id + "@example.com",
		IsActive: true,
		Role:     identity.RoleUser,
	}
	store.putUser(u)
	return u
}

func TestIssue_TokenShapeAndExpiry(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "issue-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	out, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	require.Len(t, out.Token, 64, "32 random bytes hex-encode to 64 chars")
	require.Equal(t, now.Add(24*time.Hour), out.Session.ExpiresAt)
	require.True(t, out.Session.IsActive)
	require.NotEqual(t, out.Token, out.Session.TokenHash)
	require.Equal(t, token.HashSessionTokenHex(out.Token, testKey), out.Session.TokenHash)
}

func TestAuthenticate_NoRefreshOutsideWindow(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "fresh-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	// 23h of life left, well outside the 1h window.
	got, err := svc.Authenticate(context.Background(), issued.Token, now.Add(1*time.Hour))
	require.NoError(t, err)
	require.Empty(t, got.RefreshedToken)
	require.Equal(t, issued.Session.ID, got.Session.ID)
	require.Equal(t, issued.Session.ExpiresAt, got.Session.ExpiresAt)
	require.Equal(t, u.ID, got.User.ID)
}

func TestAuthenticate_RefreshInsideWindow(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "refresh-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	// 30 minutes of life left: refresh fires.
	at := now.Add(23*time.Hour + 30*time.Minute)
	got, err := svc.Authenticate(context.Background(), issued.Token, at)
	require.NoError(t, err)
	require.NotEmpty(t, got.RefreshedToken)
	require.NotEqual(t, issued.Token, got.RefreshedToken)
	require.Equal(t, at.Add(24*time.Hour), got.Session.ExpiresAt)

	// Old token is dead; the refreshed one authenticates.
	_, err = svc.Authenticate(context.Background(), issued.Token, at)
	require.ErrorIs(t, err, ErrSessionNotFound)

	again, err := svc.Authenticate(context.Background(), got.RefreshedToken, at)
	require.NoError(t, err)
	require.Equal(t, issued.Session.ID, again.Session.ID)
	require.Empty(t, again.RefreshedToken)
}

func TestAuthenticate_BoundaryJustOutsideWindow(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "boundary-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	// Remaining lifetime exactly equals the window: no refresh.
	at := now.Add(23 * time.Hour)
	got, err := svc.Authenticate(context.Background(), issued.Token, at)
	require.NoError(t, err)
	require.Empty(t, got.RefreshedToken)
}

func TestAuthenticate_ExpiredAndUnknown(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "expired-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), issued.Token, now.Add(25*time.Hour))
	require.ErrorIs(t, err, ErrSessionExpired)

	_, err = svc.Authenticate(context.Background(), "not-a-real-token", now)
	require.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Authenticate(context.Background(), "", now)
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestAuthenticate_DeactivatedOwner(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)

	u := identity.User{ID: "inactive-user", IsActive: false, Role: identity.RoleUser}
	store.putUser(u)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), issued.Token, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrOwnerDeactivated)
}

func TestTerminate_HidesFromListAndFailsReauth(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "terminate-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	a, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)
	b, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now.Add(time.Second)})
	require.NoError(t, err)

	list, err := svc.List(context.Background(), u.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 2)
	// Newest first.
	require.Equal(t, b.Session.ID, list[0].ID)

	require.NoError(t, svc.Terminate(context.Background(), u.ID, a.Session.ID, now.Add(time.Minute)))

	list, err = svc.List(context.Background(), u.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, b.Session.ID, list[0].ID)

	_, err = svc.Authenticate(context.Background(), a.Token, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrSessionNotFound)

	// Repeat termination and foreign termination look identical.
	err = svc.Terminate(context.Background(), u.ID, a.Session.ID, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrSessionNotFound)
	err = svc.Terminate(context.Background(), "someone-else", b.Session.ID, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestTerminateAll_CountsLiveSessions(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "terminate-all-user")
	other := activeUser(store, "bystander-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}
	keep, err := svc.Issue(context.Background(), IssueInput{UserID: other.ID, Now: now})
	require.NoError(t, err)

	n, err := svc.TerminateAll(context.Background(), u.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	list, err := svc.List(context.Background(), u.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.Empty(t, list)

	// The bystander is untouched.
	_, err = svc.Authenticate(context.Background(), keep.Token, now.Add(time.Minute))
	require.NoError(t, err)

	// Second bulk call affects nothing.
	n, err = svc.TerminateAll(context.Background(), u.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestLogout_ToleratesMissingSession(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "logout-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	issued, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), u.ID, issued.Session.ID, now.Add(time.Minute)))
	// Already gone: still fine.
	require.NoError(t, svc.Logout(context.Background(), u.ID, issued.Session.ID, now.Add(time.Minute)))

	_, err = svc.Authenticate(context.Background(), issued.Token, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepExpired_RespectsRetention(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	svc := newTestService(t, store)
	u := activeUser(store, "sweep-user")

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Expired 2 days ago: past the 24h retention, swept.
	_, err := svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now.Add(-72 * time.Hour)})
	require.NoError(t, err)
	// Expired 1 hour ago: inside retention, kept.
	_, err = svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now.Add(-25 * time.Hour)})
	require.NoError(t, err)
	// Live: kept.
	_, err = svc.Issue(context.Background(), IssueInput{UserID: u.ID, Now: now})
	require.NoError(t, err)

	n, err := svc.SweepExpired(context.Background(), now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestNewService_RejectsBadConfig(t *testing.T) {
	t.Parallel()

	store := newMemStore()

	bad := DefaultConfig()
	bad.RefreshWindow = bad.TTL
	_, err := NewService(bad, testKey, store)
	require.ErrorIs(t, err, ErrConfig)

	bad = DefaultConfig()
	bad.TokenBytes = 8
	_, err = NewService(bad, testKey, store)
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewService(DefaultConfig(), nil, store)
	require.ErrorIs(t, err, ErrConfig)

	_, err = NewService(DefaultConfig(), testKey, nil)
	require.ErrorIs(t, err, ErrConfig)
}
