package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUsers map[string]*models.User

func (f fakeUsers) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func newTestSessions(t *testing.T, now *time.Time) *Sessions {
	t.Helper()
	s, err := NewSessions("test-secret", 24*time.Hour, 24*time.Hour)
	require.NoError(t, err)
	s.now = func() time.Time { return *now }
	return s
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))
	assert.False(t, CheckPassword("", "hunter2"))

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrEmptyPassword)
}

func TestNewSessionsRequiresSecret(t *testing.T) {
	_, err := NewSessions("", time.Hour, time.Hour)
	assert.Error(t, err)
}

func TestAuthorize(t *testing.T) {
	hash, err := HashPassword("correct")
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	users := fakeUsers{
		"admin":  {ID: uuid.New(), Username: "admin", PasswordHash: hash},
		"nohash": {ID: uuid.New(), Username: "nohash"},
	}
	a := NewAuthorizer(users, newTestSessions(t, &now))
	ctx := context.Background()

	session, err := a.Authorize(ctx, "admin", "correct")
	require.NoError(t, err)
	assert.Equal(t, "admin", session.Username)
	assert.Equal(t, now.Add(24*time.Hour), session.ExpiresAt)
	assert.NotEmpty(t, session.Token)

	for _, tc := range []struct{ user, pass string }{
		{"admin", "wrong"},
		{"ghost", "correct"},
		{"nohash", ""},
		{"nohash", "anything"},
		{"", ""},
	} {
		s, err := a.Authorize(ctx, tc.user, tc.pass)
		assert.Nil(t, s)
		assert.True(t, errs.IsInvalidCredentialsError(err), "%s/%s", tc.user, tc.pass)
	}
}

func TestParseRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)

	id := uuid.New()
	issued, err := s.Issue(id, "admin", now)
	require.NoError(t, err)

	parsed, err := s.Parse(issued.Token)
	require.NoError(t, err)
	assert.Equal(t, id, parsed.UserID)
	assert.Equal(t, "admin", parsed.Username)
	assert.True(t, parsed.AuthTime.Equal(now))
}

func TestParseRejects(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := newTestSessions(t, &now)
	issued, err := s.Issue(uuid.New(), "admin", now)
	require.NoError(t, err)

	_, err = s.Parse("")
	assert.True(t, errs.IsMissingTokenError(err))

	_, err = s.Parse("not-a-jwt")
	assert.True(t, errs.IsInvalidTokenError(err))

	other, err := NewSessions("other-secret", time.Hour, time.Hour)
	require.NoError(t, err)
	other.now = func() time.Time { return now }
	_, err = other.Parse(issued.Token)
	assert.True(t, errs.IsInvalidTokenError(err))

	now = now.Add(25 * time.Hour)
	_, err = s.Parse(issued.Token)
	assert.True(t, errs.IsExpiredTokenError(err))
}

func TestRefreshRespectsCeiling(t *testing.T) {
	login := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := login
	s := newTestSessions(t, &now)

	session, err := s.Issue(uuid.New(), "admin", login)
	require.NoError(t, err)

	now = login.Add(20 * time.Hour)
	refreshed, err := s.Refresh(session)
	require.NoError(t, err)
	assert.Equal(t, login.Add(24*time.Hour), refreshed.ExpiresAt, "refresh never extends past the max age")

	now = login.Add(24 * time.Hour)
	_, err = s.Refresh(refreshed)
	assert.True(t, errs.IsExpiredTokenError(err))
}

func TestIdleShorterThanMaxAge(t *testing.T) {
	login := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	now := login
	s, err := NewSessions("k", time.Hour, 24*time.Hour)
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	session, err := s.Issue(uuid.New(), "admin", login)
	require.NoError(t, err)
	assert.Equal(t, login.Add(time.Hour), session.ExpiresAt)

	now = login.Add(30 * time.Minute)
	refreshed, err := s.Refresh(session)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), refreshed.ExpiresAt)
}
