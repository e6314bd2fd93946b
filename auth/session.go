package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rpupo63/portfolio-cms/errs"
)

const (
	CookieName    = "session_token"
	RefreshHeader = "X-Session-Token"
)

type claims struct {
	Username string `json:"username"`
	AuthTime int64  `json:"auth_time"`
	jwt.RegisteredClaims
}

// Session is an authenticated admin session.
type Session struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AuthTime  time.Time `json:"auth_time"`
	ExpiresAt time.Time `json:"expires_at"`
	Token     string    `json:"-"`
}

// Sessions issues and verifies HS256 session tokens. A token expires after the
// idle window, but never later than maxAge after the original login.
type Sessions struct {
	secret []byte
	idle   time.Duration
	maxAge time.Duration
	now    func() time.Time
}

func NewSessions(secret string, idle, maxAge time.Duration) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}
	if idle <= 0 {
		idle = 24 * time.Hour
	}
	if maxAge <= 0 {
		maxAge = 24 * time.Hour
	}
	return &Sessions{secret: []byte(secret), idle: idle, maxAge: maxAge, now: time.Now}, nil
}

// Issue signs a token for the user. authTime is the moment of the password check.
func (s *Sessions) Issue(userID uuid.UUID, username string, authTime time.Time) (*Session, error) {
	now := s.now().Truncate(time.Second)
	authTime = authTime.Truncate(time.Second)

	expires := now.Add(s.idle)
	if ceiling := authTime.Add(s.maxAge); ceiling.Before(expires) {
		expires = ceiling
	}
	if !expires.After(now) {
		return nil, errs.NewExpiredTokenError()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: username,
		AuthTime: authTime.Unix(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return nil, errs.NewInternalErrorWithCause("could not sign session", err)
	}

	return &Session{
		UserID:    userID,
		Username:  username,
		AuthTime:  authTime,
		ExpiresAt: expires,
		Token:     signed,
	}, nil
}

// Parse verifies raw and returns the session it carries.
func (s *Sessions) Parse(raw string) (*Session, error) {
	if raw == "" {
		return nil, errs.NewMissingTokenError()
	}

	c := &claims{}
	tok, err := jwt.ParseWithClaims(raw, c, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errs.NewExpiredTokenError()
		}
		return nil, errs.NewInvalidTokenError()
	}
	if !tok.Valid {
		return nil, errs.NewInvalidTokenError()
	}

	userID, err := uuid.Parse(c.Subject)
	if err != nil || c.AuthTime == 0 {
		return nil, errs.NewInvalidTokenError()
	}

	return &Session{
		UserID:    userID,
		Username:  c.Username,
		AuthTime:  time.Unix(c.AuthTime, 0),
		ExpiresAt: c.ExpiresAt.Time,
		Token:     raw,
	}, nil
}

// Refresh re-issues the session with a fresh idle window, keeping the original
// login time so the hard ceiling still applies.
func (s *Sessions) Refresh(session *Session) (*Session, error) {
	return s.Issue(session.UserID, session.Username, session.AuthTime)
}

// MaxAge is the longest a session can live.
func (s *Sessions) MaxAge() time.Duration { return s.maxAge }
