// Package auth checks admin credentials and manages the signed session that
// gates every mutating route.
package auth

import (
	"context"
	"errors"

	"github.com/rpupo63/portfolio-cms/errs"
	"github.com/rpupo63/portfolio-cms/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type UserFinder interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

type Authorizer struct {
	users    UserFinder
	sessions *Sessions
	logger   zerolog.Logger
}

func NewAuthorizer(users UserFinder, sessions *Sessions) *Authorizer {
	return &Authorizer{
		users:    users,
		sessions: sessions,
		logger:   log.With().Str("component", "authorizer").Logger(),
	}
}

// Authorize checks the credentials and opens a session. Every rejection returns
// the same invalid credentials error; the actual reason is only logged.
func (a *Authorizer) Authorize(ctx context.Context, username, password string) (*Session, error) {
	if username == "" || password == "" {
		a.logger.Info().Msg("Login rejected: missing username or password")
		return nil, errs.NewInvalidCredentialsError()
	}

	user, err := a.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			a.logger.Info().Str("username", username).Msg("Login rejected: unknown user")
			return nil, errs.NewInvalidCredentialsError()
		}
		return nil, errs.NewDatabaseError("find", "user", err)
	}

	if user.PasswordHash == "" {
		a.logger.Warn().Str("username", username).Msg("Login rejected: user has no password set")
		return nil, errs.NewInvalidCredentialsError()
	}
	if !CheckPassword(user.PasswordHash, password) {
		a.logger.Info().Str("username", username).Msg("Login rejected: wrong password")
		return nil, errs.NewInvalidCredentialsError()
	}

	return a.sessions.Issue(user.ID, user.Username, a.sessions.now())
}

func (a *Authorizer) Sessions() *Sessions { return a.sessions }
