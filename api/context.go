package api

import (
	"context"

	"github.com/rpupo63/portfolio-cms/auth"
)

type keyType string

const sessionKey keyType = "session"

func ctxWithSession(ctx context.Context, session *auth.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// ctxGetSession returns the session put there by the session middleware
func ctxGetSession(ctx context.Context) (*auth.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*auth.Session)
	return session, ok && session != nil
}
