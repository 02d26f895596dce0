// Package locale picks the display locale for an authenticated request.
package locale

import (
	"context"
	"math"
	"strings"

	"golang.org/x/text/language"
)

// Resolver ordering bounds. Lower orders run first.
const (
	HighestPrecedence = math.MinInt32
	LowestPrecedence  = math.MaxInt32
)

// Method identifies how a principal authenticated.
type Method string

const (
	MethodPassword   Method = "password"
	MethodRememberMe Method = "remember_me"
	MethodToken      Method = "token"
	MethodAnonymous  Method = "anonymous"
)

// Authentication describes the current principal.
type Authentication struct {
	Principal string
	Method    Method
}

// Resolver resolves the locale for authentications it supports.
type Resolver interface {
	Supports(auth Authentication) bool
	Locale(ctx context.Context, auth Authentication) language.Tag
	Order() int
}

// Session is the per-user UI session bound to a request context.
type Session struct {
	ID     string
	Locale language.Tag
}

type sessionKey struct{}

// WithSession binds session to ctx.
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session bound to ctx.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(sessionKey{}).(Session)
	return session, ok
}

// RememberMeResolver serves remember-me logins. The session locale was already
// settled when the session was restored (cookie included), so it is returned
// as is; requests without a session get Default.
type RememberMeResolver struct {
	Default language.Tag
}

// Supports implements Resolver.
func (r RememberMeResolver) Supports(auth Authentication) bool {
	return auth.Method == MethodRememberMe
}

// Locale implements Resolver.
func (r RememberMeResolver) Locale(ctx context.Context, auth Authentication) language.Tag {
	_ = auth
	if session, ok := SessionFromContext(ctx); ok && session.Locale != language.Und {
		return session.Locale
	}
	return r.Default
}

// Order implements Resolver.
func (r RememberMeResolver) Order() int {
	return HighestPrecedence + 90
}

// ParseTag parses a BCP 47 tag, returning fallback when raw is empty or invalid.
func ParseTag(raw string, fallback language.Tag) language.Tag {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}
	tag, err := language.Parse(strings.ReplaceAll(raw, "_", "-"))
	if err != nil {
		return fallback
	}
	return tag
}
