package exporthttp

import (
	"net/http"

	"github.com/goliatone/go-gridexport/adapters/exportapi"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
)

// Default cookie names.
const (
	DefaultLocaleCookie     = "locale"
	DefaultRememberMeCookie = "remember-me"
)

// SessionMiddleware binds a locale.Session built from the locale cookie to
// every request context.
func SessionMiddleware(cookieName string, next http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultLocaleCookie
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session := locale.Session{}
		if cookie, err := r.Cookie(cookieName); err == nil {
			session.Locale = locale.ParseTag(cookie.Value, language.Und)
		}
		next.ServeHTTP(w, r.WithContext(locale.WithSession(r.Context(), session)))
	})
}

// CookieAuthenticator treats requests carrying the remember-me cookie as
// remember-me logins. Validating the cookie is left to the auth layer.
type CookieAuthenticator struct {
	Cookie string
}

// Authenticate implements exportapi.Authenticator.
func (a CookieAuthenticator) Authenticate(req exportapi.Request) locale.Authentication {
	name := a.Cookie
	if name == "" {
		name = DefaultRememberMeCookie
	}
	cookies, ok := req.(interface{ Cookie(string) string })
	if !ok {
		return locale.Authentication{Method: locale.MethodAnonymous}
	}
	if value := cookies.Cookie(name); value != "" {
		return locale.Authentication{Principal: value, Method: locale.MethodRememberMe}
	}
	return locale.Authentication{Method: locale.MethodAnonymous}
}
