package exportfiber

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-gridexport/adapters/exportapi"
	"github.com/goliatone/go-gridexport/export"
	"github.com/goliatone/go-gridexport/locale"
	"golang.org/x/text/language"
)

// Default cookie names.
const (
	DefaultLocaleCookie     = "locale"
	DefaultRememberMeCookie = "remember-me"
)

// Config configures the fiber adapter.
type Config = exportapi.Config

// Handler exposes grid export routes for fiber.
type Handler struct {
	controller *exportapi.Controller
}

// NewHandler creates a fiber handler. Requests carrying the remember-me
// cookie authenticate as remember-me unless cfg.Authenticate is set.
func NewHandler(cfg Config) *Handler {
	if cfg.Authenticate == nil {
		cfg.Authenticate = rememberMeCookie
	}
	return &Handler{controller: exportapi.NewController(cfg)}
}

// Handle executes the shared export workflow.
func (h *Handler) Handle(c *fiber.Ctx) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		exportapi.WriteError(fiberResponse{ctx: c}, export.NewError(export.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(fiberRequest{ctx: c}, fiberResponse{ctx: c})
	return nil
}

// RegisterRoutes mounts the export routes on a fiber router.
func (h *Handler) RegisterRoutes(r fiber.Router) {
	base := exportapi.DefaultBasePath
	if h != nil && h.controller != nil && h.controller.BasePath() != "" {
		base = h.controller.BasePath()
	}
	r.Get(base, h.Handle)
	r.Get(base+"/:grid", h.Handle)
	r.Get(base+"/:grid/preview", h.Handle)
	r.Get(base+"/artifacts/:grid/:id/:filename", h.Handle)
	r.Post(base+"/:grid", h.Handle)
}

// SessionMiddleware binds a locale.Session built from the locale cookie to
// the request user context.
func SessionMiddleware(cookieName string) fiber.Handler {
	if cookieName == "" {
		cookieName = DefaultLocaleCookie
	}
	return func(c *fiber.Ctx) error {
		session := locale.Session{ID: c.Cookies(DefaultRememberMeCookie)}
		if raw := c.Cookies(cookieName); raw != "" {
			session.Locale = locale.ParseTag(raw, language.Und)
		}
		c.SetUserContext(locale.WithSession(c.UserContext(), session))
		return c.Next()
	}
}

// NewDownloader returns an export.Downloader writing attachments through c.
func NewDownloader(c *fiber.Ctx) export.Downloader {
	return exportapi.NewResponseDownloader(fiberResponse{ctx: c})
}

func rememberMeCookie(req exportapi.Request) locale.Authentication {
	if fr, ok := req.(fiberRequest); ok {
		if value := fr.ctx.Cookies(DefaultRememberMeCookie); value != "" {
			return locale.Authentication{Principal: value, Method: locale.MethodRememberMe}
		}
	}
	return locale.Authentication{Method: locale.MethodAnonymous}
}
