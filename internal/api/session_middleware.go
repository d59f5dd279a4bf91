package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookreview/bookreview-server/internal/session"
)

// withCartSession loads the shopping session named by the cookie, or starts
// a new one when the cookie is missing, malformed or expired. The session
// reaches handlers through the request context.
func (s *Server) withCartSession(ctx huma.Context, next func(huma.Context)) {
	if s.sessions == nil {
		_ = huma.WriteErr(s.api, ctx, http.StatusServiceUnavailable, "session store not configured")
		return
	}

	var sess *session.Session
	if cookie, err := huma.ReadCookie(ctx, s.cookie.Name); err == nil && session.ValidID(cookie.Value) {
		loaded, err := s.sessions.Load(ctx.Context(), cookie.Value)
		switch {
		case err == nil:
			sess = loaded
		case errors.Is(err, session.ErrSessionNotFound):
		default:
			s.logger.ErrorContext(ctx.Context(), "failed to load session", "error", err)
			_ = huma.WriteErr(s.api, ctx, http.StatusInternalServerError, "failed to load session", err)
			return
		}
	}

	if sess == nil {
		sess = session.New(s.now().UTC())
		if err := s.sessions.Save(ctx.Context(), sess); err != nil {
			s.logger.ErrorContext(ctx.Context(), "failed to create session", "error", err)
			_ = huma.WriteErr(s.api, ctx, http.StatusInternalServerError, "failed to create session", err)
			return
		}
	}

	cookie := &http.Cookie{
		Name:     s.cookie.Name,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.cookie.TTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	ctx.AppendHeader("Set-Cookie", cookie.String())

	next(huma.WithContext(ctx, session.WithSession(ctx.Context(), sess)))
}

// cartSession returns the session attached by withCartSession.
func cartSession(ctx context.Context) (*session.Session, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return nil, huma.Error500InternalServerError("shopping session missing")
	}
	return sess, nil
}
