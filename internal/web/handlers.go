package web

import (
	"context"
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/kapu/delphi-enrich-web/internal/constants"
	"github.com/kapu/delphi-enrich-web/internal/enrichment"
	"github.com/kapu/delphi-enrich-web/internal/flow"
	"github.com/kapu/delphi-enrich-web/internal/session"
	"github.com/kapu/delphi-enrich-web/pkg/errors"
	"go.uber.org/zap"
)

// operation runs one controller call for a parsed form request.
type operation func(ctx context.Context, c *flow.Controller, r *http.Request) error

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	// Saving on every view keeps the stored snapshot alive as long as the tab is used.
	if err := s.sessions.Save(r.Context(), sess); err != nil {
		s.fail(w, "Session save failed", err)
		return
	}

	page, err := renderPage(buildPageView(sess.Controller.Snapshot(), s.opts.ProfilePanel))
	if err != nil {
		s.fail(w, "Template render failed", err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) action(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, constants.ServerConfig.MaxFormBytes)
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}

		sess, ok := s.session(w, r)
		if !ok {
			return
		}

		ctx := enrichment.WithForwardedFor(r.Context(), clientIP(r, s.opts.TrustProxy))
		err := op(ctx, sess.Controller, r)
		switch {
		case stderrors.Is(err, flow.ErrBusy):
			http.Error(w, "A request is already in progress", http.StatusConflict)
			return
		case err != nil:
			var validationErr *errors.ValidationError
			if stderrors.As(err, &validationErr) && validationErr.Field == "form" {
				http.Error(w, validationErr.Message, http.StatusBadRequest)
				return
			}
			// A stale tab lands on the current panel; the controller already
			// recorded anything else the user needs to see.
			s.logger.Debug("Operation failed",
				zap.String("path", r.URL.Path),
				zap.String("session", sess.ID),
				zap.Error(err),
			)
		}

		if err := s.sessions.Save(r.Context(), sess); err != nil {
			s.fail(w, "Session save failed", err)
			return
		}
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

func (s *Server) enrich(ctx context.Context, c *flow.Controller, r *http.Request) error {
	return c.StartEnrichment(ctx, r.PostFormValue("name"))
}

func (s *Server) submitURL(ctx context.Context, c *flow.Controller, r *http.Request) error {
	return c.SubmitSocialURL(ctx, r.PostFormValue("social_url"))
}

func (s *Server) selectCandidate(ctx context.Context, c *flow.Controller, r *http.Request) error {
	raw := r.PostFormValue("index")
	index, err := strconv.Atoi(raw)
	if err != nil {
		return errors.NewValidationError("invalid candidate index", "form", raw)
	}
	return c.SelectCandidate(ctx, index, r.PostFormValue("url"))
}

func (s *Server) rejectAllCandidates(_ context.Context, c *flow.Controller, _ *http.Request) error {
	return c.RejectAllCandidates()
}

func (s *Server) confirm(ctx context.Context, c *flow.Controller, _ *http.Request) error {
	return c.ConfirmProfile(ctx)
}

func (s *Server) reject(_ context.Context, c *flow.Controller, _ *http.Request) error {
	return c.RejectProfile()
}

func (s *Server) restart(_ context.Context, c *flow.Controller, _ *http.Request) error {
	c.Restart()
	return nil
}

// session resolves the caller's session and refreshes the cookie. It writes
// the error response itself and reports false on failure.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	var id string
	if cookie, err := r.Cookie(constants.SessionConfig.CookieName); err == nil {
		id = cookie.Value
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.fail(w, "Session lookup failed", err)
		return nil, false
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.SessionConfig.CookieName,
		Value:    sess.ID,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, true
}

func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	s.logger.Error(msg, zap.Error(err))
	http.Error(w, constants.Messages.Generic, errors.StatusCode(err))
}
