package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/Simplici0/quotedesk/internal/archive"
	"github.com/Simplici0/quotedesk/internal/export"
	"github.com/Simplici0/quotedesk/internal/session"
)

type server struct {
	sessions *session.Manager
	exporter *export.Exporter
	archive  *archive.Store
	cookies  *cookieSigner
	logger   zerolog.Logger
}

func newServer(sessions *session.Manager, exporter *export.Exporter, store *archive.Store, cookies *cookieSigner, logger zerolog.Logger) *server {
	return &server{sessions: sessions, exporter: exporter, archive: store, cookies: cookies, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/session", func(r chi.Router) {
		r.Use(s.withSession)
		r.Get("/", s.handleView)
		r.Post("/project", s.handleSelectProject)
		r.Post("/reload", s.handleReload)
		r.Post("/items/toggle", s.handleToggle)
		r.Post("/items/quantity", s.handleQuantity)
		r.Post("/filter", s.handleFilter)
		r.Post("/additional-cost", s.handleAdditionalCost)
		r.Post("/quote", s.handleGenerateQuote)
		r.Post("/save", s.handleSaveQuote)
	})

	r.Get("/quotes", s.handleQuotesList)
	r.Get("/quotes/{id}.pdf", s.handleQuotePDF)

	return r
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("request")
}

type sessionKey struct{}

// withSession attaches the caller's quote session and refreshes its cookie.
// Only GET starts a new session when the cookie is missing, forged or
// expired; other methods are rejected.
func (s *server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id, ok := s.cookies.sessionID(r); ok {
			if sess, ok := s.sessions.Get(id); ok {
				s.cookies.setCookie(w, sess.ID)
				next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
				return
			}
		}

		if r.Method != http.MethodGet {
			s.writeError(w, r, errNoSession)
			return
		}

		sess, err := s.sessions.Create(r.Context())
		if err != nil {
			hlog.FromRequest(r).Warn().Err(err).Str("session", sess.ID).Msg("project list unavailable for new session")
		}
		s.cookies.setCookie(w, sess.ID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session.Session {
	return r.Context().Value(sessionKey{}).(*session.Session)
}
