// internal/httpserver/server.go
//
// HTTP server wiring for the companion engine.
// Responsibilities:
//   - Router + middleware (JSON, CORS, timeouts, panic recovery, request IDs).
//   - Public endpoints: "/", "/health", "/games" (menu), "POST /companion/open".
//   - Window endpoints (require a window token): companion snapshot/close,
//     mood, chat, voice input, sound, and every game command.
//
// Notes:
//   - CORS is origin-aware and credentials-enabled (so the window cookie works).
//   - A window token is an HS256 JWT whose "sid" claim names the open
//     companion session; it is accepted from the Authorization header or the
//     window cookie. Tokens for a replaced or closed session are rejected.

package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/companion/internal/companion"
	"github.com/robalobadob/companion/internal/session"
	"github.com/robalobadob/companion/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	ClientOrigin   string        // CORS origin (default http://localhost:5173)
	Production     bool          // Secure + SameSite=None cookies
	JWTSecret      string        // window token signing key
	WindowTTL      time.Duration // window token lifetime (default 24h)
	CookieName     string        // default companion_window
	HandlerTimeout time.Duration // must exceed the completion timeout (default 45s)
}

// Server bundles the router, the companion window and the results ledger.
type Server struct {
	r      *chi.Mux
	win    *companion.Window
	ledger store.Ledger
	opts   Options
}

// New constructs a Server, installs middleware, and registers routes.
func New(win *companion.Window, ledger store.Ledger, opts Options) *Server {
	if opts.ClientOrigin == "" {
		opts.ClientOrigin = "http://localhost:5173"
	}
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_secret_change_me"
	}
	if opts.WindowTTL <= 0 {
		opts.WindowTTL = 24 * time.Hour
	}
	if opts.CookieName == "" {
		opts.CookieName = "companion_window"
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 45 * time.Second
	}
	s := &Server{r: chi.NewRouter(), win: win, ledger: ledger, opts: opts}

	// --- middleware ---
	s.r.Use(chimw.RequestID)                    // add X-Request-ID
	s.r.Use(chimw.RealIP)                       // set RemoteAddr from X-Forwarded-For etc.
	s.r.Use(chimw.Recoverer)                    // recover from panics
	s.r.Use(chimw.Timeout(opts.HandlerTimeout)) // bound handler time
	s.r.Use(jsonContentType)                    // default JSON responses
	s.r.Use(cors(opts.ClientOrigin))            // credentials-friendly CORS

	// --- diagnostics ---
	s.r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"service":"companion","endpoints":["/health","POST /companion/open","/companion","/chat","/games/*"]}`))
	})
	s.r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"ok":true}`))
	})

	s.r.Get("/games", s.handleMenu)
	s.r.Post("/companion/open", s.handleOpen)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireWindow)
		s.mountCompanion(r)
		s.mountGames(r)
	})

	// JSON 404 for easier debugging
	s.r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not_found","path":"`+r.URL.Path+`"}`, http.StatusNotFound)
	})

	return s
}

// Start begins serving HTTP on addr.
func (s *Server) Start(addr string) error { return http.ListenAndServe(addr, s.r) }

// Router exposes the internal router (useful for tests).
func (s *Server) Router() chi.Router { return s.r }

// ----------------------------- middleware ----------------------------------

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

// cors enables credentialed CORS for a single origin.
func cors(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ------------------------------- helpers -----------------------------------

func writeJSON(w http.ResponseWriter, v any) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

func writeError(w http.ResponseWriter, code string, status int) {
	http.Error(w, `{"error":"`+code+`"}`, status)
}

// writeDomainError maps engine errors to HTTP statuses.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrUnknownGame):
		writeError(w, "unknown_game", http.StatusBadRequest)
	case errors.Is(err, session.ErrNotActive):
		writeError(w, "game_not_active", http.StatusConflict)
	case errors.Is(err, companion.ErrListening):
		writeError(w, "listening", http.StatusConflict)
	case errors.Is(err, session.ErrClosed), errors.Is(err, companion.ErrClosed):
		writeError(w, "companion_closed", http.StatusGone)
	default:
		log.Error().Err(err).Msg("request failed")
		writeError(w, "internal", http.StatusInternalServerError)
	}
}

// decode reads a JSON body into v; an empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
