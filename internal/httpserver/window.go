package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/robalobadob/companion/internal/companion"
)

// ------------------------------ tokens & cookies ----------------------------

// signWindowToken creates an HS256 JWT binding the caller to session sid.
func (s *Server) signWindowToken(sid string) (string, time.Time, error) {
	now := time.Now()
	exp := now.Add(s.opts.WindowTTL)
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid": sid,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	})
	ss, err := t.SignedString([]byte(s.opts.JWTSecret))
	return ss, exp, err
}

// parseWindowToken validates tok and returns its session ID.
func (s *Server) parseWindowToken(tok string) (string, bool) {
	claims := jwt.MapClaims{}
	t, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.opts.JWTSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !t.Valid {
		return "", false
	}
	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}

// setWindowCookie writes the window token cookie with appropriate security attributes.
func (s *Server) setWindowCookie(w http.ResponseWriter, token string, exp time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: s.sameSite(),
		Expires:  exp,
	})
}

// clearWindowCookie deletes the window token cookie.
func (s *Server) clearWindowCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.Production,
		SameSite: s.sameSite(),
		MaxAge:   -1,
	})
}

func (s *Server) sameSite() http.SameSite {
	if s.opts.Production {
		return http.SameSiteNoneMode // required for third-party contexts when Secure
	}
	return http.SameSiteLaxMode
}

// bearerOrCookie extracts a bearer token from Authorization header or window cookie.
func (s *Server) bearerOrCookie(r *http.Request) string {
	if a := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(a), "bearer ") {
		return strings.TrimSpace(a[7:])
	}
	if c, err := r.Cookie(s.opts.CookieName); err == nil {
		return c.Value
	}
	return ""
}

// ---------------------------- window middleware ----------------------------

// ctxSessionKey is the context key type for storing the open session.
type ctxSessionKey struct{}

// requireWindow enforces a valid window token for the open session and
// injects that session into the request context.
func (s *Server) requireWindow(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tok := s.bearerOrCookie(r)
		if tok == "" {
			writeError(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		sid, ok := s.parseWindowToken(tok)
		if !ok {
			writeError(w, "invalid_token", http.StatusUnauthorized)
			return
		}
		sess, ok := s.win.Get(sid)
		if !ok {
			writeError(w, "window_closed", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSessionKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// current returns the session placed in context by requireWindow.
func current(r *http.Request) *companion.Session {
	sess, _ := r.Context().Value(ctxSessionKey{}).(*companion.Session)
	return sess
}
