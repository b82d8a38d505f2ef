// internal/httpserver/routes_companion.go
//
// Companion window endpoints.
//
// Public:
//   - POST /companion/open   → opens a fresh session (closing any previous one),
//     sets the window cookie, returns { token, expiresAt, companion }.
//
// Window token required:
//   - POST /companion/close  → closes the session, clears the cookie.
//   - GET  /companion        → full snapshot.
//   - GET  /mood, PUT /mood  → current mood / explicit selection { mood }.
//   - GET  /chat, POST /chat → transcript + suggestions / one turn { text }.
//   - POST /voice/start, POST /voice/end { transcript }.
//   - PUT  /sound            → { enabled }.

package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/companion/internal/companion"
	"github.com/robalobadob/companion/internal/mood"
)

type openRes struct {
	Token     string             `json:"token"`
	ExpiresAt time.Time          `json:"expiresAt"`
	Companion companion.Snapshot `json:"companion"`
}

type moodReq struct {
	Mood string `json:"mood"`
}

type chatReq struct {
	Text string `json:"text"`
}

type voiceEndReq struct {
	Transcript string `json:"transcript"`
}

type soundReq struct {
	Enabled *bool `json:"enabled"`
}

func (s *Server) mountCompanion(r chi.Router) {
	r.Post("/companion/close", s.handleClose)
	r.Get("/companion", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, current(r).Snapshot())
	})

	r.Get("/mood", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"mood": current(r).Mood.Current(), "moods": mood.All})
	})
	r.Put("/mood", s.handleSelectMood)

	r.Get("/chat", func(w http.ResponseWriter, r *http.Request) {
		c := current(r).Chat
		writeJSON(w, map[string]any{"messages": c.Messages(), "suggestions": c.Suggestions()})
	})
	r.Post("/chat", s.handleChat)

	r.Post("/voice/start", s.handleVoiceStart)
	r.Post("/voice/end", s.handleVoiceEnd)

	r.Put("/sound", s.handleSound)
}

// handleOpen opens the companion window and issues its token.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	sess := s.win.Open(r.Context())
	tok, exp, err := s.signWindowToken(sess.ID)
	if err != nil {
		log.Error().Err(err).Msg("sign window token")
		s.win.Close(r.Context(), sess.ID)
		writeError(w, "sign_failed", http.StatusInternalServerError)
		return
	}
	s.setWindowCookie(w, tok, exp)
	writeJSON(w, openRes{Token: tok, ExpiresAt: exp, Companion: sess.Snapshot()})
}

// handleClose tears the session down and clears the cookie.
func (s *Server) handleClose(w http.ResponseWriter, r *http.Request) {
	s.win.Close(r.Context(), current(r).ID)
	s.clearWindowCookie(w)
	writeJSON(w, map[string]bool{"ok": true})
}

func (s *Server) handleSelectMood(w http.ResponseWriter, r *http.Request) {
	var req moodReq
	if err := decode(r, &req); err != nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	m, err := current(r).SelectMood(req.Mood)
	if err != nil {
		writeError(w, "invalid_mood", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{"mood": m})
}

// handleChat runs one chat turn. The reply is always a companion message:
// completion failures come back as fallback text, never as errors.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatReq
	if err := decode(r, &req); err != nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, "empty_message", http.StatusBadRequest)
		return
	}
	sess := current(r)
	msgs, err := sess.Say(r.Context(), req.Text)
	if err != nil {
		if r.Context().Err() != nil {
			return
		}
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"messages": msgs, "mood": sess.Mood.Current()})
}

func (s *Server) handleVoiceStart(w http.ResponseWriter, r *http.Request) {
	sess := current(r)
	if err := sess.BeginListening(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"listening": true, "mood": sess.Mood.Current()})
}

func (s *Server) handleVoiceEnd(w http.ResponseWriter, r *http.Request) {
	var req voiceEndReq
	if err := decode(r, &req); err != nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	sess := current(r)
	text, err := sess.EndListening(req.Transcript)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, map[string]any{"transcript": text, "listening": false, "mood": sess.Mood.Current()})
}

func (s *Server) handleSound(w http.ResponseWriter, r *http.Request) {
	var req soundReq
	if err := decode(r, &req); err != nil || req.Enabled == nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	writeJSON(w, current(r).SetSound(*req.Enabled))
}
