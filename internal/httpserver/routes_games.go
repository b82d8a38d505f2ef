// internal/httpserver/routes_games.go
//
// HTTP routes for the mini-games.
//   - GET  /games                  → game menu (public)
//   - POST /games/start            → { kind } start a fresh game
//   - POST /games/reset            → back to the menu
//   - POST /games/memory/flip      → { cardId }
//   - POST /games/clicker/click
//   - POST /games/clicker/upgrade
//   - POST /games/riddle/answer    → { text }
//   - GET  /games/recent?limit=N   → finished games, newest first
//   - GET  /games/best?kind=K&limit=N → leaderboard for one game
//
// Every command responds with { applied, game } where game is the session's
// game snapshot after the command. A command that hits a game precondition
// (flipping a matched card, an unaffordable upgrade, an empty answer) is not
// an error: it answers 200 with applied=false.

package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/companion/internal/game"
	"github.com/robalobadob/companion/internal/session"
)

const (
	defaultRecent = 20
	maxRecent     = 100
)

type startReq struct {
	Kind game.Kind `json:"kind"`
}

type flipReq struct {
	CardID *int `json:"cardId"`
}

type answerReq struct {
	Text string `json:"text"`
}

type commandRes struct {
	Applied bool             `json:"applied"`
	Verdict game.Verdict     `json:"verdict,omitempty"`
	Game    session.Snapshot `json:"game"`
}

func (s *Server) mountGames(r chi.Router) {
	r.Post("/games/start", s.handleStart)
	r.Post("/games/reset", s.handleReset)
	r.Post("/games/memory/flip", s.handleFlip)
	r.Post("/games/clicker/click", s.handleClick)
	r.Post("/games/clicker/upgrade", s.handleUpgrade)
	r.Post("/games/riddle/answer", s.handleAnswer)
	r.Get("/games/recent", s.handleRecent)
	r.Get("/games/best", s.handleBest)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, game.Menu)
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startReq
	if err := decode(r, &req); err != nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	games := current(r).Games
	if err := games.Start(r.Context(), req.Kind); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: true, Game: games.Snapshot()})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	games := current(r).Games
	if err := games.Reset(r.Context()); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: true, Game: games.Snapshot()})
}

func (s *Server) handleFlip(w http.ResponseWriter, r *http.Request) {
	var req flipReq
	if err := decode(r, &req); err != nil || req.CardID == nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	games := current(r).Games
	ok, err := games.Flip(*req.CardID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: ok, Game: games.Snapshot()})
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	games := current(r).Games
	if _, err := games.Click(); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: true, Game: games.Snapshot()})
}

func (s *Server) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	games := current(r).Games
	ok, err := games.BuyUpgrade()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: ok, Game: games.Snapshot()})
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerReq
	if err := decode(r, &req); err != nil {
		writeError(w, "bad_json", http.StatusBadRequest)
		return
	}
	games := current(r).Games
	v, err := games.SubmitAnswer(req.Text)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, commandRes{Applied: v != game.VerdictNone, Verdict: v, Game: games.Snapshot()})
}

// queryLimit reads ?limit, clamped to maxRecent.
func queryLimit(r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return defaultRecent, true
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return min(n, maxRecent), true
}

// handleRecent lists finished games from the results ledger.
func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, "bad_limit", http.StatusBadRequest)
		return
	}
	results, err := s.ledger.Recent(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("list recent results")
		writeError(w, "db_error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}

// handleBest returns the top scores recorded for one game kind.
func (s *Server) handleBest(w http.ResponseWriter, r *http.Request) {
	kind := game.Kind(r.URL.Query().Get("kind"))
	if !kind.Playable() {
		writeError(w, "unknown_game", http.StatusBadRequest)
		return
	}
	limit, ok := queryLimit(r)
	if !ok {
		writeError(w, "bad_limit", http.StatusBadRequest)
		return
	}
	results, err := s.ledger.Best(r.Context(), kind, limit)
	if err != nil {
		log.Error().Err(err).Msg("leaderboard")
		writeError(w, "db_error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, results)
}
