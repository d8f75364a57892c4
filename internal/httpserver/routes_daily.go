package httpserver

import (
	"encoding/json"
	"net/http"
	"slices"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/daily"
	"github.com/Caliovent/korean-party-functions/internal/game"
)

// mountDaily registers the daily challenge read endpoints. Daily rounds and
// results go through the game routes with ?daily=1.
func (s *Server) mountDaily() {
	s.r.Get("/daily/leaderboard", s.handleLeaderboard)
}

// lbRes is returned by /daily/leaderboard.
type lbRes struct {
	Game string        `json:"game"`
	Date string        `json:"date"`
	Top  []daily.LBRow `json:"top"`
}

// handleLeaderboard returns the best scores for ?game= on ?date= (default today).
func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	g := q.Get("game")
	if !slices.Contains(game.Games, g) {
		writeError(w, http.StatusBadRequest, "unknown_game", g)
		return
	}
	date := q.Get("date")
	if date == "" {
		date = daily.DateKey(s.now())
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	if s.daily == nil {
		_ = json.NewEncoder(w).Encode(lbRes{Game: g, Date: date, Top: []daily.LBRow{}})
		return
	}
	top, err := s.daily.Leaderboard(r.Context(), g, date, limit)
	if err != nil {
		log.Error().Err(err).Str("game", g).Str("date", date).Msg("leaderboard")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return
	}
	_ = json.NewEncoder(w).Encode(lbRes{Game: g, Date: date, Top: top})
}
