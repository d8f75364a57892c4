package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/daily"
	"github.com/Caliovent/korean-party-functions/internal/game"
	"github.com/Caliovent/korean-party-functions/internal/store"
)

const maxBody = 64 << 10

func (s *Server) mountGames() {
	s.r.With(s.withOptionalAuth()).Post("/games/{game}/round", s.handleRound)
	s.r.Get("/games/food/items/{id}", s.handleFoodItem)

	s.r.Group(func(r chi.Router) {
		r.Use(s.requireAuth())
		r.Post("/games/market/results", s.handleMarketResults)
		r.Post("/games/food/results", s.handleFoodResults)
		r.Post("/games/poem/results", s.handlePoemResults)
		r.Post("/games/color/results", s.handleColorResults)
	})
}

// decodeBody reads an optional JSON body into v. An empty body is not an error.
func decodeBody(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func isDaily(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("daily"))
	return v
}

// ------------------------------- rounds ------------------------------------

type roundReq struct {
	Mode string `json:"mode"`
}

// handleRound generates one round for {game}. With ?daily=1 the generator
// is seeded from the date so every player gets the same round today; a
// signed-in player who already submitted today's daily result gets 409.
func (s *Server) handleRound(w http.ResponseWriter, r *http.Request) {
	g := chi.URLParam(r, "game")

	var req roundReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}

	dailyRound := isDaily(r)
	var rng game.Rand
	if dailyRound {
		if me := currentUser(r); me != nil && s.daily != nil {
			date := daily.DateKey(s.now())
			played, err := s.daily.AlreadyPlayed(r.Context(), me.ID, g, date)
			if err != nil {
				log.Error().Err(err).Str("player", me.ID).Str("game", g).Msg("daily lookup")
				writeError(w, http.StatusInternalServerError, "db_error", "")
				return
			}
			if played {
				writeError(w, http.StatusConflict, "already_played", "daily "+g+" already played on "+date)
				return
			}
		}
		rng = daily.Rand(s.now(), s.opts.DailySalt, g)
	} else {
		rng = s.newRand()
	}

	var (
		round   any
		roundID string
		err     error
	)
	switch g {
	case game.Market:
		var mr game.MarketRound
		mr, err = game.NewMarketRound(rng, s.catalog.MarketItems())
		round, roundID = mr, mr.RoundID
	case game.Food:
		var fr game.FoodRound
		fr, err = game.NewFoodRound(rng, s.catalog.FoodItems(), game.FoodOptions{Mode: req.Mode})
		round, roundID = fr, fr.RoundID
	case game.Poem:
		var pr game.PoemRound
		pr, err = game.NewPoemRound(rng, s.catalog.Poems())
		round, roundID = pr, pr.RoundID
	case game.Color:
		var cr game.ColorRound
		cr, err = game.NewColorRound(rng, s.catalog.Colors())
		round, roundID = cr, cr.RoundID
	default:
		writeError(w, http.StatusNotFound, "unknown_game", g)
		return
	}
	if err != nil {
		writeGameError(w, g, err)
		return
	}

	RoundsGenerated.WithLabelValues(g, strconv.FormatBool(dailyRound)).Inc()
	ev := log.Debug().Str("game", g).Str("round", roundID).Bool("daily", dailyRound)
	if me := currentUser(r); me != nil {
		ev = ev.Str("player", me.ID)
	}
	ev.Msg("round generated")

	_ = json.NewEncoder(w).Encode(round)
}

// handleFoodItem reveals a dish's full entry (French name, audio) once the
// player has answered.
func (s *Server) handleFoodItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok := s.catalog.FoodItem(id)
	if !ok {
		writeError(w, http.StatusNotFound, "food_item_not_found", id)
		return
	}
	_ = json.NewEncoder(w).Encode(item)
}

// ------------------------------- results -----------------------------------

// loadProfile fetches the caller's profile, writing the error response itself
// when it fails.
func (s *Server) loadProfile(w http.ResponseWriter, r *http.Request) (game.Profile, bool) {
	me := currentUser(r)
	p, err := s.profiles.Get(r.Context(), me.ID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "profile_not_found", "")
		return game.Profile{}, false
	}
	if err != nil {
		log.Error().Err(err).Str("player", me.ID).Msg("load profile")
		writeError(w, http.StatusInternalServerError, "db_error", "")
		return game.Profile{}, false
	}
	return p, true
}

// commit saves the updated profile and, for daily submissions, records the
// score on the day's leaderboard.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, g string, p game.Profile, score int) bool {
	me := currentUser(r)
	if err := s.profiles.Save(r.Context(), me.ID, p); err != nil {
		log.Error().Err(err).Str("player", me.ID).Str("game", g).Msg("save profile")
		writeError(w, http.StatusInternalServerError, "save_failed", "")
		return false
	}
	if isDaily(r) && s.daily != nil {
		recorded, err := s.daily.InsertResult(r.Context(), daily.Result{
			PlayerID: me.ID, Game: g, Date: daily.DateKey(s.now()), Score: score,
		})
		if err != nil {
			log.Warn().Err(err).Str("player", me.ID).Str("game", g).Msg("record daily result")
		} else if !recorded {
			log.Debug().Str("player", me.ID).Str("game", g).Msg("daily result already recorded")
		}
	}
	ResultsSubmitted.WithLabelValues(g, "ok").Inc()
	log.Debug().Str("player", me.ID).Str("game", g).Int("score", score).Msg("results submitted")
	return true
}

func (s *Server) fail(w http.ResponseWriter, g string, err error) {
	ResultsSubmitted.WithLabelValues(g, "rejected").Inc()
	writeGameError(w, g, err)
}

type marketResultsReq struct {
	Score     int `json:"score"`
	ItemsSold int `json:"itemsSold"`
}

func (s *Server) handleMarketResults(w http.ResponseWriter, r *http.Request) {
	var req marketResultsReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	out, err := game.SubmitMarketResults(p, req.Score, req.ItemsSold)
	if err != nil {
		s.fail(w, game.Market, err)
		return
	}
	if !s.commit(w, r, game.Market, out, req.Score) {
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}

func (s *Server) handleFoodResults(w http.ResponseWriter, r *http.Request) {
	var req game.FoodResults
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	sub, err := game.SubmitFoodResults(p, req)
	if err != nil {
		s.fail(w, game.Food, err)
		return
	}
	if !s.commit(w, r, game.Food, sub.Profile, sub.Score) {
		return
	}
	_ = json.NewEncoder(w).Encode(sub)
}

type poemResultsReq struct {
	PoemID  string            `json:"poemId"`
	Answers map[string]string `json:"answers"`
}

func (s *Server) handlePoemResults(w http.ResponseWriter, r *http.Request) {
	var req poemResultsReq
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	sub, err := game.SubmitPoemResults(p, s.catalog, req.PoemID, req.Answers)
	if err != nil {
		s.fail(w, game.Poem, err)
		return
	}
	// unknown poem: nothing to persist
	if sub.Message != "" {
		ResultsSubmitted.WithLabelValues(game.Poem, "unknown_poem").Inc()
		_ = json.NewEncoder(w).Encode(sub)
		return
	}
	if !s.commit(w, r, game.Poem, sub.Profile, sub.Score) {
		return
	}
	_ = json.NewEncoder(w).Encode(sub)
}

func (s *Server) handleColorResults(w http.ResponseWriter, r *http.Request) {
	var req game.ColorResults
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_json", err.Error())
		return
	}
	p, ok := s.loadProfile(w, r)
	if !ok {
		return
	}
	out, err := game.SubmitColorResults(p, req)
	if err != nil {
		s.fail(w, game.Color, err)
		return
	}
	if !s.commit(w, r, game.Color, out, req.Score) {
		return
	}
	_ = json.NewEncoder(w).Encode(out)
}
