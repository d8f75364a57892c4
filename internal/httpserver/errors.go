package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/Caliovent/korean-party-functions/internal/game"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Error: code, Message: msg})
}

// writeGameError maps core errors to HTTP statuses.
func writeGameError(w http.ResponseWriter, gameID string, err error) {
	var (
		ice *game.InsufficientContentError
		ipe *game.InvalidProfileError
		ume *game.UnsupportedModeError
	)
	switch {
	case errors.As(err, &ice):
		log.Error().Err(err).Str("game", gameID).Int("need", ice.Need).Int("have", ice.Have).Msg("catalog too small")
		writeError(w, http.StatusServiceUnavailable, "insufficient_content", err.Error())
	case errors.As(err, &ipe):
		log.Warn().Err(err).Str("game", gameID).Str("field", ipe.Field).Msg("invalid profile")
		writeError(w, http.StatusUnprocessableEntity, "invalid_profile", err.Error())
	case errors.As(err, &ume):
		writeError(w, http.StatusBadRequest, "unsupported_mode", err.Error())
	case errors.Is(err, game.ErrInvalidResults):
		writeError(w, http.StatusBadRequest, "invalid_results", err.Error())
	default:
		log.Error().Err(err).Str("game", gameID).Msg("game request failed")
		writeError(w, http.StatusInternalServerError, "internal", "")
	}
}
