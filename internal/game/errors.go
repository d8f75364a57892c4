package game

import (
	"errors"
	"fmt"
)

// ErrInvalidResults rejects submitted results that would move a counter
// downward (negative scores or counts).
var ErrInvalidResults = errors.New("invalid results")

// InsufficientContentError means a catalog cannot supply a full round.
type InsufficientContentError struct {
	Game string
	Need int
	Have int
}

func (e *InsufficientContentError) Error() string {
	if e.Have == 0 {
		return fmt.Sprintf("%s: no content defined", e.Game)
	}
	return fmt.Sprintf("%s: not enough unique items to generate a round: need %d, have %d", e.Game, e.Need, e.Have)
}

// InvalidProfileError means the supplied profile lacks a required field or
// holds a value of the wrong shape.
type InvalidProfileError struct {
	Field  string
	Reason string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("invalid profile: %s %s", e.Field, e.Reason)
}

// UnsupportedModeError is returned for a round mode a game does not implement.
type UnsupportedModeError struct {
	Game string
	Mode string
}

func (e *UnsupportedModeError) Error() string {
	return fmt.Sprintf("%s: mode '%s' not implemented", e.Game, e.Mode)
}

func missing(field string) error {
	return &InvalidProfileError{Field: field, Reason: "is required"}
}

func negative(field string, v int) error {
	return fmt.Errorf("%w: %s must not be negative, got %d", ErrInvalidResults, field, v)
}
