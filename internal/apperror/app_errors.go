package apperror

import "errors"

var (
	ErrGameOver      = errors.New("game is already over")
	ErrNotYourTurn   = errors.New("it's not your turn")
	ErrInvalidMove   = errors.New("invalid move")
	ErrMatchNotFound = errors.New("match not found")
	ErrValidation    = errors.New("malformed request")
	ErrRoleTaken     = errors.New("role is already taken")
)
