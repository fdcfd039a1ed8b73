package services

import "errors"

var (
	ErrNothingToUndo        = errors.New("nothing to undo")
	ErrConfirmationRequired = errors.New("confirmation required")
	ErrInvalidInput         = errors.New("invalid input")
	ErrEditMode             = errors.New("not allowed while editing scores")
	ErrNotEditing           = errors.New("score edit mode is not active")
	ErrClockAtZero          = errors.New("clock is at zero")
	ErrStopped              = errors.New("scoreboard stopped")

	// errNoChange aborts a mutation without bumping the state version.
	errNoChange = errors.New("no change")
)
