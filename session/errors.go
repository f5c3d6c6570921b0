package session

import "errors"

var (
	// ErrBusy is returned when Submit is called while a turn is in flight.
	ErrBusy = errors.New("a request is already in progress for this session")

	// ErrEmptyInput is returned for empty or whitespace-only messages.
	ErrEmptyInput = errors.New("message is empty")

	// ErrNotFound is returned by the registry for unknown session IDs, and
	// by Submit once the session has been ended.
	ErrNotFound = errors.New("session not found")

	// ErrTurnDiscarded is returned when the session was cleared while its
	// turn was in flight. Nothing is appended.
	ErrTurnDiscarded = errors.New("turn discarded: session was cleared or ended")

	ErrUnknownOption = errors.New("unknown option")
)
