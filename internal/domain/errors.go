package domain

import "errors"

var (
	// ErrDataLoad is returned when the question bank is missing, empty or malformed.
	ErrDataLoad = errors.New("question bank could not be loaded")
	// ErrUnknownTicket is returned when a ticket number has no matching ticket.
	ErrUnknownTicket = errors.New("ticket not found")
	// ErrUnknownMode is returned for a mode key outside the catalog.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrInvalidAnswer indicates an out-of-range answer index or no active question.
	ErrInvalidAnswer = errors.New("invalid answer")
	// ErrStaleAnswer indicates an answer aimed at a question that is no longer current.
	ErrStaleAnswer = errors.New("answer is for a different question")
	// ErrInvalidTransition is returned when an operation is not allowed in the current run state.
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	// ErrUnknownCommand is returned for unsupported command kinds or malformed arguments.
	ErrUnknownCommand = errors.New("unknown command")
)
