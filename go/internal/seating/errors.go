package seating

import "errors"

var (
	ErrSeatNotFound        = errors.New("seat not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrTableNotFound       = errors.New("table not found")
	ErrInvalidInput        = errors.New("invalid input")
)
