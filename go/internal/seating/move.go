package seating

import (
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
)

// MoveMode selects how a single-seat move treats the destination occupant.
type MoveMode string

const (
	// MoveModeSwap exchanges occupants between the source and destination seats.
	MoveModeSwap MoveMode = "swap"
	// MoveModeMove evicts the destination occupant and vacates the source seat.
	MoveModeMove MoveMode = "move"
	// MoveModeNoop is reported when the participant already sits at the destination.
	MoveModeNoop MoveMode = "noop"
)

// ParseMoveMode defaults an empty mode to swap.
func ParseMoveMode(s string) (MoveMode, error) {
	switch MoveMode(s) {
	case "", MoveModeSwap:
		return MoveModeSwap, nil
	case MoveModeMove:
		return MoveModeMove, nil
	}
	return "", fmt.Errorf("%w: unknown move mode %q", ErrInvalidInput, s)
}

// MoveRequest places one participant at a destination seat.
type MoveRequest struct {
	ParticipantID string
	To            models.SeatKey
	Mode          MoveMode
}

// MoveResult describes an applied move.
type MoveResult struct {
	Mode                 MoveMode        `json:"mode"`
	From                 *models.SeatKey `json:"from,omitempty"`
	To                   models.SeatKey  `json:"to"`
	SwappedParticipantID string          `json:"swapped_participant_id,omitempty"`
}

// PlanMove computes the seat rows a move or swap rewrites. An empty update
// list means nothing changes.
func PlanMove(seats []models.SeatAssignment, req MoveRequest) ([]models.SeatAssignment, MoveResult, error) {
	var (
		dest    *models.SeatAssignment
		src     *models.SeatAssignment
		current models.SeatAssignment
	)
	for i := range seats {
		if seats[i].Key() == req.To {
			dest = &seats[i]
		}
		if seats[i].ParticipantID == req.ParticipantID {
			src = &seats[i]
		}
	}
	if dest == nil {
		return nil, MoveResult{}, fmt.Errorf("table %s seat %d: %w", req.To.TableID, req.To.SeatNum, ErrSeatNotFound)
	}
	current = *dest

	res := MoveResult{Mode: req.Mode, To: req.To, SwappedParticipantID: current.ParticipantID}
	if src != nil {
		from := src.Key()
		res.From = &from
		if from == req.To {
			return nil, MoveResult{Mode: MoveModeNoop, From: &from, To: req.To}, nil
		}
	}

	updates := []models.SeatAssignment{{TableID: req.To.TableID, SeatNum: req.To.SeatNum, ParticipantID: req.ParticipantID}}
	if src != nil {
		vacated := models.SeatAssignment{TableID: src.TableID, SeatNum: src.SeatNum}
		if req.Mode == MoveModeSwap {
			vacated.ParticipantID = current.ParticipantID
		}
		updates = append(updates, vacated)
	}
	return updates, res, nil
}
