package api

import (
	"context"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/seating"
	"github.com/mcdev12/tourney/go/internal/storage"
	"google.golang.org/protobuf/types/known/structpb"
)

type idRequest struct {
	ID string `json:"id"`
}

func decodeID(msg *structpb.Struct) (string, error) {
	var req idRequest
	if err := decode(msg, &req); err != nil {
		return "", err
	}
	if req.ID == "" {
		return "", fmt.Errorf("%w: id is required", errBadRequest)
	}
	return req.ID, nil
}

func (s *Service) randomize(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.seating.Randomize(ctx)
}

func (s *Service) rebalance(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.seating.Rebalance(ctx)
}

func (s *Service) deseat(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.seating.Deseat(ctx)
}

func (s *Service) moveSeat(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		ParticipantID string `json:"participant_id"`
		TableID       string `json:"table_id"`
		SeatNum       int    `json:"seat_num"`
		Mode          string `json:"mode"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.ParticipantID == "" || req.TableID == "" || req.SeatNum < 1 {
		return nil, fmt.Errorf("%w: participant_id, table_id and seat_num are required", errBadRequest)
	}
	mode, err := seating.ParseMoveMode(req.Mode)
	if err != nil {
		return nil, err
	}
	return s.seating.Move(ctx, seating.MoveRequest{
		ParticipantID: req.ParticipantID,
		To:            models.SeatKey{TableID: req.TableID, SeatNum: req.SeatNum},
		Mode:          mode,
	})
}

func (s *Service) addParticipant(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	p, err := s.seating.AddParticipant(ctx, req.Name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"participant": p}, nil
}

func (s *Service) updateParticipant(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		ID         string  `json:"id"`
		Name       *string `json:"name"`
		Eliminated *bool   `json:"eliminated"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadRequest)
	}
	p, err := s.seating.UpdateParticipant(ctx, req.ID, storage.ParticipantUpdate{
		Name:       req.Name,
		Eliminated: req.Eliminated,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"participant": p}, nil
}

func (s *Service) deleteParticipant(ctx context.Context, msg *structpb.Struct) (any, error) {
	id, err := decodeID(msg)
	if err != nil {
		return nil, err
	}
	if err := s.seating.DeleteParticipant(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (s *Service) listParticipants(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		Query      string `json:"query"`
		Eliminated *bool  `json:"eliminated"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	list, err := s.seating.ListParticipants(ctx, models.ParticipantFilter{
		Query:      req.Query,
		Eliminated: req.Eliminated,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"participants": nonNil(list)}, nil
}

func (s *Service) addTable(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		Name  string `json:"name"`
		Seats *int   `json:"seats"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	seats := seating.DefaultTableSeats
	if req.Seats != nil {
		seats = *req.Seats
	}
	t, err := s.seating.AddTable(ctx, req.Name, seats)
	if err != nil {
		return nil, err
	}
	return map[string]any{"table": t}, nil
}

func (s *Service) updateTable(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		ID      string  `json:"id"`
		Name    *string `json:"name"`
		Seats   *int    `json:"seats"`
		Enabled *bool   `json:"enabled"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.ID == "" {
		return nil, fmt.Errorf("%w: id is required", errBadRequest)
	}
	t, err := s.seating.UpdateTable(ctx, req.ID, storage.TableUpdate{
		Name:    req.Name,
		Seats:   req.Seats,
		Enabled: req.Enabled,
	})
	if err != nil {
		return nil, err
	}
	return map[string]any{"table": t}, nil
}

func (s *Service) deleteTable(ctx context.Context, msg *structpb.Struct) (any, error) {
	id, err := decodeID(msg)
	if err != nil {
		return nil, err
	}
	if err := s.seating.DeleteTable(ctx, id); err != nil {
		return nil, err
	}
	return map[string]any{"ok": true}, nil
}

func (s *Service) listTables(ctx context.Context, _ *structpb.Struct) (any, error) {
	tables, err := s.seating.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"tables": nonNil(tables)}, nil
}

func (s *Service) listSeats(ctx context.Context, _ *structpb.Struct) (any, error) {
	seats, err := s.seating.ListSeats(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{"seats": nonNil(seats)}, nil
}
