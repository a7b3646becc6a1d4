package api

import (
	"context"
	"fmt"

	"github.com/mcdev12/tourney/go/internal/models"
	"google.golang.org/protobuf/types/known/structpb"
)

func (s *Service) getState(_ context.Context, _ *structpb.Struct) (any, error) {
	return s.clock.Snapshot(), nil
}

func (s *Service) pause(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.clock.Pause(ctx), nil
}

func (s *Service) resume(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.clock.Resume(ctx), nil
}

func (s *Service) resetLevel(ctx context.Context, _ *structpb.Struct) (any, error) {
	return s.clock.ResetLevel(ctx), nil
}

func (s *Service) addTime(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		DeltaMs *int64 `json:"delta_ms"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.DeltaMs == nil {
		return nil, fmt.Errorf("%w: delta_ms is required", errBadRequest)
	}
	return s.clock.AddTime(ctx, *req.DeltaMs), nil
}

func (s *Service) goToLevel(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		LevelIndex *int `json:"level_index"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.LevelIndex == nil {
		return nil, fmt.Errorf("%w: level_index is required", errBadRequest)
	}
	return s.clock.GoToLevel(ctx, *req.LevelIndex), nil
}

func (s *Service) updateSettings(ctx context.Context, msg *structpb.Struct) (any, error) {
	var req struct {
		Settings *models.Settings `json:"settings"`
	}
	if err := decode(msg, &req); err != nil {
		return nil, err
	}
	if req.Settings == nil {
		return nil, fmt.Errorf("%w: settings is required", errBadRequest)
	}
	return s.clock.UpdateSettings(ctx, *req.Settings)
}
