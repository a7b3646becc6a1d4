package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"github.com/mcdev12/tourney/go/internal/clock"
	"github.com/mcdev12/tourney/go/internal/seating"
	"github.com/mcdev12/tourney/go/internal/storage"
	"github.com/rs/zerolog/log"
	"google.golang.org/protobuf/types/known/structpb"
)

var errBadRequest = errors.New("bad request")

// decode copies a Struct request into dst through its JSON form.
func decode(msg *structpb.Struct, dst any) error {
	raw, err := json.Marshal(msg.AsMap())
	if err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

// toStruct converts a JSON-tagged value into a Struct. v must encode as an object.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return structpb.NewStruct(fields)
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, seating.ErrParticipantNotFound),
		errors.Is(err, seating.ErrTableNotFound),
		errors.Is(err, seating.ErrSeatNotFound),
		errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, seating.ErrInvalidInput),
		errors.Is(err, clock.ErrInvalidSchedule),
		errors.Is(err, errBadRequest):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}
	log.Error().Err(err).Msg("request failed")
	return connect.NewError(connect.CodeInternal, err)
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
