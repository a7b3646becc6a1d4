package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
	"github.com/mcdev12/tourney/go/internal/seating"
	"github.com/mcdev12/tourney/go/internal/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the Connect service every procedure is mounted under.
const ServiceName = "tourney.v1.TourneyService"

const maxAnnouncementLimit = 500

var tracer = otel.Tracer("github.com/mcdev12/tourney/go/internal/api")

// Clock is the clock engine surface the API drives.
type Clock interface {
	Snapshot() events.StatePayload
	Pause(ctx context.Context) events.StatePayload
	Resume(ctx context.Context) events.StatePayload
	AddTime(ctx context.Context, deltaMs int64) events.StatePayload
	ResetLevel(ctx context.Context) events.StatePayload
	GoToLevel(ctx context.Context, index int) events.StatePayload
	UpdateSettings(ctx context.Context, settings models.Settings) (events.StatePayload, error)
}

// Seating is the seating app surface the API drives.
type Seating interface {
	Randomize(ctx context.Context) (*seating.Result, error)
	Rebalance(ctx context.Context) (*seating.Result, error)
	Deseat(ctx context.Context) (*seating.Result, error)
	Move(ctx context.Context, req seating.MoveRequest) (*seating.MoveResult, error)

	AddParticipant(ctx context.Context, name string) (*models.Participant, error)
	UpdateParticipant(ctx context.Context, id string, upd storage.ParticipantUpdate) (*models.Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	ListParticipants(ctx context.Context, filter models.ParticipantFilter) ([]models.Participant, error)

	AddTable(ctx context.Context, name string, seats int) (*models.Table, error)
	UpdateTable(ctx context.Context, id string, upd storage.TableUpdate) (*models.Table, error)
	DeleteTable(ctx context.Context, id string) error
	ListTables(ctx context.Context) ([]models.Table, error)
	ListSeats(ctx context.Context) ([]models.SeatAssignment, error)
}

// AnnouncementLog reads the durable announcement history.
type AnnouncementLog interface {
	ListAnnouncements(ctx context.Context, limit int) ([]models.Announcement, error)
}

// Service implements the command surface over Connect.
type Service struct {
	clock         Clock
	seating       Seating
	announcements AnnouncementLog
	soundsDir     string
}

// NewService creates the API service. An empty soundsDir disables sound listing.
func NewService(clock Clock, seats Seating, announcements AnnouncementLog, soundsDir string) *Service {
	return &Service{
		clock:         clock,
		seating:       seats,
		announcements: announcements,
		soundsDir:     soundsDir,
	}
}

// Register mounts every procedure on mux.
func (s *Service) Register(mux *http.ServeMux, opts ...connect.HandlerOption) {
	for name, fn := range s.procedures() {
		procedure := "/" + ServiceName + "/" + name
		mux.Handle(procedure, unary(procedure, fn, opts...))
	}
}

type procedure func(ctx context.Context, req *structpb.Struct) (any, error)

func (s *Service) procedures() map[string]procedure {
	return map[string]procedure{
		"GetState":          s.getState,
		"Pause":             s.pause,
		"Resume":            s.resume,
		"AddTime":           s.addTime,
		"ResetLevel":        s.resetLevel,
		"GoToLevel":         s.goToLevel,
		"UpdateSettings":    s.updateSettings,
		"Randomize":         s.randomize,
		"Rebalance":         s.rebalance,
		"Deseat":            s.deseat,
		"MoveSeat":          s.moveSeat,
		"AddParticipant":    s.addParticipant,
		"UpdateParticipant": s.updateParticipant,
		"DeleteParticipant": s.deleteParticipant,
		"ListParticipants":  s.listParticipants,
		"AddTable":          s.addTable,
		"UpdateTable":       s.updateTable,
		"DeleteTable":       s.deleteTable,
		"ListTables":        s.listTables,
		"ListSeats":         s.listSeats,
		"ListAnnouncements": s.listAnnouncements,
		"ListSounds":        s.listSounds,
	}
}

func unary(name string, fn procedure, opts ...connect.HandlerOption) *connect.Handler {
	return connect.NewUnaryHandler(name,
		func(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
			ctx, span := tracer.Start(ctx, name)
			defer span.End()

			out, err := fn(ctx, req.Msg)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				return nil, toConnectError(err)
			}
			msg, err := toStruct(out)
			if err != nil {
				return nil, connect.NewError(connect.CodeInternal, err)
			}
			return connect.NewResponse(msg), nil
		},
		opts...,
	)
}
