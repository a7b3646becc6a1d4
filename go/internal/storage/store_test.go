package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/mcdev12/tourney/go/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = db.Close()
	})

	store := New(db, false)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return store
}

func TestMigrateIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}

	var count int
	if err := store.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 applied migration, got %d", count)
	}
}

func TestSettingsSeedAndSave(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.LoadSettings(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("LoadSettings() on empty store error = %v, want ErrNotFound", err)
	}

	seeded, err := store.EnsureSettings(ctx, models.DefaultSettings())
	if err != nil {
		t.Fatalf("EnsureSettings() error = %v", err)
	}
	if len(seeded.Levels) != len(models.DefaultSettings().Levels) {
		t.Fatalf("seeded %d levels", len(seeded.Levels))
	}

	custom := models.Settings{Levels: []models.Level{{Type: models.LevelTypeRegular, DurationMinutes: 5}}}
	if err := store.SaveSettings(ctx, custom); err != nil {
		t.Fatalf("SaveSettings() error = %v", err)
	}

	// seeding again must not overwrite
	got, err := store.EnsureSettings(ctx, models.DefaultSettings())
	if err != nil {
		t.Fatalf("EnsureSettings() error = %v", err)
	}
	if len(got.Levels) != 1 || got.Levels[0].DurationMinutes != 5 {
		t.Fatalf("EnsureSettings overwrote saved settings: %+v", got.Levels)
	}
}

func TestClockStateRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.LoadClockState(ctx); !errors.Is(err, ErrNotFound) || !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("LoadClockState() error = %v, want ErrNotFound wrapping models.ErrNotFound", err)
	}

	want := models.ClockState{LevelIndex: 3, Running: true, RemainingMs: 1500, FinishAtMs: 99_000, UpdatedAtMs: 97_500}
	if err := store.SaveClockState(ctx, want); err != nil {
		t.Fatalf("SaveClockState() error = %v", err)
	}
	want.Running = false
	want.FinishAtMs = 0
	if err := store.SaveClockState(ctx, want); err != nil {
		t.Fatalf("SaveClockState() update error = %v", err)
	}

	got, err := store.LoadClockState(ctx)
	if err != nil {
		t.Fatalf("LoadClockState() error = %v", err)
	}
	if *got != want {
		t.Fatalf("LoadClockState() = %+v, want %+v", *got, want)
	}
}

func TestTableSeatRowsFollowSeatCount(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	table, err := store.CreateTable(ctx, "Table 1", 6, 1)
	if err != nil {
		t.Fatalf("CreateTable() error = %v", err)
	}
	p, err := store.CreateParticipant(ctx, "Ann", 1)
	if err != nil {
		t.Fatalf("CreateParticipant() error = %v", err)
	}
	if err := store.ApplySeatUpdates(ctx, []models.SeatAssignment{{TableID: table.ID, SeatNum: 6, ParticipantID: p.ID}}); err != nil {
		t.Fatalf("ApplySeatUpdates() error = %v", err)
	}

	seats := 4
	if _, err := store.UpdateTable(ctx, table.ID, TableUpdate{Seats: &seats}); err != nil {
		t.Fatalf("UpdateTable() shrink error = %v", err)
	}
	rows, err := store.ListSeats(ctx)
	if err != nil {
		t.Fatalf("ListSeats() error = %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected 4 seat rows after shrink, got %d", len(rows))
	}
	for i, r := range rows {
		if r.SeatNum != i+1 {
			t.Fatalf("seat %d has number %d", i, r.SeatNum)
		}
		if r.ParticipantID != "" {
			t.Fatalf("participant should have lost removed seat 6, found at %d", r.SeatNum)
		}
		if r.TableName != "Table 1" {
			t.Fatalf("unexpected table name %q", r.TableName)
		}
	}

	seats = 9
	if _, err := store.UpdateTable(ctx, table.ID, TableUpdate{Seats: &seats}); err != nil {
		t.Fatalf("UpdateTable() grow error = %v", err)
	}
	rows, err = store.ListSeats(ctx)
	if err != nil {
		t.Fatalf("ListSeats() error = %v", err)
	}
	if len(rows) != 9 {
		t.Fatalf("expected 9 seat rows after grow, got %d", len(rows))
	}

	if _, err := store.UpdateTable(ctx, "missing", TableUpdate{Seats: &seats}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("UpdateTable() missing error = %v, want ErrNotFound", err)
	}
}

func TestListTablesStableOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	names := []string{"C", "A", "B"}
	for _, n := range names {
		// identical timestamps: order must come from the sequence column
		if _, err := store.CreateTable(ctx, n, 8, 42); err != nil {
			t.Fatalf("CreateTable(%s) error = %v", n, err)
		}
	}
	tables, err := store.ListTables(ctx)
	if err != nil {
		t.Fatalf("ListTables() error = %v", err)
	}
	for i, tbl := range tables {
		if tbl.Name != names[i] {
			t.Fatalf("table %d = %s, want %s", i, tbl.Name, names[i])
		}
		if !tbl.Enabled {
			t.Fatalf("new table %s should be enabled", tbl.Name)
		}
	}
}

func TestDeleteParticipantVacatesSeat(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	table, _ := store.CreateTable(ctx, "T", 4, 1)
	p, _ := store.CreateParticipant(ctx, "Bo", 1)
	if err := store.ReplaceAssignments(ctx, map[string]models.SeatKey{p.ID: {TableID: table.ID, SeatNum: 2}}); err != nil {
		t.Fatalf("ReplaceAssignments() error = %v", err)
	}

	if err := store.DeleteParticipant(ctx, p.ID); err != nil {
		t.Fatalf("DeleteParticipant() error = %v", err)
	}
	rows, _ := store.ListSeats(ctx)
	for _, r := range rows {
		if r.ParticipantID != "" {
			t.Fatalf("seat %d still occupied by %s", r.SeatNum, r.ParticipantID)
		}
	}
	if err := store.DeleteParticipant(ctx, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteParticipant() error = %v, want ErrNotFound", err)
	}
}

func TestApplySeatUpdatesSwap(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	table, _ := store.CreateTable(ctx, "T", 4, 1)
	a, _ := store.CreateParticipant(ctx, "A", 1)
	b, _ := store.CreateParticipant(ctx, "B", 2)
	if err := store.ReplaceAssignments(ctx, map[string]models.SeatKey{
		a.ID: {TableID: table.ID, SeatNum: 1},
		b.ID: {TableID: table.ID, SeatNum: 2},
	}); err != nil {
		t.Fatalf("ReplaceAssignments() error = %v", err)
	}

	err := store.ApplySeatUpdates(ctx, []models.SeatAssignment{
		{TableID: table.ID, SeatNum: 1, ParticipantID: b.ID},
		{TableID: table.ID, SeatNum: 2, ParticipantID: a.ID},
	})
	if err != nil {
		t.Fatalf("ApplySeatUpdates() error = %v", err)
	}

	rows, _ := store.ListSeats(ctx)
	if rows[0].ParticipantID != b.ID || rows[1].ParticipantID != a.ID {
		t.Fatalf("swap not applied: %+v", rows[:2])
	}

	err = store.ApplySeatUpdates(ctx, []models.SeatAssignment{{TableID: table.ID, SeatNum: 12, ParticipantID: a.ID}})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("ApplySeatUpdates() on missing seat error = %v, want ErrNotFound", err)
	}
	rows, _ = store.ListSeats(ctx)
	if rows[1].ParticipantID != a.ID {
		t.Fatal("failed update must roll back")
	}
}

func TestListParticipantsFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	ann, _ := store.CreateParticipant(ctx, "Ann", 1)
	_, _ = store.CreateParticipant(ctx, "Bob", 1)
	eliminated := true
	if _, err := store.UpdateParticipant(ctx, ann.ID, ParticipantUpdate{Eliminated: &eliminated}); err != nil {
		t.Fatalf("UpdateParticipant() error = %v", err)
	}

	out, err := store.ListParticipants(ctx, models.ParticipantFilter{Eliminated: &eliminated})
	if err != nil {
		t.Fatalf("ListParticipants() error = %v", err)
	}
	if len(out) != 1 || out[0].ID != ann.ID || !out[0].Eliminated {
		t.Fatalf("eliminated filter returned %+v", out)
	}

	out, _ = store.ListParticipants(ctx, models.ParticipantFilter{Query: "BO"})
	if len(out) != 1 || out[0].Name != "Bob" {
		t.Fatalf("query filter returned %+v", out)
	}

	out, _ = store.ListParticipants(ctx, models.ParticipantFilter{})
	if len(out) != 2 || out[0].Name != "Ann" {
		t.Fatalf("expected creation order, got %+v", out)
	}
}

func TestAnnouncementsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i, typ := range []string{"level_start", "level_end", "rebalance"} {
		payload, _ := json.Marshal(map[string]int{"i": i})
		if _, err := store.AppendAnnouncement(ctx, int64(100+i), typ, payload); err != nil {
			t.Fatalf("AppendAnnouncement() error = %v", err)
		}
	}

	got, err := store.ListAnnouncements(ctx, 2)
	if err != nil {
		t.Fatalf("ListAnnouncements() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 announcements, got %d", len(got))
	}
	if got[0].Type != "rebalance" || got[1].Type != "level_end" {
		t.Fatalf("unexpected order: %s, %s", got[0].Type, got[1].Type)
	}
	if got[0].ID <= got[1].ID {
		t.Fatalf("ids not descending: %d, %d", got[0].ID, got[1].ID)
	}
	if string(got[0].Payload) != `{"i":2}` {
		t.Fatalf("payload = %s", got[0].Payload)
	}
}
