package seating

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/mcdev12/tourney/go/internal/events"
	"github.com/mcdev12/tourney/go/internal/models"
)

// Snapshot is the seating state a plan is computed from.
type Snapshot struct {
	Tables       []models.Table // stable creation order
	Participants []models.Participant
	Seats        []models.SeatAssignment
}

// Plan is a computed layout. Assignments is the complete seating after the
// plan is applied.
type Plan struct {
	Message     string
	Changes     []events.Change
	Assignments map[string]models.SeatKey
	Shortfall   bool
}

func (s Snapshot) enabledTables() []models.Table {
	var out []models.Table
	for _, t := range s.Tables {
		if t.Enabled {
			out = append(out, t)
		}
	}
	return out
}

func (s Snapshot) eligible() []models.Participant {
	var out []models.Participant
	for _, p := range s.Participants {
		if !p.Eliminated {
			out = append(out, p)
		}
	}
	return out
}

func (s Snapshot) names() map[string]string {
	out := make(map[string]string, len(s.Participants))
	for _, p := range s.Participants {
		out[p.ID] = p.Name
	}
	return out
}

// seated returns occupied seats ordered by table order then seat number.
func (s Snapshot) seated() []models.SeatAssignment {
	order := make(map[string]int, len(s.Tables))
	for i, t := range s.Tables {
		order[t.ID] = i
	}
	var out []models.SeatAssignment
	for _, sa := range s.Seats {
		if sa.ParticipantID != "" {
			out = append(out, sa)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order[out[i].TableID] != order[out[j].TableID] {
			return order[out[i].TableID] < order[out[j].TableID]
		}
		return out[i].SeatNum < out[j].SeatNum
	})
	return out
}

func (s Snapshot) previous() map[string]models.SeatKey {
	out := make(map[string]models.SeatKey)
	for _, sa := range s.Seats {
		if sa.ParticipantID != "" {
			out[sa.ParticipantID] = sa.Key()
		}
	}
	return out
}

// shortfall reports why n participants cannot be seated at enabled.
func shortfall(enabled []models.Table, n int) (string, bool) {
	if len(enabled) == 0 {
		return "No enabled tables.", true
	}
	if c := capacity(enabled); n > c {
		return fmt.Sprintf("Not enough seats for %d participants (capacity %d).", n, c), true
	}
	return "", false
}

// PlanRandomize seats every eligible participant in a fresh random order on
// the fewest tables that satisfy the per-table minimum. The change list
// covers every seated participant, moved or not.
func PlanRandomize(snap Snapshot, minPerTable int, rng *rand.Rand) Plan {
	enabled := snap.enabledTables()
	players := snap.eligible()
	if msg, short := shortfall(enabled, len(players)); short {
		return Plan{Message: msg, Changes: []events.Change{}, Shortfall: true}
	}

	rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })

	used := SelectTablesByCapacity(enabled, len(players), minPerTable)
	targets := ComputeTableTargets(used, len(players))
	groups := make(map[string][]string, len(used))
	next := 0
	for _, t := range used {
		for i := 0; i < targets[t.ID]; i++ {
			groups[t.ID] = append(groups[t.ID], players[next].ID)
			next++
		}
	}

	prev := snap.previous()
	assigned := AssignSeatsForTableGroups(used, groups, prev, false)
	names := snap.names()

	changes := evictions(snap, assigned, names)
	for _, t := range used {
		for _, id := range groups[t.ID] {
			changes = append(changes, change(id, names[id], prev, assigned))
		}
	}
	return Plan{Message: "Randomized seating.", Changes: changes, Assignments: assigned}
}

// PlanRebalance evens out table counts with as few moves as possible.
// Participants already seated at a kept table stay put up to its target,
// lowest seats first; the rest move into open seats in table order.
func PlanRebalance(snap Snapshot, minPerTable int) Plan {
	enabled := snap.enabledTables()
	players := snap.eligible()
	if msg, short := shortfall(enabled, len(players)); short {
		return Plan{Message: msg, Changes: []events.Change{}, Shortfall: true}
	}

	isEligible := make(map[string]bool, len(players))
	for _, p := range players {
		isEligible[p.ID] = true
	}
	isEnabled := make(map[string]bool, len(enabled))
	for _, t := range enabled {
		isEnabled[t.ID] = true
	}

	seatedByTable := make(map[string][]string)
	seatedAnywhere := make(map[string]bool)
	seated := snap.seated()
	for _, sa := range seated {
		if !isEligible[sa.ParticipantID] {
			continue
		}
		seatedAnywhere[sa.ParticipantID] = true
		if isEnabled[sa.TableID] {
			seatedByTable[sa.TableID] = append(seatedByTable[sa.TableID], sa.ParticipantID)
		}
	}

	used := SelectTablesForRebalance(enabled, len(players), seatedByTable, minPerTable)
	targets := ComputeTableTargets(used, len(players))
	isUsed := make(map[string]bool, len(used))
	for _, t := range used {
		isUsed[t.ID] = true
	}

	groups := make(map[string][]string, len(used))
	var movers []string
	for _, t := range used {
		here := seatedByTable[t.ID]
		stay := min(len(here), targets[t.ID])
		groups[t.ID] = append([]string(nil), here[:stay]...)
		movers = append(movers, here[stay:]...)
	}
	for _, sa := range seated {
		if isEligible[sa.ParticipantID] && !isUsed[sa.TableID] {
			movers = append(movers, sa.ParticipantID)
		}
	}
	for _, p := range players {
		if !seatedAnywhere[p.ID] {
			movers = append(movers, p.ID)
		}
	}

	for _, t := range used {
		for len(groups[t.ID]) < targets[t.ID] && len(movers) > 0 {
			groups[t.ID] = append(groups[t.ID], movers[0])
			movers = movers[1:]
		}
	}

	prev := snap.previous()
	assigned := AssignSeatsForTableGroups(used, groups, prev, true)
	names := snap.names()

	changes := evictions(snap, assigned, names)
	for _, t := range used {
		for _, id := range groups[t.ID] {
			if p, ok := prev[id]; ok && p == assigned[id] {
				continue
			}
			changes = append(changes, change(id, names[id], prev, assigned))
		}
	}
	return Plan{Message: "Rebalanced tables.", Changes: changes, Assignments: assigned}
}

// PlanDeseat clears every seat.
func PlanDeseat(snap Snapshot) Plan {
	names := snap.names()
	prev := snap.previous()
	changes := []events.Change{}
	for _, sa := range snap.seated() {
		changes = append(changes, change(sa.ParticipantID, names[sa.ParticipantID], prev, nil))
	}
	return Plan{Message: "Cleared all seats.", Changes: changes, Assignments: map[string]models.SeatKey{}}
}

// evictions lists seated participants that the new layout leaves unseated.
func evictions(snap Snapshot, assigned map[string]models.SeatKey, names map[string]string) []events.Change {
	prev := snap.previous()
	changes := []events.Change{}
	for _, sa := range snap.seated() {
		if _, ok := assigned[sa.ParticipantID]; ok {
			continue
		}
		changes = append(changes, change(sa.ParticipantID, names[sa.ParticipantID], prev, assigned))
	}
	return changes
}

func change(id, name string, prev, next map[string]models.SeatKey) events.Change {
	c := events.Change{ParticipantID: id, Name: name}
	if k, ok := prev[id]; ok {
		table, seat := k.TableID, k.SeatNum
		c.FromTable, c.FromSeat = &table, &seat
	}
	if k, ok := next[id]; ok {
		table, seat := k.TableID, k.SeatNum
		c.ToTable, c.ToSeat = &table, &seat
	}
	return c
}
