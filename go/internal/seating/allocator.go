package seating

import (
	"sort"

	"github.com/mcdev12/tourney/go/internal/models"
)

// EndFillSeatOrder orders open seats for a table of size seats the way
// they are filled: 1, N, 2, N-1, ... restricted to the seats in open.
func EndFillSeatOrder(seats int, open []int) []int {
	isOpen := make(map[int]bool, len(open))
	for _, s := range open {
		isOpen[s] = true
	}

	out := make([]int, 0, len(open))
	lo, hi := 1, seats
	for lo <= hi {
		if isOpen[lo] {
			out = append(out, lo)
		}
		if hi != lo && isOpen[hi] {
			out = append(out, hi)
		}
		lo++
		hi--
	}
	return out
}

// minViableTables is the smallest table count at which every used table
// could still hold minPerTable participants, capped at available.
func minViableTables(n, minPerTable, available int) int {
	if minPerTable < 1 {
		minPerTable = models.DefaultMinPlayersPerTable
	}
	return min(max(1, n/minPerTable), available)
}

func capacity(tables []models.Table) int {
	total := 0
	for _, t := range tables {
		total += t.Seats
	}
	return total
}

// SelectTablesByCapacity takes the first k tables in order, where k is the
// minimum viable table count, then adds tables until n participants fit.
func SelectTablesByCapacity(tables []models.Table, n, minPerTable int) []models.Table {
	if len(tables) == 0 {
		return nil
	}
	k := minViableTables(n, minPerTable, len(tables))
	used := append([]models.Table(nil), tables[:k]...)
	for i := k; i < len(tables) && capacity(used) < n; i++ {
		used = append(used, tables[i])
	}
	return used
}

// SelectTablesForRebalance prefers tables that already hold participants so
// fewer people have to move. seatedByTable maps table id to its occupants.
// The result keeps the order of tables.
func SelectTablesForRebalance(tables []models.Table, n int, seatedByTable map[string][]string, minPerTable int) []models.Table {
	if len(tables) == 0 {
		return nil
	}

	var nonEmpty, empty []models.Table
	for _, t := range tables {
		if len(seatedByTable[t.ID]) > 0 {
			nonEmpty = append(nonEmpty, t)
		} else {
			empty = append(empty, t)
		}
	}
	if len(nonEmpty) == 0 {
		return SelectTablesByCapacity(tables, n, minPerTable)
	}

	k := minViableTables(n, minPerTable, len(tables))

	var chosen, rest []models.Table
	if len(nonEmpty) <= k {
		chosen = nonEmpty
		rest = empty
	} else {
		ranked := append([]models.Table(nil), tables...)
		sort.SliceStable(ranked, func(i, j int) bool {
			return len(seatedByTable[ranked[i].ID]) > len(seatedByTable[ranked[j].ID])
		})
		chosen = ranked[:k]
		rest = ranked[k:]
	}
	for len(rest) > 0 && capacity(chosen) < n {
		chosen = append(chosen, rest[0])
		rest = rest[1:]
	}

	picked := make(map[string]bool, len(chosen))
	for _, t := range chosen {
		picked[t.ID] = true
	}
	out := make([]models.Table, 0, len(chosen))
	for _, t := range tables {
		if picked[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// ComputeTableTargets spreads n participants over used as evenly as
// possible. Earlier tables take the remainder. No target exceeds its table's
// seats; the overflow goes round-robin, in table order, to tables that still
// have room. When n exceeds the capacity of used, targets stop at capacity.
func ComputeTableTargets(used []models.Table, n int) map[string]int {
	targets := make(map[string]int, len(used))
	if len(used) == 0 {
		return targets
	}
	base, remainder := n/len(used), n%len(used)
	overflow := 0
	for i, t := range used {
		want := base
		if i < remainder {
			want++
		}
		targets[t.ID] = min(want, t.Seats)
		overflow += want - targets[t.ID]
	}
	for overflow > 0 {
		placed := false
		for _, t := range used {
			if overflow == 0 {
				break
			}
			if targets[t.ID] < t.Seats {
				targets[t.ID]++
				overflow--
				placed = true
			}
		}
		if !placed {
			break
		}
	}
	return targets
}

// AssignSeatsForTableGroups gives every participant in groups a seat at its
// table. With keepSameSeat, a participant already sitting at a valid seat of
// that table keeps it; everyone else takes open seats in end-fill order, in
// group order.
func AssignSeatsForTableGroups(tables []models.Table, groups map[string][]string, prev map[string]models.SeatKey, keepSameSeat bool) map[string]models.SeatKey {
	out := make(map[string]models.SeatKey)
	for _, t := range tables {
		ids := groups[t.ID]
		if len(ids) == 0 {
			continue
		}

		taken := make(map[int]bool, len(ids))
		if keepSameSeat {
			for _, id := range ids {
				k, ok := prev[id]
				if !ok || k.TableID != t.ID || k.SeatNum < 1 || k.SeatNum > t.Seats || taken[k.SeatNum] {
					continue
				}
				out[id] = k
				taken[k.SeatNum] = true
			}
		}

		open := make([]int, 0, t.Seats)
		for s := 1; s <= t.Seats; s++ {
			if !taken[s] {
				open = append(open, s)
			}
		}
		order := EndFillSeatOrder(t.Seats, open)

		next := 0
		for _, id := range ids {
			if _, ok := out[id]; ok {
				continue
			}
			if next >= len(order) {
				break
			}
			out[id] = models.SeatKey{TableID: t.ID, SeatNum: order[next]}
			next++
		}
	}
	return out
}
