// Package equipment implements the Feasibility Filter (C2) and Equipment
// Accountant (C5): dropping exercises the inventory can never satisfy,
// aggregating per-station requirements under the simultaneous/sequential
// rule, and tracking cumulative inventory usage across a whole attempt.
package equipment

import (
	"sort"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

// CanPerform reports whether every equipment type req needs is present in
// inventory with a sufficient count.
func CanPerform(req map[string]catalog.EquipmentRequirement, inventory plan.Inventory) bool {
	for typ, need := range req {
		if inventory.Get(typ) < need.Count {
			return false
		}
	}
	return true
}

// Feasible drops any exercise whose equipment cannot possibly be satisfied by
// inventory, resolving weight-family alternatives via SelectBestOption first.
// An empty/unspecified inventory disables filtering entirely. If the result
// is empty after filtering, it fails with NoFeasibleExercises.
func Feasible(exercises []catalog.Exercise, inventory plan.Inventory) ([]catalog.Exercise, error) {
	if len(inventory) == 0 {
		return exercises, nil
	}

	out := make([]catalog.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if CanPerform(SelectBestOption(ex.EquipmentReq, inventory), inventory) {
			out = append(out, ex)
		}
	}

	if len(out) == 0 {
		return nil, domerrors.NewNoFeasibleExercises()
	}
	return out, nil
}

// weightFamilies lists the equipment-type prefixes treated as interchangeable
// alternatives. No prefix is a prefix of another, so the order of the list
// does not affect which family a type matches.
var weightFamilies = []string{"slam_balls", "kettlebells", "dumbbells"}

func familyOf(equipmentType string) string {
	for _, fam := range weightFamilies {
		if hasPrefix(equipmentType, fam) {
			return fam
		}
	}
	return ""
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

// SelectBestOption resolves an exercise's equipment_req into a single option
// per weight family: entries whose keys don't belong to a weight family pass
// through unchanged; within each family, the alternative maximizing
// (available-required) + required/max(available,1) among alternatives with
// available >= required wins. If none qualifies, the alternative whose key
// sorts first is kept so the resulting infeasibility is reported
// consistently instead of silently vanishing.
func SelectBestOption(req map[string]catalog.EquipmentRequirement, inventory plan.Inventory) map[string]catalog.EquipmentRequirement {
	if len(req) == 0 {
		return req
	}

	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make(map[string][]string)
	selected := make(map[string]catalog.EquipmentRequirement, len(req))

	for _, k := range keys {
		fam := familyOf(k)
		if fam == "" {
			selected[k] = req[k]
			continue
		}
		groups[fam] = append(groups[fam], k)
	}

	for _, alternatives := range groups {
		best := ""
		bestScore := -1.0
		for _, typ := range alternatives {
			required := req[typ].Count
			available := inventory.Get(typ)
			if available < required {
				continue
			}
			denom := available
			if denom < 1 {
				denom = 1
			}
			score := float64(available-required) + float64(required)/float64(denom)
			if score > bestScore {
				bestScore = score
				best = typ
			}
		}
		if best == "" {
			best = alternatives[0]
		}
		selected[best] = req[best]
	}

	return selected
}

// StationRequirement aggregates a station's per-step equipment maps into one
// requirement map under the rule keyed on peoplePerStation: sequential
// (peoplePerStation == 1) takes the max per type across steps; simultaneous
// (peoplePerStation > 1) sums per type across steps.
func StationRequirement(stepEquipment []map[string]int, peoplePerStation int) map[string]int {
	out := make(map[string]int)
	simultaneous := peoplePerStation > 1

	for _, step := range stepEquipment {
		for typ, count := range step {
			if simultaneous {
				out[typ] += count
			} else if count > out[typ] {
				out[typ] = count
			}
		}
	}
	return out
}

// Ledger tracks cumulative equipment usage across the stations admitted so
// far in one attempt. It is attempt-scoped: a fresh Ledger is built at the
// start of every retry, never shared across attempts.
type Ledger struct {
	inventory  plan.Inventory
	cumulative map[string]int
}

// NewLedger creates a Ledger against the given read-only inventory.
func NewLedger(inventory plan.Inventory) *Ledger {
	return &Ledger{inventory: inventory, cumulative: make(map[string]int)}
}

// CanAdmit reports whether req can be added without exceeding inventory for
// any equipment type.
func (l *Ledger) CanAdmit(req map[string]int) bool {
	for typ, count := range req {
		if l.cumulative[typ]+count > l.inventory.Get(typ) {
			return false
		}
	}
	return true
}

// Admit adds req's contribution to cumulative usage. Callers must have
// checked CanAdmit first; Admit does not re-validate.
func (l *Ledger) Admit(req map[string]int) {
	for typ, count := range req {
		l.cumulative[typ] += count
	}
}

// Cumulative returns a copy of the usage accumulated so far.
func (l *Ledger) Cumulative() map[string]int {
	out := make(map[string]int, len(l.cumulative))
	for k, v := range l.cumulative {
		out[k] = v
	}
	return out
}

// Remaining returns inventory minus cumulative usage, for re-filtering the
// candidate pool after a station is admitted (§4.5: "apply §4.2 rule against
// inventory − cumulative").
func (l *Ledger) Remaining() plan.Inventory {
	out := make(plan.Inventory, len(l.inventory))
	for typ, avail := range l.inventory {
		out[typ] = avail - l.cumulative[typ]
		if out[typ] < 0 {
			out[typ] = 0
		}
	}
	return out
}

// Refilter drops any exercise from pool that cannot be satisfied by the
// remaining inventory after all admitted stations so far, resolving weight-
// family alternatives via SelectBestOption first so an exercise isn't
// dropped just because one exhausted alternative still appears in its raw
// equipment_req (§4.5: the family heuristic applies uniformly at admission
// and at filtering).
func (l *Ledger) Refilter(pool []catalog.Exercise) ([]catalog.Exercise, error) {
	if len(l.inventory) == 0 {
		return pool, nil
	}

	remaining := l.Remaining()

	out := make([]catalog.Exercise, 0, len(pool))
	for _, ex := range pool {
		resolved := SelectBestOption(ex.EquipmentReq, remaining)
		if CanPerform(resolved, remaining) {
			out = append(out, ex)
		}
	}

	if len(out) == 0 {
		return nil, domerrors.NewNoFeasibleExercises()
	}
	return out, nil
}

// Summarize reports per-type utilization of requirements against inventory,
// for the renderer's (out-of-scope) display and for remediation hints on
// ExhaustedRetries.
func Summarize(requirements map[string]int, inventory plan.Inventory) map[string]plan.UtilizationStat {
	out := make(map[string]plan.UtilizationStat, len(requirements))
	for typ, required := range requirements {
		available := inventory.Get(typ)
		pct := 0.0
		if available > 0 {
			pct = float64(required) / float64(available) * 100
		}
		out[typ] = plan.UtilizationStat{
			Required:       required,
			Available:      available,
			UtilizationPct: pct,
			Sufficient:     required <= available,
		}
	}
	return out
}
