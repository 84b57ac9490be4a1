// Package editor implements the Edit Engine (C9): targeted in-place
// replacement of specified exercise ids in a previously generated plan,
// preserving balance-order area intent and unilateral pairing semantics,
// and the terminal reconstruction of full station records from ids alone.
package editor

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/equipment"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

// LastPlan is the persisted artifact the editor reconstructs from and
// rewrites. Seed is carried through unchanged across an edit; only the
// stations' used-id lists change.
type LastPlan struct {
	Stations []plan.Station
	Seed     int64
}

type position struct {
	station int
	slot    int
}

// Edit replaces editIDs within last against cat/cfg, returning the rebuilt
// PlanResult and the LastPlan to persist (with Seed untouched). rng drives
// replacement selection only and must be freshly seeded by the caller — it
// must never derive from the plan's own stored seed.
func Edit(editIDs []int, last LastPlan, cat []catalog.Exercise, cfg plan.PlanConfig, rng *rand.Rand, warn *warnings.Sink) (plan.PlanResult, LastPlan, error) {
	byID := indexByID(cat)

	filtered := filterPresent(editIDs, last, warn)
	if len(filtered) == 0 {
		return plan.PlanResult{}, LastPlan{}, domerrors.NewNothingToEdit()
	}

	editSet := expandUnilateral(filtered, last, byID)
	positions := positionsByID(last, editSet)
	alreadyUsed := namesOutsideEditSet(last, byID, editSet)

	substituted := make([][]int, len(last.Stations))
	for s, st := range last.Stations {
		substituted[s] = append([]int(nil), st.UsedExerciseIDs()...)
	}

	ids := sortedKeys(editSet)
	for _, old := range ids {
		ps := positions[old]
		if len(ps) == 0 {
			continue
		}
		intendedArea := cfg.AreaForStation(ps[0].station)
		origUnilateral := byID[old].Unilateral

		replacements, err := chooseReplacements(old, ps, origUnilateral, intendedArea, cat, alreadyUsed, editSet, rng)
		if err != nil {
			return plan.PlanResult{}, LastPlan{}, err
		}

		for i, p := range ps {
			newID := replacements[i]
			substituted[p.station][p.slot] = newID
			alreadyUsed[byID[newID].BaseName] = true
		}
	}

	stations := make([]plan.Station, len(last.Stations))
	ledger := equipment.NewLedger(cfg.Equipment)
	peoplePerStation := cfg.PeoplePerStation()
	usedIDs := make([]int, 0)

	for s, st := range last.Stations {
		steps := rebuildSteps(substituted[s], byID, cfg.Equipment)
		stations[s] = plan.Station{Area: st.Area, Label: st.Label, Steps: steps}

		stepEquip := make([]map[string]int, len(steps))
		for i, step := range steps {
			stepEquip[i] = step.Equipment
		}
		ledger.Admit(equipment.StationRequirement(stepEquip, peoplePerStation))

		for _, step := range steps {
			usedIDs = append(usedIDs, step.ID)
		}
	}

	result := plan.PlanResult{
		Stations:              stations,
		EquipmentRequirements: ledger.Cumulative(),
		UsedExerciseIDs:       usedIDs,
		Seed:                  last.Seed,
		EquipmentUtilization:  equipment.Summarize(ledger.Cumulative(), cfg.Equipment),
	}

	return result, LastPlan{Stations: stations, Seed: last.Seed}, nil
}

func indexByID(cat []catalog.Exercise) map[int]catalog.Exercise {
	out := make(map[int]catalog.Exercise, len(cat))
	for _, ex := range cat {
		out[ex.ID] = ex
	}
	return out
}

// filterPresent drops edit ids that never appear in the last plan, warning
// for each one dropped.
func filterPresent(editIDs []int, last LastPlan, warn *warnings.Sink) []int {
	present := make(map[int]bool)
	for _, st := range last.Stations {
		for _, id := range st.UsedExerciseIDs() {
			present[id] = true
		}
	}

	out := make([]int, 0, len(editIDs))
	for _, id := range editIDs {
		if present[id] {
			out = append(out, id)
			continue
		}
		warn.Add(warnings.EditIDNotInPlan, "exercise id %d is not present in the last generated plan; skipping", id)
	}
	return out
}

// expandUnilateral grows editIDs to a fixed point: any position whose
// exercise's base_name matches the base_name of an exercise already in the
// set is pulled in too, so both halves of a unilateral pair always move
// together even if their ids ever diverged from a prior edit.
func expandUnilateral(editIDs []int, last LastPlan, byID map[int]catalog.Exercise) map[int]bool {
	set := make(map[int]bool, len(editIDs))
	for _, id := range editIDs {
		set[id] = true
	}

	for changed := true; changed; {
		changed = false
		baseNames := make(map[string]bool)
		for id := range set {
			if ex, ok := byID[id]; ok {
				baseNames[ex.BaseName] = true
			}
		}
		for _, st := range last.Stations {
			for _, id := range st.UsedExerciseIDs() {
				if set[id] {
					continue
				}
				ex, ok := byID[id]
				if ok && baseNames[ex.BaseName] {
					set[id] = true
					changed = true
				}
			}
		}
	}
	return set
}

func positionsByID(last LastPlan, editSet map[int]bool) map[int][]position {
	out := make(map[int][]position)
	for s, st := range last.Stations {
		for i, id := range st.UsedExerciseIDs() {
			if editSet[id] {
				out[id] = append(out[id], position{station: s, slot: i})
			}
		}
	}
	return out
}

// namesOutsideEditSet seeds the already_used set with the base names of
// every exercise currently in the plan that is not itself being replaced.
func namesOutsideEditSet(last LastPlan, byID map[int]catalog.Exercise, editSet map[int]bool) map[string]bool {
	out := make(map[string]bool)
	for _, st := range last.Stations {
		for _, id := range st.UsedExerciseIDs() {
			if editSet[id] {
				continue
			}
			if ex, ok := byID[id]; ok {
				out[ex.BaseName] = true
			}
		}
	}
	return out
}

func sortedKeys(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// chooseReplacements implements the §4.9 replacement rule for one old id's
// positions, returning one replacement id per position in ps's order.
func chooseReplacements(old int, ps []position, origUnilateral bool, intendedArea catalog.Area, cat []catalog.Exercise, alreadyUsed map[string]bool, editSet map[int]bool, rng *rand.Rand) ([]int, error) {
	switch {
	case origUnilateral && len(ps) == 2:
		if single := pickOne(cat, intendedArea, boolPtr(true), alreadyUsed, editSet, rng); single != nil {
			return []int{single.ID, single.ID}, nil
		}
		pair := pickMany(cat, intendedArea, boolPtr(false), alreadyUsed, editSet, rng, 2)
		if len(pair) < 2 {
			return nil, domerrors.NewNoReplacement(old, string(intendedArea))
		}
		return []int{pair[0].ID, pair[1].ID}, nil

	case !origUnilateral && len(ps) == 1:
		single := pickOne(cat, intendedArea, boolPtr(false), alreadyUsed, editSet, rng)
		if single == nil {
			return nil, domerrors.NewNoReplacement(old, string(intendedArea))
		}
		return []int{single.ID}, nil

	default:
		single := pickOne(cat, intendedArea, nil, alreadyUsed, editSet, rng)
		if single == nil {
			return nil, domerrors.NewNoReplacement(old, string(intendedArea))
		}
		out := make([]int, len(ps))
		for i := range out {
			out[i] = single.ID
		}
		return out, nil
	}
}

func boolPtr(b bool) *bool { return &b }

func candidatePool(cat []catalog.Exercise, area catalog.Area, unilateral *bool, alreadyUsed map[string]bool, editSet map[int]bool) []catalog.Exercise {
	out := make([]catalog.Exercise, 0)
	for _, ex := range cat {
		if ex.Area != area {
			continue
		}
		if unilateral != nil && ex.Unilateral != *unilateral {
			continue
		}
		if alreadyUsed[ex.BaseName] {
			continue
		}
		if editSet[ex.ID] {
			continue
		}
		out = append(out, ex)
	}
	return out
}

func pickOne(cat []catalog.Exercise, area catalog.Area, unilateral *bool, alreadyUsed map[string]bool, editSet map[int]bool, rng *rand.Rand) *catalog.Exercise {
	picked := pickMany(cat, area, unilateral, alreadyUsed, editSet, rng, 1)
	if len(picked) == 0 {
		return nil
	}
	return &picked[0]
}

func pickMany(cat []catalog.Exercise, area catalog.Area, unilateral *bool, alreadyUsed map[string]bool, editSet map[int]bool, rng *rand.Rand, n int) []catalog.Exercise {
	candidates := candidatePool(cat, area, unilateral, alreadyUsed, editSet)
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// rebuildSteps processes a station's substituted id list sequentially: two
// consecutive identical ids form a unilateral pair rendered as "(Left)"
// then "(Right)"; otherwise a single bilateral slot. Names are always
// canonicalized through byID's base_name, never carried over stale.
func rebuildSteps(ids []int, byID map[int]catalog.Exercise, inv plan.Inventory) []plan.Step {
	steps := make([]plan.Step, 0, len(ids))
	for i := 0; i < len(ids); {
		if i+1 < len(ids) && ids[i] == ids[i+1] {
			ex := byID[ids[i]]
			steps = append(steps, stepFromExercise(ex, inv, "Left"))
			steps = append(steps, stepFromExercise(ex, inv, "Right"))
			i += 2
			continue
		}
		ex := byID[ids[i]]
		steps = append(steps, stepFromExercise(ex, inv, ""))
		i++
	}
	return steps
}

func stepFromExercise(ex catalog.Exercise, inv plan.Inventory, side string) plan.Step {
	name := ex.BaseName
	if side != "" {
		name = fmt.Sprintf("%s (%s)", ex.BaseName, side)
	}
	resolved := equipment.SelectBestOption(ex.EquipmentReq, inv)
	eq := make(map[string]int, len(resolved))
	for typ, req := range resolved {
		eq[typ] = req.Count
	}
	return plan.Step{
		Name:      name,
		Link:      ex.VideoLink,
		Equipment: eq,
		Muscles:   ex.Muscles,
		ID:        ex.ID,
		VideoKind: ex.VideoKind,
	}
}
