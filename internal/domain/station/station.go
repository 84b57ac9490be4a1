// Package station implements the Station Builder (C6): finding a set of
// compatible exercises for one station by explicit recursive search over
// three ordered strategies (must-use-first, area-preferred, mixed fallback),
// expanding unilateral exercises into paired steps and padding as a last
// resort when the candidate pool runs out before the step budget is filled.
package station

import (
	"math/rand/v2"
	"sort"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/equipment"
	"github.com/waynenilsen/workoutgen/internal/domain/history"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

// Input is everything the builder needs to attempt one station.
type Input struct {
	Pool              []catalog.Exercise
	AreaTarget        catalog.Area
	StepsPerStation   int
	Ledger            *equipment.Ledger
	PeoplePerStation  int
	UsedNames         map[string]bool
	MustUse           []string
	History           history.Record
	UseWorkoutHistory bool
	Boosted           map[int]bool
	RNG               *rand.Rand
	Warn              *warnings.Sink
}

// Build attempts to fill one station. It tries, in order: must-use-first
// (restricted to the target area when the best area-local variety score is
// >= 0.8, otherwise any area), area-preferred, and mixed area+other. If every
// strategy fails to reach a complete combination but at least one exercise
// was usable, it pads with a duplicate of the last usable step and emits a
// StationPadded warning rather than failing outright.
func Build(in Input) ([]plan.Step, map[string]int, bool) {
	available := filterUsedNames(in.Pool, in.UsedNames)
	if len(available) < in.StepsPerStation {
		return buildWithPadding(in, available)
	}

	score := varietyScorer(in)

	if len(in.MustUse) > 0 {
		mustUseExercises := filterMustUse(available, in.MustUse)
		if len(mustUseExercises) > 0 {
			sortByScoreDesc(mustUseExercises, score)

			targetAreaMustUse := filterArea(mustUseExercises, in.AreaTarget)
			if len(targetAreaMustUse) > 0 {
				sortByScoreDesc(targetAreaMustUse, score)
				if score(targetAreaMustUse[0]) >= 0.8 {
					for _, head := range targetAreaMustUse {
						rest := excludingID(available, head.ID)
						if combo := tryCombination(rest, []catalog.Exercise{head}, in.StepsPerStation-1, in, true); combo != nil {
							req, _ := admits(combo, in)
							return assembleSteps(combo, in), req, true
						}
					}
				}
			}

			for _, head := range mustUseExercises {
				rest := excludingID(available, head.ID)
				if combo := tryCombination(rest, []catalog.Exercise{head}, in.StepsPerStation-1, in, true); combo != nil {
					req, _ := admits(combo, in)
					return assembleSteps(combo, in), req, true
				}
			}
		}
	}

	areaExercises := filterArea(available, in.AreaTarget)
	sortByScoreDesc(areaExercises, score)
	if len(areaExercises) >= in.StepsPerStation {
		if combo := tryCombination(areaExercises, nil, in.StepsPerStation, in, false); combo != nil {
			req, _ := admits(combo, in)
			return assembleSteps(combo, in), req, true
		}
	}

	otherExercises := filterNotArea(available, in.AreaTarget)
	sortByScoreDesc(otherExercises, score)
	mixed := make([]catalog.Exercise, 0, len(areaExercises)+len(otherExercises))
	mixed = append(mixed, areaExercises...)
	mixed = append(mixed, otherExercises...)
	if combo := tryCombination(mixed, nil, in.StepsPerStation, in, false); combo != nil {
		req, _ := admits(combo, in)
		return assembleSteps(combo, in), req, true
	}

	return buildWithPadding(in, available)
}

// tryCombination is the explicit recursive search: pick a head candidate
// (target-area candidates ordered first at every level), recurse on the
// remainder with the shrunk budget, and backtrack when the leaf's admission
// check fails. requireMustUse rejects any complete combo that never actually
// touched must-use equipment (used when filling the rest of a must-use-first
// station).
func tryCombination(candidates []catalog.Exercise, selected []catalog.Exercise, remaining int, in Input, requireMustUse bool) []catalog.Exercise {
	if remaining <= 0 {
		if _, ok := admits(selected, in); !ok {
			return nil
		}
		if requireMustUse && !anyUsesMustUse(selected, in.MustUse) {
			return nil
		}
		return selected
	}

	var targetArea, otherArea []catalog.Exercise
	for _, ex := range candidates {
		if ex.Area == in.AreaTarget {
			targetArea = append(targetArea, ex)
		} else {
			otherArea = append(otherArea, ex)
		}
	}
	ordered := make([]catalog.Exercise, 0, len(candidates))
	ordered = append(ordered, targetArea...)
	ordered = append(ordered, otherArea...)

	for i, ex := range ordered {
		if hasBaseName(selected, ex.BaseName) {
			continue
		}
		consumed := 1
		if ex.Unilateral {
			consumed = 2
		}
		if consumed > remaining {
			continue
		}

		newSelected := append(append([]catalog.Exercise{}, selected...), ex)
		remainder := make([]catalog.Exercise, 0, len(ordered)-i-1)
		for _, other := range ordered[i+1:] {
			if other.ID != ex.ID {
				remainder = append(remainder, other)
			}
		}

		if combo := tryCombination(remainder, newSelected, remaining-consumed, in, requireMustUse); combo != nil {
			return combo
		}
	}

	return nil
}

// admits computes selected's aggregate station requirement and reports
// whether it fits the ledger's remaining inventory.
func admits(selected []catalog.Exercise, in Input) (map[string]int, bool) {
	stepEquip := stepEquipment(selected, in.Ledger.Remaining())
	total := equipment.StationRequirement(stepEquip, in.PeoplePerStation)
	return total, in.Ledger.CanAdmit(total)
}

func stepEquipment(selected []catalog.Exercise, remaining plan.Inventory) []map[string]int {
	out := make([]map[string]int, 0, len(selected)*2)
	for _, ex := range selected {
		counts := toCounts(equipment.SelectBestOption(ex.EquipmentReq, remaining))
		out = append(out, counts)
		if ex.Unilateral {
			out = append(out, counts)
		}
	}
	return out
}

func toCounts(req map[string]catalog.EquipmentRequirement) map[string]int {
	out := make(map[string]int, len(req))
	for k, v := range req {
		out[k] = v.Count
	}
	return out
}

// buildWithPadding is the last-resort fallback: greedily admit exercises in
// variety order (any area) until the budget is filled or the pool runs out,
// then pad with a duplicate of the last admitted step. Fails only if not a
// single exercise could be admitted.
func buildWithPadding(in Input, available []catalog.Exercise) ([]plan.Step, map[string]int, bool) {
	score := varietyScorer(in)
	ordered := append([]catalog.Exercise{}, available...)
	sortByScoreDesc(ordered, score)

	var selected []catalog.Exercise
	remaining := in.StepsPerStation

	for _, ex := range ordered {
		if remaining <= 0 {
			break
		}
		if hasBaseName(selected, ex.BaseName) {
			continue
		}
		consumed := 1
		if ex.Unilateral {
			consumed = 2
		}
		candidate := append(append([]catalog.Exercise{}, selected...), ex)
		if _, ok := admits(candidate, in); !ok {
			continue
		}
		selected = candidate
		remaining -= consumed
	}

	if len(selected) == 0 {
		return nil, nil, false
	}

	req, _ := admits(selected, in)
	steps := assembleSteps(selected, in)
	if remaining > 0 {
		last := steps[len(steps)-1]
		for remaining > 0 {
			steps = append(steps, last)
			remaining--
		}
		in.Warn.Add(warnings.StationPadded, "padded station with a repeat of %q to reach the step budget", last.Name)
	}
	return steps, req, true
}

// assembleSteps expands selected exercises into rendered plan.Step values,
// re-resolving each exercise's equipment choice against the ledger's current
// remaining inventory and expanding unilateral exercises into Left/Right pairs.
func assembleSteps(selected []catalog.Exercise, in Input) []plan.Step {
	remaining := in.Ledger.Remaining()
	steps := make([]plan.Step, 0, len(selected))
	for _, ex := range selected {
		counts := toCounts(equipment.SelectBestOption(ex.EquipmentReq, remaining))
		if ex.Unilateral {
			left := ex.WithLaterality("Left")
			right := ex.WithLaterality("Right")
			steps = append(steps, toStep(left, counts), toStep(right, counts))
		} else {
			steps = append(steps, toStep(ex, counts))
		}
	}
	return steps
}

func toStep(ex catalog.Exercise, counts map[string]int) plan.Step {
	return plan.Step{
		Name:      ex.Name,
		Link:      ex.VideoLink,
		Equipment: counts,
		Muscles:   ex.Muscles,
		ID:        ex.ID,
		VideoKind: ex.VideoKind,
	}
}

func varietyScorer(in Input) func(catalog.Exercise) float64 {
	if !in.UseWorkoutHistory {
		return func(catalog.Exercise) float64 {
			return in.RNG.Float64()
		}
	}
	return func(ex catalog.Exercise) float64 {
		if ex.ID < 0 {
			return 1.0
		}
		base := in.History.Priority(ex.ID, 1.0)
		if in.Boosted[ex.ID] {
			return base * 1.5
		}
		return base
	}
}

// scoredExercise pairs an exercise with its precomputed sort key.
type scoredExercise struct {
	exercise catalog.Exercise
	score    float64
}

// sortByScoreDesc sorts exercises by score descending. Each exercise's score
// is computed exactly once up front into a parallel scoredExercise slice
// (decorate-sort-undecorate) rather than inside the comparator: when score
// draws on in.RNG, calling it from Less would score the same element
// differently on each comparison as sort.SliceStable swaps positions,
// producing an inconsistent, ill-defined ordering.
func sortByScoreDesc(exercises []catalog.Exercise, score func(catalog.Exercise) float64) {
	decorated := make([]scoredExercise, len(exercises))
	for i, ex := range exercises {
		decorated[i] = scoredExercise{exercise: ex, score: score(ex)}
	}
	sort.SliceStable(decorated, func(i, j int) bool {
		return decorated[i].score > decorated[j].score
	})
	for i, d := range decorated {
		exercises[i] = d.exercise
	}
}

func filterUsedNames(pool []catalog.Exercise, used map[string]bool) []catalog.Exercise {
	out := make([]catalog.Exercise, 0, len(pool))
	for _, ex := range pool {
		if !used[ex.BaseName] {
			out = append(out, ex)
		}
	}
	return out
}

func filterMustUse(exercises []catalog.Exercise, mustUse []string) []catalog.Exercise {
	var out []catalog.Exercise
	for _, ex := range exercises {
		if usesMustUse(ex, mustUse) {
			out = append(out, ex)
		}
	}
	return out
}

func usesMustUse(ex catalog.Exercise, mustUse []string) bool {
	for _, typ := range mustUse {
		if _, ok := ex.EquipmentReq[typ]; ok {
			return true
		}
	}
	return false
}

func anyUsesMustUse(selected []catalog.Exercise, mustUse []string) bool {
	for _, ex := range selected {
		if usesMustUse(ex, mustUse) {
			return true
		}
	}
	return false
}

func filterArea(exercises []catalog.Exercise, area catalog.Area) []catalog.Exercise {
	var out []catalog.Exercise
	for _, ex := range exercises {
		if ex.Area == area {
			out = append(out, ex)
		}
	}
	return out
}

func filterNotArea(exercises []catalog.Exercise, area catalog.Area) []catalog.Exercise {
	var out []catalog.Exercise
	for _, ex := range exercises {
		if ex.Area != area {
			out = append(out, ex)
		}
	}
	return out
}

func excludingID(exercises []catalog.Exercise, id int) []catalog.Exercise {
	out := make([]catalog.Exercise, 0, len(exercises))
	for _, ex := range exercises {
		if ex.ID != id {
			out = append(out, ex)
		}
	}
	return out
}

func hasBaseName(selected []catalog.Exercise, base string) bool {
	for _, ex := range selected {
		if ex.BaseName == base {
			return true
		}
	}
	return false
}

// UnusedMustUse computes the must-use equipment types whose cumulative usage
// is still strictly below inventory, ordered by the fixed priority table
// (unknown types last), per spec §4.7.
func UnusedMustUse(mustUse []string, ledger *equipment.Ledger, inventory plan.Inventory) []string {
	cumulative := ledger.Cumulative()
	var unused []string
	for _, typ := range mustUse {
		if cumulative[typ] < inventory.Get(typ) {
			unused = append(unused, typ)
		}
	}
	sort.SliceStable(unused, func(i, j int) bool {
		return mustUsePriority(unused[i]) < mustUsePriority(unused[j])
	})
	return unused
}

// mustUsePriorityOrder is the fixed priority table from spec §4.7.
var mustUsePriorityOrder = []string{
	"plyo_box", "bench", "dip_parallel_bars", "barbells", "slam_balls_5kg", "dumbbells_3kg", "dumbbells_5kg",
}

func mustUsePriority(typ string) int {
	for i, t := range mustUsePriorityOrder {
		if t == typ {
			return i
		}
	}
	return len(mustUsePriorityOrder)
}
