// Package scheduler implements the Plan Scheduler (C7) and Retry Driver (C8):
// orchestrating the Station Builder station-by-station across one attempt,
// assembling the global active-rest schedule, handling the CrossFit-path
// override, and wrapping the whole thing in a bounded, re-seeded retry loop.
package scheduler

import (
	"context"
	"math/rand/v2"

	"github.com/sethvargo/go-retry"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/equipment"
	"github.com/waynenilsen/workoutgen/internal/domain/history"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	"github.com/waynenilsen/workoutgen/internal/domain/restpool"
	"github.com/waynenilsen/workoutgen/internal/domain/station"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

// Pools bundles the already-loaded catalog and the two shared activity pools,
// plus whether each pool's backing file was present at load time (missing
// files degrade gracefully rather than failing the run).
type Pools struct {
	Catalog               []catalog.Exercise
	ActiveRestPool        []catalog.ActiveRestActivity
	ActiveRestPoolPresent bool
	CrossfitPool          []catalog.CrossFitPathActivity
	CrossfitPoolPresent   bool
}

// DefaultMaxRetries is the retry bound used when config leaves max_retries
// unset. MaxRetriesCap is the hard ceiling even when a config file asks for
// more (see DESIGN.md: spec.md states both "default 30" and "regular mode
// uses 15" for this value; resolved here as default=15, hard cap=30).
const (
	DefaultMaxRetries = 15
	MaxRetriesCap     = 30
)

// ResolveMaxRetries applies the default/cap rule to a configured value.
func ResolveMaxRetries(configured int) int {
	if configured <= 0 {
		return DefaultMaxRetries
	}
	if configured > MaxRetriesCap {
		return MaxRetriesCap
	}
	return configured
}

// DeriveBaseSeed picks the seed this run's PlanResult will be stamped with
// and retried from: edit-mode reuses the prior plan's persisted seed (or 42
// if there wasn't one); otherwise it derives from the wall clock.
func DeriveBaseSeed(editMode bool, lastPlanSeed *int64, nowMillis int64) int64 {
	if editMode {
		if lastPlanSeed != nil {
			return *lastPlanSeed
		}
		return 42
	}
	const mod = int64(1)<<31 - 1
	return nowMillis % mod
}

// Schedule produces one PlanResult for cfg against pools, trying the
// CrossFit-path override first (which bypasses C6/C7 entirely), then falling
// back to the normal station-by-station build under a bounded, re-seeded
// retry loop.
func Schedule(ctx context.Context, cfg plan.PlanConfig, pools Pools, hist history.Record, baseSeed int64, warn *warnings.Sink) (plan.PlanResult, error) {
	if enabled, selected := restpool.SetupCrossFitPath(cfg, pools.CrossfitPool, pools.CrossfitPoolPresent, warn); enabled {
		return buildCrossfitPlan(cfg, selected), nil
	}

	maxRetries := ResolveMaxRetries(cfg.MaxRetries)
	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.NewConstant(0))

	var result plan.PlanResult
	var lastErr error
	attempt := 0

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		seed := baseSeed + int64(attempt)
		attempt++
		rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

		res, attemptErr := runAttempt(ctx, cfg, pools, hist, rng, seed, warn)
		if attemptErr != nil {
			lastErr = attemptErr
			if domerrors.IsConflict(attemptErr) {
				return retry.RetryableError(attemptErr)
			}
			return attemptErr
		}
		result = res
		return nil
	})

	if err != nil {
		hint := "try reducing stations, adding more equipment inventory, or adding exercise variety"
		utilization := equipment.Summarize(map[string]int{}, cfg.Equipment)
		if domerrors.IsCancellation(lastErr) {
			return plan.PlanResult{}, lastErr
		}
		return plan.PlanResult{EquipmentUtilization: utilization}, domerrors.NewExhaustedRetries(hint)
	}

	WarnUnusedMustUse(result, cfg, cfg.Equipment, warn)
	return result, nil
}

// WarnUnusedMustUse is the plan-wide counterpart to buildStation's per-station
// must-use prioritization: after a full plan succeeds, it warns for every
// must_use type that is present in inventory but never appears anywhere in
// the plan's cumulative equipment usage. Unlike the per-station warning (a
// single station couldn't prioritize a type this round but a later station
// still might), this runs once the whole attempt is final, so "unused" here
// means truly absent from the finished plan.
func WarnUnusedMustUse(result plan.PlanResult, cfg plan.PlanConfig, inventory plan.Inventory, warn *warnings.Sink) {
	for _, typ := range cfg.MustUse {
		if inventory.Get(typ) <= 0 {
			continue
		}
		if result.EquipmentRequirements[typ] > 0 {
			continue
		}
		warn.Add(warnings.MustUseUnused, "%s available but not used in the finished plan - consider adding exercises that use it", typ)
	}
}

// runAttempt builds every station for one attempt: reshuffling the feasible
// pool, maintaining the cumulative equipment ledger and the global used-names
// set, and assembling the shared active-rest schedule. Any station that
// cannot be filled aborts the whole attempt with NoCompatibleStation, which
// Schedule's retry loop catches and retries from a fresh seed.
func runAttempt(ctx context.Context, cfg plan.PlanConfig, pools Pools, hist history.Record, rng *rand.Rand, seed int64, warn *warnings.Sink) (plan.PlanResult, error) {
	feasible, err := equipment.Feasible(pools.Catalog, cfg.Equipment)
	if err != nil {
		return plan.PlanResult{}, err
	}
	shuffled := shufflePool(feasible, rng)

	ledger := equipment.NewLedger(cfg.Equipment)
	usedNames := make(map[string]bool)
	boosted := boostedSet(cfg.Include)
	peoplePerStation := cfg.PeoplePerStation()

	mode := restpool.SetupActiveRest(cfg.ActiveRest, pools.ActiveRestPoolPresent, rng, warn)
	selectedRest := restpool.SampleActiveRestPool(pools.ActiveRestPool, cfg.ActiveRestCount, rng)
	globalSchedule := restpool.BuildGlobalSchedule(mode, selectedRest, cfg.StepsPerStation, rng)

	stations := make([]plan.Station, 0, cfg.Stations)
	usedIDs := make([]int, 0, cfg.Stations*cfg.StepsPerStation)

	for s := 0; s < cfg.Stations; s++ {
		select {
		case <-ctx.Done():
			return plan.PlanResult{}, ctx.Err()
		default:
		}

		areaTarget := cfg.AreaForStation(s)

		pool, refilterErr := ledger.Refilter(shuffled)
		if refilterErr != nil {
			return plan.PlanResult{}, domerrors.NewNoCompatibleStation(s)
		}

		steps, req, ok := buildStation(cfg, pool, areaTarget, ledger, peoplePerStation, usedNames, hist, boosted, rng, warn)
		if !ok {
			return plan.PlanResult{}, domerrors.NewNoCompatibleStation(s)
		}

		ledger.Admit(req)
		for _, step := range steps {
			base, _ := catalog.StripLateralitySuffix(step.Name)
			usedNames[base] = true
			usedIDs = append(usedIDs, step.ID)
		}

		stations = append(stations, plan.Station{
			Area:  areaTarget,
			Label: plan.StationLetter(s),
			Steps: steps,
		})
	}

	// Session recording is the caller's responsibility: it owns the
	// persisted history.Record and decides when to write it back via
	// internal/store. runAttempt only reports the ids used this attempt.
	return plan.PlanResult{
		Stations:                    stations,
		EquipmentRequirements:       ledger.Cumulative(),
		GlobalActiveRestSchedule:    globalSchedule,
		SelectedActiveRestExercises: selectedRest,
		UsedExerciseIDs:             usedIDs,
		Seed:                        seed,
		EquipmentUtilization:        equipment.Summarize(ledger.Cumulative(), cfg.Equipment),
	}, nil
}

// buildStation attempts the unused-must-use types in priority order first,
// falling back to no must-use restriction, per spec §4.7.
func buildStation(cfg plan.PlanConfig, pool []catalog.Exercise, areaTarget catalog.Area, ledger *equipment.Ledger, peoplePerStation int, usedNames map[string]bool, hist history.Record, boosted map[int]bool, rng *rand.Rand, warn *warnings.Sink) ([]plan.Step, map[string]int, bool) {
	unused := station.UnusedMustUse(cfg.MustUse, ledger, cfg.Equipment)

	for _, typ := range unused {
		steps, req, ok := station.Build(station.Input{
			Pool:              pool,
			AreaTarget:        areaTarget,
			StepsPerStation:   cfg.StepsPerStation,
			Ledger:            ledger,
			PeoplePerStation:  peoplePerStation,
			UsedNames:         usedNames,
			MustUse:           []string{typ},
			History:           hist,
			UseWorkoutHistory: cfg.UseWorkoutHistory,
			Boosted:           boosted,
			RNG:               rng,
			Warn:              warn,
		})
		if ok {
			return steps, req, true
		}
	}

	if len(cfg.MustUse) > 0 {
		warn.Add(warnings.MustUseUnused, "could not prioritize any must-use equipment for this station; building without it")
	}

	return station.Build(station.Input{
		Pool:              pool,
		AreaTarget:        areaTarget,
		StepsPerStation:   cfg.StepsPerStation,
		Ledger:            ledger,
		PeoplePerStation:  peoplePerStation,
		UsedNames:         usedNames,
		History:           hist,
		UseWorkoutHistory: cfg.UseWorkoutHistory,
		Boosted:           boosted,
		RNG:               rng,
		Warn:              warn,
	})
}

// buildCrossfitPlan produces the synthetic single-station override plan: one
// station "A" whose steps are the first crossfit_path_count pool entries, in
// order, ignoring -include and the must-use/area-balance machinery entirely.
func buildCrossfitPlan(cfg plan.PlanConfig, selected []catalog.CrossFitPathActivity) plan.PlanResult {
	steps := make([]plan.Step, len(selected))
	ids := make([]int, len(selected))
	for i, a := range selected {
		steps[i] = plan.Step{Name: a.Name, Link: a.VideoLink, VideoKind: a.VideoKind, ID: a.ID}
		ids[i] = a.ID
	}

	st := plan.Station{Area: cfg.AreaForStation(0), Label: plan.StationLetter(0), Steps: steps}

	return plan.PlanResult{
		Stations:                      []plan.Station{st},
		EquipmentRequirements:         map[string]int{},
		SelectedCrossfitPathExercises: selected,
		UsedExerciseIDs:               ids,
		EquipmentUtilization:          map[string]plan.UtilizationStat{},
	}
}

func shufflePool(pool []catalog.Exercise, rng *rand.Rand) []catalog.Exercise {
	out := make([]catalog.Exercise, len(pool))
	copy(out, pool)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

func boostedSet(ids []int) map[int]bool {
	out := make(map[int]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}
