// Package restpool implements the Active-Rest & CrossFit-Path Pools (C3):
// resolving the active_rest_mode, sampling the shared active-rest set, and
// building the global per-step active-rest schedule every station shares.
package restpool

import (
	"math/rand/v2"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

// restPlaceholder is the sentinel "Rest" entry used whenever a step gets
// plain rest instead of an active-rest drill.
func restPlaceholder() catalog.ActiveRestActivity {
	return catalog.ActiveRestActivity{ID: -1, Name: "Rest"}
}

// ResolveMode resolves the raw active_rest config value to a runtime mode.
// "auto" coin-flips between all_active and all_rest; "mix" is passed through
// for per-step resolution later; a literal bool maps directly.
func ResolveMode(setting plan.ActiveRestSetting, rng *rand.Rand) plan.ActiveRestMode {
	switch {
	case setting.Auto:
		if rng.IntN(2) == 0 {
			return plan.ModeAllActive
		}
		return plan.ModeAllRest
	case setting.Mix:
		return plan.ModeMix
	case setting.Bool:
		return plan.ModeAllActive
	default:
		return plan.ModeAllRest
	}
}

// SetupActiveRest resolves the mode and degrades to all_rest (with a
// warning) if an active mode is required but the active-rest file was
// missing at load time.
func SetupActiveRest(setting plan.ActiveRestSetting, poolPresent bool, rng *rand.Rand, warn *warnings.Sink) plan.ActiveRestMode {
	mode := ResolveMode(setting, rng)
	if !poolPresent && mode != plan.ModeAllRest {
		warn.Add(warnings.ActiveRestMissing, "equipment/active_rest.json is missing; degrading to all_rest")
		return plan.ModeAllRest
	}
	return mode
}

// SetupCrossFitPath loads the ordered override pool, disabling crossfit_path
// silently (with a warning) if it was requested but the file was missing.
func SetupCrossFitPath(cfg plan.PlanConfig, pool []catalog.CrossFitPathActivity, poolPresent bool, warn *warnings.Sink) (enabled bool, selected []catalog.CrossFitPathActivity) {
	if !cfg.CrossfitPath {
		return false, nil
	}
	if !poolPresent {
		warn.Add(warnings.CrossFitPathMissing, "equipment/crossfit_path.json is missing; disabling crossfit_path")
		return false, nil
	}
	return true, catalog.Prefix(pool, cfg.CrossfitPathCount)
}

// SampleActiveRestPool selects count distinct entries from pool (shuffled),
// padding with "Rest" placeholders if the pool is smaller than count.
func SampleActiveRestPool(pool []catalog.ActiveRestActivity, count int, rng *rand.Rand) []catalog.ActiveRestActivity {
	if count <= 0 {
		return nil
	}

	if len(pool) >= count {
		shuffled := make([]catalog.ActiveRestActivity, len(pool))
		copy(shuffled, pool)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled[:count]
	}

	out := make([]catalog.ActiveRestActivity, 0, count)
	out = append(out, pool...)
	for len(out) < count {
		out = append(out, restPlaceholder())
	}
	return out
}

// BuildGlobalSchedule produces the length-stepsPerStation shared active-rest
// schedule: all_rest is always Rest, all_active cycles through selected,
// mix independently coin-flips each step between the cycled entry and Rest.
func BuildGlobalSchedule(mode plan.ActiveRestMode, selected []catalog.ActiveRestActivity, stepsPerStation int, rng *rand.Rand) []plan.RestEntry {
	out := make([]plan.RestEntry, stepsPerStation)

	cycled := func(i int) catalog.ActiveRestActivity {
		if len(selected) == 0 {
			return restPlaceholder()
		}
		return selected[i%len(selected)]
	}

	for i := 0; i < stepsPerStation; i++ {
		switch mode {
		case plan.ModeAllActive:
			out[i] = toRestEntry(cycled(i))
		case plan.ModeMix:
			if rng.IntN(2) == 0 {
				out[i] = toRestEntry(cycled(i))
			} else {
				out[i] = toRestEntry(restPlaceholder())
			}
		default:
			out[i] = toRestEntry(restPlaceholder())
		}
	}
	return out
}

func toRestEntry(a catalog.ActiveRestActivity) plan.RestEntry {
	return plan.RestEntry{Name: a.Name, Link: a.VideoLink, VideoKind: a.VideoKind}
}
