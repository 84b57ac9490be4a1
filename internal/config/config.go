// Package config implements the Config Loader (C0): layering built-in
// defaults under an optional config/plan.json file via koanf, then handing
// callers an already-normalized, validated plan.PlanConfig. This is the
// only package in the module that imports koanf; every domain package
// receives a finished PlanConfig value.
package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

type timingSetting struct {
	Work int `koanf:"work"`
	Rest int `koanf:"rest"`
}

// rawConfig mirrors config/plan.json's wire shape. ActiveRest is untyped
// because the field is tri-state on disk: a JSON bool, or one of the
// strings "auto"/"mix".
type rawConfig struct {
	Stations          int            `koanf:"stations"`
	StepsPerStation   int            `koanf:"steps_per_station"`
	Rounds            int            `koanf:"rounds"`
	Timing            timingSetting  `koanf:"timing"`
	BalanceOrder      []string       `koanf:"balance_order"`
	People            int            `koanf:"people"`
	ActiveRest        interface{}    `koanf:"active_rest"`
	ActiveRestCount   int            `koanf:"active_rest_count"`
	MustUse           []string       `koanf:"must_use"`
	CrossfitPath      bool           `koanf:"crossfit_path"`
	CrossfitPathCount int            `koanf:"crossfit_path_count"`
	UseWorkoutHistory bool           `koanf:"use_workout_history"`
	EditMode          bool           `koanf:"edit_mode"`
	Equipment         map[string]int `koanf:"equipment"`
	MaxID             int            `koanf:"max_id"`
	MaxRetries        int            `koanf:"max_retries"`
	UpdateIndexHTML   bool           `koanf:"update_index_html"`
}

// defaults returns the built-in PlanConfig defaults per spec.md §3, seeded
// into koanf before any config file is overlaid.
func defaults() rawConfig {
	return rawConfig{
		Stations:          4,
		StepsPerStation:   2,
		BalanceOrder:      []string{"upper", "lower", "core"},
		People:            2,
		ActiveRest:        "auto",
		ActiveRestCount:   4,
		UseWorkoutHistory: true,
		Equipment:         map[string]int{},
		UpdateIndexHTML:   true,
	}
}

// Load reads path (typically config/plan.json) layered over the built-in
// defaults and returns a validated PlanConfig. A missing file is not an
// error — the defaults stand. A malformed file is reported as an
// InvalidArgs-class error.
func Load(path string) (plan.PlanConfig, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return plan.PlanConfig{}, fmt.Errorf("load config defaults: %w", err)
	}

	if _, statErr := os.Stat(path); statErr == nil {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			return plan.PlanConfig{}, domerrors.NewInvalidArgs(fmt.Sprintf("config file %s is invalid: %v", path, err))
		}
	}

	var raw rawConfig
	if err := k.Unmarshal("", &raw); err != nil {
		return plan.PlanConfig{}, domerrors.NewInvalidArgs(fmt.Sprintf("config file %s is invalid: %v", path, err))
	}

	cfg := plan.Normalize(toPlanConfig(raw))
	if err := cfg.Validate(); err != nil {
		return plan.PlanConfig{}, domerrors.NewInvalidArgs(err.Error())
	}
	return cfg, nil
}

func toPlanConfig(raw rawConfig) plan.PlanConfig {
	balance := make([]catalog.Area, 0, len(raw.BalanceOrder))
	for _, a := range raw.BalanceOrder {
		balance = append(balance, catalog.Area(a))
	}

	return plan.PlanConfig{
		Stations:          raw.Stations,
		StepsPerStation:   raw.StepsPerStation,
		Rounds:            raw.Rounds,
		TimingWorkSeconds: raw.Timing.Work,
		TimingRestSeconds: raw.Timing.Rest,
		BalanceOrder:      balance,
		People:            raw.People,
		ActiveRest:        resolveActiveRestSetting(raw.ActiveRest),
		ActiveRestCount:   raw.ActiveRestCount,
		MustUse:           raw.MustUse,
		CrossfitPath:      raw.CrossfitPath,
		CrossfitPathCount: raw.CrossfitPathCount,
		UseWorkoutHistory: raw.UseWorkoutHistory,
		EditMode:          raw.EditMode,
		Equipment:         plan.Inventory(raw.Equipment),
		MaxID:             raw.MaxID,
		MaxRetries:        raw.MaxRetries,
		UpdateIndexHTML:   raw.UpdateIndexHTML,
	}
}

// resolveActiveRestSetting maps the wire value's three legal shapes onto
// ActiveRestSetting. Runtime mode resolution (the auto/mix coin flips)
// still happens later, in restpool.SetupActiveRest, against a seeded RNG.
func resolveActiveRestSetting(v interface{}) plan.ActiveRestSetting {
	switch val := v.(type) {
	case string:
		switch val {
		case "auto":
			return plan.ActiveRestSetting{Auto: true}
		case "mix":
			return plan.ActiveRestSetting{Mix: true}
		default:
			return plan.ActiveRestSetting{}
		}
	case bool:
		return plan.ActiveRestSetting{Bool: val}
	default:
		return plan.ActiveRestSetting{Auto: true}
	}
}
