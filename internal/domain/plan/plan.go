// Package plan provides the PlanConfig/PlanResult data model shared across
// the scheduler. Like the teacher's internal/domain/program, it holds plain
// entity types and pure derivation/validation functions — no file I/O.
package plan

import (
	"errors"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
)

// Validation errors for PlanConfig.
var (
	ErrStationsRequired        = errors.New("stations must be >= 1")
	ErrStepsPerStationRequired = errors.New("steps_per_station must be >= 1")
	ErrBalanceOrderRequired    = errors.New("balance_order must contain at least one area")
)

// ActiveRestSetting is the raw, unresolved active_rest config value. It may
// have come from a JSON bool or one of the strings "auto"/"mix".
type ActiveRestSetting struct {
	// Auto is true when the config value was the string "auto".
	Auto bool
	// Mix is true when the config value was the string "mix".
	Mix bool
	// Bool is used when the value was a literal JSON bool (Auto and Mix false).
	Bool bool
}

// ActiveRestMode is the runtime-resolved rest mode (C3 output).
type ActiveRestMode string

// Recognized resolved modes.
const (
	ModeAllActive ActiveRestMode = "all_active"
	ModeAllRest   ActiveRestMode = "all_rest"
	ModeMix       ActiveRestMode = "mix"
)

// PlanConfig is the immutable, validated configuration for one scheduling run.
type PlanConfig struct {
	Stations          int
	StepsPerStation   int
	Rounds            int
	TimingWorkSeconds int
	TimingRestSeconds int
	BalanceOrder      []catalog.Area
	People            int
	ActiveRest        ActiveRestSetting
	ActiveRestCount   int
	MustUse           []string
	CrossfitPath      bool
	CrossfitPathCount int
	UseWorkoutHistory bool
	EditMode          bool
	Equipment         Inventory
	MaxID             int
	Include           []int
	MaxRetries        int
	// UpdateIndexHTML is an opaque pass-through for the (out-of-scope) report
	// renderer: the core never branches on it, only carries it end to end.
	UpdateIndexHTML bool
}

// Inventory maps an equipment type to the count available in the pool,
// shared across all stations for the duration of one attempt.
type Inventory map[string]int

// Get returns the available count for typ, or 0 if absent.
func (inv Inventory) Get(typ string) int {
	if inv == nil {
		return 0
	}
	return inv[typ]
}

// PeoplePerStation derives the people-per-station regime: min(2, floor(people/stations)).
// Values of 1 mean sequential equipment accounting; 2 means simultaneous.
func (c PlanConfig) PeoplePerStation() int {
	if c.Stations <= 0 {
		return 1
	}
	perStation := c.People / c.Stations
	if perStation > 2 {
		return 2
	}
	if perStation < 1 {
		return 1
	}
	return perStation
}

// AreaForStation returns the balance-order area target for station index s
// (0-based), cycling through BalanceOrder.
func (c PlanConfig) AreaForStation(s int) catalog.Area {
	if len(c.BalanceOrder) == 0 {
		return catalog.AreaCore
	}
	return c.BalanceOrder[s%len(c.BalanceOrder)]
}

// Normalize fills safe floors for zero-valued fields regardless of how cfg
// was constructed (config file, hand-built for tests, or reconstructed for
// an edit), deferring anything that needs a seeded RNG — active_rest's
// auto/mix coin flips — to restpool.SetupActiveRest at attempt time.
func Normalize(cfg PlanConfig) PlanConfig {
	if cfg.StepsPerStation <= 0 {
		cfg.StepsPerStation = 2
	}
	if len(cfg.BalanceOrder) == 0 {
		cfg.BalanceOrder = []catalog.Area{catalog.AreaUpper, catalog.AreaLower, catalog.AreaCore}
	}
	if cfg.People <= 0 {
		cfg.People = cfg.Stations * 2
	}
	return cfg
}

// Validate checks the structural invariants that must hold before any
// scheduling work begins.
func (c PlanConfig) Validate() error {
	if c.Stations < 1 {
		return ErrStationsRequired
	}
	if c.StepsPerStation < 1 {
		return ErrStepsPerStationRequired
	}
	if len(c.BalanceOrder) == 0 {
		return ErrBalanceOrderRequired
	}
	return nil
}

// Step is one prescribed exercise position within a station. Unilateral
// exercises occupy two consecutive steps with identical Equipment and ID,
// labeled "(Left)" then "(Right)" in Name.
type Step struct {
	Name      string
	Link      string
	Equipment map[string]int
	Muscles   []string
	ID        int
	VideoKind catalog.VideoKind
}

// Station is one emitted workout location.
type Station struct {
	Area  catalog.Area
	Label string // station letter: "A", "B", "C", ...
	Steps []Step
}

// UsedExerciseIDs returns the ordered list of step ids in this station,
// including duplicate ids from a unilateral pair, exactly as the last-plan
// artifact persists them.
func (s Station) UsedExerciseIDs() []int {
	ids := make([]int, len(s.Steps))
	for i, step := range s.Steps {
		ids[i] = step.ID
	}
	return ids
}

// RestEntry is one slot in the global active-rest schedule.
type RestEntry struct {
	Name      string
	Link      string
	VideoKind catalog.VideoKind
}

// UtilizationStat reports how heavily one equipment type was used relative
// to inventory, for the (out-of-scope) renderer to surface as a hint.
type UtilizationStat struct {
	Required       int
	Available      int
	UtilizationPct float64
	Sufficient     bool
}

// PlanResult is everything a successful run (or the best-effort state of a
// failed one) produces.
type PlanResult struct {
	Stations                      []Station
	EquipmentRequirements         map[string]int
	GlobalActiveRestSchedule      []RestEntry
	SelectedActiveRestExercises   []catalog.ActiveRestActivity
	SelectedCrossfitPathExercises []catalog.CrossFitPathActivity
	UsedExerciseIDs               []int
	Seed                          int64
	EquipmentUtilization          map[string]UtilizationStat
}

// StationLetter returns the spreadsheet-style label for station index i
// (0-based): A, B, C, ... Z, AA, AB, ...
func StationLetter(i int) string {
	label := make([]byte, 0, 2)
	i++
	for i > 0 {
		i--
		label = append([]byte{byte('A' + i%26)}, label...)
		i /= 26
	}
	return string(label)
}
