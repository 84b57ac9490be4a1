package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/history"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

func fixedNow() time.Time {
	return time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
}

func kbCatalog() []catalog.Exercise {
	return []catalog.Exercise{
		{ID: 1, Name: "KB Press", BaseName: "KB Press", Area: catalog.AreaUpper,
			EquipmentReq: map[string]catalog.EquipmentRequirement{"kettlebells_16kg": {Count: 1}}},
		{ID: 2, Name: "KB Squat", BaseName: "KB Squat", Area: catalog.AreaLower,
			EquipmentReq: map[string]catalog.EquipmentRequirement{"kettlebells_16kg": {Count: 1}}},
	}
}

func baseConfig() plan.PlanConfig {
	return plan.PlanConfig{
		Stations:          2,
		StepsPerStation:   1,
		People:            2,
		BalanceOrder:      []catalog.Area{catalog.AreaUpper, catalog.AreaLower},
		UseWorkoutHistory: true,
		MaxRetries:        3,
	}
}

// TestScenarioS1InsufficientInventoryExhaustsRetries covers spec scenario S1:
// two stations sharing one kettlebell under the sequential rule cannot be
// admitted (1+1 > 1), so every attempt fails and retries exhaust.
func TestScenarioS1InsufficientInventoryExhaustsRetries(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Equipment = plan.Inventory{"kettlebells_16kg": 1}
	pools := Pools{Catalog: kbCatalog()}

	_, err := Schedule(context.Background(), cfg, pools, history.NewRecord(fixedNow()), 1, warnings.New())
	require.Error(t, err)
	assert.True(t, domerrors.IsInternal(err))
}

// TestScenarioS2SufficientInventoryAdmits covers spec scenario S2: the same
// setup with two kettlebells available admits cleanly.
func TestScenarioS2SufficientInventoryAdmits(t *testing.T) {
	t.Parallel()

	cfg := baseConfig()
	cfg.Equipment = plan.Inventory{"kettlebells_16kg": 2}
	pools := Pools{Catalog: kbCatalog()}

	result, err := Schedule(context.Background(), cfg, pools, history.NewRecord(fixedNow()), 1, warnings.New())
	require.NoError(t, err)
	require.Len(t, result.Stations, 2)
	assert.Equal(t, catalog.AreaUpper, result.Stations[0].Area)
	assert.Equal(t, catalog.AreaLower, result.Stations[1].Area)
	assert.Equal(t, "KB Press", result.Stations[0].Steps[0].Name)
	assert.Equal(t, "KB Squat", result.Stations[1].Steps[0].Name)
	assert.Equal(t, 2, result.EquipmentRequirements["kettlebells_16kg"])
}

// TestScenarioS6CrossfitPathOverride covers spec scenario S6: the override
// bypasses the normal builder and emits one station "A" from the ordered pool.
func TestScenarioS6CrossfitPathOverride(t *testing.T) {
	t.Parallel()

	cfg := plan.PlanConfig{
		Stations: 1, StepsPerStation: 2, BalanceOrder: []catalog.Area{catalog.AreaUpper},
		CrossfitPath: true, CrossfitPathCount: 3,
		Include: []int{99},
	}
	pool := []catalog.CrossFitPathActivity{{ID: 0, Name: "A"}, {ID: 1, Name: "B"}, {ID: 2, Name: "C"}, {ID: 3, Name: "D"}}
	pools := Pools{CrossfitPool: pool, CrossfitPoolPresent: true}

	result, err := Schedule(context.Background(), cfg, pools, history.NewRecord(fixedNow()), 1, warnings.New())
	require.NoError(t, err)
	require.Len(t, result.Stations, 1)
	assert.Equal(t, "A", result.Stations[0].Label)
	require.Len(t, result.Stations[0].Steps, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{
		result.Stations[0].Steps[0].Name, result.Stations[0].Steps[1].Name, result.Stations[0].Steps[2].Name,
	})
}

func TestDeriveBaseSeedEditModeReusesPersistedSeed(t *testing.T) {
	t.Parallel()

	persisted := int64(123)
	assert.Equal(t, int64(123), DeriveBaseSeed(true, &persisted, 999))
	assert.Equal(t, int64(42), DeriveBaseSeed(true, nil, 999))
	assert.Equal(t, int64(999)%(int64(1)<<31-1), DeriveBaseSeed(false, &persisted, 999))
}

func TestResolveMaxRetriesDefaultsAndCaps(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DefaultMaxRetries, ResolveMaxRetries(0))
	assert.Equal(t, 10, ResolveMaxRetries(10))
	assert.Equal(t, MaxRetriesCap, ResolveMaxRetries(1000))
}

func TestWarnUnusedMustUseWarnsOnlyForAvailableAndUnused(t *testing.T) {
	t.Parallel()

	cfg := plan.PlanConfig{MustUse: []string{"plyo_box", "dip_parallel_bars", "resistance_bands"}}
	inventory := plan.Inventory{"plyo_box": 1, "dip_parallel_bars": 0, "resistance_bands": 2}
	result := plan.PlanResult{EquipmentRequirements: map[string]int{"resistance_bands": 1}}

	warn := warnings.New()
	WarnUnusedMustUse(result, cfg, inventory, warn)

	require.Equal(t, 1, warn.Len())
	assert.True(t, warn.HasKind(warnings.MustUseUnused))
	assert.Contains(t, warn.Entries()[0].Message, "plyo_box")
}

func TestWarnUnusedMustUseSilentWhenAllUsed(t *testing.T) {
	t.Parallel()

	cfg := plan.PlanConfig{MustUse: []string{"plyo_box"}}
	inventory := plan.Inventory{"plyo_box": 1}
	result := plan.PlanResult{EquipmentRequirements: map[string]int{"plyo_box": 1}}

	warn := warnings.New()
	WarnUnusedMustUse(result, cfg, inventory, warn)

	assert.Equal(t, 0, warn.Len())
}
