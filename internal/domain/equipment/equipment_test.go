package equipment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
)

func TestFeasibleDropsUnsatisfiableExercises(t *testing.T) {
	t.Parallel()

	exercises := []catalog.Exercise{
		{ID: 1, Name: "KB Press", EquipmentReq: map[string]catalog.EquipmentRequirement{"kettlebells_16kg": {Count: 1}}},
		{ID: 2, Name: "Barbell Row", EquipmentReq: map[string]catalog.EquipmentRequirement{"barbells": {Count: 2}}},
	}
	inv := plan.Inventory{"kettlebells_16kg": 1, "barbells": 1}

	out, err := Feasible(exercises, inv)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}

func TestFeasibleSkipsFilterWhenInventoryEmpty(t *testing.T) {
	t.Parallel()

	exercises := []catalog.Exercise{{ID: 1, Name: "Push-up"}}
	out, err := Feasible(exercises, nil)
	require.NoError(t, err)
	assert.Len(t, out, 1)
}

func TestFeasibleAllExcludedFails(t *testing.T) {
	t.Parallel()

	exercises := []catalog.Exercise{
		{ID: 1, EquipmentReq: map[string]catalog.EquipmentRequirement{"barbells": {Count: 5}}},
	}
	_, err := Feasible(exercises, plan.Inventory{"barbells": 1})
	require.Error(t, err)
}

func TestSelectBestOptionPicksMostEfficientAlternative(t *testing.T) {
	t.Parallel()

	req := map[string]catalog.EquipmentRequirement{
		"dumbbells_5kg":  {Count: 2},
		"dumbbells_10kg": {Count: 2},
		"bench":          {Count: 1},
	}
	inv := plan.Inventory{"dumbbells_5kg": 2, "dumbbells_10kg": 10, "bench": 1}

	selected := SelectBestOption(req, inv)
	require.Len(t, selected, 2)
	_, hasBench := selected["bench"]
	assert.True(t, hasBench)

	// dumbbells_10kg: efficiency 8 + utilization 0.2 = 8.2
	// dumbbells_5kg: efficiency 0 + utilization 1.0 = 1.0
	_, has10 := selected["dumbbells_10kg"]
	assert.True(t, has10, "expected the 10kg alternative to win on efficiency")
}

func TestSelectBestOptionFallsBackToFirstWhenNoneQualify(t *testing.T) {
	t.Parallel()

	req := map[string]catalog.EquipmentRequirement{
		"kettlebells_16kg": {Count: 4},
		"kettlebells_24kg": {Count: 4},
	}
	inv := plan.Inventory{"kettlebells_16kg": 1, "kettlebells_24kg": 1}

	selected := SelectBestOption(req, inv)
	require.Len(t, selected, 1)
	_, has16 := selected["kettlebells_16kg"]
	assert.True(t, has16, "expected deterministic fallback to the first alternative in key order")
}

func TestStationRequirementSequentialTakesMax(t *testing.T) {
	t.Parallel()

	steps := []map[string]int{
		{"kettlebells_16kg": 1},
		{"kettlebells_16kg": 1},
	}
	req := StationRequirement(steps, 1)
	assert.Equal(t, 1, req["kettlebells_16kg"])
}

func TestStationRequirementSimultaneousSums(t *testing.T) {
	t.Parallel()

	steps := []map[string]int{
		{"kettlebells_16kg": 1},
		{"kettlebells_16kg": 1},
	}
	req := StationRequirement(steps, 2)
	assert.Equal(t, 2, req["kettlebells_16kg"])
}

func TestLedgerAdmitsUntilInventoryExhausted(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(plan.Inventory{"kettlebells_16kg": 2})

	require.True(t, ledger.CanAdmit(map[string]int{"kettlebells_16kg": 1}))
	ledger.Admit(map[string]int{"kettlebells_16kg": 1})

	require.True(t, ledger.CanAdmit(map[string]int{"kettlebells_16kg": 1}))
	ledger.Admit(map[string]int{"kettlebells_16kg": 1})

	assert.False(t, ledger.CanAdmit(map[string]int{"kettlebells_16kg": 1}))
	assert.Equal(t, plan.Inventory{"kettlebells_16kg": 0}, ledger.Remaining())
}

func TestLedgerRefilterDropsNowInfeasibleExercises(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(plan.Inventory{"kettlebells_16kg": 1})
	ledger.Admit(map[string]int{"kettlebells_16kg": 1})

	pool := []catalog.Exercise{
		{ID: 1, EquipmentReq: map[string]catalog.EquipmentRequirement{"kettlebells_16kg": {Count: 1}}},
		{ID: 2, EquipmentReq: map[string]catalog.EquipmentRequirement{}},
	}
	out, err := ledger.Refilter(pool)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].ID)
}

func TestLedgerRefilterResolvesWeightFamilyAlternatives(t *testing.T) {
	t.Parallel()

	ledger := NewLedger(plan.Inventory{"dumbbells_3kg": 2, "dumbbells_5kg": 2})
	ledger.Admit(map[string]int{"dumbbells_5kg": 2})

	pool := []catalog.Exercise{
		{ID: 1, EquipmentReq: map[string]catalog.EquipmentRequirement{
			"dumbbells_3kg": {Count: 1},
			"dumbbells_5kg": {Count: 1},
		}},
	}

	out, err := ledger.Refilter(pool)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, out[0].ID)
}
