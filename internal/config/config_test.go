package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "plan.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Stations)
	assert.Equal(t, 2, cfg.StepsPerStation)
	assert.Equal(t, []catalog.Area{catalog.AreaUpper, catalog.AreaLower, catalog.AreaCore}, cfg.BalanceOrder)
	assert.True(t, cfg.ActiveRest.Auto)
	assert.True(t, cfg.UseWorkoutHistory)
}

func TestLoadOverlaysFileOverDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `{
		"stations": 6,
		"steps_per_station": 3,
		"balance_order": ["lower", "upper"],
		"equipment": {"kettlebells_16kg": 4},
		"max_retries": 20
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Stations)
	assert.Equal(t, 3, cfg.StepsPerStation)
	assert.Equal(t, []catalog.Area{catalog.AreaLower, catalog.AreaUpper}, cfg.BalanceOrder)
	assert.Equal(t, 4, cfg.Equipment.Get("kettlebells_16kg"))
	assert.Equal(t, 20, cfg.MaxRetries)
	// Untouched defaults still stand.
	assert.True(t, cfg.UseWorkoutHistory)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `{not valid json`)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, domerrors.IsBadRequest(err))
}

func TestLoadActiveRestStringVariants(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `{"active_rest": "mix"}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.ActiveRest.Mix)
	assert.False(t, cfg.ActiveRest.Auto)
}

func TestLoadActiveRestBoolVariant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `{"active_rest": false}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.ActiveRest.Auto)
	assert.False(t, cfg.ActiveRest.Mix)
	assert.False(t, cfg.ActiveRest.Bool)
}

func TestLoadNormalizesZeroPeopleFromStations(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeConfig(t, dir, `{"stations": 5, "people": 0}`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.People)
}

func TestLoadUpdateIndexHTMLDefaultsTrueAndOverlays(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.True(t, cfg.UpdateIndexHTML)

	dir := t.TempDir()
	path := writeConfig(t, dir, `{"update_index_html": false}`)
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.UpdateIndexHTML)
}
