package cliapp

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

func fixedNow() time.Time {
	return time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
}

func TestParseArgsRejectsEditWithInclude(t *testing.T) {
	t.Parallel()

	_, err := ParseArgs(&FlagSet{Edit: "1,2", Include: "3"})
	require.Error(t, err)
	assert.True(t, domerrors.IsBadRequest(err))
}

func TestParseArgsRejectsEditWithAdd(t *testing.T) {
	t.Parallel()

	_, err := ParseArgs(&FlagSet{Edit: "1", Add: true})
	require.Error(t, err)
	assert.True(t, domerrors.IsBadRequest(err))
}

func TestParseArgsParsesIDLists(t *testing.T) {
	t.Parallel()

	opts, err := ParseArgs(&FlagSet{Edit: "7, 8,9"})
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, opts.EditIDs)
}

func TestParseArgsRejectsMalformedIDs(t *testing.T) {
	t.Parallel()

	_, err := ParseArgs(&FlagSet{Include: "abc"})
	require.Error(t, err)
	assert.True(t, domerrors.IsBadRequest(err))
}

func setupFixtureDir(t *testing.T) Paths {
	t.Helper()
	dir := t.TempDir()

	equipmentDir := filepath.Join(dir, "equipment")
	require.NoError(t, os.MkdirAll(equipmentDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(equipmentDir, "bodyweight.json"), []byte(`{
		"lifts": {"upper": [{"id": 1, "name": "Push-up", "area": "upper", "equipment": {}}]}
	}`), 0o644))

	configDir := filepath.Join(dir, "config")
	require.NoError(t, os.MkdirAll(configDir, 0o755))
	configPath := filepath.Join(configDir, "plan.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
		"stations": 1, "steps_per_station": 1, "people": 2,
		"balance_order": ["upper"], "active_rest": false
	}`), 0o644))

	return Paths{
		ConfigFile:     configPath,
		EquipmentDir:   equipmentDir,
		ActiveRestFile: filepath.Join(dir, "equipment", "active_rest.json"),
		CrossfitFile:   filepath.Join(dir, "equipment", "crossfit_path.json"),
		HistoryFile:    filepath.Join(dir, "workout_history.json"),
		LastPlanFile:   filepath.Join(dir, "workout_store", "LAST_WORKOUT_PLAN.json"),
	}
}

func TestRunGeneratesPlanAndPersistsArtifacts(t *testing.T) {
	t.Parallel()

	paths := setupFixtureDir(t)
	var stdout, stderr bytes.Buffer

	err := Run(context.Background(), paths, Options{}, fixedNow(), &stdout, &stderr)
	require.NoError(t, err)

	assert.FileExists(t, paths.LastPlanFile)
	assert.FileExists(t, paths.HistoryFile)
	assert.Contains(t, stdout.String(), "generated 1 stations")
}

func TestRunEditModeRequiresExistingLastPlan(t *testing.T) {
	t.Parallel()

	paths := setupFixtureDir(t)
	var stdout, stderr bytes.Buffer

	err := Run(context.Background(), paths, Options{EditIDs: []int{1}}, fixedNow(), &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, domerrors.IsBadRequest(err))
}

func TestRunAddHandsOffWithoutTouchingFiles(t *testing.T) {
	t.Parallel()

	paths := setupFixtureDir(t)
	var stdout, stderr bytes.Buffer

	err := Run(context.Background(), paths, Options{Add: true}, fixedNow(), &stdout, &stderr)
	require.NoError(t, err)
	assert.NoFileExists(t, paths.LastPlanFile)
	assert.Contains(t, stdout.String(), "add-exercise collaborator")
}

func TestRunEditReplacesRequestedID(t *testing.T) {
	t.Parallel()

	paths := setupFixtureDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(paths.EquipmentDir, "bodyweight.json"), []byte(`{
		"lifts": {"upper": [
			{"id": 1, "name": "Push-up", "area": "upper", "equipment": {}},
			{"id": 2, "name": "Sit-up", "area": "upper", "equipment": {}}
		]}
	}`), 0o644))

	var gen bytes.Buffer
	require.NoError(t, Run(context.Background(), paths, Options{}, fixedNow(), &gen, &gen))

	var stdout, stderr bytes.Buffer
	err := Run(context.Background(), paths, Options{EditIDs: []int{1}}, fixedNow(), &stdout, &stderr)
	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "edited 1 exercise id(s)")
}
