package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

func TestStripLateralitySuffix(t *testing.T) {
	t.Parallel()

	base, had := StripLateralitySuffix("Bulgarian Split Squat (Left)")
	assert.Equal(t, "Bulgarian Split Squat", base)
	assert.True(t, had)

	base, had = StripLateralitySuffix("bulgarian split squat (RIGHT)")
	assert.Equal(t, "bulgarian split squat", base)
	assert.True(t, had)

	base, had = StripLateralitySuffix("Push-up")
	assert.Equal(t, "Push-up", base)
	assert.False(t, had)
}

func TestInferVideoKind(t *testing.T) {
	t.Parallel()

	assert.Equal(t, VideoYouTube, InferVideoKind("https://www.youtube.com/watch?v=x"))
	assert.Equal(t, VideoYouTube, InferVideoKind("https://youtu.be/x"))
	assert.Equal(t, VideoMP4, InferVideoKind("https://example.com/videos/clip.mov"))
	assert.Equal(t, VideoMP4, InferVideoKind("https://example.com/clip.mp4"))
	assert.Equal(t, VideoNone, InferVideoKind("https://example.com/page.html"))
	assert.Equal(t, VideoNone, InferVideoKind(""))
}

func TestBuildDeduplicatesByBaseNameFirstIDWins(t *testing.T) {
	t.Parallel()

	raw := []RawExercise{
		{ID: 7, Name: "Bulgarian Split Squat (Left)", Area: "upper", Unilateral: true},
		{ID: 7, Name: "Bulgarian Split Squat (Right)", Area: "upper", Unilateral: true},
		{ID: 99, Name: "bulgarian split squat (left)", Area: "upper", Unilateral: true},
	}

	cat, err := Build(raw)
	require.NoError(t, err)
	require.Len(t, cat.Exercises, 1)
	assert.Equal(t, 7, cat.Exercises[0].ID)
	require.Len(t, cat.DuplicateIDs, 1)
	assert.Equal(t, 99, cat.DuplicateIDs[0].RejectedID)
}

func TestBuildDropsSkippedEntries(t *testing.T) {
	t.Parallel()

	raw := []RawExercise{
		{ID: 1, Name: "Push-up", Area: "upper"},
		{ID: 2, Name: "Retired Lift", Area: "upper", Skip: true},
	}

	cat, err := Build(raw)
	require.NoError(t, err)
	require.Len(t, cat.Exercises, 1)
	assert.Equal(t, "Push-up", cat.Exercises[0].Name)
}

func TestBuildEmptyCatalogFails(t *testing.T) {
	t.Parallel()

	_, err := Build(nil)
	require.Error(t, err)
	assert.Equal(t, domerrors.KindCatalogEmpty, err.(*domerrors.DomainError).Field)
}

func TestBuildDefaultsUnknownAreaToCore(t *testing.T) {
	t.Parallel()

	cat, err := Build([]RawExercise{{ID: 1, Name: "Mystery Move", Area: "weird"}})
	require.NoError(t, err)
	assert.Equal(t, AreaCore, cat.Exercises[0].Area)
}

func TestBuildCrossFitPathPoolPreservesOrder(t *testing.T) {
	t.Parallel()

	raw := []RawActivity{
		{Name: "A"},
		{Name: "B", Skip: true},
		{Name: "C"},
	}
	pool := BuildCrossFitPathPool(raw)
	require.Len(t, pool, 2)
	assert.Equal(t, "A", pool[0].Name)
	assert.Equal(t, "C", pool[1].Name)

	prefix := Prefix(pool, 1)
	require.Len(t, prefix, 1)
	assert.Equal(t, "A", prefix[0].Name)
}

func TestBuildActiveRestPoolDropsSkipsAndAssignsSequentialIDs(t *testing.T) {
	t.Parallel()

	raw := []RawActivity{
		{Name: "Jog", Link: "https://youtube.com/watch?v=1"},
		{Name: "Skipped", Skip: true},
		{Name: "Jump Rope", Link: "https://vimeo.com/2"},
	}
	pool := BuildActiveRestPool(raw)
	require.Len(t, pool, 2)
	assert.Equal(t, 0, pool[0].ID)
	assert.Equal(t, "Jog", pool[0].Name)
	assert.Equal(t, VideoYouTube, pool[0].VideoKind)
	assert.Equal(t, 1, pool[1].ID)
	assert.Equal(t, "Jump Rope", pool[1].Name)
}

func TestPrefixReturnsWholePoolWhenNExceedsLength(t *testing.T) {
	t.Parallel()

	pool := []CrossFitPathActivity{{Name: "A"}, {Name: "B"}}
	assert.Equal(t, pool, Prefix(pool, 5))
	assert.Nil(t, Prefix(pool, 0))
}
