package store

import (
	"os"
	"sort"

	"github.com/goccy/go-json"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

// wireActivity is the shared wire shape for both pool files' entries: name,
// optional video link/kind, skip, and an implicit id assigned by file order.
type wireActivity struct {
	Name      string `json:"name"`
	VideoLink string `json:"video_link"`
	VideoKind string `json:"video_kind"`
	Skip      bool   `json:"skip"`
}

type wireActiveRestFile struct {
	Rest []wireActivity `json:"rest"`
}

// toRawActivities converts the shared wire shape into catalog.RawActivity,
// leaving dedup/id-assignment/ordering to the catalog package's pure builders.
func toRawActivities(in []wireActivity) []catalog.RawActivity {
	out := make([]catalog.RawActivity, len(in))
	for i, w := range in {
		out[i] = catalog.RawActivity{Name: w.Name, Link: w.VideoLink, VideoType: w.VideoKind, Skip: w.Skip}
	}
	return out
}

// ReadActiveRestPool decodes equipment/active_rest.json. present is false
// and no error is returned when the file simply does not exist.
func ReadActiveRestPool(path string) (pool []catalog.ActiveRestActivity, present bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, false, nil
		}
		return nil, false, readErr
	}

	var file wireActiveRestFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, true, domerrors.NewCatalogInvalid(path, err)
	}

	return catalog.BuildActiveRestPool(toRawActivities(file.Rest)), true, nil
}

type wireCrossfitFile struct {
	Lifts map[string][]wireActivity `json:"lifts"`
}

// ReadCrossfitPool decodes equipment/crossfit_path.json, preserving the
// order within each category and visiting categories in a stable,
// deterministic (sorted-key) order.
func ReadCrossfitPool(path string) (pool []catalog.CrossFitPathActivity, present bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return nil, false, nil
		}
		return nil, false, readErr
	}

	var file wireCrossfitFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, true, domerrors.NewCatalogInvalid(path, err)
	}

	categories := make([]string, 0, len(file.Lifts))
	for cat := range file.Lifts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	ordered := make([]wireActivity, 0)
	for _, cat := range categories {
		ordered = append(ordered, file.Lifts[cat]...)
	}

	return catalog.BuildCrossFitPathPool(toRawActivities(ordered)), true, nil
}
