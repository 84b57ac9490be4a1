package store

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

// wireEquipmentFile is the on-disk shape of an ordinary equipment catalog
// file: {"lifts": {"<category>": [Exercise, ...], ...}}.
type wireEquipmentFile struct {
	Lifts map[string][]wireExercise `json:"lifts"`
}

// wireExercise accepts either a bare string (legacy, name-only) or a full
// object, per spec's "a legacy string entry is treated as a name with empty
// metadata".
type wireExercise struct {
	ID         int                                     `json:"id"`
	Name       string                                  `json:"name"`
	Link       string                                  `json:"link"`
	Area       string                                  `json:"area"`
	Muscles    muscleList                              `json:"muscles"`
	Equipment  map[string]catalog.EquipmentRequirement `json:"equipment"`
	Unilateral bool                                    `json:"unilateral"`
	Skip       bool                                    `json:"skip"`
	VideoType  string                                  `json:"video_type"`
	Category   string                                  `json:"category"`

	isLegacy bool
}

func (w *wireExercise) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		*w = wireExercise{ID: -1, Name: name, isLegacy: true}
		return nil
	}

	type alias wireExercise
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*w = wireExercise(a)
	return nil
}

// muscleList decodes either a single comma-separated string or a JSON array
// of strings into a normalized slice.
type muscleList []string

func (m *muscleList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if len(trimmed) == 0 || trimmed == "null" {
		*m = nil
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		*m = out
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*m = list
	return nil
}

func (w wireExercise) toRaw() catalog.RawExercise {
	return catalog.RawExercise{
		ID:           w.ID,
		Name:         w.Name,
		Link:         w.Link,
		Area:         w.Area,
		Muscles:      []string(w.Muscles),
		EquipmentReq: w.Equipment,
		Unilateral:   w.Unilateral,
		Skip:         w.Skip,
		VideoType:    w.VideoType,
		Category:     w.Category,
	}
}

// ReadCatalogFile decodes one ordinary equipment file, flattening every
// lifts.<category> array into a single ordered RawExercise slice.
func ReadCatalogFile(path string) ([]catalog.RawExercise, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var file wireEquipmentFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, domerrors.NewCatalogInvalid(path, err)
	}

	categories := make([]string, 0, len(file.Lifts))
	for cat := range file.Lifts {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	out := make([]catalog.RawExercise, 0)
	for _, cat := range categories {
		for _, w := range file.Lifts[cat] {
			raw := w.toRaw()
			if raw.Category == "" {
				raw.Category = cat
			}
			out = append(out, raw)
		}
	}
	return out, nil
}

// LoadCatalogDir walks dir for every *.json equipment file, excluding the
// two reserved pool files, and aggregates their RawExercise entries in
// filename order for load-time determinism.
func LoadCatalogDir(dir string) ([]catalog.RawExercise, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if catalog.IsReservedFile(stem) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	out := make([]catalog.RawExercise, 0)
	for _, name := range names {
		raw, err := ReadCatalogFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		out = append(out, raw...)
	}
	return out, nil
}
