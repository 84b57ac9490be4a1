package store

import (
	"os"

	"github.com/goccy/go-json"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/editor"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
)

type wireStation struct {
	Station         string `json:"station"`
	Area            string `json:"area"`
	UsedExerciseIDs []int  `json:"used_exercise_ids"`
}

type wireActivityRef struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	VideoLink string `json:"video_link"`
	VideoKind string `json:"video_kind"`
}

type wireLastPlan struct {
	Seed                          int64             `json:"seed"`
	Stations                      []wireStation     `json:"stations"`
	GlobalActiveRestSchedule      []wireActivityRef `json:"global_active_rest_schedule"`
	SelectedActiveRestExercises   []wireActivityRef `json:"selected_active_rest_exercises"`
	SelectedCrossfitPathExercises []wireActivityRef `json:"selected_crossfit_path_exercises"`
}

// ReadLastPlan decodes workout_store/LAST_WORKOUT_PLAN.json into the shape
// the Edit Engine consumes. present is false and no error is returned when
// the file does not exist yet (the first-ever run of the program).
func ReadLastPlan(path string) (last editor.LastPlan, present bool, err error) {
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		if os.IsNotExist(readErr) {
			return editor.LastPlan{}, false, nil
		}
		return editor.LastPlan{}, false, readErr
	}

	var w wireLastPlan
	if err := json.Unmarshal(data, &w); err != nil {
		return editor.LastPlan{}, true, err
	}

	stations := make([]plan.Station, len(w.Stations))
	for i, ws := range w.Stations {
		steps := make([]plan.Step, len(ws.UsedExerciseIDs))
		for j, id := range ws.UsedExerciseIDs {
			steps[j] = plan.Step{ID: id}
		}
		stations[i] = plan.Station{
			Area:  catalog.Area(ws.Area),
			Label: ws.Station,
			Steps: steps,
		}
	}

	return editor.LastPlan{Stations: stations, Seed: w.Seed}, true, nil
}

// WriteLastPlan atomically rewrites workout_store/LAST_WORKOUT_PLAN.json
// from result, stamping station letters per plan.StationLetter.
func WriteLastPlan(path string, result plan.PlanResult) error {
	w := wireLastPlan{Seed: result.Seed}

	for _, st := range result.Stations {
		w.Stations = append(w.Stations, wireStation{
			Station:         st.Label,
			Area:            string(st.Area),
			UsedExerciseIDs: st.UsedExerciseIDs(),
		})
	}
	for _, rest := range result.GlobalActiveRestSchedule {
		w.GlobalActiveRestSchedule = append(w.GlobalActiveRestSchedule, wireActivityRef{
			Name:      rest.Name,
			VideoLink: rest.Link,
			VideoKind: string(rest.VideoKind),
		})
	}
	for _, a := range result.SelectedActiveRestExercises {
		w.SelectedActiveRestExercises = append(w.SelectedActiveRestExercises, wireActivityRef{
			ID:        a.ID,
			Name:      a.Name,
			VideoLink: a.VideoLink,
			VideoKind: string(a.VideoKind),
		})
	}
	for _, a := range result.SelectedCrossfitPathExercises {
		w.SelectedCrossfitPathExercises = append(w.SelectedCrossfitPathExercises, wireActivityRef{
			ID:        a.ID,
			Name:      a.Name,
			VideoLink: a.VideoLink,
			VideoKind: string(a.VideoKind),
		})
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}
