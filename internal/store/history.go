package store

import (
	"os"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/waynenilsen/workoutgen/internal/domain/history"
)

type wireSession struct {
	Date            string `json:"date"`
	Title           string `json:"title"`
	UsedExerciseIDs []int  `json:"used_exercise_ids"`
	ExerciseCount   int    `json:"exercise_count"`
}

type wireMetadata struct {
	Created     string `json:"created"`
	Description string `json:"description"`
	Version     string `json:"version"`
	RunID       string `json:"run_id"`
}

type wireHistory struct {
	Sessions      []wireSession  `json:"workout_sessions"`
	UsageCount    map[string]int `json:"exercise_usage_count"`
	LastSession   *string        `json:"last_session_date"`
	TotalWorkouts int            `json:"total_workouts_generated"`
	Metadata      wireMetadata   `json:"metadata"`
}

// ReadHistory decodes workout_history.json. A missing file is not an
// error: it returns a fresh record seeded with now. Malformed content
// returns a fresh record alongside the error, so the caller can fall back
// and surface a recoverable HistoryIO warning instead of aborting.
func ReadHistory(path string, now time.Time) (history.Record, error) {
	fresh := history.NewRecord(now)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fresh, nil
		}
		return fresh, err
	}

	var w wireHistory
	if err := json.Unmarshal(data, &w); err != nil {
		return fresh, err
	}

	rec := history.Record{
		ExerciseUsageCount:     make(map[int]int, len(w.UsageCount)),
		TotalWorkoutsGenerated: w.TotalWorkouts,
		Metadata: history.Metadata{
			Created:     w.Metadata.Created,
			Description: w.Metadata.Description,
			Version:     w.Metadata.Version,
			RunID:       w.Metadata.RunID,
		},
	}
	if w.LastSession != nil {
		rec.LastSessionDate = *w.LastSession
	}
	for idStr, count := range w.UsageCount {
		id, convErr := strconv.Atoi(idStr)
		if convErr != nil {
			continue
		}
		rec.ExerciseUsageCount[id] = count
	}
	for _, s := range w.Sessions {
		rec.Sessions = append(rec.Sessions, history.Session{
			Date:            s.Date,
			Title:           s.Title,
			UsedExerciseIDs: s.UsedExerciseIDs,
			ExerciseCount:   s.ExerciseCount,
		})
	}
	return rec, nil
}

// WriteHistory atomically rewrites workout_history.json from rec.
func WriteHistory(path string, rec history.Record) error {
	w := wireHistory{
		UsageCount:    make(map[string]int, len(rec.ExerciseUsageCount)),
		TotalWorkouts: rec.TotalWorkoutsGenerated,
		Metadata: wireMetadata{
			Created:     rec.Metadata.Created,
			Description: rec.Metadata.Description,
			Version:     rec.Metadata.Version,
			RunID:       rec.Metadata.RunID,
		},
	}
	if rec.LastSessionDate != "" {
		last := rec.LastSessionDate
		w.LastSession = &last
	}
	for id, count := range rec.ExerciseUsageCount {
		w.UsageCount[strconv.Itoa(id)] = count
	}
	for _, s := range rec.Sessions {
		w.Sessions = append(w.Sessions, wireSession{
			Date:            s.Date,
			Title:           s.Title,
			UsedExerciseIDs: s.UsedExerciseIDs,
			ExerciseCount:   s.ExerciseCount,
		})
	}

	data, err := json.MarshalIndent(w, "", "  ")
	if err != nil {
		return err
	}
	return WriteAtomic(path, data)
}
