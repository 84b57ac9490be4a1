// Package history implements the History Manager (C4): recording sessions
// and computing per-exercise variety-priority scores so recently or
// frequently used exercises are deprioritized in future runs.
package history

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
)

// Session is one past recorded workout.
type Session struct {
	Date            string
	Title           string
	UsedExerciseIDs []int
	ExerciseCount   int
}

// Metadata carries free-form bookkeeping about the history file itself.
type Metadata struct {
	Created     string
	Description string
	Version     string
	RunID       string
}

// maxSessions is the retention window: only the most recent sessions survive
// a record() call.
const maxSessions = 10

// Record is the persisted history artifact (workout_history.json).
type Record struct {
	Sessions               []Session
	ExerciseUsageCount     map[int]int
	LastSessionDate        string
	TotalWorkoutsGenerated int
	Metadata               Metadata
}

// NewRecord returns an empty history record with fresh metadata.
func NewRecord(now time.Time) Record {
	return Record{
		ExerciseUsageCount: make(map[int]int),
		Metadata: Metadata{
			Created:     now.Format("2006-01-02"),
			Description: "Exercise usage history for workout variety optimization",
			Version:     "1.0",
		},
	}
}

// RecentlyUsed returns the set of exercise ids used in the last n sessions.
func (r Record) RecentlyUsed(n int) map[int]bool {
	sessions := r.Sessions
	if n < len(sessions) {
		sessions = sessions[len(sessions)-n:]
	}
	out := make(map[int]bool)
	for _, s := range sessions {
		for _, id := range s.UsedExerciseIDs {
			out[id] = true
		}
	}
	return out
}

// UsageCount returns how many times id has been used across all recorded history.
func (r Record) UsageCount(id int) int {
	return r.ExerciseUsageCount[id]
}

// Priority computes the variety score for id against base (1.0 is neutral),
// per the exact schedule: recently-used(2) -> 0.1x, recently-used(5) -> 0.5x,
// never used -> 1.5x, used once -> 1.2x, otherwise unchanged.
func (r Record) Priority(id int, base float64) float64 {
	if r.RecentlyUsed(2)[id] {
		return base * 0.1
	}
	if r.RecentlyUsed(5)[id] {
		return base * 0.5
	}
	switch r.UsageCount(id) {
	case 0:
		return base * 1.5
	case 1:
		return base * 1.2
	default:
		return base
	}
}

// RecordSession appends a new session, updates all-time usage counts, and
// truncates to the most recent maxSessions entries. Callers persist the
// result through internal/store after this returns.
func (r *Record) RecordSession(title string, usedIDs []int, now time.Time) {
	session := Session{
		Date:            now.Format("2006-01-02 15:04:05"),
		Title:           title,
		UsedExerciseIDs: usedIDs,
		ExerciseCount:   len(usedIDs),
	}

	r.Sessions = append(r.Sessions, session)
	r.LastSessionDate = session.Date
	r.TotalWorkoutsGenerated++
	r.Metadata.RunID = uuid.New().String()

	if r.ExerciseUsageCount == nil {
		r.ExerciseUsageCount = make(map[int]int)
	}
	for _, id := range usedIDs {
		r.ExerciseUsageCount[id]++
	}

	if len(r.Sessions) > maxSessions {
		r.Sessions = r.Sessions[len(r.Sessions)-maxSessions:]
	}
}

// Summary is the human-facing digest of a history record.
type Summary struct {
	TotalWorkouts        int
	SessionsTracked      int
	UniqueExercisesUsed  int
	LastWorkoutDate      string
	LastWorkoutExercises int
}

// Summary reports the history digest described by spec §4.4.
func (r Record) Summary() Summary {
	s := Summary{
		TotalWorkouts:       r.TotalWorkoutsGenerated,
		SessionsTracked:     len(r.Sessions),
		UniqueExercisesUsed: len(r.ExerciseUsageCount),
		LastWorkoutDate:     "None",
	}
	if len(r.Sessions) > 0 {
		last := r.Sessions[len(r.Sessions)-1]
		s.LastWorkoutDate = last.Date
		s.LastWorkoutExercises = len(last.UsedExerciseIDs)
	}
	return s
}

// neutralID is the legacy sentinel for exercises without a stable id.
const neutralID = -1

// PrioritizeByVariety returns a stable descending sort of pool by priority,
// exercises with the legacy -1 id receiving neutral priority (base 1.0), and
// ids listed in boosted having their priority multiplied by 1.5 (used by the
// -include CLI flag to bias station construction, per spec §6/§9).
func PrioritizeByVariety(pool []catalog.Exercise, r Record, boosted map[int]bool) []catalog.Exercise {
	out := make([]catalog.Exercise, len(pool))
	copy(out, pool)

	priority := func(ex catalog.Exercise) float64 {
		if ex.ID == neutralID {
			return 1.0
		}
		if boosted[ex.ID] {
			return r.Priority(ex.ID, 1.0) * 1.5
		}
		return r.Priority(ex.ID, 1.0)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return priority(out[i]) > priority(out[j])
	})
	return out
}
