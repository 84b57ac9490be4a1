// Package cliapp wires the CLI Driver (C11): parsing flags, loading config
// and catalog data through internal/config and internal/store, and driving
// either the normal generation pipeline (C0->C1->C2->(C3,C4)->C8{C7->C6,C5,C4})
// or the Edit Engine (C9) directly. cmd/workoutgen's main is a thin wrapper
// over Run, matching the teacher's cmd/server/main.go shape.
package cliapp

import (
	"context"
	cryptorand "crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/waynenilsen/workoutgen/internal/config"
	"github.com/waynenilsen/workoutgen/internal/domain/catalog"
	"github.com/waynenilsen/workoutgen/internal/domain/editor"
	"github.com/waynenilsen/workoutgen/internal/domain/history"
	"github.com/waynenilsen/workoutgen/internal/domain/plan"
	"github.com/waynenilsen/workoutgen/internal/domain/scheduler"
	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
	"github.com/waynenilsen/workoutgen/internal/store"
	"github.com/waynenilsen/workoutgen/internal/warnings"
)

// Paths locates every file this driver reads or writes, relative to the
// working directory, matching the layout spec.md §6 describes.
type Paths struct {
	ConfigFile     string
	EquipmentDir   string
	ActiveRestFile string
	CrossfitFile   string
	HistoryFile    string
	LastPlanFile   string
}

// DefaultPaths returns the conventional on-disk layout.
func DefaultPaths() Paths {
	return Paths{
		ConfigFile:     "config/plan.json",
		EquipmentDir:   "equipment",
		ActiveRestFile: "equipment/active_rest.json",
		CrossfitFile:   "equipment/crossfit_path.json",
		HistoryFile:    "workout_history.json",
		LastPlanFile:   "workout_store/LAST_WORKOUT_PLAN.json",
	}
}

// Options is the parsed, validated set of CLI flags.
type Options struct {
	EditIDs    []int
	IncludeIDs []int
	Add        bool
}

// ParseArgs converts the raw flag values in fs into Options, enforcing the
// mutual exclusion -edit has with -include and -add.
func ParseArgs(fs *FlagSet) (Options, error) {
	var opts Options
	var err error

	if fs.Edit != "" {
		if fs.Include != "" || fs.Add {
			return Options{}, domerrors.NewInvalidArgs("-edit is mutually exclusive with -include and -add")
		}
		opts.EditIDs, err = parseIDList(fs.Edit)
		if err != nil {
			return Options{}, domerrors.NewInvalidArgs(fmt.Sprintf("-edit: %v", err))
		}
	}

	if fs.Include != "" {
		opts.IncludeIDs, err = parseIDList(fs.Include)
		if err != nil {
			return Options{}, domerrors.NewInvalidArgs(fmt.Sprintf("-include: %v", err))
		}
	}

	opts.Add = fs.Add
	return opts, nil
}

// FlagSet is the raw string/bool form of the CLI flags, decoupled from the
// standard library's flag package so ParseArgs is testable without process
// argument plumbing.
type FlagSet struct {
	Edit    string
	Include string
	Add     bool
}

func parseIDList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", p)
		}
		out = append(out, id)
	}
	return out, nil
}

// Run executes one CLI invocation end to end. It returns nil on success; the
// caller maps the error to a process exit code via errors.ExitCode.
func Run(ctx context.Context, paths Paths, opts Options, now time.Time, stdout, stderr io.Writer) error {
	warn := warnings.New()
	defer warn.FlushTo(stderr)

	if opts.Add {
		fmt.Fprintln(stdout, "handing off to the add-exercise collaborator (external tool; nothing to do here)")
		return nil
	}

	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return err
	}

	raw, err := store.LoadCatalogDir(paths.EquipmentDir)
	if err != nil {
		return err
	}
	cat, err := catalog.Build(raw)
	if err != nil {
		return err
	}
	for _, conflict := range cat.DuplicateIDs {
		warn.Add(warnings.CatalogDuplicateID, "base name %q: kept id %d, rejected id %d",
			conflict.BaseName, conflict.KeptID, conflict.RejectedID)
	}

	activeRestPool, activeRestPresent, err := store.ReadActiveRestPool(paths.ActiveRestFile)
	if err != nil {
		return err
	}
	crossfitPool, crossfitPresent, err := store.ReadCrossfitPool(paths.CrossfitFile)
	if err != nil {
		return err
	}

	hist, histErr := store.ReadHistory(paths.HistoryFile, now)
	if histErr != nil {
		warn.Add(warnings.HistoryIO, "workout_history.json could not be read (%v); continuing with fresh history", histErr)
		hist = history.NewRecord(now)
	}

	pools := scheduler.Pools{
		Catalog:               cat.Exercises,
		ActiveRestPool:        activeRestPool,
		ActiveRestPoolPresent: activeRestPresent,
		CrossfitPool:          crossfitPool,
		CrossfitPoolPresent:   crossfitPresent,
	}

	if len(opts.EditIDs) > 0 {
		return runEdit(paths, cfg, cat.Exercises, opts.EditIDs, warn, stdout)
	}

	cfg.Include = validateIncludeIDs(opts.IncludeIDs, cfg, cat.Exercises, warn)

	baseSeed := scheduler.DeriveBaseSeed(false, nil, now.UnixMilli())
	result, err := scheduler.Schedule(ctx, cfg, pools, hist, baseSeed, warn)
	if err != nil {
		return err
	}

	hist.RecordSession(fmt.Sprintf("Workout %s", now.Format("2006-01-02 15:04:05")), result.UsedExerciseIDs, now)
	if err := store.WriteHistory(paths.HistoryFile, hist); err != nil {
		warn.Add(warnings.HistoryIO, "workout_history.json could not be written: %v", err)
	}
	if err := store.WriteLastPlan(paths.LastPlanFile, result); err != nil {
		return domerrors.NewInternal("could not write last plan artifact", err)
	}

	fmt.Fprintf(stdout, "generated %d stations (seed %d)\n", len(result.Stations), result.Seed)
	return nil
}

// runEdit loads the last plan and drives the Edit Engine directly, never
// touching the scheduler or workout_history.json: an edit does not count as
// a new generated session.
func runEdit(paths Paths, cfg plan.PlanConfig, cat []catalog.Exercise, editIDs []int, warn *warnings.Sink, stdout io.Writer) error {
	last, present, err := store.ReadLastPlan(paths.LastPlanFile)
	if err != nil {
		return err
	}
	if !present {
		return domerrors.NewNothingToEdit()
	}

	rng := newEditRNG()
	result, newLast, err := editor.Edit(editIDs, last, cat, cfg, rng, warn)
	if err != nil {
		return err
	}

	if err := store.WriteLastPlan(paths.LastPlanFile, result); err != nil {
		return domerrors.NewInternal("could not write last plan artifact", err)
	}
	_ = newLast

	fmt.Fprintf(stdout, "edited %d exercise id(s) across %d stations\n", len(editIDs), len(result.Stations))
	return nil
}

// validateIncludeIDs drops any id absent from the catalog (warning once per
// drop) and ignores the whole list under crossfit_path, per spec.md §6.
func validateIncludeIDs(ids []int, cfg plan.PlanConfig, cat []catalog.Exercise, warn *warnings.Sink) []int {
	if cfg.CrossfitPath || len(ids) == 0 {
		return nil
	}

	known := make(map[int]bool, len(cat))
	for _, ex := range cat {
		known[ex.ID] = true
	}

	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !known[id] {
			warn.Add(warnings.IncludeIDInvalid, "-include id %d is not in the catalog; dropping", id)
			continue
		}
		out = append(out, id)
	}
	return out
}

// newEditRNG seeds a fresh PCG source from the OS CSPRNG, per spec.md §4.9's
// "generate a fresh 32-bit random seed" and DESIGN.md's resolution of that
// open question.
func newEditRNG() *rand.Rand {
	var seed [16]byte
	if _, err := cryptorand.Read(seed[:]); err != nil {
		return rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	s1 := binary.BigEndian.Uint64(seed[:8])
	s2 := binary.BigEndian.Uint64(seed[8:])
	return rand.New(rand.NewPCG(s1, s2))
}
