// Package catalog provides domain logic for loading and normalizing the
// exercise catalog (C1) plus the active-rest and CrossFit-path pools (C3's
// data shapes). It contains pure business logic with no file I/O — callers
// feed it already-read file contents via internal/store — so it is testable
// in isolation, matching the teacher's domain-package convention.
package catalog

import (
	"fmt"
	"strings"

	domerrors "github.com/waynenilsen/workoutgen/internal/errors"
)

// Area is the coarse body-region tag assigned to each exercise and station.
type Area string

// The three recognized areas.
const (
	AreaUpper Area = "upper"
	AreaLower Area = "lower"
	AreaCore  Area = "core"
)

// VideoKind classifies the media behind an exercise's video link.
type VideoKind string

// Recognized video kinds.
const (
	VideoYouTube VideoKind = "youtube"
	VideoMP4     VideoKind = "mp4"
	VideoNone    VideoKind = "none"
)

// EquipmentRequirement is the count of a single equipment type an exercise needs.
type EquipmentRequirement struct {
	Count int
}

// Exercise is a normalized, load-time-deduplicated catalog entry.
type Exercise struct {
	ID           int
	Name         string
	BaseName     string
	Area         Area
	Muscles      []string
	EquipmentReq map[string]EquipmentRequirement
	Unilateral   bool
	VideoLink    string
	VideoKind    VideoKind
	Skip         bool
	Category     string
}

// ActiveRestActivity is a shared rest-pool entry (C3).
type ActiveRestActivity struct {
	ID        int
	Name      string
	VideoLink string
	VideoKind VideoKind
	Skip      bool
}

// CrossFitPathActivity is an ordered CrossFit-path override entry (C3).
type CrossFitPathActivity struct {
	ID        int
	Name      string
	VideoLink string
	VideoKind VideoKind
	Skip      bool
}

// reservedFileNames are catalog files C1 must never treat as equipment files.
var reservedFileNames = map[string]bool{
	"active_rest":   true,
	"crossfit_path": true,
}

// IsReservedFile reports whether stem (filename without extension) is one of
// the two reserved pool files rather than an ordinary equipment file.
func IsReservedFile(stem string) bool {
	return reservedFileNames[stem]
}

// StripLateralitySuffix removes a trailing "(Left)"/"(Right)" suffix
// (case-insensitive) and returns the base name plus whether a suffix was
// present. Left/Right suffixes are runtime labels only and are never
// persisted, per spec — every lookup canonicalizes through this function.
func StripLateralitySuffix(name string) (base string, hadSuffix bool) {
	trimmed := strings.TrimSpace(name)
	lower := strings.ToLower(trimmed)
	for _, suffix := range []string{"(left)", "(right)"} {
		if strings.HasSuffix(lower, suffix) {
			cut := len(trimmed) - len(suffix)
			return strings.TrimSpace(trimmed[:cut]), true
		}
	}
	return trimmed, false
}

// InferVideoKind classifies a video link when the source file doesn't supply
// an explicit video_type. A link containing youtube.com or youtu.be is
// YouTube; a link ending in .mp4 or under a videos/ prefix is MP4;
// otherwise None.
func InferVideoKind(link string) VideoKind {
	if link == "" {
		return VideoNone
	}
	lower := strings.ToLower(link)
	switch {
	case strings.Contains(lower, "youtube.com"), strings.Contains(lower, "youtu.be"):
		return VideoYouTube
	case strings.HasSuffix(lower, ".mp4"), strings.Contains(lower, "videos/"):
		return VideoMP4
	default:
		return VideoNone
	}
}

// normalizeVideoKind maps the raw source string onto a VideoKind, falling
// back to inference when the source left it blank or used an unknown token.
func normalizeVideoKind(raw, link string) VideoKind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "youtube":
		return VideoYouTube
	case "mp4":
		return VideoMP4
	case "none":
		return VideoNone
	default:
		return InferVideoKind(link)
	}
}

// Catalog is the load-time result: the live (non-skipped) exercise set plus
// diagnostics about duplicate-id conflicts encountered while deduplicating
// by base name.
type Catalog struct {
	Exercises    []Exercise
	DuplicateIDs []DuplicateIDConflict
}

// DuplicateIDConflict records a base-name collision where a later entry
// disagreed with the first-seen id. Non-fatal: the loader keeps the first
// mapping and reports the conflict for the caller to warn about.
type DuplicateIDConflict struct {
	BaseName   string
	KeptID     int
	RejectedID int
}

// Build assembles the live Catalog from already-parsed raw entries across all
// equipment files, deduplicating by base_name (first id wins) and dropping
// skip=true entries. Entries with an empty Name are not rejected, here or in
// store.ReadCatalogFile.
func Build(raw []RawExercise) (Catalog, error) {
	seen := make(map[string]int, len(raw))
	order := make([]string, 0, len(raw))
	byBase := make(map[string]Exercise, len(raw))
	var conflicts []DuplicateIDConflict

	for _, r := range raw {
		if r.Skip {
			continue
		}
		base, _ := StripLateralitySuffix(r.Name)
		baseKey := strings.ToLower(base)

		ex := toExercise(r, base)

		if existingID, ok := seen[baseKey]; ok {
			if existingID != ex.ID {
				conflicts = append(conflicts, DuplicateIDConflict{
					BaseName:   base,
					KeptID:     existingID,
					RejectedID: ex.ID,
				})
			}
			continue
		}

		seen[baseKey] = ex.ID
		byBase[baseKey] = ex
		order = append(order, baseKey)
	}

	exercises := make([]Exercise, 0, len(order))
	for _, key := range order {
		exercises = append(exercises, byBase[key])
	}

	if len(exercises) == 0 {
		return Catalog{}, domerrors.NewCatalogEmpty()
	}

	return Catalog{Exercises: exercises, DuplicateIDs: conflicts}, nil
}

// RawExercise is the loader-input shape produced by store's file decoding,
// after legacy-string normalization but before dedup/skip filtering.
type RawExercise struct {
	ID           int
	Name         string
	Link         string
	Area         string
	Muscles      []string
	EquipmentReq map[string]EquipmentRequirement
	Unilateral   bool
	Skip         bool
	VideoType    string
	Category     string
}

func toExercise(r RawExercise, base string) Exercise {
	area := Area(strings.ToLower(strings.TrimSpace(r.Area)))
	switch area {
	case AreaUpper, AreaLower, AreaCore:
	default:
		area = AreaCore
	}

	return Exercise{
		ID:           r.ID,
		Name:         r.Name,
		BaseName:     base,
		Area:         area,
		Muscles:      lowercaseAll(r.Muscles),
		EquipmentReq: r.EquipmentReq,
		Unilateral:   r.Unilateral,
		VideoLink:    r.Link,
		VideoKind:    normalizeVideoKind(r.VideoType, r.Link),
		Skip:         r.Skip,
		Category:     r.Category,
	}
}

func lowercaseAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(strings.TrimSpace(s))
	}
	return out
}

// WithLaterality returns a copy of ex labeled for the given side, used only
// at render time for unilateral step expansion. side must be "Left" or "Right".
func (ex Exercise) WithLaterality(side string) Exercise {
	labeled := ex
	labeled.Name = fmt.Sprintf("%s (%s)", ex.BaseName, side)
	return labeled
}
