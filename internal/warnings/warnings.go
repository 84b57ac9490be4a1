// Package warnings provides a small accumulator for recoverable conditions
// that should be surfaced to the operator without aborting the run, per the
// error-handling policy: HistoryIOWarning, ActiveRestMissingWarning, and
// CrossFitPathMissingWarning never escalate to a fatal error.
package warnings

import (
	"fmt"
	"io"
)

// Kind identifies a recoverable warning category.
type Kind string

const (
	// HistoryIO is emitted when the history file cannot be read or written.
	HistoryIO Kind = "history_io"
	// ActiveRestMissing is emitted when active_rest.json is absent but required.
	ActiveRestMissing Kind = "active_rest_missing"
	// CrossFitPathMissing is emitted when crossfit_path.json is absent but required.
	CrossFitPathMissing Kind = "crossfit_path_missing"
	// CatalogDuplicateID is emitted when two base names disagree on id during load.
	CatalogDuplicateID Kind = "catalog_duplicate_id"
	// MustUseUnused is emitted when must-use equipment went unused in a finished plan.
	MustUseUnused Kind = "must_use_unused"
	// StationPadded is emitted when a station ran out of candidates and was padded.
	StationPadded Kind = "station_padded"
	// EditIDNotInPlan is emitted when a requested -edit id is absent from the last plan.
	EditIDNotInPlan Kind = "edit_id_not_in_plan"
	// IncludeIDInvalid is emitted when a requested -include id is absent from the catalog.
	IncludeIDInvalid Kind = "include_id_invalid"
)

// Entry is a single recorded warning.
type Entry struct {
	Kind    Kind
	Message string
}

// Sink accumulates warnings for the duration of one run. It is not safe for
// concurrent use; per the single-threaded attempt model, it doesn't need to be.
type Sink struct {
	entries []Entry
}

// New returns an empty Sink.
func New() *Sink {
	return &Sink{}
}

// Add records a warning.
func (s *Sink) Add(kind Kind, format string, args ...any) {
	s.entries = append(s.entries, Entry{Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// Entries returns all recorded warnings in emission order.
func (s *Sink) Entries() []Entry {
	return s.entries
}

// HasKind reports whether a warning of the given kind was recorded.
func (s *Sink) HasKind(kind Kind) bool {
	for _, e := range s.entries {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Len returns the number of recorded warnings.
func (s *Sink) Len() int {
	return len(s.entries)
}

// FlushTo writes every recorded warning to w, one per line, prefixed for
// visibility on stderr, and clears the sink.
func (s *Sink) FlushTo(w io.Writer) {
	for _, e := range s.entries {
		fmt.Fprintf(w, "warning: %s\n", e.Message)
	}
	s.entries = nil
}
