package catalog

// RawActivity is the shared wire shape for both active-rest and CrossFit-path
// entries — both are {name, video_link?, video_kind?, skip?} records, the only
// difference being which reserved file they come from and whether order
// matters for the latter.
type RawActivity struct {
	Name      string
	Link      string
	VideoType string
	Skip      bool
}

// BuildActiveRestPool drops skipped entries and assigns each survivor its
// implicit position as id, preserving source order (the pool is shuffled by
// the caller, not here, since shuffling needs a seeded RNG).
func BuildActiveRestPool(raw []RawActivity) []ActiveRestActivity {
	out := make([]ActiveRestActivity, 0, len(raw))
	id := 0
	for _, r := range raw {
		if r.Skip {
			continue
		}
		out = append(out, ActiveRestActivity{
			ID:        id,
			Name:      r.Name,
			VideoLink: r.Link,
			VideoKind: normalizeVideoKind(r.VideoType, r.Link),
		})
		id++
	}
	return out
}

// BuildCrossFitPathPool drops skipped entries, assigns implicit ids, and
// preserves source order — order is significant for the CrossFit-path
// override (spec §4.3).
func BuildCrossFitPathPool(raw []RawActivity) []CrossFitPathActivity {
	out := make([]CrossFitPathActivity, 0, len(raw))
	id := 0
	for _, r := range raw {
		if r.Skip {
			continue
		}
		out = append(out, CrossFitPathActivity{
			ID:        id,
			Name:      r.Name,
			VideoLink: r.Link,
			VideoKind: normalizeVideoKind(r.VideoType, r.Link),
		})
		id++
	}
	return out
}

// Prefix returns the first n non-skipped entries of an ordered CrossFit-path
// pool, preserving order. If n exceeds the pool size the whole pool is
// returned.
func Prefix(pool []CrossFitPathActivity, n int) []CrossFitPathActivity {
	if n >= len(pool) {
		return pool
	}
	if n <= 0 {
		return nil
	}
	return pool[:n]
}
