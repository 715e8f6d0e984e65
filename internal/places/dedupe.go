package places

import "github.com/routenest/routenest/pkg/geo"

// DefaultCellDecimals quantizes coordinates to 4 decimal degrees
// (roughly 10m cells) for spatial deduplication.
const DefaultCellDecimals = 4

// DedupeByID removes exact duplicates keyed on the provider place ID.
// First occurrence wins and order is preserved. Places without an ID
// pass through untouched.
func DedupeByID(in []RawPlace) []RawPlace {
	seen := make(map[string]struct{}, len(in))
	out := make([]RawPlace, 0, len(in))
	for i := range in {
		if in[i].PlaceID == "" {
			out = append(out, in[i])
			continue
		}
		key := in[i].Provider + ":" + in[i].PlaceID
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, in[i])
	}
	return out
}

// DedupeSpatial removes near-duplicate places falling into the same
// quantized coordinate cell. The cell only merges places that cannot be
// told apart by identifier: a place without an ID, or two places from
// different providers. Distinct IDs from the same provider are distinct
// buildings no matter how close they sit. First occurrence wins and
// order is preserved. cellDecimals <= 0 uses DefaultCellDecimals.
func DedupeSpatial(in []RawPlace, cellDecimals int) []RawPlace {
	if cellDecimals <= 0 {
		cellDecimals = DefaultCellDecimals
	}
	cells := make(map[string][]int, len(in))
	out := make([]RawPlace, 0, len(in))
	for i := range in {
		key := geo.CellKey(in[i].Point, cellDecimals)
		duplicate := false
		for _, kept := range cells[key] {
			if spatialDuplicate(out[kept], in[i]) {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		cells[key] = append(cells[key], len(out))
		out = append(out, in[i])
	}
	return out
}

// spatialDuplicate reports whether two places sharing a cell describe
// the same building.
func spatialDuplicate(kept, candidate RawPlace) bool {
	if kept.PlaceID == "" || candidate.PlaceID == "" {
		return true
	}
	return kept.Provider != candidate.Provider
}

// Dedupe runs both dedupe stages: exact place-ID elimination first,
// then spatial cell elimination for cross-provider and ID-less
// duplicates. Stable and idempotent.
func Dedupe(in []RawPlace, cellDecimals int) []RawPlace {
	return DedupeSpatial(DedupeByID(in), cellDecimals)
}
