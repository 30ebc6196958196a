package replay

import "time"

// Tri is the tri-valued result of a timeframe comparison: the filter
// matched, the filter rejected, or there was nothing to compare (no
// caller-supplied window and no message timestamp). Listing needs all
// three; replay collapses TriNone to "reject" at the call site.
type Tri int

const (
	TriNone Tri = iota
	TriFalse
	TriTrue
)

// Within decides whether dateMillis lies in the half-open/closed window
// described by from and to, per the table in the design:
//
//	date present, from & to present -> from <= date <= to
//	date present, only from         -> date >= from
//	date present, only to           -> date <= to
//	date present, neither           -> always true
//	date absent,  neither           -> TriNone (nothing to compare)
//	date absent,  any window given  -> TriFalse (can't satisfy a window with no timestamp)
func Within(dateMillis *int64, from, to *time.Time) Tri {
	if dateMillis == nil {
		if from == nil && to == nil {
			return TriNone
		}
		return TriFalse
	}

	date := time.UnixMilli(*dateMillis).UTC()
	switch {
	case from != nil && to != nil:
		return boolTri(!date.Before(*from) && !date.After(*to))
	case from != nil:
		return boolTri(!date.Before(*from))
	case to != nil:
		return boolTri(!date.After(*to))
	default:
		return TriTrue
	}
}

func boolTri(b bool) Tri {
	if b {
		return TriTrue
	}
	return TriFalse
}
