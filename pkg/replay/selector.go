package replay

import "time"

// TimeWindowSelector matches deliveries whose timestamp falls in [From, To].
// Either bound may be nil for an open-ended window.
type TimeWindowSelector struct {
	From *time.Time
	To   *time.Time
}

// Select reports the tri-valued timeframe match for d, per Within. List
// uses the tri-value directly; replay callers should treat TriNone as a
// non-match.
func (s TimeWindowSelector) Select(d Delivery) Tri {
	return Within(d.Timestamp, s.From, s.To)
}

// Matches collapses the tri-valued result to a boolean for replay: only
// an explicit match selects the delivery.
func (s TimeWindowSelector) Matches(d Delivery) bool {
	return s.Select(d) == TriTrue
}

// HeaderSelector matches deliveries carrying a header named Name whose
// string value equals Value. A delivery lacking the header, or carrying
// it as a non-string value, never matches.
type HeaderSelector struct {
	Name  string
	Value string
}

// Matches reports whether d carries the configured header/value pair.
func (s HeaderSelector) Matches(d Delivery) bool {
	raw, ok := d.Headers[s.Name]
	if !ok {
		return false
	}
	value, ok := raw.(string)
	if !ok {
		return false
	}
	return value == s.Value
}
