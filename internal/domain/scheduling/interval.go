package scheduling

import "time"

// Interval is a half-open time range [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

func (i Interval) Overlaps(o Interval) bool {
	return i.Start.Before(o.End) && o.Start.Before(i.End)
}

// WithTrailingBuffer extends the interval end by d.
func (i Interval) WithTrailingBuffer(d time.Duration) Interval {
	return Interval{Start: i.Start, End: i.End.Add(d)}
}

// CountOverlapping counts how many of busy overlap candidate when every
// interval, the candidate included, is followed by buffer of idle time.
func CountOverlapping(candidate Interval, busy []Interval, buffer time.Duration) int {
	c := candidate.WithTrailingBuffer(buffer)

	n := 0
	for _, b := range busy {
		if c.Overlaps(b.WithTrailingBuffer(buffer)) {
			n++
		}
	}
	return n
}
