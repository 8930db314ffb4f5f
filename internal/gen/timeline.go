package gen

import (
	"slices"
	"time"
)

// defaultMinGap separates events whose drawn timestamps collapsed during
// clamping.
const defaultMinGap = time.Minute

// Step is one named event in an order timeline with the minimum gap it must
// keep from its predecessor.
type Step struct {
	Name   string
	At     time.Time
	MinGap time.Duration
}

// Timeline is an ordered sequence of lifecycle steps.
type Timeline []Step

// ClampRepair returns a copy of the timeline where no timestamp exceeds
// limit and timestamps are strictly increasing.
//
// Clamping alone can collapse distinct events onto the limit, so a second
// forward pass bumps every non-increasing step to its predecessor plus the
// minimum gap (the bump itself clamped). A suffix that still sits flat on the
// limit after that is spread backwards from the limit in minimum-gap
// decrements, so ordering stays strict without any timestamp crossing the
// limit. The first step is only ever moved when the span between it and the
// limit cannot hold the summed minimum gaps, which the orders-window safety
// buffer rules out for generated input.
func (tl Timeline) ClampRepair(limit time.Time) Timeline {
	out := slices.Clone(tl)

	for i := range out {
		if out[i].At.After(limit) {
			out[i].At = limit
		}
	}

	for i := 1; i < len(out); i++ {
		if out[i].At.After(out[i-1].At) {
			continue
		}
		bumped := out[i-1].At.Add(gapOf(out[i]))
		if bumped.After(limit) {
			bumped = limit
		}
		out[i].At = bumped
	}

	for i := len(out) - 2; i >= 0; i-- {
		if out[i].At.Before(out[i+1].At) {
			continue
		}
		out[i].At = out[i+1].At.Add(-gapOf(out[i+1]))
	}

	return out
}

// At returns the timestamp of the named step; the zero time when absent.
func (tl Timeline) At(name string) time.Time {
	for _, s := range tl {
		if s.Name == name {
			return s.At
		}
	}
	return time.Time{}
}

func gapOf(s Step) time.Duration {
	if s.MinGap > 0 {
		return s.MinGap
	}
	return defaultMinGap
}
