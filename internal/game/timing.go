package game

import (
	"time"

	"github.com/chadspratt/do-again-list/internal/models"
)

// GapContext carries the timestamps around the gap being judged.
type GapContext struct {
	PreviousEnd *time.Time // end of the previous occurrence, nil for a new habit
	Deadline    *time.Time // next_time the user set before this occurrence
	At          time.Time  // when the occurrence ended
}

// Verdict is the compliance result for one measurement.
type Verdict struct {
	MinOK           bool          `json:"min_ok"`
	MaxOK           bool          `json:"max_ok"`
	Gap             time.Duration `json:"gap"`
	FirstOccurrence bool          `json:"first_occurrence"`
	DeadlineApplied bool          `json:"deadline_applied"`
}

// Compliant reports whether both sides passed.
func (v Verdict) Compliant() bool { return v.MinOK && v.MaxOK }

func check(b models.Bounds, measured time.Duration) (minOK, maxOK bool) {
	minOK = !b.HasMin() || measured >= *b.Min
	maxOK = !b.HasMax() || measured <= *b.Max
	return minOK, maxOK
}

// ClassifyGap judges the time from the previous occurrence's end to this
// one's end. A habit with no history, or a zero gap, always passes. When the
// user scheduled a deadline, only the deadline matters: the occurrence is on
// time if it ended no later than the deadline.
func ClassifyGap(b models.Bounds, ctx GapContext) Verdict {
	if ctx.PreviousEnd == nil {
		return Verdict{MinOK: true, MaxOK: true, FirstOccurrence: true}
	}

	gap := ctx.At.Sub(*ctx.PreviousEnd)
	if gap == 0 {
		return Verdict{MinOK: true, MaxOK: true, FirstOccurrence: true}
	}

	v := Verdict{Gap: gap}
	v.MinOK, v.MaxOK = check(b, gap)

	if ctx.Deadline != nil {
		v.MinOK = true
		v.MaxOK = !ctx.At.After(*ctx.Deadline)
		v.DeadlineApplied = true
	}
	return v
}

// ClassifyDuration judges how long an occurrence lasted. An occurrence
// without both timestamps passes.
func ClassifyDuration(b models.Bounds, occ models.Occurrence) Verdict {
	d, ok := occ.Duration()
	if !ok {
		return Verdict{MinOK: true, MaxOK: true}
	}
	v := Verdict{Gap: d}
	v.MinOK, v.MaxOK = check(b, d)
	return v
}
