package recurrence

import (
	"cmp"
	"slices"
	"time"

	"github.com/pokrok-app/pokrok/internal/constants"
	"github.com/pokrok-app/pokrok/internal/models"
)

// FocusOrder maps goal IDs to their focus position; lower sorts first.
type FocusOrder map[string]int

// position returns the goal's focus position, sorting unknown goals last.
func (f FocusOrder) position(goalID string) (int, bool) {
	if goalID == "" || f == nil {
		return 0, false
	}
	pos, ok := f[goalID]
	return pos, ok
}

// PriorityScore is 2 for important plus 1 for urgent, range 0-3.
func PriorityScore(s models.Step) int {
	score := 0
	if s.IsImportant {
		score += constants.ImportantWeight
	}
	if s.IsUrgent {
		score += constants.UrgentWeight
	}
	return score
}

// CompareSteps orders steps by higher priority score, then earlier date
// (undated last), then goal focus order (unfocused last). It returns 0 when
// none of these differ so stable sorts keep the original order.
func CompareSteps(a, b models.Step, focus FocusOrder) int {
	if c := cmp.Compare(PriorityScore(b), PriorityScore(a)); c != 0 {
		return c
	}

	// YYYY-MM-DD keys sort lexically
	switch {
	case a.Date == "" && b.Date != "":
		return 1
	case a.Date != "" && b.Date == "":
		return -1
	case a.Date != b.Date:
		return cmp.Compare(a.Date, b.Date)
	}

	pa, oka := focus.position(a.GoalID)
	pb, okb := focus.position(b.GoalID)
	switch {
	case oka && !okb:
		return -1
	case !oka && okb:
		return 1
	case oka && okb:
		return cmp.Compare(pa, pb)
	}
	return 0
}

// SortSteps stably sorts steps in place with CompareSteps.
func SortSteps(steps []models.Step, focus FocusOrder) {
	slices.SortStableFunc(steps, func(a, b models.Step) int {
		return CompareSteps(a, b, focus)
	})
}

// DueBucket places a step relative to today for agenda ordering.
type DueBucket int

const (
	BucketOverdue DueBucket = iota
	BucketToday
	BucketUpcoming
	BucketUndated
)

// String returns the bucket label.
func (b DueBucket) String() string {
	switch b {
	case BucketOverdue:
		return "overdue"
	case BucketToday:
		return "today"
	case BucketUpcoming:
		return "upcoming"
	default:
		return "undated"
	}
}

// DueBucket classifies a step against today. Repeating steps are never
// overdue: they are bucketed by their next open occurrence.
func (e *Engine) DueBucket(s models.Step, today time.Time) DueBucket {
	day := e.Day(today)

	var due time.Time
	if s.Repeating() {
		next, ok := e.NextStepOccurrence(s, day)
		if !ok {
			return BucketUndated
		}
		due = next
	} else {
		d, ok := e.ParseDay(s.Date)
		if !ok {
			return BucketUndated
		}
		due = d
	}

	switch {
	case due.Before(day):
		return BucketOverdue
	case due.Equal(day):
		return BucketToday
	default:
		return BucketUpcoming
	}
}

// SortForAgenda orders steps overdue, today, upcoming, undated, breaking
// ties within a bucket with CompareSteps.
func (e *Engine) SortForAgenda(steps []models.Step, today time.Time, focus FocusOrder) {
	type entry struct {
		step   models.Step
		bucket DueBucket
	}
	entries := make([]entry, len(steps))
	for i, s := range steps {
		entries[i] = entry{step: s, bucket: e.DueBucket(s, today)}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		if c := cmp.Compare(a.bucket, b.bucket); c != 0 {
			return c
		}
		return CompareSteps(a.step, b.step, focus)
	})
	for i := range entries {
		steps[i] = entries[i].step
	}
}
