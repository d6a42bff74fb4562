// Package schedule implements the fixed 12-stage Ebbinghaus review curve.
//
// A card's lifetime schedule is derived exactly once, from its creation
// time; everything else in this package is a pure function over that
// schedule and the list of completed review timestamps.
package schedule

import "time"

// StageCount is the number of review stages on the curve.
const StageCount = 12

// intervalsMinutes are the offsets of each stage from the creation time:
// 30m, 1h, 12h, 1d, 2d, 4d, 7d, 15d, 30d, 3m, 6m, 1y.
var intervalsMinutes = [StageCount]int{
	30,
	60,
	720,
	1440,
	2880,
	5760,
	10080,
	21600,
	43200,
	129600,
	259200,
	525600,
}

// Generate returns the 12 absolute due times for a card created at start.
func Generate(start time.Time) []time.Time {
	out := make([]time.Time, StageCount)
	for i, m := range intervalsMinutes {
		out[i] = start.Add(time.Duration(m) * time.Minute)
	}
	return out
}

// NextDue returns the due time of the first pending stage. The number of
// completed reviews determines the stage position: 0 completions means
// stage 0 is next, and so on. A fully reviewed card stays parked on the
// final stage.
func NextDue(sched, completed []time.Time) time.Time {
	if len(sched) == 0 {
		return time.Time{}
	}
	if len(completed) >= len(sched) {
		return sched[len(sched)-1]
	}
	return sched[len(completed)]
}

// Status classifies a single stage of a card's schedule.
type Status int

const (
	StatusPending Status = iota
	StatusCompleted
	StatusOverdue
)

// String returns the status name used in API payloads and exports.
func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusOverdue:
		return "overdue"
	default:
		return "pending"
	}
}

// Classify reports the status of the stage at index: completed when a
// completion covers it, overdue when its scheduled time has passed
// uncompleted, pending otherwise.
func Classify(sched, completed []time.Time, index int, now time.Time) Status {
	if index < len(completed) {
		return StatusCompleted
	}
	if index < len(sched) && sched[index].Before(now) {
		return StatusOverdue
	}
	return StatusPending
}

var stageLabels = [StageCount]string{
	"Short-term consolidation (30m)",
	"Short-term consolidation (1h)",
	"Short-term consolidation (12h)",
	"Mid-term formation (1d)",
	"Mid-term formation (2d)",
	"Mid-term enhancement (4d)",
	"Long-term formation (7d)",
	"Long-term enhancement (15d)",
	"Long-term consolidation (30d)",
	"Long-term deepening (3m)",
	"Long-term solidification (6m)",
	"Long-term permanence (1y)",
}

// StageLabel returns the human-readable name of a stage. Indexes outside
// [0, StageCount) yield a sentinel.
func StageLabel(index int) string {
	if index < 0 || index >= StageCount {
		return "Unknown stage"
	}
	return stageLabels[index]
}
