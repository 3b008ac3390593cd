package sorting

import "time"

// Timing tracks per-card and whole-session durations in milliseconds.
type Timing struct {
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`
	CardTimesMs []int64   `json:"card_times_ms"`
	TotalTimeMs int64     `json:"total_time_ms"`

	lastMark time.Time
}

func StartTiming(now time.Time) Timing {
	return Timing{StartedAt: now, CardTimesMs: []int64{}, lastMark: now}
}

// Lap records the time since the previous resolution (or the start) and resets
// the per-card mark.
func (t Timing) Lap(now time.Time) Timing {
	elapsed := now.Sub(t.lastMark).Milliseconds()
	if elapsed < 0 {
		elapsed = 0
	}
	out := t.clone()
	out.CardTimesMs = append(out.CardTimesMs, elapsed)
	out.lastMark = now
	return out
}

// Finish stamps completion. Total time is wall clock since start and may exceed
// the sum of the laps.
func (t Timing) Finish(now time.Time) Timing {
	out := t.clone()
	out.CompletedAt = now
	out.TotalTimeMs = now.Sub(t.StartedAt).Milliseconds()
	if out.TotalTimeMs < 0 {
		out.TotalTimeMs = 0
	}
	return out
}

// AverageMs is the mean lap time, 0 when nothing was resolved.
func (t Timing) AverageMs() float64 {
	if len(t.CardTimesMs) == 0 {
		return 0
	}
	var sum int64
	for _, d := range t.CardTimesMs {
		sum += d
	}
	return float64(sum) / float64(len(t.CardTimesMs))
}

func (t Timing) clone() Timing {
	out := t
	out.CardTimesMs = append([]int64(nil), t.CardTimesMs...)
	return out
}
