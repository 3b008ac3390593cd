package sorting

// Phase is the lifecycle stage of a sorting session.
type Phase string

const (
	PhaseSetup     Phase = "setup"
	PhasePlaying   Phase = "playing"
	PhaseCompleted Phase = "completed"
)

const (
	// PassThreshold is the minimum accuracy (inclusive) for a non-zero score.
	PassThreshold = 90.0

	// scoreScale turns accuracy per second into points: accuracy * 1000 / seconds.
	scoreScale = 1_000_000.0
)
