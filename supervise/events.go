package supervise

import "time"

// State is the lifecycle of a supervised run.
type State string

const (
	StateIdle       State = "idle"
	StateStarting   State = "starting"
	StateRunning    State = "running"
	StateStopping   State = "stopping"
	StateTerminated State = "terminated"
	StateFailed     State = "failed"
)

// LaunchFailureCode is the reserved sentinel exit code reported when a
// process never started, distinct from any exit code an actual child
// reports (signal-terminated children surface as -int(signal)).
const LaunchFailureCode = -1

// Line is one completed output line from the child's merged
// stdout/stderr stream. Seq increases monotonically per run in arrival
// order; a trailing partial line at stream end is still delivered.
type Line struct {
	Seq  uint64
	Text string
	Time time.Time
}

// Exit is the single terminal completion event of a run. Code carries
// the child's real exit code, or LaunchFailureCode when the process
// never started (Err then holds the spawn failure).
type Exit struct {
	Code int
	Err  error
}
