package clock

// timing is either paused or running. Each variant carries only the value
// that is authoritative for it.
type timing interface {
	remaining(nowMs int64) int64
	isRunning() bool
}

type paused struct {
	remainingMs int64
}

func (p paused) remaining(int64) int64 { return p.remainingMs }
func (p paused) isRunning() bool       { return false }

type running struct {
	finishAtMs int64
}

func (r running) remaining(nowMs int64) int64 { return max(0, r.finishAtMs-nowMs) }
func (r running) isRunning() bool             { return true }

// withRemaining keeps the variant and sets remaining time to ms from now.
func withRemaining(t timing, nowMs, ms int64) timing {
	ms = max(0, ms)
	if t.isRunning() {
		return running{finishAtMs: nowMs + ms}
	}
	return paused{remainingMs: ms}
}
