package threadlet

import "time"

// monotonicStart anchors NowMs so returned values are small and stable for
// the life of the process rather than a raw (and, on some platforms,
// less precise) epoch timestamp.
var monotonicStart = time.Now()

// NowMs returns the current time on the runtime's monotonic millisecond
// clock (§6: "time: now_ms() monotonic"). It never goes backwards within a
// process and is independent of wall-clock adjustments, matching Go's
// runtime monotonic reading baked into time.Now() / time.Since.
func NowMs() int64 {
	return time.Since(monotonicStart).Milliseconds()
}
