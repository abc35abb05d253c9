package agent

import (
	"runtime"
	"time"
)

// rateWindowSpan is the sliding window over which the request rate is
// computed, expressed as requests per minute.
const rateWindowSpan = time.Minute

// rateWindow tracks request timestamps inside a sliding window. Not safe for
// concurrent use; guarded by the runtime's state lock.
type rateWindow struct {
	stamps []time.Time
	now    func() time.Time
}

func newRateWindow() *rateWindow {
	return &rateWindow{now: time.Now}
}

func (w *rateWindow) record() {
	w.prune()
	w.stamps = append(w.stamps, w.now())
}

// perMinute returns the number of requests observed in the current window.
// It does not mutate the window so it is safe under a read lock.
func (w *rateWindow) perMinute() float64 {
	cutoff := w.now().Add(-rateWindowSpan)
	count := 0
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			count++
		}
	}
	return float64(count)
}

func (w *rateWindow) prune() {
	cutoff := w.now().Add(-rateWindowSpan)
	keep := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			keep = append(keep, ts)
		}
	}
	w.stamps = keep
}

// sampleMemoryMB reads the process heap usage. Per-agent attribution is not
// possible in-process, so every agent reports the shared heap figure, matching
// how the original surfaced a process-level number per agent.
func sampleMemoryMB() float64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return float64(stats.HeapAlloc) / (1024 * 1024)
}
