package lingocache

import "go.uber.org/atomic"

// statsReporter aggregates lookup outcomes. Hits and misses are counted
// at the first tier that resolves a request, never twice per request.
type statsReporter struct {
	hits   atomic.Int64
	misses atomic.Int64
}

func (r *statsReporter) recordHit()  { r.hits.Inc() }
func (r *statsReporter) recordMiss() { r.misses.Inc() }

// hitRate returns the rolling hit ratio; zero before any lookup.
func (r *statsReporter) hitRate() float64 {
	hits := r.hits.Load()
	total := hits + r.misses.Load()
	if total == 0 {
		return 0
	}
	return float64(hits) / float64(total)
}
