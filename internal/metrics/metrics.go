// Package metrics collects per-request stage timings and counters.
package metrics

import "time"

// Timings records wall-clock durations per pipeline stage, in
// milliseconds. Not safe for concurrent use; each request gets its own.
type Timings struct {
	stages map[string]float64
	now    func() time.Time
}

// NewTimings returns an empty timing set.
func NewTimings() *Timings {
	return &Timings{
		stages: make(map[string]float64),
		now:    time.Now,
	}
}

// NewTimingsWithClock returns a timing set driven by a custom clock.
func NewTimingsWithClock(now func() time.Time) *Timings {
	return &Timings{
		stages: make(map[string]float64),
		now:    now,
	}
}

// Track starts the named stage and returns a stop function that
// records the elapsed time when called.
func (t *Timings) Track(stage string) func() {
	start := t.now()
	return func() {
		t.stages[stage] = float64(t.now().Sub(start)) / float64(time.Millisecond)
	}
}

// Set records a stage duration directly.
func (t *Timings) Set(stage string, ms float64) {
	t.stages[stage] = ms
}

// Get returns the recorded duration for a stage.
func (t *Timings) Get(stage string) (float64, bool) {
	ms, ok := t.stages[stage]
	return ms, ok
}

// Map returns a copy of the recorded timings.
func (t *Timings) Map() map[string]float64 {
	out := make(map[string]float64, len(t.stages))
	for k, v := range t.stages {
		out[k] = v
	}
	return out
}

// Counters tracks per-request event counts. Not safe for concurrent
// use.
type Counters struct {
	counts map[string]int
}

// NewCounters returns an empty counter set.
func NewCounters() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Inc adds delta to the named counter.
func (c *Counters) Inc(name string, delta int) {
	c.counts[name] += delta
}

// Set records a counter value directly.
func (c *Counters) Set(name string, value int) {
	c.counts[name] = value
}

// Get returns the current value of a counter.
func (c *Counters) Get(name string) int {
	return c.counts[name]
}

// Map returns a copy of the recorded counters.
func (c *Counters) Map() map[string]int {
	out := make(map[string]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}
