package audio

import (
	"sync"
	"time"
)

// Scheduler assigns gapless playback start times to assistant audio chunks.
// Chunks arrive faster than they play; each one starts where the previous
// ends, or immediately when the queue has drained.
type Scheduler struct {
	sampleRate int
	now        func() time.Time

	mu      sync.Mutex
	nextEnd time.Time
}

// SchedulerOpts holds parameters for creating a Scheduler.
type SchedulerOpts struct {
	SampleRate int              // defaults to DefaultSampleRate
	Now        func() time.Time // defaults to time.Now, overridable in tests
}

// NewScheduler creates a Scheduler.
func NewScheduler(opts SchedulerOpts) *Scheduler {
	rate := opts.SampleRate
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Scheduler{sampleRate: rate, now: now}
}

// Schedule reserves a playback slot for a chunk of the given sample count
// and returns its start time. Starts never overlap and never sit in the
// past.
func (s *Scheduler) Schedule(sampleCount int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	if s.nextEnd.After(start) {
		start = s.nextEnd
	}
	dur := time.Duration(sampleCount) * time.Second / time.Duration(s.sampleRate)
	s.nextEnd = start.Add(dur)
	return start
}

// Buffered reports how much scheduled audio has not yet played out.
func (s *Scheduler) Buffered() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := s.nextEnd.Sub(s.now())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Flush drops everything scheduled, so the next chunk starts immediately.
// Called when the operator interrupts the assistant mid-sentence.
func (s *Scheduler) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextEnd = time.Time{}
}
