package engine

import (
	"sort"
	"sync"
	"time"
)

// Scheduler defers continuations so phase advancement is a cooperative
// scheduling boundary instead of a blocking wait. Stop cancels every
// pending continuation; a stopped scheduler never fires again.
type Scheduler interface {
	Schedule(delay time.Duration, fn func())
	Stop()
}

// RealScheduler runs continuations on OS timers.
type RealScheduler struct {
	mu      sync.Mutex
	stopped bool
	timers  map[int]*time.Timer
	seq     int
}

// NewRealScheduler returns a scheduler backed by time.AfterFunc.
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{timers: make(map[int]*time.Timer)}
}

func (s *RealScheduler) Schedule(delay time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.seq++
	id := s.seq
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		stopped := s.stopped
		delete(s.timers, id)
		s.mu.Unlock()
		if !stopped {
			fn()
		}
	})
}

func (s *RealScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

type virtualEntry struct {
	at  time.Duration
	seq int
	fn  func()
}

// VirtualScheduler queues continuations against a virtual clock that
// only moves when Advance is called. Continuations due at the same
// instant fire in scheduling order. It is not safe for concurrent use;
// it exists for single-threaded simulation and tests.
type VirtualScheduler struct {
	now     time.Duration
	seq     int
	stopped bool
	queue   []virtualEntry
}

// NewVirtualScheduler returns a scheduler at virtual time zero.
func NewVirtualScheduler() *VirtualScheduler {
	return &VirtualScheduler{}
}

func (s *VirtualScheduler) Schedule(delay time.Duration, fn func()) {
	if s.stopped {
		return
	}
	s.seq++
	s.queue = append(s.queue, virtualEntry{at: s.now + delay, seq: s.seq, fn: fn})
}

func (s *VirtualScheduler) Stop() {
	s.stopped = true
	s.queue = nil
}

// Advance moves the virtual clock forward, firing every continuation
// that falls due, including ones scheduled by fired continuations.
func (s *VirtualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		e, ok := s.popDueBefore(target)
		if !ok {
			break
		}
		s.now = e.at
		e.fn()
	}
	s.now = target
}

// RunAll drains the queue regardless of delays, letting tests
// fast-forward to quiescence.
func (s *VirtualScheduler) RunAll() {
	for len(s.queue) > 0 && !s.stopped {
		sort.SliceStable(s.queue, func(i, j int) bool {
			if s.queue[i].at != s.queue[j].at {
				return s.queue[i].at < s.queue[j].at
			}
			return s.queue[i].seq < s.queue[j].seq
		})
		e := s.queue[0]
		s.queue = s.queue[1:]
		if e.at > s.now {
			s.now = e.at
		}
		e.fn()
	}
}

// Pending reports how many continuations are queued.
func (s *VirtualScheduler) Pending() int { return len(s.queue) }

func (s *VirtualScheduler) popDueBefore(target time.Duration) (virtualEntry, bool) {
	best := -1
	for i, e := range s.queue {
		if e.at > target {
			continue
		}
		if best < 0 || e.at < s.queue[best].at ||
			(e.at == s.queue[best].at && e.seq < s.queue[best].seq) {
			best = i
		}
	}
	if best < 0 || s.stopped {
		return virtualEntry{}, false
	}
	e := s.queue[best]
	s.queue = append(s.queue[:best], s.queue[best+1:]...)
	return e, true
}
