package park

import "sync"

// Sleepers tracks every worker's Parker by index so a producer that just
// pushed an LP can wake exactly one parked worker instead of broadcasting
// to all of them.
type Sleepers struct {
	mu      sync.Mutex
	parkers []*Parker
	next    int // round-robin cursor for NotifyOne fairness
}

// NewSleepers builds a Sleepers set sized for n workers.
func NewSleepers(n int) *Sleepers {
	parkers := make([]*Parker, n)
	for i := range parkers {
		parkers[i] = NewParker()
	}
	return &Sleepers{parkers: parkers}
}

// Parker returns the Parker owned by worker index i.
func (s *Sleepers) Parker(i int) *Parker {
	return s.parkers[i]
}

// Len returns the number of workers tracked.
func (s *Sleepers) Len() int {
	return len(s.parkers)
}

// NotifyOne wakes one currently-parked worker, starting its search from a
// rotating cursor so repeated pushes fan out across idle workers instead
// of always waking the same one. It reports whether any worker was
// found parked.
func (s *Sleepers) NotifyOne() bool {
	s.mu.Lock()
	n := len(s.parkers)
	start := s.next
	s.next = (s.next + 1) % max(n, 1)
	s.mu.Unlock()

	for i := 0; i < n; i++ {
		idx := (start + i) % n
		p := s.parkers[idx]
		if p.IsParked() {
			p.Unpark()
			return true
		}
	}
	return false
}

// NotifyAll wakes every worker, used on shutdown so no parked worker is
// left waiting for a run queue push that will never come.
func (s *Sleepers) NotifyAll() {
	for _, p := range s.parkers {
		p.Unpark()
	}
}

// ParkedCount returns how many workers are currently parked, a cheap
// best-effort statistic.
func (s *Sleepers) ParkedCount() int {
	count := 0
	for _, p := range s.parkers {
		if p.IsParked() {
			count++
		}
	}
	return count
}
