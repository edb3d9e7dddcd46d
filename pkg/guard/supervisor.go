package guard

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Supervisor owns the recovery schedule for a set of guards: on a fixed
// interval it asks every registered guard to repair stuck state. It is
// deliberately separate from the guards themselves so recovery policy
// can be tested with a fake clock and so a ring without a supervisor
// still self-repairs on its next operation attempt.
type Supervisor struct {
	interval time.Duration
	clock    Clock
	log      *zap.Logger

	mu     sync.Mutex
	guards []*Guard

	stop chan struct{}
	done chan struct{}
}

// DefaultRepairInterval is how often the supervisor sweeps its guards.
const DefaultRepairInterval = time.Second

// NewSupervisor creates a stopped supervisor. A zero interval uses
// DefaultRepairInterval.
func NewSupervisor(interval time.Duration, clock Clock, log *zap.Logger) *Supervisor {
	if interval <= 0 {
		interval = DefaultRepairInterval
	}
	if clock == nil {
		clock = SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Supervisor{
		interval: interval,
		clock:    clock,
		log:      log,
	}
}

// Watch registers a guard for supervision. Safe to call while running.
func (s *Supervisor) Watch(g *Guard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guards = append(s.guards, g)
}

// Unwatch drops a guard from supervision, e.g. after its owner is
// disposed. Unknown guards are ignored.
func (s *Supervisor) Unwatch(g *Guard) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, w := range s.guards {
		if w == g {
			s.guards = append(s.guards[:i], s.guards[i+1:]...)
			return
		}
	}
}

// Start launches the sweep goroutine. Starting a running supervisor is
// a no-op.
func (s *Supervisor) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stop, s.done)
}

// Stop terminates the sweep goroutine and waits for it to exit.
// Stopping a stopped supervisor is a no-op.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	stop, done := s.stop, s.done
	s.stop, s.done = nil, nil
	s.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (s *Supervisor) run(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *Supervisor) sweep() {
	s.mu.Lock()
	guards := make([]*Guard, len(s.guards))
	copy(guards, s.guards)
	s.mu.Unlock()

	now := s.clock.Now()
	for _, g := range guards {
		if g.CheckAndAutoRepair(now) {
			s.log.Warn("supervisor: repaired stuck guard")
		}
	}
}
