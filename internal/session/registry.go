package session

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout       = 30 * time.Minute
	DefaultSweepInterval = 5 * time.Minute

	shardCount = 32
)

type Config struct {
	Timeout       time.Duration
	SweepInterval time.Duration
	Now           func() time.Time
	Logger        logrus.FieldLogger
}

type shard struct {
	mu       sync.RWMutex
	sessions map[string]time.Time
}

// Registry tracks the last activity of every logged-in username. A session
// expires once it has been idle for longer than the timeout; expired entries
// are rejected on lookup and removed by the background sweep.
type Registry struct {
	shards        [shardCount]*shard
	timeout       time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		timeout:       cfg.Timeout,
		sweepInterval: cfg.SweepInterval,
		now:           cfg.Now,
		logger:        cfg.Logger,
	}
	if r.timeout <= 0 {
		r.timeout = DefaultTimeout
	}
	if r.sweepInterval <= 0 {
		r.sweepInterval = DefaultSweepInterval
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.logger == nil {
		r.logger = logrus.StandardLogger()
	}
	for i := range r.shards {
		r.shards[i] = &shard{sessions: make(map[string]time.Time)}
	}
	return r
}

// CreateSession starts or restarts the session for username.
func (r *Registry) CreateSession(username string) {
	s := r.shardFor(username)
	s.mu.Lock()
	s.sessions[username] = r.now()
	s.mu.Unlock()
}

// Touch refreshes the activity time of a live session. Absent or expired
// sessions are left alone.
func (r *Registry) Touch(username string) {
	s := r.shardFor(username)
	s.mu.Lock()
	defer s.mu.Unlock()

	last, ok := s.sessions[username]
	if !ok {
		return
	}
	now := r.now()
	if r.expired(last, now) {
		return
	}
	s.sessions[username] = now
}

func (r *Registry) IsValid(username string) bool {
	s := r.shardFor(username)
	s.mu.RLock()
	last, ok := s.sessions[username]
	s.mu.RUnlock()
	return ok && !r.expired(last, r.now())
}

func (r *Registry) Remove(username string) {
	s := r.shardFor(username)
	s.mu.Lock()
	delete(s.sessions, username)
	s.mu.Unlock()
}

// ActiveCount counts stored sessions, including expired ones not yet swept.
func (r *Registry) ActiveCount() int {
	total := 0
	for _, s := range r.shards {
		s.mu.RLock()
		total += len(s.sessions)
		s.mu.RUnlock()
	}
	return total
}

// Sweep drops every expired session and returns how many were removed.
func (r *Registry) Sweep() int {
	now := r.now()
	removed := 0
	for _, s := range r.shards {
		s.mu.Lock()
		for username, last := range s.sessions {
			if r.expired(last, now) {
				delete(s.sessions, username)
				removed++
			}
		}
		s.mu.Unlock()
	}
	return removed
}

// Start launches the periodic sweep. It runs until ctx is done or Stop is
// called; calling Start on a running registry does nothing.
func (r *Registry) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := r.Sweep(); removed > 0 {
					r.logger.WithFields(logrus.Fields{
						"removed": removed,
						"active":  r.ActiveCount(),
					}).Info("expired sessions swept")
				}
			}
		}
	}()
}

// Stop halts the sweep and waits for it to exit.
func (r *Registry) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (r *Registry) expired(last, now time.Time) bool {
	return now.Sub(last) > r.timeout
}

func (r *Registry) shardFor(username string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(username))
	return r.shards[h.Sum32()%shardCount]
}
