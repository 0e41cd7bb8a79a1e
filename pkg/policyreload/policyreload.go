// Package policyreload periodically reconstructs an authz.Checker from a
// policy file and installs it behind a guarded slot, blocking concurrent
// readers only for the pointer swap.
package policyreload

import (
	"math/rand"
	"sync"
	"time"

	"github.com/cuemby/catalogd/pkg/authz"
	"github.com/cuemby/catalogd/pkg/log"
	"github.com/cuemby/catalogd/pkg/metrics"
	"github.com/rs/zerolog"
)

// DefaultInterval is the reload period absent configuration.
const DefaultInterval = 300 * time.Second

// JitterBound is the upper bound (exclusive) of the per-process uniform
// jitter added to every reload tick, so a fleet of catalog services
// doesn't all reread the same policy file at once.
const JitterBound = 60 * time.Second

// Reloader owns the installed authz.Checker and swaps it out on a
// jittered interval. Reads (Checker) take the shared half of the lock;
// a reload does its file I/O and parsing before ever acquiring the
// exclusive half, so readers are blocked only for the pointer swap.
type Reloader struct {
	mu     sync.RWMutex
	policyFile string
	checker *authz.Checker

	interval time.Duration
	logger   zerolog.Logger
	stopCh   chan struct{}
}

// New loads the policy file once synchronously, so a Reloader is never
// returned without a usable Checker installed.
func New(policyFile string, interval time.Duration) (*Reloader, error) {
	policy, err := authz.LoadPolicy(policyFile)
	if err != nil {
		return nil, err
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reloader{
		policyFile: policyFile,
		checker:    authz.NewChecker(policy),
		interval:   interval,
		logger:     log.WithComponent("policyreload"),
		stopCh:     make(chan struct{}),
	}, nil
}

// Start begins the reload loop with a random per-process jitter added to
// every tick.
func (r *Reloader) Start() {
	jitter := time.Duration(rand.Int63n(int64(JitterBound)))
	go r.run(jitter)
}

// Stop halts the reload loop. The last successfully installed Checker
// remains available from Checker().
func (r *Reloader) Stop() {
	close(r.stopCh)
}

func (r *Reloader) run(jitter time.Duration) {
	period := r.interval + jitter
	timer := time.NewTimer(period)
	defer timer.Stop()

	r.logger.Info().Dur("interval", r.interval).Dur("jitter", jitter).Msg("policy reloader started")

	for {
		select {
		case <-timer.C:
			r.reload()
			timer.Reset(period)
		case <-r.stopCh:
			r.logger.Info().Msg("policy reloader stopped")
			return
		}
	}
}

func (r *Reloader) reload() {
	metrics.PolicyReloadAttemptsTotal.Inc()

	policy, err := authz.LoadPolicy(r.policyFile)
	if err != nil {
		metrics.PolicyReloadFailuresTotal.Inc()
		r.logger.Error().Err(err).Msg("policy reload failed, previous checker remains installed")
		return
	}

	checker := authz.NewChecker(policy)
	r.mu.Lock()
	r.checker = checker
	r.mu.Unlock()

	r.logger.Info().Msg("policy reloaded")
}

// Checker returns the currently installed checker.
func (r *Reloader) Checker() *authz.Checker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.checker
}
