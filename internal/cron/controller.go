package cron

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Status tokens returned by the control operations.
const (
	StatusStarted        = "started"
	StatusAlreadyRunning = "already_running"
	StatusPaused         = "paused"
	StatusResumed        = "resumed"
	StatusStopped        = "stopped"
	StatusNotRunning     = "not_running"
)

// Runner is the work a firing executes.
type Runner interface {
	Run(ctx context.Context) error
}

// JobStatus reports the controller state: whether the underlying timer
// loop is alive, whether the job is registered, and, only when registered,
// whether it is paused.
type JobStatus struct {
	SchedulerRunning bool  `json:"scheduler_running"`
	JobExists        bool  `json:"job_exists"`
	JobPaused        *bool `json:"job_paused"`
}

// Controller owns the single named recurring job. The timer loop runs in
// one goroutine, so firings are strictly serialized (single-flight); the
// control operations only flip registration state under the mutex and
// never wait on an in-flight run. Stopping deregisters future firings but
// leaves the loop goroutine alive, mirroring a scheduler whose timer
// outlives its jobs.
type Controller struct {
	log *zap.Logger
	cfg Config
	job Runner

	mu          sync.Mutex
	registered  bool
	paused      bool
	loopRunning bool
	cancel      context.CancelFunc
}

func New(log *zap.Logger, cfg Config, job Runner) *Controller {
	return &Controller{
		log: log.Named("cron").With(zap.String("job", JobName)),
		cfg: cfg.withDefaults(),
		job: job,
	}
}

// Start registers the job and boots the timer loop if needed.
func (c *Controller) Start() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.registered {
		return StatusAlreadyRunning
	}

	c.registered = true
	c.paused = false
	c.startLoopLocked()
	c.log.Info("snapshot job started", zap.Duration("interval", c.cfg.Interval))
	return StatusStarted
}

// Pause keeps the job registered but suppresses future firings. Pausing
// an already-paused job re-applies the pause without error.
func (c *Controller) Pause() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registered {
		return StatusNotRunning
	}

	c.paused = true
	return StatusPaused
}

// Resume re-enables firings for a paused job.
func (c *Controller) Resume() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registered {
		return StatusNotRunning
	}
	if !c.paused {
		return StatusAlreadyRunning
	}

	c.paused = false
	return StatusResumed
}

// Stop deregisters the job. An in-flight firing is never interrupted; it
// completes and finalizes its own execution row normally.
func (c *Controller) Stop() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.registered {
		return StatusNotRunning
	}

	c.registered = false
	c.paused = false
	c.log.Info("snapshot job stopped")
	return StatusStopped
}

// Status never mutates state and is safe to call at any instant,
// including mid-firing.
func (c *Controller) Status() JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := JobStatus{
		SchedulerRunning: c.loopRunning,
		JobExists:        c.registered,
	}
	if c.registered {
		paused := c.paused
		status.JobPaused = &paused
	}
	return status
}

// Close shuts the timer loop down for process exit.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.loopRunning = false
	c.registered = false
	c.paused = false
}

func (c *Controller) startLoopLocked() {
	if c.loopRunning {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.loopRunning = true

	go c.loop(ctx)
}

func (c *Controller) loop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if !c.shouldFire() {
			continue
		}

		// Run synchronously: the next tick cannot start a firing until
		// this one has returned.
		if err := c.job.Run(ctx); err != nil {
			c.log.Warn("snapshot run failed", zap.Error(err))
		}
	}
}

func (c *Controller) shouldFire() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.registered && !c.paused
}
