// Package schedule runs the daily fetch job on a cron spec.
package schedule

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Runner wraps a cron scheduler holding the single fetch job.
type Runner struct {
	cron *cron.Cron
}

// New validates the spec and creates a runner that invokes fn on it.
func New(spec string, fn func()) (*Runner, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, fn); err != nil {
		return nil, fmt.Errorf("adding schedule %q: %w", spec, err)
	}
	return &Runner{cron: c}, nil
}

// Start begins the scheduler in its own goroutine.
func (r *Runner) Start() {
	r.cron.Start()
}

// Stop halts the scheduler and waits for a running job to finish.
func (r *Runner) Stop() {
	<-r.cron.Stop().Done()
}
