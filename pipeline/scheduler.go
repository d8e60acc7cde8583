package pipeline

import (
	"context"
	"fmt"

	"github.com/pevans/newsfetch/logger"
	"github.com/robfig/cron/v3"
)

// Scheduler runs a DAG on a cron schedule. A tick that arrives while the
// previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	dag     DAG
	log     logger.Logger
	entryID cron.EntryID
	ctx     context.Context
}

// NewScheduler parses spec (standard 5-field cron or a descriptor such as
// "@daily") and prepares a scheduler for dag.
func NewScheduler(spec string, runner *Runner, dag DAG, log logger.Logger) (*Scheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(
		cron.WithParser(parser),
		cron.WithChain(cron.Recover(cron.DefaultLogger), cron.SkipIfStillRunning(cron.DefaultLogger)),
	)

	s := &Scheduler{
		cron:   c,
		runner: runner,
		dag:    dag,
		log:    log,
		ctx:    context.Background(),
	}

	id, err := c.AddFunc(spec, s.runOnce)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entryID = id

	return s, nil
}

// Start begins firing the schedule in the background. Runs use ctx, so
// cancelling it aborts an in-flight run as well as stopping new ones from
// doing work.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.cron.Start()
	s.log.Info("Scheduler started", logger.String("dag", s.dag.Name), logger.String("next", s.Next()))
}

// Stop halts the schedule and returns a context that is done once any
// in-flight run has finished.
func (s *Scheduler) Stop() context.Context {
	s.log.Info("Scheduler stopping")
	return s.cron.Stop()
}

// Next returns the next scheduled run time, or "" before Start.
func (s *Scheduler) Next() string {
	next := s.cron.Entry(s.entryID).Next
	if next.IsZero() {
		return ""
	}
	return next.Format("2006-01-02 15:04:05")
}

func (s *Scheduler) runOnce() {
	// Failures are logged by the runner; the next tick is the retry.
	_, _ = s.runner.Run(s.ctx, s.dag)
}
