package builder

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/neve-lang/neve/internal/derivation"
)

// Job is one derivation awaiting realization, submitted to a Scheduler.
type Job struct {
	Derivation *derivation.Derivation
	Inputs     map[string]string
}

// Result pairs a Job with its outcome.
type Result struct {
	Job     Job
	Outputs map[string]string
	Err     error
}

// Scheduler runs a bounded number of builds concurrently (per
// NEVE_BUILD_JOBS), sharing one cancellation signal across the pool.
type Scheduler struct {
	Builder *Builder
}

// NewScheduler builds a Scheduler around b.
func NewScheduler(b *Builder) *Scheduler {
	return &Scheduler{Builder: b}
}

// RunAll realizes every job, capping in-flight builds at b.Opts.MaxJobs. It
// does not stop early on a single job's failure — every job's Result is
// returned, since the failure of one derivation must not halt unrelated
// derivations already scheduled.
func (s *Scheduler) RunAll(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Builder.Opts.MaxJobs)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			select {
			case <-ctx.Done():
				results[i] = Result{Job: job, Err: ctx.Err()}
				return nil
			default:
			}
			outs, err := s.Builder.Realize(gctx, job.Derivation, job.Inputs)
			results[i] = Result{Job: job, Outputs: outs, Err: err}
			return nil // collect every error in Result rather than aborting the group
		})
	}
	g.Wait()
	return results
}
