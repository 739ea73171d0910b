package synth

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/osgify/cli/internal/bnd"
	"github.com/osgify/cli/internal/bundle"
)

// Job is one artifact with its resolved configuration.
type Job struct {
	Artifact *bundle.Artifact
	Config   bnd.Config
}

// Pool synthesizes independent artifacts in parallel.
type Pool struct {
	synth   *Synthesizer
	workers int
}

// NewPool creates a pool running at most workers syntheses at once. A
// non-positive count uses GOMAXPROCS.
func NewPool(s *Synthesizer, workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pool{synth: s, workers: workers}
}

// Run synthesizes every job and returns the results in job order.
//
// A failing artifact does not affect its siblings. When ctx is cancelled no
// further jobs are scheduled; running jobs finish and jobs never started are
// reported as Failed with the context error.
func (p *Pool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	scheduled := make([]bool, len(jobs))

	g := new(errgroup.Group)
	g.SetLimit(p.workers)

	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		scheduled[i] = true
		g.Go(func() error {
			results[i] = p.synth.Synthesize(ctx, job.Artifact, job.Config)
			return nil
		})
	}
	_ = g.Wait()

	for i, job := range jobs {
		if !scheduled[i] {
			results[i] = Result{Artifact: job.Artifact, State: Failed, Err: ctx.Err()}
		}
	}
	return results
}
