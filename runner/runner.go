// Package runner checks every candidate of a document source against a
// template and aggregates the results.
package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	keysync "github.com/reoring/keysync"
)

// Source enumerates and loads candidate documents. docset.Dir implements it.
type Source interface {
	Candidates(ctx context.Context) ([]string, error)
	Load(ctx context.Context, id string) (keysync.Value, error)
}

// Options configures Run.
type Options struct {
	// Workers bounds how many candidates are loaded and checked at once.
	// Values below 1 mean 1.
	Workers int
	// Template names the template in the report.
	Template string
	Logger   *zap.Logger
}

// Result holds the paths one candidate is missing, in template order.
type Result struct {
	Candidate string
	Missing   []keysync.Missing
}

// Paths returns the missing paths of r.
func (r Result) Paths() []string {
	out := make([]string, len(r.Missing))
	for i, m := range r.Missing {
		out[i] = m.Path
	}
	return out
}

// Report is the outcome of a run. Results are in candidate enumeration order.
type Report struct {
	Template     string
	Results      []Result
	NoCandidates bool
}

// Failed reports whether the run found no candidates or any missing path.
func (r *Report) Failed() bool { return r.Err() != nil }

// Err returns keysync.ErrNoCandidates, keysync.ErrMissingKeys or nil.
func (r *Report) Err() error {
	if r.NoCandidates {
		return keysync.ErrNoCandidates
	}
	for _, res := range r.Results {
		if len(res.Missing) > 0 {
			return keysync.ErrMissingKeys
		}
	}
	return nil
}

// Failing returns the results with at least one missing path.
func (r *Report) Failing() []Result {
	var out []Result
	for _, res := range r.Results {
		if len(res.Missing) > 0 {
			out = append(out, res)
		}
	}
	return out
}

// Run loads every candidate of src and diffs it against template. A candidate
// that fails to load aborts the run with a *keysync.LoadError; loads still in
// flight are cancelled through their context.
func Run(ctx context.Context, template keysync.Value, src Source, opt Options) (*Report, error) {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}

	ids, err := src.Candidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing candidates: %w", err)
	}
	rep := &Report{Template: opt.Template}
	if len(ids) == 0 {
		log.Debug("no candidates")
		rep.NoCandidates = true
		return rep, nil
	}
	rep.Results = make([]Result, len(ids))

	check := func(ctx context.Context, i int) error {
		id := ids[i]
		v, err := src.Load(ctx, id)
		if err != nil {
			return &keysync.LoadError{Candidate: id, Cause: err}
		}
		missing := keysync.DiffDetailed(template, v)
		rep.Results[i] = Result{Candidate: id, Missing: missing}
		log.Debug("candidate checked", zap.String("candidate", id), zap.Int("missing", len(missing)))
		return nil
	}

	workers := opt.Workers
	if workers < 1 {
		workers = 1
	}
	if workers == 1 {
		for i := range ids {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if err := check(ctx, i); err != nil {
				return nil, err
			}
		}
		return rep, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return check(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rep, nil
}
