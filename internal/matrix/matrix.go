// Package matrix resolves one recipe across every configured target
// and aggregates the outcomes into a run report.
package matrix

import (
	"context"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/quernbuild/quern/internal/plan"
	"github.com/quernbuild/quern/internal/platform"
	"github.com/quernbuild/quern/internal/recipe"
	"github.com/quernbuild/quern/internal/variant"
)

// Outcome statuses.
const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Outcome is the result of resolving one target.
type Outcome struct {
	Target      platform.Target `json:"target"`
	Status      string          `json:"status"`
	BuildString string          `json:"build_string,omitempty"`
	Digest      string          `json:"digest,omitempty"`
	Reason      string          `json:"reason,omitempty"`
	Error       string          `json:"error,omitempty"`

	Plan *plan.BuildPlan `json:"-"`
	Err  error           `json:"-"`
}

// Report aggregates one matrix run.
type Report struct {
	RunID    string    `json:"run_id"`
	Package  string    `json:"package"`
	Version  string    `json:"version"`
	Outcomes []Outcome `json:"outcomes"`
	Resolved int       `json:"resolved"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// Failures returns the failed outcomes.
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			failed = append(failed, o)
		}
	}
	return failed
}

// FailureError reports a matrix run where targets failed to resolve.
type FailureError struct {
	Failed []Outcome
}

func (e *FailureError) Error() string {
	if len(e.Failed) == 1 {
		return fmt.Sprintf("1 target failed: %s: %s", e.Failed[0].Target, e.Failed[0].Error)
	}
	return fmt.Sprintf("%d targets failed", len(e.Failed))
}

// Runner resolves recipes across a target matrix in parallel.
type Runner struct {
	cfg     *variant.Config
	workers int
	logger  *zap.Logger
}

// NewRunner creates a runner. Zero workers means one per CPU, a nil
// logger disables logging.
func NewRunner(cfg *variant.Config, workers int, logger *zap.Logger) *Runner {
	if cfg == nil {
		cfg = variant.Default()
	}
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{cfg: cfg, workers: workers, logger: logger}
}

// Run resolves rec against every target in the matrix. Failures are
// isolated per target: a bad selector on one target never stops the
// others. Outcomes keep the matrix order.
func (r *Runner) Run(ctx context.Context, rec *recipe.Recipe) (*Report, error) {
	targets, err := r.cfg.Targets(usesNumPy(rec))
	if err != nil {
		return nil, err
	}

	report := &Report{
		RunID:    uuid.NewString(),
		Package:  rec.Package.Name,
		Version:  rec.Package.Version,
		Outcomes: make([]Outcome, len(targets)),
	}
	r.logger.Info("matrix run starting",
		zap.String("run_id", report.RunID),
		zap.String("package", report.Package),
		zap.Int("targets", len(targets)))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, target := range targets {
		i, target := i, target
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			report.Outcomes[i] = r.resolveOne(rec, target)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, o := range report.Outcomes {
		switch o.Status {
		case StatusOK:
			report.Resolved++
		case StatusSkipped:
			report.Skipped++
		case StatusFailed:
			report.Failed++
		}
	}
	return report, nil
}

func (r *Runner) resolveOne(rec *recipe.Recipe, target platform.Target) Outcome {
	res, err := plan.Resolve(rec, target, r.cfg)
	if err != nil {
		r.logger.Warn("target failed",
			zap.String("target", target.String()),
			zap.Error(err))
		return Outcome{Target: target, Status: StatusFailed, Error: err.Error(), Err: err}
	}
	if res.Skipped {
		r.logger.Debug("target skipped",
			zap.String("target", target.String()),
			zap.String("reason", res.Reason))
		return Outcome{Target: target, Status: StatusSkipped, Reason: res.Reason}
	}
	r.logger.Debug("target resolved",
		zap.String("target", target.String()),
		zap.String("build_string", res.Plan.BuildString))
	return Outcome{
		Target:      target,
		Status:      StatusOK,
		BuildString: res.Plan.BuildString,
		Digest:      res.Plan.Digest,
		Plan:        res.Plan,
	}
}

// usesNumPy reports whether any requirement names numpy, which decides
// whether the matrix fans out over numpy versions.
func usesNumPy(rec *recipe.Recipe) bool {
	phases := [][]recipe.Dep{
		rec.Requirements.Build,
		rec.Requirements.Host,
		rec.Requirements.Run,
		rec.Test.Requires,
	}
	for _, deps := range phases {
		for _, d := range deps {
			if d.Name == "numpy" {
				return true
			}
		}
	}
	return false
}
