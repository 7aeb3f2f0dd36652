// Package batch converts many files concurrently. A failed file is recorded
// in its outcome and never stops the others.
package batch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/assemble"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/convert"
	"github.com/remysealswarchild/CSV-to-STDF-Converter/pkg/logging"
)

// OutputExt is the extension given to generated files
const OutputExt = ".stdf"

var (
	// ErrNoJobs is returned when there is nothing to convert
	ErrNoJobs = errors.New("no input files")
	// ErrDuplicateOutput is returned when two inputs map to the same output path
	ErrDuplicateOutput = errors.New("duplicate output path")
	// ErrFailed is returned by Report.Err when any job failed
	ErrFailed = errors.New("batch conversion failed")
)

// Job is one input/output pair
type Job struct {
	Input  string
	Output string
}

// BuildJobs maps each input to outputDir/<name>.stdf
func BuildJobs(inputs []string, outputDir string) ([]Job, error) {
	if len(inputs) == 0 {
		return nil, ErrNoJobs
	}
	if outputDir == "" {
		outputDir = "."
	}

	jobs := make([]Job, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, in := range inputs {
		base := filepath.Base(in)
		out := filepath.Join(outputDir, strings.TrimSuffix(base, filepath.Ext(base))+OutputExt)
		if prev, dup := seen[out]; dup {
			return nil, fmt.Errorf("%w: %s and %s both write %s", ErrDuplicateOutput, prev, in, out)
		}
		seen[out] = in
		jobs = append(jobs, Job{Input: in, Output: out})
	}
	return jobs, nil
}

// Converter is the part of convert.Converter the runner needs
type Converter interface {
	ConvertFile(inPath, outPath string, cfg assemble.RunConfig) (*convert.Result, error)
}

// Outcome is the result of one job
type Outcome struct {
	Job     Job
	Result  *convert.Result
	Err     error
	Skipped bool // not started because the context was done
}

// Report holds one outcome per job, in job order
type Report struct {
	Outcomes []Outcome
}

// Succeeded returns the number of jobs that converted
func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the outcomes that failed or were skipped
func (r *Report) Failures() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Err summarizes failures, or returns nil when every job converted
func (r *Report) Err() error {
	failed := r.Failures()
	if len(failed) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d of %d conversions failed", ErrFailed, len(failed), len(r.Outcomes))
}

// Runner runs jobs with a bounded number of workers
type Runner struct {
	converter Converter
	workers   int
	logger    *zap.Logger
}

// NewRunner creates a runner. workers below one means one.
func NewRunner(c Converter, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{converter: c, workers: workers, logger: logging.OrNop(logger)}
}

// Run converts every job and waits for all of them. Jobs not started when
// ctx is done are marked skipped.
func (r *Runner) Run(ctx context.Context, jobs []Job, cfg assemble.RunConfig) *Report {
	report := &Report{Outcomes: make([]Outcome, len(jobs))}

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, job := range jobs {
		if err := ctx.Err(); err != nil {
			report.Outcomes[i] = Outcome{Job: job, Err: err, Skipped: true}
			continue
		}
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				report.Outcomes[i] = Outcome{Job: job, Err: err, Skipped: true}
				return nil
			}

			res, err := r.converter.ConvertFile(job.Input, job.Output, cfg)
			report.Outcomes[i] = Outcome{Job: job, Result: res, Err: err}
			if err != nil {
				r.logger.Error("Conversion failed", zap.String("input", job.Input), zap.Error(err))
			} else {
				r.logger.Debug("Converted", zap.String("input", job.Input), zap.String("output", job.Output))
			}
			return nil
		})
	}

	_ = g.Wait()
	return report
}
