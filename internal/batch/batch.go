// Package batch runs conversions over a worker pool, tracking per-job
// state and keeping the conversion record current.
package batch

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/owenvale/flacpress/internal/convert"
	"github.com/owenvale/flacpress/internal/library"
	"github.com/owenvale/flacpress/internal/media"
)

// JobState tracks where a conversion job is in its lifecycle.
type JobState int

const (
	StatePending JobState = iota
	StateRunning
	StateDone
	StateSkipped
	StateFailed
)

func (s JobState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateSkipped:
		return "skipped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Job is one source file moving through the pool.
type Job struct {
	Source media.File
	Output string
	State  JobState
	Err    error
}

// Summary aggregates the outcome of a run.
type Summary struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the number of jobs the run handled.
func (s Summary) Total() int {
	return s.Converted + s.Skipped + s.Failed
}

// FileConverter converts one source file, returning the output path.
// *convert.Converter is the production implementation.
type FileConverter interface {
	Convert(ctx context.Context, source media.File, tracking library.Tracking) (string, error)
}

// Runner fans conversion jobs out to a fixed number of workers. A
// failed job never stops the rest of the batch.
type Runner struct {
	Converter FileConverter
	Workers   int
	Log       zerolog.Logger

	mu       sync.Mutex
	tracking library.Tracking
	jobs     []*Job
}

// Run converts every file, updating tracking entries as outputs land.
// The returned jobs are in input order with final states filled in.
func (r *Runner) Run(ctx context.Context, files []media.File, tracking library.Tracking) ([]*Job, Summary) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	r.tracking = tracking

	r.jobs = make([]*Job, len(files))
	for i, f := range files {
		r.jobs[i] = &Job{Source: f, State: StatePending}
	}

	queue := make(chan *Job)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range queue {
				r.runJob(ctx, job)
			}
		}()
	}

	for _, job := range r.jobs {
		select {
		case queue <- job:
		case <-ctx.Done():
			job.State = StateFailed
			job.Err = ctx.Err()
		}
	}
	close(queue)
	wg.Wait()

	var sum Summary
	for _, job := range r.jobs {
		switch job.State {
		case StateDone:
			sum.Converted++
		case StateSkipped:
			sum.Skipped++
		default:
			sum.Failed++
		}
	}
	return r.jobs, sum
}

func (r *Runner) runJob(ctx context.Context, job *Job) {
	if err := ctx.Err(); err != nil {
		job.State = StateFailed
		job.Err = err
		return
	}
	job.State = StateRunning
	r.Log.Debug().Str("file", job.Source.Path).Msg("converting")

	output, err := r.Converter.Convert(ctx, job.Source, r.snapshot())
	job.Output = output
	switch {
	case errors.Is(err, convert.ErrSkipped):
		job.State = StateSkipped
		r.Log.Debug().Str("file", job.Source.Path).Msg("up to date, skipping")
	case err != nil:
		job.State = StateFailed
		job.Err = err
		r.Log.Error().Err(err).Str("file", job.Source.Path).Msg("conversion failed")
	default:
		job.State = StateDone
		r.record(job)
		r.Log.Info().Str("file", output).Msg("converted")
	}
}

func (r *Runner) snapshot() library.Tracking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(library.Tracking, len(r.tracking))
	for k, v := range r.tracking {
		out[k] = v
	}
	return out
}

func (r *Runner) record(job *Job) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tracking.Record(job.Source.Path, job.Output, job.Source.AlbumID)
}

// Tracking returns the updated tracking map after a run.
func (r *Runner) Tracking() library.Tracking {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tracking
}
