package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/owenvale/flacpress/internal/convert"
	"github.com/owenvale/flacpress/internal/library"
	"github.com/owenvale/flacpress/internal/media"
)

type stubConverter struct {
	mu    sync.Mutex
	calls []string

	fail map[string]error
	skip map[string]bool
}

func (s *stubConverter) Convert(ctx context.Context, source media.File, tracking library.Tracking) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, source.Path)
	s.mu.Unlock()

	out := strings.TrimSuffix(source.Path, ".flac") + ".mp3"
	if err := s.fail[source.Path]; err != nil {
		return "", err
	}
	if s.skip[source.Path] {
		return out, convert.ErrSkipped
	}
	return out, nil
}

func files(n int) []media.File {
	out := make([]media.File, n)
	for i := range out {
		out[i] = media.File{Path: fmt.Sprintf("/music/track%02d.flac", i)}
	}
	return out
}

func TestRunConvertsAll(t *testing.T) {
	stub := &stubConverter{}
	r := &Runner{Converter: stub, Workers: 4, Log: zerolog.Nop()}

	jobs, sum := r.Run(context.Background(), files(10), library.Tracking{})
	if sum.Converted != 10 || sum.Skipped != 0 || sum.Failed != 0 {
		t.Fatalf("summary = %+v, want 10 converted", sum)
	}
	if sum.Total() != 10 {
		t.Fatalf("Total = %d, want 10", sum.Total())
	}
	for _, job := range jobs {
		if job.State != StateDone {
			t.Fatalf("job %s state = %v, want done", job.Source.Path, job.State)
		}
		if job.Output == "" {
			t.Fatalf("job %s has no output", job.Source.Path)
		}
	}
	if len(stub.calls) != 10 {
		t.Fatalf("converter called %d times, want 10", len(stub.calls))
	}
}

func TestRunFailureDoesNotStopBatch(t *testing.T) {
	in := files(5)
	stub := &stubConverter{
		fail: map[string]error{in[2].Path: errors.New("boom")},
		skip: map[string]bool{in[4].Path: true},
	}
	r := &Runner{Converter: stub, Workers: 2, Log: zerolog.Nop()}

	jobs, sum := r.Run(context.Background(), in, library.Tracking{})
	if sum.Converted != 3 || sum.Skipped != 1 || sum.Failed != 1 {
		t.Fatalf("summary = %+v, want 3/1/1", sum)
	}
	if jobs[2].State != StateFailed || jobs[2].Err == nil {
		t.Fatalf("failed job state = %v, err = %v", jobs[2].State, jobs[2].Err)
	}
	if jobs[4].State != StateSkipped {
		t.Fatalf("skipped job state = %v", jobs[4].State)
	}
}

func TestRunRecordsTracking(t *testing.T) {
	in := files(3)
	stub := &stubConverter{skip: map[string]bool{in[1].Path: true}}
	r := &Runner{Converter: stub, Workers: 1, Log: zerolog.Nop()}

	r.Run(context.Background(), in, library.Tracking{})
	tracking := r.Tracking()
	if len(tracking) != 2 {
		t.Fatalf("tracking has %d entries, want 2", len(tracking))
	}
	if _, ok := tracking[in[1].Path]; ok {
		t.Fatalf("skipped file landed in tracking")
	}
	entry := tracking[in[0].Path]
	if entry.OutputFile != "/music/track00.mp3" {
		t.Fatalf("tracking output = %q", entry.OutputFile)
	}
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stub := &stubConverter{}
	r := &Runner{Converter: stub, Workers: 2, Log: zerolog.Nop()}
	_, sum := r.Run(ctx, files(4), library.Tracking{})
	if sum.Converted != 0 {
		t.Fatalf("cancelled run converted %d files", sum.Converted)
	}
}

func TestJobStateString(t *testing.T) {
	cases := map[JobState]string{
		StatePending: "pending",
		StateRunning: "running",
		StateDone:    "done",
		StateSkipped: "skipped",
		StateFailed:  "failed",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Fatalf("JobState(%d).String() = %q, want %q", state, got, want)
		}
	}
}
