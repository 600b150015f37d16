package build

// Notes:
// - Tasks are fakes built from taskFunc; the runner never touches the disk.
// - Concurrency inside a stage is checked with a barrier: both tasks must be
//   running at the same time for either to finish.

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// recorder collects task names in start order.
type recorder struct {
	mu    sync.Mutex
	names []string
}

func (r *recorder) task(name string, err error) Task {
	return taskFunc{name, func(context.Context) (Report, error) {
		r.mu.Lock()
		r.names = append(r.names, name)
		r.mu.Unlock()
		return Report{Processed: 1}, err
	}}
}

func (r *recorder) got() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

func newTestRunner(t *testing.T, tasks ...Task) *Runner {
	t.Helper()
	r, err := NewRunner(zerolog.Nop(), tasks...)
	if err != nil {
		t.Fatalf("NewRunner() unexpected error: %v", err)
	}
	return r
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

func TestParsePlan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		args    []string
		want    Plan
		wantErr error
	}{
		{"single", []string{"styles"}, Plan{{"styles"}}, nil},
		{"sequence", []string{"clean", "copy"}, Plan{{"clean"}, {"copy"}}, nil},
		{"parallel stage", []string{"styles, images", "copy"}, Plan{{"styles", "images"}, {"copy"}}, nil},
		{"blank parts dropped", []string{"", "a,,b", " "}, Plan{{"a", "b"}}, nil},
		{"empty", nil, nil, ErrEmptyPlan},
		{"only blanks", []string{",", ""}, nil, ErrEmptyPlan},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParsePlan(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParsePlan() error = %v, want %v", err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePlan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_String(t *testing.T) {
	t.Parallel()

	p := Plan{{"clean"}, {"styles", "images"}, {"md:docs"}}
	if got := p.String(); got != "clean -> styles,images -> md:docs" {
		t.Errorf("String() = %q", got)
	}
	if got := p.Tasks(); !reflect.DeepEqual(got, []string{"clean", "styles", "images", "md:docs"}) {
		t.Errorf("Tasks() = %v", got)
	}
}

// ---------------------------------------------------------------------------
// Runner
// ---------------------------------------------------------------------------

func TestNewRunner_Duplicate(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	_, err := NewRunner(zerolog.Nop(), rec.task("a", nil), rec.task("a", nil))
	if !errors.Is(err, ErrDuplicateTask) {
		t.Errorf("NewRunner() error = %v, want ErrDuplicateTask", err)
	}
}

func TestRunner_Names(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	r := newTestRunner(t, rec.task("b", nil), rec.task("a", nil))
	if got := r.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Names() = %v, want [a b]", got)
	}
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("stages run in order", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := newTestRunner(t, rec.task("a", nil), rec.task("b", nil), rec.task("c", nil))

		reports, err := r.Run(context.Background(), Plan{{"c"}, {"a"}, {"b"}})
		if err != nil {
			t.Fatalf("Run() unexpected error: %v", err)
		}
		if got := rec.got(); !reflect.DeepEqual(got, []string{"c", "a", "b"}) {
			t.Errorf("order = %v, want [c a b]", got)
		}
		if len(reports) != 3 || reports[0].Task != "c" || reports[0].Processed != 1 {
			t.Errorf("reports = %+v", reports)
		}
	})

	t.Run("failing stage stops the run", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		boom := errors.New("boom")
		r := newTestRunner(t, rec.task("ok", nil), rec.task("bad", boom), rec.task("later", nil))

		reports, err := r.Run(context.Background(), Plan{{"ok", "bad"}, {"later"}})
		if !errors.Is(err, boom) {
			t.Fatalf("Run() error = %v, want boom", err)
		}
		if len(reports) != 2 {
			t.Errorf("reports = %d, want 2 (both tasks of the failing stage)", len(reports))
		}
		for _, name := range rec.got() {
			if name == "later" {
				t.Error("task after the failing stage ran")
			}
		}
	})

	t.Run("errors name their task", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := newTestRunner(t, rec.task("x", ErrTaskFailed), rec.task("y", ErrTaskFailed))

		_, err := r.Run(context.Background(), Plan{{"x", "y"}})
		if !errors.Is(err, ErrTaskFailed) {
			t.Fatalf("Run() error = %v, want ErrTaskFailed", err)
		}
		for _, want := range []string{"x: ", "y: "} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q should mention %q", err, want)
			}
		}
	})

	t.Run("unknown task", func(t *testing.T) {
		t.Parallel()

		r := newTestRunner(t)
		if _, err := r.Run(context.Background(), Plan{{"nope"}}); !errors.Is(err, ErrUnknownTask) {
			t.Errorf("Run() error = %v, want ErrUnknownTask", err)
		}
	})

	t.Run("empty plan", func(t *testing.T) {
		t.Parallel()

		r := newTestRunner(t)
		if _, err := r.Run(context.Background(), nil); !errors.Is(err, ErrEmptyPlan) {
			t.Errorf("Run() error = %v, want ErrEmptyPlan", err)
		}
	})

	t.Run("cancelled context runs nothing", func(t *testing.T) {
		t.Parallel()

		rec := &recorder{}
		r := newTestRunner(t, rec.task("a", nil))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := r.Run(ctx, Plan{{"a"}}); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
		if len(rec.got()) != 0 {
			t.Error("no task should run after cancellation")
		}
	})
}

func TestRunner_StageIsConcurrent(t *testing.T) {
	t.Parallel()

	var barrier sync.WaitGroup
	barrier.Add(2)
	waiter := func(name string) Task {
		return taskFunc{name, func(context.Context) (Report, error) {
			barrier.Done()
			done := make(chan struct{})
			go func() { barrier.Wait(); close(done) }()
			select {
			case <-done:
				return Report{}, nil
			case <-time.After(5 * time.Second):
				return Report{}, errors.New("sibling task never started")
			}
		}}
	}

	r := newTestRunner(t, waiter("a"), waiter("b"))
	if _, err := r.Run(context.Background(), Plan{{"a", "b"}}); err != nil {
		t.Errorf("Run() error = %v, tasks of a stage must run concurrently", err)
	}
}

func TestRunner_FailureDoesNotCancelSiblings(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	bad := taskFunc{"bad", func(context.Context) (Report, error) {
		<-started
		return Report{Failed: 1}, ErrTaskFailed
	}}
	slow := taskFunc{"slow", func(ctx context.Context) (Report, error) {
		close(started)
		time.Sleep(50 * time.Millisecond)
		if err := ctx.Err(); err != nil {
			return Report{}, err
		}
		return Report{Processed: 1}, nil
	}}

	r := newTestRunner(t, bad, slow)
	reports, err := r.Run(context.Background(), Plan{{"bad", "slow"}})
	if !errors.Is(err, ErrTaskFailed) || errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want only the bad task's failure", err)
	}
	if len(reports) != 2 || reports[1].Task != "slow" || reports[1].Processed != 1 {
		t.Errorf("reports = %+v, slow task should finish its work", reports)
	}
}
