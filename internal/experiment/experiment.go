package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/bellsim/internal/bell"
	"github.com/san-kum/bellsim/internal/logging"
	"golang.org/x/sync/errgroup"
)

// chunk is how many trials run between context checks.
const chunk = 4096

// errWorkerPanic cancels the remaining workers after one of them panicked.
var errWorkerPanic = errors.New("experiment: worker panicked")

type Experiment struct {
	cfg      Config
	protocol Protocol
	metrics  []Metric
	logger   *slog.Logger
}

func New(cfg Config, protocol Protocol) *Experiment {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Experiment{cfg: cfg, protocol: protocol, logger: logging.Discard()}
}

func (e *Experiment) AddMetric(m Metric) { e.metrics = append(e.metrics, m) }

// SetLogger routes per-chunk trace output to l.
func (e *Experiment) SetLogger(l *slog.Logger) {
	if l != nil {
		e.logger = l
	}
}

// Count runs trials of p against src and returns how many ended with unequal
// spins. Non-positive trial counts return 0.
func Count(src bell.RandomSource, trials int, p Protocol) int {
	different := 0
	for i := 0; i < trials; i++ {
		if p.Trial(src).Differ() {
			different++
		}
	}
	return different
}

func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if e.protocol == nil {
		return nil, fmt.Errorf("%w: no protocol", ErrInvalidConfig)
	}
	if len(e.metrics) > 0 && e.cfg.Workers > 1 {
		return nil, fmt.Errorf("%w: metrics need a single worker, got %d", ErrInvalidConfig, e.cfg.Workers)
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	result := &Result{
		ID:       uuid.NewString(),
		Protocol: e.protocol.Name(),
		Params:   Params(e.protocol),
		Trials:   e.cfg.Trials,
		Expected: 100 * e.protocol.Expected(),
		Seed:     e.cfg.Seed,
		Workers:  e.cfg.Workers,
		Metrics:  make(map[string]float64),
	}
	if _, ok := e.protocol.(*Hidden); ok {
		result.Bound = 100 * bell.BellBound
	}

	if result.NoData() {
		result.Trials = 0
		return result, nil
	}

	start := time.Now()

	var err error
	if e.cfg.Workers == 1 {
		result.Different, err = e.runSequential(ctx)
	} else {
		result.Different, err = e.runParallel(ctx)
	}
	if err != nil {
		return nil, err
	}

	result.Elapsed = time.Since(start)

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

func (e *Experiment) runSequential(ctx context.Context) (int, error) {
	src := bell.NewSource(e.cfg.Seed)
	different := 0

	for i := 0; i < e.cfg.Trials; i++ {
		if i%chunk == 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			default:
			}
			if i > 0 {
				e.logger.Log(ctx, logging.LevelTrace, "experiment.chunk",
					"protocol", e.protocol.Name(), "done", i, "different", different)
			}
		}

		out := e.protocol.Trial(src)
		if out.Differ() {
			different++
		}
		for _, m := range e.metrics {
			m.Observe(out)
		}
	}

	return different, nil
}

// runParallel splits trials into one contiguous share per worker. Each worker
// owns its source and partial count; partials are summed after Wait. A panic
// in a worker is re-raised on the calling goroutine once all workers stop.
func (e *Experiment) runParallel(ctx context.Context) (int, error) {
	workers := e.cfg.Workers
	if workers > e.cfg.Trials {
		workers = e.cfg.Trials
	}

	share := e.cfg.Trials / workers
	remainder := e.cfg.Trials % workers
	partials := make([]int, workers)
	panics := make([]any, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		w := w
		n := share
		if w == workers-1 {
			n += remainder
		}
		g.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					panics[w] = r
					err = errWorkerPanic
				}
			}()
			src := bell.NewSource(e.cfg.Seed + int64(w))
			for done := 0; done < n; done += chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				partials[w] += Count(src, min(chunk, n-done), e.protocol)
				e.logger.Log(ctx, logging.LevelTrace, "experiment.chunk",
					"protocol", e.protocol.Name(), "worker", w, "done", done+min(chunk, n-done), "of", n)
			}
			return nil
		})
	}

	err := g.Wait()
	for _, r := range panics {
		if r != nil {
			panic(r)
		}
	}
	if err != nil {
		return 0, err
	}

	total := 0
	for _, p := range partials {
		total += p
	}
	return total, nil
}
