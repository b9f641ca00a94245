// Package loader drives the per-year extract, normalize and append batch.
package loader

import (
	"context"
	"errors"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/sells-group/demography-cli/internal/census"
	"github.com/sells-group/demography-cli/internal/model"
	"github.com/sells-group/demography-cli/internal/monitoring"
)

// Sink is the subset of store.Store the loader writes to.
type Sink interface {
	AppendObservations(ctx context.Context, obs []model.Observation) (int64, error)
	StartLoad(ctx context.Context, year int, dataset string, at time.Time) (string, error)
	CompleteLoad(ctx context.Context, id string, rows int64, at time.Time) error
	FailLoad(ctx context.Context, id string, errMsg string, at time.Time) error
}

// Extractor fetches and parses one dataset response.
type Extractor interface {
	Extract(ctx context.Context, rawURL string) (*census.Table, error)
}

// Options configures an Engine.
type Options struct {
	BaseURL string
	Clock   clockwork.Clock
	Metrics *monitoring.Metrics
}

// Engine loads vintages one year at a time.
type Engine struct {
	sink      Sink
	extractor Extractor
	baseURL   string
	clock     clockwork.Clock
	metrics   *monitoring.Metrics
}

// NewEngine creates a loader engine.
func NewEngine(sink Sink, extractor Extractor, opts Options) *Engine {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	return &Engine{
		sink:      sink,
		extractor: extractor,
		baseURL:   opts.BaseURL,
		clock:     opts.Clock,
		metrics:   opts.Metrics,
	}
}

// Report summarizes a batch run.
type Report struct {
	Results []model.YearResult `json:"results"`
	Loaded  int                `json:"loaded"`
	Failed  int                `json:"failed"`
	Rows    int64              `json:"rows"`
}

// FailedYears returns the years that did not load, in run order.
func (r *Report) FailedYears() []int {
	var out []int
	for _, res := range r.Results {
		if !res.OK() {
			out = append(out, res.Year)
		}
	}
	return out
}

func (r *Report) add(res model.YearResult) {
	r.Results = append(r.Results, res)
	if res.OK() {
		r.Loaded++
		r.Rows += res.Rows
	} else {
		r.Failed++
	}
}

// Run loads each vintage in order. A failing year is recorded and the loop
// moves on; only context cancellation stops the batch early, in which case
// the partial report is returned with the context error.
func (e *Engine) Run(ctx context.Context, vintages []census.Vintage) (*Report, error) {
	log := zap.L().With(zap.String("component", "loader.engine"))
	report := &Report{}

	if len(vintages) == 0 {
		log.Info("no vintages selected")
		return report, nil
	}

	log.Info("selected vintages", zap.Int("count", len(vintages)))

	for _, v := range vintages {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		default:
		}

		res := e.runYear(ctx, v)
		report.add(res)
		e.observe(res)
	}

	log.Info("load run complete",
		zap.Int("loaded", report.Loaded),
		zap.Int("failed", report.Failed),
		zap.Int64("rows", report.Rows),
	)
	return report, nil
}

func (e *Engine) runYear(ctx context.Context, v census.Vintage) model.YearResult {
	yLog := zap.L().With(
		zap.String("component", "loader.engine"),
		zap.Int("year", v.Year),
		zap.String("dataset", v.Dataset),
	)
	res := model.YearResult{Year: v.Year, Dataset: v.Dataset}
	start := e.clock.Now()

	// Load-log writes must land even when the batch is being cancelled.
	logCtx := context.WithoutCancel(ctx)

	yLog.Info("starting load")
	loadID, err := e.sink.StartLoad(logCtx, v.Year, v.Dataset, start.UTC())
	if err != nil {
		res.Status = model.LoadStatusFailed
		res.Err = &census.LoadError{Year: v.Year, Err: err}
		res.Duration = e.clock.Since(start)
		yLog.Error("load failed", zap.Error(res.Err))
		return res
	}

	rows, err := e.loadYear(ctx, v)
	res.Duration = e.clock.Since(start)
	done := e.clock.Now().UTC()

	if err != nil {
		res.Status = model.LoadStatusFailed
		res.Err = err
		yLog.Error("load failed",
			zap.String("error_kind", errorKind(err)),
			zap.Error(err),
			zap.Duration("elapsed", res.Duration),
		)
		if logErr := e.sink.FailLoad(logCtx, loadID, err.Error(), done); logErr != nil {
			yLog.Error("failed to record load failure", zap.Error(logErr))
		}
		return res
	}

	res.Status = model.LoadStatusComplete
	res.Rows = rows
	if logErr := e.sink.CompleteLoad(logCtx, loadID, rows, done); logErr != nil {
		yLog.Error("failed to record load completion", zap.Error(logErr))
	}
	yLog.Info("load complete",
		zap.Int64("rows", rows),
		zap.Duration("elapsed", res.Duration),
	)
	return res
}

func (e *Engine) loadYear(ctx context.Context, v census.Vintage) (int64, error) {
	tbl, err := e.extractor.Extract(ctx, v.URL(e.baseURL))
	if err != nil {
		return 0, err
	}

	obs, err := census.Normalize(tbl, v.Year, v.Aliases)
	if err != nil {
		return 0, err
	}

	n, err := e.sink.AppendObservations(ctx, obs)
	if err != nil {
		return 0, &census.LoadError{Year: v.Year, Err: err}
	}
	return n, nil
}

func (e *Engine) observe(res model.YearResult) {
	if e.metrics == nil {
		return
	}
	e.metrics.YearsLoaded.WithLabelValues(string(res.Status)).Inc()
	e.metrics.LoadDuration.Observe(res.Duration.Seconds())
	if res.OK() {
		e.metrics.RowsLoaded.Add(float64(res.Rows))
	}
}

// errorKind names the failure class for log filtering.
func errorKind(err error) string {
	var (
		pe  *census.ParseError
		ee  *census.ExtractionError
		tce *census.TypeConversionError
		le  *census.LoadError
	)
	switch {
	case errors.As(err, &ee):
		return "extraction"
	case errors.As(err, &pe):
		return "parse"
	case errors.As(err, &tce):
		return "type_conversion"
	case errors.As(err, &le):
		return "load"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "unknown"
	}
}
