package enbfit

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/cache"
	"github.com/enms-tools/enbfit/chart"
	"github.com/enms-tools/enbfit/errs"
	"github.com/enms-tools/enbfit/internal/options"
	"github.com/enms-tools/enbfit/regression"
)

// Report is the complete analysis of one baseline: both fits, the scatter
// chart of the chart driver and the actual-vs-theoretical comparison.
//
// Comparison is in chronological order. Fingerprint identifies the data the
// report was computed from (see baseline.Baseline.Fingerprint).
type Report struct {
	BaselineID  string                  `json:"baselineId"`
	Fingerprint uint64                  `json:"fingerprint,string"`
	Selection   regression.Selection    `json:"selection"`
	Result      *regression.Result      `json:"result"`
	Series      *chart.Series           `json:"series"`
	Comparison  []chart.ComparisonPoint `json:"comparison"`
}

// Analyzer runs analyses with a fixed set of options. It is safe for
// concurrent use.
type Analyzer struct {
	cfg config
	// settings tags cache keys with every option that changes a report.
	settings string
}

// NewAnalyzer creates an Analyzer.
//
// Parameters:
//   - opts: Fit, series, cache and concurrency options
//
// Returns:
//   - *Analyzer: The analyzer
//   - error: An error if an option, including a fit or series option, is invalid
//
// Example:
//
//	a, err := enbfit.NewAnalyzer(
//	    enbfit.WithFitOptions(regression.WithEquationPrecision(2)),
//	    enbfit.WithSeriesOptions(chart.WithSamples(50)),
//	)
func NewAnalyzer(opts ...Option) (*Analyzer, error) {
	cfg, err := options.Build(defaultConfig(), opts...)
	if err != nil {
		return nil, err
	}

	fitCfg, err := regression.NewFitConfig(cfg.fitOpts...)
	if err != nil {
		return nil, err
	}
	seriesCfg, err := chart.NewSeriesConfig(cfg.seriesOpts...)
	if err != nil {
		return nil, err
	}

	return &Analyzer{
		cfg:      cfg,
		settings: fmt.Sprintf("%s;samples=%d;line=%s;variant=%s", fitCfg, seriesCfg.Samples, cfg.fitLine, cfg.variant),
	}, nil
}

// Analyze analyzes b with default options. See Analyzer.Analyze.
func Analyze(b *baseline.Baseline, sel regression.Selection, opts ...Option) (*Report, error) {
	a, err := NewAnalyzer(opts...)
	if err != nil {
		return nil, err
	}

	return a.Analyze(context.Background(), b, sel)
}

// Analyze fits both models for b and builds the chart and comparison series.
//
// The selection is resolved against b first (see regression.Selection.Resolve).
// A report is returned when at least one model could be fitted; the other is
// nil and its reason is listed in Result.Skipped. Otherwise the error wraps
// errs.ErrInsufficientData, errs.ErrDegenerateFit or
// errs.ErrInvalidDriverSelection.
//
// With a cache configured, reports are looked up by baseline id, fingerprint,
// resolved selection, the analyzer's fit, series and fit-line settings and the
// cache variant.
func (a *Analyzer) Analyze(ctx context.Context, b *baseline.Baseline, sel regression.Selection) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if b == nil || a.cfg.cache == nil {
		return a.compute(b, sel)
	}

	resolved, err := sel.Resolve(b)
	if err != nil {
		return nil, err
	}
	key := cache.Key(b.ID, b.Fingerprint(), resolved, a.settings)

	return a.cfg.cache.GetOrCompute(ctx, key, func(context.Context) (*Report, error) {
		a.cfg.log.Debug("computing report", zap.String("baseline", b.ID), zap.String("key", key))
		return a.compute(b, resolved)
	})
}

func (a *Analyzer) compute(b *baseline.Baseline, sel regression.Selection) (*Report, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil baseline", errs.ErrInsufficientData)
	}

	sel, err := sel.Resolve(b)
	if err != nil {
		return nil, err
	}

	res, err := regression.Fit(b, sel, a.cfg.fitOpts...)
	if err != nil {
		return nil, err
	}
	for _, reason := range res.Skipped {
		a.cfg.log.Debug("model not fitted", zap.String("baseline", b.ID), zap.String("reason", reason))
	}

	curve, err := a.fitLine(res, sel.Chart)
	if err != nil {
		return nil, err
	}

	series, err := chart.BuildSeries(b, sel.Chart, curve, a.cfg.seriesOpts...)
	if err != nil {
		return nil, err
	}

	return &Report{
		BaselineID:  b.ID,
		Fingerprint: b.Fingerprint(),
		Selection:   sel,
		Result:      res,
		Series:      series,
		Comparison:  chart.BuildComparison(b.SortedByPeriod(), res.Model()),
	}, nil
}

// fitLine picks the curve drawn over the scatter. The configured model is
// used when it was fitted and covers slot; otherwise the other one.
func (a *Analyzer) fitLine(res *regression.Result, slot baseline.Slot) (regression.Curve, error) {
	linear := res.Linear != nil
	if linear {
		_, linear = res.Linear.Coefficient(slot)
	}

	if linear && (a.cfg.fitLine == FitLineLinear || res.Quadratic == nil) {
		return res.Linear.Curve(slot)
	}
	if res.Quadratic != nil {
		return res.Quadratic, nil
	}

	return nil, nil
}

// AnalyzeAll analyzes baselines in parallel, at most the configured
// concurrency at a time.
//
// reports[i] belongs to baselines[i] and is nil when that analysis failed.
// Failures do not stop the other analyses; they are returned joined, each
// prefixed with its baseline id. Cancelling ctx stops scheduling new analyses
// and returns ctx.Err().
func (a *Analyzer) AnalyzeAll(ctx context.Context, baselines []*baseline.Baseline, sel regression.Selection) ([]*Report, error) {
	reports := make([]*Report, len(baselines))
	failures := make([]error, len(baselines))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.concurrency)

	for i, b := range baselines {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			r, err := a.Analyze(gctx, b, sel)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				failures[i] = fmt.Errorf("baseline %q: %w", idOf(b), err)
				a.cfg.log.Warn("analysis failed", zap.String("baseline", idOf(b)), zap.Error(err))

				return nil
			}
			reports[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return reports, errors.Join(failures...)
}

// AnalyzeIDs loads each id from src and analyzes it. See AnalyzeAll for the
// result and error contract; load failures are reported like fit failures.
func (a *Analyzer) AnalyzeIDs(ctx context.Context, src baseline.Source, ids []string, sel regression.Selection) ([]*Report, error) {
	var (
		loaded   []*baseline.Baseline
		index    []int
		failures []error
	)
	for i, id := range ids {
		b, err := src.Load(ctx, id)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			failures = append(failures, fmt.Errorf("baseline %q: %w", id, err))

			continue
		}
		loaded = append(loaded, b)
		index = append(index, i)
	}

	out, err := a.AnalyzeAll(ctx, loaded, sel)
	if out == nil {
		return nil, err
	}

	reports := make([]*Report, len(ids))
	for j, r := range out {
		reports[index[j]] = r
	}

	return reports, errors.Join(append(failures, err)...)
}

func idOf(b *baseline.Baseline) string {
	if b == nil {
		return "<nil>"
	}

	return b.ID
}
