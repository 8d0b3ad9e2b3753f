// Command enbfit fits energy baseline regressions for baseline files in a
// directory and prints the reports as JSON.
//
// Usage:
//
//	enbfit [flags] [baseline-id ...]
//
// Without ids every baseline in the data directory is analyzed. With -rank
// each used driver is fitted on its own and the drivers are listed by R².
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/enms-tools/enbfit"
	"github.com/enms-tools/enbfit/baseline"
	"github.com/enms-tools/enbfit/cache"
	"github.com/enms-tools/enbfit/chart"
	"github.com/enms-tools/enbfit/compress"
	"github.com/enms-tools/enbfit/ingest"
	"github.com/enms-tools/enbfit/regression"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// cacheVariant separates the cached reports of this command from other users
// of the same store.
const cacheVariant = "enbfit-cli"

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"dir":         "data_dir",
	"lenient":     "lenient",
	"concurrency": "concurrency",
	"verbose":     "verbose",
	"chart":       "analysis.chart",
	"linear":      "analysis.linear",
	"precision":   "analysis.precision",
	"mbe-sign":    "analysis.mbe_sign",
	"samples":     "analysis.samples",
	"fit-line":    "analysis.fit_line",
	"cache":       "cache.backend",
	"redis":       "cache.redis_url",
	"compression": "cache.compression",
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("enbfit", flag.ContinueOnError)
	fs.SetOutput(stderr)

	configFile := fs.String("config", "", "Config file (default: enbfit.yaml in . or ./configs)")
	outputFile := fs.String("output", "", "Write JSON to this file instead of stdout")
	rank := fs.Bool("rank", false, "Rank the used drivers of each baseline by quadratic R²")
	fs.String("dir", ".", "Directory holding <id>.yaml, <id>.yml or <id>.csv baseline files")
	fs.Bool("lenient", false, "Drop values found in unused driver slots instead of failing")
	fs.Int("concurrency", 0, "Baselines analyzed in parallel (default: GOMAXPROCS)")
	fs.Bool("verbose", false, "Enable debug logging")
	fs.String("chart", "", "Chart and quadratic driver, e.g. X1 (default: first used driver)")
	fs.String("linear", "", "Comma separated linear drivers, e.g. X1,X3 (default: all used drivers)")
	fs.Int("precision", regression.DefaultPrecision, "Decimals in the printed equations")
	fs.String("mbe-sign", regression.SignResidual.String(), "MBE percentage sign: residual or inverted")
	fs.Int("samples", 0, "Evaluate the fit line at this many points (default: each observed value)")
	fs.String("fit-line", enbfit.FitLineQuadratic.String(), "Model drawn over the scatter: quadratic or linear")
	fs.String("cache", "none", "Report cache: none, local or redis")
	fs.String("redis", "redis://localhost:6379/0", "Redis URL for -cache=redis")
	fs.String("compression", compress.S2.String(), "Cached payload compression: none, zstd, s2 or lz4")

	if err := fs.Parse(args); err != nil {
		return err
	}

	overrides := make(map[string]any)
	fs.Visit(func(f *flag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			overrides[key] = f.Value.(flag.Getter).Get()
		}
	})

	cfg, err := loadConfig(*configFile, overrides)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Verbose, stderr)
	defer func() { _ = logger.Sync() }()

	baselineOpts := []baseline.Option{}
	if cfg.Lenient {
		baselineOpts = append(baselineOpts, baseline.WithLenientUnused())
	}
	src, err := ingest.NewDirSource(cfg.DataDir, logger, baselineOpts...)
	if err != nil {
		return err
	}

	ids := fs.Args()
	if len(ids) == 0 {
		if ids, err = src.IDs(); err != nil {
			return err
		}
	}
	if len(ids) == 0 {
		return fmt.Errorf("no baseline files in %s", cfg.DataDir)
	}

	fitOpts, err := cfg.Analysis.fitOptions()
	if err != nil {
		return err
	}

	var out []entry
	if *rank {
		out, err = rankDrivers(ctx, src, ids, fitOpts, logger)
	} else {
		out, err = analyze(ctx, cfg, src, ids, fitOpts, logger)
	}
	if out == nil {
		return err
	}
	if err != nil {
		logger.Warn("some baselines could not be analyzed", zap.Error(err))
	}

	if *outputFile == "" {
		if encErr := writeJSON(stdout, out); encErr != nil {
			return encErr
		}

		return err
	}

	f, ferr := os.Create(*outputFile)
	if ferr != nil {
		return ferr
	}
	if encErr := writeJSON(f, out); encErr != nil {
		_ = f.Close()
		return encErr
	}
	if closeErr := f.Close(); closeErr != nil {
		return fmt.Errorf("failed to write %s: %w", *outputFile, closeErr)
	}

	return err
}

func writeJSON(w io.Writer, out []entry) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}

// newLogger writes JSON logs to w, at debug level when verbose and warn level
// otherwise.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core)
}

// entry is one baseline of the JSON output.
type entry struct {
	ID     string            `json:"id"`
	Report *enbfit.Report    `json:"report,omitempty"`
	Ranked []rankedCandidate `json:"ranked,omitempty"`
	Error  string            `json:"error,omitempty"`
}

type rankedCandidate struct {
	Slot    baseline.Slot `json:"slot"`
	Formula string        `json:"formula"`
	RSquare float64       `json:"rSquare"`
}

func analyze(ctx context.Context, cfg *Config, src baseline.Source, ids []string,
	fitOpts []regression.FitOption, logger *zap.Logger,
) ([]entry, error) {
	sel, err := cfg.Analysis.selection()
	if err != nil {
		return nil, err
	}

	fitLine, err := enbfit.ParseFitLineModel(cfg.Analysis.FitLine)
	if err != nil {
		return nil, err
	}

	opts := []enbfit.Option{
		enbfit.WithFitOptions(fitOpts...),
		enbfit.WithFitLine(fitLine),
		enbfit.WithLogger(logger),
	}
	if cfg.Analysis.Samples > 0 {
		opts = append(opts, enbfit.WithSeriesOptions(chart.WithSamples(cfg.Analysis.Samples)))
	}
	if cfg.Concurrency > 0 {
		opts = append(opts, enbfit.WithConcurrency(cfg.Concurrency))
	}

	fc, reg, err := newCache(ctx, cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		defer func() { _ = fc.Close() }()
		opts = append(opts, enbfit.WithCache(fc, cacheVariant))
	}

	a, err := enbfit.NewAnalyzer(opts...)
	if err != nil {
		return nil, err
	}

	reports, runErr := a.AnalyzeIDs(ctx, src, ids, sel)
	if reports == nil {
		return nil, runErr
	}

	out := make([]entry, len(ids))
	for i, id := range ids {
		out[i] = entry{ID: id, Report: reports[i]}
		if reports[i] == nil {
			out[i].Error = "analysis failed"
		}
	}
	if runErr != nil {
		attachErrors(out, runErr)
	}

	if reg != nil {
		logCacheMetrics(reg, logger)
	}

	return out, runErr
}

func rankDrivers(ctx context.Context, src baseline.Source, ids []string,
	fitOpts []regression.FitOption, logger *zap.Logger,
) ([]entry, error) {
	out := make([]entry, len(ids))
	var failures []error
	for i, id := range ids {
		out[i].ID = id

		b, err := src.Load(ctx, id)
		if err == nil {
			var candidates []regression.Candidate
			candidates, err = regression.FitEachDriver(b, fitOpts...)
			for _, c := range candidates {
				rc := rankedCandidate{RSquare: c.RSquare}
				if fit, ok := c.Model.(*regression.QuadraticFit); ok {
					rc.Slot = fit.Slot
					rc.Formula = fit.Formula
				}
				out[i].Ranked = append(out[i].Ranked, rc)
			}
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("driver ranking failed", zap.String("baseline", id), zap.Error(err))
			out[i].Error = err.Error()
			failures = append(failures, fmt.Errorf("baseline %q: %w", id, err))
		}
	}

	return out, errors.Join(failures...)
}

// attachErrors copies per-baseline messages from the joined error of
// Analyzer.AnalyzeIDs into the output entries.
func attachErrors(out []entry, err error) {
	for _, e := range flatten(err) {
		for i := range out {
			if out[i].Report == nil && strings.HasPrefix(e.Error(), fmt.Sprintf("baseline %q: ", out[i].ID)) {
				out[i].Error = e.Error()
			}
		}
	}
}

func flatten(err error) []error {
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return []error{err}
	}

	var out []error
	for _, e := range joined.Unwrap() {
		out = append(out, flatten(e)...)
	}

	return out
}

func newCache(ctx context.Context, cfg CacheConfig, logger *zap.Logger) (*cache.FitCache[*enbfit.Report], *prometheus.Registry, error) {
	var (
		store cache.Store
		err   error
	)
	switch cfg.Backend {
	case "", "none":
		return nil, nil, nil
	case "local":
		store, err = cache.NewLocalStore(cache.WithLocalLogger(logger))
	case "redis":
		store, err = cache.NewRedisStore(ctx, cfg.RedisURL, logger)
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, nil, err
	}

	compression, err := compress.ParseType(cfg.Compression)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	reg := prometheus.NewRegistry()
	fc, err := cache.New[*enbfit.Report](store,
		cache.WithTTL(cfg.TTL),
		cache.WithCompression(compression),
		cache.WithLogger(logger),
		cache.WithRegisterer(reg),
	)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}

	return fc, reg, nil
}

// logCacheMetrics logs the totals of every cache metric at warn level, so they
// are reported without -verbose.
func logCacheMetrics(reg *prometheus.Registry, logger *zap.Logger) {
	families, err := reg.Gather()
	if err != nil {
		logger.Warn("failed to gather cache metrics", zap.Error(err))
		return
	}

	fields := make([]zap.Field, 0, len(families))
	for _, mf := range families {
		var total float64
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				total += m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				total += float64(m.GetHistogram().GetSampleCount())
			}
		}
		fields = append(fields, zap.Float64(mf.GetName(), total))
	}
	logger.Warn("cache statistics", fields...)
}
