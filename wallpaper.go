// Package wallpaper builds desktop wallpapers from the scene changes of a
// movie: one montage of thumbnails per target display resolution.
//
// Basic usage:
//
//	gen, err := wallpaper.New("1920x1080,3840x2160",
//	    wallpaper.WithInput("movie.mkv"),
//	    wallpaper.WithWorkDir("work/"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := gen.Generate(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range result.Montages {
//	    fmt.Println(m.Path, m.Geometry)
//	}
package wallpaper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/five82/movie-wallpaper/internal/config"
	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/ffprobe"
	"github.com/five82/movie-wallpaper/internal/logging"
	"github.com/five82/movie-wallpaper/internal/metrics"
	"github.com/five82/movie-wallpaper/internal/pipeline"
	"github.com/five82/movie-wallpaper/internal/procexec"
	"github.com/five82/movie-wallpaper/internal/reporter"
	"github.com/five82/movie-wallpaper/internal/resolution"
	"github.com/five82/movie-wallpaper/internal/review"
	"github.com/five82/movie-wallpaper/internal/toolchain"
	"github.com/five82/movie-wallpaper/internal/util"
)

// Re-export backend types
type Backend = config.Backend

const (
	BackendMagick = config.BackendMagick
	BackendNative = config.BackendNative
)

// Reporter receives run events. See the internal reporter package for the
// terminal and JSON implementations the CLI uses.
type Reporter = reporter.Reporter

// ErrIncomplete is returned alongside a Result when at least one frame or
// resolution failed but the run itself finished.
var ErrIncomplete = errors.New("run finished with failures")

// ParseBackend converts a backend name ("magick" or "native").
func ParseBackend(s string) (Backend, error) {
	return config.ParseBackend(s)
}

// Generator runs the wallpaper pipeline.
type Generator struct {
	config      *config.Config
	resolutions []resolution.Resolution
	runner      procexec.Runner
	reviewKey   review.KeyWaiter
}

// Montage describes the outcome for one resolution.
type Montage struct {
	Resolution string
	Path       string
	Geometry   string
	Columns    int
	Rows       int
	Overflows  bool
	Err        error
}

// Result summarizes a run.
type Result struct {
	Outputs            []string
	Montages           []Montage
	FrameCount         int
	FrameWidth         int
	FrameHeight        int
	PreprocessSkipped  bool
	PreprocessFailures []error
	ComposeFailures    []error
	LogFile            string
	RunID              string
	Duration           time.Duration
}

// Option configures the generator.
type Option func(*config.Config)

// New creates a Generator for a comma-separated WxH resolution list.
func New(resolutions string, opts ...Option) (*Generator, error) {
	cfg := config.NewConfig(".")
	cfg.Resolutions = resolutions
	for _, opt := range opts {
		opt(cfg)
	}
	return NewFromConfig(cfg)
}

// NewFromConfig validates cfg and creates a Generator from it.
func NewFromConfig(cfg *config.Config) (*Generator, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}
	rs, err := resolution.Parse(cfg.Resolutions)
	if err != nil {
		return nil, err
	}
	return &Generator{config: cfg, resolutions: rs, runner: procexec.NewExecRunner()}, nil
}

// validate maps config sentinels onto the error taxonomy.
func validate(cfg *config.Config) error {
	err := cfg.Validate()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, config.ErrMissingResolution):
		return mwerrors.NewMissingArgumentError("resolution list (-r)")
	default:
		return mwerrors.WrapInvalidConfig(err.Error(), err)
	}
}

// WithInput sets the source video. Without it the run reuses the frames
// already in the work directory.
func WithInput(path string) Option {
	return func(c *config.Config) {
		c.Input = path
	}
}

// WithWorkDir sets the directory holding frames/ and frames_scaled/.
func WithWorkDir(dir string) Option {
	return func(c *config.Config) {
		c.WorkDir = dir
	}
}

// WithOutputDir sets where montages are written (default: the work dir).
func WithOutputDir(dir string) Option {
	return func(c *config.Config) {
		c.OutputDir = dir
	}
}

// WithSkipPreprocess reuses frames_scaled/ when it already exists.
func WithSkipPreprocess() Option {
	return func(c *config.Config) {
		c.SkipPreprocess = true
	}
}

// WithReview toggles the manual culling pause after extraction.
func WithReview(enable bool) Option {
	return func(c *config.Config) {
		c.Review = enable
	}
}

// WithWorkers bounds preprocessing and composition parallelism.
func WithWorkers(n int) Option {
	return func(c *config.Config) {
		c.Workers = n
	}
}

// WithBackend selects the image toolchain.
func WithBackend(b Backend) Option {
	return func(c *config.Config) {
		c.Backend = b
	}
}

// WithSceneThreshold sets the ffmpeg scene score above which a frame is kept.
func WithSceneThreshold(t float64) Option {
	return func(c *config.Config) {
		c.SceneThreshold = t
	}
}

// WithBinaries overrides the magick, ffmpeg and ffprobe executables.
// Empty values keep the defaults.
func WithBinaries(magick, ffmpeg, ffprobe string) Option {
	return func(c *config.Config) {
		if magick != "" {
			c.MagickBinary = magick
		}
		if ffmpeg != "" {
			c.FFmpegBinary = ffmpeg
		}
		if ffprobe != "" {
			c.FFprobeBinary = ffprobe
		}
	}
}

// WithLogging writes a run log to dir; verbose adds debug records.
func WithLogging(dir string, verbose bool) Option {
	return func(c *config.Config) {
		c.LogDir = dir
		c.Verbose = verbose
		c.NoLog = false
	}
}

// WithoutLogging disables the run log file.
func WithoutLogging() Option {
	return func(c *config.Config) {
		c.NoLog = true
	}
}

// WithMetricsFile writes Prometheus textfile metrics to path after the run.
func WithMetricsFile(path string) Option {
	return func(c *config.Config) {
		c.MetricsFile = path
	}
}

// Resolutions returns the parsed target resolutions in order.
func (g *Generator) Resolutions() []string {
	out := make([]string, len(g.resolutions))
	for i, r := range g.resolutions {
		out[i] = r.String()
	}
	return out
}

// Generate runs the pipeline. A fatal failure returns a non-nil error and
// whatever partial Result was gathered. Per-item failures return the full
// Result together with an error wrapping ErrIncomplete.
func (g *Generator) Generate(ctx context.Context, rep Reporter) (*Result, error) {
	cfg := g.config
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	logger, err := logging.Setup(cfg.LogDir, cfg.Verbose, cfg.NoLog)
	if err != nil {
		return nil, mwerrors.NewIOError("failed to set up logging", err)
	}
	defer logger.Close()

	var rec *metrics.Recorder
	if cfg.MetricsFile != "" {
		rec = metrics.New()
	}

	sys := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{Hostname: sys.Hostname, NumCPU: sys.NumCPU, OS: sys.OS, Arch: sys.Arch})

	tools := toolchain.New(cfg, g.runner)
	orch := pipeline.New(pipeline.Options{
		Config:      cfg,
		Resolutions: g.resolutions,
		Toolchain:   tools,
		Prober:      ffprobe.NewProber(cfg.FFprobeBinary, g.runner),
		Reporter:    rep,
		Logger:      logger,
		Metrics:     rec,
		ReviewKey:   g.reviewKey,
	})

	rep.RunStarted(reporter.RunSummary{
		RunID:       logger.RunID(),
		Input:       cfg.Input,
		WorkDir:     cfg.WorkDir,
		OutputDir:   cfg.OutputDir,
		Resolutions: g.Resolutions(),
		Backend:     tools.Name(),
		Workers:     cfg.Workers,
		Skip:        cfg.SkipPreprocess,
	})
	logger.Info("run started: input=%q resolutions=%s backend=%s workers=%d",
		cfg.Input, resolution.Format(g.resolutions), tools.Name(), cfg.Workers)

	pres, runErr := orch.Run(ctx)
	res := convertResult(pres)
	res.LogFile = logger.FilePath()
	res.RunID = logger.RunID()

	if runErr == nil && pres.Failed() {
		runErr = fmt.Errorf("%w: %w", ErrIncomplete, pres.Err())
	}

	rec.RunFinished(time.Now(), runErr == nil)
	if cfg.MetricsFile != "" {
		if err := rec.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Warn("failed to write metrics to %s: %v", cfg.MetricsFile, err)
			rep.Warning(fmt.Sprintf("could not write metrics file %s: %v", cfg.MetricsFile, err))
		}
	}

	if runErr != nil && !errors.Is(runErr, ErrIncomplete) {
		rep.Error(describeError(runErr))
		return res, runErr
	}

	rep.RunComplete(reporter.RunOutcome{
		Outputs:            res.Outputs,
		PreprocessFailures: len(res.PreprocessFailures),
		ComposeFailures:    len(res.ComposeFailures),
		TotalTime:          res.Duration,
	})
	return res, runErr
}

func convertResult(p *pipeline.Result) *Result {
	res := &Result{
		Outputs:           p.Outputs,
		FrameCount:        p.FrameSet.Count,
		FrameWidth:        p.FrameSet.Width,
		FrameHeight:       p.FrameSet.Height,
		PreprocessSkipped: p.PreprocessSkipped,
		Duration:          p.Duration,
	}
	for _, c := range p.Compositions {
		m := Montage{Resolution: c.Resolution.String(), Err: c.Err}
		if c.Layout.Columns > 0 {
			m.Geometry = c.Layout.Geometry()
			m.Columns = c.Layout.Columns
			m.Rows = c.Fit.ImpliedRows
			m.Overflows = c.Fit.OverflowsX || c.Fit.OverflowsY
		}
		if c.Err == nil {
			m.Path = c.Output
		}
		res.Montages = append(res.Montages, m)
	}
	for _, e := range p.PreprocessFailures {
		res.PreprocessFailures = append(res.PreprocessFailures, e)
	}
	for _, e := range p.ComposeFailures {
		res.ComposeFailures = append(res.ComposeFailures, e)
	}
	return res
}

// describeError turns a fatal error into a reporter message with a hint.
func describeError(err error) reporter.ReporterError {
	re := reporter.ReporterError{Title: "Run failed", Message: err.Error()}
	var se *pipeline.StageError
	if errors.As(err, &se) {
		re.Context = se.Stage.String()
	}
	switch {
	case mwerrors.IsCancelled(err):
		re.Title = "Cancelled"
	case mwerrors.IsExternalTool(err):
		re.Suggestion = "Check that ffmpeg and ImageMagick 7 (magick) are installed and on PATH"
	case mwerrors.IsParse(err):
		re.Suggestion = "Resolutions look like 1920x1080,3840x2160"
	case mwerrors.IsInvalidConfig(err):
		re.Suggestion = "Check the flags, config file and MOVIE_WALLPAPER_* environment"
	case mwerrors.IsKind(err, mwerrors.KindIO):
		re.Suggestion = "Check that the work directory exists and is writable"
	}
	return re
}
