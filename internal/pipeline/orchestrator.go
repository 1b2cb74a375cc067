// Package pipeline drives a wallpaper run: scene extraction, preprocessing,
// frame discovery, and per-resolution layout and composition.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/five82/movie-wallpaper/internal/config"
	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/ffprobe"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/logging"
	"github.com/five82/movie-wallpaper/internal/metrics"
	"github.com/five82/movie-wallpaper/internal/reporter"
	"github.com/five82/movie-wallpaper/internal/resolution"
	"github.com/five82/movie-wallpaper/internal/review"
	"github.com/five82/movie-wallpaper/internal/toolchain"
	"github.com/five82/movie-wallpaper/internal/worker"
)

// Prober reads source video properties.
type Prober interface {
	Probe(ctx context.Context, path string) (*ffprobe.VideoInfo, error)
}

// Options wires an Orchestrator. Config must already be validated.
type Options struct {
	Config      *config.Config
	Resolutions []resolution.Resolution
	Toolchain   toolchain.Toolchain

	// Optional collaborators.
	Prober    Prober
	Reporter  reporter.Reporter
	Logger    *logging.Logger
	Metrics   *metrics.Recorder
	ReviewKey review.KeyWaiter
}

// Composition is the outcome for one resolution.
type Composition struct {
	Resolution resolution.Resolution
	Layout     layout.ThumbnailLayout
	Fit        layout.Fit
	Output     string
	Err        error
}

// Result is what a run produced. Item failures do not make Run return an
// error; inspect Failed or Err.
type Result struct {
	FrameSet           layout.FrameSet
	Outputs            []string
	Compositions       []Composition
	PreprocessFailures []*ItemError
	ComposeFailures    []*ItemError
	PreprocessSkipped  bool
	Duration           time.Duration
}

// Failed reports whether any item failed.
func (r *Result) Failed() bool {
	return len(r.PreprocessFailures) > 0 || len(r.ComposeFailures) > 0
}

// Err joins every item failure, or returns nil.
func (r *Result) Err() error {
	var errs []error
	for _, e := range r.PreprocessFailures {
		errs = append(errs, e)
	}
	for _, e := range r.ComposeFailures {
		errs = append(errs, e)
	}
	return errors.Join(errs...)
}

// Orchestrator runs the pipeline once.
type Orchestrator struct {
	cfg         *config.Config
	resolutions []resolution.Resolution
	tools       toolchain.Toolchain
	prober      Prober
	rep         reporter.Reporter
	log         *logging.Logger
	metrics     *metrics.Recorder
	pool        *worker.Pool
	reviewKey   review.KeyWaiter

	mu    sync.Mutex
	state State
}

// New creates an orchestrator in the Idle state.
func New(opts Options) *Orchestrator {
	rep := opts.Reporter
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Orchestrator{
		cfg:         opts.Config,
		resolutions: opts.Resolutions,
		tools:       opts.Toolchain,
		prober:      opts.Prober,
		rep:         rep,
		log:         opts.Logger,
		metrics:     opts.Metrics,
		pool:        worker.NewPool(opts.Config.Workers),
		reviewKey:   opts.ReviewKey,
		state:       Idle,
	}
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) enter(s State, message string) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.log.With("stage", s.String()).Info("entering stage: %s", message)
	o.rep.StageChanged(reporter.StageChange{Stage: s.String(), Message: message})
}

func (o *Orchestrator) fail(stage State, err error) error {
	o.mu.Lock()
	o.state = Failed
	o.mu.Unlock()
	o.log.With("stage", stage.String()).Error(err, "%s failed", stageName(stage))
	return &StageError{Stage: stage, Err: err}
}

// timed runs fn and records its duration for stage.
func (o *Orchestrator) timed(stage State, fn func() error) error {
	start := time.Now()
	err := fn()
	d := time.Since(start)
	o.metrics.ObserveStage(stage.String(), d)
	o.log.With("stage", stage.String()).Debug("stage took %s", d)
	return err
}

// Run executes every stage in order. A fatal stage failure returns a
// *StageError together with whatever Result was gathered so far.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	res := &Result{}
	defer func() { res.Duration = time.Since(start) }()

	o.mu.Lock()
	if o.state != Idle {
		o.mu.Unlock()
		return res, mwerrors.NewInvalidConfigError("orchestrator already ran")
	}
	o.mu.Unlock()
	if len(o.resolutions) == 0 {
		return res, mwerrors.NewMissingArgumentError("resolution list")
	}

	if o.cfg.HasInput() {
		if err := o.timed(Extracting, func() error { return o.extract(ctx) }); err != nil {
			return res, o.fail(Extracting, err)
		}
	}

	if err := o.timed(Preprocessing, func() error { return o.preprocess(ctx, res) }); err != nil {
		return res, o.fail(Preprocessing, err)
	}

	var frameSet layout.FrameSet
	err := o.timed(Discovering, func() error {
		var err error
		frameSet, err = o.discover(ctx)
		return err
	})
	if err != nil {
		return res, o.fail(Discovering, err)
	}
	res.FrameSet = frameSet

	if err := o.timed(Composing, func() error { return o.compose(ctx, frameSet, res) }); err != nil {
		return res, o.fail(Composing, err)
	}

	o.mu.Lock()
	o.state = Done
	o.mu.Unlock()
	o.log.Info("run complete: %d outputs, %d preprocess failures, %d compose failures",
		len(res.Outputs), len(res.PreprocessFailures), len(res.ComposeFailures))
	return res, nil
}
