package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/ffmpeg"
	"github.com/five82/movie-wallpaper/internal/frames"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/reporter"
	"github.com/five82/movie-wallpaper/internal/review"
	"github.com/five82/movie-wallpaper/internal/toolchain"
	"github.com/five82/movie-wallpaper/internal/util"
	"github.com/five82/movie-wallpaper/internal/worker"
)

const (
	jobPreprocess = "preprocess"
	jobCompose    = "compose"
)

func (o *Orchestrator) extract(ctx context.Context) error {
	o.enter(Extracting, "Extracting scene changes from "+filepath.Base(o.cfg.Input))

	if !util.FileExists(o.cfg.Input) {
		return mwerrors.NewIOError("input is not a readable file: "+o.cfg.Input, nil)
	}
	if !util.IsVideoFile(o.cfg.Input) {
		o.warn(fmt.Sprintf("%s does not have a known video extension", filepath.Base(o.cfg.Input)))
	}

	var duration float64
	if o.prober != nil {
		info, err := o.prober.Probe(ctx, o.cfg.Input)
		switch {
		case err != nil && mwerrors.IsCancelled(err):
			return err
		case err != nil:
			o.log.Warn("ffprobe failed, extraction progress will not show a percentage: %v", err)
		default:
			duration = info.Duration
			o.log.Info("input: %dx%d %s, %.1fs", info.Width, info.Height, info.CodecName, info.Duration)
		}
	}

	req := toolchain.ExtractRequest{
		Input:     o.cfg.Input,
		OutputDir: o.cfg.FramesDir,
		Threshold: o.cfg.SceneThreshold,
		Duration:  duration,
		Progress: func(p ffmpeg.Progress) {
			o.rep.ExtractionProgress(reporter.ExtractionSnapshot{
				ScenesFound: p.CurrentFrame,
				Percent:     p.Percent,
				Speed:       p.Speed,
				ETA:         p.ETA,
			})
		},
	}
	if err := o.tools.Extract(ctx, req); err != nil {
		return err
	}

	files, err := frames.List(o.cfg.FramesDir)
	if err != nil {
		return err
	}
	o.metrics.SetFrames("frames", len(files))
	frames.LogListing(o.cfg.FramesDir, files, o.log)
	if len(files) == 0 {
		return mwerrors.NewIOError(fmt.Sprintf("no scene changes detected above threshold %g", o.cfg.SceneThreshold), nil)
	}

	if o.cfg.Review {
		return o.review(ctx, len(files))
	}
	return nil
}

func (o *Orchestrator) review(ctx context.Context, count int) error {
	if o.reviewKey == nil && !review.IsInteractive(os.Stdin) {
		o.log.Info("stdin is not a terminal, skipping frame review")
		return nil
	}

	o.rep.ReviewPaused(reporter.ReviewInfo{FramesDir: o.cfg.FramesDir, FrameCount: count})
	res, err := review.Wait(ctx, review.Options{
		FramesDir: o.cfg.FramesDir,
		WaitKey:   o.reviewKey,
		OnRemoved: func(name string, remaining int) {
			o.log.Debug("review removed %s, %d remaining", name, remaining)
			o.rep.ReviewFrameRemoved(reporter.ReviewUpdate{Removed: name, Remaining: remaining})
		},
		OnWatchError: func(err error) {
			o.log.Warn("frame watcher: %v", err)
		},
	})
	if errors.Is(err, review.ErrNotInteractive) {
		o.log.Info("stdin is not a terminal, skipping frame review")
		return nil
	}
	if err != nil {
		return err
	}
	o.log.Info("review finished: %s", res.Describe())
	if res.Remaining == 0 {
		return mwerrors.NewIOError("every frame was removed during review", nil)
	}
	return nil
}

func (o *Orchestrator) preprocess(ctx context.Context, res *Result) error {
	if o.cfg.SkipPreprocess && util.DirectoryExists(o.cfg.PreprocessedDir) {
		o.enter(Preprocessing, "Reusing preprocessed frames in "+o.cfg.PreprocessedDir)
		res.PreprocessSkipped = true
		return nil
	}
	o.enter(Preprocessing, "Preprocessing frames")

	files, err := frames.RequireFrames(o.cfg.FramesDir)
	if err != nil {
		return err
	}
	if err := util.EnsureDirectory(o.cfg.PreprocessedDir); err != nil {
		return mwerrors.NewIOError("cannot create "+o.cfg.PreprocessedDir, err)
	}

	errs := o.fanOut(ctx, jobPreprocess, len(files),
		func(i int) string { return filepath.Base(files[i]) },
		func(ctx context.Context, i int) error {
			stderr, err := o.tools.Preprocess(ctx, files[i], o.cfg.PreprocessedDir)
			o.surface(filepath.Base(files[i]), stderr)
			return err
		})
	for i, err := range errs {
		if err != nil {
			res.PreprocessFailures = append(res.PreprocessFailures, &ItemError{Item: filepath.Base(files[i]), Err: err})
		}
	}

	if ctx.Err() != nil {
		return mwerrors.NewCancelledError()
	}
	return nil
}

func (o *Orchestrator) discover(ctx context.Context) (layout.FrameSet, error) {
	o.enter(Discovering, "Discovering frames")

	scaled, err := frames.RequireFrames(o.cfg.PreprocessedDir)
	if err != nil {
		return layout.FrameSet{}, err
	}
	o.metrics.SetFrames("frames_scaled", len(scaled))
	frames.LogListing(o.cfg.PreprocessedDir, scaled, o.log)

	// Raw frames carry the source dimensions when they are still around.
	sample := scaled[0]
	if util.DirectoryExists(o.cfg.FramesDir) {
		if raw, err := frames.List(o.cfg.FramesDir); err == nil && len(raw) > 0 {
			sample = raw[0]
		}
	}

	dims, err := o.tools.Identify(ctx, filepath.Dir(sample), filepath.Base(sample))
	if err != nil {
		return layout.FrameSet{}, err
	}
	if !dims.Valid() {
		return layout.FrameSet{}, mwerrors.NewIOError(fmt.Sprintf("%s reports invalid dimensions %s", sample, dims), nil)
	}

	set := layout.FrameSet{Count: len(scaled), Width: dims.Width, Height: dims.Height}
	o.rep.FramesDiscovered(reporter.FrameSummary{
		Count:     set.Count,
		Width:     set.Width,
		Height:    set.Height,
		SourceDir: filepath.Dir(sample),
	})
	return set, nil
}

func (o *Orchestrator) compose(ctx context.Context, set layout.FrameSet, res *Result) error {
	o.enter(Composing, "Composing "+util.Plural(len(o.resolutions), "montage"))

	if err := util.EnsureDirectory(o.cfg.OutputDir); err != nil {
		return mwerrors.NewIOError("cannot create "+o.cfg.OutputDir, err)
	}
	if err := util.EnsureDirectoryWritable(o.cfg.OutputDir); err != nil {
		return mwerrors.NewIOError("output directory is not usable", err)
	}

	params := o.cfg.LayoutParams()
	res.Compositions = make([]Composition, len(o.resolutions))
	for i, r := range o.resolutions {
		res.Compositions[i] = Composition{Resolution: r, Output: filepath.Join(o.cfg.OutputDir, r.OutputName())}
	}

	errs := o.fanOut(ctx, jobCompose, len(o.resolutions),
		func(i int) string { return o.resolutions[i].String() },
		func(ctx context.Context, i int) error {
			c := &res.Compositions[i]
			l, err := layout.Compute(c.Resolution, set, params)
			if err != nil {
				return err
			}
			c.Layout = l
			c.Fit = layout.CheckFit(l, c.Resolution, set.Count, params)
			o.metrics.SetColumns(c.Resolution.String(), l.Columns)
			o.log.Info("%s: geometry %s, %d columns, %d rows", c.Resolution, l.Geometry(), l.Columns, c.Fit.ImpliedRows)
			o.rep.LayoutComputed(reporter.LayoutSummary{
				Resolution: c.Resolution.String(),
				Geometry:   l.Geometry(),
				Columns:    l.Columns,
				Rows:       c.Fit.ImpliedRows,
				GridWidth:  c.Fit.Grid.Width,
				GridHeight: c.Fit.Grid.Height,
				Overflows:  c.Fit.OverflowsX || c.Fit.OverflowsY,
			})
			if c.Fit.OverflowsX {
				o.warn(fmt.Sprintf("%s: %d columns need %dpx but only %.0fpx are usable",
					c.Resolution, l.Columns, c.Fit.Grid.Width, c.Fit.UsableWidth))
			}
			if c.Fit.OverflowsY {
				o.warn(fmt.Sprintf("%s: %d rows need %dpx but only %.0fpx are usable",
					c.Resolution, c.Fit.ImpliedRows, c.Fit.Grid.Height, c.Fit.UsableHeight))
			}

			start := time.Now()
			stderr, err := o.tools.Compose(ctx, o.cfg.PreprocessedDir, l, c.Output)
			o.surface(c.Resolution.String(), stderr)
			if err != nil {
				return err
			}
			size, _ := util.GetFileSize(c.Output)
			o.rep.MontageComplete(reporter.MontageOutcome{
				Resolution: c.Resolution.String(),
				OutputPath: c.Output,
				Size:       size,
				Duration:   time.Since(start),
			})
			return nil
		})

	for i, err := range errs {
		c := &res.Compositions[i]
		c.Err = err
		if err != nil {
			res.ComposeFailures = append(res.ComposeFailures, &ItemError{Item: c.Resolution.String(), Err: err})
			continue
		}
		res.Outputs = append(res.Outputs, c.Output)
	}

	if ctx.Err() != nil {
		return mwerrors.NewCancelledError()
	}
	return nil
}

// fanOut runs n jobs on the pool and reports their progress under kind.
func (o *Orchestrator) fanOut(ctx context.Context, kind string, n int, name func(int) string, fn func(ctx context.Context, i int) error) []error {
	o.rep.JobsStarted(kind, n)
	progress := worker.Progress{Total: n}
	return o.pool.Run(ctx, n, fn, func(r worker.Result) {
		item := name(r.Index)
		if r.Err != nil {
			progress.Failed++
			o.log.With("job", kind).Error(r.Err, "%s failed", item)
		} else {
			progress.Complete++
		}
		o.metrics.JobDone(kind, r.Err)
		o.rep.JobProgress(reporter.JobSnapshot{
			Kind:     kind,
			Item:     item,
			Complete: progress.Complete,
			Failed:   progress.Failed,
			Total:    progress.Total,
			Err:      r.Err,
		})
	})
}

// surface turns collaborator diagnostics into warnings.
func (o *Orchestrator) surface(item, stderr string) {
	stderr = strings.TrimSpace(stderr)
	if stderr == "" {
		return
	}
	for _, line := range strings.Split(stderr, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			o.warn(item + ": " + line)
		}
	}
}

func (o *Orchestrator) warn(msg string) {
	o.log.Warn("%s", msg)
	o.rep.Warning(msg)
}
