package reporter

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/movie-wallpaper/internal/util"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	outMu      sync.Mutex
	out        io.Writer
	errOut     io.Writer
	progress   *progressbar.ProgressBar
	maxPercent float32
	lastStage  string
	verbose    bool
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	faint      *color.Color
}

// NewTerminalReporter creates a terminal reporter writing to stdout, with
// errors and progress bars on stderr.
func NewTerminalReporter(verbose bool) *TerminalReporter {
	return NewTerminalReporterWithWriters(os.Stdout, os.Stderr, verbose)
}

// NewTerminalReporterWithWriters creates a terminal reporter with custom writers.
func NewTerminalReporterWithWriters(out, errOut io.Writer, verbose bool) *TerminalReporter {
	return &TerminalReporter{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

func (r *TerminalReporter) startProgress(max int64, label string) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		max,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(r.errOut),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      label + " [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) section(title string) {
	_, _ = fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	r.section("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "CPUs:", fmt.Sprintf("%d (%s/%s)", summary.NumCPU, summary.OS, summary.Arch))
}

func (r *TerminalReporter) RunStarted(summary RunSummary) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	r.section("RUN")
	input := summary.Input
	if input == "" {
		input = r.faint.Sprint("none, reusing extracted frames")
	}
	r.printLabel(12, "Input:", input)
	r.printLabel(12, "Work dir:", summary.WorkDir)
	r.printLabel(12, "Output dir:", summary.OutputDir)
	r.printLabel(12, "Resolutions:", strings.Join(summary.Resolutions, ", "))
	r.printLabel(12, "Backend:", fmt.Sprintf("%s, %d workers", summary.Backend, summary.Workers))
	if summary.Skip {
		r.printLabel(12, "Cache:", "reuse preprocessed frames if present")
	}
}

func (r *TerminalReporter) StageChanged(update StageChange) {
	r.finishProgress()

	r.mu.Lock()
	changed := r.lastStage != update.Stage
	r.lastStage = update.Stage
	r.mu.Unlock()

	r.outMu.Lock()
	defer r.outMu.Unlock()
	if changed {
		r.section(strings.ToUpper(update.Stage))
	}
	if update.Message != "" {
		_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.magenta.Sprint("›"), update.Message)
	}
}

func (r *TerminalReporter) ExtractionProgress(progress ExtractionSnapshot) {
	r.mu.Lock()
	needBar := r.progress == nil
	r.mu.Unlock()
	if needBar {
		r.startProgress(100, "Extracting")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	clamped := min(max(progress.Percent, 0), 100)
	if clamped >= r.maxPercent {
		r.maxPercent = clamped
		_ = r.progress.Set64(int64(clamped))
	}

	desc := fmt.Sprintf("%s, speed %.1fx, eta %s",
		util.Plural(int(progress.ScenesFound), "scene"), progress.Speed, util.FormatDuration(progress.ETA.Seconds()))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) ReviewPaused(info ReviewInfo) {
	r.finishProgress()
	r.outMu.Lock()
	defer r.outMu.Unlock()
	r.section("REVIEW")
	_, _ = fmt.Fprintf(r.out, "  %s extracted into %s\n", util.Plural(info.FrameCount, "frame"), r.bold.Sprint(info.FramesDir))
	_, _ = fmt.Fprintln(r.out, "  Remove falsely identified or unwanted scene change frames now.")
	_, _ = r.yellow.Fprintln(r.out, "  Press any key to continue...")
}

func (r *TerminalReporter) ReviewFrameRemoved(update ReviewUpdate) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintf(r.out, "  %s %s (%d left)\n", r.red.Sprint("-"), update.Removed, update.Remaining)
}

func (r *TerminalReporter) JobsStarted(kind string, total int) {
	label := kind
	if label != "" {
		label = strings.ToUpper(label[:1]) + label[1:]
	}
	r.startProgress(int64(total), label)
}

func (r *TerminalReporter) JobProgress(snapshot JobSnapshot) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Set(snapshot.Complete + snapshot.Failed)
		if snapshot.Failed > 0 {
			r.progress.Describe(r.red.Sprintf("%d failed", snapshot.Failed))
		}
	}
	r.mu.Unlock()

	if snapshot.Complete+snapshot.Failed == snapshot.Total {
		r.finishProgress()
	}
}

func (r *TerminalReporter) FramesDiscovered(summary FrameSummary) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	r.printLabel(8, "Frames:", fmt.Sprintf("%d", summary.Count))
	r.printLabel(8, "Size:", fmt.Sprintf("%dx%d (read from %s)", summary.Width, summary.Height, summary.SourceDir))
}

func (r *TerminalReporter) LayoutComputed(summary LayoutSummary) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	grid := fmt.Sprintf("%dx%d", summary.GridWidth, summary.GridHeight)
	if summary.Overflows {
		grid = r.yellow.Sprint(grid + " overflows")
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s geometry %s, %d columns x %d rows, grid %s\n",
		r.magenta.Sprint("›"), r.bold.Sprintf("%-10s", summary.Resolution),
		summary.Geometry, summary.Columns, summary.Rows, grid)
}

func (r *TerminalReporter) MontageComplete(outcome MontageOutcome) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintf(r.out, "  %s %s -> %s (%s, %s)\n",
		r.green.Sprint("✓"), outcome.Resolution, outcome.OutputPath,
		util.FormatBytes(outcome.Size), util.FormatElapsed(outcome.Duration))
}

func (r *TerminalReporter) Warning(message string) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = r.yellow.Fprintf(r.out, "  WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	r.finishProgress()
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) RunComplete(summary RunOutcome) {
	r.finishProgress()
	r.outMu.Lock()
	defer r.outMu.Unlock()
	r.section("RESULTS")
	for _, path := range summary.Outputs {
		_, _ = fmt.Fprintf(r.out, "  %s\n", r.green.Sprint(path))
	}
	failures := summary.PreprocessFailures + summary.ComposeFailures
	if failures > 0 {
		_, _ = r.red.Fprintf(r.out, "  %d preprocess and %d compose failures\n",
			summary.PreprocessFailures, summary.ComposeFailures)
	}
	_, _ = fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint("Time:"), util.FormatElapsed(summary.TotalTime))

	_, _ = fmt.Fprintln(r.out)
	if failures == 0 {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.green.Sprint("✓"),
			r.bold.Sprintf("Created %s", util.Plural(len(summary.Outputs), "wallpaper")))
	} else {
		_, _ = fmt.Fprintf(r.out, "%s %s\n", r.red.Sprint("✗"),
			r.bold.Sprintf("Created %s with errors", util.Plural(len(summary.Outputs), "wallpaper")))
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	r.outMu.Lock()
	defer r.outMu.Unlock()
	_, _ = fmt.Fprintf(r.out, "  %s\n", r.faint.Sprint(message))
}
