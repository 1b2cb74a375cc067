// Package main provides the CLI entry point for movie-wallpaper.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	wallpaper "github.com/five82/movie-wallpaper"
	"github.com/five82/movie-wallpaper/internal/config"
	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/reporter"
)

const appName = "movie-wallpaper"

const license = `Movie-wallpaper licensed under GNU General Public License version 3 or later;
Full License available at <http://gnu.org/licenses/gpl.html>.
This is free software: you are free to change and redistribute it.
There is NO WARRANTY, to the extent permitted by law.`

var longHelp = strings.TrimSpace(`
Create a wallpaper composed of tiled frames of scene changes from a video.

Frames are extracted with ffmpeg into WORK_DIR/frames, filtered into
WORK_DIR/frames_scaled, and tiled into one montage-WIDTHxHEIGHT.png per
target resolution. Without INPUT the frames already in WORK_DIR are reused.

The magick backend needs ImageMagick 7 ('magick') and ffmpeg on PATH.
`)

var exampleUsage = strings.TrimSpace(`
  movie-wallpaper -r 1920x1080,3840x2160 movie.mkv
  movie-wallpaper -r 2560x1440 --skip
  movie-wallpaper -r 1920x1080 --backend native --no-review --json movie.mkv
`)

// Exit codes.
const (
	exitOK        = 0
	exitFailure   = 1
	exitCancelled = 130
)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev"
}

// cliFlags holds flag values that do not map one-to-one onto Config.
type cliFlags struct {
	configPath  string
	backend     string
	noReview    bool
	showLicense bool
	eventsFile  string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	code := exitOK
	root := newRootCmd(stdout, stderr, &code)
	root.SetArgs(args)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		if code == exitOK {
			code = exitFailure
		}
	}
	return code
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	cfg := config.NewConfig(".")
	var fl cliFlags

	root := &cobra.Command{
		Use:           appName + " [INPUT]",
		Short:         "Tile the scene changes of a video into desktop wallpapers",
		Long:          longHelp,
		Example:       exampleUsage,
		Version:       fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fl.showLicense {
				fmt.Fprintln(stdout, license)
				return nil
			}
			if len(args) == 1 {
				cfg.Input = args[0]
			}
			if err := loadConfig(cmd, cfg, &fl); err != nil {
				return err
			}

			gen, err := wallpaper.NewFromConfig(cfg)
			if err != nil {
				return err
			}

			rep, closeRep, err := newReporter(cfg, fl.eventsFile, stdout, stderr)
			if err != nil {
				return err
			}
			defer closeRep()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			res, err := gen.Generate(ctx, rep)
			if res != nil && !cfg.JSONOutput {
				printFailures(stderr, res)
			}
			if mwerrors.IsCancelled(err) {
				*code = exitCancelled
			}
			return err
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	f := root.Flags()
	f.StringVarP(&cfg.Resolutions, "resolution", "r", "", "comma-separated target display resolutions, e.g. 1920x1080,3840x2160")
	f.BoolVarP(&cfg.SkipPreprocess, "skip", "s", false, "skip preprocessing if the preprocessed directory exists")
	f.BoolVarP(&fl.showLicense, "license", "l", false, "display the license information")

	f.StringVar(&fl.configPath, "config", "", "path to config file (default: $XDG_CONFIG_HOME/movie-wallpaper/config.toml)")
	f.StringVar(&cfg.WorkDir, "work-dir", cfg.WorkDir, "directory holding frames/ and frames_scaled/")
	f.StringVar(&cfg.OutputDir, "output-dir", "", "directory for montage files (default: work dir)")
	f.StringVar(&cfg.FramesDir, "frames-dir", "", "directory for extracted frames (default: WORK_DIR/frames)")
	f.StringVar(&cfg.PreprocessedDir, "preprocessed-dir", "", "directory for preprocessed frames (default: WORK_DIR/frames_scaled)")

	f.IntVar(&cfg.Workers, "workers", 0, "parallel preprocess/compose jobs (default: one per CPU)")
	f.StringVar(&fl.backend, "backend", string(cfg.Backend), "image toolchain: magick or native")
	f.Float64Var(&cfg.SceneThreshold, "scene-threshold", cfg.SceneThreshold, "ffmpeg scene score above which a frame is kept (0-1)")
	f.BoolVar(&fl.noReview, "no-review", false, "do not pause after extraction for manual frame culling")

	f.StringVar(&cfg.MagickBinary, "magick", cfg.MagickBinary, "ImageMagick executable")
	f.StringVar(&cfg.FFmpegBinary, "ffmpeg", cfg.FFmpegBinary, "ffmpeg executable")
	f.StringVar(&cfg.FFprobeBinary, "ffprobe", cfg.FFprobeBinary, "ffprobe executable")

	f.Float64Var(&cfg.WidthFactor, "width-factor", cfg.WidthFactor, "fraction of display width used by the grid")
	f.Float64Var(&cfg.HeightFactor, "height-factor", cfg.HeightFactor, "fraction of display height used by the grid")
	f.Float64Var(&cfg.MarginRatioX, "margin-ratio-x", cfg.MarginRatioX, "horizontal margin as a fraction of cell width")
	f.Float64Var(&cfg.VerticalMarginDivisor, "vertical-margin-divisor", cfg.VerticalMarginDivisor, "divisor shaping the vertical margin of wide frames")

	f.BoolVar(&cfg.JSONOutput, "json", false, "emit NDJSON progress events on stdout")
	f.StringVar(&fl.eventsFile, "events-file", "", "also append NDJSON progress events to this file")
	f.StringVar(&cfg.MetricsFile, "metrics-file", "", "write Prometheus textfile metrics here after the run")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "enable verbose output for troubleshooting")
	f.StringVar(&cfg.LogDir, "log-dir", "", "log directory (default: WORK_DIR/logs)")
	f.BoolVar(&cfg.NoLog, "no-log", false, "disable the run log file")

	return root
}

// loadConfig layers the config file and MOVIE_WALLPAPER_* environment under
// the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, cfg *config.Config, fl *cliFlags) error {
	changed := map[string]bool{}
	cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

	cfgFile := fl.configPath
	if cfgFile == "" {
		cfgFile = config.DefaultConfigPath()
	}
	if cfgFile != "" && config.FileExists(cfgFile) {
		fc, err := config.LoadFileConfig(cfgFile)
		if err != nil {
			return mwerrors.WrapInvalidConfig("load config", err)
		}
		if err := config.ApplyFileConfig(cfg, fc, changed); err != nil {
			return mwerrors.WrapInvalidConfig("apply "+cfgFile, err)
		}
	} else if fl.configPath != "" {
		return mwerrors.NewIOError("config file not found: "+fl.configPath, nil)
	}

	if err := config.ApplyEnvConfig(cfg, changed); err != nil {
		return mwerrors.WrapInvalidConfig("environment", err)
	}

	if changed["backend"] {
		b, err := config.ParseBackend(fl.backend)
		if err != nil {
			return mwerrors.WrapInvalidConfig("--backend", err)
		}
		cfg.Backend = b
	}
	if changed["no-review"] {
		cfg.Review = !fl.noReview
	}
	return nil
}

func newReporter(cfg *config.Config, eventsFile string, stdout, stderr io.Writer) (reporter.Reporter, func(), error) {
	var primary reporter.Reporter
	if cfg.JSONOutput {
		primary = reporter.NewJSONReporterWithWriter(stdout)
	} else {
		primary = reporter.NewTerminalReporterWithWriters(stdout, stderr, cfg.Verbose)
	}
	if eventsFile == "" {
		return primary, func() {}, nil
	}

	f, err := os.OpenFile(eventsFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, mwerrors.NewIOError("cannot open events file "+eventsFile, err)
	}
	rep := reporter.NewCompositeReporter(primary, reporter.NewJSONReporterWithWriter(f))
	return rep, func() { _ = f.Close() }, nil
}

func printFailures(w io.Writer, res *wallpaper.Result) {
	for _, err := range res.PreprocessFailures {
		fmt.Fprintf(w, "preprocess failed: %v\n", err)
	}
	for _, err := range res.ComposeFailures {
		fmt.Fprintf(w, "compose failed: %v\n", err)
	}
}
