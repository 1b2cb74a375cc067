package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/five82/movie-wallpaper/internal/layout"
)

// Default constants
const (
	// DefaultFramesDirName holds raw scene-change extracts under the work directory.
	DefaultFramesDirName = "frames"

	// DefaultPreprocessedDirName holds filtered, downscaled frames under the work directory.
	DefaultPreprocessedDirName = "frames_scaled"

	// DefaultSceneThreshold is the ffmpeg scene score above which a frame is kept.
	DefaultSceneThreshold = 0.33

	// DefaultMagickBinary is the ImageMagick 7 entry point.
	DefaultMagickBinary = "magick"

	// DefaultFFmpegBinary is the ffmpeg executable.
	DefaultFFmpegBinary = "ffmpeg"

	// DefaultFFprobeBinary is the ffprobe executable.
	DefaultFFprobeBinary = "ffprobe"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "MOVIE_WALLPAPER_"
)

// Backend selects the toolchain used for identify/preprocess/compose.
type Backend string

const (
	// BackendMagick shells out to ImageMagick.
	BackendMagick Backend = "magick"
	// BackendNative processes images in-process.
	BackendNative Backend = "native"
)

// ParseBackend parses a string into a Backend.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "magick", "imagemagick":
		return BackendMagick, nil
	case "native", "go":
		return BackendNative, nil
	default:
		return "", fmt.Errorf("%w: '%s', valid options: magick, native", ErrInvalidBackend, s)
	}
}

// String returns the string representation of the backend.
func (b Backend) String() string {
	return string(b)
}

// Config holds all configuration for a wallpaper run.
type Config struct {
	// Paths. Empty derived paths are filled in by Validate.
	WorkDir         string
	FramesDir       string
	PreprocessedDir string
	OutputDir       string
	LogDir          string

	// Input video; empty reuses previously extracted frames.
	Input string

	// Comma-separated WxH list.
	Resolutions string

	// Behaviour
	SkipPreprocess bool // reuse PreprocessedDir when it exists
	Review         bool // pause after extraction for manual culling
	Workers        int  // 0 means one per logical CPU
	SceneThreshold float64

	// Toolchain
	Backend       Backend
	MagickBinary  string
	FFmpegBinary  string
	FFprobeBinary string

	// Layout tuning
	WidthFactor           float64
	HeightFactor          float64
	MarginRatioX          float64
	VerticalMarginDivisor float64

	// Output
	MetricsFile string
	JSONOutput  bool
	Verbose     bool
	NoLog       bool
}

// NewConfig creates a new Config with default values rooted at workDir.
func NewConfig(workDir string) *Config {
	return &Config{
		WorkDir:               workDir,
		Review:                true,
		SceneThreshold:        DefaultSceneThreshold,
		Backend:               BackendMagick,
		MagickBinary:          DefaultMagickBinary,
		FFmpegBinary:          DefaultFFmpegBinary,
		FFprobeBinary:         DefaultFFprobeBinary,
		WidthFactor:           layout.DefaultWidthFactor,
		HeightFactor:          layout.DefaultHeightFactor,
		MarginRatioX:          layout.DefaultMarginRatioX,
		VerticalMarginDivisor: layout.DefaultVerticalMarginDivisor,
	}
}

// Validate checks the configuration for errors and derives default paths.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Resolutions) == "" {
		return ErrMissingResolution
	}

	if c.WidthFactor <= 0 || c.WidthFactor > 1 {
		return fmt.Errorf("%w: width factor must be in (0,1], got %g", ErrInvalidFactor, c.WidthFactor)
	}
	if c.HeightFactor <= 0 || c.HeightFactor > 1 {
		return fmt.Errorf("%w: height factor must be in (0,1], got %g", ErrInvalidFactor, c.HeightFactor)
	}
	if c.MarginRatioX < 0 {
		return fmt.Errorf("%w: horizontal margin ratio must be >= 0, got %g", ErrInvalidMargin, c.MarginRatioX)
	}
	if c.VerticalMarginDivisor <= 0 {
		return fmt.Errorf("%w: vertical margin divisor must be > 0, got %g", ErrInvalidMargin, c.VerticalMarginDivisor)
	}
	if c.SceneThreshold <= 0 || c.SceneThreshold >= 1 {
		return fmt.Errorf("%w: must be in (0,1), got %g", ErrInvalidThreshold, c.SceneThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: must be >= 0, got %d", ErrInvalidWorkers, c.Workers)
	}
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}

	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.FramesDir == "" {
		c.FramesDir = filepath.Join(c.WorkDir, DefaultFramesDirName)
	}
	if c.PreprocessedDir == "" {
		c.PreprocessedDir = filepath.Join(c.WorkDir, DefaultPreprocessedDirName)
	}
	if c.OutputDir == "" {
		c.OutputDir = c.WorkDir
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(c.WorkDir, "logs")
	}

	// Collaborators run inside FramesDir and PreprocessedDir, so every
	// path handed to them must be absolute.
	for _, p := range []*string{&c.WorkDir, &c.FramesDir, &c.PreprocessedDir, &c.OutputDir, &c.LogDir, &c.Input} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolving %s: %w", *p, err)
		}
		*p = abs
	}

	return nil
}

// LayoutParams returns the layout tuning carried by the config.
func (c *Config) LayoutParams() layout.Params {
	return layout.Params{
		WidthFactor:           c.WidthFactor,
		HeightFactor:          c.HeightFactor,
		MarginRatioX:          c.MarginRatioX,
		VerticalMarginDivisor: c.VerticalMarginDivisor,
	}
}

// HasInput reports whether a source video was supplied.
func (c *Config) HasInput() bool {
	return c.Input != ""
}
