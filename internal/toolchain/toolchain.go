// Package toolchain is the boundary between the pipeline and the programs
// that actually touch pixels.
package toolchain

import (
	"context"

	"github.com/five82/movie-wallpaper/internal/config"
	"github.com/five82/movie-wallpaper/internal/ffmpeg"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/magick"
	"github.com/five82/movie-wallpaper/internal/procexec"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// ExtractRequest describes a scene extraction.
type ExtractRequest struct {
	Input     string
	OutputDir string
	Threshold float64
	// Duration of the input in seconds, zero when unknown.
	Duration float64
	Progress ffmpeg.ProgressCallback
}

// Toolchain extracts, identifies, preprocesses and composes frames.
// Preprocess and Compose return whatever diagnostics the collaborator
// printed so callers can surface them as warnings.
type Toolchain interface {
	Name() string
	Extract(ctx context.Context, req ExtractRequest) error
	Identify(ctx context.Context, dir, file string) (resolution.Resolution, error)
	Preprocess(ctx context.Context, src, outDir string) (string, error)
	Compose(ctx context.Context, dir string, l layout.ThumbnailLayout, output string) (string, error)
}

// New returns the toolchain selected by cfg.Backend.
func New(cfg *config.Config, runner procexec.Runner) Toolchain {
	extractor := ffmpeg.NewExtractor(cfg.FFmpegBinary, runner)
	if cfg.Backend == config.BackendNative {
		return &Native{extractor: extractor}
	}
	return &External{
		extractor: extractor,
		magick:    magick.New(cfg.MagickBinary, runner),
	}
}
