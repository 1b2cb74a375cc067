package toolchain

import (
	"context"

	"github.com/five82/movie-wallpaper/internal/ffmpeg"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/magick"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// External drives ffmpeg and ImageMagick.
type External struct {
	extractor *ffmpeg.Extractor
	magick    *magick.Magick
}

// Name implements Toolchain.
func (e *External) Name() string { return "magick" }

// Extract implements Toolchain.
func (e *External) Extract(ctx context.Context, req ExtractRequest) error {
	_, err := e.extractor.Extract(ctx, ffmpeg.ExtractParams{
		Input:     req.Input,
		OutputDir: req.OutputDir,
		Threshold: req.Threshold,
		Duration:  req.Duration,
	}, req.Progress)
	return err
}

// Identify implements Toolchain.
func (e *External) Identify(ctx context.Context, dir, file string) (resolution.Resolution, error) {
	return e.magick.Identify(ctx, dir, file)
}

// Preprocess implements Toolchain.
func (e *External) Preprocess(ctx context.Context, src, outDir string) (string, error) {
	return e.magick.Preprocess(ctx, src, outDir)
}

// Compose implements Toolchain.
func (e *External) Compose(ctx context.Context, dir string, l layout.ThumbnailLayout, output string) (string, error) {
	return e.magick.Montage(ctx, dir, l, output)
}
