package toolchain

import (
	"context"
	"path/filepath"

	"github.com/five82/movie-wallpaper/internal/ffmpeg"
	"github.com/five82/movie-wallpaper/internal/frames"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/native"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// Native extracts with ffmpeg and does all image work in-process.
type Native struct {
	extractor *ffmpeg.Extractor
}

// Name implements Toolchain.
func (n *Native) Name() string { return "native" }

// Extract implements Toolchain.
func (n *Native) Extract(ctx context.Context, req ExtractRequest) error {
	_, err := n.extractor.Extract(ctx, ffmpeg.ExtractParams{
		Input:     req.Input,
		OutputDir: req.OutputDir,
		Threshold: req.Threshold,
		Duration:  req.Duration,
	}, req.Progress)
	return err
}

// Identify implements Toolchain.
func (n *Native) Identify(_ context.Context, dir, file string) (resolution.Resolution, error) {
	if !filepath.IsAbs(file) {
		file = filepath.Join(dir, file)
	}
	return native.Identify(file)
}

// Preprocess implements Toolchain.
func (n *Native) Preprocess(ctx context.Context, src, outDir string) (string, error) {
	return "", native.Preprocess(ctx, src, outDir)
}

// Compose implements Toolchain. Frames are tiled in name order, matching
// the montage glob.
func (n *Native) Compose(ctx context.Context, dir string, l layout.ThumbnailLayout, output string) (string, error) {
	files, err := frames.RequireFrames(dir)
	if err != nil {
		return "", err
	}
	return "", native.Montage(ctx, files, l, output)
}
