// Package magick drives ImageMagick for frame identification, preprocessing
// and montage composition.
package magick

import (
	"context"
	"path/filepath"
	"strings"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/layout"
	"github.com/five82/movie-wallpaper/internal/procexec"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// IdentifyFormat asks identify for WIDTHxHEIGHT.
const IdentifyFormat = "%[w]x%[h]"

// MontageInput is the glob montage expands inside the preprocessed directory.
const MontageInput = "*.png"

// Transparent is the montage background.
const Transparent = "#00000000"

// preprocessChain is the per-frame filter chain. The values are a visual
// tuning and are kept verbatim.
var preprocessChain = []string{
	"-gamma", ".45455",
	"-despeckle",
	"-statistic", "Nonpeak", "1.75x1.75",
	"-wavelet-denoise", "18x0.06",
	"-adaptive-sharpen", "3",
	"+sigmoidal-contrast", "4,48%",
	"-filter", "Lanczos2Sharp",
	"-resize", "50%",
	"-unsharp", "0x2+1+0.04",
	"-linear-stretch", "0.3",
	"-modulate", "100x110",
	"-gamma", "2.2",
}

// Magick runs ImageMagick 7 style "magick" commands.
type Magick struct {
	Binary string
	Runner procexec.Runner
}

// New creates a Magick; an empty binary means "magick".
func New(binary string, runner procexec.Runner) *Magick {
	if binary == "" {
		binary = "magick"
	}
	return &Magick{Binary: binary, Runner: runner}
}

// IdentifyArgs returns the arguments for reading one file's dimensions.
func IdentifyArgs(file string) []string {
	return []string{"identify", "-ping", "-format", IdentifyFormat, file}
}

// PreprocessArgs returns the arguments that filter src into a file with the
// same base name in the working directory.
func PreprocessArgs(src string) []string {
	args := make([]string, 0, len(preprocessChain)+2)
	args = append(args, src)
	args = append(args, preprocessChain...)
	return append(args, filepath.Base(src))
}

// MontageArgs returns the arguments that tile every PNG of the working
// directory into output using l.
func MontageArgs(l layout.ThumbnailLayout, output string) []string {
	return []string{
		"montage", MontageInput,
		"-background", Transparent,
		"-filter", "Lanczos2Sharp",
		"-unsharp", "0x3+1+0.01",
		"-geometry", l.Geometry(),
		"-tile", l.Tile(),
		output,
	}
}

// Identify returns the dimensions of file, which is resolved against dir.
func (m *Magick) Identify(ctx context.Context, dir, file string) (resolution.Resolution, error) {
	out, err := m.Runner.Run(ctx, procexec.Command{Name: m.Binary, Args: IdentifyArgs(file), Dir: dir})
	if err != nil {
		return resolution.Resolution{}, err
	}
	r, err := resolution.ParseToken(strings.TrimSpace(out.Stdout))
	if err != nil {
		return resolution.Resolution{}, mwerrors.NewExternalToolError("unexpected identify output for "+file, err)
	}
	return r, nil
}

// Preprocess filters src into outDir and returns the collaborator's stderr.
func (m *Magick) Preprocess(ctx context.Context, src, outDir string) (string, error) {
	out, err := m.Runner.Run(ctx, procexec.Command{Name: m.Binary, Args: PreprocessArgs(src), Dir: outDir})
	return out.Stderr, err
}

// Montage composes every PNG in dir into output and returns stderr.
func (m *Magick) Montage(ctx context.Context, dir string, l layout.ThumbnailLayout, output string) (string, error) {
	out, err := m.Runner.Run(ctx, procexec.Command{Name: m.Binary, Args: MontageArgs(l, output), Dir: dir})
	return out.Stderr, err
}
