// Package native implements frame identification, preprocessing and
// montage composition in-process, for hosts without ImageMagick.
//
// The preprocessing chain approximates the ImageMagick one with gift
// filters; output is close but not pixel-identical.
package native

import (
	"context"
	"image"
	_ "image/png" // register decoder for DecodeConfig
	"os"
	"path/filepath"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// Identify reads the dimensions of path from its header only.
func Identify(path string) (resolution.Resolution, error) {
	f, err := os.Open(path)
	if err != nil {
		return resolution.Resolution{}, mwerrors.NewIOError("cannot open frame "+path, err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return resolution.Resolution{}, mwerrors.NewIOError("cannot decode frame header "+path, err)
	}
	return resolution.Resolution{Width: cfg.Width, Height: cfg.Height}, nil
}

// PreprocessFilter returns the gift chain applied to a frame of the given
// bounds. The output is half the input size.
func PreprocessFilter(bounds image.Rectangle) *gift.GIFT {
	w := max(bounds.Dx()/2, 1)
	h := max(bounds.Dy()/2, 1)
	return gift.New(
		gift.Gamma(0.45455),
		gift.Median(3, false),
		gift.UnsharpMask(1, 0.6, 0),
		gift.Sigmoid(0.48, -4),
		gift.Resize(w, h, gift.LanczosResampling),
		gift.UnsharpMask(2, 1, 0.04),
		gift.Saturation(10),
		gift.Gamma(2.2),
	)
}

// Preprocess filters src and writes the result into outDir under the same
// base name.
func Preprocess(ctx context.Context, src, outDir string) error {
	if err := ctx.Err(); err != nil {
		return mwerrors.NewCancelledError()
	}
	img, err := imaging.Open(src)
	if err != nil {
		return mwerrors.NewIOError("cannot open frame "+src, err)
	}

	g := PreprocessFilter(img.Bounds())
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)

	out := filepath.Join(outDir, filepath.Base(src))
	if err := imaging.Save(dst, out); err != nil {
		return mwerrors.NewIOError("cannot write preprocessed frame "+out, err)
	}
	return nil
}
