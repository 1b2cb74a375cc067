package native

import (
	"context"
	"image"
	"math"

	"github.com/disintegration/gift"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/layout"
)

// cellSharpen matches the montage -unsharp 0x3+1+0.01 setting.
var cellSharpen = gift.New(gift.UnsharpMask(3, 1, 0.01))

// FitRect returns the largest rectangle with src's aspect ratio that fits
// in a w by h cell, centered in it.
func FitRect(src image.Rectangle, w, h int) image.Rectangle {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw <= 0 || sh <= 0 {
		return image.Rectangle{}
	}
	scale := math.Min(float64(w)/sw, float64(h)/sh)
	dw := max(int(math.Round(sw*scale)), 1)
	dh := max(int(math.Round(sh*scale)), 1)
	x0 := (w - dw) / 2
	y0 := (h - dh) / 2
	return image.Rect(x0, y0, x0+dw, y0+dh)
}

// CanvasSize returns the montage canvas for count cells.
func CanvasSize(l layout.ThumbnailLayout, count int) image.Point {
	grid := l.GridSize(count)
	return image.Pt(grid.Width, grid.Height)
}

// CellOrigin returns the top-left corner of cell i's image area.
func CellOrigin(l layout.ThumbnailLayout, i int) image.Point {
	col := i % l.Columns
	row := i / l.Columns
	return image.Pt(col*l.SlotWidth()+l.MarginX, row*l.SlotHeight()+l.MarginY)
}

// Montage tiles files row by row onto a transparent canvas and saves it to
// output. Each frame is scaled to fit its cell without distortion.
func Montage(ctx context.Context, files []string, l layout.ThumbnailLayout, output string) error {
	if len(files) == 0 {
		return mwerrors.NewInvalidConfigError("montage needs at least one frame")
	}
	if l.Columns <= 0 || l.CellWidth <= 0 || l.CellHeight <= 0 {
		return mwerrors.NewInvalidConfigError("montage layout " + l.Geometry() + " is not drawable")
	}

	size := CanvasSize(l, len(files))
	canvas := image.NewNRGBA(image.Rect(0, 0, size.X, size.Y))

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return mwerrors.NewCancelledError()
		}
		src, err := imaging.Open(path)
		if err != nil {
			return mwerrors.NewIOError("cannot open frame "+path, err)
		}

		fit := FitRect(src.Bounds(), l.CellWidth, l.CellHeight)
		cell := image.NewNRGBA(image.Rect(0, 0, fit.Dx(), fit.Dy()))
		draw.CatmullRom.Scale(cell, cell.Bounds(), src, src.Bounds(), draw.Src, nil)

		sharp := image.NewNRGBA(cellSharpen.Bounds(cell.Bounds()))
		cellSharpen.Draw(sharp, cell)

		at := CellOrigin(l, i).Add(fit.Min)
		dst := image.Rectangle{Min: at, Max: at.Add(sharp.Bounds().Size())}
		draw.Draw(canvas, dst, sharp, sharp.Bounds().Min, draw.Over)
	}

	if err := imaging.Save(canvas, output); err != nil {
		return mwerrors.NewIOError("cannot write montage "+output, err)
	}
	return nil
}
