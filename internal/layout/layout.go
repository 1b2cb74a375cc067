// Package layout computes thumbnail grid geometry that fills a display
// without distorting the aspect ratio of the source frames.
package layout

import (
	"fmt"
	"math"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

// Default tuning constants.
const (
	// DefaultWidthFactor is the fraction of display width available to the grid.
	DefaultWidthFactor = 0.94

	// DefaultHeightFactor is the fraction of display height available to the grid.
	DefaultHeightFactor = 0.82

	// DefaultMarginRatioX is the horizontal margin as a fraction of cell width.
	DefaultMarginRatioX = 0.04

	// DefaultVerticalMarginDivisor shapes the vertical margin ratio:
	// (frame_w - frame_h) / (divisor * frame_h). Wider frames get more vertical space.
	DefaultVerticalMarginDivisor = 5.0

	// crossTermWeight weights the margin interaction term of the cell area.
	crossTermWeight = 5.0
)

// Params holds the tunable constants of the calculator.
type Params struct {
	WidthFactor           float64
	HeightFactor          float64
	MarginRatioX          float64
	VerticalMarginDivisor float64
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		WidthFactor:           DefaultWidthFactor,
		HeightFactor:          DefaultHeightFactor,
		MarginRatioX:          DefaultMarginRatioX,
		VerticalMarginDivisor: DefaultVerticalMarginDivisor,
	}
}

// Validate checks that the params describe a usable sub-region.
func (p Params) Validate() error {
	if p.WidthFactor <= 0 || p.WidthFactor > 1 {
		return mwerrors.NewInvalidConfigError(fmt.Sprintf("width factor must be in (0,1], got %g", p.WidthFactor))
	}
	if p.HeightFactor <= 0 || p.HeightFactor > 1 {
		return mwerrors.NewInvalidConfigError(fmt.Sprintf("height factor must be in (0,1], got %g", p.HeightFactor))
	}
	if p.MarginRatioX < 0 {
		return mwerrors.NewInvalidConfigError(fmt.Sprintf("horizontal margin ratio must be non-negative, got %g", p.MarginRatioX))
	}
	if p.VerticalMarginDivisor <= 0 {
		return mwerrors.NewInvalidConfigError(fmt.Sprintf("vertical margin divisor must be positive, got %g", p.VerticalMarginDivisor))
	}
	return nil
}

// MarginRatioY returns the vertical margin ratio for a frame shape.
// Frames taller than wide get no vertical margin.
func (p Params) MarginRatioY(frameW, frameH int) float64 {
	r := float64(frameW-frameH) / (p.VerticalMarginDivisor * float64(frameH))
	return math.Max(r, 0)
}

// FrameSet describes the population of preprocessed frames.
type FrameSet struct {
	Count  int
	Width  int
	Height int
}

// Ratio returns the frame width-to-height ratio.
func (f FrameSet) Ratio() float64 {
	return float64(f.Width) / float64(f.Height)
}

// ThumbnailLayout is the computed grid for one display resolution.
type ThumbnailLayout struct {
	CellWidth  int
	CellHeight int
	MarginX    int
	MarginY    int
	Columns    int
}

// Geometry returns the montage geometry string {w}x{h}+{mx}+{my}.
func (l ThumbnailLayout) Geometry() string {
	return fmt.Sprintf("%dx%d+%d+%d", l.CellWidth, l.CellHeight, l.MarginX, l.MarginY)
}

// Tile returns the montage tile string (column count only; rows wrap).
func (l ThumbnailLayout) Tile() string {
	return fmt.Sprintf("%d", l.Columns)
}

// SlotWidth is the horizontal space one cell occupies including margins.
func (l ThumbnailLayout) SlotWidth() int {
	return l.CellWidth + 2*l.MarginX
}

// SlotHeight is the vertical space one cell occupies including margins.
func (l ThumbnailLayout) SlotHeight() int {
	return l.CellHeight + 2*l.MarginY
}

// Rows returns the number of rows the compositor will wrap frameCount cells into.
func (l ThumbnailLayout) Rows(frameCount int) int {
	if l.Columns <= 0 || frameCount <= 0 {
		return 0
	}
	return (frameCount + l.Columns - 1) / l.Columns
}

// GridSize returns the pixel size of the composed grid for frameCount cells.
func (l ThumbnailLayout) GridSize(frameCount int) resolution.Resolution {
	cols := min(l.Columns, frameCount)
	return resolution.Resolution{
		Width:  cols * l.SlotWidth(),
		Height: l.Rows(frameCount) * l.SlotHeight(),
	}
}

// UsableArea returns the fractional display region reserved for the grid.
func UsableArea(display resolution.Resolution, p Params) (width, height float64) {
	return float64(display.Width) * p.WidthFactor, float64(display.Height) * p.HeightFactor
}

// Compute derives the thumbnail layout for one display.
//
// The cell height x solves
//
//	x = sqrt((usable_area / count) / (ratio * (1 + 2mx + 2my + 5*mx*my)))
//
// Height is rounded first and width derived from the rounded height so the
// two never drift apart. Row count is not checked against the usable height;
// see Fit for that.
func Compute(display resolution.Resolution, frames FrameSet, p Params) (ThumbnailLayout, error) {
	if !display.Valid() {
		return ThumbnailLayout{}, mwerrors.NewInvalidConfigError(fmt.Sprintf("display dimensions must be positive, got %s", display))
	}
	if frames.Count <= 0 {
		return ThumbnailLayout{}, mwerrors.NewInvalidConfigError(fmt.Sprintf("frame count must be at least 1, got %d", frames.Count))
	}
	if frames.Width <= 0 || frames.Height <= 0 {
		return ThumbnailLayout{}, mwerrors.NewInvalidConfigError(fmt.Sprintf("frame dimensions must be positive, got %dx%d", frames.Width, frames.Height))
	}
	if err := p.Validate(); err != nil {
		return ThumbnailLayout{}, err
	}

	areaW, areaH := UsableArea(display, p)
	ratio := frames.Ratio()
	mx := p.MarginRatioX
	my := p.MarginRatioY(frames.Width, frames.Height)

	perCell := areaW * areaH / float64(frames.Count)
	x := math.Sqrt(perCell / (ratio * (1 + 2*mx + 2*my + crossTermWeight*mx*my)))

	l := cells(x, ratio, mx, my)
	l.Columns = int(math.Round(areaW / (x*ratio + x*ratio*mx*2)))

	if l.CellWidth < 1 || l.CellHeight < 1 {
		return ThumbnailLayout{}, mwerrors.NewInvalidConfigError(
			fmt.Sprintf("%d frames do not fit %s: cell would be %dx%d", frames.Count, display, l.CellWidth, l.CellHeight))
	}

	// Rounding can push the last column past the usable width.
	for l.Columns > 1 && float64(l.Columns*l.SlotWidth()) > areaW {
		l.Columns--
	}
	l.Columns = max(l.Columns, 1)

	// On displays narrower than the frames a single cell can still be too wide.
	for float64(l.SlotWidth()) > areaW {
		x = math.Min(x*areaW/float64(l.SlotWidth()), x-0.5)
		l = cells(x, ratio, mx, my)
		l.Columns = 1
		if l.CellWidth < 1 || l.CellHeight < 1 {
			return ThumbnailLayout{}, mwerrors.NewInvalidConfigError(
				fmt.Sprintf("a single frame does not fit %s", display))
		}
	}

	return l, nil
}

func cells(x, ratio, mx, my float64) ThumbnailLayout {
	h := math.Round(x)
	return ThumbnailLayout{
		CellHeight: int(h),
		CellWidth:  int(math.Round(h * ratio)),
		MarginX:    int(math.Round(x * ratio * mx)),
		MarginY:    int(math.Round(x * my)),
	}
}

// Fit reports how a layout's implied grid compares to the usable area.
type Fit struct {
	Grid         resolution.Resolution
	UsableWidth  float64
	UsableHeight float64
	OverflowsX   bool
	OverflowsY   bool
	ImpliedRows  int
}

// CheckFit computes the grid the compositor will produce and whether it
// exceeds the usable area. Compute does not enforce this; callers decide.
func CheckFit(l ThumbnailLayout, display resolution.Resolution, frameCount int, p Params) Fit {
	areaW, areaH := UsableArea(display, p)
	grid := l.GridSize(frameCount)
	return Fit{
		Grid:         grid,
		UsableWidth:  areaW,
		UsableHeight: areaH,
		OverflowsX:   float64(grid.Width) > areaW,
		OverflowsY:   float64(grid.Height) > areaH,
		ImpliedRows:  l.Rows(frameCount),
	}
}
