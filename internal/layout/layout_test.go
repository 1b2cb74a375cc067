package layout

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mwerrors "github.com/five82/movie-wallpaper/internal/errors"
	"github.com/five82/movie-wallpaper/internal/resolution"
)

func TestCompute_KnownLayouts(t *testing.T) {
	tests := []struct {
		name    string
		display resolution.Resolution
		frames  FrameSet
		want    ThumbnailLayout
	}{
		{
			name:    "1080p twelve 16:9 frames",
			display: resolution.Resolution{Width: 1920, Height: 1080},
			frames:  FrameSet{Count: 12, Width: 960, Height: 540},
			want:    ThumbnailLayout{CellWidth: 409, CellHeight: 230, MarginX: 16, MarginY: 36, Columns: 4},
		},
		{
			name:    "2160p twelve 16:9 frames",
			display: resolution.Resolution{Width: 3840, Height: 2160},
			frames:  FrameSet{Count: 12, Width: 960, Height: 540},
			want:    ThumbnailLayout{CellWidth: 816, CellHeight: 459, MarginX: 33, MarginY: 71, Columns: 4},
		},
		{
			name:    "single frame",
			display: resolution.Resolution{Width: 1920, Height: 1080},
			frames:  FrameSet{Count: 1, Width: 960, Height: 540},
			want:    ThumbnailLayout{CellWidth: 1413, CellHeight: 795, MarginX: 57, MarginY: 124, Columns: 1},
		},
		{
			name:    "portrait frames get no vertical margin",
			display: resolution.Resolution{Width: 1920, Height: 1080},
			frames:  FrameSet{Count: 12, Width: 540, Height: 960},
			want:    ThumbnailLayout{CellWidth: 263, CellHeight: 468, MarginX: 11, MarginY: 0, Columns: 6},
		},
		{
			name:    "rounded column count is clamped to usable width",
			display: resolution.Resolution{Width: 1280, Height: 1024},
			frames:  FrameSet{Count: 7, Width: 640, Height: 480},
			want:    ThumbnailLayout{CellWidth: 396, CellHeight: 297, MarginX: 16, MarginY: 20, Columns: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compute(tt.display, tt.frames, DefaultParams())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompute_Deterministic(t *testing.T) {
	display := resolution.Resolution{Width: 1920, Height: 1080}
	frames := FrameSet{Count: 12, Width: 1920, Height: 1080}

	first, err := Compute(display, frames, DefaultParams())
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := Compute(display, frames, DefaultParams())
		require.NoError(t, err)
		require.Equal(t, first, again)
	}
	assert.Equal(t, "409x230+16+36", first.Geometry())
	assert.Equal(t, "4", first.Tile())
}

func TestCompute_ZeroFrames(t *testing.T) {
	_, err := Compute(resolution.Resolution{Width: 1920, Height: 1080}, FrameSet{Count: 0, Width: 960, Height: 540}, DefaultParams())
	require.Error(t, err)
	assert.True(t, mwerrors.IsInvalidConfig(err), "want InvalidConfig, got %v", err)
}

func TestCompute_InvalidInputs(t *testing.T) {
	tests := []struct {
		name    string
		display resolution.Resolution
		frames  FrameSet
		params  Params
	}{
		{"zero display width", resolution.Resolution{Width: 0, Height: 1080}, FrameSet{Count: 1, Width: 16, Height: 9}, DefaultParams()},
		{"negative display height", resolution.Resolution{Width: 1920, Height: -1}, FrameSet{Count: 1, Width: 16, Height: 9}, DefaultParams()},
		{"zero frame width", resolution.Resolution{Width: 1920, Height: 1080}, FrameSet{Count: 1, Width: 0, Height: 9}, DefaultParams()},
		{"negative count", resolution.Resolution{Width: 1920, Height: 1080}, FrameSet{Count: -3, Width: 16, Height: 9}, DefaultParams()},
		{"width factor above one", resolution.Resolution{Width: 1920, Height: 1080}, FrameSet{Count: 1, Width: 16, Height: 9}, Params{WidthFactor: 1.5, HeightFactor: 0.8, MarginRatioX: 0.04, VerticalMarginDivisor: 5}},
		{"zero divisor", resolution.Resolution{Width: 1920, Height: 1080}, FrameSet{Count: 1, Width: 16, Height: 9}, Params{WidthFactor: 0.9, HeightFactor: 0.8, MarginRatioX: 0.04}},
		{"cells collapse to nothing", resolution.Resolution{Width: 32, Height: 18}, FrameSet{Count: 100000, Width: 16, Height: 9}, DefaultParams()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.display, tt.frames, tt.params)
			require.Error(t, err)
			assert.True(t, mwerrors.IsInvalidConfig(err), "want InvalidConfig, got %v", err)
		})
	}
}

func TestCompute_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	p := DefaultParams()

	for i := 0; i < 5000; i++ {
		dw := 480 + rng.Intn(4320-480)
		dh := 480 + rng.Intn(4320-480)
		fh := 100 + rng.Intn(2160-100)
		fw := fh/2 + rng.Intn(int(float64(fh)*1.9))
		n := 1 + rng.Intn(400)

		display := resolution.Resolution{Width: dw, Height: dh}
		frames := FrameSet{Count: n, Width: fw, Height: fh}

		l, err := Compute(display, frames, p)
		require.NoError(t, err, "display=%v frames=%+v", display, frames)

		ratio := frames.Ratio()
		assert.Equal(t, int(math.Round(float64(l.CellHeight)*ratio)), l.CellWidth,
			"width must derive from rounded height: display=%v frames=%+v", display, frames)
		assert.InDelta(t, ratio, float64(l.CellWidth)/float64(l.CellHeight), 0.5/float64(l.CellHeight)+1e-9,
			"aspect drift: display=%v frames=%+v", display, frames)

		usableW, _ := UsableArea(display, p)
		assert.LessOrEqual(t, float64(l.Columns*l.SlotWidth()), usableW,
			"overflow: display=%v frames=%+v layout=%+v", display, frames, l)
		assert.GreaterOrEqual(t, l.Columns, 1)
		assert.GreaterOrEqual(t, l.MarginX, 0)
		assert.GreaterOrEqual(t, l.MarginY, 0)
	}
}

func TestCompute_PortraitDisplay(t *testing.T) {
	display := resolution.Resolution{Width: 1080, Height: 1920}
	p := DefaultParams()
	usableW, _ := UsableArea(display, p)

	l, err := Compute(display, FrameSet{Count: 1, Width: 1920, Height: 1080}, p)
	require.NoError(t, err)
	assert.Equal(t, ThumbnailLayout{CellWidth: 939, CellHeight: 528, MarginX: 38, MarginY: 82, Columns: 1}, l)

	for n := 1; n <= 8; n++ {
		frames := FrameSet{Count: n, Width: 1920, Height: 1080}
		l, err := Compute(display, frames, p)
		require.NoError(t, err)
		assert.LessOrEqual(t, float64(l.Columns*l.SlotWidth()), usableW, "n=%d layout=%+v", n, l)
		assert.False(t, CheckFit(l, display, n, p).OverflowsX, "n=%d", n)
	}
}

func TestRowsAndGrid(t *testing.T) {
	l := ThumbnailLayout{CellWidth: 409, CellHeight: 230, MarginX: 16, MarginY: 36, Columns: 4}

	assert.Equal(t, 3, l.Rows(12))
	assert.Equal(t, 4, l.Rows(13))
	assert.Equal(t, 0, l.Rows(0))
	assert.Equal(t, resolution.Resolution{Width: 1764, Height: 906}, l.GridSize(12))
	assert.Equal(t, resolution.Resolution{Width: 882, Height: 302}, l.GridSize(2))
}

func TestCheckFit_ReportsRowOverflow(t *testing.T) {
	display := resolution.Resolution{Width: 1920, Height: 1080}
	l, err := Compute(display, FrameSet{Count: 12, Width: 960, Height: 540}, DefaultParams())
	require.NoError(t, err)

	fit := CheckFit(l, display, 12, DefaultParams())
	assert.False(t, fit.OverflowsX)
	assert.True(t, fit.OverflowsY, "906px of rows exceed the 885.6px usable height")
	assert.Equal(t, 3, fit.ImpliedRows)
}

func TestMarginRatioY(t *testing.T) {
	p := DefaultParams()
	assert.InDelta(t, 7.0/45.0, p.MarginRatioY(16, 9), 1e-12)
	assert.Equal(t, 0.0, p.MarginRatioY(9, 16))
	assert.Equal(t, 0.0, p.MarginRatioY(100, 100))
}
