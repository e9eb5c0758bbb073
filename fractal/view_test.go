package fractal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treebbb/msurf/num"
)

const viewDelta = 1e-12

func assertViewsClose(t *testing.T, exp, act View) {
	t.Helper()
	assert.InDelta(t, exp.XMin, act.XMin, viewDelta, "xmin")
	assert.InDelta(t, exp.XMax, act.XMax, viewDelta, "xmax")
	assert.InDelta(t, exp.YMin, act.YMin, viewDelta, "ymin")
	assert.InDelta(t, exp.YMax, act.YMax, viewDelta, "ymax")
	assert.Equal(t, exp.Width, act.Width)
	assert.Equal(t, exp.Height, act.Height)
	assert.Equal(t, exp.MaxIter, act.MaxIter)
}

func TestViewFromCenter(t *testing.T) {
	v, err := ViewFromCenter(-0.5, 0, 0.01, 300, 200, 100)
	require.NoError(t, err)

	assertViewsClose(t, View{XMin: -2, XMax: 1, YMin: -1, YMax: 1, Width: 300, Height: 200, MaxIter: 100}, v)
	assert.InDelta(t, 0.01, v.Step(), viewDelta)

	xc, yc := v.Center()
	assert.InDelta(t, -0.5, xc, viewDelta)
	assert.InDelta(t, 0, yc, viewDelta)
}

func TestViewFromBounds(t *testing.T) {
	// The y extent follows the aspect ratio, not the requested bounds.
	v, err := ViewFromBounds(-2, 1, -2, 2, 300, 200, 50)
	require.NoError(t, err)
	assertViewsClose(t, View{XMin: -2, XMax: 1, YMin: -1, YMax: 1, Width: 300, Height: 200, MaxIter: 50}, v)
}

func TestViewErrors(t *testing.T) {
	_, err := ViewFromBounds(1, 1, -1, 1, 10, 10, 10)
	assert.True(t, Error.Has(err))

	_, err = ViewFromBounds(-1, 1, -1, 1, 0, 10, 10)
	assert.True(t, Error.Has(err))

	_, err = ViewFromCenter(0, 0, 0, 10, 10, 10)
	assert.True(t, Error.Has(err))

	_, err = ViewFromCenter(0, 0, 0.1, 10, 10, 0)
	assert.True(t, Error.Has(err))
}

func TestViewZoom(t *testing.T) {
	v, err := ViewFromCenter(-0.5, 0.25, 0.01, 300, 200, 100)
	require.NoError(t, err)

	z := v.Zoom(0.5)
	assert.InDelta(t, 1.5, z.XMax-z.XMin, viewDelta)
	assert.InDelta(t, 1.0, z.YMax-z.YMin, viewDelta)
	assert.InDelta(t, 0.005, z.Step(), viewDelta)

	xc, yc := z.Center()
	assert.InDelta(t, -0.5, xc, viewDelta)
	assert.InDelta(t, 0.25, yc, viewDelta)

	assertViewsClose(t, v, z.Zoom(2))
}

func TestViewZoomBox(t *testing.T) {
	v, err := ViewFromCenter(-0.5, 0, 0.01, 300, 200, 100)
	require.NoError(t, err)

	// The whole image is a no-op.
	assertViewsClose(t, v, v.ZoomBox(0, 0, 300, 200))

	// The top left quarter, given corner first or last.
	for _, z := range []View{v.ZoomBox(0, 0, 150, 100), v.ZoomBox(150, 100, 0, 0)} {
		assertViewsClose(t, View{XMin: -2, XMax: -0.5, YMin: 0, YMax: 1, Width: 300, Height: 200, MaxIter: 100}, z)
	}

	// A tall box is scaled by its height ratio.
	z := v.ZoomBox(0, 0, 30, 100)
	assert.InDelta(t, 0.5*(v.XMax-v.XMin), z.XMax-z.XMin, viewDelta)
}

func TestViewPixelMapping(t *testing.T) {
	v, err := ViewFromCenter(-0.5, 0, 0.01, 300, 200, 100)
	require.NoError(t, err)

	x, y := v.PixelToComplex(0, 0)
	assert.InDelta(t, -2, x, viewDelta)
	assert.InDelta(t, 1, y, viewDelta)

	x, y = v.PixelToComplex(300, 200)
	assert.InDelta(t, 1, x, viewDelta)
	assert.InDelta(t, -1, y, viewDelta)

	px, py := v.ComplexToPixel(-0.5+0.001, 0.5+0.001)
	assert.Equal(t, 150, px)
	assert.Equal(t, 50, py)

	px, py = v.ComplexToPixel(v.PixelToComplex(75, 20))
	assert.InDelta(t, 75, px, 1)
	assert.InDelta(t, 20, py, 1)
}

func TestViewTiles(t *testing.T) {
	v, err := ViewFromCenter(0, 0, 0.1, 10, 7, 250)
	require.NoError(t, err)

	tiles, err := v.Tiles(4)
	require.NoError(t, err)
	require.Len(t, tiles, 6)

	area := 0
	for _, tile := range tiles {
		area += tile.View.Width * tile.View.Height
		assert.InDelta(t, v.Step(), tile.View.Step(), viewDelta)
		assert.InDelta(t, v.XMin+float64(tile.X)*v.Step(), tile.View.XMin, viewDelta)
		assert.InDelta(t, v.YMin+float64(tile.Y)*v.Step(), tile.View.YMin, viewDelta)
	}
	assert.Equal(t, 70, area)

	last := tiles[len(tiles)-1]
	assert.Equal(t, 8, last.X)
	assert.Equal(t, 4, last.Y)
	assert.Equal(t, 2, last.View.Width)
	assert.Equal(t, 3, last.View.Height)

	_, err = v.Tiles(0)
	assert.Error(t, err)
}

func TestViewTilePasses(t *testing.T) {
	v, err := ViewFromCenter(0, 0, 0.1, 10, 7, 250)
	require.NoError(t, err)

	passes, err := v.TilePasses(4, 100)
	require.NoError(t, err)
	require.Len(t, passes, 3)

	for i, limit := range []int{100, 200, 250} {
		require.Len(t, passes[i], 6)
		for _, tile := range passes[i] {
			assert.Equal(t, limit, tile.View.MaxIter)
		}
	}

	_, err = v.TilePasses(4, 0)
	assert.Error(t, err)
}

func TestViewBookmark(t *testing.T) {
	v, err := ViewFromCenter(-0.743643887037151, 0.131825904205330, 1e-9, 640, 480, 2000)
	require.NoError(t, err)

	bm, err := v.Bookmark()
	require.NoError(t, err)
	assert.Contains(t, bm, `"step_size"`)
	assert.Contains(t, bm, `"maxiter":2000`)

	back, err := ViewFromBookmark(bm, 640, 480)
	require.NoError(t, err)
	assertViewsClose(t, v, back)

	resized, err := ViewFromBookmark(bm, 320, 240)
	require.NoError(t, err)
	assert.InDelta(t, v.Step(), resized.Step(), viewDelta)
	assert.Equal(t, 320, resized.Width)

	_, err = ViewFromBookmark("{", 10, 10)
	assert.True(t, Error.Has(err))

	for _, bad := range []View{
		{XMin: math.Inf(-1), XMax: 1, YMin: -1, YMax: 1, Width: 4, Height: 4, MaxIter: 10},
		{XMin: math.NaN(), XMax: 1, YMin: -1, YMax: 1, Width: 4, Height: 4, MaxIter: 10},
		{XMin: -1, XMax: 1, YMin: -1, YMax: math.Inf(1), Width: 4, Height: 4, MaxIter: 10},
	} {
		bm, err := bad.Bookmark()
		assert.True(t, Error.Has(err), "%v", bad)
		assert.Empty(t, bm)
	}
}

func TestViewKernelArgs(t *testing.T) {
	v, err := ViewFromCenter(-0.5, 0, 0.5, 4, 2, 10)
	require.NoError(t, err)

	out := make([]byte, 4*2*BytesPerPixel)
	k, err := v.KernelArgs(out, GreyPalette(10), 4)
	require.NoError(t, err)

	assert.Equal(t, "-1.5", k.XMin.Scaled().AsBigFloat().Text('g', 10))
	assert.Equal(t, "-0.5", k.YMin.Scaled().AsBigFloat().Text('g', 10))
	assert.Equal(t, "0.5", k.Step.Scaled().AsBigFloat().Text('g', 10))

	_, err = v.KernelArgs(out[1:], GreyPalette(10), 4)
	assert.True(t, Error.Has(err))

	far, err := ViewFromCenter(1e40, 0, 1, 4, 2, 10)
	require.NoError(t, err)
	_, err = far.KernelArgs(out, GreyPalette(10), 4)
	require.Error(t, err)
	assert.True(t, Error.Has(err))
	assert.True(t, num.ErrDomain.Has(err))

	// 3/640 * 0.9**400 is below 2**-64 and would map every pixel to one
	// point.
	deep, err := ViewFromCenter(0, 0, 3.0/640*math.Pow(0.9, 400), 4, 2, 10)
	require.NoError(t, err)
	_, err = deep.KernelArgs(out, GreyPalette(10), 4)
	require.Error(t, err)
	assert.True(t, Error.Has(err))

	// The smallest representable step is still accepted.
	fine, err := ViewFromCenter(0, 0, 0x1p-64, 4, 2, 10)
	require.NoError(t, err)
	k, err = fine.KernelArgs(out, GreyPalette(10), 4)
	require.NoError(t, err)
	assert.Equal(t, num.Q64{Lo: 1}, k.Step)
}
