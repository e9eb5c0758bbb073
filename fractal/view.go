package fractal

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/treebbb/msurf/num"
)

// View is a rectangle of the complex plane mapped onto a pixel grid.
// Pixels are square: the x and y extents divided by Width and Height give
// the same step, unless the view was built directly with mismatched
// bounds.
type View struct {
	XMin, XMax float64
	YMin, YMax float64
	Width      int
	Height     int
	MaxIter    int
}

// ViewFromBounds creates a view centred on the given bounds whose y
// extent is recomputed from the x extent so the pixels are square.
func ViewFromBounds(xmin, xmax, ymin, ymax float64, width, height, maxIter int) (View, error) {
	if err := checkSize(width, height, maxIter); err != nil {
		return View{}, err
	}
	if !(xmax > xmin) {
		return View{}, Error.New("view x bounds [%g, %g] are empty", xmin, xmax)
	}

	xw := xmax - xmin
	yh := float64(height) / float64(width) * xw
	xc := xmin + xw/2
	yc := ymin + (ymax-ymin)/2

	return View{
		XMin: xc - xw/2, XMax: xc + xw/2,
		YMin: yc - yh/2, YMax: yc + yh/2,
		Width: width, Height: height, MaxIter: maxIter,
	}, nil
}

// ViewFromCenter creates a view of width*height pixels of size step
// centred on (xc, yc).
func ViewFromCenter(xc, yc, step float64, width, height, maxIter int) (View, error) {
	if err := checkSize(width, height, maxIter); err != nil {
		return View{}, err
	}
	if !(step > 0) || math.IsInf(step, 0) {
		return View{}, Error.New("view step %g", step)
	}

	xw := float64(width) * step
	yh := float64(height) * step
	return View{
		XMin: xc - xw/2, XMax: xc + xw/2,
		YMin: yc - yh/2, YMax: yc + yh/2,
		Width: width, Height: height, MaxIter: maxIter,
	}, nil
}

func checkSize(width, height, maxIter int) error {
	if width <= 0 || height <= 0 {
		return Error.New("view size %dx%d", width, height)
	}
	if maxIter <= 0 {
		return Error.New("view maxiter %d", maxIter)
	}
	return nil
}

// Step returns the width of one pixel in the complex plane.
func (v View) Step() float64 { return (v.XMax - v.XMin) / float64(v.Width) }

// Center returns the centre of the view.
func (v View) Center() (x, y float64) {
	return v.XMin + (v.XMax-v.XMin)/2, v.YMin + (v.YMax-v.YMin)/2
}

func (v View) String() string {
	return fmt.Sprintf("View(x=[%g, %g], y=[%g, %g], %dx%d, maxiter=%d)",
		v.XMin, v.XMax, v.YMin, v.YMax, v.Width, v.Height, v.MaxIter)
}

// Zoom scales the extents about the centre by factor; a factor below 1
// zooms in.
func (v View) Zoom(factor float64) View {
	xw, yh := v.XMax-v.XMin, v.YMax-v.YMin
	xc, yc := v.Center()
	nw, nh := xw*factor, yh*factor

	v.XMin, v.XMax = xc-nw/2, xc+nw/2
	v.YMin, v.YMax = yc-nh/2, yc+nh/2
	return v
}

// ZoomBox zooms to the pixel rectangle (x1, y1)-(x2, y2), with y measured
// down from the top row. The new view is centred on the box and scaled
// by the larger of its width and height ratios, keeping square pixels.
func (v View) ZoomBox(x1, y1, x2, y2 int) View {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}

	icx := float64(x1) + float64(x2-x1)/2
	icy := float64(y1) + float64(y2-y1)/2
	factor := math.Max(float64(x2-x1)/float64(v.Width), float64(y2-y1)/float64(v.Height))

	xc, yc := v.PixelToComplex(icx, icy)
	xw := (v.XMax - v.XMin) * factor
	yh := float64(v.Height) / float64(v.Width) * xw

	v.XMin, v.XMax = xc-xw/2, xc+xw/2
	v.YMin, v.YMax = yc-yh/2, yc+yh/2
	return v
}

// PixelToComplex maps a pixel position, y measured down from the top
// row, to the complex plane.
func (v View) PixelToComplex(px, py float64) (x, y float64) {
	x = v.XMin + (px/float64(v.Width))*(v.XMax-v.XMin)
	y = v.YMax - (py/float64(v.Height))*(v.YMax-v.YMin)
	return x, y
}

// ComplexToPixel is the inverse of PixelToComplex, truncated to whole
// pixels.
func (v View) ComplexToPixel(x, y float64) (px, py int) {
	px = int((x - v.XMin) / (v.XMax - v.XMin) * float64(v.Width))
	py = v.Height - int((y-v.YMin)/(v.YMax-v.YMin)*float64(v.Height))
	return px, py
}

// Tile is a sub-rectangle of a view. X and Y are pixel offsets from the
// view's XMin and YMin corner, so Y counts up from the bottom row.
type Tile struct {
	X, Y int
	View View
}

// Tiles splits the view into tiles of at most size*size pixels, ordered
// along x first, then y. Edge tiles are clipped to the view.
func (v View) Tiles(size int) ([]Tile, error) {
	if size <= 0 {
		return nil, Error.New("tile size %d", size)
	}

	step := v.Step()
	var tiles []Tile
	for y := 0; y < v.Height; y += size {
		th := size
		if v.Height-y < th {
			th = v.Height - y
		}
		for x := 0; x < v.Width; x += size {
			tw := size
			if v.Width-x < tw {
				tw = v.Width - x
			}
			xmin := v.XMin + float64(x)*step
			ymin := v.YMin + float64(y)*step
			tiles = append(tiles, Tile{
				X: x, Y: y,
				View: View{
					XMin: xmin, XMax: xmin + float64(tw)*step,
					YMin: ymin, YMax: ymin + float64(th)*step,
					Width: tw, Height: th, MaxIter: v.MaxIter,
				},
			})
		}
	}
	return tiles, nil
}

// TilePasses returns the tiles of the view once per pass, each pass
// allowing iterStep more iterations than the last, up to MaxIter. Earlier
// passes give a coarse preview of the frame.
func (v View) TilePasses(size, iterStep int) ([][]Tile, error) {
	if iterStep <= 0 {
		return nil, Error.New("tile pass step %d", iterStep)
	}
	tiles, err := v.Tiles(size)
	if err != nil {
		return nil, err
	}

	var passes [][]Tile
	for cur := 0; cur < v.MaxIter; cur += iterStep {
		limit := cur + iterStep
		if limit > v.MaxIter {
			limit = v.MaxIter
		}
		pass := make([]Tile, len(tiles))
		for i, t := range tiles {
			t.View.MaxIter = limit
			pass[i] = t
		}
		passes = append(passes, pass)
	}
	return passes, nil
}

type bookmark struct {
	XCenter  float64 `json:"xcenter"`
	YCenter  float64 `json:"ycenter"`
	StepSize float64 `json:"step_size"`
	MaxIter  int     `json:"maxiter"`
}

// Bookmark returns a JSON string holding the view's centre, step and
// maxIter. The image size is not part of a bookmark. A view with a
// non-finite centre or step has no bookmark.
func (v View) Bookmark() (string, error) {
	xc, yc := v.Center()
	bts, err := json.Marshal(bookmark{
		XCenter:  xc,
		YCenter:  yc,
		StepSize: v.Step(),
		MaxIter:  v.MaxIter,
	})
	if err != nil {
		return "", Error.Wrap(fmt.Errorf("bookmark %v: %w", v, err))
	}
	return string(bts), nil
}

// ViewFromBookmark recreates a view from a Bookmark at a new image size.
func ViewFromBookmark(s string, width, height int) (View, error) {
	var b bookmark
	if err := json.Unmarshal([]byte(s), &b); err != nil {
		return View{}, Error.New("bookmark: %v", err)
	}
	return ViewFromCenter(b.XCenter, b.YCenter, b.StepSize, width, height, b.MaxIter)
}

// KernelArgs returns kernel arguments rendering this view into out, which
// must hold Width*Height*3 bytes. The view's corner and step are encoded
// as Q64 wire pairs; a view beyond the fixed-point range fails with a
// wrapped num error.
func (v View) KernelArgs(out []byte, palette []RGB, horizonSquared float32) (*Kernel, error) {
	xmin, err := toQ64(v.XMin)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("view xmin: %w", err))
	}
	ymin, err := toQ64(v.YMin)
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("view ymin: %w", err))
	}
	step, err := toQ64(v.Step())
	if err != nil {
		return nil, Error.Wrap(fmt.Errorf("view step: %w", err))
	}
	if step.Scaled().Sign() == 0 {
		return nil, Error.New("view step %g is below the fixed-point resolution", v.Step())
	}

	k := &Kernel{
		Output:         out,
		Palette:        palette,
		MaxIter:        v.MaxIter,
		HorizonSquared: horizonSquared,
		Width:          v.Width,
		Height:         v.Height,
		XMin:           xmin,
		YMin:           ymin,
		Step:           step,
	}
	if err := k.Validate(); err != nil {
		return nil, err
	}
	return k, nil
}

func toQ64(f float64) (num.Q64, error) {
	s, err := num.ScaledFromFloat64(f)
	if err != nil {
		return num.Q64{}, err
	}
	return s.Q64()
}
