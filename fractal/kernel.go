package fractal

import (
	"github.com/treebbb/msurf/num"
)

// BytesPerPixel is the size of one packed RGB pixel in an output buffer.
const BytesPerPixel = 3

// RGB is one palette entry or output pixel.
type RGB struct {
	R, G, B uint8
}

// Kernel holds the arguments of the per-pixel escape-time kernel. The
// fixed-point coordinates travel as Q64 wire pairs, the same form a
// device kernel would receive them in.
//
// Output is width*height*3 bytes, top row first. Palette holds at least
// MaxIter entries.
type Kernel struct {
	Output         []byte
	Palette        []RGB
	MaxIter        int
	HorizonSquared float32
	Width, Height  int
	XMin, YMin     num.Q64
	Step           num.Q64
}

// Validate checks the buffer sizes and dimensions.
func (k *Kernel) Validate() error {
	if k.Width <= 0 || k.Height <= 0 {
		return Error.New("kernel size %dx%d", k.Width, k.Height)
	}
	if k.MaxIter <= 0 {
		return Error.New("kernel maxiter %d", k.MaxIter)
	}
	if want := k.Width * k.Height * BytesPerPixel; len(k.Output) != want {
		return Error.New("kernel output is %d bytes, want %d", len(k.Output), want)
	}
	if len(k.Palette) < k.MaxIter {
		return Error.New("kernel palette has %d entries, want %d", len(k.Palette), k.MaxIter)
	}
	return nil
}

// Point returns the complex coordinate of pixel (x, y), where y counts
// up from YMin: c = step*x + xmin, step*y + ymin.
func (k *Kernel) Point(x, y int) (cr, ci num.Scaled, err error) {
	step := k.Step.Scaled()

	if cr, err = step.MulDigit(uint32(x)); err != nil {
		return cr, ci, err
	}
	if cr, err = cr.Add(k.XMin.Scaled()); err != nil {
		return cr, ci, err
	}

	if ci, err = step.MulDigit(uint32(y)); err != nil {
		return cr, ci, err
	}
	if ci, err = ci.Add(k.YMin.Scaled()); err != nil {
		return cr, ci, err
	}
	return cr, ci, nil
}

// Pixel runs the escape-time loop for pixel (x, y) and writes its colour:
// black if the point never escaped within MaxIter iterations, otherwise
// the palette entry for the escape iteration. Row y is written at output
// row height-y-1, so the first output row is the top of the view.
func (k *Kernel) Pixel(x, y int) error {
	if x < 0 || x >= k.Width || y < 0 || y >= k.Height {
		return Error.New("pixel (%d, %d) outside %dx%d", x, y, k.Width, k.Height)
	}

	horizon, err := num.ScaledFromFloat32(k.HorizonSquared)
	if err != nil {
		return Error.Wrap(err)
	}

	cr, ci, err := k.Point(x, y)
	if err != nil {
		return Error.Wrap(err)
	}

	i, err := Escape(cr, ci, horizon, k.MaxIter)
	if err != nil {
		return Error.Wrap(err)
	}

	row := k.Height - y - 1
	off := row*k.Width*BytesPerPixel + x*BytesPerPixel
	var c RGB
	if i < k.MaxIter {
		c = k.Palette[i]
	}
	k.Output[off] = c.R
	k.Output[off+1] = c.G
	k.Output[off+2] = c.B
	return nil
}

// Escape iterates z = z*z + c from z = 0 and returns the number of
// iterations completed before |z|**2 exceeded horizonSquared, or maxIter
// if it never did.
func Escape(cr, ci, horizonSquared num.Scaled, maxIter int) (i int, err error) {
	var zr, zi, zr2, zi2, t num.Scaled

	for i = 0; i < maxIter; i++ {
		if t, err = zr2.Add(zi2); err != nil {
			return i, err
		}
		if t.Cmp(horizonSquared) > 0 {
			break
		}

		// zi = 2*zr*zi + ci
		if t, err = zr.Lsh(1); err != nil {
			return i, err
		}
		if t, err = t.MulScaled(zi); err != nil {
			return i, err
		}
		if zi, err = t.Add(ci); err != nil {
			return i, err
		}

		// zr = zr2 - zi2 + cr
		if t, err = zr2.Sub(zi2); err != nil {
			return i, err
		}
		if zr, err = t.Add(cr); err != nil {
			return i, err
		}

		if zr2, err = zr.MulScaled(zr); err != nil {
			return i, err
		}
		if zi2, err = zi.MulScaled(zi); err != nil {
			return i, err
		}
	}
	return i, nil
}
