package fractal

import (
	"context"
	"image"
	"image/png"
	"io"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultHorizonSquared is the escape radius 2, squared.
const DefaultHorizonSquared float32 = 4

// Options tune Render.
type Options struct {
	// Workers bounds the number of concurrent tasks; 0 uses GOMAXPROCS.
	Workers int

	// HorizonSquared is the squared escape radius; 0 uses
	// DefaultHorizonSquared.
	HorizonSquared float32

	// TileSize, if set, renders the frame as square tiles of this size
	// instead of one task per row.
	TileSize int
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (o Options) horizon() float32 {
	if o.HorizonSquared > 0 {
		return o.HorizonSquared
	}
	return DefaultHorizonSquared
}

// Frame is a rendered view: packed RGB pixels, top row first.
type Frame struct {
	View   View
	Width  int
	Height int
	Pix    []byte
}

// NewFrame allocates a black frame for v.
func NewFrame(v View) *Frame {
	return &Frame{
		View:   v,
		Width:  v.Width,
		Height: v.Height,
		Pix:    make([]byte, v.Width*v.Height*BytesPerPixel),
	}
}

// At returns the pixel at column x of row y, y counting down from the
// top.
func (f *Frame) At(x, y int) RGB {
	off := (y*f.Width + x) * BytesPerPixel
	return RGB{f.Pix[off], f.Pix[off+1], f.Pix[off+2]}
}

// Image returns a copy of the frame as an opaque RGBA image.
func (f *Frame) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, f.Width, f.Height))
	for i, j := 0, 0; i < len(f.Pix); i, j = i+BytesPerPixel, j+4 {
		img.Pix[j] = f.Pix[i]
		img.Pix[j+1] = f.Pix[i+1]
		img.Pix[j+2] = f.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// WritePNG encodes the frame to w as a PNG.
func (f *Frame) WritePNG(w io.Writer) error {
	if err := png.Encode(w, f.Image()); err != nil {
		return Error.Wrap(err)
	}
	return nil
}

// Render evaluates every pixel of v. Rows (or tiles, if opts.TileSize is
// set) are fanned out over a bounded errgroup; each task writes a disjoint
// part of the frame. The first error, or cancellation of ctx, stops
// further tasks from starting.
func Render(ctx context.Context, v View, palette []RGB, opts Options) (*Frame, error) {
	frame := NewFrame(v)

	k, err := v.KernelArgs(frame.Pix, palette, opts.horizon())
	if err != nil {
		return nil, err
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())

	if opts.TileSize > 0 {
		tiles, err := v.Tiles(opts.TileSize)
		if err != nil {
			return nil, err
		}
		for _, t := range tiles {
			t := t
			if gCtx.Err() != nil {
				break
			}
			g.Go(func() error { return renderTile(gCtx, k, t) })
		}
	} else {
		for y := 0; y < v.Height; y++ {
			y := y
			if gCtx.Err() != nil {
				break
			}
			g.Go(func() error { return renderRow(gCtx, k, y) })
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return frame, nil
}

func renderRow(ctx context.Context, k *Kernel, y int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for x := 0; x < k.Width; x++ {
		if err := k.Pixel(x, y); err != nil {
			return err
		}
	}
	return nil
}

// renderTile evaluates the pixels of t with the frame's kernel, so tiled
// and row-wise renders agree bit for bit.
func renderTile(ctx context.Context, k *Kernel, t Tile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for y := t.Y; y < t.Y+t.View.Height; y++ {
		for x := t.X; x < t.X+t.View.Width; x++ {
			if err := k.Pixel(x, y); err != nil {
				return err
			}
		}
	}
	return nil
}
