package fractal

import (
	"math"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// PaletteKind names a palette generator.
type PaletteKind string

const (
	PaletteLog   PaletteKind = "log"
	PaletteGrey  PaletteKind = "grey"
	PaletteWheel PaletteKind = "wheel"
)

// wheelRevolutions is the number of times the wheel palette cycles over
// maxIter.
const wheelRevolutions = 5

// LogPalette ramps from black to yellow on a log scale of the iteration
// count, so early escapes stay dark and the set boundary is bright.
func LogPalette(maxIter int) []RGB {
	p := make([]RGB, maxIter)
	den := math.Log(float64(maxIter + 1))
	for i := range p {
		v := uint8(math.Log(float64(i+1)) / den * 255)
		p[i] = RGB{R: v, G: v}
	}
	return p
}

// GreyPalette ramps linearly from black to white.
func GreyPalette(maxIter int) []RGB {
	p := make([]RGB, maxIter)
	for i := range p {
		v := uint8(float64(i) / float64(maxIter) * 255)
		p[i] = RGB{v, v, v}
	}
	return p
}

// WheelPalette cycles a colour wheel wheelRevolutions times over maxIter
// iterations. Red, green and blue are cosines 120 degrees apart, clipped
// at zero.
func WheelPalette(maxIter int) []RGB {
	divs := maxIter / wheelRevolutions
	if divs == 0 {
		divs = 1
	}

	channel := func(rad, shift float64) uint8 {
		v := int(math.Cos(rad+shift) * 255)
		if v < 0 {
			return 0
		}
		return uint8(v)
	}

	p := make([]RGB, maxIter)
	for i := range p {
		rad := 2 * math.Pi * (float64(i) / float64(divs))
		p[i] = RGB{
			R: channel(rad, 0),
			G: channel(rad, 2*math.Pi/3),
			B: channel(rad, 4*math.Pi/3),
		}
	}
	return p
}

// NewPalette builds a palette of kind with maxIter entries.
func NewPalette(kind PaletteKind, maxIter int) ([]RGB, error) {
	if maxIter <= 0 {
		return nil, Error.New("palette maxiter %d", maxIter)
	}
	switch kind {
	case PaletteLog:
		return LogPalette(maxIter), nil
	case PaletteGrey:
		return GreyPalette(maxIter), nil
	case PaletteWheel:
		return WheelPalette(maxIter), nil
	default:
		return nil, Error.New("unknown palette %q", kind)
	}
}

type paletteKey struct {
	kind    PaletteKind
	maxIter int
}

// PaletteCache keeps recently built palettes, keyed by kind and maxIter.
// Palettes returned from the cache are shared and must not be modified.
type PaletteCache struct {
	mu    sync.Mutex
	cache *lru.Cache[paletteKey, []RGB]

	hits   uint64
	misses uint64
}

// NewPaletteCache creates a cache holding up to size palettes.
func NewPaletteCache(size int) (*PaletteCache, error) {
	if size <= 0 {
		size = 16
	}
	c, err := lru.New[paletteKey, []RGB](size)
	if err != nil {
		return nil, Error.Wrap(err)
	}
	return &PaletteCache{cache: c}, nil
}

// Get returns the palette for kind and maxIter, building it on a miss.
func (c *PaletteCache) Get(kind PaletteKind, maxIter int) ([]RGB, error) {
	key := paletteKey{kind, maxIter}

	c.mu.Lock()
	defer c.mu.Unlock()

	if p, ok := c.cache.Get(key); ok {
		c.hits++
		return p, nil
	}
	c.misses++

	p, err := NewPalette(kind, maxIter)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, p)
	return p, nil
}

// Stats returns the hit and miss counts.
func (c *PaletteCache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// Len returns the number of cached palettes.
func (c *PaletteCache) Len() int { return c.cache.Len() }
