package num

type RandSource interface {
	Uint64() uint64
}

// DifferenceScaled returns |a - b|.
func DifferenceScaled(a, b Scaled) (Scaled, error) {
	d, err := a.Sub(b)
	if err != nil {
		return zeroScaled, err
	}
	return d.Abs(), nil
}

func LargerScaled(a, b Scaled) Scaled {
	if a.Cmp(b) < 0 {
		return b
	}
	return a
}

func SmallerScaled(a, b Scaled) Scaled {
	if a.Cmp(b) > 0 {
		return b
	}
	return a
}
