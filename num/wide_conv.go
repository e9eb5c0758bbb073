package num

// String renders z in decimal using double-and-add: a decimal weight
// array tracks 2**k for the current bit k, and is added digit-wise into
// an accumulator for every set bit. Accumulator digits are allowed to
// exceed 9 until a single normalising carry pass at the end.
func (z Wide) String() string {
	if z.IsZero() {
		return "0"
	}

	nbits := z.BitLen()

	// 1233/4096 approximates log10(2); the +2 absorbs the rounding.
	ndigits := (nbits*1233)>>12 + 2

	weight := make([]uint8, ndigits)
	weight[0] = 1
	wlen := 1

	acc := make([]uint16, ndigits)

	for k := 0; k < nbits; k++ {
		if (z.limbs[k/wideLimbBits]>>uint(k%wideLimbBits))&1 == 1 {
			for j := 0; j < wlen; j++ {
				acc[j] += uint16(weight[j])
			}
		}
		if k < nbits-1 {
			wlen = doubleDigits(weight, wlen)
		}
	}

	var carry uint16
	top := 0
	for j := range acc {
		v := acc[j] + carry
		acc[j] = v % 10
		carry = v / 10
		if acc[j] != 0 {
			top = j
		}
	}

	out := make([]byte, top+1)
	for j := 0; j <= top; j++ {
		out[top-j] = byte(acc[j]) + '0'
	}
	return string(out)
}

// doubleDigits doubles the little-endian decimal digits in d[:n] in
// place and returns the new digit count.
func doubleDigits(d []uint8, n int) int {
	var carry uint8
	for i := 0; i < n; i++ {
		v := d[i]*2 + carry
		d[i] = v % 10
		carry = v / 10
	}
	if carry != 0 {
		d[n] = carry
		n++
	}
	return n
}

// WideFromString parses an unsigned decimal string using Horner's
// method. Leading zeros are accepted. Any byte that is not an ASCII
// digit, or an empty string, results in ErrMalformed; a value wider than
// WideLimbs limbs results in ErrCapacity.
func WideFromString(s string) (out Wide, err error) {
	if len(s) == 0 {
		return out, ErrMalformed.New("wide string is empty")
	}

	out.Zero()
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return Wide{}, ErrMalformed.New("wide string %q: invalid digit %q at offset %d", s, c, i)
		}
		if err := out.MulLimb(10); err != nil {
			return Wide{}, err
		}
		if err := out.AddLimb(uint64(c - '0')); err != nil {
			return Wide{}, err
		}
	}
	return out, nil
}
