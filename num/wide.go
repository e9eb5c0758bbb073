package num

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
)

// Wide is an unsigned integer of up to WideLimbs 64-bit limbs, stored
// little-endian. Only the first Len() limbs are significant; the top
// significant limb is never zero unless the value itself is zero.
//
// The zero value is a canonical zero. Two-operand operations write into
// the receiver, which may alias either operand.
type Wide struct {
	limbs  [WideLimbs]uint64
	length int
}

func WideFrom64(v uint64) Wide { return Wide{limbs: [WideLimbs]uint64{v}, length: 1} }

// WideFromLimbs creates a Wide from little-endian limbs. Trailing zero
// limbs are trimmed before the capacity check.
func WideFromLimbs(limbs ...uint64) (out Wide, err error) {
	n := len(limbs)
	for n > 1 && limbs[n-1] == 0 {
		n--
	}
	if n > WideLimbs {
		return out, ErrCapacity.New("wide needs %d limbs, capacity %d", n, WideLimbs)
	}
	copy(out.limbs[:], limbs[:n])
	out.length = n
	out.trim()
	return out, nil
}

// WideFromBigInt creates a Wide from a big.Int. Negative values are
// rejected with ErrDomain, values wider than 512 bits with ErrCapacity.
func WideFromBigInt(v *big.Int) (out Wide, err error) {
	if v.Sign() < 0 {
		return out, ErrDomain.New("wide from negative %s", v)
	}
	if v.BitLen() > WideLimbs*wideLimbBits {
		return out, ErrCapacity.New("wide from %d bit integer", v.BitLen())
	}

	var buf [WideLimbs * 8]byte
	v.FillBytes(buf[:])
	for i := 0; i < WideLimbs; i++ {
		off := len(buf) - (i+1)*8
		out.limbs[i] = binary.BigEndian.Uint64(buf[off:])
	}
	out.length = WideLimbs
	out.trim()
	return out, nil
}

// RandWide generates a Wide of up to n random limbs from an external
// source. n is clamped to [1, WideLimbs].
func RandWide(source RandSource, n int) (out Wide) {
	if n < 1 {
		n = 1
	} else if n > WideLimbs {
		n = WideLimbs
	}
	for i := 0; i < n; i++ {
		out.limbs[i] = source.Uint64()
	}
	out.length = n
	out.trim()
	return out
}

// Zero resets z to the canonical zero.
func (z *Wide) Zero() {
	*z = zeroWide
	z.length = 1
}

// Len returns the number of significant limbs. It is 1 for zero.
func (z Wide) Len() int {
	if z.length == 0 {
		return 1
	}
	return z.length
}

// Limb returns limb i, or 0 if i is outside the significant limbs.
func (z Wide) Limb(i int) uint64 {
	if i < 0 || i >= z.Len() {
		return 0
	}
	return z.limbs[i]
}

func (z Wide) IsZero() bool { return z.Len() == 1 && z.limbs[0] == 0 }

// BitLen returns the number of bits needed to represent z. The bit
// length of zero is 0.
func (z Wide) BitLen() int {
	n := z.Len()
	return (n-1)*wideLimbBits + bits.Len64(z.limbs[n-1])
}

func (z Wide) Cmp(n Wide) int {
	zl, nl := z.Len(), n.Len()
	if zl > nl {
		return 1
	} else if zl < nl {
		return -1
	}
	for i := zl - 1; i >= 0; i-- {
		if z.limbs[i] > n.limbs[i] {
			return 1
		} else if z.limbs[i] < n.limbs[i] {
			return -1
		}
	}
	return 0
}

func (z Wide) Equal(n Wide) bool { return z.Cmp(n) == 0 }

// AddLimb adds v to z in place, propagating the carry and growing the
// limb count as needed. If the carry would need a limb beyond WideLimbs,
// ErrCapacity is returned and z is left unchanged.
func (z *Wide) AddLimb(v uint64) error {
	out := *z
	out.length = z.Len()

	carry := v
	for i := 0; carry != 0; i++ {
		if i >= WideLimbs {
			return ErrCapacity.New("wide add %d overflows %d limbs", v, WideLimbs)
		}
		carry, out.limbs[i] = addWW(out.limbs[i], carry, 0)
		if i >= out.length {
			out.length = i + 1
		}
	}

	*z = out
	return nil
}

// MulLimb multiplies z by v in place. A zero product is canonicalised to
// a single zero limb. If the product needs a limb beyond WideLimbs,
// ErrCapacity is returned and z is left unchanged.
func (z *Wide) MulLimb(v uint64) error {
	if v == 0 || z.IsZero() {
		z.Zero()
		return nil
	}

	n := z.Len()
	out := *z

	var carry uint64
	for i := 0; i < n; i++ {
		carry, out.limbs[i] = mulAddWWW(z.limbs[i], v, carry, 0)
	}
	out.length = n

	if carry != 0 {
		if n >= WideLimbs {
			return ErrCapacity.New("wide multiply by %d overflows %d limbs", v, WideLimbs)
		}
		out.limbs[n] = carry
		out.length = n + 1
	}

	out.trim()
	*z = out
	return nil
}

// Add sets z to x + y. If the sum needs a limb beyond WideLimbs,
// ErrCapacity is returned and z is left unchanged.
func (z *Wide) Add(x, y Wide) error {
	var out Wide
	xl, yl := x.Len(), y.Len()
	n := xl
	if yl > n {
		n = yl
	}

	var carry uint64
	i := 0
	for ; i < n || carry != 0; i++ {
		if i >= WideLimbs {
			return ErrCapacity.New("wide sum overflows %d limbs", WideLimbs)
		}
		carry, out.limbs[i] = addWW(x.Limb(i), y.Limb(i), carry)
	}
	out.length = i
	out.trim()

	*z = out
	return nil
}

// Mul sets z to x * y using schoolbook multiplication: for each limb of
// y, x is multiplied by that limb and accumulated into the product at
// the limb's offset. If the product needs more than WideLimbs limbs,
// ErrCapacity is returned and z is left unchanged.
func (z *Wide) Mul(x, y Wide) error {
	if x.IsZero() || y.IsZero() {
		z.Zero()
		return nil
	}

	var acc [WideLimbs * 2]uint64
	xl, yl := x.Len(), y.Len()

	for i := 0; i < yl; i++ {
		d := y.limbs[i]
		if d == 0 {
			continue
		}
		var carry uint64
		for j := 0; j < xl; j++ {
			carry, acc[i+j] = mulAddWWW(x.limbs[j], d, acc[i+j], carry)
		}
		acc[i+xl] = carry
	}

	n := xl + yl
	for n > 1 && acc[n-1] == 0 {
		n--
	}
	if n > WideLimbs {
		return ErrCapacity.New("wide product needs %d limbs, capacity %d", n, WideLimbs)
	}

	var out Wide
	copy(out.limbs[:], acc[:n])
	out.length = n
	*z = out
	return nil
}

// trim drops high-order zero limbs, keeping at least one.
func (z *Wide) trim() {
	if z.length == 0 {
		z.length = 1
	}
	for z.length > 1 && z.limbs[z.length-1] == 0 {
		z.length--
	}
}

func (z Wide) AsBigInt() (b *big.Int) {
	var buf [WideLimbs * 8]byte
	n := z.Len()
	for i := 0; i < n; i++ {
		binary.BigEndian.PutUint64(buf[len(buf)-(i+1)*8:], z.limbs[i])
	}
	return new(big.Int).SetBytes(buf[:])
}

func (z Wide) Format(s fmt.State, c rune) {
	switch c {
	case 'v', 's':
		fmt.Fprint(s, z.String())
	default:
		z.AsBigInt().Format(s, c)
	}
}

func (z Wide) MarshalText() ([]byte, error) {
	return []byte(z.String()), nil
}

func (z *Wide) UnmarshalText(bts []byte) (err error) {
	v, err := WideFromString(string(bts))
	if err != nil {
		return err
	}
	*z = v
	return nil
}

func (z Wide) MarshalJSON() ([]byte, error) {
	return []byte(`"` + z.String() + `"`), nil
}

func (z *Wide) UnmarshalJSON(bts []byte) (err error) {
	if len(bts) > 0 && bts[0] == '"' {
		ln := len(bts)
		if ln < 2 || bts[ln-1] != '"' {
			return ErrMalformed.New("wide invalid JSON %q", string(bts))
		}
		bts = bts[1 : ln-1]
	}

	v, err := WideFromString(string(bts))
	if err != nil {
		return err
	}
	*z = v
	return nil
}
