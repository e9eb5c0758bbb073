package num

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"math/bits"
)

// Scaled is a signed Q64 fixed-point number: a sign and a magnitude of
// up to ScaledLimbs 32-bit limbs (little-endian), where the real value
// is magnitude / 2**64.
//
// Scaled is a value type; all operations return new values. The zero
// value is zero. Zero is never negative.
type Scaled struct {
	dp   [ScaledLimbs]uint32
	used int
	neg  bool
}

// ScaledFromInt64 creates a Scaled whose raw magnitude is |v|. The real
// value is v / 2**64; see ScaledFromFloat64 for whole numbers.
func ScaledFromInt64(v int64) (out Scaled) {
	u := uint64(v)
	if v < 0 {
		u = -u
		out.neg = true
	}
	out.dp[0] = uint32(u)
	out.dp[1] = uint32(u >> 32)
	out.used = 2
	out.clamp()
	return out
}

// ScaledFromBigInt creates a Scaled with the raw magnitude and sign of v.
// Values wider than 192 bits result in ErrCapacity.
func ScaledFromBigInt(v *big.Int) (out Scaled, err error) {
	if v.BitLen() > ScaledLimbs*scaledLimbBits {
		return out, ErrCapacity.New("scaled from %d bit integer", v.BitLen())
	}

	var buf [ScaledLimbs * 4]byte
	new(big.Int).Abs(v).FillBytes(buf[:])
	for i := 0; i < ScaledLimbs; i++ {
		out.dp[i] = binary.BigEndian.Uint32(buf[len(buf)-(i+1)*4:])
	}
	out.used = ScaledLimbs
	out.neg = v.Sign() < 0
	out.clamp()
	return out, nil
}

// RandScaled generates a Scaled of up to n random limbs and a random sign
// from an external source. n is clamped to [0, ScaledLimbs].
func RandScaled(source RandSource, n int) (out Scaled) {
	if n < 0 {
		n = 0
	} else if n > ScaledLimbs {
		n = ScaledLimbs
	}
	for i := 0; i < n; i++ {
		out.dp[i] = uint32(source.Uint64())
	}
	out.used = n
	out.neg = source.Uint64()&1 == 1
	out.clamp()
	return out
}

func (x Scaled) IsZero() bool { return x.used == 0 }

// Used returns the number of significant limbs; 0 for zero.
func (x Scaled) Used() int { return x.used }

// Limb returns limb i of the magnitude, or 0 if i is out of range.
func (x Scaled) Limb(i int) uint32 {
	if i < 0 || i >= x.used {
		return 0
	}
	return x.dp[i]
}

// Sign returns -1, 0 or 1.
func (x Scaled) Sign() int {
	if x.used == 0 {
		return 0
	} else if x.neg {
		return -1
	}
	return 1
}

// Equal reports whether x and y have the same sign and magnitude.
func (x Scaled) Equal(y Scaled) bool { return x == y }

// BitLen returns the bit length of the magnitude.
func (x Scaled) BitLen() int {
	if x.used == 0 {
		return 0
	}
	return (x.used-1)*scaledLimbBits + bits.Len32(x.dp[x.used-1])
}

// clamp drops high-order zero limbs and clears the sign of zero.
func (x *Scaled) clamp() {
	for x.used > 0 && x.dp[x.used-1] == 0 {
		x.used--
	}
	if x.used == 0 {
		x.neg = false
	}
}

// Neg returns -x.
func (x Scaled) Neg() Scaled {
	x.neg = !x.neg
	x.clamp()
	return x
}

// Abs returns |x|.
func (x Scaled) Abs() Scaled {
	x.neg = false
	return x
}

// CmpMag compares the magnitudes of x and y and returns -1, 0 or 1.
func (x Scaled) CmpMag(y Scaled) int {
	if x.used > y.used {
		return 1
	} else if x.used < y.used {
		return -1
	}
	for i := x.used - 1; i >= 0; i-- {
		if x.dp[i] > y.dp[i] {
			return 1
		} else if x.dp[i] < y.dp[i] {
			return -1
		}
	}
	return 0
}

// Cmp compares x and y and returns -1, 0 or 1.
func (x Scaled) Cmp(y Scaled) int {
	if x.neg && !y.neg {
		return -1
	} else if !x.neg && y.neg {
		return 1
	} else if x.neg {
		return y.CmpMag(x)
	}
	return x.CmpMag(y)
}

func (x Scaled) LessThan(y Scaled) bool    { return x.Cmp(y) < 0 }
func (x Scaled) GreaterThan(y Scaled) bool { return x.Cmp(y) > 0 }

// Add returns x + y. ErrCapacity is returned if the magnitude of the sum
// needs more than ScaledLimbs limbs.
func (x Scaled) Add(y Scaled) (Scaled, error) {
	return add(x, y, y.neg)
}

// Sub returns x - y. ErrCapacity is returned if the magnitude of the
// difference needs more than ScaledLimbs limbs.
func (x Scaled) Sub(y Scaled) (Scaled, error) {
	return add(x, y, !y.neg)
}

// add returns x + y where y's sign is replaced by yneg.
func add(x, y Scaled, yneg bool) (z Scaled, err error) {
	if x.neg == yneg {
		z, err = addMag(x, y)
		if err != nil {
			return zeroScaled, err
		}
		z.neg = x.neg
	} else if x.CmpMag(y) < 0 {
		z = subMag(y, x)
		z.neg = yneg
	} else {
		z = subMag(x, y)
		z.neg = x.neg
	}
	z.clamp()
	return z, nil
}

// addMag returns |x| + |y|.
func addMag(x, y Scaled) (z Scaled, err error) {
	n := x.used
	if y.used > n {
		n = y.used
	}

	var t uint64
	for i := 0; i < n; i++ {
		t += uint64(x.dp[i]) + uint64(y.dp[i])
		z.dp[i] = uint32(t)
		t >>= scaledLimbBits
	}
	if t != 0 {
		if n >= ScaledLimbs {
			return zeroScaled, ErrCapacity.New("scaled sum overflows %d limbs", ScaledLimbs)
		}
		z.dp[n] = uint32(t)
		n++
	}
	z.used = n
	z.clamp()
	return z, nil
}

// subMag returns |x| - |y|. The caller guarantees |x| >= |y|.
func subMag(x, y Scaled) (z Scaled) {
	var borrow uint64
	for i := 0; i < x.used; i++ {
		t := uint64(x.dp[i]) - (uint64(y.dp[i]) + borrow)
		z.dp[i] = uint32(t)
		borrow = (t >> scaledLimbBits) & 1
	}
	z.used = x.used
	z.clamp()
	return z
}

// MulDigit returns x * d. The sign of x is kept.
func (x Scaled) MulDigit(d uint32) (z Scaled, err error) {
	var carry uint64
	for i := 0; i < x.used; i++ {
		p := uint64(x.dp[i])*uint64(d) + carry
		z.dp[i] = uint32(p)
		carry = p >> scaledLimbBits
	}
	z.used = x.used
	if carry != 0 {
		if z.used >= ScaledLimbs {
			return zeroScaled, ErrCapacity.New("scaled multiply by %d overflows %d limbs", d, ScaledLimbs)
		}
		z.dp[z.used] = uint32(carry)
		z.used++
	}
	z.neg = x.neg
	z.clamp()
	return z, nil
}

// AddDigit adds d to the magnitude of x; the sign of x is kept. This is
// the digit accumulation step of decimal parsing, not a signed add.
func (x Scaled) AddDigit(d uint32) (z Scaled, err error) {
	sum := uint64(d)
	i := 0
	for ; i < x.used; i++ {
		sum += uint64(x.dp[i])
		z.dp[i] = uint32(sum)
		sum >>= scaledLimbBits
	}
	if sum != 0 {
		if i >= ScaledLimbs {
			return zeroScaled, ErrCapacity.New("scaled add of %d overflows %d limbs", d, ScaledLimbs)
		}
		z.dp[i] = uint32(sum)
		i++
	}
	z.used = i
	z.neg = x.neg
	z.clamp()
	return z, nil
}

// LshLimbs returns x shifted left by n whole limbs. ErrCapacity is
// returned if a non-zero limb would be shifted past the capacity.
func (x Scaled) LshLimbs(n int) (z Scaled, err error) {
	if n <= 0 || x.used == 0 {
		return x, nil
	}
	if x.used+n > ScaledLimbs {
		return zeroScaled, ErrCapacity.New("scaled shift by %d limbs overflows %d limbs", n, ScaledLimbs)
	}
	for i := x.used - 1; i >= 0; i-- {
		z.dp[i+n] = x.dp[i]
	}
	z.used = x.used + n
	z.neg = x.neg
	return z, nil
}

// RshLimbs returns x shifted right by n whole limbs, discarding the low
// limbs. The result is truncated toward zero.
func (x Scaled) RshLimbs(n int) (z Scaled) {
	if n <= 0 {
		return x
	}
	if n >= x.used {
		return zeroScaled
	}
	for i := 0; i < x.used-n; i++ {
		z.dp[i] = x.dp[i+n]
	}
	z.used = x.used - n
	z.neg = x.neg
	z.clamp()
	return z
}

// Lsh returns x * 2**n. ErrCapacity is returned if a set bit would be
// shifted past the capacity.
func (x Scaled) Lsh(n uint) (z Scaled, err error) {
	if x.used == 0 || n == 0 {
		return x, nil
	}

	z, err = x.LshLimbs(int(n / scaledLimbBits))
	if err != nil {
		return zeroScaled, err
	}

	if b := n % scaledLimbBits; b != 0 {
		shift := scaledLimbBits - b
		var carry uint32
		for i := 0; i < z.used; i++ {
			next := z.dp[i] >> shift
			z.dp[i] = (z.dp[i] << b) | carry
			carry = next
		}
		if carry != 0 {
			if z.used >= ScaledLimbs {
				return zeroScaled, ErrCapacity.New("scaled shift by %d bits overflows %d limbs", n, ScaledLimbs)
			}
			z.dp[z.used] = carry
			z.used++
		}
	}
	z.clamp()
	return z, nil
}

// QuoRemPow2 returns the quotient and remainder of x / 2**n, truncated
// toward zero like Go's integer division: q has the sign of x (or is
// zero), and r has the sign of x (or is zero). If n <= 0, q is x and r
// is zero.
func (x Scaled) QuoRemPow2(n int) (q, r Scaled) {
	if n <= 0 {
		return x, zeroScaled
	}

	r = x.RemPow2(n)
	q = x.RshLimbs(n / scaledLimbBits)

	if d := uint(n % scaledLimbBits); d != 0 {
		mask := uint32(1)<<d - 1
		shift := scaledLimbBits - d
		var carry uint32
		for i := q.used - 1; i >= 0; i-- {
			lo := q.dp[i] & mask
			q.dp[i] = (q.dp[i] >> d) | (carry << shift)
			carry = lo
		}
	}
	q.clamp()
	return q, r
}

// Rsh returns x / 2**n truncated toward zero.
func (x Scaled) Rsh(n uint) Scaled {
	q, _ := x.QuoRemPow2(int(n))
	return q
}

// RemPow2 returns x mod 2**n: the low n bits of the magnitude, with the
// sign of x. If n <= 0 the result is zero.
func (x Scaled) RemPow2(n int) (z Scaled) {
	if n <= 0 {
		return zeroScaled
	}
	z = x
	if n >= scaledLimbBits*x.used {
		return z
	}

	start := n / scaledLimbBits
	if n%scaledLimbBits != 0 {
		start++
	}
	for i := start; i < z.used; i++ {
		z.dp[i] = 0
	}
	if b := uint(n % scaledLimbBits); b != 0 {
		z.dp[n/scaledLimbBits] &= scaledLimbMask >> (scaledLimbBits - b)
	}
	z.clamp()
	return z
}

func (x Scaled) AsBigInt() (b *big.Int) {
	var buf [ScaledLimbs * 4]byte
	for i := 0; i < x.used; i++ {
		binary.BigEndian.PutUint32(buf[len(buf)-(i+1)*4:], x.dp[i])
	}
	b = new(big.Int).SetBytes(buf[:])
	if x.neg {
		b.Neg(b)
	}
	return b
}

// AsBigFloat returns the real value of x, magnitude / 2**64, exactly.
func (x Scaled) AsBigFloat() (b *big.Float) {
	b = new(big.Float).SetPrec(ScaledLimbs * scaledLimbBits).SetInt(x.AsBigInt())
	return b.SetMantExp(b, -ScaleBits)
}

// String returns the raw magnitude and sign in decimal. For example, the
// value 2.5 is "46116860184273879040".
func (x Scaled) String() string {
	if x.used == 0 {
		return "0"
	}
	return x.AsBigInt().String()
}

func (x Scaled) Format(s fmt.State, c rune) {
	x.AsBigInt().Format(s, c)
}

func (x Scaled) MarshalText() ([]byte, error) {
	return []byte(x.String()), nil
}

func (x *Scaled) UnmarshalText(bts []byte) (err error) {
	v, err := ScaledFromString(string(bts))
	if err != nil {
		return err
	}
	*x = v
	return nil
}

func (x Scaled) MarshalJSON() ([]byte, error) {
	return []byte(`"` + x.String() + `"`), nil
}

func (x *Scaled) UnmarshalJSON(bts []byte) (err error) {
	if len(bts) > 0 && bts[0] == '"' {
		ln := len(bts)
		if ln < 2 || bts[ln-1] != '"' {
			return ErrMalformed.New("scaled invalid JSON %q", string(bts))
		}
		bts = bts[1 : ln-1]
	}

	v, err := ScaledFromString(string(bts))
	if err != nil {
		return err
	}
	*x = v
	return nil
}
