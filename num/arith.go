package num

// mul64to128 returns the 128-bit product of u and v as (hi, lo). Both
// operands are split into 32-bit halves and the four half-word partial
// products are combined with explicit carries, so no double-width
// native multiply is needed.
func mul64to128(u, v uint64) (hi, lo uint64) {
	var (
		u1 = (u & 0xffffffff)
		v1 = (v & 0xffffffff)
		t  = (u1 * v1)
		w3 = (t & 0xffffffff)
		k  = (t >> 32)
	)

	u >>= 32
	t = (u * v1) + k
	k = (t & 0xffffffff)
	var w1 = (t >> 32)

	v >>= 32
	t = (u1 * v) + k
	k = (t >> 32)

	return (u * v) + w1 + k,
		(t << 32) + w3
}

// addWW returns x + y + c as (carry, sum), with c == 0 or 1.
func addWW(x, y, c uint64) (z1, z0 uint64) {
	yc := y + c
	z0 = x + yc
	if z0 < x || yc < y {
		z1 = 1
	}
	return z1, z0
}

// mulAddWWW returns x*y + c + d as (hi, lo). The result always fits:
// (2**64-1)**2 + 2*(2**64-1) == 2**128-1.
func mulAddWWW(x, y, c, d uint64) (hi, lo uint64) {
	hi, lo = mul64to128(x, y)
	var cc uint64
	cc, lo = addWW(lo, c, 0)
	hi += cc
	cc, lo = addWW(lo, d, 0)
	hi += cc
	return hi, lo
}
