package num

import (
	"math/big"
)

const (
	// WideLimbs is the capacity of a Wide, in 64-bit limbs (512 bits).
	WideLimbs = 8

	// ScaledLimbs is the capacity of a Scaled, in 32-bit limbs (192 bits).
	ScaledLimbs = 6

	// ScaleBits is the fixed-point scale of a Scaled: the stored magnitude
	// is the real value multiplied by 2**ScaleBits.
	ScaleBits = 64

	// ScaleLimbs is ScaleBits expressed in Scaled limbs.
	ScaleLimbs = ScaleBits / scaledLimbBits

	wideLimbBits   = 64
	scaledLimbBits = 32
	scaledLimbMask = 0xFFFFFFFF

	maxUint64 = 1<<64 - 1

	signBit  = 0x8000000000000000
	signMask = 0x7FFFFFFFFFFFFFFF
)

var (
	zeroWide   Wide
	zeroScaled Scaled

	big0 = new(big.Int).SetInt64(0)
	big1 = new(big.Int).SetInt64(1)

	maxBigUint64 = new(big.Int).SetUint64(maxUint64)

	// wrapBigScale is 1 << 64, the fixed-point unit of a Scaled.
	wrapBigScale = new(big.Int).Lsh(big1, ScaleBits)

	// maxBigWide is (1 << 512) - 1.
	maxBigWide = new(big.Int).Sub(new(big.Int).Lsh(big1, WideLimbs*wideLimbBits), big1)

	// maxBigScaled is (1 << 192) - 1, the largest Scaled magnitude.
	maxBigScaled = new(big.Int).Sub(new(big.Int).Lsh(big1, ScaledLimbs*scaledLimbBits), big1)
)
