package vm

import "math/big"

// DecodeInt decodes a as a canonical two's-complement big-endian signed
// integer. The empty atom decodes to zero. Decoding is total over all byte
// strings — callers apply range checks to the result afterward, since
// bounds are checked post-decode; this is why the return type is
// math/big.Int rather than a fixed-width int: an atom longer than 8 bytes
// must still decode to *something* so an out-of-range check can reject it,
// rather than overflowing silently the way a fixed-width parse would.
func DecodeInt(a Atom) *big.Int {
	if len(a) == 0 {
		return new(big.Int)
	}
	v := new(big.Int).SetBytes(a)
	if a[0]&0x80 != 0 {
		v.Sub(v, new(big.Int).Lsh(big.NewInt(1), uint(len(a))*8))
	}
	return v
}

// EncodeInt encodes v as the minimal-length two's-complement big-endian
// atom: zero encodes to the empty atom, and no encoding carries a redundant
// leading 0x00 or 0xff byte.
func EncodeInt(v *big.Int) Atom {
	if v.Sign() == 0 {
		return Atom{}
	}
	for n := 1; ; n++ {
		bits := uint(n * 8)
		half := new(big.Int).Lsh(big.NewInt(1), bits-1)
		if v.Cmp(new(big.Int).Neg(half)) < 0 || v.Cmp(half) >= 0 {
			continue
		}
		twosComp := v
		if v.Sign() < 0 {
			mod := new(big.Int).Lsh(big.NewInt(1), bits)
			twosComp = new(big.Int).Add(mod, v)
		}
		b := twosComp.Bytes()
		if len(b) < n {
			padded := make([]byte, n)
			copy(padded[n-len(b):], b)
			b = padded
		}
		return b
	}
}

var (
	maxUint32Plus1 = new(big.Int).Lsh(big.NewInt(1), 32)
	maxUint64Plus1 = new(big.Int).Lsh(big.NewInt(1), 64)
)

// FitsUint64 reports whether 0 <= v < 2^64, returning the value as a uint64
// when it does.
func FitsUint64(v *big.Int) (uint64, bool) {
	if v.Sign() < 0 || v.Cmp(maxUint64Plus1) >= 0 {
		return 0, false
	}
	return v.Uint64(), true
}

// FitsUint32 reports whether 0 <= v < 2^32, returning the value as a uint32
// when it does.
func FitsUint32(v *big.Int) (uint32, bool) {
	if v.Sign() < 0 || v.Cmp(maxUint32Plus1) >= 0 {
		return 0, false
	}
	return uint32(v.Uint64()), true
}
