// Package bignum implements the arbitrary-precision integer and float
// payloads used by the Static variant of a compile-time Value (see package
// value). All arithmetic is overflow-flagged: it never panics and never
// silently wraps unless the caller explicitly asks for wrapping semantics.
package bignum

import "math/big"

// Int is an arbitrary-precision signed integer with a width-independent
// magnitude. The sign is carried by the underlying big.Int.
type Int struct {
	v *big.Int
}

// Float is an arbitrary-precision float backed by math/big.
type Float struct {
	v *big.Float
}

// NewInt builds an Int from an int64.
func NewInt(n int64) Int {
	return Int{v: big.NewInt(n)}
}

// NewIntFromBig wraps an existing big.Int without copying.
func NewIntFromBig(v *big.Int) Int {
	return Int{v: v}
}

// NewFloat builds a Float from a float64.
func NewFloat(f float64) Float {
	return Float{v: big.NewFloat(f)}
}

// NewFloatFromBig wraps an existing big.Float without copying.
func NewFloatFromBig(v *big.Float) Float {
	return Float{v: v}
}

func (i Int) Big() *big.Int { return i.v }
func (f Float) Big() *big.Float { return f.v }

func (i Int) String() string { return i.v.String() }
func (f Float) String() string { return f.v.Text('g', -1) }

// Sign returns -1, 0, or 1.
func (i Int) Sign() int { return i.v.Sign() }

// Cmp compares two arbitrary-precision integers by magnitude and sign.
func (i Int) Cmp(o Int) int { return i.v.Cmp(o.v) }

// CmpFloat compares two arbitrary-precision floats.
func (f Float) Cmp(o Float) int { return f.v.Cmp(o.v) }

// Equal reports structural (value) equality.
func (i Int) Equal(o Int) bool { return i.v.Cmp(o.v) == 0 }
func (f Float) Equal(o Float) bool { return f.v.Cmp(o.v) == 0 }

// -----------------------------------------------------------------------------
// Overflow-flagged integer arithmetic. Every op returns the mathematically
// exact result plus a bool that is true iff the result does not fit the
// requested bit width/signedness -- the caller decides whether that matters
// (wrapping ops ignore the flag and truncate instead).

// Add returns i+o and whether the exact result overflows the given width.
func (i Int) Add(o Int, bits int, signed bool) (Int, bool) {
	r := new(big.Int).Add(i.v, o.v)
	return Int{r}, !fitsBits(r, bits, signed)
}

func (i Int) Sub(o Int, bits int, signed bool) (Int, bool) {
	r := new(big.Int).Sub(i.v, o.v)
	return Int{r}, !fitsBits(r, bits, signed)
}

func (i Int) Mul(o Int, bits int, signed bool) (Int, bool) {
	r := new(big.Int).Mul(i.v, o.v)
	return Int{r}, !fitsBits(r, bits, signed)
}

// Div performs truncating integer division. ok is false on division by zero.
func (i Int) Div(o Int, bits int, signed bool) (Int, bool, bool) {
	if o.v.Sign() == 0 {
		return Int{}, false, false
	}
	r := new(big.Int).Quo(i.v, o.v)
	return Int{r}, !fitsBits(r, bits, signed), true
}

// Mod performs truncating remainder (sign of dividend). ok is false on
// division by zero.
func (i Int) Mod(o Int, bits int, signed bool) (Int, bool, bool) {
	if o.v.Sign() == 0 {
		return Int{}, false, false
	}
	r := new(big.Int).Rem(i.v, o.v)
	return Int{r}, !fitsBits(r, bits, signed), true
}

// Neg returns -i.
func (i Int) Neg(bits int, signed bool) (Int, bool) {
	r := new(big.Int).Neg(i.v)
	return Int{r}, !fitsBits(r, bits, signed)
}

// Shl performs a left shift by a non-negative shift amount. overflow is true
// if the shift amount is at least bits, or if the shifted result does not
// fit in bits.
func (i Int) Shl(shiftAmt uint64, bits int, signed bool) (Int, bool) {
	if shiftAmt >= uint64(bits) {
		return Int{}, true
	}
	r := new(big.Int).Lsh(i.v, uint(shiftAmt))
	return Int{r}, !fitsBits(r, bits, signed)
}

// Shr performs an arithmetic (sign-preserving) right shift.
func (i Int) Shr(shiftAmt uint64, bits int, signed bool) (Int, bool) {
	if shiftAmt >= uint64(bits) {
		return Int{}, true
	}
	r := new(big.Int).Rsh(i.v, uint(shiftAmt))
	return Int{r}, false
}

func (i Int) And(o Int) Int { return Int{new(big.Int).And(i.v, o.v)} }
func (i Int) Or(o Int) Int { return Int{new(big.Int).Or(i.v, o.v)} }
func (i Int) Xor(o Int) Int { return Int{new(big.Int).Xor(i.v, o.v)} }

// Not returns the bitwise complement within the given width (two's
// complement), used by the unary `~` operator.
func (i Int) Not(bits int, signed bool) Int {
	return i.Xor(allOnes(bits)).WrappingTrunc(bits, signed)
}

func allOnes(bits int) Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	return Int{new(big.Int).Sub(mod, big.NewInt(1))}
}

// WrappingTrunc truncates i to bits/signed using two's-complement wraparound,
// used by the wrapping arithmetic variants.
func (i Int) WrappingTrunc(bits int, signed bool) Int {
	mod := new(big.Int).Lsh(big.NewInt(1), uint(bits))
	r := new(big.Int).Mod(i.v, mod)
	if r.Sign() < 0 {
		r.Add(r, mod)
	}
	if signed {
		half := new(big.Int).Rsh(mod, 1)
		if r.Cmp(half) >= 0 {
			r.Sub(r, mod)
		}
	}
	return Int{r}
}

// FitsBits reports whether i fits in the given bit width / signedness
// exactly, used both by the literal-fit coercion rule and
// by overflow checks on folded arithmetic.
func (i Int) FitsBits(bits int, signed bool) bool {
	return fitsBits(i.v, bits, signed)
}

func fitsBits(v *big.Int, bits int, signed bool) bool {
	if signed {
		half := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
		min := new(big.Int).Neg(half)
		max := new(big.Int).Sub(half, big.NewInt(1))
		return v.Cmp(min) >= 0 && v.Cmp(max) <= 0
	}
	if v.Sign() < 0 {
		return false
	}
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), uint(bits)), big.NewInt(1))
	return v.Cmp(max) <= 0
}

// -----------------------------------------------------------------------------
// Float arithmetic. Floats do not carry an overflow flag in the integer
// sense; "overflow" here means the result is not representable by the
// target precision (±Inf), which the analyzer treats as an error.

func (f Float) Add(o Float) (Float, bool) { return binFloat(f, o, (*big.Float).Add) }
func (f Float) Sub(o Float) (Float, bool) { return binFloat(f, o, (*big.Float).Sub) }
func (f Float) Mul(o Float) (Float, bool) { return binFloat(f, o, (*big.Float).Mul) }

// Div returns f/o; ok is false on division by zero.
func (f Float) Div(o Float) (Float, bool, bool) {
	if o.v.Sign() == 0 {
		return Float{}, false, false
	}
	r, of := binFloat(f, o, (*big.Float).Quo)
	return r, of, true
}

func (f Float) Neg() Float {
	return Float{new(big.Float).Neg(f.v)}
}

func binFloat(a, b Float, op func(z, x, y *big.Float) *big.Float) (Float, bool) {
	r := new(big.Float)
	op(r, a.v, b.v)
	return Float{r}, r.IsInf()
}

// ToInt truncates a float toward zero, used by explicit float->int casts.
func (f Float) ToInt() Int {
	i, _ := f.v.Int(nil)
	return Int{i}
}

// ToFloat converts an integer to a big.Float exactly.
func (i Int) ToFloat() Float {
	return Float{new(big.Float).SetInt(i.v)}
}
