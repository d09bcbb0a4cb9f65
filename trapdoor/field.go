// Package trapdoor implements lattice trapdoor generation and Gaussian
// preimage sampling for the public rows used by the encoder. A key for
// context ctx is a row A = [1, a, g_1-(a*r_1+e_1), ..., g_k-(a*r_k+e_k)]
// together with the short secrets (r, e); SamplePreimage produces short
// x with A*x = u exactly.
package trapdoor

import (
	"math"
	"math/big"
	"math/bits"
)

// fieldPrec is the big.Float precision carried through perturbation
// sampling. The covariance recursion is numerically delicate; float64
// twiddles feed the FFT but all accumulation happens at this width.
const fieldPrec = 256

type bigComplex struct {
	re, im *big.Float
}

func newBigComplex(re, im float64) *bigComplex {
	return &bigComplex{
		re: new(big.Float).SetPrec(fieldPrec).SetFloat64(re),
		im: new(big.Float).SetPrec(fieldPrec).SetFloat64(im),
	}
}

func (z *bigComplex) copy() *bigComplex {
	return &bigComplex{
		re: new(big.Float).Copy(z.re),
		im: new(big.Float).Copy(z.im),
	}
}

func (z *bigComplex) add(w *bigComplex) *bigComplex {
	return &bigComplex{
		re: new(big.Float).Add(z.re, w.re),
		im: new(big.Float).Add(z.im, w.im),
	}
}

func (z *bigComplex) sub(w *bigComplex) *bigComplex {
	return &bigComplex{
		re: new(big.Float).Sub(z.re, w.re),
		im: new(big.Float).Sub(z.im, w.im),
	}
}

func (z *bigComplex) mul(w *bigComplex) *bigComplex {
	ac := new(big.Float).Mul(z.re, w.re)
	bd := new(big.Float).Mul(z.im, w.im)
	ad := new(big.Float).Mul(z.re, w.im)
	bc := new(big.Float).Mul(z.im, w.re)
	return &bigComplex{
		re: new(big.Float).Sub(ac, bd),
		im: new(big.Float).Add(ad, bc),
	}
}

func (z *bigComplex) conj() *bigComplex {
	return &bigComplex{
		re: new(big.Float).Copy(z.re),
		im: new(big.Float).Neg(z.im),
	}
}

func (z *bigComplex) divBy(s *big.Float) *bigComplex {
	return &bigComplex{
		re: new(big.Float).Quo(z.re, s),
		im: new(big.Float).Quo(z.im, s),
	}
}

// fieldElem is an element of the 2n-th cyclotomic field K_{2n}, either
// as real coefficients of x^0..x^{n-1} (coeff) or as values at the odd
// 2n-th roots of unity (eval, the negacyclic spectrum).
type fieldElem struct {
	n      int
	coeffs []*bigComplex
	eval   bool
}

func newFieldElem(n int) *fieldElem {
	c := make([]*bigComplex, n)
	for i := range c {
		c[i] = newBigComplex(0, 0)
	}
	return &fieldElem{n: n, coeffs: c}
}

func fieldFromSigned(ints []int64) *fieldElem {
	f := &fieldElem{n: len(ints), coeffs: make([]*bigComplex, len(ints))}
	for i, v := range ints {
		f.coeffs[i] = newBigComplex(float64(v), 0)
	}
	return f
}

func (f *fieldElem) copy() *fieldElem {
	out := &fieldElem{n: f.n, coeffs: make([]*bigComplex, f.n), eval: f.eval}
	for i := range f.coeffs {
		out.coeffs[i] = f.coeffs[i].copy()
	}
	return out
}

func bitReverse(i, logN int) int {
	var rev int
	for b := 0; b < logN; b++ {
		rev = (rev << 1) | ((i >> b) & 1)
	}
	return rev
}

// fftBig is an in-place-style Cooley-Tukey forward FFT on a fresh copy.
// Twiddles come from float64 trig lifted to big.Float; the accumulation
// stays at fieldPrec. Length must be a power of two.
func fftBig(in []*bigComplex) []*bigComplex {
	n := len(in)
	if n == 0 || n&(n-1) != 0 {
		panic("trapdoor: fft length must be a power of two")
	}
	result := make([]*bigComplex, n)
	for i := range in {
		result[i] = in[i].copy()
	}
	logN := bits.Len(uint(n)) - 1
	for i := 0; i < n; i++ {
		if j := bitReverse(i, logN); i < j {
			result[i], result[j] = result[j], result[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := -2 * math.Pi / float64(size)
		wn := newBigComplex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += size {
			w := newBigComplex(1, 0)
			for j := 0; j < half; j++ {
				t := result[start+j+half].mul(w)
				result[start+j+half] = result[start+j].sub(t)
				result[start+j] = result[start+j].add(t)
				w = w.mul(wn)
			}
		}
	}
	return result
}

// ifftBig is the inverse transform, scaled by 1/n.
func ifftBig(in []*bigComplex) []*bigComplex {
	n := len(in)
	if n == 0 || n&(n-1) != 0 {
		panic("trapdoor: ifft length must be a power of two")
	}
	result := make([]*bigComplex, n)
	for i := range in {
		result[i] = in[i].copy()
	}
	logN := bits.Len(uint(n)) - 1
	for i := 0; i < n; i++ {
		if j := bitReverse(i, logN); i < j {
			result[i], result[j] = result[j], result[i]
		}
	}
	for size := 2; size <= n; size <<= 1 {
		half := size >> 1
		angle := 2 * math.Pi / float64(size)
		wn := newBigComplex(math.Cos(angle), math.Sin(angle))
		for start := 0; start < n; start += size {
			w := newBigComplex(1, 0)
			for j := 0; j < half; j++ {
				t := result[start+j+half].mul(w)
				result[start+j+half] = result[start+j].sub(t)
				result[start+j] = result[start+j].add(t)
				w = w.mul(wn)
			}
		}
	}
	invN := new(big.Float).SetPrec(fieldPrec).Quo(
		new(big.Float).SetPrec(fieldPrec).SetInt64(1),
		new(big.Float).SetPrec(fieldPrec).SetInt64(int64(n)))
	for i := range result {
		result[i].re.Mul(result[i].re, invN)
		result[i].im.Mul(result[i].im, invN)
	}
	return result
}

// toEval sends a coefficient-domain element to the negacyclic spectrum:
// zero-pad to length 2n, forward FFT, keep the odd bins.
func (f *fieldElem) toEval() *fieldElem {
	if f.eval {
		return f
	}
	n := f.n
	a := make([]*bigComplex, 2*n)
	for i := 0; i < n; i++ {
		a[i] = f.coeffs[i].copy()
	}
	for i := n; i < 2*n; i++ {
		a[i] = newBigComplex(0, 0)
	}
	b := fftBig(a)
	out := &fieldElem{n: n, coeffs: make([]*bigComplex, n), eval: true}
	for k := 0; k < n; k++ {
		out.coeffs[k] = b[2*k+1].copy()
	}
	return out
}

// toCoeff inverts toEval: embed the spectrum into the odd bins of a
// length-2n buffer, inverse FFT, and double to undo the half the
// odd-slot embedding introduces.
func (f *fieldElem) toCoeff() *fieldElem {
	if !f.eval {
		return f
	}
	n := f.n
	a := make([]*bigComplex, 2*n)
	for i := 0; i < 2*n; i += 2 {
		a[i] = newBigComplex(0, 0)
	}
	for k := 0; k < n; k++ {
		a[2*k+1] = f.coeffs[k].copy()
	}
	inv := ifftBig(a)
	two := new(big.Float).SetPrec(fieldPrec).SetInt64(2)
	out := &fieldElem{n: n, coeffs: make([]*bigComplex, n)}
	for j := 0; j < n; j++ {
		out.coeffs[j] = &bigComplex{
			re: new(big.Float).SetPrec(fieldPrec).Mul(inv[j].re, two),
			im: new(big.Float).SetPrec(fieldPrec).Mul(inv[j].im, two),
		}
	}
	return out
}

func fieldAdd(a, b *fieldElem) *fieldElem {
	out := &fieldElem{n: a.n, coeffs: make([]*bigComplex, a.n), eval: a.eval}
	for i := range out.coeffs {
		out.coeffs[i] = a.coeffs[i].add(b.coeffs[i])
	}
	return out
}

func fieldSub(a, b *fieldElem) *fieldElem {
	out := &fieldElem{n: a.n, coeffs: make([]*bigComplex, a.n), eval: a.eval}
	for i := range out.coeffs {
		out.coeffs[i] = a.coeffs[i].sub(b.coeffs[i])
	}
	return out
}

// fieldMul is the pointwise product; both operands must be in eval.
func fieldMul(a, b *fieldElem) *fieldElem {
	out := &fieldElem{n: a.n, coeffs: make([]*bigComplex, a.n), eval: true}
	for i := range out.coeffs {
		out.coeffs[i] = a.coeffs[i].mul(b.coeffs[i])
	}
	return out
}

func fieldScale(a *fieldElem, s *bigComplex) *fieldElem {
	out := &fieldElem{n: a.n, coeffs: make([]*bigComplex, a.n), eval: a.eval}
	for i := range out.coeffs {
		out.coeffs[i] = a.coeffs[i].mul(s)
	}
	return out
}

// hermitian returns f^t. In the negacyclic spectrum this is slot-wise
// complex conjugation.
func (f *fieldElem) hermitian() *fieldElem {
	out := &fieldElem{n: f.n, coeffs: make([]*bigComplex, f.n), eval: f.eval}
	if f.eval {
		for i := range out.coeffs {
			out.coeffs[i] = f.coeffs[i].conj()
		}
		return out
	}
	out.coeffs[0] = f.coeffs[0].copy()
	for i := 1; i < f.n; i++ {
		src := f.coeffs[f.n-i]
		out.coeffs[i] = &bigComplex{
			re: new(big.Float).SetPrec(fieldPrec).Neg(src.re),
			im: new(big.Float).SetPrec(fieldPrec).Neg(src.im),
		}
	}
	return out
}

// inverseDiag returns conj(d) slot-wise plus the squared magnitudes, so
// conj(d)/|d|^2 is the pointwise inverse.
func (f *fieldElem) inverseDiag() (*fieldElem, []*big.Float) {
	out := &fieldElem{n: f.n, coeffs: make([]*bigComplex, f.n), eval: f.eval}
	norms := make([]*big.Float, f.n)
	for i := range f.coeffs {
		re2 := new(big.Float).Mul(f.coeffs[i].re, f.coeffs[i].re)
		im2 := new(big.Float).Mul(f.coeffs[i].im, f.coeffs[i].im)
		norms[i] = new(big.Float).Add(re2, im2)
		if norms[i].Sign() == 0 {
			panic("trapdoor: singular covariance slot")
		}
		out.coeffs[i] = f.coeffs[i].conj()
	}
	return out, norms
}

func fieldDivNorms(a *fieldElem, norms []*big.Float) *fieldElem {
	out := &fieldElem{n: a.n, coeffs: make([]*bigComplex, a.n), eval: a.eval}
	for i := range a.coeffs {
		out.coeffs[i] = a.coeffs[i].divBy(norms[i])
	}
	return out
}

func (f *fieldElem) extractEven() *fieldElem {
	half := f.n / 2
	out := &fieldElem{n: half, coeffs: make([]*bigComplex, half)}
	for i := 0; i < half; i++ {
		out.coeffs[i] = f.coeffs[2*i]
	}
	return out
}

func (f *fieldElem) extractOdd() *fieldElem {
	half := f.n / 2
	out := &fieldElem{n: half, coeffs: make([]*bigComplex, half)}
	for i := 0; i < half; i++ {
		out.coeffs[i] = f.coeffs[2*i+1]
	}
	return out
}

// inversePermute interleaves the two halves back into even/odd order,
// undoing the split done by the recursion.
func (f *fieldElem) inversePermute() {
	n := f.n
	if n <= 1 {
		return
	}
	tmp := make([]*bigComplex, n)
	half := n / 2
	e, o := 0, half
	for i := 0; e < half; i += 2 {
		tmp[i] = f.coeffs[e]
		tmp[i+1] = f.coeffs[o]
		e++
		o++
	}
	copy(f.coeffs, tmp)
}

// roundToSigned rounds the real parts to the nearest integers.
func (f *fieldElem) roundToSigned() []int64 {
	out := make([]int64, f.n)
	for i, c := range f.coeffs {
		v, _ := c.re.Float64()
		out[i] = int64(math.Round(v))
	}
	return out
}
