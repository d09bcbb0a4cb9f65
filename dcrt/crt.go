package dcrt

import (
	"math/big"
)

// Recompose performs Garner recomposition of residues given moduli.
func Recompose(residues []*big.Int, moduli []*big.Int) *big.Int {
	x := new(big.Int).Set(residues[0])
	m := new(big.Int).Set(moduli[0])
	tmp := new(big.Int)
	for i := 1; i < len(residues); i++ {
		t := new(big.Int).Sub(residues[i], x)
		t.Mod(t, moduli[i])
		inv := new(big.Int).ModInverse(m, moduli[i])
		t.Mul(t, inv)
		t.Mod(t, moduli[i])
		tmp.Mul(m, t)
		x.Add(x, tmp)
		m.Mul(m, moduli[i])
	}
	return x
}

// CoeffsBig reconstructs all coefficients of the element as integers in
// [0, q) via CRT. This is the only place full-width arithmetic happens;
// everything else stays limb-wise. The element is brought to
// coefficient domain first (on a copy if needed).
func (e *RingElement) CoeffsBig() []*big.Int {
	ce := e.InvNTT()
	moduli := make([]*big.Int, len(e.ctx.qi))
	for i, qi := range e.ctx.qi {
		moduli[i] = new(big.Int).SetUint64(qi)
	}
	out := make([]*big.Int, e.ctx.n)
	residues := make([]*big.Int, len(moduli))
	for j := 0; j < e.ctx.n; j++ {
		for i := range moduli {
			residues[i] = new(big.Int).SetUint64(ce.poly.Coeffs[i][j])
		}
		out[j] = Recompose(residues, moduli)
		out[j].Mod(out[j], e.ctx.q)
	}
	return out
}

// CenteredCoeffsBig reconstructs all coefficients lifted to the centered
// interval (-q/2, q/2].
func (e *RingElement) CenteredCoeffsBig() []*big.Int {
	out := e.CoeffsBig()
	half := new(big.Int).Rsh(e.ctx.q, 1)
	for _, v := range out {
		if v.Cmp(half) > 0 {
			v.Sub(v, e.ctx.q)
		}
	}
	return out
}

// SetCoeffBig writes coefficient j from a full-width integer, reducing
// into each limb. The element must be in coefficient domain.
func (e *RingElement) SetCoeffBig(j int, v *big.Int) {
	if e.dom != Coeff {
		panic("dcrt: SetCoeffBig requires coefficient domain")
	}
	red := new(big.Int)
	for i, qi := range e.ctx.qi {
		red.Mod(v, new(big.Int).SetUint64(qi))
		if red.Sign() < 0 {
			red.Add(red, new(big.Int).SetUint64(qi))
		}
		e.poly.Coeffs[i][j] = red.Uint64()
	}
}

// MaxNorm returns the infinity norm of the element under the centered
// lift, as a big integer.
func (e *RingElement) MaxNorm() *big.Int {
	max := new(big.Int)
	for _, v := range e.CenteredCoeffsBig() {
		a := new(big.Int).Abs(v)
		if a.Cmp(max) > 0 {
			max.Set(a)
		}
	}
	return max
}

// UnsignedToSigned maps u in [0,q) to the centered representative in
// [-q/2, q/2).
func UnsignedToSigned(u, q uint64) int64 {
	half := q >> 1
	if u > half {
		return int64(u) - int64(q)
	}
	return int64(u)
}

// SignedToUnsigned maps a signed integer back to [0,q).
func SignedToUnsigned(s int64, q uint64) uint64 {
	m := int64(q)
	r := s % m
	if r < 0 {
		r += m
	}
	return uint64(r)
}
