package trapdoor

import (
	"math"
	"math/big"
	"math/rand"

	"github.com/hackertron/diamond-io/dcrt"
)

// samplePz draws the perturbation vector p of length k+2 (Alg 4 of
// MP12 in its ring form). The first two entries come from a 2x2
// block-recursive sample over K_{2n} with the non-spherical covariance
// s^2*I - alpha^2*T*T^t induced by the secrets; the remaining k are
// spherical with width sqrt(s^2 - alpha^2). Everything is returned in
// evaluation domain.
func samplePz(ctx *dcrt.Context, s, alpha float64, rInts, eInts [][]int64, rng *rand.Rand) []*dcrt.RingElement {
	n := ctx.N()
	k := len(rInts)

	// z = (1/alpha^2 - 1/s^2)^-1 at full precision
	one := new(big.Float).SetPrec(fieldPrec).SetInt64(1)
	s2 := new(big.Float).SetPrec(fieldPrec).SetFloat64(s * s)
	a2 := new(big.Float).SetPrec(fieldPrec).SetFloat64(alpha * alpha)
	invS2 := new(big.Float).SetPrec(fieldPrec).Quo(one, s2)
	invA2 := new(big.Float).SetPrec(fieldPrec).Quo(one, a2)
	zBig := new(big.Float).SetPrec(fieldPrec).Quo(one, new(big.Float).Sub(invA2, invS2))
	z := &bigComplex{re: zBig, im: new(big.Float).SetPrec(fieldPrec)}

	// covariance accumulators a = d = s^2, b = 0, then subtract the
	// z-scaled Gram terms of the secrets slot-wise in the spectrum
	aFld := newFieldElem(n)
	bFld := newFieldElem(n)
	dFld := newFieldElem(n)
	aFld.coeffs[0] = &bigComplex{re: new(big.Float).Copy(s2), im: new(big.Float).SetPrec(fieldPrec)}
	dFld.coeffs[0] = aFld.coeffs[0].copy()
	aFld = aFld.toEval()
	bFld = bFld.toEval()
	dFld = dFld.toEval()

	rF := make([]*fieldElem, k)
	eF := make([]*fieldElem, k)
	for j := 0; j < k; j++ {
		rF[j] = fieldFromSigned(rInts[j]).toEval()
		eF[j] = fieldFromSigned(eInts[j]).toEval()
		rT := rF[j].hermitian()
		eT := eF[j].hermitian()
		for i := 0; i < n; i++ {
			aFld.coeffs[i] = aFld.coeffs[i].sub(rT.coeffs[i].mul(rF[j].coeffs[i]).mul(z))
			bFld.coeffs[i] = bFld.coeffs[i].sub(rT.coeffs[i].mul(eF[j].coeffs[i]).mul(z))
			dFld.coeffs[i] = dFld.coeffs[i].sub(eT.coeffs[i].mul(eF[j].coeffs[i]).mul(z))
		}
	}

	// spherical part: k polys with width sqrt(s^2 - alpha^2)
	sigmaQ := math.Sqrt(s*s - alpha*alpha)
	dgQ := dcrt.NewGaussianSampler(rng, sigmaQ)
	qhat := make([]*dcrt.RingElement, k)
	qInts := make([][]int64, k)
	for j := 0; j < k; j++ {
		ints := make([]int64, n)
		for i := range ints {
			ints[i] = dgQ.Draw(0)
		}
		qInts[j] = ints
		qhat[j] = ctx.FromSignedCoeffs(ints).NTT()
	}

	// centers c0, c1 = -alpha^2/(s^2-alpha^2) * sum_j T_j^t * qhat_j
	scaleN := new(big.Float).SetPrec(fieldPrec).SetFloat64(-alpha * alpha)
	scaleD := new(big.Float).SetPrec(fieldPrec).Sub(s2, a2)
	scale := &bigComplex{
		re: new(big.Float).SetPrec(fieldPrec).Quo(scaleN, scaleD),
		im: new(big.Float).SetPrec(fieldPrec),
	}
	c0 := newFieldElem(n)
	c0.eval = true
	c1 := newFieldElem(n)
	c1.eval = true
	for j := 0; j < k; j++ {
		qF := fieldFromSigned(qInts[j]).toEval()
		rT := rF[j].hermitian()
		eT := eF[j].hermitian()
		for i := 0; i < n; i++ {
			c0.coeffs[i] = c0.coeffs[i].add(rT.coeffs[i].mul(qF.coeffs[i]))
			c1.coeffs[i] = c1.coeffs[i].add(eT.coeffs[i].mul(qF.coeffs[i]))
		}
	}
	c0 = fieldScale(c0, scale).toCoeff()
	c1 = fieldScale(c1, scale).toCoeff()

	// 2x2 block-recursive sample for the correlated head
	p0, p1 := sample2z(aFld, bFld, dFld, c0, c1, rng)

	out := make([]*dcrt.RingElement, k+2)
	out[0] = ctx.FromSignedCoeffs(p0.roundToSigned()).NTT()
	out[1] = ctx.FromSignedCoeffs(p1.roundToSigned()).NTT()
	copy(out[2:], qhat)
	return out
}

// sample2z samples (q0, q1) from the 2x2 Schur complement recursion:
// q1 from the d block, then q0 from a - b*d^-1*b^t with the center
// shifted by b*d^-1*(q1 - c1). a, b, d are in the spectrum; the
// centers are coefficient-domain.
func sample2z(a, b, d, c0, c1 *fieldElem, rng *rand.Rand) (q0, q1 *fieldElem) {
	q1 = sampleFZ(d.toCoeff(), c1, rng)

	delta := fieldSub(q1, c1).toEval()
	invD, norms := d.inverseDiag()
	invD = fieldDivNorms(invD, norms)

	scaledDelta := fieldMul(b, fieldMul(invD, delta)).toCoeff()
	c0p := fieldAdd(c0, scaledDelta)

	cond := fieldMul(b, fieldMul(invD, b.hermitian())).toCoeff()
	aPr := fieldSub(a.toCoeff(), cond)

	q0 = sampleFZ(aPr, c0p, rng)
	return
}

// sampleFZ samples an integer vector from the Gaussian with field
// covariance f and center c by even/odd splitting down to dimension 1.
// Both arguments are coefficient-domain.
func sampleFZ(f, c *fieldElem, rng *rand.Rand) *fieldElem {
	m := f.n
	if m == 1 {
		variance, _ := f.coeffs[0].re.Float64()
		if variance < 0 {
			variance = 0
		}
		mean, _ := c.coeffs[0].re.Float64()
		dg := dcrt.NewGaussianSampler(rng, math.Sqrt(variance))
		out := newFieldElem(1)
		out.coeffs[0] = newBigComplex(float64(dg.Draw(mean)), 0)
		return out
	}

	f0 := f.extractEven().toEval()
	f1 := f.extractOdd().toEval()
	c0 := c.extractEven()
	c1 := c.extractOdd()

	q0, q1 := sample2z(f0, f1, f0, c0, c1, rng)

	out := newFieldElem(m)
	half := m / 2
	for i := 0; i < half; i++ {
		out.coeffs[i] = q0.coeffs[i]
		out.coeffs[i+half] = q1.coeffs[i]
	}
	out.inversePermute()
	return out
}
