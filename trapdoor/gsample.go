package trapdoor

import (
	"math"
	"math/big"
	"math/rand"

	"github.com/hackertron/diamond-io/dcrt"
)

// bigDigits decomposes v into k little-endian base-b digits, each in
// [0, base). v must be non-negative.
func bigDigits(v *big.Int, base uint64, k int) []int64 {
	digits := make([]int64, k)
	tmp := new(big.Int).Set(v)
	b := new(big.Int).SetUint64(base)
	rem := new(big.Int)
	for i := 0; i < k; i++ {
		tmp.QuoRem(tmp, b, rem)
		digits[i] = rem.Int64()
	}
	return digits
}

// perturbDigits draws the digit-lattice perturbation p (PERTURB of the
// G-sampling algorithm), using the sparse Cholesky factors ell, h.
func perturbDigits(sigma float64, ell, h []float64, base uint64, rng *rand.Rand) []int64 {
	k := len(ell)
	z := make([]int64, k)
	beta := 0.0
	for i := 0; i < k; i++ {
		mean := beta / ell[i]
		dg := dcrt.NewGaussianSampler(rng, sigma/ell[i])
		z[i] = dg.Draw(mean)
		beta = -float64(z[i]) * h[i]
	}

	b := int64(base)
	p := make([]int64, k)
	p[0] = (2*b+1)*z[0] + b*z[1]
	for i := 1; i < k-1; i++ {
		p[i] = b * (z[i-1] + 2*z[i] + z[i+1])
	}
	p[k-1] = b * (z[k-2] + 2*z[k-1])
	return p
}

// sampleDigitsD is SAMPLE_D over the digit lattice: the last coordinate
// conditions all the others through the accumulator a.
func sampleDigitsD(sigma float64, a, c []float64, rng *rand.Rand) []int64 {
	k := len(a)
	z := make([]int64, k)

	last := dcrt.NewGaussianSampler(rng, sigma/c[k-1])
	z[k-1] = last.Draw(-a[k-1] / c[k-1])
	for i := range a {
		a[i] += float64(z[k-1]) * c[i]
	}

	dg := dcrt.NewGaussianSampler(rng, sigma)
	for i := 0; i < k-1; i++ {
		z[i] = dg.Draw(-a[i])
	}
	return z
}

// sampleGDigits samples, for every coefficient slot, a short integer
// digit vector t with <g, t> = v mod q, where v is the slot's full CRT
// lift in [0, q). The output is k rows of n signed integers. Exactness
// of the congruence holds for every drawn z by the carry telescoping;
// the Gaussian machinery only shapes the distribution.
func sampleGDigits(ctx *dcrt.Context, sigma float64, vCoeffs []*big.Int, rng *rand.Rand) [][]int64 {
	n := ctx.N()
	k := ctx.Digits()
	base := ctx.Base()
	b := int64(base)
	bf := float64(base)

	// sparse Cholesky of the digit-lattice Gram matrix
	ell := make([]float64, k)
	h := make([]float64, k)
	ell[0] = math.Sqrt(bf*(1+1/float64(k)) + 1)
	for i := 1; i < k; i++ {
		ell[i] = math.Sqrt(bf * (1 + 1/float64(k-i)))
	}
	for i := 1; i < k; i++ {
		h[i] = math.Sqrt(bf * (1 - 1/float64(k-(i-1))))
	}

	qDigits := bigDigits(ctx.Modulus(), base, k)

	// d[i] = (q_0/b + q_1)/b ... cumulative base-b expansion of q
	d := make([]float64, k)
	d[0] = float64(qDigits[0]) / bf
	for i := 1; i < k; i++ {
		d[i] = (d[i-1] + float64(qDigits[i])) / bf
	}

	sigmaP := sigma / (bf + 1)

	Z := make([][]int64, k)
	for i := range Z {
		Z[i] = make([]int64, n)
	}

	for j := 0; j < n; j++ {
		vDigits := bigDigits(vCoeffs[j], base, k)

		p := perturbDigits(sigmaP, ell, h, base, rng)

		// carry centers: b*c_i = c_{i-1} + v_i - p_i
		c := make([]float64, k)
		c[0] = float64(vDigits[0]-p[0]) / bf
		for i := 1; i < k; i++ {
			c[i] = (c[i-1] + float64(vDigits[i]-p[i])) / bf
		}

		dAcc := make([]float64, k)
		copy(dAcc, d)
		cAcc := make([]float64, k)
		copy(cAcc, c)
		z := sampleDigitsD(sigmaP, cAcc, dAcc, rng)

		// recombine with carries: <g, t> = v + q*z_{k-1}
		Z[0][j] = b*z[0] + qDigits[0]*z[k-1] + vDigits[0]
		for i := 1; i < k-1; i++ {
			Z[i][j] = b*z[i] - z[i-1] + qDigits[i]*z[k-1] + vDigits[i]
		}
		Z[k-1][j] = qDigits[k-1]*z[k-1] - z[k-2] + vDigits[k-1]
	}
	return Z
}
