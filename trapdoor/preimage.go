package trapdoor

import (
	"math"
	"math/big"
	"math/rand"
	"time"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/prof"
)

// maxPreimageAttempts bounds the norm-rejection loop.
const maxPreimageAttempts = 8

// SpectralBound returns the analytic bound on the spectral norm of the
// trapdoor, s = 1.8*(b+1)*sigma'^2*(sqrt(n*k)+sqrt(2n)+4.7), with
// sigma' the smoothing parameter for the reference dimension.
func SpectralBound(n, k int, base uint64) float64 {
	const (
		dgError       = 8.27181e-25
		nMax          = 2048
		spectralConst = 1.8
	)
	sigma := math.Sqrt(math.Log(2*float64(nMax)/dgError) / math.Pi)
	sig2 := sigma * sigma
	term := math.Sqrt(float64(n*k)) + math.Sqrt(2*float64(n)) + 4.7
	return spectralConst * float64(base+1) * sig2 * term
}

// CalculateParams derives the secret width sigmaT = (b+1)*sigma and the
// preimage width s from the ring parameters.
func CalculateParams(base uint64, n, k int, sigma float64) (sigmaT, s float64) {
	sigmaT = float64(base+1) * sigma
	s = SpectralBound(n, k, base)
	return
}

// defaultNormBound is s*sqrt(n*(k+2)), the expected infinity-norm scale
// of a preimage with ample slack.
func defaultNormBound(ctx *dcrt.Context, s float64) *big.Int {
	m := ctx.Digits() + 2
	bound := s * math.Sqrt(float64(ctx.N()*m))
	f := new(big.Float).SetFloat64(bound)
	out, _ := f.Int(nil)
	return out
}

// SamplePreimage returns a short column x of length k+2 with
// A*x = u exactly. The syndrome u may be in either domain. Draws whose
// infinity norm exceeds the key's bound are rejected and retried;
// persistent overshoot surfaces as ErrSamplingFailure.
func (key *Key) SamplePreimage(u *dcrt.RingElement, rng *rand.Rand) (*matrix.Matrix, error) {
	defer prof.Track(time.Now(), "SamplePreimage")
	for attempt := 0; attempt < maxPreimageAttempts; attempt++ {
		x, err := key.samplePreimageOnce(u, rng)
		if err != nil {
			return nil, err
		}
		if x.MaxNorm().Cmp(key.normBound) <= 0 {
			return x, nil
		}
	}
	return nil, ErrSamplingFailure
}

func (key *Key) samplePreimageOnce(u *dcrt.RingElement, rng *rand.Rand) (*matrix.Matrix, error) {
	ctx := key.ctx
	k := ctx.Digits()
	uEval := u.NTT()

	// perturbation p, then the residual syndrome v = u - A*p
	p := samplePz(ctx, key.s, key.sigmaT, key.rInts, key.eInts, rng)

	acc := ctx.NewRingElement().NTT()
	for i := 0; i < k+2; i++ {
		if err := acc.AddMul(key.row.At(0, i), p[i]); err != nil {
			return nil, err
		}
	}
	v, err := uEval.Sub(acc)
	if err != nil {
		return nil, err
	}

	// digit sampling on the full CRT lift of v
	Z := sampleGDigits(ctx, key.sigmaT, v.CoeffsBig(), rng)
	zHat := make([]*dcrt.RingElement, k)
	for j := 0; j < k; j++ {
		zHat[j] = ctx.FromSignedCoeffs(Z[j]).NTT()
	}

	// x = p + [<e,z>, <r,z>, z]
	x := matrix.New(ctx, k+2, 1)

	sumE := ctx.NewRingElement().NTT()
	sumR := ctx.NewRingElement().NTT()
	for j := 0; j < k; j++ {
		if err := sumE.AddMul(key.eHat[j], zHat[j]); err != nil {
			return nil, err
		}
		if err := sumR.AddMul(key.rHat[j], zHat[j]); err != nil {
			return nil, err
		}
	}
	x0, err := p[0].Add(sumE)
	if err != nil {
		return nil, err
	}
	x1, err := p[1].Add(sumR)
	if err != nil {
		return nil, err
	}
	x.Set(0, 0, x0)
	x.Set(1, 0, x1)
	for j := 0; j < k; j++ {
		xj, err := p[j+2].Add(zHat[j])
		if err != nil {
			return nil, err
		}
		x.Set(j+2, 0, xj)
	}
	return x, nil
}
