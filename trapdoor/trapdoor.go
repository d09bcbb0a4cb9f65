package trapdoor

import (
	"errors"
	"math/big"
	"math/rand"

	"github.com/tuneinsight/lattigo/v4/utils"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/gadget"
	"github.com/hackertron/diamond-io/matrix"
)

// ErrSamplingFailure is returned when preimage sampling keeps producing
// vectors above the norm bound. Statistically this should never happen
// with sound parameters; hitting it means the parameters are off.
var ErrSamplingFailure = errors.New("trapdoor: preimage sampling exceeded norm bound")

// Key is a trapdoor for one public row. The row is
//
//	A = [1, a, g_1-(a*r_1+e_1), ..., g_k-(a*r_k+e_k)]
//
// with a uniform and (r_j, e_j) short Gaussian secrets, so that
// A * [<e,z>, <r,z>, z]^t = <g, z> for every digit vector z. The signed
// integer coefficients of the secrets are kept alongside their NTT
// forms: perturbation sampling works on the exact integers.
type Key struct {
	ctx  *dcrt.Context
	row  *matrix.Matrix // 1 x (k+2), evaluation domain
	rHat []*dcrt.RingElement
	eHat []*dcrt.RingElement

	rInts [][]int64
	eInts [][]int64

	sigma     float64 // base Gaussian width
	sigmaT    float64 // secret width (base+1)*sigma
	s         float64 // spectral bound, preimage width
	normBound *big.Int
}

// Generate samples a fresh trapdoor key. prng feeds the uniform public
// polynomial, rng feeds the discrete Gaussian secrets.
func Generate(ctx *dcrt.Context, rng *rand.Rand, prng utils.PRNG) (*Key, error) {
	k := ctx.Digits()
	sigmaT, s := CalculateParams(ctx.Base(), ctx.N(), k, ctx.Sigma())

	a := ctx.UniformElement(prng).NTT()

	rHat := make([]*dcrt.RingElement, k)
	eHat := make([]*dcrt.RingElement, k)
	rInts := make([][]int64, k)
	eInts := make([][]int64, k)
	for j := 0; j < k; j++ {
		r, ri := ctx.GaussianElement(rng, sigmaT)
		e, ei := ctx.GaussianElement(rng, sigmaT)
		rHat[j] = r.NTT()
		eHat[j] = e.NTT()
		rInts[j] = ri
		eInts[j] = ei
	}

	g := gadget.Vector(ctx)
	row := matrix.New(ctx, 1, k+2)
	row.Set(0, 0, ctx.NewConstant(1).NTT())
	row.Set(0, 1, a)
	for j := 0; j < k; j++ {
		ar, err := a.Mul(rHat[j])
		if err != nil {
			return nil, err
		}
		are, err := ar.Add(eHat[j])
		if err != nil {
			return nil, err
		}
		aj, err := g.At(0, j).NTT().Sub(are)
		if err != nil {
			return nil, err
		}
		row.Set(0, j+2, aj)
	}

	key := &Key{
		ctx:    ctx,
		row:    row,
		rHat:   rHat,
		eHat:   eHat,
		rInts:  rInts,
		eInts:  eInts,
		sigma:  ctx.Sigma(),
		sigmaT: sigmaT,
		s:      s,
	}
	key.normBound = defaultNormBound(ctx, s)
	return key, nil
}

// Context returns the key's ring context.
func (key *Key) Context() *dcrt.Context { return key.ctx }

// PublicRow returns the 1 x (k+2) public row A.
func (key *Key) PublicRow() *matrix.Matrix { return key.row }

// Width returns the row length k+2.
func (key *Key) Width() int { return key.ctx.Digits() + 2 }

// NormBound returns the acceptance bound on preimage coefficients.
func (key *Key) NormBound() *big.Int { return new(big.Int).Set(key.normBound) }

// SetNormBound overrides the acceptance bound.
func (key *Key) SetNormBound(b *big.Int) { key.normBound = new(big.Int).Set(b) }
