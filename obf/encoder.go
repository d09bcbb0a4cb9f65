package obf

import (
	"fmt"
	"math/big"
	"math/rand"
	"time"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/measure"
	"github.com/hackertron/diamond-io/prof"
	"github.com/hackertron/diamond-io/trapdoor"
)

// encodedLevel carries the two preimage matrices of one program level.
type encodedLevel struct {
	input  int
	d0, d1 *matrix.Matrix // dm x dm, evaluation domain
}

// Obfuscation is an encoded branching program: the first and last
// public boundary rows plus one preimage-matrix pair per level. The
// trapdoors themselves are discarded after encoding.
type Obfuscation struct {
	ctx      *dcrt.Context
	dim      int
	inputLen int
	a0       *matrix.Matrix // 1 x m
	aL       *matrix.Matrix
	levels   []encodedLevel
}

// Context returns the ring context the encoding lives in.
func (o *Obfuscation) Context() *dcrt.Context { return o.ctx }

// Dim returns the branching-program matrix dimension.
func (o *Obfuscation) Dim() int { return o.dim }

// InputLen returns the declared input length.
func (o *Obfuscation) InputLen() int { return o.inputLen }

// Depth returns the number of encoded levels.
func (o *Obfuscation) Depth() int { return len(o.levels) }

// MaxDepth returns the number of levels the context's modulus can
// absorb: each level multiplies the accumulated noise by at most
// n*normBound, and the zero test needs two bits of headroom under q.
func MaxDepth(ctx *dcrt.Context) int {
	_, s := trapdoor.CalculateParams(ctx.Base(), ctx.N(), ctx.Digits(), ctx.Sigma())
	bound := new(big.Float).SetFloat64(s * float64(ctx.N()))
	boundInt, _ := bound.Int(nil)
	perLevel := boundInt.BitLen() + bitsOf(ctx.N()*(ctx.Digits()+2))
	budget := ctx.Modulus().BitLen() - 2
	if perLevel <= 0 {
		return 0
	}
	return budget / perLevel
}

func bitsOf(v int) int {
	b := 0
	for v > 0 {
		b++
		v >>= 1
	}
	return b
}

// Encode compiles a validated program into an Obfuscation. All
// randomness is derived from seed with per-component domain tags, so a
// fixed seed reproduces the encoding bit for bit.
func Encode(ctx *dcrt.Context, prog *Program, seed []byte) (*Obfuscation, error) {
	defer prof.Track(time.Now(), "Encode")
	if err := prog.Validate(ctx); err != nil {
		return nil, err
	}
	if len(prog.Levels) > MaxDepth(ctx) {
		return nil, ErrBudgetExceeded
	}

	depth := len(prog.Levels)
	d := prog.Dim

	// one trapdoor per boundary A_0 .. A_L
	keys := make([]*trapdoor.Key, depth+1)
	for i := range keys {
		prng, err := dcrt.SeededPRNG(seed, fmt.Sprintf("boundary/%d", i))
		if err != nil {
			return nil, err
		}
		rng := dcrt.SeededRand(seed, fmt.Sprintf("boundary-secrets/%d", i))
		keys[i], err = trapdoor.Generate(ctx, rng, prng)
		if err != nil {
			return nil, err
		}
	}

	out := &Obfuscation{
		ctx:      ctx,
		dim:      d,
		inputLen: prog.InputLen,
		a0:       keys[0].PublicRow(),
		aL:       keys[depth].PublicRow(),
		levels:   make([]encodedLevel, depth),
	}

	for i, lvl := range prog.Levels {
		rng := dcrt.SeededRand(seed, fmt.Sprintf("preimage/%d", i))
		d0, err := encodeMatrix(keys[i], keys[i+1], lvl.M0, rng)
		if err != nil {
			return nil, fmt.Errorf("obf: level %d bit 0: %w", i, err)
		}
		d1, err := encodeMatrix(keys[i], keys[i+1], lvl.M1, rng)
		if err != nil {
			return nil, fmt.Errorf("obf: level %d bit 1: %w", i, err)
		}
		out.levels[i] = encodedLevel{input: lvl.Input, d0: d0, d1: d1}
	}
	if measure.Enabled {
		m := ctx.Digits() + 2
		measure.Global.Add("obf/boundaries",
			2*measure.BytesMatrix(1, m, ctx.N(), ctx.Levels()))
		measure.Global.Add("obf/levels",
			2*int64(depth)*measure.BytesMatrix(d*m, d*m, ctx.N(), ctx.Levels()))
	}
	return out, nil
}

// encodeMatrix samples the dm x dm block preimage D with
// A_prev * D_rc = M[r][c] * A_next for every d x d block index (r, c):
// each column of a block is an independent preimage of the scaled
// next-boundary entry.
func encodeMatrix(prev, next *trapdoor.Key, M *matrix.Matrix, rng *rand.Rand) (*matrix.Matrix, error) {
	ctx := prev.Context()
	d := M.Rows()
	m := prev.Width()
	out := matrix.New(ctx, d*m, d*m)
	aNext := next.PublicRow()

	for r := 0; r < d; r++ {
		for c := 0; c < d; c++ {
			for col := 0; col < m; col++ {
				u, err := M.At(r, c).Mul(aNext.At(0, col))
				if err != nil {
					return nil, err
				}
				x, err := prev.SamplePreimage(u, rng)
				if err != nil {
					return nil, err
				}
				for row := 0; row < m; row++ {
					out.Set(r*m+row, c*m+col, x.At(row, 0))
				}
			}
		}
	}
	return out, nil
}
