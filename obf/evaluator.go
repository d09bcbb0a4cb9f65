package obf

import (
	"fmt"
	"math/big"
	"time"

	"github.com/hackertron/diamond-io/matrix"
	"github.com/hackertron/diamond-io/prof"
)

// Evaluate runs the encoded program on an input bit string. The
// accumulator starts at I_d (x) A_0 and absorbs the selected preimage
// matrix of every level in program order; the result is accepted when
// it lands on I_d (x) A_L. Each call builds a fresh accumulator, so
// concurrent evaluations never share state.
func (o *Obfuscation) Evaluate(bits []bool) (bool, error) {
	defer prof.Track(time.Now(), "Evaluate")
	if len(bits) != o.inputLen {
		return false, fmt.Errorf("obf: input has %d bits, program wants %d", len(bits), o.inputLen)
	}

	id := matrix.Identity(o.ctx, o.dim)
	v, err := id.Tensor(o.a0)
	if err != nil {
		return false, err
	}
	for i, lvl := range o.levels {
		sel := lvl.d0
		if bits[lvl.input] {
			sel = lvl.d1
		}
		v, err = v.Mul(sel)
		if err != nil {
			return false, fmt.Errorf("obf: level %d: %w", i, err)
		}
	}

	target, err := id.Tensor(o.aL)
	if err != nil {
		return false, err
	}
	diff, err := v.Sub(target)
	if err != nil {
		return false, err
	}
	return o.zeroTest(diff.MaxNorm()), nil
}

// zeroTest accepts when the centered residual stays below q/4. With
// exact preimages the residual is identically zero on accepting inputs.
func (o *Obfuscation) zeroTest(norm *big.Int) bool {
	quarter := new(big.Int).Rsh(o.ctx.Modulus(), 2)
	return norm.Cmp(quarter) < 0
}
