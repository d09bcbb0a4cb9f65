// Package obf encodes matrix branching programs under per-level
// lattice trapdoors and evaluates them obliviously. An encoded program
// reveals only the public boundary rows and the preimage matrices;
// evaluation is a chain of matrix products followed by a zero test
// against the final boundary.
package obf

import (
	"errors"
	"fmt"

	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/matrix"
)

var (
	// ErrBudgetExceeded is returned when the program is too deep for
	// the context's modulus to absorb the noise growth.
	ErrBudgetExceeded = errors.New("obf: program depth exceeds the modulus budget")

	// ErrSerialization is returned for truncated or inconsistent
	// encoded-program records.
	ErrSerialization = errors.New("obf: malformed encoded program record")
)

// Level is one step of a matrix branching program: the input bit it
// inspects and the two square matrices selected by that bit.
type Level struct {
	Input  int
	M0, M1 *matrix.Matrix
}

// Program is an ordered matrix branching program over d x d selection
// matrices. A program accepts an input when the product of the
// selected matrices is the identity.
type Program struct {
	InputLen int
	Dim      int
	Levels   []Level
}

// Validate checks shapes, contexts and input indices.
func (p *Program) Validate(ctx *dcrt.Context) error {
	if p.InputLen <= 0 {
		return fmt.Errorf("obf: input length %d", p.InputLen)
	}
	if p.Dim <= 0 {
		return fmt.Errorf("obf: matrix dimension %d", p.Dim)
	}
	if len(p.Levels) == 0 {
		return errors.New("obf: program has no levels")
	}
	for i, lvl := range p.Levels {
		if lvl.Input < 0 || lvl.Input >= p.InputLen {
			return fmt.Errorf("obf: level %d reads input %d of %d", i, lvl.Input, p.InputLen)
		}
		for b, m := range []*matrix.Matrix{lvl.M0, lvl.M1} {
			if m == nil {
				return fmt.Errorf("obf: level %d missing matrix for bit %d", i, b)
			}
			if m.Rows() != p.Dim || m.Cols() != p.Dim {
				return fmt.Errorf("obf: level %d bit %d is %dx%d, want %dx%d",
					i, b, m.Rows(), m.Cols(), p.Dim, p.Dim)
			}
			if !m.Context().Same(ctx) {
				return dcrt.ErrContextMismatch
			}
		}
	}
	return nil
}

// AndProgram builds the two-level demo program computing the AND of
// two input bits: each level keeps the identity on bit 1 and collapses
// to zero on bit 0, so the product is the identity exactly when both
// bits are set.
func AndProgram(ctx *dcrt.Context) *Program {
	return &Program{
		InputLen: 2,
		Dim:      2,
		Levels: []Level{
			{Input: 0, M0: matrix.New(ctx, 2, 2), M1: matrix.Identity(ctx, 2)},
			{Input: 1, M0: matrix.New(ctx, 2, 2), M1: matrix.Identity(ctx, 2)},
		},
	}
}
