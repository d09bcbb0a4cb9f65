package obf

import (
	"github.com/hackertron/diamond-io/dcrt"
	"github.com/hackertron/diamond-io/gadget"
	"github.com/hackertron/diamond-io/matrix"
)

// Key-homomorphic gate algebra on attribute public keys. A public key
// is a d x dk matrix over the ring; an encoding of bit x under key A is
// c = s*(A + x*G) for a secret row s, with G the block gadget matrix.
// The gates below map keys so that the corresponding encodings compose:
//
//	add: c1 + c2               encodes x1+x2 under AddGate(A1, A2)
//	mul: c2*G^-1(-A1) + x2*c1  encodes x1*x2 under MulGate(A1, A2)

// AddGate returns the public key of the sum wire.
func AddGate(a1, a2 *matrix.Matrix) (*matrix.Matrix, error) {
	return a1.Add(a2)
}

// MulGate returns the public key of the product wire, A2 * G^-1(-A1).
func MulGate(ctx *dcrt.Context, a1, a2 *matrix.Matrix) (*matrix.Matrix, error) {
	neg, err := matrix.New(ctx, a1.Rows(), a1.Cols()).Sub(a1)
	if err != nil {
		return nil, err
	}
	return a2.Mul(gadget.DecomposeMatrix(neg))
}
