package dcrt

import "errors"

// ErrContextMismatch is returned when two operands were built from
// different Contexts (different dimension or modulus chain). This is a
// programmer error and is never recovered from.
var ErrContextMismatch = errors.New("dcrt: operands belong to different contexts")
