// Package matrix provides dense matrices of double-CRT ring elements
// and the arithmetic the encoder and evaluator are built from. Every
// operation returns a fresh matrix; no in-place mutation across aliased
// values, so evaluation can fan out safely over goroutines.
package matrix

import (
	"errors"
	"math/big"
	"runtime"
	"sync"

	"github.com/hackertron/diamond-io/dcrt"
)

// ErrDimensionMismatch is returned when operand shapes are
// incompatible. Like a context mismatch it is a programmer error and
// fails fast.
var ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

// Matrix is a rows x cols grid of ring elements sharing one context.
type Matrix struct {
	rows, cols int
	ctx        *dcrt.Context
	data       []*dcrt.RingElement // row-major
}

// New returns the zero matrix of the given shape.
func New(ctx *dcrt.Context, rows, cols int) *Matrix {
	m := &Matrix{rows: rows, cols: cols, ctx: ctx, data: make([]*dcrt.RingElement, rows*cols)}
	for i := range m.data {
		m.data[i] = ctx.NewRingElement()
	}
	return m
}

// Identity returns the d x d identity matrix (constant polynomial 1 on
// the diagonal).
func Identity(ctx *dcrt.Context, d int) *Matrix {
	m := New(ctx, d, d)
	for i := 0; i < d; i++ {
		m.Set(i, i, ctx.NewConstant(1))
	}
	return m
}

// Rows returns the row count.
func (m *Matrix) Rows() int { return m.rows }

// Cols returns the column count.
func (m *Matrix) Cols() int { return m.cols }

// Context returns the shared context.
func (m *Matrix) Context() *dcrt.Context { return m.ctx }

// At returns entry (i, j).
func (m *Matrix) At(i, j int) *dcrt.RingElement { return m.data[i*m.cols+j] }

// Set assigns entry (i, j).
func (m *Matrix) Set(i, j int, v *dcrt.RingElement) { m.data[i*m.cols+j] = v }

// Copy returns a deep copy.
func (m *Matrix) Copy() *Matrix {
	out := &Matrix{rows: m.rows, cols: m.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, len(m.data))}
	for i, e := range m.data {
		out.data[i] = e.Copy()
	}
	return out
}

// Add returns m + other entry-wise.
func (m *Matrix) Add(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, ErrDimensionMismatch
	}
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows, cols: m.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, len(m.data))}
	for i := range m.data {
		s, err := m.data[i].Add(other.data[i])
		if err != nil {
			return nil, err
		}
		out.data[i] = s
	}
	return out, nil
}

// Sub returns m - other entry-wise.
func (m *Matrix) Sub(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows || m.cols != other.cols {
		return nil, ErrDimensionMismatch
	}
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows, cols: m.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, len(m.data))}
	for i := range m.data {
		d, err := m.data[i].Sub(other.data[i])
		if err != nil {
			return nil, err
		}
		out.data[i] = d
	}
	return out, nil
}

// ScalarMul returns s*m for a ring element scalar.
func (m *Matrix) ScalarMul(s *dcrt.RingElement) (*Matrix, error) {
	if !m.ctx.Same(s.Context()) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows, cols: m.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, len(m.data))}
	for i := range m.data {
		p, err := s.Mul(m.data[i])
		if err != nil {
			return nil, err
		}
		out.data[i] = p
	}
	return out, nil
}

// Mul returns the matrix product m * other. Output entries are
// independent inner products and are computed by a worker pool; each
// worker writes only its own output slot and every inner product
// accumulates left to right, so the result is bit-identical regardless
// of worker count.
func (m *Matrix) Mul(other *Matrix) (*Matrix, error) {
	if m.cols != other.rows {
		return nil, ErrDimensionMismatch
	}
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows, cols: other.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, m.rows*other.cols)}

	inner := m.cols
	total := m.rows * other.cols
	workers := runtime.GOMAXPROCS(0)
	if workers > total {
		workers = total
	}

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once
	jobs := make(chan int)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// workers keep draining after an error so the producer
			// below never blocks on an abandoned channel
			for idx := range jobs {
				i, j := idx/other.cols, idx%other.cols
				acc := m.ctx.NewRingElement().NTT()
				for l := 0; l < inner; l++ {
					if err := acc.AddMul(m.At(i, l), other.At(l, j)); err != nil {
						errOnce.Do(func() { firstErr = err })
						acc = nil
						break
					}
				}
				out.data[idx] = acc
			}
		}()
	}
	for idx := 0; idx < total; idx++ {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

// ConcatHorizontal returns [m | other].
func (m *Matrix) ConcatHorizontal(other *Matrix) (*Matrix, error) {
	if m.rows != other.rows {
		return nil, ErrDimensionMismatch
	}
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows, cols: m.cols + other.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, m.rows*(m.cols+other.cols))}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			out.Set(i, j, m.At(i, j))
		}
		for j := 0; j < other.cols; j++ {
			out.Set(i, m.cols+j, other.At(i, j))
		}
	}
	return out, nil
}

// ConcatVertical returns [m ; other].
func (m *Matrix) ConcatVertical(other *Matrix) (*Matrix, error) {
	if m.cols != other.cols {
		return nil, ErrDimensionMismatch
	}
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := &Matrix{rows: m.rows + other.rows, cols: m.cols, ctx: m.ctx, data: make([]*dcrt.RingElement, (m.rows+other.rows)*m.cols)}
	copy(out.data[:len(m.data)], m.data)
	copy(out.data[len(m.data):], other.data)
	return out, nil
}

// Tensor returns the Kronecker product m (x) other.
func (m *Matrix) Tensor(other *Matrix) (*Matrix, error) {
	if !m.ctx.Same(other.ctx) {
		return nil, dcrt.ErrContextMismatch
	}
	out := New(m.ctx, m.rows*other.rows, m.cols*other.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			for r := 0; r < other.rows; r++ {
				for c := 0; c < other.cols; c++ {
					p, err := m.At(i, j).Mul(other.At(r, c))
					if err != nil {
						return nil, err
					}
					out.Set(i*other.rows+r, j*other.cols+c, p)
				}
			}
		}
	}
	return out, nil
}

// Equal compares shapes and all entries exactly.
func (m *Matrix) Equal(other *Matrix) bool {
	if m.rows != other.rows || m.cols != other.cols || !m.ctx.Same(other.ctx) {
		return false
	}
	for i := range m.data {
		if !m.data[i].Equal(other.data[i]) {
			return false
		}
	}
	return true
}

// IsZero reports whether every entry is identically zero.
func (m *Matrix) IsZero() bool {
	for _, e := range m.data {
		if !e.IsZero() {
			return false
		}
	}
	return true
}

// MaxNorm returns the largest centered-lift coefficient magnitude over
// all entries.
func (m *Matrix) MaxNorm() *big.Int {
	max := new(big.Int)
	for _, e := range m.data {
		if n := e.MaxNorm(); n.Cmp(max) > 0 {
			max = n
		}
	}
	return max
}
