package matrix

import (
	"errors"
	"math/rand"
	"runtime"
	"testing"
	"time"

	"github.com/hackertron/diamond-io/dcrt"
)

func testCtx(t *testing.T) *dcrt.Context {
	t.Helper()
	ctx, err := dcrt.TestContext()
	if err != nil {
		t.Fatalf("TestContext: %v", err)
	}
	return ctx
}

func randomMatrix(t *testing.T, ctx *dcrt.Context, rows, cols int, rng *rand.Rand) *Matrix {
	t.Helper()
	m := New(ctx, rows, cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			coeffs := make([]int64, ctx.N())
			for k := range coeffs {
				coeffs[k] = rng.Int63n(200) - 100
			}
			m.Set(i, j, ctx.FromSignedCoeffs(coeffs))
		}
	}
	return m
}

func TestMulAssociative(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(1))
	a := randomMatrix(t, ctx, 3, 4, rng)
	b := randomMatrix(t, ctx, 4, 2, rng)
	c := randomMatrix(t, ctx, 2, 5, rng)

	ab, err := a.Mul(b)
	if err != nil {
		t.Fatalf("a*b: %v", err)
	}
	abc1, err := ab.Mul(c)
	if err != nil {
		t.Fatalf("(a*b)*c: %v", err)
	}
	bc, err := b.Mul(c)
	if err != nil {
		t.Fatalf("b*c: %v", err)
	}
	abc2, err := a.Mul(bc)
	if err != nil {
		t.Fatalf("a*(b*c): %v", err)
	}
	if !abc1.Equal(abc2) {
		t.Fatal("matrix product is not associative")
	}
}

func TestMulDistributesOverAdd(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(2))
	a := randomMatrix(t, ctx, 2, 3, rng)
	b := randomMatrix(t, ctx, 3, 2, rng)
	c := randomMatrix(t, ctx, 3, 2, rng)

	bc, err := b.Add(c)
	if err != nil {
		t.Fatalf("b+c: %v", err)
	}
	lhs, err := a.Mul(bc)
	if err != nil {
		t.Fatalf("a*(b+c): %v", err)
	}
	ab, err := a.Mul(b)
	if err != nil {
		t.Fatalf("a*b: %v", err)
	}
	ac, err := a.Mul(c)
	if err != nil {
		t.Fatalf("a*c: %v", err)
	}
	rhs, err := ab.Add(ac)
	if err != nil {
		t.Fatalf("a*b + a*c: %v", err)
	}
	if !lhs.Equal(rhs) {
		t.Fatal("multiplication does not distribute over addition")
	}
}

func TestIdentityNeutral(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(3))
	a := randomMatrix(t, ctx, 4, 4, rng)
	id := Identity(ctx, 4)

	left, err := id.Mul(a)
	if err != nil {
		t.Fatalf("I*a: %v", err)
	}
	right, err := a.Mul(id)
	if err != nil {
		t.Fatalf("a*I: %v", err)
	}
	if !left.Equal(a) || !right.Equal(a) {
		t.Fatal("identity is not neutral for multiplication")
	}
}

func TestSubCancels(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(4))
	a := randomMatrix(t, ctx, 3, 3, rng)
	d, err := a.Sub(a)
	if err != nil {
		t.Fatalf("a-a: %v", err)
	}
	if !d.IsZero() {
		t.Fatal("a-a is not zero")
	}
}

func TestDimensionMismatch(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(5))
	a := randomMatrix(t, ctx, 2, 3, rng)
	b := randomMatrix(t, ctx, 2, 3, rng)

	if _, err := a.Mul(b); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Mul: got %v, want ErrDimensionMismatch", err)
	}
	c := randomMatrix(t, ctx, 3, 3, rng)
	if _, err := a.Add(c); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("Add: got %v, want ErrDimensionMismatch", err)
	}
	if _, err := a.ConcatVertical(c); err != nil {
		t.Fatalf("ConcatVertical same cols: %v", err)
	}
	if _, err := a.ConcatHorizontal(c); !errors.Is(err, ErrDimensionMismatch) {
		t.Fatalf("ConcatHorizontal: got %v, want ErrDimensionMismatch", err)
	}
}

func TestConcatShapes(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(6))
	a := randomMatrix(t, ctx, 2, 3, rng)
	b := randomMatrix(t, ctx, 2, 4, rng)

	h, err := a.ConcatHorizontal(b)
	if err != nil {
		t.Fatalf("ConcatHorizontal: %v", err)
	}
	if h.Rows() != 2 || h.Cols() != 7 {
		t.Fatalf("ConcatHorizontal shape: got %dx%d, want 2x7", h.Rows(), h.Cols())
	}
	if !h.At(1, 5).Equal(b.At(1, 2)) {
		t.Fatal("ConcatHorizontal misplaced entry")
	}

	c := randomMatrix(t, ctx, 5, 3, rng)
	v, err := a.ConcatVertical(c)
	if err != nil {
		t.Fatalf("ConcatVertical: %v", err)
	}
	if v.Rows() != 7 || v.Cols() != 3 {
		t.Fatalf("ConcatVertical shape: got %dx%d, want 7x3", v.Rows(), v.Cols())
	}
	if !v.At(4, 1).Equal(c.At(2, 1)) {
		t.Fatal("ConcatVertical misplaced entry")
	}
}

func TestTensorWithIdentity(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(7))
	a := randomMatrix(t, ctx, 2, 2, rng)
	id := Identity(ctx, 3)

	ta, err := id.Tensor(a)
	if err != nil {
		t.Fatalf("I (x) a: %v", err)
	}
	if ta.Rows() != 6 || ta.Cols() != 6 {
		t.Fatalf("tensor shape: got %dx%d, want 6x6", ta.Rows(), ta.Cols())
	}
	// diagonal blocks are copies of a, off-diagonal blocks are zero
	for blk := 0; blk < 3; blk++ {
		for r := 0; r < 2; r++ {
			for c := 0; c < 2; c++ {
				if !ta.At(blk*2+r, blk*2+c).Equal(a.At(r, c)) {
					t.Fatalf("diagonal block %d mismatch at (%d,%d)", blk, r, c)
				}
			}
		}
	}
	if !ta.At(0, 4).IsZero() || !ta.At(5, 1).IsZero() {
		t.Fatal("off-diagonal tensor block is not zero")
	}
}

func TestTensorMixedProduct(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(8))
	a := randomMatrix(t, ctx, 2, 2, rng)
	b := randomMatrix(t, ctx, 2, 2, rng)
	c := randomMatrix(t, ctx, 2, 2, rng)
	d := randomMatrix(t, ctx, 2, 2, rng)

	// (a (x) b) * (c (x) d) == (a*c) (x) (b*d)
	ab, err := a.Tensor(b)
	if err != nil {
		t.Fatalf("a (x) b: %v", err)
	}
	cd, err := c.Tensor(d)
	if err != nil {
		t.Fatalf("c (x) d: %v", err)
	}
	lhs, err := ab.Mul(cd)
	if err != nil {
		t.Fatalf("(a(x)b)*(c(x)d): %v", err)
	}
	ac, err := a.Mul(c)
	if err != nil {
		t.Fatalf("a*c: %v", err)
	}
	bd, err := b.Mul(d)
	if err != nil {
		t.Fatalf("b*d: %v", err)
	}
	rhs, err := ac.Tensor(bd)
	if err != nil {
		t.Fatalf("(a*c) (x) (b*d): %v", err)
	}
	if !lhs.Equal(rhs) {
		t.Fatal("mixed-product identity fails")
	}
}

func TestScalarMul(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(9))
	a := randomMatrix(t, ctx, 2, 2, rng)
	two := ctx.NewConstant(2)

	sa, err := a.ScalarMul(two)
	if err != nil {
		t.Fatalf("2*a: %v", err)
	}
	aa, err := a.Add(a)
	if err != nil {
		t.Fatalf("a+a: %v", err)
	}
	if !sa.Equal(aa) {
		t.Fatal("2*a != a+a")
	}
}

func TestMulDeterministic(t *testing.T) {
	ctx := testCtx(t)
	rng := rand.New(rand.NewSource(10))
	a := randomMatrix(t, ctx, 6, 6, rng)
	b := randomMatrix(t, ctx, 6, 6, rng)

	first, err := a.Mul(b)
	if err != nil {
		t.Fatalf("a*b: %v", err)
	}
	// the worker pool sizes from GOMAXPROCS; results must not depend
	// on how many workers share the entries
	prev := runtime.GOMAXPROCS(0)
	defer runtime.GOMAXPROCS(prev)
	for _, procs := range []int{1, 2, 4, 8} {
		runtime.GOMAXPROCS(procs)
		again, err := a.Mul(b)
		if err != nil {
			t.Fatalf("a*b with %d procs: %v", procs, err)
		}
		if !first.Equal(again) {
			t.Fatalf("a*b differs with %d procs", procs)
		}
	}
}

func TestMulForeignEntryError(t *testing.T) {
	ctx := testCtx(t)
	other, err := dcrt.NewContext(16, []uint64{998244353, 754974721}, 8, 3.19)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	rng := rand.New(rand.NewSource(11))
	a := randomMatrix(t, ctx, 8, 8, rng)
	b := randomMatrix(t, ctx, 8, 8, rng)
	b.Set(3, 5, other.NewRingElement())

	done := make(chan error, 1)
	go func() {
		_, err := a.Mul(b)
		done <- err
	}()
	select {
	case err := <-done:
		if !errors.Is(err, dcrt.ErrContextMismatch) {
			t.Fatalf("a*b with foreign entry: got %v, want ErrContextMismatch", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("a*b with foreign entry did not return")
	}
}
