package dcrt

import (
	"testing"
)

func TestNewContextRejectsSingleDigitBase(t *testing.T) {
	// base larger than the modulus yields a one-digit gadget, which the
	// samplers cannot carry through
	if _, err := NewContext(16, []uint64{998244353}, 1<<30, 3.19); err == nil {
		t.Fatal("one-digit gadget base accepted")
	}
	if _, err := NewContext(16, []uint64{998244353}, 998244353+2048, 3.19); err == nil {
		t.Fatal("base equal to a one-digit cover accepted")
	}
	if _, err := NewContext(16, []uint64{998244353}, 8, 3.19); err != nil {
		t.Fatalf("multi-digit base rejected: %v", err)
	}
}

func TestSameDistinguishesSigma(t *testing.T) {
	a, err := TestContext()
	if err != nil {
		t.Fatalf("TestContext: %v", err)
	}
	b, err := NewContext(a.N(), a.Moduli(), a.Base(), a.Sigma()+1)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if a.Same(b) {
		t.Fatal("contexts with different widths compare as same")
	}
	if _, err := a.NewConstant(1).Add(b.NewConstant(1)); err != ErrContextMismatch {
		t.Fatalf("want ErrContextMismatch, got %v", err)
	}
	c, err := NewContext(a.N(), a.Moduli(), a.Base(), a.Sigma())
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	if !a.Same(c) {
		t.Fatal("identical parameters compare as different")
	}
}
