package rng

import "testing"

func TestSameSeedProducesSameSequence(t *testing.T) {
	a := New(12345)
	b := New(12345)
	for i := 0; i < 50; i++ {
		va, vb := a.Uint64(), b.Uint64()
		if va != vb {
			t.Fatalf("draw %d diverged: %d vs %d", i, va, vb)
		}
	}
}

func TestDifferentSeedsDivergeQuickly(t *testing.T) {
	a := New(1)
	b := New(2)
	same := true
	for i := 0; i < 5; i++ {
		if a.Uint64() != b.Uint64() {
			same = false
			break
		}
	}
	if same {
		t.Fatal("expected seeds 1 and 2 to diverge within the first few draws")
	}
}

func TestFloat64StaysInUnitInterval(t *testing.T) {
	l := New(999)
	for i := 0; i < 1000; i++ {
		f := l.Float64()
		if f < 0 || f >= 1 {
			t.Fatalf("Float64() = %v, want a value in [0, 1)", f)
		}
	}
}

func TestNewRandIsUsable(t *testing.T) {
	r := NewRand(7)
	n := r.Intn(100)
	if n < 0 || n >= 100 {
		t.Fatalf("Intn(100) = %d, out of range", n)
	}
}
