package domain

import "testing"

func TestMatchWinner(t *testing.T) {
	m := &Match{AffID: 1, NegID: 2, Result: ResultAff}
	id, ok := m.Winner()
	if !ok || id != 1 {
		t.Fatalf("Winner() = (%d, %v), want (1, true)", id, ok)
	}

	m.Result = ResultNeg
	id, ok = m.Winner()
	if !ok || id != 2 {
		t.Fatalf("Winner() = (%d, %v), want (2, true)", id, ok)
	}

	m.Result = ResultUnreported
	if _, ok := m.Winner(); ok {
		t.Fatal("expected Winner() to report false for an unreported match")
	}
}

func TestMatchIsBye(t *testing.T) {
	if (&Match{AffID: ByeOpponentID, NegID: 3}).IsBye() != true {
		t.Fatal("expected IsBye() true when AffID is the bye sentinel")
	}
	if (&Match{AffID: 1, NegID: 2}).IsBye() != false {
		t.Fatal("expected IsBye() false for a real pairing")
	}
}

func TestMatchReported(t *testing.T) {
	m := &Match{Result: ResultUnreported}
	if m.Reported() {
		t.Fatal("expected Reported() false before a result is set")
	}
	m.Result = ResultAff
	if !m.Reported() {
		t.Fatal("expected Reported() true once a result is set")
	}
}
