package ocr

import "testing"

func TestRateBudgetBurst(t *testing.T) {
	b := NewRateBudget(60, 2)
	if !b.Allow() || !b.Allow() {
		t.Fatalf("burst of 2 should allow two immediate calls")
	}
	if b.Allow() {
		t.Fatalf("third immediate call should be vetoed")
	}
}

func TestRateBudgetUnlimited(t *testing.T) {
	b := NewRateBudget(0, 0)
	for i := 0; i < 100; i++ {
		if !b.Allow() {
			t.Fatalf("disabled cap must never veto (call %d)", i)
		}
	}
}
