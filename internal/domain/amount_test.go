package domain

import (
	"encoding/json"
	"testing"
)

func TestAmountUnmarshal(t *testing.T) {
	t.Run("plain number", func(t *testing.T) {
		var a Amount
		if err := json.Unmarshal([]byte(`1499.5`), &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 1499.5 {
			t.Fatalf("expected 1499.5, got %v", a)
		}
	})

	t.Run("numeric string", func(t *testing.T) {
		var a Amount
		if err := json.Unmarshal([]byte(`" 250 "`), &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 250 {
			t.Fatalf("expected 250, got %v", a)
		}
	})

	t.Run("garbage decodes to zero", func(t *testing.T) {
		var a Amount = 99
		if err := json.Unmarshal([]byte(`"bad"`), &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 0 {
			t.Fatalf("expected 0, got %v", a)
		}
	})

	t.Run("null decodes to zero", func(t *testing.T) {
		var a Amount = 99
		if err := json.Unmarshal([]byte(`null`), &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 0 {
			t.Fatalf("expected 0, got %v", a)
		}
	})

	t.Run("object decodes to zero", func(t *testing.T) {
		var a Amount
		if err := json.Unmarshal([]byte(`{"v":1}`), &a); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if a != 0 {
			t.Fatalf("expected 0, got %v", a)
		}
	})
}

func TestOrderNumberFromID(t *testing.T) {
	got := OrderNumberFromID("8d3f1a2b-9c40-4b0e-8e21-000000000000")
	if got != "ORD-8D3F1A2B" {
		t.Fatalf("unexpected order number: %s", got)
	}

	got = OrderNumberFromID("local-order-1735689600000-a3f9c")
	if got != "ORD-000A3F9C" {
		t.Fatalf("unexpected local order number: %s", got)
	}

	// Two fallback orders placed in the same millisecond still get
	// distinct codes.
	a := OrderNumberFromID("local-order-1735689600000-a3f9c")
	b := OrderNumberFromID("local-order-1735689600000-b7e21")
	if a == b {
		t.Fatalf("expected distinct codes, both were %s", a)
	}
}
