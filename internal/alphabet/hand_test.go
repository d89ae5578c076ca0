package alphabet

import "testing"

func TestHandAddSub(t *testing.T) {
	var h Hand
	h.Add(Code('A'))
	h.Add(Code('A'))
	h.Add(Code('B'))
	if h.Total() != 3 {
		t.Fatalf("total = %d, want 3", h.Total())
	}
	if err := h.Sub(Code('A')); err != nil {
		t.Fatalf("Sub returned error: %v", err)
	}
	if h.Total() != 2 {
		t.Fatalf("total after Sub = %d, want 2", h.Total())
	}
	if err := h.Sub(Code('Z')); err == nil {
		t.Fatal("Sub on empty count should error")
	}
}

func TestHandFits(t *testing.T) {
	tests := []struct {
		name  string
		hand  map[string]int
		other map[string]int
		want  bool
	}{
		{"exact match", map[string]int{"A": 2, "B": 1}, map[string]int{"A": 2, "B": 1}, true},
		{"subset", map[string]int{"A": 3}, map[string]int{"A": 2}, true},
		{"insufficient", map[string]int{"A": 1}, map[string]int{"A": 2}, false},
		{"missing letter", map[string]int{"A": 2}, map[string]int{"B": 1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := ParseHand(tt.hand)
			if err != nil {
				t.Fatalf("ParseHand(hand): %v", err)
			}
			o, err := ParseHand(tt.other)
			if err != nil {
				t.Fatalf("ParseHand(other): %v", err)
			}
			if got := h.Fits(o); got != tt.want {
				t.Errorf("Fits() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHandPlusMinus(t *testing.T) {
	a, _ := ParseHand(map[string]int{"A": 3, "B": 1})
	b, _ := ParseHand(map[string]int{"A": 1, "C": 2})

	sum := a.Plus(b)
	if sum[Code('A')] != 4 || sum[Code('B')] != 1 || sum[Code('C')] != 2 {
		t.Fatalf("Plus() = %v, want A4 B1 C2", sum)
	}

	diff := a.Minus(b)
	if diff[Code('A')] != 2 || diff[Code('B')] != 1 || diff[Code('C')] != 0 {
		t.Fatalf("Minus() = %v, want A2 B1", diff)
	}

	// Minus clamps at zero rather than underflowing.
	clamped := b.Minus(a)
	if clamped[Code('A')] != 0 {
		t.Fatalf("Minus() underflow clamp = %d, want 0", clamped[Code('A')])
	}
}

func TestHandIsSuperset(t *testing.T) {
	base, _ := ParseHand(map[string]int{"A": 2, "B": 1})
	var cOnly Hand
	cOnly[Code('C')] = 1
	grown := base.Plus(cOnly)
	if !grown.IsSuperset(base) {
		t.Fatal("grown hand should be a superset of base")
	}
	if base.IsSuperset(grown) {
		t.Fatal("base should not be a superset of grown")
	}
}

func TestParseHandRejectsInvalidKeys(t *testing.T) {
	if _, err := ParseHand(map[string]int{"AB": 1}); err == nil {
		t.Fatal("expected error for multi-character key")
	}
	if _, err := ParseHand(map[string]int{"a": 1}); err == nil {
		t.Fatal("expected error for lowercase key")
	}
	if _, err := ParseHand(map[string]int{"A": -1}); err == nil {
		t.Fatal("expected error for negative count")
	}
}

func TestWordVector(t *testing.T) {
	v := WordVector(WordToCodes("BANANA"))
	if v[Code('B')] != 1 || v[Code('A')] != 3 || v[Code('N')] != 2 {
		t.Fatalf("WordVector(BANANA) = %v, want B1 A3 N2", v)
	}
}

func TestHandString(t *testing.T) {
	var h Hand
	if h.String() != "(empty)" {
		t.Fatalf("String() on empty hand = %q, want (empty)", h.String())
	}
	h.Add(Code('A'))
	h.Add(Code('A'))
	if h.String() != "A2" {
		t.Fatalf("String() = %q, want A2", h.String())
	}
}
