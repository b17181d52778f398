package pricing

import "testing"

func TestUnitPriceBoundaries(t *testing.T) {
	t.Parallel()

	tiers := Tiers{Price50: 100, Price100: 90, Price200: 80}
	tests := []struct {
		qty  int
		want float64
	}{
		{qty: 0, want: 100},
		{qty: 50, want: 100},
		{qty: 99, want: 100},
		{qty: 100, want: 90},
		{qty: 199, want: 90},
		{qty: 200, want: 80},
		{qty: 5000, want: 80},
	}

	for _, tt := range tests {
		if got := UnitPrice(tiers, tt.qty); got != tt.want {
			t.Fatalf("UnitPrice(qty=%d) = %v, want %v", tt.qty, got, tt.want)
		}
	}
}

func TestLineTotal(t *testing.T) {
	t.Parallel()

	tiers := Tiers{Price50: 100, Price100: 90, Price200: 80}
	if got := LineTotal(tiers, 50); got != 5000 {
		t.Fatalf("LineTotal(50) = %v, want 5000", got)
	}
	if got := LineTotal(tiers, 150); got != 13500 {
		t.Fatalf("LineTotal(150) = %v, want 13500", got)
	}

	cents := Tiers{Price50: 12.35}
	if got := LineTotal(cents, 3); got != 37.05 {
		t.Fatalf("LineTotal(3) = %v, want 37.05", got)
	}
}
