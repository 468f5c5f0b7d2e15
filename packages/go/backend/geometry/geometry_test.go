package geometry

import "testing"

func TestRectScale(t *testing.T) {
	t.Parallel()

	r := Rect{X: 0.5, Y: 0.25, Width: 0.1, Height: 0.2}.Scale(200, 100)
	want := Rect{X: 100, Y: 25, Width: 20, Height: 20}
	if r != want {
		t.Fatalf("Scale() = %+v, want %+v", r, want)
	}
}

func TestRectQuantize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		rect   Rect
		wx, wy int
	}{
		{Rect{X: 103, Y: 207}, 2, 4},
		{Rect{X: 109, Y: 213}, 2, 4},
		{Rect{X: 160, Y: 207}, 3, 4},
		{Rect{X: 0, Y: 49.99}, 0, 0},
		{Rect{X: -1, Y: 50}, -1, 1},
	}
	for _, tt := range tests {
		x, y := tt.rect.Quantize(50)
		if x != tt.wx || y != tt.wy {
			t.Errorf("Quantize(%+v) = (%d,%d), want (%d,%d)", tt.rect, x, y, tt.wx, tt.wy)
		}
	}
}

func TestRectIsEmpty(t *testing.T) {
	t.Parallel()

	if !(Rect{Width: 0, Height: 1}).IsEmpty() {
		t.Fatal("expected zero-width rect to be empty")
	}
	if (Rect{Width: 1, Height: 1}).IsEmpty() {
		t.Fatal("expected unit rect to be non-empty")
	}
}
