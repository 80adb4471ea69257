package terrain

import (
	"errors"
	"testing"

	"github.com/Faultbox/roam/pkg/math"
)

func TestNewHeightfieldErrors(t *testing.T) {
	tests := []struct {
		name    string
		w, d    int
		spacing float32
		want    error
	}{
		{"too narrow", 1, 5, 1, ErrGridSize},
		{"too shallow", 5, 0, 1, ErrGridSize},
		{"zero spacing", 5, 5, 0, ErrSpacing},
		{"negative spacing", 5, 5, -2, ErrSpacing},
		{"valid", 2, 2, 0.5, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHeightfield(tt.w, tt.d, tt.spacing)
			if !errors.Is(err, tt.want) {
				t.Errorf("NewHeightfield(%d, %d, %v) error = %v, want %v", tt.w, tt.d, tt.spacing, err, tt.want)
			}
		})
	}
}

func TestHeightfieldSetAndHeight(t *testing.T) {
	h, err := NewHeightfield(4, 3, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.Set(3, 2, 7); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := h.Set(4, 0, 1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Set(4, 0) error = %v, want ErrOutOfRange", err)
	}
	if got := h.Height(3, 2); got != 7 {
		t.Errorf("Height(3, 2) = %v, want 7", got)
	}
	// Outside points clamp to the edge.
	if got := h.Height(10, 10); got != 7 {
		t.Errorf("Height(10, 10) = %v, want clamped 7", got)
	}
	want := math.Vec3{X: 6, Y: 7, Z: 4}
	if got := h.Coordinate(3, 2); got != want {
		t.Errorf("Coordinate(3, 2) = %+v, want %+v", got, want)
	}
}

func TestHeightfieldFillAndRange(t *testing.T) {
	h, _ := NewHeightfield(5, 5, 1)
	h.Fill(func(x, z int) float32 { return float32(x - z) })
	if got := h.Height(4, 1); got != 3 {
		t.Errorf("Height(4, 1) = %v, want 3", got)
	}
	lo, hi := h.Range()
	if lo != -4 || hi != 4 {
		t.Errorf("Range() = (%v, %v), want (-4, 4)", lo, hi)
	}
	if err := h.Spike(2, 2, 50); err != nil {
		t.Fatal(err)
	}
	if _, hi := h.Range(); hi != 50 {
		t.Errorf("Range() high after spike = %v, want 50", hi)
	}
}

func TestHeightfieldSample(t *testing.T) {
	h, _ := NewHeightfield(3, 3, 2)
	h.Fill(func(x, z int) float32 { return float32(x) * 10 })
	tests := []struct {
		x, z float32
		want float32
	}{
		{0, 0, 0},
		{1, 0, 5},
		{2, 3, 10},
		{3, 1, 15},
		{4, 4, 20},
		{9, -3, 20}, // clamped to the grid
	}
	for _, tt := range tests {
		if got := h.Sample(tt.x, tt.z); math.Abs(got-tt.want) > 1e-4 {
			t.Errorf("Sample(%v, %v) = %v, want %v", tt.x, tt.z, got, tt.want)
		}
	}
}
