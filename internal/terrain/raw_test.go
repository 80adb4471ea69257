package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Faultbox/roam/internal/config"
)

// createTestRaw builds a height table by hand.
func createTestRaw(major byte, width, depth uint32, heights []float32) []byte {
	buf := new(bytes.Buffer)
	buf.WriteString("RHGT")
	buf.WriteByte(0)     // minor
	buf.WriteByte(major) // major
	binary.Write(buf, binary.LittleEndian, width)
	binary.Write(buf, binary.LittleEndian, depth)
	binary.Write(buf, binary.LittleEndian, float32(2))
	binary.Write(buf, binary.LittleEndian, heights)
	return buf.Bytes()
}

func TestParseRaw(t *testing.T) {
	data := createTestRaw(1, 3, 2, []float32{0, 1, 2, 3, 4, 5})
	h, err := ParseRaw(data)
	if err != nil {
		t.Fatalf("ParseRaw() error = %v", err)
	}
	if h.GridWidth() != 3 || h.GridDepth() != 2 || h.GridSpacing() != 2 {
		t.Errorf("field %dx%d spacing %v", h.GridWidth(), h.GridDepth(), h.GridSpacing())
	}
	if got := h.Height(2, 1); got != 5 {
		t.Errorf("Height(2, 1) = %v, want 5", got)
	}
}

func TestParseRawErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", nil, ErrTruncatedRawData},
		{"bad magic", append([]byte("XXXX"), createTestRaw(1, 2, 2, make([]float32, 4))[4:]...), ErrInvalidRawMagic},
		{"future version", createTestRaw(2, 2, 2, make([]float32, 4)), ErrUnsupportedRawVersion},
		{"short heights", createTestRaw(1, 2, 2, make([]float32, 3)), ErrTruncatedRawData},
		{"degenerate grid", createTestRaw(1, 1, 4, make([]float32, 4)), ErrGridSize},
		{"huge grid", createTestRaw(1, 1<<20, 2, nil), ErrGridSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseRaw(tt.data); !errors.Is(err, tt.want) {
				t.Errorf("ParseRaw() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRawFileRoundTrip(t *testing.T) {
	h, _ := NewHeightfield(5, 4, 0.5)
	h.Fill(func(x, z int) float32 { return float32(x*10 + z) })
	path := filepath.Join(t.TempDir(), "field"+RawExt)
	if err := h.SaveRaw(path); err != nil {
		t.Fatal(err)
	}

	got, err := LoadHeightmap(path, 99, 99)
	if err != nil {
		t.Fatalf("LoadHeightmap() error = %v", err)
	}
	if got.GridSpacing() != 0.5 {
		t.Errorf("spacing = %v, want 0.5 from the file", got.GridSpacing())
	}
	for z := 0; z < 4; z++ {
		for x := 0; x < 5; x++ {
			if got.Height(x, z) != h.Height(x, z) {
				t.Fatalf("Height(%d, %d) = %v, want %v", x, z, got.Height(x, z), h.Height(x, z))
			}
		}
	}
}

func TestBake(t *testing.T) {
	noise, _ := NewNoiseField(config.Default().Terrain.Noise, 8, 1)
	h, err := Bake(noise, -1, 2, 2)
	if err != nil {
		t.Fatal(err)
	}
	if h.GridWidth() != 17 || h.GridDepth() != 17 {
		t.Fatalf("baked %dx%d, want 17x17", h.GridWidth(), h.GridDepth())
	}
	if got, want := h.Height(3, 5), noise.Height(-8+3, 16+5); got != want {
		t.Errorf("Height(3, 5) = %v, want %v", got, want)
	}
	if _, err := Bake(noise, 0, 0, 0); !errors.Is(err, ErrGridSize) {
		t.Errorf("Bake() of no tiles error = %v, want ErrGridSize", err)
	}
}
