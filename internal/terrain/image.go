package terrain

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"

	// Register extra heightmap formats with image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// LoadImage reads a grayscale heightmap. Full white maps to heightScale.
func LoadImage(path string, spacing, heightScale float32) (*Heightfield, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heightmap: %w", err)
	}
	return DecodeImage(bytes.NewReader(data), spacing, heightScale)
}

// DecodeImage builds a heightfield from any registered image format. Image
// rows run top to bottom, so the last row becomes grid row 0.
func DecodeImage(r io.Reader, spacing, heightScale float32) (*Heightfield, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode heightmap: %w", err)
	}
	b := img.Bounds()
	h, err := NewHeightfield(b.Dx(), b.Dy(), spacing)
	if err != nil {
		return nil, fmt.Errorf("%s heightmap: %w", format, err)
	}
	h.Fill(func(x, z int) float32 {
		c := color.Gray16Model.Convert(img.At(b.Min.X+x, b.Max.Y-1-z)).(color.Gray16)
		return float32(c.Y) / 0xFFFF * heightScale
	})
	return h, nil
}
