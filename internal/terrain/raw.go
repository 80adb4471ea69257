package terrain

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Faultbox/roam/internal/roam"
)

// RawExt is the file extension of binary height tables.
const RawExt = ".hgt"

const (
	rawMagic      = "RHGT"
	rawMajor      = 1
	rawMinor      = 0
	rawHeaderSize = 4 + 2 + 4 + 4 + 4
	rawMaxSide    = 1 << 14
)

// Height table errors.
var (
	ErrInvalidRawMagic       = errors.New("invalid height table magic: expected 'RHGT'")
	ErrUnsupportedRawVersion = errors.New("unsupported height table version")
	ErrTruncatedRawData      = errors.New("truncated height table data")
)

// ParseRaw parses a binary height table: the magic, a [minor, major] version,
// little-endian uint32 width and depth, float32 spacing, then width×depth
// float32 heights row by row.
func ParseRaw(data []byte) (*Heightfield, error) {
	if len(data) < rawHeaderSize {
		return nil, ErrTruncatedRawData
	}
	if string(data[0:4]) != rawMagic {
		return nil, ErrInvalidRawMagic
	}
	minor, major := data[4], data[5]
	if major != rawMajor {
		return nil, fmt.Errorf("%w: %d.%d", ErrUnsupportedRawVersion, major, minor)
	}

	r := bytes.NewReader(data[6:])
	var header struct {
		Width, Depth uint32
		Spacing      float32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedRawData)
	}
	if header.Width > rawMaxSide || header.Depth > rawMaxSide {
		return nil, fmt.Errorf("%w: %dx%d", ErrGridSize, header.Width, header.Depth)
	}

	h, err := NewHeightfield(int(header.Width), int(header.Depth), header.Spacing)
	if err != nil {
		return nil, err
	}
	if r.Len() < 4*len(h.heights) {
		return nil, fmt.Errorf("%w: %d of %d height bytes", ErrTruncatedRawData, r.Len(), 4*len(h.heights))
	}
	if err := binary.Read(r, binary.LittleEndian, h.heights); err != nil {
		return nil, fmt.Errorf("%w: reading heights", ErrTruncatedRawData)
	}
	return h, nil
}

// MarshalBinary encodes the heightfield as a height table.
func (h *Heightfield) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, rawHeaderSize+4*len(h.heights)))
	buf.WriteString(rawMagic)
	buf.WriteByte(rawMinor)
	buf.WriteByte(rawMajor)
	header := struct {
		Width, Depth uint32
		Spacing      float32
	}{uint32(h.width), uint32(h.depth), h.spacing}
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := binary.Write(buf, binary.LittleEndian, h.heights); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveRaw writes the heightfield as a height table file.
func (h *Heightfield) SaveRaw(path string) error {
	data, err := h.MarshalBinary()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing height table: %w", err)
	}
	return nil
}

// LoadRaw reads a height table file.
func LoadRaw(path string) (*Heightfield, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading height table: %w", err)
	}
	return ParseRaw(data)
}

// LoadHeightmap reads a height table or a grayscale image, chosen by file
// extension. Height tables carry their own spacing and ignore the arguments.
func LoadHeightmap(path string, spacing, heightScale float32) (*Heightfield, error) {
	if strings.EqualFold(filepath.Ext(path), RawExt) {
		return LoadRaw(path)
	}
	return LoadImage(path, spacing, heightScale)
}

// Bake samples a square block of tiles from a tiled source into a
// heightfield whose origin is the south-west corner of tile (tx, tz).
func Bake(src roam.TiledSource, tx, tz, tiles int) (*Heightfield, error) {
	if tiles < 1 {
		return nil, fmt.Errorf("%w: %d tiles", ErrGridSize, tiles)
	}
	size := src.TileSize()
	n := tiles*size + 1
	h, err := NewHeightfield(n, n, src.GridSpacing())
	if err != nil {
		return nil, err
	}
	ox, oz := tx*size, tz*size
	h.Fill(func(x, z int) float32 { return src.Coordinate(ox+x, oz+z).Y })
	return h, nil
}
