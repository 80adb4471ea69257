// Package mesh turns landscape geometry into renderable triangle meshes and
// writes them as Wavefront OBJ.
package mesh

// Vertex is a mesh vertex.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
}

// Mesh holds the triangles of one patch, compacted to the vertices they use.
type Mesh struct {
	TileX, TileZ int
	Vertices     []Vertex
	Indices      []uint32
	Bounds       Bounds
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns a box that any point extends.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{1e30, 1e30, 1e30},
		Max: [3]float32{-1e30, -1e30, -1e30},
	}
}

// Empty reports whether no point was added.
func (b Bounds) Empty() bool { return b.Min[0] > b.Max[0] }

// Extend grows the box to hold p.
func (b *Bounds) Extend(p [3]float32) {
	for i := range p {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
}

// Union grows the box to hold o.
func (b *Bounds) Union(o Bounds) {
	if o.Empty() {
		return
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
}
