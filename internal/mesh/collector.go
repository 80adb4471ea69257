package mesh

import (
	stdmath "math"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/roam/internal/logger"
	"github.com/Faultbox/roam/internal/roam"
)

type tileKey struct{ x, z int }

// Collector is a roam.Sink that keeps the latest mesh of every patch.
type Collector struct {
	meshes map[tileKey]*Mesh
	log    *zap.Logger
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		meshes: make(map[tileKey]*Mesh),
		log:    logger.Named("mesh"),
	}
}

// Submit builds a mesh from patch geometry. The geometry is copied.
func (c *Collector) Submit(g *roam.Geometry) {
	m := Build(g)
	c.meshes[tileKey{g.TileX, g.TileZ}] = m
	c.log.Debug("patch mesh",
		zap.Int("tile_x", g.TileX), zap.Int("tile_z", g.TileZ),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("triangles", m.TriangleCount()))
}

// Reset drops all meshes. Call it before a frame to forget evicted patches.
func (c *Collector) Reset() {
	clear(c.meshes)
}

// Meshes returns the collected meshes ordered by tile row, then column.
func (c *Collector) Meshes() []*Mesh {
	out := make([]*Mesh, 0, len(c.meshes))
	for _, m := range c.meshes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TileZ != out[j].TileZ {
			return out[i].TileZ < out[j].TileZ
		}
		return out[i].TileX < out[j].TileX
	})
	return out
}

// TriangleCount returns the triangles over all meshes.
func (c *Collector) TriangleCount() int {
	n := 0
	for _, m := range c.meshes {
		n += m.TriangleCount()
	}
	return n
}

// Bounds returns the box around all meshes.
func (c *Collector) Bounds() Bounds {
	b := EmptyBounds()
	for _, m := range c.meshes {
		b.Union(m.Bounds)
	}
	return b
}

// Build compacts patch geometry to the vertices its triangles use and
// computes area-weighted vertex normals.
func Build(g *roam.Geometry) *Mesh {
	m := &Mesh{
		TileX:   g.TileX,
		TileZ:   g.TileZ,
		Indices: make([]uint32, len(g.Indices)),
		Bounds:  EmptyBounds(),
	}
	remap := make(map[uint32]uint32, len(g.Indices)/2)
	for i, src := range g.Indices {
		dst, ok := remap[src]
		if !ok {
			dst = uint32(len(m.Vertices))
			remap[src] = dst
			p := g.Vertices[src].Array()
			m.Vertices = append(m.Vertices, Vertex{Position: p})
			m.Bounds.Extend(p)
		}
		m.Indices[i] = dst
	}

	for i := 0; i+2 < len(m.Indices); i += 3 {
		a, b, c := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
		n := faceNormal(m.Vertices[a].Position, m.Vertices[b].Position, m.Vertices[c].Position)
		for _, v := range [3]uint32{a, b, c} {
			for k := range n {
				m.Vertices[v].Normal[k] += n[k]
			}
		}
	}
	for i := range m.Vertices {
		m.Vertices[i].Normal = normalize(m.Vertices[i].Normal)
	}
	return m
}

// SmoothNormals averages normals at shared vertex positions across meshes so
// patch seams shade continuously.
func SmoothNormals(meshes []*Mesh) {
	const epsilon float32 = 0.001

	type ref struct{ mesh, vertex int }
	posMap := make(map[[3]int32][]ref)
	for mi, m := range meshes {
		for vi := range m.Vertices {
			p := m.Vertices[vi].Position
			key := [3]int32{int32(p[0] / epsilon), int32(p[1] / epsilon), int32(p[2] / epsilon)}
			posMap[key] = append(posMap[key], ref{mi, vi})
		}
	}

	for _, refs := range posMap {
		if len(refs) < 2 {
			continue
		}
		var sum [3]float32
		for _, r := range refs {
			n := meshes[r.mesh].Vertices[r.vertex].Normal
			sum[0] += n[0]
			sum[1] += n[1]
			sum[2] += n[2]
		}
		avg := normalize(sum)
		for _, r := range refs {
			meshes[r.mesh].Vertices[r.vertex].Normal = avg
		}
	}
}

func faceNormal(a, b, c [3]float32) [3]float32 {
	e1 := [3]float32{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	e2 := [3]float32{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	return [3]float32{
		e1[1]*e2[2] - e1[2]*e2[1],
		e1[2]*e2[0] - e1[0]*e2[2],
		e1[0]*e2[1] - e1[1]*e2[0],
	}
}

// normalize falls back to straight up for degenerate input.
func normalize(v [3]float32) [3]float32 {
	l := float32(stdmath.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
	if l < 0.0001 {
		return [3]float32{0, 1, 0}
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}
