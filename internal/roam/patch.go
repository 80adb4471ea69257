package roam

import (
	"fmt"

	"github.com/Faultbox/roam/pkg/math"
)

// Side names one border of a patch.
type Side int

// Patch borders. North is +Z, east is +X.
const (
	North Side = iota
	South
	East
	West
)

// Sides lists every border in a stable order.
var Sides = [4]Side{North, South, East, West}

// Opposite returns the border facing s on the neighbouring patch.
func (s Side) Opposite() Side {
	switch s {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// Offset returns the tile step towards the neighbour on side s.
func (s Side) Offset() (dx, dz int) {
	switch s {
	case North:
		return 0, 1
	case South:
		return 0, -1
	case East:
		return 1, 0
	default:
		return -1, 0
	}
}

func (s Side) String() string {
	switch s {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	}
	return fmt.Sprintf("Side(%d)", int(s))
}

// Patch is a square block of N×N grid cells covered by two root triangles.
//
// Root 0 has its apex at the south-west corner and root 1 at the north-east
// corner; their shared base is the south-east to north-west diagonal.
type Patch struct {
	size     int
	maxDepth uint8
	pool     *nodePool

	originX, originZ int
	tileX, tileZ     int

	roots      [2]NodeID
	neighbours [4]*Patch
	active     bool
	triangles  int

	coords   []math.Vec3
	variance [2][]float32

	stack    []NodeID
	geometry Geometry
}

func newPatch(size int, pool *nodePool) (*Patch, error) {
	if size < 2 || !math.IsPowerOfTwo(size) {
		return nil, fmt.Errorf("%w: %d", ErrPatchSize, size)
	}
	depth := 2 * math.Log2(size)
	p := &Patch{
		size:     size,
		maxDepth: uint8(depth),
		pool:     pool,
		coords:   make([]math.Vec3, (size+1)*(size+1)),
	}
	p.variance[0] = make([]float32, 1<<depth)
	p.variance[1] = make([]float32, 1<<depth)
	p.roots[0] = pool.alloc()
	p.roots[1] = pool.alloc()
	p.initRoots()
	return p, nil
}

// initRoots resets both roots to leaves that only know each other.
func (p *Patch) initRoots() {
	n := int32(p.size)
	r0, r1 := p.roots[0], p.roots[1]
	p.pool.nodes[r0] = TreeNode{
		Base:  r1,
		Apex:  gridPoint{0, 0},
		Left:  gridPoint{0, n},
		Right: gridPoint{n, 0},
		root:  0,
		index: 1,
		patch: p,
	}
	p.pool.nodes[r1] = TreeNode{
		Base:  r0,
		Apex:  gridPoint{n, n},
		Left:  gridPoint{n, 0},
		Right: gridPoint{0, n},
		root:  1,
		index: 1,
		patch: p,
	}
}

// Size returns the number of grid cells along a side.
func (p *Patch) Size() int { return p.size }

// Origin returns the grid coordinate of the south-west corner.
func (p *Patch) Origin() (x, z int) { return p.originX, p.originZ }

// Tile returns the tile coordinate in tiled mode.
func (p *Patch) Tile() (x, z int) { return p.tileX, p.tileZ }

// Active reports whether the patch takes part in refinement and rendering.
func (p *Patch) Active() bool { return p.active }

// TriangleCount returns the leaf count of the last UpdateGeometry.
func (p *Patch) TriangleCount() int { return p.triangles }

// Neighbour returns the patch across side s, or nil.
func (p *Patch) Neighbour(s Side) *Patch { return p.neighbours[s] }

// Roots returns the handles of both root triangles.
func (p *Patch) Roots() [2]NodeID { return p.roots }

// Node returns a copy of a node owned by this patch.
func (p *Patch) Node(id NodeID) TreeNode {
	n := p.pool.node(id)
	if n.patch != p {
		panic(invariantf("node %d is not owned by patch at tile (%d,%d)", id, p.tileX, p.tileZ))
	}
	return *n
}

// SetOrigin moves the patch to a new grid origin. The heightfield is
// resampled on the next Reset.
func (p *Patch) SetOrigin(x, z int) {
	p.originX, p.originZ = x, z
}

func (p *Patch) setTile(x, z int) {
	p.tileX, p.tileZ = x, z
}

// MakeActive toggles participation in refinement and rendering.
func (p *Patch) MakeActive(active bool) {
	p.active = active
}

// Reset samples the heightfield at the current origin and rebuilds the
// geometric variance trees. The patch must be cleared.
func (p *Patch) Reset(src Source) {
	for _, r := range p.roots {
		if !p.pool.node(r).IsLeaf() {
			panic(invariantf("reset of patch at tile (%d,%d) with a refined tree", p.tileX, p.tileZ))
		}
	}
	stride := p.size + 1
	for z := 0; z <= p.size; z++ {
		for x := 0; x <= p.size; x++ {
			p.coords[z*stride+x] = src.Coordinate(p.originX+x, p.originZ+z)
		}
	}
	for r := range p.roots {
		n := p.pool.node(p.roots[r])
		p.buildVariance(r, n.Apex, n.Left, n.Right, 1, 0)
	}
}

// Clear detaches the patch from its neighbours and collapses both trees back
// to their roots.
func (p *Patch) Clear(q *QueueManager) {
	for _, s := range Sides {
		p.Unlink(s)
	}
	stack := p.stack[:0]
	for _, r := range p.roots {
		n := p.pool.node(r)
		if !n.IsLeaf() {
			stack = append(stack, n.LeftChild, n.RightChild)
		}
		if q != nil {
			q.forget(r)
		}
	}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.pool.node(id)
		if !n.IsLeaf() {
			stack = append(stack, n.LeftChild, n.RightChild)
		}
		if q != nil {
			q.forget(id)
		}
		p.pool.release(id)
	}
	p.stack = stack
	p.initRoots()
	p.active = false
	p.triangles = 0
}

// SetNeighbour links other across side s on both patches and stitches the
// shared edge. A nil other unlinks the side.
func (p *Patch) SetNeighbour(s Side, other *Patch, v Viewer, q *QueueManager) {
	if other == nil {
		p.Unlink(s)
		return
	}
	if other.size != p.size {
		panic(invariantf("neighbour size %d differs from patch size %d", other.size, p.size))
	}
	if p.neighbours[s] == other {
		return
	}
	p.Unlink(s)
	other.Unlink(s.Opposite())
	p.neighbours[s] = other
	other.neighbours[s.Opposite()] = p
	p.Stitch(s, v, q)
}

func (p *Patch) coord(g gridPoint) math.Vec3 {
	return p.coords[int(g.Z)*(p.size+1)+int(g.X)]
}

// buildVariance fills the variance tree of one root with the largest
// midpoint displacement found in each subtree.
func (p *Patch) buildVariance(r int, apex, left, right gridPoint, index int32, depth int) float32 {
	c := left.mid(right)
	hl, hr := p.coord(left).Y, p.coord(right).Y
	v := math.Abs(p.coord(c).Y - (hl+hr)/2)
	if depth+1 < int(p.maxDepth) {
		if lv := p.buildVariance(r, c, apex, left, 2*index, depth+1); lv > v {
			v = lv
		}
		if rv := p.buildVariance(r, c, right, apex, 2*index+1, depth+1); rv > v {
			v = rv
		}
	}
	p.variance[r][index] = v
	return v
}

func (p *Patch) geometricVariance(n *TreeNode) float32 {
	if n.Depth >= p.maxDepth {
		return 0
	}
	return p.variance[n.root][n.index]
}

// boundingSphere returns a sphere around the triangle centred on its base.
func (p *Patch) boundingSphere(n *TreeNode) (math.Vec3, float32) {
	l, r, a := p.coord(n.Left), p.coord(n.Right), p.coord(n.Apex)
	center := l.Mid(r)
	radius := center.Distance(l)
	if d := center.Distance(a); d > radius {
		radius = d
	}
	return center, radius
}

// SetView recomputes the error of every node top-down and seeds the queue:
// splittable leaves as split candidates and complete diamonds as merge
// candidates. A diamond spanning two patches is seeded by whichever patch
// reaches it second.
func (p *Patch) SetView(v Viewer, q *QueueManager) {
	if !p.active {
		return
	}
	pool := p.pool
	stack := append(p.stack[:0], p.roots[0], p.roots[1])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := pool.node(id)
		n.inSplit, n.inMerge = false, false
		pool.computeVariance(id, v)
		if n.IsLeaf() {
			if pool.splittable(id) {
				q.AddToSplitSet(id)
			}
			continue
		}
		if pool.mergeable(id) {
			if b := n.Base; b == noNode || pool.node(b).frame == pool.frame {
				q.AddToMergeSet(pool.diamondPrimary(id), pool.diamondVariance(id))
			}
		}
		stack = append(stack, n.RightChild, n.LeftChild)
	}
	p.stack = stack
}

// UpdateGeometry emits the current leaf triangles to the sink.
func (p *Patch) UpdateGeometry(sink Sink) {
	if !p.active {
		p.triangles = 0
		return
	}
	g := &p.geometry
	g.TileX, g.TileZ = p.tileX, p.tileZ
	g.OriginX, g.OriginZ = p.originX, p.originZ
	g.Size = p.size
	g.Vertices = p.coords
	g.Indices = g.Indices[:0]

	stride := uint32(p.size + 1)
	index := func(pt gridPoint) uint32 {
		return uint32(pt.Z)*stride + uint32(pt.X)
	}
	stack := append(p.stack[:0], p.roots[1], p.roots[0])
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.pool.node(id)
		if !n.IsLeaf() {
			stack = append(stack, n.RightChild, n.LeftChild)
			continue
		}
		g.Indices = append(g.Indices, index(n.Apex), index(n.Left), index(n.Right))
	}
	p.stack = stack
	p.triangles = g.TriangleCount()
	if sink != nil {
		sink.Submit(g)
	}
}

// Leaves returns the handles of all leaf triangles in depth-first order.
func (p *Patch) Leaves() []NodeID {
	var out []NodeID
	stack := []NodeID{p.roots[1], p.roots[0]}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.pool.node(id)
		if n.IsLeaf() {
			out = append(out, id)
			continue
		}
		stack = append(stack, n.RightChild, n.LeftChild)
	}
	return out
}

// Depth returns the depth of the leaf covering the patch-local grid point,
// or -1 when the point lies outside the patch.
func (p *Patch) Depth(x, z int) int {
	if x < 0 || z < 0 || x > p.size || z > p.size {
		return -1
	}
	pt := gridPoint{int32(x), int32(z)}
	id := p.roots[0]
	if !p.contains(id, pt) {
		id = p.roots[1]
	}
	for {
		n := p.pool.node(id)
		if n.IsLeaf() {
			return int(n.Depth)
		}
		if p.contains(n.LeftChild, pt) {
			id = n.LeftChild
		} else {
			id = n.RightChild
		}
	}
}

func (p *Patch) contains(id NodeID, pt gridPoint) bool {
	n := p.pool.node(id)
	d1 := orient(n.Apex, n.Left, pt)
	d2 := orient(n.Left, n.Right, pt)
	d3 := orient(n.Right, n.Apex, pt)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

func orient(a, b, c gridPoint) int64 {
	return int64(b.X-a.X)*int64(c.Z-a.Z) - int64(b.Z-a.Z)*int64(c.X-a.X)
}
