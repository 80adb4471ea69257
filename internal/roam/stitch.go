package roam

import (
	"sort"
)

type edgeField uint8

const (
	fieldBase edgeField = iota
	fieldLeft
	fieldRight
)

// boundaryEdge is a triangle edge lying on a patch border, spanning [lo, hi]
// along the border.
type boundaryEdge struct {
	lo, hi int32
	id     NodeID
	field  edgeField
	depth  uint8
	leaf   bool
}

func (e boundaryEdge) length() int32 { return e.hi - e.lo }

func (p *Patch) onSide(g gridPoint, s Side) bool {
	n := int32(p.size)
	switch s {
	case North:
		return g.Z == n
	case South:
		return g.Z == 0
	case East:
		return g.X == n
	default:
		return g.X == 0
	}
}

func along(g gridPoint, s Side) int32 {
	if s == North || s == South {
		return g.X
	}
	return g.Z
}

func span(a, b gridPoint, s Side) (int32, int32) {
	lo, hi := along(a, s), along(b, s)
	if lo > hi {
		lo, hi = hi, lo
	}
	return lo, hi
}

// boundary collects every node, leaf or internal, with an edge on side s.
// Only such nodes can have descendants with an edge on the same side, so the
// walk prunes everything else.
func (p *Patch) boundary(s Side) []boundaryEdge {
	var out []boundaryEdge
	stack := []NodeID{p.roots[0], p.roots[1]}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := p.pool.node(id)
		a, l, r := p.onSide(n.Apex, s), p.onSide(n.Left, s), p.onSide(n.Right, s)
		e := boundaryEdge{id: id, depth: n.Depth, leaf: n.IsLeaf()}
		switch {
		case l && r:
			e.field = fieldBase
			e.lo, e.hi = span(n.Left, n.Right, s)
		case a && l:
			e.field = fieldLeft
			e.lo, e.hi = span(n.Apex, n.Left, s)
		case a && r:
			e.field = fieldRight
			e.lo, e.hi = span(n.Apex, n.Right, s)
		default:
			continue
		}
		out = append(out, e)
		if !e.leaf {
			stack = append(stack, n.LeftChild, n.RightChild)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].lo != out[j].lo {
			return out[i].lo < out[j].lo
		}
		return out[i].depth < out[j].depth
	})
	return out
}

func leafEdges(edges []boundaryEdge) []boundaryEdge {
	out := edges[:0:0]
	for _, e := range edges {
		if e.leaf {
			out = append(out, e)
		}
	}
	return out
}

// coarserLeaf finds a leaf on either border whose edge covers more than one
// leaf edge of the facing border.
func coarserLeaf(a, b []boundaryEdge) (NodeID, bool) {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ea, eb := a[i], b[j]
		if ea.lo != eb.lo {
			panic(invariantf("border partitions diverge at %d/%d (nodes %d, %d)", ea.lo, eb.lo, ea.id, eb.id))
		}
		switch {
		case ea.length() > eb.length():
			return ea.id, true
		case eb.length() > ea.length():
			return eb.id, true
		}
		i++
		j++
	}
	return noNode, false
}

// Stitch re-synchronises the edge shared with the neighbour on side s. Leaves
// on either border are force-split until both borders are divided at the
// same points, then the border nodes are cross-linked.
func (p *Patch) Stitch(s Side, v Viewer, q *QueueManager) {
	o := p.neighbours[s]
	if o == nil {
		return
	}
	for {
		mine := leafEdges(p.boundary(s))
		theirs := leafEdges(o.boundary(s.Opposite()))
		id, ok := coarserLeaf(mine, theirs)
		if !ok {
			break
		}
		if !p.pool.splittable(id) {
			panic(invariantf("border leaf %d cannot be refined further", id))
		}
		p.pool.Split(id, v, q)
	}
	p.link(s)
}

type spanKey struct{ lo, hi int32 }

// link cross-links matching border nodes: leaves with the leaf covering the
// same span, internal nodes with the internal node sharing their base.
func (p *Patch) link(s Side) {
	o := p.neighbours[s]
	leaves := make(map[spanKey]boundaryEdge)
	bases := make(map[spanKey]boundaryEdge)
	for _, e := range o.boundary(s.Opposite()) {
		k := spanKey{e.lo, e.hi}
		switch {
		case e.leaf:
			leaves[k] = e
		case e.field == fieldBase:
			bases[k] = e
		}
	}
	for _, e := range p.boundary(s) {
		k := spanKey{e.lo, e.hi}
		switch {
		case e.leaf:
			f, ok := leaves[k]
			if !ok {
				panic(invariantf("border leaf %d has no counterpart on the %s neighbour", e.id, s))
			}
			p.pool.setLink(e.id, e.field, f.id)
			p.pool.setLink(f.id, f.field, e.id)
		case e.field == fieldBase:
			if f, ok := bases[k]; ok && f.depth == e.depth {
				p.pool.setLink(e.id, fieldBase, f.id)
				p.pool.setLink(f.id, fieldBase, e.id)
			}
		}
	}
}

func (p *nodePool) setLink(id NodeID, field edgeField, to NodeID) {
	n := p.node(id)
	switch field {
	case fieldBase:
		n.Base = to
	case fieldLeft:
		n.LeftNbr = to
	default:
		n.RightNbr = to
	}
}

// Unlink detaches the neighbour on side s: every link between the two
// borders is cleared on both patches.
func (p *Patch) Unlink(s Side) {
	o := p.neighbours[s]
	if o == nil {
		return
	}
	p.clearLinksInto(s, o)
	o.clearLinksInto(s.Opposite(), p)
	p.neighbours[s] = nil
	o.neighbours[s.Opposite()] = nil
}

func (p *Patch) clearLinksInto(s Side, o *Patch) {
	for _, e := range p.boundary(s) {
		n := p.pool.node(e.id)
		for _, link := range [3]*NodeID{&n.Base, &n.LeftNbr, &n.RightNbr} {
			if *link != noNode && p.pool.nodes[*link].patch == o {
				*link = noNode
			}
		}
	}
}
