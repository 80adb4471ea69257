package roam

import (
	"fmt"
)

// gridPoint is a patch-local grid coordinate.
type gridPoint struct {
	X, Z int32
}

func (g gridPoint) mid(o gridPoint) gridPoint {
	return gridPoint{X: (g.X + o.X) / 2, Z: (g.Z + o.Z) / 2}
}

// TreeNode is one triangle of a binary triangle tree. The triangle is
// right-isosceles: Left and Right are the ends of the hypotenuse (the base
// edge) and Apex is the right-angle corner.
//
// Neighbour handles follow the usual bintree convention: Base is the
// triangle across the base edge, LeftNbr the one across Apex-Left and
// RightNbr the one across Apex-Right. For leaves the handles always name
// leaves; for internal nodes only Base is maintained.
type TreeNode struct {
	Parent     NodeID
	LeftChild  NodeID
	RightChild NodeID
	Base       NodeID
	LeftNbr    NodeID
	RightNbr   NodeID

	Apex, Left, Right gridPoint

	// Variance is the view-dependent error of the last SetView.
	Variance float32
	Depth    uint8

	root     uint8
	index    int32
	patch    *Patch
	frame    uint32
	queueKey float32
	inSplit  bool
	inMerge  bool
	released bool
}

// IsLeaf reports whether the node has no children.
func (n *TreeNode) IsLeaf() bool {
	return n.LeftChild == noNode
}

// InSplitSet reports whether the node is queued as a split candidate.
func (n *TreeNode) InSplitSet() bool { return n.inSplit }

// InMergeSet reports whether the node is queued as a merge candidate.
func (n *TreeNode) InMergeSet() bool { return n.inMerge }

// Patch returns the owning patch.
func (n *TreeNode) Patch() *Patch { return n.patch }

func invariantf(format string, args ...any) string {
	return "roam: invariant violated: " + fmt.Sprintf(format, args...)
}

// repoint replaces the link from node id to old with a link to repl.
func (p *nodePool) repoint(id, old, repl NodeID) {
	n := p.node(id)
	switch {
	case n.Base == old:
		n.Base = repl
	case n.LeftNbr == old:
		n.LeftNbr = repl
	case n.RightNbr == old:
		n.RightNbr = repl
	default:
		panic(invariantf("node %d has no link to %d (base=%d left=%d right=%d)",
			id, old, n.Base, n.LeftNbr, n.RightNbr))
	}
}

// splittable reports whether the node is above the finest level of its patch.
func (p *nodePool) splittable(id NodeID) bool {
	n := p.node(id)
	return n.Depth < n.patch.maxDepth
}

// computeVariance refreshes the view-dependent error of a node. The result is
// clamped to the parent's error so the error never grows with depth.
func (p *nodePool) computeVariance(id NodeID, v Viewer) float32 {
	n := p.node(id)
	var e float32
	if geo := n.patch.geometricVariance(n); geo > 0 {
		center, radius := n.patch.boundingSphere(n)
		e = v.Error(center, radius, geo)
		if e < 0 {
			e = 0
		}
	}
	if n.Parent != noNode {
		if pv := p.nodes[n.Parent].Variance; e > pv {
			e = pv
		}
	}
	n.Variance = e
	n.frame = p.frame
	return e
}

// ForceSplit splits a queued leaf, forcing coarser neighbours first.
func (p *nodePool) ForceSplit(id NodeID, v Viewer, q *QueueManager) {
	n := p.node(id)
	if !n.IsLeaf() {
		panic(invariantf("force split of internal node %d", id))
	}
	if !p.splittable(id) {
		panic(invariantf("force split of node %d at finest depth %d", id, n.Depth))
	}
	p.Split(id, v, q)
}

// Split bisects a leaf along the line from its apex to the middle of its
// base edge. A coarser base neighbour is split first so the shared edge
// never carries a T-junction, and the base partner is split afterwards to
// keep the diamond closed. Internal and finest-level nodes are left alone.
func (p *nodePool) Split(id NodeID, v Viewer, q *QueueManager) {
	n := p.node(id)
	if !n.IsLeaf() || !p.splittable(id) {
		return
	}

	if b := n.Base; b != noNode && p.node(b).Base != id {
		p.Split(b, v, q)
		nb := p.node(id).Base
		if nb == noNode || p.node(nb).Base != id {
			panic(invariantf("node %d: base neighbour %d still coarser after forced split", id, nb))
		}
	}

	lc, rc := p.alloc(), p.alloc()
	n = p.node(id)
	c := n.Left.mid(n.Right)
	p.nodes[lc] = TreeNode{
		Parent:   id,
		Base:     n.LeftNbr,
		LeftNbr:  rc,
		Apex:     c,
		Left:     n.Apex,
		Right:    n.Left,
		Depth:    n.Depth + 1,
		root:     n.root,
		index:    2 * n.index,
		patch:    n.patch,
		Variance: n.Variance,
	}
	p.nodes[rc] = TreeNode{
		Parent:   id,
		Base:     n.RightNbr,
		RightNbr: lc,
		Apex:     c,
		Left:     n.Right,
		Right:    n.Apex,
		Depth:    n.Depth + 1,
		root:     n.root,
		index:    2*n.index + 1,
		patch:    n.patch,
		Variance: n.Variance,
	}
	n.LeftChild, n.RightChild = lc, rc
	if x := n.LeftNbr; x != noNode {
		p.repoint(x, id, lc)
	}
	if x := n.RightNbr; x != noNode {
		p.repoint(x, id, rc)
	}

	if q != nil {
		q.RemoveFromSplitSet(id)
	}
	p.computeVariance(lc, v)
	p.computeVariance(rc, v)

	if b := p.node(id).Base; b != noNode {
		if bn := p.node(b); !bn.IsLeaf() {
			bl, br := bn.LeftChild, bn.RightChild
			p.nodes[bl].RightNbr = rc
			p.nodes[br].LeftNbr = lc
			p.nodes[lc].RightNbr = br
			p.nodes[rc].LeftNbr = bl
		} else {
			p.Split(b, v, q)
		}
	}

	if q == nil {
		return
	}
	for _, child := range [2]NodeID{lc, rc} {
		if p.splittable(child) {
			q.AddToSplitSet(child)
		}
	}
	if parent := p.node(id).Parent; parent != noNode {
		q.RemoveFromMergeSet(p.diamondPrimary(parent))
	}
	p.updateDiamond(id, q)
}

// Merge collapses the diamond formed by id and its base partner back into
// two leaves. It reports false when the diamond is not mergeable.
func (p *nodePool) Merge(id NodeID, q *QueueManager) bool {
	if !p.mergeable(id) {
		return false
	}
	b := p.node(id).Base
	if q != nil {
		q.RemoveFromMergeSet(p.diamondPrimary(id))
	}
	p.collapse(id, q)
	if b != noNode {
		p.collapse(b, q)
	}
	if q == nil {
		return true
	}
	for _, x := range [2]NodeID{id, b} {
		if x == noNode {
			continue
		}
		q.AddToSplitSet(x)
		if parent := p.node(x).Parent; parent != noNode {
			p.updateDiamond(parent, q)
		}
	}
	return true
}

// collapse frees the two leaf children of id and hands their outside links
// back to id.
func (p *nodePool) collapse(id NodeID, q *QueueManager) {
	n := p.node(id)
	lc, rc := n.LeftChild, n.RightChild
	l, r := p.node(lc).Base, p.node(rc).Base
	if l != noNode {
		p.repoint(l, lc, id)
	}
	if r != noNode {
		p.repoint(r, rc, id)
	}
	n.LeftNbr, n.RightNbr = l, r
	n.LeftChild, n.RightChild = noNode, noNode
	if q != nil {
		q.forget(lc)
		q.forget(rc)
	}
	p.release(lc)
	p.release(rc)
}

// childrenAreLeaves reports whether id is internal with two leaf children.
func (p *nodePool) childrenAreLeaves(id NodeID) bool {
	n := p.node(id)
	if n.IsLeaf() {
		return false
	}
	return p.node(n.LeftChild).IsLeaf() && p.node(n.RightChild).IsLeaf()
}

// mergeable reports whether id and its base partner form a diamond whose
// four children are leaves. A node on the open terrain border has no partner
// and merges alone.
func (p *nodePool) mergeable(id NodeID) bool {
	if !p.childrenAreLeaves(id) {
		return false
	}
	b := p.node(id).Base
	if b == noNode {
		return true
	}
	return p.node(b).Base == id && p.childrenAreLeaves(b)
}

// diamondPrimary picks the handle under which a diamond is queued.
func (p *nodePool) diamondPrimary(id NodeID) NodeID {
	if b := p.node(id).Base; b != noNode && b < id && p.node(b).Base == id {
		return b
	}
	return id
}

func (p *nodePool) diamondVariance(id NodeID) float32 {
	v := p.node(id).Variance
	if b := p.node(id).Base; b != noNode {
		if bv := p.node(b).Variance; bv > v {
			v = bv
		}
	}
	return v
}

// updateDiamond refreshes the merge-set entry of the diamond containing id.
func (p *nodePool) updateDiamond(id NodeID, q *QueueManager) {
	if id == noNode || q == nil {
		return
	}
	primary := p.diamondPrimary(id)
	q.RemoveFromMergeSet(primary)
	if p.mergeable(id) {
		q.AddToMergeSet(primary, p.diamondVariance(id))
	}
}
