package roam

// NodeID is a handle into the node arena. The zero handle means "no node".
type NodeID int32

const noNode NodeID = 0

// nodePool is the arena shared by every patch of a landscape. Slot 0 is
// reserved so that a zero NodeID never resolves to a live node.
//
// Pointers returned by node are only valid until the next alloc.
type nodePool struct {
	nodes []TreeNode
	free  []NodeID
	live  int
	frame uint32
}

func newNodePool(capacity int) *nodePool {
	if capacity < 1 {
		capacity = 1
	}
	p := &nodePool{nodes: make([]TreeNode, 1, capacity+1)}
	p.frame = 1
	return p
}

func (p *nodePool) node(id NodeID) *TreeNode {
	if id == noNode {
		panic("roam: dereference of empty node handle")
	}
	return &p.nodes[id]
}

func (p *nodePool) alloc() NodeID {
	p.live++
	if n := len(p.free); n > 0 {
		id := p.free[n-1]
		p.free = p.free[:n-1]
		p.nodes[id] = TreeNode{}
		return id
	}
	p.nodes = append(p.nodes, TreeNode{})
	return NodeID(len(p.nodes) - 1)
}

func (p *nodePool) release(id NodeID) {
	n := p.node(id)
	if n.released {
		panic(invariantf("node %d released twice", id))
	}
	*n = TreeNode{released: true}
	p.free = append(p.free, id)
	p.live--
}

// Live returns the number of allocated nodes.
func (p *nodePool) Live() int { return p.live }

// nextFrame starts a new variance epoch.
func (p *nodePool) nextFrame() {
	p.frame++
	if p.frame == 0 {
		p.frame = 1
	}
}
