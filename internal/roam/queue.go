package roam

import (
	"github.com/google/btree"
)

const queueDegree = 16

// queueItem orders candidates by error, then by handle so equal errors stay
// distinct entries.
type queueItem struct {
	key float32
	id  NodeID
}

func lessQueueItem(a, b queueItem) bool {
	if a.key != b.key {
		return a.key < b.key
	}
	return a.id < b.id
}

// QueueManager holds the two candidate sets of the refinement loop: leaves
// that may split (largest error first) and diamonds that may merge (smallest
// error first). A node is a member of at most one set.
type QueueManager struct {
	pool  *nodePool
	split *btree.BTreeG[queueItem]
	merge *btree.BTreeG[queueItem]
}

// newQueueManager creates empty split and merge sets sharing one btree free list.
func newQueueManager(pool *nodePool) *QueueManager {
	free := btree.NewFreeListG[queueItem](btree.DefaultFreeListSize)
	return &QueueManager{
		pool:  pool,
		split: btree.NewWithFreeListG[queueItem](queueDegree, lessQueueItem, free),
		merge: btree.NewWithFreeListG[queueItem](queueDegree, lessQueueItem, free),
	}
}

// AddToSplitSet queues a leaf under its current variance. A node already in
// the split set is re-keyed.
func (q *QueueManager) AddToSplitSet(id NodeID) {
	n := q.pool.node(id)
	if n.inMerge {
		panic(invariantf("node %d added to split set while in merge set", id))
	}
	if n.inSplit {
		q.split.Delete(queueItem{n.queueKey, id})
	}
	n.queueKey = n.Variance
	n.inSplit = true
	q.split.ReplaceOrInsert(queueItem{n.queueKey, id})
}

// RemoveFromSplitSet drops a node from the split set if present.
func (q *QueueManager) RemoveFromSplitSet(id NodeID) {
	n := q.pool.node(id)
	if !n.inSplit {
		return
	}
	q.split.Delete(queueItem{n.queueKey, id})
	n.inSplit = false
}

// AddToMergeSet queues the primary node of a diamond under the diamond's
// variance.
func (q *QueueManager) AddToMergeSet(id NodeID, variance float32) {
	n := q.pool.node(id)
	if n.inSplit {
		panic(invariantf("node %d added to merge set while in split set", id))
	}
	if n.inMerge {
		q.merge.Delete(queueItem{n.queueKey, id})
	}
	n.queueKey = variance
	n.inMerge = true
	q.merge.ReplaceOrInsert(queueItem{variance, id})
}

// RemoveFromMergeSet drops a node from the merge set if present.
func (q *QueueManager) RemoveFromMergeSet(id NodeID) {
	n := q.pool.node(id)
	if !n.inMerge {
		return
	}
	q.merge.Delete(queueItem{n.queueKey, id})
	n.inMerge = false
}

func (q *QueueManager) forget(id NodeID) {
	q.RemoveFromSplitSet(id)
	q.RemoveFromMergeSet(id)
}

// MaxSplitCandidate returns the leaf with the largest error.
func (q *QueueManager) MaxSplitCandidate() (NodeID, float32, bool) {
	it, ok := q.split.Max()
	return it.id, it.key, ok
}

// MinMergeCandidate returns the diamond with the smallest error.
func (q *QueueManager) MinMergeCandidate() (NodeID, float32, bool) {
	it, ok := q.merge.Min()
	return it.id, it.key, ok
}

// SplitLen returns the size of the split set.
func (q *QueueManager) SplitLen() int { return q.split.Len() }

// MergeLen returns the size of the merge set.
func (q *QueueManager) MergeLen() int { return q.merge.Len() }

// Clear empties both sets and resets the membership flags of their nodes.
func (q *QueueManager) Clear() {
	reset := func(it queueItem) bool {
		n := &q.pool.nodes[it.id]
		n.inSplit, n.inMerge = false, false
		return true
	}
	q.split.Ascend(reset)
	q.merge.Ascend(reset)
	q.split.Clear(true)
	q.merge.Clear(true)
}
