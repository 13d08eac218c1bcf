// Package tape implements the append-only node store and gradient store
// shared by every differentiating algebra.
package tape

import (
	"sync"

	"github.com/facebookresearch/gad/aderr"
	"github.com/facebookresearch/gad/value"
)

// Backward is the closure a recorded node carries: given the incoming
// gradient for this node, it must accumulate contributions into store at
// each of the node's inputs.
type Backward[GV any] func(store *GradStore[GV], incoming GV) error

// Node is one entry on the tape: its predecessors (by id) and the backward
// closure that propagates a gradient to them.
type Node[GV any] struct {
	ID       value.NodeID
	Inputs   []value.NodeID
	Backward Backward[GV]
}

// Tape is the append-only store of recorded nodes. Ids are dense, assigned
// in construction order, and never reused; a node's Inputs are always
// strictly smaller than its own id.
//
// A tape is single-writer during the forward pass but must be safely
// readable from multiple goroutines afterward: the mutex below guards the
// slice append/spend transition during construction and the TakeNode path
// used by the one-shot backward variant; plain Node lookups against an
// already-built, not-being-mutated tape take only a read lock, so multiple
// non-consuming backward passes may run concurrently.
type Tape[GV any] struct {
	mu    sync.RWMutex
	nodes []Node[GV]
	spent bool
}

// New creates an empty tape.
func New[GV any]() *Tape[GV] {
	return &Tape[GV]{}
}

// FreshID returns the id the next Record call will assign, which is
// greater than every id recorded so far. It reserves nothing: calls with no
// Record in between return the same id.
func (t *Tape[GV]) FreshID() value.NodeID {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return value.NodeID(len(t.nodes))
}

// Record appends a node with the given inputs and backward closure and
// returns its id.
func (t *Tape[GV]) Record(inputs []value.NodeID, backward Backward[GV]) (value.NodeID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.spent {
		return 0, aderr.New(aderr.TapeSpent, "cannot record onto a tape already consumed by evaluate_gradients_once")
	}

	id := value.NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node[GV]{ID: id, Inputs: inputs, Backward: backward})

	return id, nil
}

// Node retrieves a node by id without removing it.
func (t *Tape[GV]) Node(id value.NodeID) (Node[GV], error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if int(id) < 0 || int(id) >= len(t.nodes) {
		return Node[GV]{}, aderr.New(aderr.Internal, "node id %d out of range [0,%d)", id, len(t.nodes))
	}

	return t.nodes[id], nil
}

// TakeNode removes and returns a node, releasing its backward closure's
// captured memory. Used by the one-shot backward variant while it walks the
// tape; it does not by itself mark the tape spent, since a self-referential
// gradient algebra (as GraphN uses) may still need to call Record while the
// walk is in progress. Call Spend once the walk is complete.
func (t *Tape[GV]) TakeNode(id value.NodeID) (Node[GV], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if int(id) < 0 || int(id) >= len(t.nodes) {
		return Node[GV]{}, aderr.New(aderr.Internal, "node id %d out of range [0,%d)", id, len(t.nodes))
	}

	n := t.nodes[id]
	t.nodes[id] = Node[GV]{ID: id} // drop the closure and inputs slice reference

	return n, nil
}

// Spend marks the tape as consumed, so any further Record call fails with
// TapeSpent. The one-shot backward variant calls this once its whole walk
// has finished, not per node, so recording that happens mid-walk (a
// self-referential gradient algebra calling back into Record) still
// succeeds.
func (t *Tape[GV]) Spend() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.spent = true
}

// Spent reports whether this tape has been consumed by a one-shot backward
// pass; any further Record call fails with TapeSpent.
func (t *Tape[GV]) Spent() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return t.spent
}

// Len reports the number of nodes recorded so far.
func (t *Tape[GV]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.nodes)
}
