package autodiff

import (
	"github.com/facebookresearch/gad/tape"
	"github.com/facebookresearch/gad/value"
)

// EvaluateGradients performs the non-consuming backward pass: it seeds root
// with the given gradient and walks node ids from root down to zero,
// invoking each visited node's backward closure. No node is taken from the
// tape, so it may be walked again, from the same or a different root,
// including concurrently from other goroutines. Under Graph1 the tape is
// left unchanged; under GraphN the backward closures append new nodes to it
// (with ids above root, which this walk does not visit).
func (g *Graph[D, GV]) EvaluateGradients(root value.NodeID, seed GV) (*tape.GradStore[GV], error) {
	store := tape.NewGradStore[GV](g.grad.Add)
	if err := store.AddGradient(root, seed); err != nil {
		return nil, err
	}

	for id := int(root); id >= 0; id-- {
		nid := value.NodeID(id)

		incoming, ok := store.Get(nid)
		if !ok {
			continue
		}

		n, err := g.tape.Node(nid)
		if err != nil {
			return nil, err
		}

		if n.Backward == nil {
			continue
		}

		if err := n.Backward(store, incoming); err != nil {
			return nil, err
		}
	}

	return store, nil
}

// EvaluateGradientsOnce performs the consuming backward pass: it takes each
// node's closure from the tape as it visits it, releasing captured memory
// early. The tape is marked spent once the whole walk finishes, not as
// each node is taken, so a backward closure belonging to a self-referential
// gradient algebra (as GraphN uses) can still record new nodes while the
// walk is in progress; after EvaluateGradientsOnce returns, any further
// recording operation on this tape returns a TapeSpent error.
func (g *Graph[D, GV]) EvaluateGradientsOnce(root value.NodeID, seed GV) (*tape.GradStore[GV], error) {
	store := tape.NewGradStore[GV](g.grad.Add)
	if err := store.AddGradient(root, seed); err != nil {
		return nil, err
	}

	for id := int(root); id >= 0; id-- {
		nid := value.NodeID(id)

		incoming, ok := store.Get(nid)
		if !ok {
			continue
		}

		n, err := g.tape.TakeNode(nid)
		if err != nil {
			return nil, err
		}

		if n.Backward == nil {
			continue
		}

		if err := n.Backward(store, incoming); err != nil {
			return nil, err
		}
	}

	g.tape.Spend()

	return store, nil
}

// ComputeGradients is the higher-order entry point for differentiating a
// gradient that was itself produced on this tape. It is identical to
// EvaluateGradients: because GraphN binds its gradient algebra to the Graph
// itself, the GradStore's combine function is already g.Add, so repeated
// contributions to the same id are merged by recording a new tape node
// rather than by ordinary addition. Gradients produced this way that depend
// on a variable carry their own node id and so are differentiable in turn,
// with no separate code path needed; a gradient that depends on no variable
// comes back as a constant without an id.
func (g *Graph[D, GV]) ComputeGradients(root value.NodeID, seed GV) (*tape.GradStore[GV], error) {
	return g.EvaluateGradients(root, seed)
}
