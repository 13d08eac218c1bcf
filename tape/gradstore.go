package tape

import "github.com/facebookresearch/gad/value"

// Combine merges an existing accumulated gradient with a new contribution.
// Graph[D, GV] binds this to its gradient algebra's Add, so under a
// self-referential gradient algebra the accumulation itself records new
// tape nodes, making the accumulated gradient differentiable in turn.
type Combine[GV any] func(existing, contribution GV) (GV, error)

// GradStore is a finite mapping from node id to accumulated gradient,
// ephemeral per backward pass.
type GradStore[GV any] struct {
	combine Combine[GV]
	data    map[value.NodeID]GV
}

// NewGradStore creates an empty gradient store that merges repeated
// contributions to the same id with combine.
func NewGradStore[GV any](combine Combine[GV]) *GradStore[GV] {
	return &GradStore[GV]{combine: combine, data: make(map[value.NodeID]GV)}
}

// AddGradient accumulates contribution into id's entry: if no entry exists
// yet, contribution is installed directly; otherwise it is merged with the
// existing entry via the store's combine function.
func (s *GradStore[GV]) AddGradient(id value.NodeID, contribution GV) error {
	existing, ok := s.data[id]
	if !ok {
		s.data[id] = contribution

		return nil
	}

	merged, err := s.combine(existing, contribution)
	if err != nil {
		return err
	}

	s.data[id] = merged

	return nil
}

// Get returns the gradient accumulated for id, if any.
func (s *GradStore[GV]) Get(id value.NodeID) (GV, bool) {
	v, ok := s.data[id]

	return v, ok
}

// IntoMap returns the store's full contents.
func (s *GradStore[GV]) IntoMap() map[value.NodeID]GV {
	out := make(map[value.NodeID]GV, len(s.data))
	for k, v := range s.data {
		out[k] = v
	}

	return out
}
