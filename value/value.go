// Package value defines Value, the datum-plus-tape-identity type shared by
// every differentiating algebra in gad.
package value

import "github.com/facebookresearch/gad/aderr"

// NodeID is the opaque, dense identifier of a tape node. It doubles as a
// value's "gradient id": the id under which evaluate_gradients reports the
// accumulated gradient for this value.
type NodeID int

// Value carries a forward datum together with an optional tape-node
// identity. A Value has an id if and only if it depends, directly or
// transitively, on at least one variable.
//
// The id itself is already a cheap, copyable reference into the owning
// tape, so Value needs no separate handle field.
type Value[D any] struct {
	Data  D
	id    NodeID
	hasID bool
}

// Constant builds a Value with no node id.
func Constant[D any](d D) Value[D] {
	return Value[D]{Data: d}
}

// WithID builds a Value carrying the given node id.
func WithID[D any](d D, id NodeID) Value[D] {
	return Value[D]{Data: d, id: id, hasID: true}
}

// HasID reports whether this value depends on at least one variable.
func (v Value[D]) HasID() bool {
	return v.hasID
}

// ID returns the value's node id, or a MissingId error if the value is a
// constant.
func (v Value[D]) ID() (NodeID, error) {
	if !v.hasID {
		return 0, aderr.New(aderr.MissingId, "value has no node id; it was never recorded on a tape")
	}

	return v.id, nil
}

// IDAndHasID returns the value's node id and whether it has one at all,
// without erroring for constants. Recording algebras use this to branch on
// differentiability without paying for an error allocation on the common
// constant-input path.
func (v Value[D]) IDAndHasID() (NodeID, bool) {
	return v.id, v.hasID
}
