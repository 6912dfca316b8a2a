package execstate

import "github.com/google/uuid"

// NodeID is a globally unique, opaque Execution Node Id. The zero value,
// NilNodeID, denotes the root of an execution graph.
type NodeID string

// NilNodeID is the distinguished id of the execution graph's root.
const NilNodeID NodeID = ""

// NewNodeID allocates a fresh, globally unique NodeID.
func NewNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// IsNil reports whether id is the root sentinel.
func (id NodeID) IsNil() bool { return id == NilNodeID }
