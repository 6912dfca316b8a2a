// Package op defines the Operation: the unit of work inside an execution
// state. An operation has an Id stable within one state, an input and
// output signature describing what it consumes and exposes, a cell
// descriptor recording where it came from, and a body that runs it.
package op

import (
	"math"

	"github.com/arborist-dev/cellgraph/internal/pmap"
)

// ID identifies an operation within a single execution state. Ids are
// small, densely-allocated integers assigned in allocation order; they are
// stable for the lifetime of a state but are not guaranteed stable across a
// redefinition that assigns a cell a fresh operation (the old id's output
// remains addressable by callers that already hold it, the new id is
// allocated alongside it).
type ID int

// MaxID is the reserved sentinel id under which a dispatch's call result is
// recorded in the post-state (the "last function result" slot), matching
// the usize::MAX sentinel used by the engine this design is based on.
const MaxID ID = ID(math.MaxInt)

// NoID is returned alongside an error when no operation id was bound, and
// is never a valid operation id (valid ids start at 0).
const NoID ID = -1

// Hash and Eq adapt ID for use as a pmap key.
func Hash(id ID) uint64 { return pmap.IntHash(int(id)) }
func Eq(a, b ID) bool   { return a == b }
