package mir

import (
	"fmt"

	"github.com/halcyondb/halcyon/internal/typeenv"
)

// Local identifies a virtual SSA register within a single body.
//
// Locals are dense: a body with N locals uses IDs 0..N-1. The first
// Body.Args locals are the unit's parameters.
type Local uint32

// String renders the local in the conventional `_N` form.
func (l Local) String() string {
	return fmt.Sprintf("_%d", uint32(l))
}

// LocalDecl carries the declared type of a local.
type LocalDecl struct {
	Type typeenv.TypeID `json:"type"`
}

// Reserved parameter positions for filter units. A filter body always takes
// exactly two arguments: the captured environment tuple and the subject row
// being filtered.
const (
	LocalEnv     Local = 0
	LocalSubject Local = 1
)
