package typeenv

// MaxWalkDepth bounds recursive type traversal. Types deeper than this are
// treated as not provable for whatever property the walk is checking.
const MaxWalkDepth = 32

// Walk visits root and every type reachable from it, pre-order. visit
// returns false to reject the walked property; the walk then stops.
//
// Walk returns true only if every visited type was accepted and the
// traversal stayed within MaxWalkDepth. Already-visited IDs are skipped, so
// self-referential tables terminate.
func (e *Env) Walk(root TypeID, visit func(id TypeID, t Type) bool) bool {
	seen := make(map[TypeID]bool)
	return e.walk(root, visit, seen, 0)
}

func (e *Env) walk(id TypeID, visit func(TypeID, Type) bool, seen map[TypeID]bool, depth int) bool {
	if depth > MaxWalkDepth {
		return false
	}
	if seen[id] {
		return true
	}
	seen[id] = true

	t := e.Lookup(id)
	if !visit(id, t) {
		return false
	}
	for _, elem := range t.Elems {
		if !e.walk(elem, visit, seen, depth+1) {
			return false
		}
	}
	for _, field := range t.Fields {
		if !e.walk(field.Type, visit, seen, depth+1) {
			return false
		}
	}
	return true
}
