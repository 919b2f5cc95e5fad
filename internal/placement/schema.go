package placement

import "github.com/halcyondb/halcyon/internal/mir"

// ColumnKind describes how the pushdown target can address one column of
// the scanned row.
type ColumnKind uint8

const (
	// ColumnScalar columns are addressable only as whole values.
	ColumnScalar ColumnKind = iota + 1
	// ColumnEmbedded columns expose addressable sub-paths (an embedded
	// document).
	ColumnEmbedded
)

// Schema lists the columns the pushdown target understands on the filter
// subject.
type Schema struct {
	columns map[string]ColumnKind
}

// NewSchema returns an empty schema.
func NewSchema() *Schema {
	return &Schema{columns: make(map[string]ColumnKind)}
}

// AddColumn registers a column.
func (s *Schema) AddColumn(name string, kind ColumnKind) *Schema {
	s.columns[name] = kind
	return s
}

// Column looks a column up by name.
func (s *Schema) Column(name string) (ColumnKind, bool) {
	kind, ok := s.columns[name]
	return kind, ok
}

// PathSupported reports whether a projection chain on the subject row
// addresses something the target can evaluate: a recognized column, or a
// static field path into an embedded column. Whole-row references and
// dynamic indexing are not addressable.
func (s *Schema) PathSupported(projections []mir.Projection) bool {
	if len(projections) == 0 || projections[0].Kind != mir.ProjFieldNamed {
		return false
	}
	kind, ok := s.columns[projections[0].Name]
	if !ok {
		return false
	}
	rest := projections[1:]
	if len(rest) == 0 {
		return true
	}
	if kind != ColumnEmbedded {
		return false
	}
	for _, p := range rest {
		if p.Kind == mir.ProjIndex {
			return false
		}
	}
	return true
}
