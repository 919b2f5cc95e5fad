// Package summarycache persists footprint summary tables between compiler
// runs, so a host driver iterating bodies to a cross-body fixpoint can
// resume from the previous run's estimates instead of starting cold.
package summarycache

import (
	"errors"
	"fmt"
	"os"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/halcyondb/halcyon/internal/footprint"
	"github.com/halcyondb/halcyon/internal/mir"
)

// formatVersion guards against reading caches written by an incompatible
// release. Bump on any change to the serialized shape.
const formatVersion = 1

// ErrVersion marks a cache written with a different format version.
var ErrVersion = errors.New("summary cache version mismatch")

const (
	estBottom uint8 = iota
	estExact
	estUnknown
)

type estimateRec struct {
	Kind  uint8  `msgpack:"k"`
	Value uint32 `msgpack:"v,omitempty"`
}

type entryRec struct {
	Body        uint32      `msgpack:"body"`
	Units       estimateRec `msgpack:"units"`
	Cardinality estimateRec `msgpack:"card"`
}

type fileRec struct {
	Version int        `msgpack:"version"`
	Entries []entryRec `msgpack:"entries"`
}

func encodeEstimate(e footprint.Estimate) estimateRec {
	if e.IsUnknown() {
		return estimateRec{Kind: estUnknown}
	}
	if value, ok := e.Value(); ok {
		return estimateRec{Kind: estExact, Value: value}
	}
	return estimateRec{Kind: estBottom}
}

func decodeEstimate(rec estimateRec) (footprint.Estimate, error) {
	switch rec.Kind {
	case estBottom:
		return footprint.Bottom(), nil
	case estExact:
		return footprint.Exact(rec.Value), nil
	case estUnknown:
		return footprint.Unknown(), nil
	default:
		return footprint.Estimate{}, fmt.Errorf("bad estimate kind %d", rec.Kind)
	}
}

// Marshal serializes a summary table.
func Marshal(table *footprint.SummaryTable) ([]byte, error) {
	rec := fileRec{Version: formatVersion}
	for _, id := range table.Bodies() {
		summary, _ := table.Lookup(id)
		rec.Entries = append(rec.Entries, entryRec{
			Body:        uint32(id),
			Units:       encodeEstimate(summary.Units),
			Cardinality: encodeEstimate(summary.Cardinality),
		})
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal summary cache: %w", err)
	}
	return data, nil
}

// Unmarshal deserializes a summary table.
func Unmarshal(data []byte) (*footprint.SummaryTable, error) {
	var rec fileRec
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal summary cache: %w", err)
	}
	if rec.Version != formatVersion {
		return nil, fmt.Errorf("%w: have %d, want %d", ErrVersion, rec.Version, formatVersion)
	}

	table := footprint.NewSummaryTable()
	for _, entry := range rec.Entries {
		units, err := decodeEstimate(entry.Units)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", entry.Body, err)
		}
		card, err := decodeEstimate(entry.Cardinality)
		if err != nil {
			return nil, fmt.Errorf("body %d: %w", entry.Body, err)
		}
		table.Set(mir.BodyID(entry.Body), footprint.Footprint{Units: units, Cardinality: card})
	}
	return table, nil
}

// Save writes a summary table to disk.
func Save(path string, table *footprint.SummaryTable) error {
	data, err := Marshal(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write summary cache: %w", err)
	}
	return nil
}

// Load reads a summary table from disk.
func Load(path string) (*footprint.SummaryTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read summary cache: %w", err)
	}
	return Unmarshal(data)
}
