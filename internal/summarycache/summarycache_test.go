package summarycache

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/halcyondb/halcyon/internal/footprint"
)

func sampleTable() *footprint.SummaryTable {
	table := footprint.NewSummaryTable()
	table.Set(1, footprint.ScalarFootprint())
	table.Set(2, footprint.Footprint{
		Units:       footprint.Exact(12),
		Cardinality: footprint.Unknown(),
	})
	table.Set(9, footprint.UnknownFootprint())
	return table
}

func TestRoundTrip(t *testing.T) {
	table := sampleTable()
	data, err := Marshal(table)
	require.NoError(t, err)

	restored, err := Unmarshal(data)
	require.NoError(t, err)

	require.Equal(t, table.Len(), restored.Len())
	for _, id := range table.Bodies() {
		want, _ := table.Lookup(id)
		got, ok := restored.Lookup(id)
		require.True(t, ok, "body %d", id)
		assert.Equal(t, want, got, "body %d", id)
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summaries.bin")
	require.NoError(t, Save(path, sampleTable()))

	restored, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 3, restored.Len())

	summary, ok := restored.Lookup(2)
	require.True(t, ok)
	units, exact := summary.Units.Value()
	require.True(t, exact)
	assert.Equal(t, uint32(12), units)
	assert.True(t, summary.Cardinality.IsUnknown())
}

func TestVersionMismatch(t *testing.T) {
	data, err := msgpack.Marshal(fileRec{Version: formatVersion + 1})
	require.NoError(t, err)

	_, err = Unmarshal(data)
	assert.ErrorIs(t, err, ErrVersion)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.bin"))
	assert.Error(t, err)
}
