package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir(filepath.Join("testdata", "scenarios"))
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, s.Run)
	}
}

func TestLoadValid(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "scenarios", "age_filter.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "age-filter-pushdown", s.Name)
	assert.NotEmpty(t, s.Description)
	assert.Equal(t, "../fixtures/age_filter.yaml", s.Fixture)
	require.Len(t, s.Expect.Domains, 2)
	assert.ElementsMatch(t, []string{"interpreter", "pushdown"}, s.Expect.Domains[0].Targets)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadMissingName(t *testing.T) {
	path := writeScenario(t, "fixture: x.yaml\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrScenario)
}

func TestLoadMissingFixture(t *testing.T) {
	path := writeScenario(t, "name: incomplete\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrScenario)
}

func TestLoadBadYAML(t *testing.T) {
	path := writeScenario(t, "name: [unclosed\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrScenario)
}

func TestLoadDirPropagatesErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte("fixture: only\n"), 0o644))

	_, err := LoadDir(dir)
	assert.ErrorIs(t, err, ErrScenario)
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
