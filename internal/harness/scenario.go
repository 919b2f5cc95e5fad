package harness

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrScenario marks a malformed scenario file.
var ErrScenario = errors.New("invalid scenario")

// Scenario defines a conformance test scenario. A scenario runs the full
// analysis pipeline over one body fixture and asserts on the solved
// placement: per-block domains, per-edge transitions, and the body summary.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fixture is the path to the body fixture, relative to the scenario file.
	Fixture string `yaml:"fixture"`

	// Summaries is an optional summary cache path, relative to the scenario
	// file, used to seed the footprint estimator.
	Summaries string `yaml:"summaries,omitempty"`

	// Expect holds the assertions on the analysis result.
	Expect Expectations `yaml:"expect"`

	// dir is the directory the scenario was loaded from; fixture and
	// summary paths resolve against it.
	dir string
}

// Expectations are the asserted outcomes of a scenario.
type Expectations struct {
	// Domains lists the expected surviving target set per block.
	// Blocks not listed are not checked.
	Domains []DomainExpect `yaml:"domains,omitempty"`

	// Edges lists the expected pruned transitions per edge.
	// Edges not listed are not checked.
	Edges []EdgeExpect `yaml:"edges,omitempty"`

	// Summary is the expected body summary, in footprint string form
	// (e.g. "{units: 1, card: 1}"). Empty skips the check.
	Summary string `yaml:"summary,omitempty"`
}

// DomainExpect asserts one block's surviving targets, order-insensitive.
type DomainExpect struct {
	Block   int      `yaml:"block"`
	Targets []string `yaml:"targets"`
}

// EdgeExpect asserts one edge's allowed transitions after pruning, in
// "src->dst@cost" form, order-insensitive.
type EdgeExpect struct {
	From    int      `yaml:"from"`
	Slot    int      `yaml:"slot"`
	To      int      `yaml:"to"`
	Allowed []string `yaml:"allowed"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrScenario, path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("%w: %s: missing name", ErrScenario, path)
	}
	if s.Fixture == "" {
		return nil, fmt.Errorf("%w: %s: missing fixture", ErrScenario, path)
	}
	s.dir = filepath.Dir(path)
	return &s, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by filename.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("glob scenarios: %w", err)
	}

	var scenarios []*Scenario
	for _, path := range paths {
		s, err := Load(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// resolve maps a scenario-relative path to a real one.
func (s *Scenario) resolve(path string) string {
	if filepath.IsAbs(path) || s.dir == "" {
		return path
	}
	return filepath.Join(s.dir, path)
}
