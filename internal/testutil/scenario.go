// Package testutil provides shared test helpers for Cara tests.
package testutil

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ScenariosDir is the relative path from the module root to the
// conformance scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.yml file.
type Scenario struct {
	Cmd    []string       `yaml:"cmd"`
	Meta   *ScenarioMeta  `yaml:"meta,omitempty"`
	Expect ExpectedResult `yaml:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Tags []string `yaml:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode       int    `yaml:"exitCode"`
	Stdout         string `yaml:"stdout,omitempty"`
	StdoutContains string `yaml:"stdoutContains,omitempty"`
	StderrContains string `yaml:"stderrContains,omitempty"`
	Code           string `yaml:"code,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.yml.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.yml"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.yml")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	return dirs, nil
}

// ReadProgramFile reads the program file referenced by the scenario cmd.
func ReadProgramFile(scenarioDir string, cmd []string) (string, string, error) {
	if len(cmd) < 2 {
		return "", "", nil
	}
	filename := cmd[1]
	source, err := os.ReadFile(filepath.Join(scenarioDir, filename))
	if err != nil {
		return "", "", err
	}
	return string(source), filename, nil
}
