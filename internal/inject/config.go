package inject

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadPatternSet reads a pattern table file. Empty path or a missing file
// falls back to the built-in set; invalid YAML or an empty table list is an
// error, because a silently empty scanner would pass everything.
func LoadPatternSet(path string) (PatternSet, error) {
	if path == "" {
		return BuiltinPatternSet(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return BuiltinPatternSet(), nil
		}
		return PatternSet{}, fmt.Errorf("inject: read pattern tables: %w", err)
	}

	var set PatternSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return PatternSet{}, fmt.Errorf("inject: parse pattern tables: %w", err)
	}
	if len(set.Tables) == 0 {
		return PatternSet{}, fmt.Errorf("inject: pattern tables %q define no tables", path)
	}
	if set.Version == "" {
		set.Version = "unversioned"
	}

	return set, nil
}

// LoadScanner loads pattern tables from path and compiles them.
func LoadScanner(path string) (*Scanner, error) {
	set, err := LoadPatternSet(path)
	if err != nil {
		return nil, err
	}
	return NewScannerFromSet(set)
}

// DefaultPatternYAML renders the built-in tables as a YAML file suitable
// for `agentwatch init` so deployments can version and tune them.
func DefaultPatternYAML() string {
	data, err := yaml.Marshal(BuiltinPatternSet())
	if err != nil {
		return ""
	}
	return "# agentwatch injection pattern tables\n" +
		"# Each category owns its detectors; confidence is high or medium.\n" +
		string(data)
}
