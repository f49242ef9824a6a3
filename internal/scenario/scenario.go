package scenario

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario is one authored check of the rule data: evaluate a rule (or a
// literal formula) under a context and filters, optionally on top of a
// computed character sheet, and assert the outcome with a CEL expression.
type Scenario struct {
	Name      string             `yaml:"name"`
	Rule      string             `yaml:"rule"`
	Formula   string             `yaml:"formula"`
	Context   map[string]float64 `yaml:"context"`
	Filters   map[string]string  `yaml:"filters"`
	Character string             `yaml:"character"`
	Expect    string             `yaml:"expect"`

	// Source is the file the scenario came from.
	Source string `yaml:"-"`
}

// LoadFile reads every scenario in a YAML file. A document holds one
// scenario or a list of them; files may contain several documents.
func LoadFile(path string) ([]Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open scenarios %s: %w", path, err)
	}
	defer f.Close()

	list, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode scenarios %s: %w", path, err)
	}
	for i := range list {
		list[i].Source = path
		if list[i].Name == "" {
			list[i].Name = fmt.Sprintf("%s#%d", filepath.Base(path), i+1)
		}
	}
	return list, nil
}

// Decode reads scenarios from a YAML stream.
func Decode(r io.Reader) ([]Scenario, error) {
	var out []Scenario
	dec := yaml.NewDecoder(r)
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if len(node.Content) == 0 || node.Content[0].Tag == "!!null" {
			continue
		}
		if node.Content[0].Kind == yaml.SequenceNode {
			var list []Scenario
			if err := node.Decode(&list); err != nil {
				return nil, err
			}
			out = append(out, list...)
			continue
		}
		var s Scenario
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
}
