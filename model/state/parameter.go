// Package state defines the named parameter collections used by mission
// definitions to seed and export run variables.
package state

import (
	"fmt"

	"github.com/viant/bindly/state"
	"gopkg.in/yaml.v3"
)

// Parameter represents a named value, optionally annotated with a data type
// and a binding location parsed from the `name[type](kind/location)` form.
type Parameter struct {
	Name     string          `json:"name" yaml:"name"`
	Value    interface{}     `json:"value" yaml:"value"`
	DataType string          `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	Location *state.Location `json:"location,omitempty" yaml:"location,omitempty"`
	Default  interface{}     `json:"default,omitempty" yaml:"default,omitempty"`
}

// Parameters is an ordered collection of named values.
type Parameters []*Parameter

// Add appends a parameter.
func (p *Parameters) Add(name string, value interface{}) {
	*p = append(*p, &Parameter{Name: name, Value: value})
}

// Get retrieves a parameter by name.
func (p Parameters) Get(name string) (*Parameter, bool) {
	for _, param := range p {
		if param.Name == name {
			return param, true
		}
	}
	return nil, false
}

// ToMap converts the collection to a map keyed by parameter name.
func (p Parameters) ToMap() map[string]interface{} {
	result := make(map[string]interface{}, len(p))
	for _, param := range p {
		result[param.Name] = param.Value
	}
	return result
}

// UnmarshalYAML accepts either a mapping (name: value, document order
// preserved) or an explicit parameter sequence.
func (p *Parameters) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			var value interface{}
			if err := node.Content[i+1].Decode(&value); err != nil {
				return err
			}
			*p = append(*p, &Parameter{Name: node.Content[i].Value, Value: value})
		}
		return nil
	case yaml.SequenceNode:
		var items []*Parameter
		if err := node.Decode(&items); err != nil {
			return err
		}
		*p = items
		return nil
	}
	return fmt.Errorf("unsupported parameters node kind: %v", node.Kind)
}

// FromMap creates Parameters from a map.
func FromMap(m map[string]interface{}) Parameters {
	params := make(Parameters, 0, len(m))
	for k, v := range m {
		params = append(params, &Parameter{Name: k, Value: v})
	}
	return params
}
