package dao

// Parameter is a named filter applied by List implementations.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter parameter; multiple values form an OR match.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
