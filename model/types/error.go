package types

import "fmt"

// NewMethodNotFoundError reports a missing handler method.
func NewMethodNotFoundError(name string) error {
	return fmt.Errorf("method %v not found", name)
}

// NewInvalidInputError reports an input of an unexpected type.
func NewInvalidInputError(in interface{}) error {
	return fmt.Errorf("invalid input %T", in)
}

// NewInvalidOutputError reports an output of an unexpected type.
func NewInvalidOutputError(out interface{}) error {
	return fmt.Errorf("invalid output %T", out)
}
