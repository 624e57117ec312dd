package types

import (
	"context"
	"reflect"
)

// Signatures is a lookup-able collection of method signatures.
type Signatures []Signature

// Lookup returns the signature with the given name, or nil.
func (s Signatures) Lookup(name string) *Signature {
	for i := range s {
		sig := &s[i]
		if sig.Name == name {
			return sig
		}
	}
	return nil
}

// Signature describes an action handler method.
type Signature struct {
	Name        string
	Description string
	Internal    bool
	Input       reflect.Type
	Output      reflect.Type
}

// Executable is an invocable action handler method.
type Executable func(ctx context.Context, input, output interface{}) error
