// Package executor invokes registered action handlers: it expands the
// declarative input against the run variables, converts it to the handler's
// typed input and runs the method.
package executor

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/structology/conv"

	"github.com/gatekit/gatekit/extension"
	"github.com/gatekit/gatekit/internal/expander"
	"github.com/gatekit/gatekit/model/mission"
	"github.com/gatekit/gatekit/model/types"
)

// Listener observes every completed action invocation.
type Listener func(action *mission.Action, input, output interface{})

// Service dispatches mission actions to registered handlers.
type Service interface {
	Execute(ctx context.Context, action *mission.Action, vars map[string]interface{}) (interface{}, error)
}

type service struct {
	actions   *extension.Actions
	converter *conv.Converter
	listener  Listener
}

// Option customises the executor.
type Option func(*service)

// WithListener sets the post-invocation callback; nil disables it.
func WithListener(l Listener) Option {
	return func(s *service) {
		s.listener = l
	}
}

// Execute runs one action and returns its typed output.
func (s *service) Execute(ctx context.Context, action *mission.Action, vars map[string]interface{}) (interface{}, error) {
	if action == nil {
		return nil, fmt.Errorf("action was empty")
	}
	handler := s.actions.Lookup(action.Service)
	if handler == nil {
		return nil, fmt.Errorf("service %v not found", action.Service)
	}
	if action.Method == "" {
		return nil, fmt.Errorf("method not set for service %v", action.Service)
	}
	method, err := handler.Method(action.Method)
	if err != nil {
		return nil, fmt.Errorf("failed to find method %v for service %v: %w", action.Method, action.Service, err)
	}
	signature := handler.Methods().Lookup(action.Method)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(action.Method)
	}

	input := newInstance(signature.Input)
	if action.Input != nil {
		expanded := expander.Expand(action.Input, vars)
		if err = s.converter.Convert(expanded, input); err != nil {
			return nil, fmt.Errorf("failed to convert input for %v.%v: %w", action.Service, action.Method, err)
		}
	}
	output := newInstance(signature.Output)
	if err = method(ctx, input, output); err != nil {
		return nil, err
	}
	if s.listener != nil {
		s.listener(action, input, output)
	}
	return output, nil
}

func newInstance(t reflect.Type) interface{} {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return reflect.New(t).Interface()
}

// New creates an executor over the supplied handler registry.
func New(actions *extension.Actions, opts ...Option) Service {
	options := conv.DefaultOptions()
	options.ClonePointerData = true
	options.IgnoreUnmapped = true
	options.AccessUnexported = true
	s := &service{
		actions:   actions,
		converter: conv.NewConverter(options),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}
