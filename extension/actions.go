// Package extension holds the registries user code extends the engine with:
// action handler services and the data types they exchange.
package extension

import (
	"sync"

	"github.com/viant/x"

	"github.com/gatekit/gatekit/model/types"
)

// DataTypeIniter is implemented by handler services that publish their data
// types on registration.
type DataTypeIniter interface {
	InitTypes(types *Types)
}

// Actions is the action handler service registry.
type Actions struct {
	types    *Types
	services map[string]types.Service
	mux      sync.RWMutex
}

// Types exposes the data-type registry.
func (s *Actions) Types() *Types {
	return s.types
}

// Lookup returns a registered service by name, or nil.
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[name]
}

// Register adds a handler service.
func (s *Actions) Register(service types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()
	if typer, ok := service.(DataTypeIniter); ok {
		typer.InitTypes(s.types)
	}
	s.services[service.Name()] = service
}

// Services lists the registered service names.
func (s *Actions) Services() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	names := make([]string, 0, len(s.services))
	for name := range s.services {
		names = append(names, name)
	}
	return names
}

// NewActions creates an action registry seeded with the given data types.
func NewActions(goTypes ...*x.Type) *Actions {
	ret := &Actions{
		types:    NewTypes(),
		services: make(map[string]types.Service),
	}
	for _, t := range goTypes {
		if t != nil {
			ret.types.Register(t)
		}
	}
	return ret
}
