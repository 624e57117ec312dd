package nop

import (
	"context"
	"reflect"

	"github.com/gatekit/gatekit/model/types"
)

const name = "nop"

// Service is the no-op handler used by checkpoints whose only purpose is
// gating.
type Service struct{}

type Input struct{}

type Output struct{}

// New creates a no-op service
func New() *Service {
	return &Service{}
}

// Name returns the service name
func (s *Service) Name() string {
	return name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        "nop",
			Description: "Performs no operation and returns immediately.",
			Internal:    true,
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(string) (types.Executable, error) {
	return s.nop, nil
}

func (s *Service) nop(context.Context, interface{}, interface{}) error {
	return nil
}
