// Package dao defines the generic persistence contract shared by every
// gatekit entity store.
package dao

import (
	"context"
)

// Service is a generic keyed store for entities of type T.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
