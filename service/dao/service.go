package dao

import (
	"context"
)

// Service is a generic keyed persistence contract shared by the task,
// tool-call, approval and policy stores. Load returns (nil, nil) when the key
// is absent so that callers can distinguish "missing" from transport errors.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	// Create persists t only when its key is free, returning ErrAlreadyExists
	// otherwise.
	Create(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}
