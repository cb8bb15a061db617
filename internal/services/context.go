package services

import (
	"context"
	"fmt"
)

type actorKey struct{}

// SystemActor is used for work that no account initiated.
const SystemActor = "System (Automated)"

// WithActor stores the acting account's username.
func WithActor(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, actorKey{}, username)
}

// ActorFrom returns the acting username, or SystemActor.
func ActorFrom(ctx context.Context) string {
	if name, ok := ctx.Value(actorKey{}).(string); ok && name != "" {
		return name
	}
	return SystemActor
}

// NotFoundError matches ErrNotFound and names the missing record.
type NotFoundError struct {
	What string
	ID   any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %v", e.What, e.ID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }
