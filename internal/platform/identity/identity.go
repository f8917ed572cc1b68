package identity

import (
	"context"

	"github.com/google/uuid"
)

// Identity is the authenticated caller. It is resolved once at the HTTP boundary and
// then passed explicitly into services; nothing below the handlers reads it from ctx.
type Identity struct {
	UserID    uuid.UUID
	SessionID uuid.UUID
}

func (i Identity) Valid() bool { return i.UserID != uuid.Nil }

// Is reports whether the identity belongs to userID.
func (i Identity) Is(userID uuid.UUID) bool {
	return i.Valid() && i.UserID == userID
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	id, ok := ctx.Value(identityKey{}).(Identity)
	if !ok || !id.Valid() {
		return Identity{}, false
	}
	return id, true
}
