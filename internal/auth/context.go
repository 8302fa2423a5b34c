package auth

import "context"

type identityKey struct{}

// Identity is the authenticated caller attached to a request context by the
// auth middleware.
type Identity struct {
	UserID uint64
	Token  string
}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
