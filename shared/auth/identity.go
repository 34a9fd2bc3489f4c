package auth

import "context"

// Identity is the authenticated principal attached to a request.
// It is derived from a stored user and never persisted itself.
type Identity struct {
	UserID      string
	Email       string
	FullName    string
	Authorities []string
}

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying identity.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// IdentityFromContext returns the identity attached to ctx, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityKey{}).(Identity)
	return identity, ok
}

// HasAuthority reports whether the identity was granted the named authority.
func (i Identity) HasAuthority(name string) bool {
	for _, a := range i.Authorities {
		if a == name {
			return true
		}
	}
	return false
}
