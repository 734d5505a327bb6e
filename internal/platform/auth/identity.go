package auth

import "context"

// Identity 是通过认证的调用方，Subject 为 token 的 sub。
type Identity struct {
	Subject string
	Role    string
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

func GetIdentity(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey{}).(Identity)
	return id, ok
}
