package api

import (
	"context"

	"github.com/rpupo63/wholspace-backend/auth"
)

type keyType string

const identityKey keyType = "identity"

// ctxWithIdentity adds the caller's verified identity to the context
func ctxWithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// ctxGetIdentity retrieves the caller's identity from the context
func ctxGetIdentity(ctx context.Context) (auth.Identity, bool) {
	id, ok := ctx.Value(identityKey).(auth.Identity)
	return id, ok && id.UID != ""
}

// ctxGetUserID returns the caller's uid, or "" for anonymous requests
func ctxGetUserID(ctx context.Context) string {
	id, _ := ctxGetIdentity(ctx)
	return id.UID
}
