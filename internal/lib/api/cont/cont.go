package cont

import (
	"SevaFlow/entity"
	"context"
)

type ctxKey string

const userKey ctxKey = "auth-user"

// PutUser stores the authenticated key holder on the request context.
func PutUser(ctx context.Context, user *entity.UserAuth) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// GetUser returns the authenticated key holder, or nil when the route ran
// without the authenticate middleware.
func GetUser(ctx context.Context) *entity.UserAuth {
	user, ok := ctx.Value(userKey).(*entity.UserAuth)
	if !ok {
		return nil
	}
	return user
}
