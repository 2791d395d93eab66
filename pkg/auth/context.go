// Package auth provides login sessions and the middleware that guards
// authenticated routes. The session cookie carries an opaque token; the
// token resolves to a user id through the server-side SessionStore.
package auth

import (
	"context"
	"fmt"
)

type contextKey string

// UserIDKey is the context key for the authenticated user's id.
const UserIDKey contextKey = "userID"

// SetUserID stores the authenticated user's id in the context.
func SetUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// GetUserID extracts the authenticated user's id from the context.
// Returns 0 and false when the request is unauthenticated.
func GetUserID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(UserIDKey).(int64)
	return userID, ok
}

// RequireUserID extracts the authenticated user's id from the context
// and returns an error if not present. Use this in services where the
// operation cannot proceed without an actor.
func RequireUserID(ctx context.Context) (int64, error) {
	userID, ok := GetUserID(ctx)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
