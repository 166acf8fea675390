package models

import "context"

type userIDKey struct{}

// WithUserID returns a context carrying the id of the user behind a request.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFrom returns the request user id, or "" for system work such as
// seeding.
func UserIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
