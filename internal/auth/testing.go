package auth

import "context"

// SetUserIDForTest stamps a user ID onto the context the way Middleware
// would, so handler tests can skip the token round trip.
func SetUserIDForTest(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}
