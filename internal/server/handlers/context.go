package handlers

import "context"

type contextKey string

const (
	// UserIDKey holds the authenticated user id
	UserIDKey contextKey = "user_id"
	// EmailKey holds the authenticated user email
	EmailKey contextKey = "email"
)

// WithUser returns ctx carrying the authenticated user
func WithUser(ctx context.Context, userID, email string) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, userID)
	return context.WithValue(ctx, EmailKey, email)
}

// UserFromContext returns the authenticated user, if any
func UserFromContext(ctx context.Context) (userID, email string, ok bool) {
	userID, ok = ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		return "", "", false
	}
	email, _ = ctx.Value(EmailKey).(string)
	return userID, email, true
}
