// Package middleware provides authentication, metrics, and rate limiting middleware.
package middleware

// ContextKey is the type for request-scoped context keys.
type ContextKey string

// UserIDKey carries the authenticated user ID through request contexts.
const UserIDKey ContextKey = "user_id"
