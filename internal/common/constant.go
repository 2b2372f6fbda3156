// Package common contains shared constants and sentinel errors used across
// Daybook components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token on
// outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token in the Authorization header.
const BearerPrefix = "Bearer "

// DefaultPageSize is the page size used when listing entries.
const DefaultPageSize = 100
