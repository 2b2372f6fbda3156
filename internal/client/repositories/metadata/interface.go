// Package metadata stores small key/value facts about the local client, such
// as the signed-in user and their access token.
package metadata

import (
	"context"
)

// Repository is a string key/value store. Get returns an error wrapping
// common.ErrorNotFound for a missing key.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, keys ...string) error
	List(ctx context.Context) (map[string]string, error)
}
