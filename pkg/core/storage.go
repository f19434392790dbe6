package core

import "context"

// Durable storage keys used by the session.
const (
	StorageKeyUser      = "acc_user"
	StorageKeyToken     = "acc_token"
	StorageKeyReturnURL = "acc_return_url"
)

// Storage is durable client-side key/value storage. Values survive restarts
// of the process that owns the session.
type Storage interface {
	// GetItem returns the value for key and whether it was present.
	GetItem(ctx context.Context, key string) (string, bool, error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes key. Removing a missing key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// Authenticator checks credentials against the remote login endpoint.
type Authenticator interface {
	Login(ctx context.Context, username, password string) LoginResult
}
