// Package core defines the shared language of the LedgerDesk dashboard shell.
//
// This package contains:
//   - Identity types (User, Role, PermissionSet)
//   - The login outcome (LoginResult)
//   - The durable client storage contract (Storage) and its well-known keys
//
// The Golden Rule: pkg/core imports ONLY stdlib.
// All other packages depend on core, not the reverse.
package core
