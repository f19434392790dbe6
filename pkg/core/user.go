package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Role is the access level of a dashboard user.
type Role string

// Known roles. Any other value decoded from the login endpoint is kept verbatim
// and treated as a regular, non-admin role.
const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleApprover Role = "approver"
)

// IsAdmin reports whether the role grants unrestricted access.
func (r Role) IsAdmin() bool {
	switch r {
	case RoleAdmin:
		return true
	case RoleStaff, RoleApprover:
		return false
	default:
		return false
	}
}

// PermissionSet is the set of capability keys granted to a user.
type PermissionSet map[string]struct{}

// NewPermissionSet builds a set from capability keys. Blank keys are ignored.
func NewPermissionSet(keys ...string) PermissionSet {
	set := make(PermissionSet, len(keys))
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Has reports whether key is in the set.
func (p PermissionSet) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Keys returns the capability keys in sorted order.
func (p PermissionSet) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// MarshalJSON encodes the set as a sorted array of keys.
func (p PermissionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Keys())
}

// UnmarshalJSON accepts either an array of keys or an object of flags.
// A flag is granted when its value is Truthy; the accounting backend is not
// consistent about flag types.
func (p *PermissionSet) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = PermissionSet{}
		return nil
	}

	if len(data) > 0 && data[0] == '[' {
		var keys []string
		if err := json.Unmarshal(data, &keys); err != nil {
			return fmt.Errorf("permissions: %w", err)
		}
		*p = NewPermissionSet(keys...)
		return nil
	}

	var flags map[string]any
	if err := json.Unmarshal(data, &flags); err != nil {
		return fmt.Errorf("permissions: %w", err)
	}
	set := make(PermissionSet, len(flags))
	for k, v := range flags {
		if Truthy(v) {
			set[k] = struct{}{}
		}
	}
	*p = set
	return nil
}

// Truthy reports whether a decoded JSON value counts as set: true, a non-zero
// number, or one of "1", "true", "yes", "y" in any case.
func Truthy(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case float64:
		return val != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(val)) {
		case "1", "true", "yes", "y":
			return true
		}
		if n, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return n != 0
		}
	}
	return false
}

// User is the identity record returned by the login endpoint and kept in the session.
type User struct {
	ID          string        `json:"id,omitempty"`
	Username    string        `json:"username,omitempty"`
	Name        string        `json:"name,omitempty"`
	Role        Role          `json:"role"`
	Permissions PermissionSet `json:"permissions,omitempty"`
}

// UnmarshalJSON tolerates numeric ids, which the backend emits for some accounts.
func (u *User) UnmarshalJSON(data []byte) error {
	type plain User
	var raw struct {
		plain
		ID json.RawMessage `json:"id,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User(raw.plain)
	u.ID = ""
	if len(raw.ID) > 0 && !bytes.Equal(raw.ID, []byte("null")) {
		var s string
		if err := json.Unmarshal(raw.ID, &s); err == nil {
			u.ID = s
		} else {
			u.ID = string(bytes.Trim(raw.ID, `"`))
		}
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role.IsAdmin()
}

// HasAccess reports whether the user may use the capability named by key.
// Admins may use every capability. A nil user has no access.
func (u *User) HasAccess(key string) bool {
	if u == nil {
		return false
	}
	if u.Role.IsAdmin() {
		return true
	}
	return u.Permissions.Has(key)
}

// DisplayName returns the best human-readable label for the user.
func (u *User) DisplayName() string {
	switch {
	case u == nil:
		return ""
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return u.Username
	default:
		return u.ID
	}
}
