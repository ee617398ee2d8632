package store

import (
	"github.com/banksync-dev/banksync/internal/model"
)

// Identity resolves the current user from configuration. A blank name
// resolves to no user, which the orchestrator treats as fatal.
type Identity struct {
	store *Store
	name  string
}

// NewIdentity creates an Identity bound to the configured user name.
func NewIdentity(s *Store, name string) *Identity {
	return &Identity{store: s, name: name}
}

// Current returns the configured user, creating it on first use, or nil
// when no user is configured.
func (i *Identity) Current() (*model.User, error) {
	if i.name == "" {
		return nil, nil
	}
	return i.store.EnsureUser(i.name)
}
