// Package access backs the pool's access-control capability with a simple
// in-memory role-membership map.
package access

import (
	"sync"

	"github.com/openamm/pool-engine/internal/pool"
)

type Registry struct {
	mu      sync.RWMutex
	members map[pool.Role]map[pool.Account]struct{}
}

func NewRegistry() *Registry {
	return &Registry{members: make(map[pool.Role]map[pool.Account]struct{})}
}

func (r *Registry) HasRole(role pool.Role, account pool.Account) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[role][account]
	return ok
}

func (r *Registry) Grant(role pool.Role, account pool.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.members[role] == nil {
		r.members[role] = make(map[pool.Account]struct{})
	}
	r.members[role][account] = struct{}{}
}

func (r *Registry) Revoke(role pool.Role, account pool.Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members[role], account)
}

// Members lists the accounts holding a role.
func (r *Registry) Members(role pool.Role) []pool.Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]pool.Account, 0, len(r.members[role]))
	for acct := range r.members[role] {
		out = append(out, acct)
	}
	return out
}
