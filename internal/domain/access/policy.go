package access

import (
	"github.com/shopbot/backend/internal/domain/shared"
)

// Policy answers whether an actor may perform privileged operations
// (catalog management, order inspection). The privileged set is fixed at
// construction from configuration; nothing mutates it at runtime.
type Policy struct {
	privileged map[int64]struct{}
}

// NewPolicy builds a Policy from the configured privileged actor ids
func NewPolicy(actorIDs []int64) *Policy {
	privileged := make(map[int64]struct{}, len(actorIDs))
	for _, id := range actorIDs {
		privileged[id] = struct{}{}
	}
	return &Policy{privileged: privileged}
}

// IsPrivileged reports whether the actor may perform privileged operations
func (p *Policy) IsPrivileged(actorID int64) bool {
	_, ok := p.privileged[actorID]
	return ok
}

// Authorize returns shared.ErrForbidden when the actor is not privileged.
// The error carries no hint of which privileged operations exist.
func (p *Policy) Authorize(actorID int64) error {
	if !p.IsPrivileged(actorID) {
		return shared.ErrForbidden
	}
	return nil
}
