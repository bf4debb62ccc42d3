package acl

import (
	"context"
	"fmt"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

// Guard applies the admin list and the policy table to the identity carried by ctx. Nothing
// is cached: every call looks at the identity of the request making it.
type Guard struct {
	admins   *Admins
	policies Policies
}

func NewGuard(admins *Admins, policies Policies) *Guard {
	if policies == nil {
		policies = DefaultPolicies()
	}
	return &Guard{admins: admins, policies: policies}
}

func (g *Guard) Admins() *Admins { return g.admins }

func (g *Guard) Policy(coll registry.Collection) Policy { return g.policies.For(coll) }

func (g *Guard) IsAdmin(ctx context.Context) bool {
	return g.admins.IsAdmin(FromContext(ctx))
}

func (g *Guard) AuthorizeRead(ctx context.Context, coll registry.Collection) error {
	if !g.policies.For(coll).ReadRequiresAuth {
		return nil
	}
	if FromContext(ctx).State() == SignedOut {
		return fmt.Errorf("read %s: %w", coll, apperr.ErrUnauthenticated)
	}
	return nil
}

// AuthorizeCreate returns the identity to snapshot on the new record.
func (g *Guard) AuthorizeCreate(ctx context.Context, coll registry.Collection) (*Identity, error) {
	id := FromContext(ctx)
	pol := g.policies.For(coll)

	switch id.State() {
	case SignedOut:
		return nil, fmt.Errorf("create %s: %w", coll, apperr.ErrUnauthenticated)
	case Incomplete:
		if pol.RequireCompleteProfile {
			return nil, fmt.Errorf("create %s: %w", coll, apperr.ErrProfileIncomplete)
		}
	}
	if pol.Create == CreateAdmin && !g.admins.IsAdmin(id) {
		return nil, fmt.Errorf("create %s: admin only: %w", coll, apperr.ErrUnauthorized)
	}
	return id, nil
}

// Decision records how a mutation was allowed.
type Decision struct {
	Actor   *Identity
	AsAdmin bool
}

// AuthorizeMutate checks an edit or delete of rec. It must run before any write is issued.
func (g *Guard) AuthorizeMutate(ctx context.Context, coll registry.Collection, rec docstore.Record) (Decision, error) {
	id := FromContext(ctx)
	if id.State() == SignedOut {
		return Decision{}, fmt.Errorf("modify %s: %w", coll, apperr.ErrUnauthenticated)
	}

	owner, _ := rec.Owner(coll.OwnerField())
	if !g.admins.CanMutate(id, owner.UID) {
		return Decision{}, fmt.Errorf("modify %s/%s: %w", coll, rec.ID(), apperr.ErrUnauthorized)
	}
	return Decision{Actor: id, AsAdmin: id.UID != owner.UID}, nil
}

// CanMutate is the per-record answer used to decorate list responses.
func (g *Guard) CanMutate(ctx context.Context, coll registry.Collection, rec docstore.Record) bool {
	owner, _ := rec.Owner(coll.OwnerField())
	return g.admins.CanMutate(FromContext(ctx), owner.UID)
}
