package acl

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skyon-community/skyon-backend/internal/registry"
)

type CreateRule string

const (
	// CreateMember lets any signed-in resident create records.
	CreateMember CreateRule = "member"
	// CreateAdmin restricts creation to the admin allow-list.
	CreateAdmin CreateRule = "admin"
)

// Policy is the per-collection rule set. Edits and deletes are always owner-or-admin.
type Policy struct {
	Create                 CreateRule `yaml:"create"`
	ReadRequiresAuth       bool       `yaml:"read_requires_auth"`
	RequireCompleteProfile bool       `yaml:"require_complete_profile"`
}

type Policies map[registry.Collection]Policy

var selfService = Policy{Create: CreateMember, RequireCompleteProfile: true}

// DefaultPolicies: the medical directory and vendors are admin-moderated, the transport board
// is visible to signed-in residents only, and everything else is self-service.
func DefaultPolicies() Policies {
	p := make(Policies)
	for _, c := range registry.All() {
		p[c] = selfService
	}
	for _, c := range []registry.Collection{registry.Vendors, registry.MedicalServices, registry.Doctors} {
		p[c] = Policy{Create: CreateAdmin}
	}
	for _, c := range []registry.Collection{registry.CarpoolRides, registry.TransportRequests} {
		p[c] = Policy{Create: CreateMember, ReadRequiresAuth: true, RequireCompleteProfile: true}
	}
	return p
}

// For returns the policy of coll; unknown collections get the self-service policy.
func (p Policies) For(coll registry.Collection) Policy {
	if pol, ok := p[coll]; ok {
		return pol
	}
	return selfService
}

type policyFile struct {
	Collections map[string]Policy `yaml:"collections"`
}

// LoadPolicies reads a YAML policy file and lays it over the defaults. Each listed
// collection replaces its default policy as a whole.
func LoadPolicies(path string) (Policies, error) {
	policies := DefaultPolicies()
	if path == "" {
		return policies, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParsePolicies(data)
}

func ParsePolicies(data []byte) (Policies, error) {
	policies := DefaultPolicies()

	var f policyFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	for name, pol := range f.Collections {
		if !registry.Known(name) {
			return nil, fmt.Errorf("policy file: unknown collection %q", name)
		}
		switch pol.Create {
		case "":
			pol.Create = CreateMember
		case CreateMember, CreateAdmin:
		default:
			return nil, fmt.Errorf("policy file: collection %q: invalid create rule %q", name, pol.Create)
		}
		policies[registry.Collection(name)] = pol
	}
	return policies, nil
}
