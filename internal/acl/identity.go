// Package acl decides who may create, read and mutate records of the community store.
package acl

import (
	"context"
	"regexp"
	"strings"

	"github.com/skyon-community/skyon-backend/internal/docstore"
)

type State int

const (
	SignedOut State = iota
	Incomplete
	Complete
)

func (s State) String() string {
	switch s {
	case Incomplete:
		return "incomplete"
	case Complete:
		return "complete"
	default:
		return "signed_out"
	}
}

// Blocks are the residential blocks of the community.
var Blocks = []string{"A", "B", "C", "D", "E", "F"}

var flatNumberPattern = regexp.MustCompile(`^\d{3,4}$`)

func ValidFlatNumber(s string) bool {
	return flatNumberPattern.MatchString(s)
}

func ValidBlock(s string) bool {
	for _, b := range Blocks {
		if s == b {
			return true
		}
	}
	return false
}

// Identity is the signed-in resident as seen by one request: the identity provider's key and
// email merged with the self-declared profile.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Block       string `json:"block,omitempty"`
	FlatNumber  string `json:"flatNumber,omitempty"`
}

func (i *Identity) State() State {
	if i == nil || i.UID == "" {
		return SignedOut
	}
	if !ValidBlock(i.Block) || !ValidFlatNumber(i.FlatNumber) {
		return Incomplete
	}
	return Complete
}

// Snapshot copies the identity into the ownership snapshot stored on new records.
func (i *Identity) Snapshot() docstore.Snapshot {
	if i == nil {
		return docstore.Snapshot{}
	}
	name := strings.TrimSpace(i.DisplayName)
	if name == "" {
		name = i.Email
	}
	return docstore.Snapshot{
		UID:        i.UID,
		Name:       name,
		Block:      i.Block,
		FlatNumber: i.FlatNumber,
	}
}

type identityKey struct{}

func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// FromContext returns the identity of the current request, or nil when signed out.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(identityKey{}).(*Identity)
	return id
}
