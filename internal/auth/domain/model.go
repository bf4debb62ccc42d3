package domain

import (
	"errors"
	"time"

	"github.com/skyon-community/skyon-backend/internal/acl"
)

var ErrProfileNotFound = errors.New("profile not found")

// Profile is the resident's self-declared identity, keyed by Firebase UID.
type Profile struct {
	FirebaseUID string     `json:"uid"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Block       string     `json:"block,omitempty"`
	FlatNumber  string     `json:"flatNumber,omitempty"`
	CreatedAt   time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt,omitempty"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// ProfileInput is the body of the profile form.
type ProfileInput struct {
	DisplayName string `json:"displayName" validate:"required,max=80"`
	Block       string `json:"block" validate:"required,block"`
	FlatNumber  string `json:"flatNumber" validate:"required,flatnumber"`
}

// Identity merges the verified token identity with the profile. A nil profile yields an
// identity with no block or flat, which is an incomplete profile.
func Identity(uid, email, tokenName string, p *Profile) *acl.Identity {
	id := &acl.Identity{UID: uid, Email: email, DisplayName: tokenName}
	if p == nil {
		return id
	}
	if p.DisplayName != "" {
		id.DisplayName = p.DisplayName
	}
	if id.Email == "" {
		id.Email = p.Email
	}
	id.Block = p.Block
	id.FlatNumber = p.FlatNumber
	return id
}
