// Package vendors serves the committee-maintained directory of local service providers and
// the reviews residents leave on them.
package vendors

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

// DefaultRating is shown until the first review arrives.
const DefaultRating = 5.0

type Review struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	AuthorUID string `json:"authorUid,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

type Vendor struct {
	crud.Meta
	Name           string            `json:"name"`
	Service        string            `json:"service"`
	Description    string            `json:"description"`
	Rating         float64           `json:"rating"`
	ImageURL       string            `json:"imageUrl"`
	Reviews        []Review          `json:"reviews"`
	Owner          docstore.Snapshot `json:"owner"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (v *Vendor) ContactNumbers() (string, string) { return v.PhoneNumber, v.WhatsappNumber }

type VendorInput struct {
	Name           string `json:"name" validate:"required,max=80"`
	Service        string `json:"service" validate:"required,max=40"`
	Description    string `json:"description" validate:"max=1000"`
	ImageURL       string `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,phone"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"min=1,max=5"`
	Comment string `json:"comment" validate:"required,max=1000"`
}
