// Package marketplace serves classified listings: items for sale or rent between residents.
package marketplace

import (
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

const (
	TypeForSale = "For Sale"
	TypeForRent = "For Rent"
)

// Conditions an item may be listed in.
var Conditions = []string{"New", "Used - Like New", "Used - Good", "Used - Fair"}

type Listing struct {
	crud.Meta
	Title          string            `json:"title"`
	Description    string            `json:"description"`
	Price          docstore.Price    `json:"price"`
	Type           string            `json:"type"`
	Category       string            `json:"category"`
	Condition      string            `json:"condition"`
	ImageURL       string            `json:"imageUrl"`
	Owner          docstore.Snapshot `json:"owner"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (l *Listing) ContactNumbers() (string, string) { return l.PhoneNumber, l.WhatsappNumber }

// ListingInput is the post-an-item form.
type ListingInput struct {
	Title          string         `json:"title" validate:"required,max=120"`
	Description    string         `json:"description" validate:"max=2000"`
	Price          docstore.Price `json:"price"`
	Type           string         `json:"type" validate:"required,oneof='For Sale' 'For Rent'"`
	Category       string         `json:"category" validate:"required,max=40"`
	Condition      string         `json:"condition" validate:"required,oneof='New' 'Used - Like New' 'Used - Good' 'Used - Fair'"`
	ImageURL       string         `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	WhatsappNumber string         `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string         `json:"phoneNumber" validate:"required,phone"`
}

var validateInput = crud.ValidateAs[ListingInput]()

func validateListing(rec docstore.Record) error {
	if err := validateInput(rec); err != nil {
		return err
	}
	in, err := docstore.Decode[ListingInput](rec)
	if err != nil {
		return apperr.Invalid("price", err.Error())
	}
	if !in.Price.Valid() {
		return apperr.Invalid("price", `must be a positive number or "Free"`)
	}
	return nil
}
