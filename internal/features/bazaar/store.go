// Package bazaar serves home-run stores and the products listed inside each store.
package bazaar

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

// Categories a store may belong to.
var Categories = []string{"Home Food", "Handmade Crafts", "Boutique", "Groceries"}

type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"imageUrl"`
	Description string  `json:"description,omitempty"`
}

type Store struct {
	crud.Meta
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	Owner          docstore.Snapshot `json:"owner"`
	Rating         float64           `json:"rating"`
	CoverImageURL  string            `json:"coverImageUrl"`
	Products       []Product         `json:"products"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (s *Store) ContactNumbers() (string, string) { return s.PhoneNumber, s.WhatsappNumber }

// StoreInput is the open-a-store form.
type StoreInput struct {
	Name           string `json:"name" validate:"required,max=80"`
	Category       string `json:"category" validate:"required,oneof='Home Food' 'Handmade Crafts' 'Boutique' 'Groceries'"`
	CoverImageURL  string `json:"coverImageUrl,omitempty" validate:"omitempty,imageurl"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,phone"`
}

// ProductInput is the add-a-product form. The image is uploaded alongside it.
type ProductInput struct {
	Name        string  `json:"name" validate:"required,max=80"`
	Price       float64 `json:"price" validate:"gt=0"`
	ImageURL    string  `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	Description string  `json:"description,omitempty" validate:"max=500"`
}

type productList struct {
	Products []ProductInput `json:"products" validate:"dive"`
}

var (
	validateStoreFields = crud.ValidateAs[StoreInput]()
	validateProducts    = crud.ValidateAs[productList]()
)

// validateStore checks the store fields and every embedded product.
func validateStore(rec docstore.Record) error {
	if err := validateStoreFields(rec); err != nil {
		return err
	}
	return validateProducts(rec)
}
