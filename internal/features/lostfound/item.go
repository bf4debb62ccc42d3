// Package lostfound serves the lost-and-found board.
package lostfound

import (
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

const (
	StatusLost  = "Lost"
	StatusFound = "Found"
)

type Item struct {
	crud.Meta
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      string            `json:"status"`
	Location    string            `json:"location"`
	Date        string            `json:"date"`
	ImageURL    string            `json:"imageUrl"`
	PhoneNumber string            `json:"phoneNumber,omitempty"`
	Owner       docstore.Snapshot `json:"owner"`
}

func (i *Item) ContactNumbers() (string, string) { return i.PhoneNumber, "" }

type ItemInput struct {
	Title       string `json:"title" validate:"required,max=80"`
	Description string `json:"description" validate:"max=1000"`
	Status      string `json:"status" validate:"required,oneof=Lost Found"`
	Location    string `json:"location" validate:"required,max=120"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	PhoneNumber string `json:"phoneNumber,omitempty" validate:"omitempty,phone"`
}

// ByStatus keeps items of one status; "" and "All" keep everything.
func ByStatus(status string) (func(docstore.Record, *Item) bool, error) {
	switch status {
	case "", "All":
		return nil, nil
	case StatusLost, StatusFound:
		return func(_ docstore.Record, i *Item) bool { return i.Status == status }, nil
	}
	return nil, apperr.Invalid("status", "must be All, Lost or Found")
}
