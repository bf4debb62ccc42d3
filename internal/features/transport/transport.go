// Package transport serves the carpool board: rides on offer and requests for a ride or a
// driver. The board is visible to signed-in residents only.
package transport

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

const (
	RequestRide   = "Need a Ride"
	RequestDriver = "Need a Driver"
)

type Ride struct {
	crud.Meta
	Driver         docstore.Snapshot `json:"driver"`
	From           string            `json:"from"`
	To             string            `json:"to"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	SeatsAvailable int               `json:"seatsAvailable"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (r *Ride) ContactNumbers() (string, string) { return r.PhoneNumber, r.WhatsappNumber }

type RideInput struct {
	From           string `json:"from" validate:"required,max=120"`
	To             string `json:"to" validate:"required,max=120"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	Time           string `json:"time" validate:"required,max=20"`
	SeatsAvailable int    `json:"seatsAvailable" validate:"min=1,max=8"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,phone"`
}

type Request struct {
	crud.Meta
	Requester      docstore.Snapshot `json:"requester"`
	RequestType    string            `json:"requestType"`
	Description    string            `json:"description"`
	Date           string            `json:"date"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (r *Request) ContactNumbers() (string, string) { return r.PhoneNumber, r.WhatsappNumber }

type RequestInput struct {
	RequestType    string `json:"requestType" validate:"required,oneof='Need a Ride' 'Need a Driver'"`
	Description    string `json:"description" validate:"required,max=1000"`
	Date           string `json:"date" validate:"required,datetime=2006-01-02"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,phone"`
}
