// Package events serves community events and their RSVP counters.
package events

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

const fieldRSVPs = "rsvps"

type Event struct {
	crud.Meta
	Title       string            `json:"title"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Location    string            `json:"location"`
	Description string            `json:"description"`
	ImageURL    string            `json:"imageUrl"`
	RSVPs       int               `json:"rsvps"`
	Owner       docstore.Snapshot `json:"owner"`
}

type EventInput struct {
	Title       string `json:"title" validate:"required,max=120"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Time        string `json:"time" validate:"required,max=20"`
	Location    string `json:"location" validate:"required,max=120"`
	Description string `json:"description" validate:"max=2000"`
	ImageURL    string `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
}

// RSVPRequest carries the count the caller last saw. Without it the current count is read.
type RSVPRequest struct {
	Seen *int `json:"seen,omitempty"`
}

type RSVPResult struct {
	ID    string `json:"id"`
	RSVPs int    `json:"rsvps"`
}
