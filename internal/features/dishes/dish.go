// Package dishes serves the home-cooked dishes residents post for the day.
package dishes

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Dish struct {
	crud.Meta
	Name           string            `json:"name"`
	Price          float64           `json:"price"`
	ImageURL       string            `json:"imageUrl"`
	Seller         docstore.Snapshot `json:"seller"`
	PostedAt       string            `json:"postedAt"`
	WhatsappNumber string            `json:"whatsappNumber"`
	PhoneNumber    string            `json:"phoneNumber"`
}

func (d *Dish) ContactNumbers() (string, string) { return d.PhoneNumber, d.WhatsappNumber }

type DishInput struct {
	Name           string  `json:"name" validate:"required,max=80"`
	Price          float64 `json:"price" validate:"gt=0"`
	ImageURL       string  `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	WhatsappNumber string  `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
	PhoneNumber    string  `json:"phoneNumber" validate:"required,phone"`
}

// Template pre-fills the post-a-dish form.
type Template struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

var templates = []Template{
	{ID: 1, Name: "Chicken Biryani", Price: 180},
	{ID: 2, Name: "Paneer Butter Masala", Price: 150},
	{ID: 3, Name: "Aloo Gobi", Price: 100},
}

func Templates() []Template {
	out := make([]Template, len(templates))
	copy(out, templates)
	return out
}
