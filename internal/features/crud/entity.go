// Package crud is the shared list/create/edit/delete flow every feature module composes:
// authorization first, then the image upload, then the store write, then the audit entry.
package crud

import (
	"strings"

	"github.com/skyon-community/skyon-backend/internal/validation"
)

// Meta is embedded in every record shape. ID and CreatedAt come from the store; CanMutate and
// Contact are computed per request for the caller.
type Meta struct {
	ID        string   `json:"id"`
	CreatedAt int64    `json:"createdAt"`
	CanMutate bool     `json:"canMutate"`
	Contact   *Contact `json:"contact,omitempty"`
}

func (m *Meta) Base() *Meta { return m }

// Entity is a pointer to a record shape embedding Meta.
type Entity interface {
	Base() *Meta
}

// Contactable records expose phone numbers residents can call or message.
type Contactable interface {
	ContactNumbers() (phone, whatsapp string)
}

// Contact holds ready-to-open links. Nothing is sent by the server.
type Contact struct {
	Call     string `json:"call,omitempty"`
	WhatsApp string `json:"whatsapp,omitempty"`
}

// ContactLinks builds tel: and wa.me links. A missing WhatsApp number falls back to the phone.
func ContactLinks(phone, whatsapp string) *Contact {
	if strings.TrimSpace(whatsapp) == "" {
		whatsapp = phone
	}
	c := &Contact{}
	if d := validation.PhoneDigits(phone); d != "" {
		if strings.HasPrefix(strings.TrimSpace(phone), "+") {
			d = "+" + d
		}
		c.Call = "tel:" + d
	}
	if d := validation.PhoneDigits(whatsapp); d != "" {
		c.WhatsApp = "https://wa.me/" + d
	}
	if c.Call == "" && c.WhatsApp == "" {
		return nil
	}
	return c
}
