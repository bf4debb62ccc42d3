// Package medical serves the committee-maintained directory of hospitals, clinics and doctors.
package medical

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

const (
	TypeHospital = "Hospital"
	TypeClinic   = "Clinic"
)

type MedicalService struct {
	crud.Meta
	Name    string            `json:"name"`
	Type    string            `json:"type"`
	Address string            `json:"address"`
	Phone   string            `json:"phone"`
	Timings string            `json:"timings"`
	Owner   docstore.Snapshot `json:"owner"`
}

func (m *MedicalService) ContactNumbers() (string, string) { return m.Phone, "" }

type MedicalServiceInput struct {
	Name    string `json:"name" validate:"required,max=120"`
	Type    string `json:"type" validate:"required,oneof=Hospital Clinic"`
	Address string `json:"address" validate:"required,max=300"`
	Phone   string `json:"phone" validate:"required,phone"`
	Timings string `json:"timings" validate:"required,max=120"`
}

type Doctor struct {
	crud.Meta
	Name           string            `json:"name"`
	Specialty      string            `json:"specialty"`
	Location       string            `json:"location"`
	Availability   string            `json:"availability"`
	IsResident     bool              `json:"isResident"`
	ImageURL       string            `json:"imageUrl"`
	PhoneNumber    string            `json:"phoneNumber"`
	WhatsappNumber string            `json:"whatsappNumber"`
	Owner          docstore.Snapshot `json:"owner"`
}

func (d *Doctor) ContactNumbers() (string, string) { return d.PhoneNumber, d.WhatsappNumber }

type DoctorInput struct {
	Name           string `json:"name" validate:"required,max=80"`
	Specialty      string `json:"specialty" validate:"required,max=80"`
	Location       string `json:"location" validate:"required,max=120"`
	Availability   string `json:"availability" validate:"required,max=120"`
	IsResident     bool   `json:"isResident"`
	ImageURL       string `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
	PhoneNumber    string `json:"phoneNumber" validate:"required,phone"`
	WhatsappNumber string `json:"whatsappNumber,omitempty" validate:"omitempty,phone"`
}

// Directory is the combined listing shown on the medical screen.
type Directory struct {
	Services []*MedicalService `json:"services"`
	Doctors  []*Doctor         `json:"doctors"`
}
