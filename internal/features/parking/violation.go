// Package parking serves parking violation reports. Every report carries a photo.
package parking

import (
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
)

type Violation struct {
	crud.Meta
	VehicleNumber string            `json:"vehicleNumber"`
	Location      string            `json:"location"`
	Description   string            `json:"description"`
	ImageURL      string            `json:"imageUrl"`
	ReportedBy    docstore.Snapshot `json:"reportedBy"`
	Timestamp     string            `json:"timestamp"`
}

type ViolationInput struct {
	VehicleNumber string `json:"vehicleNumber" validate:"required,max=15"`
	Location      string `json:"location" validate:"required,max=120"`
	Description   string `json:"description" validate:"max=1000"`
	ImageURL      string `json:"imageUrl,omitempty" validate:"omitempty,imageurl"`
}
