// Package registry names every collection of the community store and binds each one to its
// ownership field and its concrete record shape.
package registry

import (
	"sort"

	"github.com/skyon-community/skyon-backend/internal/docstore"
)

type Collection string

const (
	Listings          Collection = "listings"
	Stores            Collection = "stores"
	DailyDishes       Collection = "dailyDishes"
	Vendors           Collection = "vendors"
	Events            Collection = "events"
	LostAndFoundItems Collection = "lostAndFoundItems"
	MedicalServices   Collection = "medicalServices"
	Doctors           Collection = "doctors"
	CarpoolRides      Collection = "carpoolRides"
	TransportRequests Collection = "transportRequests"
	ParkingViolations Collection = "parkingViolations"

	// Users holds resident profiles keyed by identity; it carries no ownership snapshot.
	Users Collection = "users"
)

var ownerFields = map[Collection]string{
	Listings:          "owner",
	Stores:            "owner",
	DailyDishes:       "seller",
	Vendors:           "owner",
	Events:            "owner",
	LostAndFoundItems: "owner",
	MedicalServices:   "owner",
	Doctors:           "owner",
	CarpoolRides:      "driver",
	TransportRequests: "requester",
	ParkingViolations: "reportedBy",
}

func (c Collection) String() string { return string(c) }

// OwnerField is the field holding the creator's snapshot in records of c.
func (c Collection) OwnerField() string {
	if f, ok := ownerFields[c]; ok {
		return f
	}
	return docstore.DefaultOwnerField
}

// Known reports whether c is one of the content collections.
func Known(name string) bool {
	_, ok := ownerFields[Collection(name)]
	return ok
}

// All lists the content collections in name order.
func All() []Collection {
	out := make([]Collection, 0, len(ownerFields))
	for c := range ownerFields {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// OwnerFields is the option the document store client is built with.
func OwnerFields() map[string]string {
	out := make(map[string]string, len(ownerFields))
	for c, f := range ownerFields {
		out[string(c)] = f
	}
	return out
}
