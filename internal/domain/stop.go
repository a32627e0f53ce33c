package domain

import "github.com/google/uuid"

// Stop is one itinerary entry. ID is stable across reorders; Order is the
// entry's position and always equals its slice index in Draft.Stops.
type Stop struct {
	ID       uuid.UUID `json:"id"`
	Venue    string    `json:"venue"`
	Time     string    `json:"time,omitempty"` // wall-clock "HH:MM", empty permitted
	Duration int       `json:"duration"`       // minutes, never negative
	Notes    string    `json:"notes,omitempty"`
	Order    int       `json:"order"`
}

// Venue is a resolved record from the venue catalog collaborator.
// AddVenueStop prefills a stop from it.
type Venue struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Vibe     string `json:"vibe"`
	Distance string `json:"distance"`
}
