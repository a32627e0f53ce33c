package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role controls edit authority within a draft. Hosts and co-planners may
// mutate the itinerary and toggle the lock; guests may only suggest changes
// through the voting engine.
type Role string

const (
	RoleHost      Role = "host"
	RoleCoPlanner Role = "co_planner"
	RoleGuest     Role = "guest"
)

// CanEdit reports whether the role carries direct mutation authority.
func (r Role) CanEdit() bool {
	return r == RoleHost || r == RoleCoPlanner
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHost, RoleCoPlanner, RoleGuest:
		return true
	}
	return false
}

// Presence is one participant's live status in a draft. Name, Avatar and
// Role are fixed when the participant first joins. EditingField and
// EditingStopID are an advisory claim: set together, cleared together, at
// most one claim per participant. The claim is not a lock — it exists so
// clients can render a "Maya is editing the time" indicator, nothing more.
type Presence struct {
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Avatar        string     `json:"avatar,omitempty"`
	Role          Role       `json:"role"`
	IsActive      bool       `json:"isActive"`
	LastSeen      time.Time  `json:"lastSeen"`
	EditingField  string     `json:"editingField,omitempty"`
	EditingStopID *uuid.UUID `json:"editingStopId,omitempty"`
}

// ClearClaim removes the participant's advisory editing claim, if any.
func (p *Presence) ClearClaim() {
	p.EditingField = ""
	p.EditingStopID = nil
}
