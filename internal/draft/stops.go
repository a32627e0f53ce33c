package draft

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/mparedes/draftroom/internal/domain"
)

// defaultVenueDuration is the prefilled duration for stops created from a
// resolved venue record, in minutes.
const defaultVenueDuration = 60

// renumber restores the dense 0..n-1 order ranking after any structural
// change to the stop list.
func renumber(stops []domain.Stop) {
	for i := range stops {
		stops[i].Order = i
	}
}

// validateStop enforces the rules common to add and restore.
//   - ID must be set (issuing sessions assign it so replicas converge).
//   - ID must not collide with an existing stop.
//   - Time must be empty or a well-formed "HH:MM".
func validateStop(d *domain.Draft, s domain.Stop) error {
	if s.ID == uuid.Nil {
		return fmt.Errorf("%w: stop id is required", domain.ErrValidation)
	}
	if d.StopByID(s.ID) != nil {
		return fmt.Errorf("%w: stop %s already exists", domain.ErrValidation, s.ID)
	}
	if !domain.ValidClock(s.Time) {
		return fmt.Errorf("%w: time must be HH:MM, got %q", domain.ErrValidation, s.Time)
	}
	return nil
}

// applyAddStop appends a stop with order = len(stops). A blank stop (empty
// venue/time/notes, duration 0) is the caller's "just add a slot" case.
func applyAddStop(d *domain.Draft, m domain.AddStop) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	stop := m.Stop
	if err := validateStop(d, stop); err != nil {
		return domain.Event{}, err
	}
	if stop.Duration < 0 {
		stop.Duration = 0
	}

	stop.Order = len(d.Stops)
	d.Stops = append(d.Stops, stop)
	touch(p)
	return domain.Event{Kind: domain.EventStopAdded, Actor: m.UserID, StopID: stop.ID}, nil
}

// applyAddVenueStop appends a stop prefilled from a venue catalog record:
// venue name, a default duration, and notes summarising the record.
func applyAddVenueStop(d *domain.Draft, m domain.AddVenueStop) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}

	stop := domain.Stop{
		ID:       m.StopID,
		Venue:    m.Venue.Name,
		Duration: defaultVenueDuration,
		Notes:    venueNotes(m.Venue),
	}
	if err := validateStop(d, stop); err != nil {
		return domain.Event{}, err
	}

	stop.Order = len(d.Stops)
	d.Stops = append(d.Stops, stop)
	touch(p)
	return domain.Event{Kind: domain.EventStopAdded, Actor: m.UserID, StopID: stop.ID}, nil
}

// venueNotes joins the descriptive parts of a venue record for the notes
// prefill, e.g. "rooftop bar, chill, 0.4 mi".
func venueNotes(v domain.Venue) string {
	var parts []string
	for _, s := range []string{v.Type, v.Vibe, v.Distance} {
		if s = strings.TrimSpace(s); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// applyUpdateStopField replaces a single field on the target stop.
// Durations arrive already coerced to non-negative minutes by the
// DurationField codec; time values are validated here.
func applyUpdateStopField(d *domain.Draft, m domain.UpdateStopField) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	stop := d.StopByID(m.StopID)
	if stop == nil {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.StopID)
	}
	if m.Field == nil {
		return domain.Event{}, fmt.Errorf("%w: field is required", domain.ErrValidation)
	}
	if t, ok := m.Field.(domain.TimeField); ok && !domain.ValidClock(string(t)) {
		return domain.Event{}, fmt.Errorf("%w: time must be HH:MM, got %q", domain.ErrValidation, string(t))
	}

	m.Field.Apply(stop)
	touch(p)
	return domain.Event{Kind: domain.EventStopUpdated, Actor: m.UserID, StopID: m.StopID}, nil
}

// applyDeleteStop removes the stop and renumbers the remainder. Advisory
// claims on the deleted stop are cleared; votes referencing it are kept so
// an undo restores the full picture.
func applyDeleteStop(d *domain.Draft, m domain.DeleteStop) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	idx := d.StopIndex(m.StopID)
	if idx < 0 {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.StopID)
	}

	d.Stops = slices.Delete(d.Stops, idx, idx+1)
	renumber(d.Stops)
	for i := range d.Presence {
		if d.Presence[i].EditingStopID != nil && *d.Presence[i].EditingStopID == m.StopID {
			d.Presence[i].ClearClaim()
		}
	}
	touch(p)
	return domain.Event{Kind: domain.EventStopDeleted, Actor: m.UserID, StopID: m.StopID}, nil
}

// applyRestoreStop re-inserts a deleted stop snapshot at its original
// order (clamped if the list shrank) and renumbers.
func applyRestoreStop(d *domain.Draft, m domain.RestoreStop) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	if err := validateStop(d, m.Stop); err != nil {
		return domain.Event{}, err
	}

	at := m.Order
	if at < 0 {
		at = 0
	}
	if at > len(d.Stops) {
		at = len(d.Stops)
	}
	d.Stops = slices.Insert(d.Stops, at, m.Stop)
	renumber(d.Stops)
	touch(p)
	return domain.Event{Kind: domain.EventStopRestored, Actor: m.UserID, StopID: m.Stop.ID}, nil
}

// applyReorderStops moves the dragged stop to the target stop's original
// position and renumbers. Dragging a stop onto itself is a no-op.
func applyReorderStops(d *domain.Draft, m domain.ReorderStops) (domain.Event, error) {
	p, err := editor(d, m.UserID)
	if err != nil {
		return domain.Event{}, err
	}
	if err := unlocked(d); err != nil {
		return domain.Event{}, err
	}
	if m.DraggedID == m.TargetID {
		return domain.Event{}, nil
	}
	dragIdx := d.StopIndex(m.DraggedID)
	if dragIdx < 0 {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.DraggedID)
	}
	targetIdx := d.StopIndex(m.TargetID)
	if targetIdx < 0 {
		return domain.Event{}, fmt.Errorf("%w: stop %s", domain.ErrNotFound, m.TargetID)
	}

	dragged := d.Stops[dragIdx]
	d.Stops = slices.Delete(d.Stops, dragIdx, dragIdx+1)
	at := targetIdx
	if at > len(d.Stops) {
		at = len(d.Stops)
	}
	d.Stops = slices.Insert(d.Stops, at, dragged)
	renumber(d.Stops)
	touch(p)
	return domain.Event{Kind: domain.EventStopsReordered, Actor: m.UserID, StopID: m.DraggedID}, nil
}
