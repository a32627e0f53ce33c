package domain

import (
	"fmt"
	"strconv"
)

// Wire names for the editable fields of a stop.
const (
	FieldVenue    = "venue"
	FieldTime     = "time"
	FieldDuration = "duration"
	FieldNotes    = "notes"
)

// StopField is the tagged union of single-field stop updates. Using a sum
// type instead of (field string, value any) means an invalid field/value
// combination cannot be constructed: a DurationField is always an int, a
// TimeField always a string.
type StopField interface {
	// Name returns the field's wire name.
	Name() string
	// Apply writes the value onto the stop.
	Apply(s *Stop)
}

// VenueField replaces the stop's free-text venue name.
type VenueField string

func (f VenueField) Name() string  { return FieldVenue }
func (f VenueField) Apply(s *Stop) { s.Venue = string(f) }

// TimeField replaces the stop's wall-clock time ("HH:MM" or empty).
type TimeField string

func (f TimeField) Name() string  { return FieldTime }
func (f TimeField) Apply(s *Stop) { s.Time = string(f) }

// DurationField replaces the stop's duration in minutes.
// Negative values are clamped to 0 on apply.
type DurationField int

func (f DurationField) Name() string { return FieldDuration }
func (f DurationField) Apply(s *Stop) {
	if f < 0 {
		f = 0
	}
	s.Duration = int(f)
}

// NotesField replaces the stop's free-text notes.
type NotesField string

func (f NotesField) Name() string  { return FieldNotes }
func (f NotesField) Apply(s *Stop) { s.Notes = string(f) }

// ParseDurationMinutes coerces a raw duration string to non-negative whole
// minutes. Malformed or negative input yields 0 rather than an error — bad
// numeric input is softened to a safe default, not refused.
func ParseDurationMinutes(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseStopField builds a StopField from its wire name and a raw string
// value, applying the duration coercion rule. Returns ErrValidation for an
// unknown field name.
func ParseStopField(name, value string) (StopField, error) {
	switch name {
	case FieldVenue:
		return VenueField(value), nil
	case FieldTime:
		return TimeField(value), nil
	case FieldDuration:
		return DurationField(ParseDurationMinutes(value)), nil
	case FieldNotes:
		return NotesField(value), nil
	}
	return nil, fmt.Errorf("%w: unknown stop field %q", ErrValidation, name)
}

// ValidClock reports whether s is empty or a well-formed 24h "HH:MM" value.
func ValidClock(s string) bool {
	if s == "" {
		return true
	}
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	hh, err := strconv.Atoi(s[:2])
	if err != nil || hh < 0 || hh > 23 {
		return false
	}
	mm, err := strconv.Atoi(s[3:])
	if err != nil || mm < 0 || mm > 59 {
		return false
	}
	return true
}
