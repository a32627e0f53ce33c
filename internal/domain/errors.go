package domain

import "errors"

// ErrNotFound is returned when a referenced draft, stop, vote, or
// participant does not exist. Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. malformed time value, unknown vote type).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrLocked is returned when a stop or vote mutation is attempted while the
// draft is locked. Unlocking via ToggleLock is the only way out.
// Handlers should map this to HTTP 409 Conflict.
var ErrLocked = errors.New("draft is locked")

// ErrPermission is returned when the acting participant's role lacks the
// authority for the attempted operation (guests mutating stops, non-voters
// dismissing someone else's proposal). Handlers should map this to HTTP 403.
var ErrPermission = errors.New("permission denied")

// ErrEmptyDraft is returned when locking is attempted on a draft with no
// stops. Locking an empty itinerary is refused, never fatal.
var ErrEmptyDraft = errors.New("cannot lock empty draft")
