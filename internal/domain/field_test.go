package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mparedes/draftroom/internal/domain"
)

// ---- duration coercion -----------------------------------------------------

func TestParseDurationMinutes(t *testing.T) {
	cases := []struct {
		raw  string
		want int
	}{
		{"90", 90},
		{"0", 0},
		{"-5", 0},
		{"", 0},
		{"abc", 0},
		{"45.5", 0},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.ParseDurationMinutes(tc.raw))
		})
	}
}

func TestDurationField_Apply_clampsNegative(t *testing.T) {
	var s domain.Stop
	domain.DurationField(-10).Apply(&s)
	assert.Equal(t, 0, s.Duration)
}

// ---- field parsing ---------------------------------------------------------

func TestParseStopField(t *testing.T) {
	var s domain.Stop

	f, err := domain.ParseStopField(domain.FieldVenue, "Sky Lounge")
	require.NoError(t, err)
	f.Apply(&s)
	assert.Equal(t, "Sky Lounge", s.Venue)

	f, err = domain.ParseStopField(domain.FieldTime, "22:00")
	require.NoError(t, err)
	f.Apply(&s)
	assert.Equal(t, "22:00", s.Time)

	f, err = domain.ParseStopField(domain.FieldDuration, "banana")
	require.NoError(t, err)
	f.Apply(&s)
	assert.Equal(t, 0, s.Duration)

	f, err = domain.ParseStopField(domain.FieldNotes, "dress code")
	require.NoError(t, err)
	f.Apply(&s)
	assert.Equal(t, "dress code", s.Notes)
}

func TestParseStopField_unknownName(t *testing.T) {
	_, err := domain.ParseStopField("color", "red")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- clock validation ------------------------------------------------------

func TestValidClock(t *testing.T) {
	valid := []string{"", "00:00", "09:30", "23:59"}
	for _, s := range valid {
		assert.True(t, domain.ValidClock(s), "expected %q to be valid", s)
	}

	invalid := []string{"24:00", "12:60", "9:30", "09:3", "0930", "ab:cd", "12:345"}
	for _, s := range invalid {
		assert.False(t, domain.ValidClock(s), "expected %q to be invalid", s)
	}
}
