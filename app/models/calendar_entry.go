package models

import (
	"time"
)

// Multichannel generation states of a root calendar entry.
const (
	MultichannelGenerating = "generating"
	MultichannelCompleted  = "completed"
)

// Validate checks if the calendar entry meets all validation requirements
func (e *CalendarEntry) Validate() error {
	return validate.Struct(e)
}

// BeforeCreate sets up any necessary fields before creation
func (e *CalendarEntry) BeforeCreate() {
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now
	if e.ContentDate.IsZero() {
		e.ContentDate = DateOnly(now)
	}
	if e.Status == "" {
		e.Status = StatusDraft
	}
}

// DateOnly truncates t to midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
