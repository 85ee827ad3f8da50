package models

import (
	"time"
)

// Validate checks if the message log meets all validation requirements
func (l *MessageLog) Validate() error {
	return validate.Struct(l)
}

// BeforeCreate sets up any necessary fields before creation
func (l *MessageLog) BeforeCreate() {
	if l.SentAt.IsZero() {
		l.SentAt = time.Now().UTC()
	}
}

// Key identifies the log by its unique (content, phone) pair.
func (l *MessageLog) Key() string {
	return l.ContentID + "|" + l.CustomerPhone
}
