package models

import (
	"strings"
	"time"
)

// Validate checks if the customer meets all validation requirements
func (c *Customer) Validate() error {
	return validate.Struct(c)
}

// BeforeCreate sets up any necessary fields before creation
func (c *Customer) BeforeCreate() {
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.Name = strings.TrimSpace(c.Name)
}

// ContactedSince reports whether the last contact or the first inquiry is
// at or after t.
func (c *Customer) ContactedSince(t time.Time) bool {
	for _, d := range []*time.Time{c.LastContactDate, c.FirstInquiryDate} {
		if d != nil && !d.Before(t) {
			return true
		}
	}
	return false
}

// HasPurchased reports whether the customer has any purchase on record.
func (c *Customer) HasPurchased() bool {
	return c.FirstPurchaseDate != nil || c.LastPurchaseDate != nil
}
