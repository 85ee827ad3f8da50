package models

import "time"

// Validate checks if the short link meets all validation requirements
func (s *ShortLink) Validate() error {
	return validate.Struct(s)
}

// BeforeCreate sets up any necessary fields before creation
func (s *ShortLink) BeforeCreate() {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
}
