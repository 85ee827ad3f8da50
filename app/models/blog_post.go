package models

import (
	"time"
)

// Validate checks if the blog post meets all validation requirements
func (p *BlogPost) Validate() error {
	return validate.Struct(p)
}

// BeforeCreate sets up any necessary fields before creation
func (p *BlogPost) BeforeCreate() {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	if p.Status == "" {
		p.Status = StatusDraft
	}
}

// Touch bumps UpdatedAt.
func (p *BlogPost) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// IsPublished reports whether the post is published and its publish time has passed.
func (p *BlogPost) IsPublished(now time.Time) bool {
	if p.Status != StatusPublished {
		return false
	}
	return p.PublishedAt == nil || !p.PublishedAt.After(now)
}

// DisplayTitle prefers the SEO title when one is set.
func (p *BlogPost) DisplayTitle() string {
	if p.MetaTitle != "" {
		return p.MetaTitle
	}
	if p.Title != "" {
		return p.Title
	}
	return "제목 없음"
}

// Excerpt returns the best available short description of the post.
func (p *BlogPost) Excerpt() string {
	switch {
	case p.MetaDescription != "":
		return p.MetaDescription
	case p.Summary != "":
		return p.Summary
	case p.Content != "":
		return p.Content
	}
	return "요약 없음"
}

// ParsePublishedAt interprets a client supplied publish date. Empty, "null",
// "undefined" and unparseable values yield nil.
func ParsePublishedAt(raw string) *time.Time {
	switch raw {
	case "", "null", "undefined":
		return nil
	}
	layouts := []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02"}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
