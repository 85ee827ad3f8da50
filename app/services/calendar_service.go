package services

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
)

// CalendarService manages the content calendar
type CalendarService struct {
	calendar repositories.CalendarRepository
	log      *zap.Logger
	now      Clock
}

// NewCalendarService creates a new CalendarService
func NewCalendarService(calendar repositories.CalendarRepository, log *zap.Logger) *CalendarService {
	return &CalendarService{calendar: calendar, log: log, now: utcNow}
}

// MonthRange returns the first and last day of a month.
func MonthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, -1)
}

// Create adds an entry
func (s *CalendarService) Create(e *models.CalendarEntry) error {
	e.ID = 0
	e.BeforeCreate()
	e.ContentDate = models.DateOnly(e.ContentDate)
	if err := e.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid calendar entry: %v", err))
	}
	return s.calendar.Create(e)
}

// Get returns an entry
func (s *CalendarService) Get(id int) (*models.CalendarEntry, error) {
	return s.calendar.GetByID(id)
}

// List returns entries in date order
func (s *CalendarService) List(q repositories.CalendarQuery) ([]*models.CalendarEntry, int, error) {
	if !q.From.IsZero() && !q.To.IsZero() && q.To.Before(q.From) {
		return nil, 0, invalid("종료일은 시작일 이후여야 합니다.")
	}
	return s.calendar.List(q)
}

// Update replaces an entry, keeping its creation time and campaign links
func (s *CalendarService) Update(e *models.CalendarEntry) error {
	existing, err := s.calendar.GetByID(e.ID)
	if err != nil {
		return err
	}
	e.CreatedAt = existing.CreatedAt
	if e.BlogPostID == nil {
		e.BlogPostID = existing.BlogPostID
	}
	if e.ParentContentID == nil {
		e.ParentContentID = existing.ParentContentID
	}
	e.IsRoot = existing.IsRoot
	if e.ContentDate.IsZero() {
		e.ContentDate = existing.ContentDate
	}
	e.ContentDate = models.DateOnly(e.ContentDate)
	if e.Status == "" {
		e.Status = existing.Status
	}
	e.UpdatedAt = s.now()
	if err := e.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid calendar entry: %v", err))
	}
	return s.calendar.Update(e)
}

// Delete removes an entry
func (s *CalendarService) Delete(id int) error {
	return s.calendar.Delete(id)
}
