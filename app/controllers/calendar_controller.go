package controllers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/services"
)

const dateLayout = "2006-01-02"

// CalendarController handles HTTP requests for the content calendar
type CalendarController struct {
	calendar *services.CalendarService
	log      *zap.Logger
}

// NewCalendarController creates a new CalendarController
func NewCalendarController(calendar *services.CalendarService, log *zap.Logger) *CalendarController {
	return &CalendarController{calendar: calendar, log: log}
}

// Index lists entries of ?year=&month= or of the ?from=&to= date range.
func (cc *CalendarController) Index(w http.ResponseWriter, r *http.Request) {
	q := repositories.CalendarQuery{
		ContentType: r.URL.Query().Get("contentType"),
		Status:      r.URL.Query().Get("status"),
	}

	year, month := queryInt(r, "year", 0), queryInt(r, "month", 0)
	switch {
	case year > 0 && month >= 1 && month <= 12:
		q.From, q.To = services.MonthRange(year, month)
	case year > 0 || month > 0:
		sendError(w, "Invalid month", http.StatusBadRequest)
		return
	default:
		var err error
		if q.From, err = queryDate(r, "from"); err != nil {
			sendError(w, "Invalid from date", http.StatusBadRequest)
			return
		}
		if q.To, err = queryDate(r, "to"); err != nil {
			sendError(w, "Invalid to date", http.StatusBadRequest)
			return
		}
	}

	entries, total, err := cc.calendar.List(q)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch calendar")
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"contents": entries,
		"total":    total,
	})
}

func queryDate(r *http.Request, name string) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, nil
	}
	return time.Parse(dateLayout, v)
}

// Show handles displaying a single entry
func (cc *CalendarController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	e, err := cc.calendar.Get(id)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch calendar entry")
		return
	}
	sendJSON(w, http.StatusOK, e)
}

// Create handles creating an entry
func (cc *CalendarController) Create(w http.ResponseWriter, r *http.Request) {
	var e models.CalendarEntry
	if !decode(w, r, &e) {
		return
	}
	if err := cc.calendar.Create(&e); err != nil {
		sendServiceError(w, cc.log, err, "Failed to create calendar entry")
		return
	}
	sendJSON(w, http.StatusCreated, e)
}

// Update handles replacing an entry
func (cc *CalendarController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var e models.CalendarEntry
	if !decode(w, r, &e) {
		return
	}
	e.ID = id
	if err := cc.calendar.Update(&e); err != nil {
		sendServiceError(w, cc.log, err, "Failed to update calendar entry")
		return
	}
	sendJSON(w, http.StatusOK, e)
}

// Delete handles deleting an entry
func (cc *CalendarController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := cc.calendar.Delete(id); err != nil {
		sendServiceError(w, cc.log, err, "Failed to delete calendar entry")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
