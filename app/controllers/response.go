package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fairway/app/repositories"
	"fairway/app/services"
)

// maxBody caps request bodies; blog drafts are the largest payloads.
const maxBody = 4 << 20

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func sendError(w http.ResponseWriter, message string, status int) {
	sendJSON(w, status, map[string]string{"error": message})
}

// statusOf maps service and repository errors to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repositories.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrTemplateRequired),
		errors.Is(err, services.ErrNoRecipients):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrNotConfigured):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// sendServiceError writes err with the status it maps to. Messages of
// services.Error are user facing; anything else is logged and hidden
// behind fallback.
func sendServiceError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	status := statusOf(err)
	var se *services.Error
	switch {
	case errors.As(err, &se):
		sendError(w, se.Message, status)
	case status == http.StatusNotFound:
		sendError(w, notFoundMessage, status)
	case status == http.StatusConflict:
		sendError(w, "이미 존재하는 항목입니다.", status)
	default:
		log.Error(fallback, zap.Error(err))
		sendError(w, fallback, status)
	}
}

const notFoundMessage = "찾을 수 없습니다."

// decode reads a JSON body into v.
func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// decodeOptional is decode for endpoints where an empty body is allowed.
func decodeOptional(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// pathID parses a numeric route variable.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	if err != nil || id <= 0 {
		sendError(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	if v, err := strconv.Atoi(r.URL.Query().Get(name)); err == nil {
		return v
	}
	return def
}

func queryBool(r *http.Request, name string) *bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "true", "1", "yes":
		b := true
		return &b
	case "false", "0", "no":
		b := false
		return &b
	}
	return nil
}

// targetID resolves the record id of a write: the {id} route variable when
// the route has one, otherwise ?id=, otherwise fallback.
func targetID(w http.ResponseWriter, r *http.Request, fallback int) (int, bool) {
	if _, ok := mux.Vars(r)["id"]; ok {
		return pathID(w, r, "id")
	}
	if id := queryInt(r, "id", 0); id > 0 {
		return id, true
	}
	if fallback > 0 {
		return fallback, true
	}
	sendError(w, "Invalid ID", http.StatusBadRequest)
	return 0, false
}
