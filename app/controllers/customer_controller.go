package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/services"
)

// CustomerController handles HTTP requests for customers
type CustomerController struct {
	customers *services.CustomerService
	log       *zap.Logger
}

// NewCustomerController creates a new CustomerController
func NewCustomerController(customers *services.CustomerService, log *zap.Logger) *CustomerController {
	return &CustomerController{customers: customers, log: log}
}

// Index handles listing customers
func (cc *CustomerController) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := cc.customers.List(repositories.CustomerQuery{
		Search:      q.Get("q"),
		VIPLevel:    q.Get("vipLevel"),
		OptOut:      queryBool(r, "optOut"),
		Purchased:   queryBool(r, "purchased"),
		ContactDays: queryInt(r, "contactDays", 0),
		SortBy:      q.Get("sortBy"),
		SortOrder:   q.Get("sortOrder"),
		Limit:       queryInt(r, "pageSize", 0),
	}, queryInt(r, "page", 1))
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch customers")
		return
	}
	sendJSON(w, http.StatusOK, page)
}

// Create handles creating a customer
func (cc *CustomerController) Create(w http.ResponseWriter, r *http.Request) {
	var c models.Customer
	if !decode(w, r, &c) {
		return
	}
	if err := cc.customers.Create(&c); err != nil {
		sendServiceError(w, cc.log, err, "Failed to create customer")
		return
	}
	sendJSON(w, http.StatusCreated, c)
}

// Update handles a partial update of a customer
func (cc *CustomerController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var patch services.CustomerPatch
	if !decode(w, r, &patch) {
		return
	}
	c, err := cc.customers.Update(id, patch)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to update customer")
		return
	}
	sendJSON(w, http.StatusOK, c)
}

// Delete handles deleting a customer
func (cc *CustomerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := cc.customers.Delete(id); err != nil {
		sendServiceError(w, cc.log, err, "Failed to delete customer")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages returns the message history of a phone number
func (cc *CustomerController) Messages(w http.ResponseWriter, r *http.Request) {
	history, err := cc.customers.Messages(mux.Vars(r)["phone"], queryInt(r, "limit", 0), queryInt(r, "offset", 0))
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch messages")
		return
	}
	sendJSON(w, http.StatusOK, history)
}
