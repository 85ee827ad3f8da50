package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"fairway/app/messaging"
	"fairway/app/models"
	"fairway/app/repositories"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// CustomerPage is one page of the customer list.
type CustomerPage struct {
	Customers []*models.Customer `json:"data"`
	Count     int                `json:"count"`
	Page      int                `json:"page"`
	PageSize  int                `json:"pageSize"`
}

// CustomerMessage is a message log entry joined with the draft it came from.
type CustomerMessage struct {
	ID          int        `json:"id"`
	ContentID   string     `json:"contentId"`
	Phone       string     `json:"phone"`
	MessageType string     `json:"messageType"`
	Status      string     `json:"status"`
	Channel     string     `json:"channel"`
	SentAt      time.Time  `json:"sentAt"`
	Text        string     `json:"text,omitempty"`
	Note        string     `json:"note,omitempty"`
	GroupID     string     `json:"groupId,omitempty"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
}

// CustomerHistory is a page of a customer's messages.
type CustomerHistory struct {
	Phone    string            `json:"phone"`
	Messages []CustomerMessage `json:"messages"`
	Count    int               `json:"count"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// CustomerService handles customer records and their message history
type CustomerService struct {
	customers repositories.CustomerRepository
	logs      repositories.MessageLogRepository
	channels  repositories.ChannelRepository
	log       *zap.Logger
	now       Clock
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(repos repositories.Set, log *zap.Logger) *CustomerService {
	return &CustomerService{
		customers: repos.Customers,
		logs:      repos.Logs,
		channels:  repos.Channels,
		log:       log,
		now:       utcNow,
	}
}

// List returns a page of customers. page starts at 1.
func (s *CustomerService) List(q repositories.CustomerQuery, page int) (*CustomerPage, error) {
	if page < 1 {
		page = 1
	}
	q.Now = s.now()
	q = q.Normalize()
	q.Offset = (page - 1) * q.Limit

	list, total, err := s.customers.List(q)
	if err != nil {
		return nil, err
	}
	return &CustomerPage{Customers: list, Count: total, Page: page, PageSize: q.Limit}, nil
}

// Create adds a customer. The phone is stored digits only, a new customer is
// always opted in and the last contact defaults to now.
func (s *CustomerService) Create(c *models.Customer) error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Phone) == "" {
		return invalid("이름과 전화번호는 필수입니다.")
	}
	c.ID = 0
	c.OptOut = false
	c.Phone = messaging.NormalizePhone(c.Phone)
	if c.LastContactDate == nil {
		now := s.now()
		c.LastContactDate = &now
	}
	c.BeforeCreate()
	if err := c.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid customer: %v", err))
	}
	return s.customers.Create(c)
}

// CustomerPatch holds the fields a partial update may change.
type CustomerPatch struct {
	Name             *string    `json:"name"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
	VIPLevel         *string    `json:"vip_level"`
	OptOut           *bool      `json:"opt_out"`
	LastContactDate  *time.Time `json:"last_contact_date"`
	FirstInquiryDate *time.Time `json:"first_inquiry_date"`
	LastPurchaseDate *time.Time `json:"last_purchase_date"`
}

// Update applies patch to a customer
func (s *CustomerService) Update(id int, patch CustomerPatch) (*models.Customer, error) {
	c, err := s.customers.GetByID(id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Phone != nil {
		c.Phone = messaging.NormalizePhone(*patch.Phone)
	}
	if patch.Address != nil {
		c.Address = *patch.Address
	}
	if patch.VIPLevel != nil {
		c.VIPLevel = *patch.VIPLevel
	}
	if patch.OptOut != nil {
		c.OptOut = *patch.OptOut
	}
	if patch.LastContactDate != nil {
		c.LastContactDate = patch.LastContactDate
	}
	if patch.FirstInquiryDate != nil {
		c.FirstInquiryDate = patch.FirstInquiryDate
	}
	if patch.LastPurchaseDate != nil {
		c.LastPurchaseDate = patch.LastPurchaseDate
		if c.FirstPurchaseDate == nil {
			c.FirstPurchaseDate = patch.LastPurchaseDate
		}
	}
	c.UpdatedAt = s.now()
	if err := c.Validate(); err != nil {
		return nil, invalid(fmt.Sprintf("invalid customer: %v", err))
	}
	if err := s.customers.Update(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a customer
func (s *CustomerService) Delete(id int) error {
	return s.customers.Delete(id)
}

// Messages returns the messages sent to phone, newest first. limit defaults
// to 20 and is capped at 100.
func (s *CustomerService) Messages(phone string, limit, offset int) (*CustomerHistory, error) {
	digits := messaging.NormalizePhone(phone)
	if digits == "" {
		return nil, invalid("Invalid phone number format.")
	}
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}

	phones := []string{digits}
	if formatted := messaging.FormatPhone(digits); formatted != digits {
		phones = append(phones, formatted)
	}
	logs, total, err := s.logs.ListByPhones(phones, limit, offset)
	if err != nil {
		return nil, err
	}

	posts := map[string]*models.ChannelPost{}
	out := make([]CustomerMessage, 0, len(logs))
	for _, l := range logs {
		m := CustomerMessage{
			ID:          l.ID,
			ContentID:   l.ContentID,
			Phone:       l.CustomerPhone,
			MessageType: l.MessageType,
			Status:      l.Status,
			Channel:     l.Channel,
			SentAt:      l.SentAt,
		}
		if post := s.lookupPost(posts, l.ContentID); post != nil {
			m.Text = post.Content
			m.Note = post.Note
			m.GroupID = post.GroupID
			m.ScheduledAt = post.ScheduledAt
		}
		out = append(out, m)
	}
	return &CustomerHistory{Phone: digits, Messages: out, Count: total, Limit: limit, Offset: offset}, nil
}

func (s *CustomerService) lookupPost(cache map[string]*models.ChannelPost, contentID string) *models.ChannelPost {
	if p, ok := cache[contentID]; ok {
		return p
	}
	id, err := strconv.Atoi(contentID)
	if err != nil {
		cache[contentID] = nil
		return nil
	}
	p, err := s.channels.GetByID(id)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		s.log.Warn("failed to load message details", zap.String("content_id", contentID), zap.Error(err))
	}
	cache[contentID] = p
	return p
}
