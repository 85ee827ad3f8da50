package repositories

import (
	"time"

	"fairway/app/models"
)

// BlogRepository defines the interface for blog post data access
type BlogRepository interface {
	Create(post *models.BlogPost) error
	GetByID(id int) (*models.BlogPost, error)
	GetBySlug(slug string) (*models.BlogPost, error)
	List(q BlogQuery) ([]*models.BlogPost, int, error)
	Update(post *models.BlogPost) error
	Delete(id int) error
}

// ChannelRepository stores SMS and Kakao drafts
type ChannelRepository interface {
	Create(post *models.ChannelPost) error
	GetByID(id int) (*models.ChannelPost, error)
	List(q ChannelQuery) ([]*models.ChannelPost, int, error)
	// ListDue returns SMS drafts scheduled at or before now, oldest first
	ListDue(now time.Time) ([]*models.ChannelPost, error)
	Update(post *models.ChannelPost) error
	Delete(id int) error
}

// CustomerRepository defines the interface for customer data access
type CustomerRepository interface {
	Create(c *models.Customer) error
	GetByID(id int) (*models.Customer, error)
	GetByPhone(phone string) (*models.Customer, error)
	List(q CustomerQuery) ([]*models.Customer, int, error)
	Update(c *models.Customer) error
	Delete(id int) error
	// OptedOut reports which of phones belong to customers who refused messages
	OptedOut(phones []string) (map[string]bool, error)
}

// MessageLogRepository records per-recipient deliveries
type MessageLogRepository interface {
	// Upsert inserts or replaces the log keyed by (content id, phone)
	Upsert(log *models.MessageLog) error
	// SentPhones reports which of phones already have a log for contentID
	SentPhones(contentID string, phones []string) (map[string]bool, error)
	// ListByPhones returns logs for any of phones, newest first
	ListByPhones(phones []string, limit, offset int) ([]*models.MessageLog, int, error)
}

// CalendarRepository stores marketing calendar entries
type CalendarRepository interface {
	Create(e *models.CalendarEntry) error
	GetByID(id int) (*models.CalendarEntry, error)
	// FindRoot returns the root entry of a blog post's campaign
	FindRoot(blogPostID int) (*models.CalendarEntry, error)
	// ListDerived returns social entries derived from parentID or tied to blogPostID
	ListDerived(parentID, blogPostID int) ([]*models.CalendarEntry, error)
	List(q CalendarQuery) ([]*models.CalendarEntry, int, error)
	Update(e *models.CalendarEntry) error
	Delete(id int) error
}

// KakaoRepository maps Kakao friends and friend groups
type KakaoRepository interface {
	UpsertFriend(f *models.KakaoFriend) error
	// UUIDsByPhones maps normalized phone numbers to friend uuids
	UUIDsByPhones(phones []string) (map[string]string, error)
	// PhonesByUUIDs maps friend uuids to phone numbers
	PhonesByUUIDs(uuids []string) (map[string]string, error)
	CreateGroup(g *models.KakaoFriendGroup) error
	GetGroup(id int) (*models.KakaoFriendGroup, error)
}

// ShortLinkRepository stores short codes
type ShortLinkRepository interface {
	Create(l *models.ShortLink) error
	Get(code string) (*models.ShortLink, error)
	FindByTarget(target string) (*models.ShortLink, error)
	IncrementHits(code string) (*models.ShortLink, error)
}
