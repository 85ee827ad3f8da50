package repositories

import (
	"sort"
	"strings"
	"time"

	"fairway/app/messaging"
	"fairway/app/models"
)

const (
	SortAsc  = "asc"
	SortDesc = "desc"

	DefaultCustomerPageSize = 100
	MaxCustomerPageSize     = 1000
)

// BlogSortFields lists the columns blog posts can be ordered by.
var BlogSortFields = []string{"published_at", "created_at", "updated_at", "title", "view_count"}

// CustomerSortFields lists the columns customers can be ordered by.
var CustomerSortFields = []string{"updated_at", "created_at", "name", "last_contact_date", "last_purchase_date"}

// BlogQuery selects blog posts. A zero Limit returns everything after Offset.
type BlogQuery struct {
	Status    string
	Category  string
	SortBy    string
	SortOrder string
	Limit     int
	Offset    int
}

// Normalize applies the default ordering (newest publication first).
func (q BlogQuery) Normalize() BlogQuery {
	if !contains(BlogSortFields, q.SortBy) {
		q.SortBy = "published_at"
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	return q
}

// Match reports whether p satisfies the filters of q.
func (q BlogQuery) Match(p *models.BlogPost) bool {
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	if q.Category != "" && p.Category != q.Category {
		return false
	}
	return true
}

// ChannelQuery selects channel drafts, newest first.
type ChannelQuery struct {
	Channel string
	Status  string
	Limit   int
	Offset  int
}

func (q ChannelQuery) Match(p *models.ChannelPost) bool {
	if q.Channel != "" && p.Channel != q.Channel {
		return false
	}
	if q.Status != "" && p.Status != q.Status {
		return false
	}
	return true
}

// CustomerQuery selects customers.
type CustomerQuery struct {
	// Search matches name or address case-insensitively, and phone when it
	// contains digits.
	Search    string
	VIPLevel  string
	OptOut    *bool
	Purchased *bool
	// ContactDays keeps customers contacted within the last N days.
	ContactDays int
	SortBy      string
	SortOrder   string
	Limit       int
	Offset      int
	Now         time.Time
}

// Normalize fills in ordering and paging defaults.
func (q CustomerQuery) Normalize() CustomerQuery {
	if !contains(CustomerSortFields, q.SortBy) {
		q.SortBy = "updated_at"
	}
	if q.SortOrder != SortAsc {
		q.SortOrder = SortDesc
	}
	if q.Limit <= 0 {
		q.Limit = DefaultCustomerPageSize
	}
	if q.Limit > MaxCustomerPageSize {
		q.Limit = MaxCustomerPageSize
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	if q.Now.IsZero() {
		q.Now = time.Now().UTC()
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

// ContactCutoff is the earliest last_contact_date ContactDays accepts.
func (q CustomerQuery) ContactCutoff() time.Time {
	return q.Now.AddDate(0, 0, -q.ContactDays)
}

func (q CustomerQuery) Match(c *models.Customer) bool {
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		hit := strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Address), needle)
		if digits := messaging.NormalizePhone(q.Search); !hit && digits != "" {
			hit = strings.Contains(c.Phone, digits)
		}
		if !hit {
			return false
		}
	}
	if q.VIPLevel != "" && c.VIPLevel != q.VIPLevel {
		return false
	}
	if q.OptOut != nil && c.OptOut != *q.OptOut {
		return false
	}
	if q.Purchased != nil && c.HasPurchased() != *q.Purchased {
		return false
	}
	if q.ContactDays > 0 && !c.ContactedSince(q.ContactCutoff()) {
		return false
	}
	return true
}

// CalendarQuery selects calendar entries in [From, To]. Zero bounds are open.
type CalendarQuery struct {
	From        time.Time
	To          time.Time
	ContentType string
	Status      string
	Limit       int
	Offset      int
}

func (q CalendarQuery) Match(e *models.CalendarEntry) bool {
	if !q.From.IsZero() && e.ContentDate.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && e.ContentDate.After(q.To) {
		return false
	}
	if q.ContentType != "" && e.ContentType != q.ContentType {
		return false
	}
	if q.Status != "" && e.Status != q.Status {
		return false
	}
	return true
}

// Filter keeps the items for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := items[:0]
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// Paginate returns the page of items starting at offset. A non-positive
// limit returns the remainder.
func Paginate[T any](items []T, limit, offset int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// SortBlogPosts orders posts by field. Ties fall back to id.
func SortBlogPosts(posts []*models.BlogPost, field, order string) {
	sort.SliceStable(posts, func(i, j int) bool {
		a, b := posts[i], posts[j]
		var c int
		switch field {
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "updated_at":
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		case "title":
			c = strings.Compare(a.Title, b.Title)
		case "view_count":
			c = a.ViewCount - b.ViewCount
		default:
			c = compareTimePtr(a.PublishedAt, b.PublishedAt)
		}
		if c == 0 {
			c = a.ID - b.ID
		}
		return ordered(c, order)
	})
}

// SortCustomers orders customers by field. Ties fall back to id.
func SortCustomers(cs []*models.Customer, field, order string) {
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i], cs[j]
		var c int
		switch field {
		case "created_at":
			c = a.CreatedAt.Compare(b.CreatedAt)
		case "name":
			c = strings.Compare(a.Name, b.Name)
		case "last_contact_date":
			c = compareTimePtr(a.LastContactDate, b.LastContactDate)
		case "last_purchase_date":
			c = compareTimePtr(a.LastPurchaseDate, b.LastPurchaseDate)
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = a.ID - b.ID
		}
		return ordered(c, order)
	})
}

// SortChannelPosts orders drafts newest first.
func SortChannelPosts(ps []*models.ChannelPost) {
	sort.SliceStable(ps, func(i, j int) bool {
		if c := ps[i].CreatedAt.Compare(ps[j].CreatedAt); c != 0 {
			return c > 0
		}
		return ps[i].ID > ps[j].ID
	})
}

// SortDue orders drafts by scheduled time, oldest first.
func SortDue(ps []*models.ChannelPost) {
	sort.SliceStable(ps, func(i, j int) bool {
		if c := compareTimePtr(ps[i].ScheduledAt, ps[j].ScheduledAt); c != 0 {
			return c < 0
		}
		return ps[i].ID < ps[j].ID
	})
}

// SortCalendar orders entries by content date then id.
func SortCalendar(es []*models.CalendarEntry) {
	sort.SliceStable(es, func(i, j int) bool {
		if c := es[i].ContentDate.Compare(es[j].ContentDate); c != 0 {
			return c < 0
		}
		return es[i].ID < es[j].ID
	})
}

// SortLogs orders message logs newest first.
func SortLogs(ls []*models.MessageLog) {
	sort.SliceStable(ls, func(i, j int) bool {
		if c := ls[i].SentAt.Compare(ls[j].SentAt); c != 0 {
			return c > 0
		}
		return ls[i].ID > ls[j].ID
	})
}

// IsDerived reports whether e is a social entry spun off parentID or blogPostID.
func IsDerived(e *models.CalendarEntry, parentID, blogPostID int) bool {
	if e.IsRoot || e.ContentType != "social" {
		return false
	}
	if e.ParentContentID != nil && *e.ParentContentID == parentID {
		return true
	}
	return e.BlogPostID != nil && *e.BlogPostID == blogPostID
}

// nil sorts before any time
func compareTimePtr(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return a.Compare(*b)
}

func ordered(c int, order string) bool {
	if order == SortAsc {
		return c < 0
	}
	return c > 0
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func phoneSet(phones []string) map[string]bool {
	set := make(map[string]bool, len(phones))
	for _, p := range phones {
		if n := messaging.NormalizePhone(p); n != "" {
			set[n] = true
		}
	}
	return set
}
