// Package mock provides map-backed repositories for service and controller tests.
// Stored records are copied on the way in and out. Setting Err makes every
// method fail with it.
package mock

import (
	"sync"
	"time"

	"fairway/app/models"
	"fairway/app/repositories"
)

// NewSet returns a repositories.Set backed entirely by mocks.
func NewSet() repositories.Set {
	return repositories.Set{
		Blog:       NewBlogRepository(),
		Channels:   NewChannelRepository(),
		Customers:  NewCustomerRepository(),
		Logs:       NewMessageLogRepository(),
		Calendar:   NewCalendarRepository(),
		Kakao:      NewKakaoRepository(),
		ShortLinks: NewShortLinkRepository(),
	}
}

type BlogRepository struct {
	posts  map[int]*models.BlogPost
	nextID int
	mutex  sync.RWMutex
	Err    error
}

func NewBlogRepository() *BlogRepository {
	return &BlogRepository{posts: make(map[int]*models.BlogPost), nextID: 1}
}

func (m *BlogRepository) slugOwner(slug string) (int, bool) {
	for id, p := range m.posts {
		if slug != "" && p.Slug == slug {
			return id, true
		}
	}
	return 0, false
}

func (m *BlogRepository) Create(post *models.BlogPost) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, taken := m.slugOwner(post.Slug); taken {
		return repositories.ErrConflict
	}
	post.ID = m.nextID
	m.nextID++
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *BlogRepository) GetByID(id int) (*models.BlogPost, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (m *BlogRepository) GetBySlug(slug string) (*models.BlogPost, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	id, ok := m.slugOwner(slug)
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *m.posts[id]
	return &cp, nil
}

func (m *BlogRepository) List(q repositories.BlogQuery) ([]*models.BlogPost, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	q = q.Normalize()
	var posts []*models.BlogPost
	for _, p := range m.posts {
		if q.Match(p) {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	repositories.SortBlogPosts(posts, q.SortBy, q.SortOrder)
	return repositories.Paginate(posts, q.Limit, q.Offset), len(posts), nil
}

func (m *BlogRepository) Update(post *models.BlogPost) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	if owner, taken := m.slugOwner(post.Slug); taken && owner != post.ID {
		return repositories.ErrConflict
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *BlogRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type ChannelRepository struct {
	posts  map[int]*models.ChannelPost
	nextID int
	mutex  sync.RWMutex
	Err    error
}

func NewChannelRepository() *ChannelRepository {
	return &ChannelRepository{posts: make(map[int]*models.ChannelPost), nextID: 1}
}

func (m *ChannelRepository) Create(post *models.ChannelPost) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	post.ID = m.nextID
	m.nextID++
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *ChannelRepository) GetByID(id int) (*models.ChannelPost, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *post
	return &cp, nil
}

func (m *ChannelRepository) List(q repositories.ChannelQuery) ([]*models.ChannelPost, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	var posts []*models.ChannelPost
	for _, p := range m.posts {
		if q.Match(p) {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	repositories.SortChannelPosts(posts)
	return repositories.Paginate(posts, q.Limit, q.Offset), len(posts), nil
}

func (m *ChannelRepository) ListDue(now time.Time) ([]*models.ChannelPost, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var posts []*models.ChannelPost
	for _, p := range m.posts {
		if p.Channel == models.ChannelSMS && p.IsDue(now) {
			cp := *p
			posts = append(posts, &cp)
		}
	}
	repositories.SortDue(posts)
	return posts, nil
}

func (m *ChannelRepository) Update(post *models.ChannelPost) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *ChannelRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.posts[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type CustomerRepository struct {
	customers map[int]*models.Customer
	nextID    int
	mutex     sync.RWMutex
	Err       error
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[int]*models.Customer), nextID: 1}
}

func (m *CustomerRepository) byPhone(phone string) *models.Customer {
	for _, c := range m.customers {
		if c.Phone == phone {
			return c
		}
	}
	return nil
}

func (m *CustomerRepository) Create(c *models.Customer) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if m.byPhone(c.Phone) != nil {
		return repositories.ErrConflict
	}
	c.ID = m.nextID
	m.nextID++
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, exists := m.customers[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *CustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c := m.byPhone(phone)
	if c == nil {
		return nil, repositories.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *CustomerRepository) List(q repositories.CustomerQuery) ([]*models.Customer, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	q = q.Normalize()
	var cs []*models.Customer
	for _, c := range m.customers {
		if q.Match(c) {
			cp := *c
			cs = append(cs, &cp)
		}
	}
	repositories.SortCustomers(cs, q.SortBy, q.SortOrder)
	return repositories.Paginate(cs, q.Limit, q.Offset), len(cs), nil
}

func (m *CustomerRepository) Update(c *models.Customer) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.customers[c.ID]; !exists {
		return repositories.ErrNotFound
	}
	if other := m.byPhone(c.Phone); other != nil && other.ID != c.ID {
		return repositories.ErrConflict
	}
	cp := *c
	m.customers[c.ID] = &cp
	return nil
}

func (m *CustomerRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.customers[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *CustomerRepository) OptedOut(phones []string) (map[string]bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	want := make(map[string]bool, len(phones))
	for _, p := range phones {
		want[p] = true
	}
	out := make(map[string]bool)
	for _, c := range m.customers {
		if c.OptOut && want[c.Phone] {
			out[c.Phone] = true
		}
	}
	return out, nil
}

type MessageLogRepository struct {
	logs   map[string]*models.MessageLog
	nextID int
	mutex  sync.RWMutex
	Err    error
}

func NewMessageLogRepository() *MessageLogRepository {
	return &MessageLogRepository{logs: make(map[string]*models.MessageLog), nextID: 1}
}

func (m *MessageLogRepository) Upsert(l *models.MessageLog) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if old, ok := m.logs[l.Key()]; ok {
		l.ID = old.ID
	} else {
		l.ID = m.nextID
		m.nextID++
	}
	cp := *l
	m.logs[l.Key()] = &cp
	return nil
}

func (m *MessageLogRepository) SentPhones(contentID string, phones []string) (map[string]bool, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]bool)
	for _, p := range phones {
		probe := models.MessageLog{ContentID: contentID, CustomerPhone: p}
		if _, ok := m.logs[probe.Key()]; ok {
			out[p] = true
		}
	}
	return out, nil
}

func (m *MessageLogRepository) ListByPhones(phones []string, limit, offset int) ([]*models.MessageLog, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	want := make(map[string]bool, len(phones))
	for _, p := range phones {
		want[p] = true
	}
	var logs []*models.MessageLog
	for _, l := range m.logs {
		if want[l.CustomerPhone] {
			cp := *l
			logs = append(logs, &cp)
		}
	}
	repositories.SortLogs(logs)
	return repositories.Paginate(logs, limit, offset), len(logs), nil
}

// All returns every stored log, newest first.
func (m *MessageLogRepository) All() []*models.MessageLog {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	var logs []*models.MessageLog
	for _, l := range m.logs {
		cp := *l
		logs = append(logs, &cp)
	}
	repositories.SortLogs(logs)
	return logs
}

type CalendarRepository struct {
	entries map[int]*models.CalendarEntry
	nextID  int
	mutex   sync.RWMutex
	Err     error
}

func NewCalendarRepository() *CalendarRepository {
	return &CalendarRepository{entries: make(map[int]*models.CalendarEntry), nextID: 1}
}

func (m *CalendarRepository) Create(e *models.CalendarEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	e.ID = m.nextID
	m.nextID++
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *CalendarRepository) GetByID(id int) (*models.CalendarEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	e, exists := m.entries[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *CalendarRepository) sorted() []*models.CalendarEntry {
	var es []*models.CalendarEntry
	for _, e := range m.entries {
		cp := *e
		es = append(es, &cp)
	}
	repositories.SortCalendar(es)
	return es
}

func (m *CalendarRepository) FindRoot(blogPostID int) (*models.CalendarEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var root *models.CalendarEntry
	for _, e := range m.sorted() {
		if e.IsRoot && e.BlogPostID != nil && *e.BlogPostID == blogPostID && (root == nil || e.ID < root.ID) {
			root = e
		}
	}
	if root == nil {
		return nil, repositories.ErrNotFound
	}
	return root, nil
}

func (m *CalendarRepository) ListDerived(parentID, blogPostID int) ([]*models.CalendarEntry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return repositories.Filter(m.sorted(), func(e *models.CalendarEntry) bool {
		return repositories.IsDerived(e, parentID, blogPostID)
	}), nil
}

func (m *CalendarRepository) List(q repositories.CalendarQuery) ([]*models.CalendarEntry, int, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, 0, m.Err
	}
	es := repositories.Filter(m.sorted(), q.Match)
	return repositories.Paginate(es, q.Limit, q.Offset), len(es), nil
}

func (m *CalendarRepository) Update(e *models.CalendarEntry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.entries[e.ID]; !exists {
		return repositories.ErrNotFound
	}
	cp := *e
	m.entries[e.ID] = &cp
	return nil
}

func (m *CalendarRepository) Delete(id int) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, exists := m.entries[id]; !exists {
		return repositories.ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

type KakaoRepository struct {
	friends map[string]*models.KakaoFriend
	groups  map[int]*models.KakaoFriendGroup
	nextID  int
	mutex   sync.RWMutex
	Err     error
}

func NewKakaoRepository() *KakaoRepository {
	return &KakaoRepository{
		friends: make(map[string]*models.KakaoFriend),
		groups:  make(map[int]*models.KakaoFriendGroup),
		nextID:  1,
	}
}

func (m *KakaoRepository) UpsertFriend(f *models.KakaoFriend) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *f
	m.friends[f.UUID] = &cp
	return nil
}

func (m *KakaoRepository) UUIDsByPhones(phones []string) (map[string]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]string)
	for _, p := range phones {
		for _, f := range m.friends {
			if f.Phone == p {
				out[p] = f.UUID
			}
		}
	}
	return out, nil
}

func (m *KakaoRepository) PhonesByUUIDs(uuids []string) (map[string]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := make(map[string]string)
	for _, id := range uuids {
		if f, ok := m.friends[id]; ok {
			out[id] = f.Phone
		}
	}
	return out, nil
}

func (m *KakaoRepository) CreateGroup(g *models.KakaoFriendGroup) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	g.ID = m.nextID
	m.nextID++
	cp := *g
	m.groups[g.ID] = &cp
	return nil
}

func (m *KakaoRepository) GetGroup(id int) (*models.KakaoFriendGroup, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	g, ok := m.groups[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

type ShortLinkRepository struct {
	links map[string]*models.ShortLink
	mutex sync.RWMutex
	Err   error
}

func NewShortLinkRepository() *ShortLinkRepository {
	return &ShortLinkRepository{links: make(map[string]*models.ShortLink)}
}

func (m *ShortLinkRepository) Create(l *models.ShortLink) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.links[l.Code]; ok {
		return repositories.ErrConflict
	}
	cp := *l
	m.links[l.Code] = &cp
	return nil
}

func (m *ShortLinkRepository) Get(code string) (*models.ShortLink, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	l, ok := m.links[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *ShortLinkRepository) FindByTarget(target string) (*models.ShortLink, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, l := range m.links {
		if l.TargetURL == target {
			cp := *l
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *ShortLinkRepository) IncrementHits(code string) (*models.ShortLink, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	l, ok := m.links[code]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	l.Hits++
	cp := *l
	return &cp, nil
}
