package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"fairway/app/messaging"
	"fairway/app/models"
	"fairway/app/providers/solapi"
	"fairway/app/repositories"
)

// StatusProvider reports delivery counts of a message group.
type StatusProvider interface {
	Configured() bool
	GroupStatus(ctx context.Context, groupID string) (solapi.GroupCount, error)
}

// SyncResult is the outcome of reconciling a post with provider counts.
type SyncResult struct {
	MessageID int    `json:"messageId"`
	GroupID   string `json:"groupId"`
	Action    string `json:"action,omitempty"`
	Message   string `json:"message"`
	Status    string `json:"status"`
	Total     int    `json:"totalCount"`
	Success   int    `json:"successCount"`
	Fail      int    `json:"failCount"`
	Sending   int    `json:"sendingCount"`
}

// ChannelService manages SMS and Kakao drafts
type ChannelService struct {
	channels repositories.ChannelRepository
	blogs    repositories.BlogRepository
	links    *ShortLinkService
	dispatch *DispatchService
	status   StatusProvider
	siteURL  string
	log      *zap.Logger
	now      Clock
}

// NewChannelService creates a new ChannelService
func NewChannelService(repos repositories.Set, links *ShortLinkService, dispatch *DispatchService, status StatusProvider, siteURL string, log *zap.Logger) *ChannelService {
	return &ChannelService{
		channels: repos.Channels,
		blogs:    repos.Blog,
		links:    links,
		dispatch: dispatch,
		status:   status,
		siteURL:  strings.TrimRight(siteURL, "/"),
		log:      log,
		now:      utcNow,
	}
}

func (s *ChannelService) prepare(post *models.ChannelPost) error {
	numbers := make(models.StringList, 0, len(post.RecipientNumbers))
	for _, n := range post.RecipientNumbers {
		if n = strings.TrimSpace(n); n != "" {
			numbers = append(numbers, n)
		}
	}
	post.RecipientNumbers = numbers
	if err := post.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid message: %v", err))
	}
	return nil
}

// Create stores a new draft on channel
func (s *ChannelService) Create(channel string, post *models.ChannelPost) error {
	post.Channel = channel
	post.ID = 0
	post.Status = ""
	post.SentCount, post.SuccessCount, post.FailCount = 0, 0, 0
	post.BeforeCreate()
	if err := s.prepare(post); err != nil {
		return err
	}
	return s.channels.Create(post)
}

// Get returns a draft, checking it belongs to channel
func (s *ChannelService) Get(channel string, id int) (*models.ChannelPost, error) {
	post, err := s.channels.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post.Channel != channel {
		return nil, repositories.ErrNotFound
	}
	return post, nil
}

// List returns a page of posts on channel, newest first
func (s *ChannelService) List(q repositories.ChannelQuery) ([]*models.ChannelPost, int, error) {
	return s.channels.List(q)
}

// Update replaces the editable fields of a draft. Delivery outcome fields
// are kept from the stored record.
func (s *ChannelService) Update(channel string, post *models.ChannelPost) error {
	existing, err := s.Get(channel, post.ID)
	if err != nil {
		return err
	}
	post.Channel = existing.Channel
	post.CreatedAt = existing.CreatedAt
	post.SentAt = existing.SentAt
	post.SentCount = existing.SentCount
	post.SuccessCount = existing.SuccessCount
	post.FailCount = existing.FailCount
	post.SendErrors = existing.SendErrors
	if post.Status == "" {
		post.Status = existing.Status
	}
	if post.GroupID == "" {
		post.GroupID = existing.GroupID
	}
	if post.MessageType == "" {
		post.MessageType = existing.MessageType
	}
	post.UpdatedAt = s.now()
	if err := s.prepare(post); err != nil {
		return err
	}
	return s.channels.Update(post)
}

// Delete removes a draft
func (s *ChannelService) Delete(channel string, id int) error {
	if _, err := s.Get(channel, id); err != nil {
		return err
	}
	return s.channels.Delete(id)
}

// FromBlog drafts an SMS that promotes a blog post: its title and excerpt,
// compressed to fit the message type, followed by a short link to the post.
func (s *ChannelService) FromBlog(blogID int, messageType string) (*models.ChannelPost, error) {
	post, err := s.blogs.GetByID(blogID)
	if err != nil {
		return nil, err
	}
	if messageType == "" {
		messageType = models.TypeSMS300
	}

	target := s.siteURL + "/blog/" + post.Slug
	if post.Slug == "" {
		target = fmt.Sprintf("%s/blog/%d", s.siteURL, post.ID)
	}
	link, err := s.links.Shorten(target)
	if err != nil {
		return nil, fmt.Errorf("failed to shorten blog link: %w", err)
	}
	short := s.links.URL(link)

	budget := messaging.Limit(messageType) - messaging.MessageLength("", short)
	body := post.DisplayTitle() + "\n" + post.Excerpt()
	compressed := messaging.Compress(body, budget, []string{post.DisplayTitle()})

	blogPostID := post.ID
	draft := &models.ChannelPost{
		Channel:     models.ChannelSMS,
		Title:       post.DisplayTitle(),
		Content:     compressed.Text,
		MessageType: messageType,
		ShortLink:   short,
		BlogPostID:  &blogPostID,
		CalendarID:  post.CalendarID,
	}
	if err := s.Create(models.ChannelSMS, draft); err != nil {
		return nil, err
	}
	s.log.Info("sms drafted from blog", zap.Int("blog_id", blogID), zap.Int("id", draft.ID),
		zap.Bool("truncated", compressed.Truncated))
	return draft, nil
}

// SendNow delivers an SMS draft immediately
func (s *ChannelService) SendNow(ctx context.Context, id int, dryRun bool) (*DispatchResult, error) {
	return s.dispatch.Send(ctx, id, dryRun)
}

// Analyze measures a draft against its message type
func (s *ChannelService) Analyze(content, shortLink, messageType string, hasImage bool) messaging.Analysis {
	return messaging.Analyze(content, shortLink, messageType, hasImage)
}

// SyncStatus pulls delivery counts for the post's groups from Solapi and
// stores the derived status. With an empty groupID every group stored on
// the post is summed.
func (s *ChannelService) SyncStatus(ctx context.Context, id int, groupID string) (*SyncResult, error) {
	if id == 0 {
		return nil, invalid("messageId와 groupId가 필요합니다.")
	}
	post, err := s.channels.GetByID(id)
	if err != nil {
		return nil, err
	}
	groups := splitGroups(groupID)
	if len(groups) == 0 {
		groups = splitGroups(post.GroupID)
	}
	if len(groups) == 0 {
		return nil, invalid("messageId와 groupId가 필요합니다.")
	}
	if !s.status.Configured() {
		return nil, notConfigured("솔라피 API 키가 설정되지 않았습니다.")
	}

	var sum solapi.GroupCount
	for _, g := range groups {
		c, err := s.status.GroupStatus(ctx, g)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch group %s: %w", g, err)
		}
		sum.Total += c.Total
		sum.Success += c.Success
		sum.Fail += c.Fail
		sum.Sending += c.Sending
	}
	joined := strings.Join(groups, ",")

	if sum.Total == 0 && sum.Success == 0 && sum.Fail == 0 && post.Status == models.StatusDraft {
		s.log.Warn("clearing unknown group id from draft", zap.Int("id", id), zap.String("group_id", joined))
		post.GroupID = ""
		post.UpdatedAt = s.now()
		if err := s.channels.Update(post); err != nil {
			return nil, err
		}
		return &SyncResult{
			MessageID: id,
			GroupID:   joined,
			Action:    "cleared_invalid_group_id",
			Message:   "초안 메시지의 잘못된 그룹 ID를 제거했습니다.",
			Status:    post.Status,
		}, nil
	}

	status := SyncedStatus(post.Status, sum)
	total, success, fail, sending := ClampCounts(sum, len(post.RecipientNumbers))

	now := s.now()
	post.Status = status
	post.SentCount = total
	post.SuccessCount = success
	post.FailCount = fail
	if post.GroupID == "" {
		post.GroupID = joined
	}
	if post.SentAt == nil && status != models.StatusDraft {
		post.SentAt = &now
	}
	post.UpdatedAt = now
	if err := s.channels.Update(post); err != nil {
		return nil, err
	}

	return &SyncResult{
		MessageID: id,
		GroupID:   joined,
		Message:   "솔라피 상태 동기화 완료",
		Status:    status,
		Total:     total,
		Success:   success,
		Fail:      fail,
		Sending:   sending,
	}, nil
}

// SyncedStatus derives a post status from provider counts. Counts that say
// nothing keep current.
func SyncedStatus(current string, c solapi.GroupCount) string {
	switch {
	case c.Sending > 0:
		return models.StatusPartial
	case c.Fail == 0 && c.Success > 0:
		return models.StatusSent
	case c.Success == 0 && c.Fail > 0:
		return models.StatusFailed
	case c.Success > 0 && c.Fail > 0:
		return models.StatusPartial
	case c.Total > 0:
		return models.StatusPartial
	}
	return current
}

// ClampCounts bounds provider counts by the group total, or by recipients
// when the provider reported no total. When the parts exceed the total they
// are scaled down and the remainder is reported as sending.
func ClampCounts(c solapi.GroupCount, recipients int) (total, success, fail, sending int) {
	total = c.Total
	if total <= 0 {
		total = recipients
	}
	success = min(c.Success, total)
	fail = min(c.Fail, total)
	sending = min(c.Sending, total)

	if parts := success + fail + sending; parts > total && total > 0 {
		ratio := float64(total) / float64(parts)
		success = int(math.Round(float64(success) * ratio))
		fail = int(math.Round(float64(fail) * ratio))
		if success+fail > total {
			fail = total - success
		}
		sending = max(0, total-success-fail)
	}
	return total, success, fail, sending
}

func splitGroups(s string) []string {
	var out []string
	for _, g := range strings.Split(s, ",") {
		if g = strings.TrimSpace(g); g != "" {
			out = append(out, g)
		}
	}
	return out
}
