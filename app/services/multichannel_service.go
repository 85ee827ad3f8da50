package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"fairway/app/ai"
	"fairway/app/brand"
	"fairway/app/messaging"
	"fairway/app/metrics"
	"fairway/app/models"
	"fairway/app/repositories"
)

// Multichannel channel keys.
const (
	ChannelNaverBlog      = "naver_blog"
	ChannelNaverPowerlink = "naver_powerlink"
	ChannelNaverShopping  = "naver_shopping"
	ChannelGoogleAds      = "google_ads"
	ChannelInstagram      = "instagram"
	ChannelFacebook       = "facebook"

	contentTypeSocial = "social"
	shoppingLanding   = "https://smartstore.naver.com/masgolf"
	emptyBody         = "콘텐츠 내용이 없습니다."
)

var keywordStrip = regexp.MustCompile(`[^\p{L}\p{N}_]`)

type blogAccount struct {
	id, name, prefix string
	dayOffset        int
}

var naverAccounts = []blogAccount{
	{"account1", "마쓰구골프 공식", "", 1},
	{"account2", "마쓰구 리뷰", "[리뷰] ", 2},
	{"account3", "골프 비거리 연구소", "[연구] ", 3},
}

// ChannelAsset is one generated piece of campaign content.
type ChannelAsset struct {
	Channel        string    `json:"channel"`
	TargetAudience string    `json:"target_audience"`
	Variant        string    `json:"variant,omitempty"`
	VariantName    string    `json:"variant_name,omitempty"`
	Title          string    `json:"title,omitempty"`
	Content        string    `json:"content"`
	LandingPage    string    `json:"landing_page"`
	Goal           string    `json:"goal"`
	Keywords       []string  `json:"target_keywords,omitempty"`
	Hashtags       []string  `json:"hashtags,omitempty"`
	ScheduleAt     time.Time `json:"schedule_date"`
	Status         string    `json:"status"`
}

// MultichannelRequest selects the post and audiences to generate for.
type MultichannelRequest struct {
	BlogPostID      int      `json:"blogPostId"`
	TargetAudiences []string `json:"targetAudiences"`
	Save            bool     `json:"save"`
}

// MultichannelResult lists the generated assets and, when saved, the
// calendar entries created for them.
type MultichannelResult struct {
	Success         bool                    `json:"success"`
	Root            *models.CalendarEntry   `json:"rootContent,omitempty"`
	Content         []ChannelAsset          `json:"multichannelContent"`
	Saved           []*models.CalendarEntry `json:"savedContent,omitempty"`
	TotalChannels   int                     `json:"totalChannels"`
	TargetAudiences []string                `json:"targetAudiences"`
	Message         string                  `json:"message"`
}

// MultichannelService derives per-audience channel content from a blog post
type MultichannelService struct {
	blogs    repositories.BlogRepository
	calendar repositories.CalendarRepository
	brand    *brand.Data
	text     ai.TextGenerator
	log      *zap.Logger
	now      Clock
}

// NewMultichannelService creates a new MultichannelService. text may be nil,
// in which case Kakao copy falls back to the post's excerpt.
func NewMultichannelService(repos repositories.Set, b *brand.Data, text ai.TextGenerator, log *zap.Logger) *MultichannelService {
	return &MultichannelService{
		blogs:    repos.Blog,
		calendar: repos.Calendar,
		brand:    b,
		text:     text,
		log:      log,
		now:      utcNow,
	}
}

// Generate builds the assets for every requested audience and channel.
// With Save set they replace the post's previously derived calendar entries.
func (s *MultichannelService) Generate(ctx context.Context, req MultichannelRequest) (*MultichannelResult, error) {
	if req.BlogPostID == 0 {
		return nil, invalid("blogPostId는 필수입니다.")
	}
	audiences := req.TargetAudiences
	if len(audiences) == 0 {
		audiences = []string{brand.ExistingCustomer, brand.NewCustomer}
	}
	for _, a := range audiences {
		if _, ok := s.brand.Audience(a); !ok {
			return nil, invalid(fmt.Sprintf("알 수 없는 타겟 오디언스입니다: %s", a))
		}
	}

	post, err := s.blogs.GetByID(req.BlogPostID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, &Error{Kind: repositories.ErrNotFound, Message: "블로그 포스트를 찾을 수 없습니다."}
	}
	if err != nil {
		return nil, err
	}

	var root *models.CalendarEntry
	if req.Save {
		if root, err = s.startRoot(post); err != nil {
			return nil, err
		}
	}

	persona := ""
	if root != nil {
		persona = root.TargetAudience.Persona
	}

	now := s.now()
	var assets []ChannelAsset
	for _, key := range audiences {
		a, _ := s.brand.Audience(key)
		if len(a.Channels) == 0 {
			continue
		}
		tracking := s.brand.TrackingURL(a.Channels[0], key, fmt.Sprint(post.ID), post.DisplayTitle())
		for _, ch := range a.Channels {
			assets = append(assets, s.channelAssets(ctx, post, key, a, ch, tracking, persona, now)...)
		}
	}

	res := &MultichannelResult{
		Success:         true,
		Root:            root,
		Content:         assets,
		TotalChannels:   len(assets),
		TargetAudiences: audiences,
		Message:         fmt.Sprintf("총 %d개의 멀티채널 콘텐츠가 생성되었습니다.", len(assets)),
	}
	if !req.Save {
		return res, nil
	}

	saved, err := s.save(root, post.ID, assets, now)
	if err != nil {
		return nil, err
	}
	res.Saved = saved
	return res, nil
}

// startRoot finds or creates the root calendar entry of the post's campaign
// and marks it as generating.
func (s *MultichannelService) startRoot(post *models.BlogPost) (*models.CalendarEntry, error) {
	root, err := s.calendar.FindRoot(post.ID)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}
	if root == nil && post.CalendarID != nil {
		if e, err := s.calendar.GetByID(*post.CalendarID); err == nil {
			root = e
			root.IsRoot = true
		}
	}

	if root != nil {
		root.MultichannelStatus = models.MultichannelGenerating
		root.UpdatedAt = s.now()
		if err := s.calendar.Update(root); err != nil {
			return nil, err
		}
		return root, nil
	}

	id := post.ID
	status := post.Status
	if status == "" {
		status = models.StatusPublished
	}
	root = &models.CalendarEntry{
		Title:              post.DisplayTitle(),
		ContentType:        "blog",
		ChannelType:        "blog",
		TargetAudienceType: brand.NewCustomer,
		ContentBody:        post.Content,
		Status:             status,
		ContentDate:        models.DateOnly(s.now()),
		IsRoot:             true,
		MultichannelStatus: models.MultichannelGenerating,
		BlogPostID:         &id,
	}
	root.BeforeCreate()
	if err := s.calendar.Create(root); err != nil {
		return nil, fmt.Errorf("failed to create root content: %w", err)
	}
	return root, nil
}

func (s *MultichannelService) save(root *models.CalendarEntry, blogPostID int, assets []ChannelAsset, now time.Time) ([]*models.CalendarEntry, error) {
	old, err := s.calendar.ListDerived(root.ID, blogPostID)
	if err != nil {
		return nil, err
	}
	for _, e := range old {
		if err := s.calendar.Delete(e.ID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to delete derived entry %d: %w", e.ID, err)
		}
	}
	s.log.Info("replacing derived content", zap.Int("root_id", root.ID), zap.Int("removed", len(old)), zap.Int("added", len(assets)))

	saved := make([]*models.CalendarEntry, 0, len(assets))
	for i, a := range assets {
		parent, blogID := root.ID, blogPostID
		goal := a.Goal
		if goal == "" {
			goal = "engagement"
		}
		body := a.Content
		if strings.TrimSpace(body) == "" {
			body = emptyBody
		}
		e := &models.CalendarEntry{
			Title:              derivedTitle(a),
			ContentType:        contentTypeSocial,
			ChannelType:        a.Channel,
			TargetAudienceType: a.TargetAudience,
			ContentBody:        body,
			Status:             models.StatusDraft,
			ContentDate:        models.DateOnly(now.AddDate(0, 0, i)),
			MultichannelStatus: models.MultichannelCompleted,
			LandingPageURL:     a.LandingPage,
			ConversionGoals:    models.StringList{goal},
			ParentContentID:    &parent,
			BlogPostID:         &blogID,
		}
		e.BeforeCreate()
		if err := s.calendar.Create(e); err != nil {
			return nil, fmt.Errorf("failed to save %s content: %w", a.Channel, err)
		}
		saved = append(saved, e)
	}

	root.MultichannelStatus = models.MultichannelCompleted
	root.DerivedContentCount = len(assets)
	root.UpdatedAt = s.now()
	if err := s.calendar.Update(root); err != nil {
		return nil, err
	}
	return saved, nil
}

func derivedTitle(a ChannelAsset) string {
	prefix := map[string]string{
		ChannelNaverBlog:      "[블로그]",
		models.ChannelKakao:   "[카카오]",
		models.ChannelSMS:     "[SMS]",
		ChannelNaverPowerlink: "[파워링크]",
		ChannelNaverShopping:  "[쇼핑]",
	}[a.Channel]
	if prefix == "" {
		prefix = "[" + a.Channel + "]"
	}
	base := a.Title
	if base == "" {
		base = a.Content
	}
	title := prefix + " " + base
	if messaging.RuneLen(title) > 200 {
		title = string([]rune(title)[:197]) + "..."
	}
	return title
}

func (s *MultichannelService) channelAssets(ctx context.Context, post *models.BlogPost, key string, a brand.Audience, channel, tracking, persona string, now time.Time) []ChannelAsset {
	title := post.DisplayTitle()
	excerpt := post.Excerpt()
	base := ChannelAsset{
		Channel:        channel,
		TargetAudience: key,
		LandingPage:    tracking,
		Goal:           a.CTA,
		Status:         models.StatusDraft,
	}
	at := func(d time.Duration) time.Time { return now.Add(d) }

	switch channel {
	case models.ChannelKakao:
		asset := base
		asset.Title = title
		asset.Content = s.kakaoCopy(ctx, title, excerpt, key) + fmt.Sprintf("\n\n%s 👉 %s", a.CTA, tracking)
		asset.ScheduleAt = at(time.Hour)
		return []ChannelAsset{asset}

	case models.ChannelSMS:
		asset := base
		short := title
		if messaging.RuneLen(short) > 50 {
			short = string([]rune(short)[:47]) + "..."
		}
		asset.Content = fmt.Sprintf("%s\n%s %s", short, a.CTA, tracking)
		asset.ScheduleAt = at(2 * time.Hour)
		return []ChannelAsset{asset}

	case ChannelNaverBlog:
		out := make([]ChannelAsset, 0, len(naverAccounts))
		for _, acc := range naverAccounts {
			asset := base
			asset.Variant = acc.id
			asset.VariantName = acc.name
			asset.Title = acc.prefix + title
			asset.Content = post.Content
			asset.ScheduleAt = now.AddDate(0, 0, acc.dayOffset)
			out = append(out, asset)
		}
		return out

	case ChannelNaverPowerlink, ChannelNaverShopping:
		ad := base
		ad.Channel = ChannelNaverPowerlink
		ad.Title = runePrefix(title, 30)
		ad.Content = runePrefix(excerpt, 45)
		ad.Keywords = ExtractKeywords(title)
		ad.ScheduleAt = at(3 * time.Hour)
		out := []ChannelAsset{ad}
		if key == brand.NewCustomer {
			shop := ad
			shop.Channel = ChannelNaverShopping
			shop.Title = runePrefix(title, 50)
			shop.Content = runePrefix(excerpt, 100)
			shop.LandingPage = shoppingLanding
			shop.Goal = "direct_purchase"
			out = append(out, shop)
		}
		return out

	case ChannelGoogleAds:
		out := make([]ChannelAsset, 0, 2)
		for _, variant := range []string{"square", "landscape"} {
			asset := base
			asset.Variant = variant
			asset.Title = runePrefix(title, 30) + " | " + a.CTA
			asset.Content = runePrefix(excerpt, 90)
			asset.Keywords = ExtractKeywords(title)
			asset.ScheduleAt = at(4 * time.Hour)
			out = append(out, asset)
		}
		return out

	case ChannelInstagram:
		feed := base
		feed.Variant = "feed"
		feed.Content = fmt.Sprintf("%s\n\n%s\n\n%s 👉 %s", title, excerpt, a.CTA, tracking)
		feed.Hashtags = s.brand.HashtagsFor(key, persona)
		feed.ScheduleAt = at(6 * time.Hour)
		story := base
		story.Variant = "story"
		story.Content = fmt.Sprintf("%s 👉 %s", a.CTA, tracking)
		story.ScheduleAt = at(6 * time.Hour)
		return []ChannelAsset{feed, story}

	case ChannelFacebook:
		asset := base
		asset.Content = fmt.Sprintf("%s\n\n%s\n\n%s 👉 %s", title, excerpt, a.CTA, tracking)
		asset.Hashtags = s.brand.HashtagsFor(key, persona)
		asset.ScheduleAt = at(8 * time.Hour)
		return []ChannelAsset{asset}
	}

	s.log.Debug("no generator for channel", zap.String("channel", channel))
	return nil
}

// kakaoCopy asks the text generator for audience specific copy and falls
// back to the excerpt.
func (s *MultichannelService) kakaoCopy(ctx context.Context, title, excerpt, audience string) string {
	if s.text == nil {
		return excerpt
	}
	out, err := s.text.Generate(ctx, s.brand.KakaoPrompt(title, excerpt, audience))
	metrics.RecordAI("kakao_copy", err)
	if err != nil || strings.TrimSpace(out) == "" {
		s.log.Warn("kakao copy generation failed, using excerpt", zap.String("audience", audience), zap.Error(err))
		return excerpt
	}
	return strings.TrimSpace(out)
}

// ExtractKeywords takes up to five words of a title, stripped of
// punctuation, keeping those longer than one character.
func ExtractKeywords(title string) []string {
	words := strings.Split(title, " ")
	if len(words) > 5 {
		words = words[:5]
	}
	out := []string{}
	for _, w := range words {
		w = keywordStrip.ReplaceAllString(w, "")
		if messaging.RuneLen(w) > 1 {
			out = append(out, w)
		}
	}
	return out
}

func runePrefix(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
