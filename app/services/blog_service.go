package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/scoring"
)

const (
	maxSlugLength   = 80
	maxSlugAttempts = 100
)

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9가-힣\s\p{Zs}]`)
	slugSpaces = regexp.MustCompile(`[\s\p{Zs}]+`)
	slugDashes = regexp.MustCompile(`-+`)
)

// BlogService handles business logic for blog posts
type BlogService struct {
	blogs    repositories.BlogRepository
	calendar repositories.CalendarRepository
	log      *zap.Logger
	now      Clock
}

// NewBlogService creates a new BlogService
func NewBlogService(blogs repositories.BlogRepository, calendar repositories.CalendarRepository, log *zap.Logger) *BlogService {
	return &BlogService{blogs: blogs, calendar: calendar, log: log, now: utcNow}
}

// BaseSlug derives a slug from a title: lowercase, Hangul and ASCII
// alphanumerics only, words joined with dashes, at most 80 characters.
func BaseSlug(title string, unixMilli int64) string {
	s := strings.ToLower(title)
	s = slugStrip.ReplaceAllString(s, "")
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugDashes.ReplaceAllString(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimSuffix(s, "-")
	if r := []rune(s); len(r) > maxSlugLength {
		s = string(r[:maxSlugLength])
	}
	if s == "" {
		return fmt.Sprintf("post-%d", unixMilli)
	}
	return s
}

func blankSlug(s string) bool {
	switch strings.TrimSpace(s) {
	case "", "null", "undefined":
		return true
	}
	return false
}

// uniqueSlug returns the first free slug among base, base-1 ... base-100,
// falling back to a timestamp suffix. A slug owned by selfID counts as free.
func (s *BlogService) uniqueSlug(title string, selfID int) (string, error) {
	base := BaseSlug(title, s.now().UnixMilli())
	slug := base
	for i := 1; i <= maxSlugAttempts+1; i++ {
		existing, err := s.blogs.GetBySlug(slug)
		if errors.Is(err, repositories.ErrNotFound) {
			return slug, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check slug: %w", err)
		}
		if selfID != 0 && existing.ID == selfID {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return fmt.Sprintf("%s-%d", base, s.now().UnixMilli()), nil
}

// CreatePost creates a new blog post with validation and registers it in
// the content calendar
func (s *BlogService) CreatePost(post *models.BlogPost) error {
	if strings.TrimSpace(post.Title) == "" {
		return invalid("제목은 필수입니다.")
	}
	if blankSlug(post.Slug) {
		slug, err := s.uniqueSlug(post.Title, 0)
		if err != nil {
			return err
		}
		post.Slug = slug
	}

	post.BeforeCreate()
	if err := post.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid post: %v", err))
	}
	if err := s.blogs.Create(post); err != nil {
		return err
	}

	s.registerInCalendar(post)
	return nil
}

// registerInCalendar adds the post to the content calendar. Failures are
// logged and never fail the post itself.
func (s *BlogService) registerInCalendar(post *models.BlogPost) {
	date := s.now()
	if post.PublishedAt != nil {
		date = *post.PublishedAt
	}
	id := post.ID
	entry := &models.CalendarEntry{
		Title:           post.Title,
		ContentType:     "blog",
		ChannelType:     "blog",
		ContentDate:     models.DateOnly(date),
		Status:          post.Status,
		TargetAudience:  models.Audience{Persona: "시니어 골퍼", Stage: "awareness"},
		ConversionGoals: models.StringList{"홈페이지 방문"},
		BlogPostID:      &id,
		ContentBody:     post.Content,
	}
	if entry.ContentBody == "" {
		entry.ContentBody = post.Summary
	}
	entry.BeforeCreate()
	if err := s.calendar.Create(entry); err != nil {
		s.log.Warn("calendar registration failed", zap.Int("post_id", post.ID), zap.Error(err))
		return
	}

	post.CalendarID = &entry.ID
	if err := s.blogs.Update(post); err != nil {
		s.log.Warn("failed to link calendar entry", zap.Int("post_id", post.ID), zap.Error(err))
	}
}

// GetPost retrieves a post by ID
func (s *BlogService) GetPost(id int) (*models.BlogPost, error) {
	return s.blogs.GetByID(id)
}

// ListPosts retrieves a page of posts. perPage < 1 returns every match.
func (s *BlogService) ListPosts(q repositories.BlogQuery, page, perPage int) ([]*models.BlogPost, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage > 0 {
		q.Limit = perPage
		q.Offset = (page - 1) * perPage
	}
	return s.blogs.List(q)
}

// UpdatePost replaces an existing post. A blank slug is regenerated from the
// title; creation time, view count and calendar link are preserved.
func (s *BlogService) UpdatePost(post *models.BlogPost) error {
	if post.ID == 0 {
		return invalid("게시물 ID는 필수입니다.")
	}
	existing, err := s.blogs.GetByID(post.ID)
	if err != nil {
		return err
	}

	if blankSlug(post.Slug) {
		if strings.TrimSpace(post.Title) == "" {
			return invalid("제목과 slug가 모두 없습니다.")
		}
		slug, err := s.uniqueSlug(post.Title, post.ID)
		if err != nil {
			return err
		}
		post.Slug = slug
	}

	post.CreatedAt = existing.CreatedAt
	if post.ViewCount == 0 {
		post.ViewCount = existing.ViewCount
	}
	if post.CalendarID == nil {
		post.CalendarID = existing.CalendarID
	}
	if post.Status == "" {
		post.Status = existing.Status
	}
	post.Touch()

	if err := post.Validate(); err != nil {
		return invalid(fmt.Sprintf("invalid post: %v", err))
	}
	return s.blogs.Update(post)
}

// DeletePost deletes a post and its calendar entry
func (s *BlogService) DeletePost(id int) error {
	post, err := s.blogs.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.blogs.Delete(id); err != nil {
		return err
	}
	if post.CalendarID != nil {
		if err := s.calendar.Delete(*post.CalendarID); err != nil && !errors.Is(err, repositories.ErrNotFound) {
			s.log.Warn("failed to delete calendar entry", zap.Int("calendar_id", *post.CalendarID), zap.Error(err))
		}
	}
	return nil
}

// IncrementView bumps the view counter of a post
func (s *BlogService) IncrementView(id int) (*models.BlogPost, error) {
	post, err := s.blogs.GetByID(id)
	if err != nil {
		return nil, err
	}
	post.ViewCount++
	if err := s.blogs.Update(post); err != nil {
		return nil, err
	}
	return post, nil
}

// ScoreTitle rates a title against the title rule set
func (s *BlogService) ScoreTitle(title string, keywords []string) (scoring.TitleScore, error) {
	if strings.TrimSpace(title) == "" {
		return scoring.TitleScore{}, invalid("제목을 입력해주세요.")
	}
	return scoring.ScoreTitle(title, keywords), nil
}

// CheckQuality runs the content quality checker over a stored post
func (s *BlogService) CheckQuality(ctx context.Context, id int, keywords []string) (*scoring.Report, error) {
	post, err := s.blogs.GetByID(id)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 && post.MetaKeywords != "" {
		for _, k := range strings.Split(post.MetaKeywords, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}
	return scoring.CheckQuality(ctx, scoring.Content{
		Title:           post.DisplayTitle(),
		Body:            post.Content,
		HTML:            post.Content,
		MetaDescription: post.MetaDescription,
		Keywords:        keywords,
		ContentType:     "blog",
	})
}
