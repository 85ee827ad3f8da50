package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/repositories/mock"
)

func setupBlog() (repositories.Set, *BlogService) {
	repos := mock.NewSet()
	return repos, NewBlogService(repos.Blog, repos.Calendar, zap.NewNop())
}

func TestBaseSlug(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "ascii", title: "Hello World", want: "hello-world"},
		{name: "hangul kept", title: "MASSGOO 드라이버 출시!", want: "massgoo-드라이버-출시"},
		{name: "punctuation dropped", title: "  비거리 +30m?  ", want: "비거리-30m"},
		{name: "dashes collapsed", title: "a - - b", want: "a-b"},
		{name: "no-break space", title: "드라이버\u00a0추천 가이드", want: "드라이버-추천-가이드"},
		{name: "ideographic space", title: "골프\u3000레슨", want: "골프-레슨"},
		{name: "empty falls back", title: "!!!", want: "post-1700000000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseSlug(tt.title, 1700000000000))
		})
	}

	long := BaseSlug(strings.Repeat("가", 100), 1)
	assert.Len(t, []rune(long), 80)
}

func TestBlogService(t *testing.T) {
	t.Run("CreatePost", func(t *testing.T) {
		repos, svc := setupBlog()
		post := &models.BlogPost{Title: "가을 골프 준비", Content: "본문"}
		require.NoError(t, svc.CreatePost(post))

		assert.NotZero(t, post.ID)
		assert.Equal(t, "가을-골프-준비", post.Slug)
		assert.Equal(t, models.StatusDraft, post.Status)
		require.NotNil(t, post.CalendarID)

		entry, err := repos.Calendar.GetByID(*post.CalendarID)
		require.NoError(t, err)
		assert.Equal(t, "blog", entry.ContentType)
		assert.Equal(t, post.ID, *entry.BlogPostID)
		assert.Equal(t, models.StringList{"홈페이지 방문"}, entry.ConversionGoals)

		stored, err := repos.Blog.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, post.CalendarID, stored.CalendarID)
	})

	t.Run("CreatePost requires title", func(t *testing.T) {
		_, svc := setupBlog()
		err := svc.CreatePost(&models.BlogPost{Title: "  "})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "제목은 필수입니다.", err.Error())
	})

	t.Run("CreatePost makes slugs unique", func(t *testing.T) {
		_, svc := setupBlog()
		var slugs []string
		for i := 0; i < 3; i++ {
			post := &models.BlogPost{Title: "같은 제목", Slug: "null"}
			require.NoError(t, svc.CreatePost(post))
			slugs = append(slugs, post.Slug)
		}
		assert.Equal(t, []string{"같은-제목", "같은-제목-1", "같은-제목-2"}, slugs)
	})

	t.Run("CreatePost keeps explicit slug", func(t *testing.T) {
		_, svc := setupBlog()
		post := &models.BlogPost{Title: "제목", Slug: "custom-slug"}
		require.NoError(t, svc.CreatePost(post))
		assert.Equal(t, "custom-slug", post.Slug)
	})

	t.Run("CreatePost survives calendar failure", func(t *testing.T) {
		repos, svc := setupBlog()
		repos.Calendar.(*mock.CalendarRepository).Err = errors.New("calendar down")
		post := &models.BlogPost{Title: "제목"}
		require.NoError(t, svc.CreatePost(post))
		assert.Nil(t, post.CalendarID)
	})

	t.Run("UpdatePost", func(t *testing.T) {
		repos, svc := setupBlog()
		post := &models.BlogPost{Title: "원래 제목", Status: models.StatusPublished}
		require.NoError(t, svc.CreatePost(post))
		_, err := svc.IncrementView(post.ID)
		require.NoError(t, err)

		update := &models.BlogPost{ID: post.ID, Title: "바뀐 제목", Slug: "undefined"}
		require.NoError(t, svc.UpdatePost(update))

		stored, err := repos.Blog.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, "바뀐-제목", stored.Slug)
		assert.Equal(t, 1, stored.ViewCount)
		assert.Equal(t, models.StatusPublished, stored.Status)
		assert.Equal(t, post.CalendarID, stored.CalendarID)
		assert.Equal(t, post.CreatedAt, stored.CreatedAt)
	})

	t.Run("UpdatePost keeps own slug", func(t *testing.T) {
		_, svc := setupBlog()
		post := &models.BlogPost{Title: "제목"}
		require.NoError(t, svc.CreatePost(post))

		update := &models.BlogPost{ID: post.ID, Title: "제목"}
		require.NoError(t, svc.UpdatePost(update))
		assert.Equal(t, "제목", update.Slug)
	})

	t.Run("UpdatePost errors", func(t *testing.T) {
		_, svc := setupBlog()
		assert.ErrorIs(t, svc.UpdatePost(&models.BlogPost{Title: "x"}), ErrValidation)
		assert.ErrorIs(t, svc.UpdatePost(&models.BlogPost{ID: 42, Title: "x"}), repositories.ErrNotFound)

		post := &models.BlogPost{Title: "제목"}
		require.NoError(t, svc.CreatePost(post))
		err := svc.UpdatePost(&models.BlogPost{ID: post.ID})
		assert.ErrorIs(t, err, ErrValidation)
		assert.Equal(t, "제목과 slug가 모두 없습니다.", err.Error())
	})

	t.Run("DeletePost removes calendar entry", func(t *testing.T) {
		repos, svc := setupBlog()
		post := &models.BlogPost{Title: "제목"}
		require.NoError(t, svc.CreatePost(post))

		require.NoError(t, svc.DeletePost(post.ID))
		_, err := repos.Blog.GetByID(post.ID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
		_, err = repos.Calendar.GetByID(*post.CalendarID)
		assert.ErrorIs(t, err, repositories.ErrNotFound)

		assert.ErrorIs(t, svc.DeletePost(post.ID), repositories.ErrNotFound)
	})

	t.Run("ListPosts pages", func(t *testing.T) {
		_, svc := setupBlog()
		for i := 0; i < 5; i++ {
			require.NoError(t, svc.CreatePost(&models.BlogPost{Title: fmt.Sprintf("글 %d", i)}))
		}
		posts, total, err := svc.ListPosts(repositories.BlogQuery{SortBy: "title", SortOrder: "asc"}, 2, 2)
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, posts, 2)
		assert.Equal(t, "글 2", posts[0].Title)

		all, _, err := svc.ListPosts(repositories.BlogQuery{}, 1, 0)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})

	t.Run("ScoreTitle", func(t *testing.T) {
		_, svc := setupBlog()
		_, err := svc.ScoreTitle("", nil)
		assert.ErrorIs(t, err, ErrValidation)

		score, err := svc.ScoreTitle("시니어 골퍼 비거리 30m 늘리는 3가지 방법", []string{"비거리"})
		require.NoError(t, err)
		assert.Positive(t, score.Score)
		assert.Len(t, score.Rules, 7)
	})

	t.Run("CheckQuality", func(t *testing.T) {
		_, svc := setupBlog()
		post := &models.BlogPost{
			Title:        "시니어 골퍼를 위한 드라이버 선택 가이드",
			Content:      "<h2>비거리</h2><p>MASSGOO 드라이버는 시니어 골퍼의 비거리를 돕습니다.</p>",
			MetaKeywords: "드라이버, 비거리",
		}
		require.NoError(t, svc.CreatePost(post))

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		report, err := svc.CheckQuality(ctx, post.ID, nil)
		require.NoError(t, err)
		assert.NotEmpty(t, report.Categories)

		_, err = svc.CheckQuality(ctx, 999, nil)
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}
