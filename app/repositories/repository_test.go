package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fairway/app/models"
)

func newTestSet(t *testing.T) Set {
	t.Helper()
	store, err := NewInMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store.Repositories()
}

func timeAt(day int) *time.Time {
	t := time.Date(2024, 3, day, 9, 0, 0, 0, time.UTC)
	return &t
}

func intPtr(i int) *int { return &i }

func TestStoreOnDisk(t *testing.T) {
	store, err := NewStore("")
	require.NoError(t, err)
	path := store.dbPath
	assert.True(t, store.isTestDB)

	repos := store.Repositories()
	require.NoError(t, repos.Blog.Create(&models.BlogPost{Title: "a"}))
	require.NoError(t, store.Clear())
	_, err = repos.Blog.GetByID(1)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Close())
	assert.NoDirExists(t, path)
}

func TestBlogRepository(t *testing.T) {
	repo := newTestSet(t).Blog

	first := &models.BlogPost{Title: "드라이버 비거리", Slug: "driver", Status: models.StatusPublished, PublishedAt: timeAt(1), ViewCount: 5}
	second := &models.BlogPost{Title: "아이언 리뷰", Slug: "iron", Status: models.StatusDraft, PublishedAt: timeAt(3), ViewCount: 1}
	third := &models.BlogPost{Title: "퍼터", Status: models.StatusPublished}
	for _, p := range []*models.BlogPost{first, second, third} {
		require.NoError(t, repo.Create(p))
	}
	assert.Equal(t, []int{1, 2, 3}, []int{first.ID, second.ID, third.ID})

	t.Run("duplicate slug", func(t *testing.T) {
		err := repo.Create(&models.BlogPost{Title: "x", Slug: "driver"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("get by slug", func(t *testing.T) {
		got, err := repo.GetBySlug("iron")
		require.NoError(t, err)
		assert.Equal(t, second.ID, got.ID)

		_, err = repo.GetBySlug("none")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("list defaults to newest publication", func(t *testing.T) {
		posts, total, err := repo.List(BlogQuery{})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []int{2, 1, 3}, ids(posts))
	})

	tests := []struct {
		name  string
		q     BlogQuery
		want  []int
		total int
	}{
		{"status filter", BlogQuery{Status: models.StatusPublished}, []int{1, 3}, 2},
		{"view count asc", BlogQuery{SortBy: "view_count", SortOrder: "asc"}, []int{3, 2, 1}, 3},
		{"unknown sort falls back", BlogQuery{SortBy: "id; drop", Limit: 1}, []int{2}, 3},
		{"offset", BlogQuery{Limit: 2, Offset: 2}, []int{3}, 3},
		{"offset past end", BlogQuery{Offset: 10}, []int{}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			posts, total, err := repo.List(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.want, ids(posts))
		})
	}

	t.Run("update moves slug", func(t *testing.T) {
		first.Slug = "driver-v2"
		require.NoError(t, repo.Update(first))

		_, err := repo.GetBySlug("driver")
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := repo.GetBySlug("driver-v2")
		require.NoError(t, err)
		assert.Equal(t, first.ID, got.ID)

		second.Slug = "driver-v2"
		assert.ErrorIs(t, repo.Update(second), ErrConflict)
		second.Slug = "iron"
	})

	t.Run("update missing", func(t *testing.T) {
		assert.ErrorIs(t, repo.Update(&models.BlogPost{ID: 99}), ErrNotFound)
	})

	t.Run("delete frees slug", func(t *testing.T) {
		require.NoError(t, repo.Delete(second.ID))
		_, err := repo.GetByID(second.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, repo.Create(&models.BlogPost{Title: "again", Slug: "iron"}))
		assert.ErrorIs(t, repo.Delete(second.ID), ErrNotFound)
	})
}

func TestChannelRepository(t *testing.T) {
	repo := newTestSet(t).Channels
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	posts := []*models.ChannelPost{
		{Channel: models.ChannelSMS, Status: models.StatusDraft, ScheduledAt: timeAt(9), CreatedAt: *timeAt(1)},
		{Channel: models.ChannelSMS, Status: models.StatusDraft, ScheduledAt: timeAt(5), CreatedAt: *timeAt(2)},
		{Channel: models.ChannelSMS, Status: models.StatusDraft, ScheduledAt: timeAt(11), CreatedAt: *timeAt(3)},
		{Channel: models.ChannelSMS, Status: models.StatusSent, ScheduledAt: timeAt(4), CreatedAt: *timeAt(4)},
		{Channel: models.ChannelKakao, Status: models.StatusDraft, ScheduledAt: timeAt(4), CreatedAt: *timeAt(5)},
		{Channel: models.ChannelSMS, Status: models.StatusDraft, CreatedAt: *timeAt(6)},
	}
	for _, p := range posts {
		require.NoError(t, repo.Create(p))
	}

	t.Run("due sms drafts oldest first", func(t *testing.T) {
		due, err := repo.ListDue(now)
		require.NoError(t, err)
		assert.Equal(t, []int{2, 1}, channelIDs(due))
	})

	t.Run("list by channel newest first", func(t *testing.T) {
		got, total, err := repo.List(ChannelQuery{Channel: models.ChannelSMS, Limit: 3})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		assert.Equal(t, []int{6, 4, 3}, channelIDs(got))
	})

	t.Run("update and delete", func(t *testing.T) {
		posts[0].Status = models.StatusSent
		require.NoError(t, repo.Update(posts[0]))
		got, err := repo.GetByID(posts[0].ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusSent, got.Status)

		require.NoError(t, repo.Delete(posts[0].ID))
		assert.ErrorIs(t, repo.Delete(posts[0].ID), ErrNotFound)
		assert.ErrorIs(t, repo.Update(posts[0]), ErrNotFound)
	})
}

func TestCustomerRepository(t *testing.T) {
	repo := newTestSet(t).Customers
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	cs := []*models.Customer{
		{Name: "김철수", Phone: "01011112222", Address: "서울 강남구", VIPLevel: "gold", FirstPurchaseDate: timeAt(1), LastContactDate: timeAt(18), UpdatedAt: *timeAt(3)},
		{Name: "이영희", Phone: "01033334444", Address: "부산", OptOut: true, UpdatedAt: *timeAt(5)},
		{Name: "Park", Phone: "01055556666", Address: "수원", LastContactDate: timeAt(1), UpdatedAt: *timeAt(4)},
	}
	for _, c := range cs {
		require.NoError(t, repo.Create(c))
	}

	t.Run("phone is unique", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(&models.Customer{Name: "dup", Phone: "01011112222"}), ErrConflict)
	})

	yes, no := true, false
	tests := []struct {
		name  string
		q     CustomerQuery
		want  []int
		total int
	}{
		{"default order updated desc", CustomerQuery{}, []int{2, 3, 1}, 3},
		{"search name", CustomerQuery{Search: "철수"}, []int{1}, 1},
		{"search address", CustomerQuery{Search: "부산"}, []int{2}, 1},
		{"search case insensitive", CustomerQuery{Search: "park"}, []int{3}, 1},
		{"search phone digits", CustomerQuery{Search: "5555-6666"}, []int{3}, 1},
		{"vip", CustomerQuery{VIPLevel: "gold"}, []int{1}, 1},
		{"opted out", CustomerQuery{OptOut: &yes}, []int{2}, 1},
		{"purchased", CustomerQuery{Purchased: &yes}, []int{1}, 1},
		{"not purchased", CustomerQuery{Purchased: &no}, []int{2, 3}, 2},
		{"contacted within a week", CustomerQuery{ContactDays: 7}, []int{1}, 1},
		{"name asc paged", CustomerQuery{SortBy: "name", SortOrder: "asc", Limit: 1, Offset: 1}, []int{1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.q.Now = now
			got, total, err := repo.List(tt.q)
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Equal(t, tt.want, customerIDs(got))
		})
	}

	t.Run("opted out phones", func(t *testing.T) {
		out, err := repo.OptedOut([]string{"010-3333-4444", "01011112222", "01099990000"})
		require.NoError(t, err)
		assert.Equal(t, map[string]bool{"01033334444": true}, out)
	})

	t.Run("phone change moves index", func(t *testing.T) {
		cs[2].Phone = "01077778888"
		require.NoError(t, repo.Update(cs[2]))
		_, err := repo.GetByPhone("01055556666")
		assert.ErrorIs(t, err, ErrNotFound)
		got, err := repo.GetByPhone("01077778888")
		require.NoError(t, err)
		assert.Equal(t, cs[2].ID, got.ID)

		cs[2].Phone = "01011112222"
		assert.ErrorIs(t, repo.Update(cs[2]), ErrConflict)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(cs[0].ID))
		_, err := repo.GetByPhone("01011112222")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, repo.Delete(cs[0].ID), ErrNotFound)
	})
}

func TestMessageLogRepository(t *testing.T) {
	repo := newTestSet(t).Logs

	first := &models.MessageLog{ContentID: "5", CustomerPhone: "01011112222", Status: "sent", SentAt: *timeAt(1)}
	require.NoError(t, repo.Upsert(first))
	require.NoError(t, repo.Upsert(&models.MessageLog{ContentID: "6", CustomerPhone: "01011112222", Status: "sent", SentAt: *timeAt(2)}))

	replaced := &models.MessageLog{ContentID: "5", CustomerPhone: "01011112222", Status: "failed", SentAt: *timeAt(3)}
	require.NoError(t, repo.Upsert(replaced))
	assert.Equal(t, first.ID, replaced.ID)

	sent, err := repo.SentPhones("5", []string{"010-1111-2222", "01033334444"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"01011112222": true}, sent)

	logs, total, err := repo.ListByPhones([]string{"01011112222"}, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, logs, 2)
	assert.Equal(t, "5", logs[0].ContentID)
	assert.Equal(t, "failed", logs[0].Status)
}

func TestCalendarRepository(t *testing.T) {
	repo := newTestSet(t).Calendar

	root := &models.CalendarEntry{Title: "root", ContentType: "blog", IsRoot: true, BlogPostID: intPtr(9), ContentDate: *timeAt(10)}
	require.NoError(t, repo.Create(root))
	derived := []*models.CalendarEntry{
		{Title: "a", ContentType: "social", ParentContentID: intPtr(root.ID), ContentDate: *timeAt(12)},
		{Title: "b", ContentType: "social", BlogPostID: intPtr(9), ContentDate: *timeAt(11)},
		{Title: "c", ContentType: "social", ParentContentID: intPtr(77), ContentDate: *timeAt(13)},
		{Title: "d", ContentType: "email", ParentContentID: intPtr(root.ID), ContentDate: *timeAt(14)},
	}
	for _, e := range derived {
		require.NoError(t, repo.Create(e))
	}

	got, err := repo.FindRoot(9)
	require.NoError(t, err)
	assert.Equal(t, root.ID, got.ID)
	_, err = repo.FindRoot(10)
	assert.ErrorIs(t, err, ErrNotFound)

	ds, err := repo.ListDerived(root.ID, 9)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, titles(ds))

	es, total, err := repo.List(CalendarQuery{From: *timeAt(11), To: *timeAt(13)})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Equal(t, []string{"b", "a", "c"}, titles(es))

	es, _, err = repo.List(CalendarQuery{ContentType: "email"})
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, titles(es))

	require.NoError(t, repo.Delete(root.ID))
	assert.ErrorIs(t, repo.Update(root), ErrNotFound)
}

func TestKakaoRepository(t *testing.T) {
	repo := newTestSet(t).Kakao

	require.NoError(t, repo.UpsertFriend(&models.KakaoFriend{UUID: "u1", Phone: "010-1111-2222"}))
	require.NoError(t, repo.UpsertFriend(&models.KakaoFriend{UUID: "u2", Phone: "01033334444"}))

	byPhone, err := repo.UUIDsByPhones([]string{"01011112222", "01099999999"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"01011112222": "u1"}, byPhone)

	byUUID, err := repo.PhonesByUUIDs([]string{"u2", "missing"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u2": "01033334444"}, byUUID)

	g := &models.KakaoFriendGroup{Name: "vip", UUIDs: models.StringList{"u1", "u2"}, Active: true}
	require.NoError(t, repo.CreateGroup(g))
	got, err := repo.GetGroup(g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.UUIDs, got.UUIDs)

	_, err = repo.GetGroup(42)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestShortLinkRepository(t *testing.T) {
	repo := newTestSet(t).ShortLinks

	l := &models.ShortLink{Code: "abc1234", TargetURL: "https://win.masgolf.co.kr/blog/1"}
	require.NoError(t, repo.Create(l))
	assert.ErrorIs(t, repo.Create(&models.ShortLink{Code: "abc1234"}), ErrConflict)

	found, err := repo.FindByTarget(l.TargetURL)
	require.NoError(t, err)
	assert.Equal(t, "abc1234", found.Code)
	_, err = repo.FindByTarget("https://example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	for i := 1; i <= 3; i++ {
		got, err := repo.IncrementHits("abc1234")
		require.NoError(t, err)
		assert.Equal(t, i, got.Hits, fmt.Sprintf("hit %d", i))
	}
	_, err = repo.IncrementHits("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func ids(ps []*models.BlogPost) []int {
	out := []int{}
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func channelIDs(ps []*models.ChannelPost) []int {
	out := []int{}
	for _, p := range ps {
		out = append(out, p.ID)
	}
	return out
}

func customerIDs(cs []*models.Customer) []int {
	out := []int{}
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}

func titles(es []*models.CalendarEntry) []string {
	out := []string{}
	for _, e := range es {
		out = append(out, e.Title)
	}
	return out
}
