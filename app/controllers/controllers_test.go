package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fairway/app/brand"
	"fairway/app/models"
	"fairway/app/providers/kakao"
	"fairway/app/providers/solapi"
	"fairway/app/repositories"
	"fairway/app/repositories/mock"
	"fairway/app/services"
)

type fixture struct {
	repos  repositories.Set
	router *mux.Router
}

func setupRouter(t *testing.T) *fixture {
	t.Helper()
	log := zap.NewNop()
	repos := mock.NewSet()

	sms := solapi.New("", "", "0212345678")
	links := services.NewShortLinkService(repos.ShortLinks, "https://win.masgolf.co.kr", log)
	dispatch := services.NewDispatchService(repos, sms, log)
	channels := services.NewChannelService(repos, links, dispatch, sms, "https://www.masgolf.co.kr", log)
	kakaoSvc := services.NewKakaoService(repos, kakao.New(""), sms, log)
	blogs := services.NewBlogService(repos.Blog, repos.Calendar, log)
	content := services.NewContentService(brand.Default(), nil, nil, log)
	multichannel := services.NewMultichannelService(repos, brand.Default(), nil, log)

	hash, err := services.HashPassword("s3cret!")
	require.NoError(t, err)
	auth := services.NewAuthService("admin", hash, "signing-key", time.Hour, log)

	bc := NewBlogController(blogs, log)
	cc := NewChannelController(channels, kakaoSvc, log)
	cu := NewCustomerController(services.NewCustomerService(repos, log), log)
	ca := NewCalendarController(services.NewCalendarService(repos.Calendar, log), log)
	co := NewContentController(content, multichannel, log)
	ac := NewAuthController(auth, log)
	dc := NewDispatchController(dispatch, log)
	sc := NewShortLinkController(links, log)

	router := mux.NewRouter()
	router.HandleFunc("/blog", bc.Index).Methods("GET")
	router.HandleFunc("/blog", bc.Create).Methods("POST")
	router.HandleFunc("/blog", bc.Update).Methods("PUT")
	router.HandleFunc("/blog", bc.Delete).Methods("DELETE")
	router.HandleFunc("/blog/score-title", bc.ScoreTitle).Methods("POST")
	router.HandleFunc("/blog/{id:[0-9]+}", bc.Show).Methods("GET")
	router.HandleFunc("/blog/{id:[0-9]+}", bc.Update).Methods("PUT")
	router.HandleFunc("/blog/{id:[0-9]+}/quality", bc.Quality).Methods("POST")
	router.HandleFunc("/blog/{id:[0-9]+}/view", bc.View).Methods("POST")

	router.HandleFunc("/channels/sms/analyze", cc.Analyze).Methods("POST")
	router.HandleFunc("/channels/sms/from-blog/{blogId:[0-9]+}", cc.FromBlog).Methods("POST")
	router.HandleFunc("/channels/sms/{id:[0-9]+}/send", cc.SendSMS).Methods("POST")
	router.HandleFunc("/channels/kakao/{id:[0-9]+}/send", cc.SendKakao).Methods("POST")
	router.HandleFunc("/channels/{channel:sms|kakao}", cc.Index).Methods("GET")
	router.HandleFunc("/channels/{channel:sms|kakao}", cc.Create).Methods("POST")
	router.HandleFunc("/channels/{channel:sms|kakao}/{id:[0-9]+}", cc.Show).Methods("GET")
	router.HandleFunc("/channels/{channel:sms|kakao}/{id:[0-9]+}", cc.Delete).Methods("DELETE")

	router.HandleFunc("/customers", cu.Index).Methods("GET")
	router.HandleFunc("/customers", cu.Create).Methods("POST")
	router.HandleFunc("/customers/{id:[0-9]+}", cu.Update).Methods("PATCH")
	router.HandleFunc("/customers/{phone}/messages", cu.Messages).Methods("GET")

	router.HandleFunc("/calendar", ca.Index).Methods("GET")
	router.HandleFunc("/calendar", ca.Create).Methods("POST")

	router.HandleFunc("/generate-blog", co.GenerateBlog).Methods("POST")
	router.HandleFunc("/compress-text", co.Compress).Methods("POST")
	router.HandleFunc("/multichannel", co.Multichannel).Methods("POST")

	router.HandleFunc("/login", ac.Login).Methods("POST")
	router.HandleFunc("/send-scheduled-sms", dc.Run).Methods("POST")
	router.HandleFunc("/short-links", sc.Create).Methods("POST")
	router.HandleFunc("/s/{code}", sc.Redirect).Methods("GET")

	return &fixture{repos: repos, router: router}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, w, &body)
	return body["error"]
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{repositories.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("lookup: %w", repositories.ErrConflict), http.StatusConflict},
		{&services.Error{Kind: services.ErrValidation, Message: "x"}, http.StatusBadRequest},
		{services.ErrTemplateRequired, http.StatusBadRequest},
		{services.ErrNoRecipients, http.StatusBadRequest},
		{services.ErrUnauthorized, http.StatusUnauthorized},
		{services.ErrNotConfigured, http.StatusServiceUnavailable},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusOf(tt.err))
		})
	}
}

func TestBlogController(t *testing.T) {
	f := setupRouter(t)

	t.Run("create post", func(t *testing.T) {
		w := f.do(http.MethodPost, "/blog", `{"title": "드라이버 고르는 법", "content": "본문", "published_at": "undefined"}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

		var post models.BlogPost
		decodeBody(t, w, &post)
		assert.NotZero(t, post.ID)
		assert.Equal(t, "드라이버-고르는-법", post.Slug)
		assert.Nil(t, post.PublishedAt)
		assert.NotNil(t, post.CalendarID)
	})

	t.Run("get post", func(t *testing.T) {
		w := f.do(http.MethodGet, "/blog/1", "")
		require.Equal(t, http.StatusOK, w.Code)
		var post models.BlogPost
		decodeBody(t, w, &post)
		assert.Equal(t, "드라이버 고르는 법", post.Title)

		w = f.do(http.MethodGet, "/blog/99", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, notFoundMessage, errorOf(t, w))
	})

	t.Run("update post", func(t *testing.T) {
		w := f.do(http.MethodPut, "/blog/1", `{"title": "수정된 제목", "content": "새 본문", "slug": "custom", "published_at": "2024-05-01"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var post models.BlogPost
		decodeBody(t, w, &post)
		assert.Equal(t, 1, post.ID)
		assert.Equal(t, "custom", post.Slug)
		require.NotNil(t, post.PublishedAt)
		assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *post.PublishedAt)

		w = f.do(http.MethodPut, "/blog?id=1", `{"title": "다시 수정", "slug": "custom"}`)
		assert.Equal(t, http.StatusOK, w.Code)

		w = f.do(http.MethodPut, "/blog", `{"title": "아이디 없음"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("list posts", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			f.do(http.MethodPost, "/blog", fmt.Sprintf(`{"title": "목록 %d"}`, i))
		}
		w := f.do(http.MethodGet, "/blog?page=1&per_page=2&sortBy=title&sortOrder=asc", "")
		require.Equal(t, http.StatusOK, w.Code)

		var res struct {
			Posts []*models.BlogPost `json:"posts"`
			Page  int                `json:"page"`
			Total int                `json:"total"`
		}
		decodeBody(t, w, &res)
		assert.Len(t, res.Posts, 2)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 4, res.Total)
	})

	t.Run("score title", func(t *testing.T) {
		w := f.do(http.MethodPost, "/blog/score-title", `{"title": "시니어 골퍼 비거리 25m 늘리는 비밀", "keywords": ["비거리"]}`)
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(http.MethodPost, "/blog/score-title", `{"title": ""}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "제목을 입력해주세요.", errorOf(t, w))
	})

	t.Run("quality without body", func(t *testing.T) {
		w := f.do(http.MethodPost, "/blog/1/quality", "")
		assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("view counter", func(t *testing.T) {
		f.do(http.MethodPost, "/blog/1/view", "")
		w := f.do(http.MethodPost, "/blog/1/view", "")
		require.Equal(t, http.StatusOK, w.Code)
		var res map[string]int
		decodeBody(t, w, &res)
		assert.Equal(t, 2, res["view_count"])
	})

	t.Run("invalid json", func(t *testing.T) {
		w := f.do(http.MethodPost, "/blog", `{"title":`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.True(t, strings.HasPrefix(errorOf(t, w), "Invalid JSON"))
	})

	t.Run("delete post", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/blog?id=1", "")
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = f.do(http.MethodGet, "/blog/1", "")
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(http.MethodDelete, "/blog", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestChannelController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/channels/sms", `{"content": "시타회 안내", "message_type": "SMS", "recipient_numbers": ["01011112222"]}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var post models.ChannelPost
	decodeBody(t, w, &post)
	assert.Equal(t, models.ChannelSMS, post.Channel)
	assert.Equal(t, models.StatusDraft, post.Status)

	w = f.do(http.MethodGet, "/channels/sms", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Messages []*models.ChannelPost `json:"messages"`
		Total    int                   `json:"total"`
	}
	decodeBody(t, w, &list)
	assert.Equal(t, 1, list.Total)

	w = f.do(http.MethodGet, fmt.Sprintf("/channels/kakao/%d", post.ID), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	t.Run("send without provider", func(t *testing.T) {
		w := f.do(http.MethodPost, fmt.Sprintf("/channels/sms/%d/send", post.ID), "")
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("send dry run", func(t *testing.T) {
		w := f.do(http.MethodPost, fmt.Sprintf("/channels/sms/%d/send?dryRun=true", post.ID), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res services.DispatchResult
		decodeBody(t, w, &res)
		assert.True(t, res.Success)

		stored, err := f.repos.Channels.GetByID(post.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusDraft, stored.Status)
	})

	t.Run("kakao simulation", func(t *testing.T) {
		require.NoError(t, f.repos.Kakao.UpsertFriend(&models.KakaoFriend{UUID: "u-1", Phone: "01011112222"}))
		w := f.do(http.MethodPost, "/channels/kakao", `{"content": "카카오 안내", "recipient_uuids": ["u-1"]}`)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var k models.ChannelPost
		decodeBody(t, w, &k)

		w = f.do(http.MethodPost, fmt.Sprintf("/channels/kakao/%d/send", k.ID), "")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var res services.KakaoSendResult
		decodeBody(t, w, &res)
		assert.Equal(t, services.ModeSimulation, res.Mode)
	})

	t.Run("from blog", func(t *testing.T) {
		blog := &models.BlogPost{Title: "드라이버 이야기", Slug: "driver", Summary: "가벼운 드라이버"}
		require.NoError(t, f.repos.Blog.Create(blog))

		w := f.do(http.MethodPost, fmt.Sprintf("/channels/sms/from-blog/%d", blog.ID), "")
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var draft models.ChannelPost
		decodeBody(t, w, &draft)
		assert.True(t, strings.HasPrefix(draft.ShortLink, "https://win.masgolf.co.kr/s/"))
	})

	t.Run("analyze", func(t *testing.T) {
		w := f.do(http.MethodPost, "/channels/sms/analyze", fmt.Sprintf(`{"content": %q, "messageType": "SMS"}`, strings.Repeat("가", 100)))
		require.Equal(t, http.StatusOK, w.Code)
		var a struct {
			Status string   `json:"status"`
			Parts  []string `json:"parts"`
		}
		decodeBody(t, w, &a)
		assert.Equal(t, "over", a.Status)
		assert.NotEmpty(t, a.Parts)
	})

	w = f.do(http.MethodDelete, fmt.Sprintf("/channels/sms/%d", post.ID), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestCustomerController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/customers", `{"name": "홍길동", "phone": "010-1234-5678"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var c models.Customer
	decodeBody(t, w, &c)
	assert.Equal(t, "01012345678", c.Phone)

	w = f.do(http.MethodPost, "/customers", `{"name": "중복", "phone": "01012345678"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(http.MethodPost, "/customers", `{"name": "전화 없음"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "이름과 전화번호는 필수입니다.", errorOf(t, w))

	w = f.do(http.MethodPatch, fmt.Sprintf("/customers/%d", c.ID), `{"vip_level": "gold"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeBody(t, w, &c)
	assert.Equal(t, "gold", c.VIPLevel)
	assert.Equal(t, "홍길동", c.Name)

	w = f.do(http.MethodGet, "/customers?q="+url.QueryEscape("홍")+"&vipLevel=gold&optOut=false", "")
	require.Equal(t, http.StatusOK, w.Code)
	var page services.CustomerPage
	decodeBody(t, w, &page)
	assert.Equal(t, 1, page.Count)
	assert.Equal(t, 100, page.PageSize)

	w = f.do(http.MethodGet, "/customers/010-1234-5678/messages?limit=500", "")
	require.Equal(t, http.StatusOK, w.Code)
	var history services.CustomerHistory
	decodeBody(t, w, &history)
	assert.Equal(t, "01012345678", history.Phone)
	assert.Equal(t, 100, history.Limit)
}

func TestCalendarController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/calendar", `{"title": "5월 캠페인", "content_type": "blog", "content_date": "2024-05-10T09:00:00Z"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	tests := []struct {
		query string
		code  int
		total int
	}{
		{query: "?year=2024&month=5", code: http.StatusOK, total: 1},
		{query: "?year=2024&month=6", code: http.StatusOK, total: 0},
		{query: "?from=2024-05-01&to=2024-05-31", code: http.StatusOK, total: 1},
		{query: "", code: http.StatusOK, total: 1},
		{query: "?year=2024&month=13", code: http.StatusBadRequest},
		{query: "?from=yesterday", code: http.StatusBadRequest},
		{query: "?from=2024-06-01&to=2024-05-01", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			w := f.do(http.MethodGet, "/calendar"+tt.query, "")
			require.Equal(t, tt.code, w.Code, w.Body.String())
			if tt.code != http.StatusOK {
				return
			}
			var res struct {
				Total int `json:"total"`
			}
			decodeBody(t, w, &res)
			assert.Equal(t, tt.total, res.Total)
		})
	}
}

func TestContentController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/generate-blog", `{"title": "비거리"}`)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "AI API 키가 설정되지 않았습니다.", errorOf(t, w))

	w = f.do(http.MethodPost, "/compress-text", `{"text": "고객님께서는 정말 좋은 드라이버를 만나실 수 있습니다.", "targetLength": 20}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res services.CompressResponse
	decodeBody(t, w, &res)
	assert.Equal(t, services.MethodRule, res.Method)
	assert.LessOrEqual(t, res.Length, 20)

	blog := &models.BlogPost{Title: "드라이버 이야기", Slug: "driver", Summary: "가벼운 드라이버"}
	require.NoError(t, f.repos.Blog.Create(blog))
	w = f.do(http.MethodPost, "/multichannel", fmt.Sprintf(`{"blogPostId": %d, "targetAudiences": ["existing_customer"]}`, blog.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var mc services.MultichannelResult
	decodeBody(t, w, &mc)
	assert.True(t, mc.Success)
	assert.Equal(t, 7, mc.TotalChannels)

	w = f.do(http.MethodPost, "/multichannel", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/login", `{"username": "admin", "password": "s3cret!"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var session services.Session
	decodeBody(t, w, &session)
	assert.NotEmpty(t, session.Token)

	w = f.do(http.MethodPost, "/login", `{"username": "admin", "password": "wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDispatchController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/send-scheduled-sms", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = f.do(http.MethodPost, "/send-scheduled-sms?dryRun=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var report services.DispatchReport
	decodeBody(t, w, &report)
	assert.True(t, report.Success)
	assert.True(t, report.DryRun)
	assert.Equal(t, "발송할 예약 메시지가 없습니다.", report.Message)
}

func TestShortLinkController(t *testing.T) {
	f := setupRouter(t)

	w := f.do(http.MethodPost, "/short-links", `{"url": "https://www.masgolf.co.kr/event"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res map[string]string
	decodeBody(t, w, &res)
	assert.Equal(t, "https://win.masgolf.co.kr/s/"+res["code"], res["shortUrl"])

	w = f.do(http.MethodGet, "/s/"+res["code"], "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://www.masgolf.co.kr/event", w.Header().Get("Location"))

	w = f.do(http.MethodGet, "/s/nothing", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(http.MethodPost, "/short-links", `{"url": "not a url"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
