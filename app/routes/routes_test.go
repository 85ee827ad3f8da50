package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fairway/app/brand"
	"fairway/app/middleware"
	"fairway/app/providers/kakao"
	"fairway/app/providers/solapi"
	"fairway/app/repositories/mock"
	"fairway/app/services"
)

const cronSecret = "cron-s3cret"

func setupTestRouter(t *testing.T, opts Options) http.Handler {
	t.Helper()
	log := zap.NewNop()
	repos := mock.NewSet()

	hash, err := services.HashPassword("s3cret!")
	require.NoError(t, err)

	sms := solapi.New("", "", "0212345678")
	links := services.NewShortLinkService(repos.ShortLinks, "https://win.masgolf.co.kr", log)
	dispatch := services.NewDispatchService(repos, sms, log)

	svc := Services{
		Auth:         services.NewAuthService("admin", hash, "signing-key", time.Hour, log),
		Blog:         services.NewBlogService(repos.Blog, repos.Calendar, log),
		Channels:     services.NewChannelService(repos, links, dispatch, sms, "https://www.masgolf.co.kr", log),
		Kakao:        services.NewKakaoService(repos, kakao.New(""), sms, log),
		Customers:    services.NewCustomerService(repos, log),
		Calendar:     services.NewCalendarService(repos.Calendar, log),
		Content:      services.NewContentService(brand.Default(), nil, nil, log),
		Multichannel: services.NewMultichannelService(repos, brand.Default(), nil, log),
		Dispatch:     dispatch,
		ShortLinks:   links,
	}
	if opts.CronSecret == "" {
		opts.CronSecret = cronSecret
	}
	return SetupRoutes(svc, opts, log)
}

func request(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	w := request(h, "POST", "/api/auth/login", "", `{"username": "admin", "password": "s3cret!"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var session services.Session
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)
	return session.Token
}

func TestHealthAndMetrics(t *testing.T) {
	router := setupTestRouter(t, Options{})

	w := request(router, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status": "ok"}`, w.Body.String())

	w = request(router, "GET", "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "fairway_http_requests_total")

	down := setupTestRouter(t, Options{Health: func() error { return errors.New("store closed") }})
	w = request(down, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "store closed")
}

func TestNotFound(t *testing.T) {
	router := setupTestRouter(t, Options{})

	w := request(router, "GET", "/api/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error": "Not found"}`, w.Body.String())

	w = request(router, "GET", "/nothing", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEqual(t, "application/json", w.Header().Get("Content-Type"))
}

func TestProtectedRoutes(t *testing.T) {
	router := setupTestRouter(t, Options{})
	token := login(t, router)

	tests := []struct {
		method string
		path   string
		body   string
	}{
		{"GET", "/api/admin/blog", ""},
		{"GET", "/api/admin/customers", ""},
		{"GET", "/api/admin/calendar?year=2025&month=5", ""},
		{"GET", "/api/channels/sms", ""},
		{"GET", "/api/channels/kakao", ""},
		{"POST", "/api/channels/sms/analyze", `{"content": "안내", "messageType": "SMS"}`},
		{"POST", "/api/ai/compress-text", `{"text": "짧은 문장", "messageType": "SMS"}`},
		{"POST", "/api/admin/short-links", `{"url": "https://www.masgolf.co.kr"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := request(router, tt.method, tt.path, "", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error": "인증이 필요합니다."}`, w.Body.String())

			w = request(router, tt.method, tt.path, "not-a-token", tt.body)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = request(router, tt.method, tt.path, token, tt.body)
			assert.Less(t, w.Code, 300, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestBlogFlow(t *testing.T) {
	router := setupTestRouter(t, Options{})
	token := login(t, router)

	w := request(router, "POST", "/api/admin/blog", token, `{"title": "아이언 셋업 가이드", "content": "본문"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = request(router, "POST", "/api/blog/1/view", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"view_count": 1}`, w.Body.String())

	w = request(router, "GET", "/api/admin/blog/1", token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = request(router, "DELETE", "/api/admin/blog/1", token, "")
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestScheduledDispatch(t *testing.T) {
	router := setupTestRouter(t, Options{})

	tests := []struct {
		name  string
		token string
		want  int
	}{
		{name: "cron secret", token: cronSecret, want: http.StatusOK},
		{name: "admin token", token: login(t, router), want: http.StatusOK},
		{name: "missing token", want: http.StatusUnauthorized},
		{name: "wrong secret", token: "guess", want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(router, "POST", "/api/admin/send-scheduled-sms?dryRun=true", tt.token, "")
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestShortLinkRedirect(t *testing.T) {
	router := setupTestRouter(t, Options{})
	token := login(t, router)

	w := request(router, "POST", "/api/admin/short-links", token, `{"url": "https://www.masgolf.co.kr/event"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var link map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &link))

	w = request(router, "GET", "/s/"+link["code"], "", "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://www.masgolf.co.kr/event", w.Header().Get("Location"))
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(t, Options{Origins: []string{"https://admin.masgolf.co.kr"}})

	req := httptest.NewRequest("OPTIONS", "/api/admin/blog", nil)
	req.Header.Set("Origin", "https://admin.masgolf.co.kr")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://admin.masgolf.co.kr", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter(t, Options{Limiter: middleware.NewRateLimiter(0.001, 1, zap.NewNop())})

	assert.Equal(t, http.StatusOK, request(router, "GET", "/healthz", "", "").Code)
	w := request(router, "GET", "/healthz", "", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}
