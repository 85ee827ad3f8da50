package routes

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fairway/app/controllers"
	"fairway/app/metrics"
	"fairway/app/middleware"
	"fairway/app/services"
)

// Services are the application services exposed over HTTP.
type Services struct {
	Auth         *services.AuthService
	Blog         *services.BlogService
	Channels     *services.ChannelService
	Kakao        *services.KakaoService
	Customers    *services.CustomerService
	Calendar     *services.CalendarService
	Content      *services.ContentService
	Multichannel *services.MultichannelService
	Dispatch     *services.DispatchService
	ShortLinks   *services.ShortLinkService
}

// Options tune the middleware stack.
type Options struct {
	Origins    []string
	CronSecret string
	// Limiter throttles every route when set.
	Limiter *middleware.RateLimiter
	// Health reports store reachability on /healthz.
	Health func() error
}

// SetupRoutes defines the application's routes and returns the root handler.
func SetupRoutes(svc Services, opts Options, log *zap.Logger) http.Handler {
	router := mux.NewRouter()

	// Apply global middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recoverer(log))
	router.Use(middleware.Metrics)
	if opts.Limiter != nil {
		router.Use(opts.Limiter.Handler)
	}
	router.Use(middleware.ContentTypeJSON)

	router.NotFoundHandler = http.HandlerFunc(notFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	blog := controllers.NewBlogController(svc.Blog, log)
	channels := controllers.NewChannelController(svc.Channels, svc.Kakao, log)
	customers := controllers.NewCustomerController(svc.Customers, log)
	calendar := controllers.NewCalendarController(svc.Calendar, log)
	content := controllers.NewContentController(svc.Content, svc.Multichannel, log)
	auth := controllers.NewAuthController(svc.Auth, log)
	dispatch := controllers.NewDispatchController(svc.Dispatch, log)
	links := controllers.NewShortLinkController(svc.ShortLinks, log)

	requireAdmin := middleware.RequireAdmin(svc.Auth, log)

	router.HandleFunc("/healthz", health(opts.Health)).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")
	router.HandleFunc("/s/{code}", links.Redirect).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/login", auth.Login).Methods("POST")
	api.HandleFunc("/blog/{id:[0-9]+}/view", blog.View).Methods("POST")
	api.Handle("/admin/send-scheduled-sms",
		middleware.RequireAdminOrCron(svc.Auth, opts.CronSecret, log)(http.HandlerFunc(dispatch.Run))).Methods("POST")

	// Admin API endpoints
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(requireAdmin)

	admin.HandleFunc("/blog", blog.Index).Methods("GET")
	admin.HandleFunc("/blog", blog.Create).Methods("POST")
	admin.HandleFunc("/blog", blog.Update).Methods("PUT")
	admin.HandleFunc("/blog", blog.Delete).Methods("DELETE")
	admin.HandleFunc("/blog/score-title", blog.ScoreTitle).Methods("POST")
	admin.HandleFunc("/blog/{id:[0-9]+}", blog.Show).Methods("GET")
	admin.HandleFunc("/blog/{id:[0-9]+}", blog.Update).Methods("PUT")
	admin.HandleFunc("/blog/{id:[0-9]+}", blog.Delete).Methods("DELETE")
	admin.HandleFunc("/blog/{id:[0-9]+}/quality", blog.Quality).Methods("POST")

	admin.HandleFunc("/customers", customers.Index).Methods("GET")
	admin.HandleFunc("/customers", customers.Create).Methods("POST")
	admin.HandleFunc("/customers/{id:[0-9]+}", customers.Update).Methods("PATCH")
	admin.HandleFunc("/customers/{id:[0-9]+}", customers.Delete).Methods("DELETE")
	admin.HandleFunc("/customers/{phone}/messages", customers.Messages).Methods("GET")

	admin.HandleFunc("/calendar", calendar.Index).Methods("GET")
	admin.HandleFunc("/calendar", calendar.Create).Methods("POST")
	admin.HandleFunc("/calendar/{id:[0-9]+}", calendar.Show).Methods("GET")
	admin.HandleFunc("/calendar/{id:[0-9]+}", calendar.Update).Methods("PUT")
	admin.HandleFunc("/calendar/{id:[0-9]+}", calendar.Delete).Methods("DELETE")

	admin.HandleFunc("/short-links", links.Create).Methods("POST")

	// Channel endpoints
	ch := api.PathPrefix("/channels").Subrouter()
	ch.Use(requireAdmin)
	ch.HandleFunc("/sms/analyze", channels.Analyze).Methods("POST")
	ch.HandleFunc("/sms/from-blog/{blogId:[0-9]+}", channels.FromBlog).Methods("POST")
	ch.HandleFunc("/sms/{id:[0-9]+}/send", channels.SendSMS).Methods("POST")
	ch.HandleFunc("/sms/{id:[0-9]+}/sync", channels.Sync).Methods("POST")
	ch.HandleFunc("/kakao/{id:[0-9]+}/send", channels.SendKakao).Methods("POST")
	ch.HandleFunc("/{channel:sms|kakao}", channels.Index).Methods("GET")
	ch.HandleFunc("/{channel:sms|kakao}", channels.Create).Methods("POST")
	ch.HandleFunc("/{channel:sms|kakao}/{id:[0-9]+}", channels.Show).Methods("GET")
	ch.HandleFunc("/{channel:sms|kakao}/{id:[0-9]+}", channels.Update).Methods("PUT")
	ch.HandleFunc("/{channel:sms|kakao}/{id:[0-9]+}", channels.Delete).Methods("DELETE")

	// AI endpoints
	gen := api.NewRoute().Subrouter()
	gen.Use(requireAdmin)
	gen.HandleFunc("/ai/compress-text", content.Compress).Methods("POST")
	gen.HandleFunc("/ai/improve-text", content.Improve).Methods("POST")
	gen.HandleFunc("/ai/psychology-messages", content.Psychology).Methods("POST")
	gen.HandleFunc("/generate-blog", content.GenerateBlog).Methods("POST")
	gen.HandleFunc("/generate-summary", content.Summarize).Methods("POST")
	gen.HandleFunc("/generate-image", content.GenerateImage).Methods("POST")
	gen.HandleFunc("/multichannel/auto-generate", content.Multichannel).Methods("POST")

	return middleware.CORS(opts.Origins)(router)
}

func health(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Not found"})
		return
	}
	http.NotFound(w, r)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(map[string]string{"error": "Method not allowed"})
}
