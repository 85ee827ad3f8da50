package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fairway/app/services"
)

// AuthController issues admin session tokens
type AuthController struct {
	auth *services.AuthService
	log  *zap.Logger
}

// NewAuthController creates a new AuthController
func NewAuthController(auth *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{auth: auth, log: log}
}

type loginRequest struct {
	User     string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges admin credentials for a token
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	session, err := ac.auth.Login(req.User, req.Password)
	if err != nil {
		sendServiceError(w, ac.log, err, "Failed to log in")
		return
	}
	sendJSON(w, http.StatusOK, session)
}

// DispatchController runs the scheduled SMS dispatch on demand
type DispatchController struct {
	dispatch *services.DispatchService
	log      *zap.Logger
}

// NewDispatchController creates a new DispatchController
func NewDispatchController(dispatch *services.DispatchService, log *zap.Logger) *DispatchController {
	return &DispatchController{dispatch: dispatch, log: log}
}

// Run sends every due draft. ?dryRun=true reports without sending.
func (dc *DispatchController) Run(w http.ResponseWriter, r *http.Request) {
	dryRun := queryBool(r, "dryRun")
	report, err := dc.dispatch.RunScheduled(r.Context(), dryRun != nil && *dryRun)
	if err != nil {
		sendServiceError(w, dc.log, err, "Failed to send scheduled messages")
		return
	}
	sendJSON(w, http.StatusOK, report)
}

// ShortLinkController creates and follows short links
type ShortLinkController struct {
	links *services.ShortLinkService
	log   *zap.Logger
}

// NewShortLinkController creates a new ShortLinkController
func NewShortLinkController(links *services.ShortLinkService, log *zap.Logger) *ShortLinkController {
	return &ShortLinkController{links: links, log: log}
}

// Create shortens a URL
func (sc *ShortLinkController) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if !decode(w, r, &req) {
		return
	}
	link, err := sc.links.Shorten(req.URL)
	if err != nil {
		sendServiceError(w, sc.log, err, "Failed to create short link")
		return
	}
	sendJSON(w, http.StatusCreated, map[string]interface{}{
		"code":     link.Code,
		"shortUrl": sc.links.URL(link),
		"target":   link.TargetURL,
	})
}

// Redirect follows a short code
func (sc *ShortLinkController) Redirect(w http.ResponseWriter, r *http.Request) {
	link, err := sc.links.Resolve(mux.Vars(r)["code"])
	if err != nil {
		if statusOf(err) == http.StatusNotFound {
			http.NotFound(w, r)
			return
		}
		sc.log.Error("failed to resolve short link", zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, link.TargetURL, http.StatusFound)
}
