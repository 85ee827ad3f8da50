package controllers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/services"
)

// ChannelController handles HTTP requests for SMS and Kakao drafts
type ChannelController struct {
	channels *services.ChannelService
	kakao    *services.KakaoService
	log      *zap.Logger
}

// NewChannelController creates a new ChannelController
func NewChannelController(channels *services.ChannelService, kakao *services.KakaoService, log *zap.Logger) *ChannelController {
	return &ChannelController{channels: channels, kakao: kakao, log: log}
}

func channelOf(r *http.Request) string {
	return mux.Vars(r)["channel"]
}

// Index handles listing drafts of a channel
func (cc *ChannelController) Index(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 50)
	if perPage < 1 {
		perPage = 50
	}

	posts, total, err := cc.channels.List(repositories.ChannelQuery{
		Channel: channelOf(r),
		Status:  r.URL.Query().Get("status"),
		Limit:   perPage,
		Offset:  (page - 1) * perPage,
	})
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch messages")
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{
		"messages": posts,
		"page":     page,
		"total":    total,
	})
}

// Show handles displaying a single draft
func (cc *ChannelController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := cc.channels.Get(channelOf(r), id)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to fetch message")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a draft
func (cc *ChannelController) Create(w http.ResponseWriter, r *http.Request) {
	var post models.ChannelPost
	if !decode(w, r, &post) {
		return
	}
	if err := cc.channels.Create(channelOf(r), &post); err != nil {
		sendServiceError(w, cc.log, err, "Failed to create message")
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles editing a draft
func (cc *ChannelController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var post models.ChannelPost
	if !decode(w, r, &post) {
		return
	}
	post.ID = id
	if err := cc.channels.Update(channelOf(r), &post); err != nil {
		sendServiceError(w, cc.log, err, "Failed to update message")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a draft
func (cc *ChannelController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	if err := cc.channels.Delete(channelOf(r), id); err != nil {
		sendServiceError(w, cc.log, err, "Failed to delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SendSMS delivers an SMS draft now. ?dryRun=true skips the provider.
func (cc *ChannelController) SendSMS(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	dryRun := queryBool(r, "dryRun")
	res, err := cc.channels.SendNow(r.Context(), id, dryRun != nil && *dryRun)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to send message")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// SendKakao delivers a Kakao draft, optionally overriding its content and recipients.
func (cc *ChannelController) SendKakao(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req services.KakaoSendRequest
	if err := decodeOptional(w, r, &req); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	res, err := cc.kakao.Send(r.Context(), id, req)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to send kakao message")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// FromBlog drafts an SMS promoting a blog post
func (cc *ChannelController) FromBlog(w http.ResponseWriter, r *http.Request) {
	blogID, ok := pathID(w, r, "blogId")
	if !ok {
		return
	}
	var req struct {
		MessageType string `json:"messageType"`
	}
	if err := decodeOptional(w, r, &req); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	draft, err := cc.channels.FromBlog(blogID, req.MessageType)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to draft message")
		return
	}
	sendJSON(w, http.StatusCreated, draft)
}

// Sync reconciles a sent draft with the provider's delivery counts
func (cc *ChannelController) Sync(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		GroupID string `json:"groupId"`
	}
	if err := decodeOptional(w, r, &req); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	res, err := cc.channels.SyncStatus(r.Context(), id, req.GroupID)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to sync status")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

type analyzeRequest struct {
	Content     string `json:"content"`
	ShortLink   string `json:"shortLink"`
	MessageType string `json:"messageType"`
	HasImage    bool   `json:"hasImage"`
}

// Analyze previews how a draft fits its message type
func (cc *ChannelController) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !decode(w, r, &req) {
		return
	}
	sendJSON(w, http.StatusOK, cc.channels.Analyze(req.Content, req.ShortLink, req.MessageType, req.HasImage))
}
