package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"fairway/app/brand"
	"fairway/app/services"
)

// ContentController handles the AI writing endpoints
type ContentController struct {
	content      *services.ContentService
	multichannel *services.MultichannelService
	log          *zap.Logger
}

// NewContentController creates a new ContentController
func NewContentController(content *services.ContentService, multichannel *services.MultichannelService, log *zap.Logger) *ContentController {
	return &ContentController{content: content, multichannel: multichannel, log: log}
}

// GenerateBlog drafts a blog post
func (cc *ContentController) GenerateBlog(w http.ResponseWriter, r *http.Request) {
	var req brand.BlogRequest
	if !decode(w, r, &req) {
		return
	}
	draft, err := cc.content.GenerateBlog(r.Context(), req)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to generate blog")
		return
	}
	sendJSON(w, http.StatusOK, draft)
}

type summaryRequest struct {
	Title        string `json:"title"`
	Content      string `json:"content"`
	CustomPrompt string `json:"customPrompt"`
}

// Summarize writes an excerpt for a post
func (cc *ContentController) Summarize(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := cc.content.Summarize(r.Context(), req.Title, req.Content, req.CustomPrompt)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to summarize")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

type imageRequest struct {
	Topic string `json:"title"`
	Size  string `json:"size"`
}

// GenerateImage renders a product image
func (cc *ContentController) GenerateImage(w http.ResponseWriter, r *http.Request) {
	var req imageRequest
	if !decode(w, r, &req) {
		return
	}
	url, err := cc.content.GenerateImage(r.Context(), req.Topic, req.Size)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to generate image")
		return
	}
	sendJSON(w, http.StatusOK, map[string]string{"imageUrl": url})
}

type rewriteRequest struct {
	Text          string   `json:"text"`
	MessageType   string   `json:"messageType"`
	TargetLength  int      `json:"targetLength"`
	PreserveWords []string `json:"preserveKeywords"`
	Goal          string   `json:"goal"`
}

// Compress shortens a message to fit its type
func (cc *ContentController) Compress(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := cc.content.Compress(r.Context(), req.Text, req.MessageType, req.TargetLength, req.PreserveWords)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to compress text")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// Improve rewrites a message toward a goal
func (cc *ContentController) Improve(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := cc.content.Improve(r.Context(), req.Text, req.MessageType, req.Goal)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to improve text")
		return
	}
	sendJSON(w, http.StatusOK, res)
}

// Psychology returns persuasion-principle rewrites of a message
func (cc *ContentController) Psychology(w http.ResponseWriter, r *http.Request) {
	var req rewriteRequest
	if !decode(w, r, &req) {
		return
	}
	variants, err := cc.content.PsychologyMessages(r.Context(), req.Text, req.MessageType)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to generate messages")
		return
	}
	sendJSON(w, http.StatusOK, map[string]interface{}{"messages": variants})
}

// Multichannel derives campaign assets from a blog post
func (cc *ContentController) Multichannel(w http.ResponseWriter, r *http.Request) {
	var req services.MultichannelRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := cc.multichannel.Generate(r.Context(), req)
	if err != nil {
		sendServiceError(w, cc.log, err, "Failed to generate multichannel content")
		return
	}
	sendJSON(w, http.StatusOK, res)
}
