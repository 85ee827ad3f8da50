package controllers

import (
	"net/http"

	"go.uber.org/zap"

	"fairway/app/models"
	"fairway/app/repositories"
	"fairway/app/services"
)

// BlogController handles HTTP requests for blog posts
type BlogController struct {
	blogService *services.BlogService
	log         *zap.Logger
}

// NewBlogController creates a new BlogController
func NewBlogController(blogService *services.BlogService, log *zap.Logger) *BlogController {
	return &BlogController{blogService: blogService, log: log}
}

// blogPayload accepts published_at as free text so "null" and "undefined"
// from the editor clear the date instead of failing to decode.
type blogPayload struct {
	models.BlogPost
	PublishedAt string `json:"published_at"`
}

func (p *blogPayload) post() *models.BlogPost {
	post := p.BlogPost
	post.PublishedAt = models.ParsePublishedAt(p.PublishedAt)
	return &post
}

// Index handles listing posts
func (bc *BlogController) Index(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	perPage := queryInt(r, "per_page", 20)

	q := r.URL.Query()
	posts, total, err := bc.blogService.ListPosts(repositories.BlogQuery{
		Status:    q.Get("status"),
		Category:  q.Get("category"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}, page, perPage)
	if err != nil {
		sendServiceError(w, bc.log, err, "Failed to fetch posts")
		return
	}

	sendJSON(w, http.StatusOK, map[string]interface{}{
		"posts": posts,
		"page":  page,
		"total": total,
	})
}

// Show handles displaying a single post
func (bc *BlogController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := bc.blogService.GetPost(id)
	if err != nil {
		sendServiceError(w, bc.log, err, "Failed to fetch post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (bc *BlogController) Create(w http.ResponseWriter, r *http.Request) {
	var payload blogPayload
	if !decode(w, r, &payload) {
		return
	}
	post := payload.post()
	if err := bc.blogService.CreatePost(post); err != nil {
		sendServiceError(w, bc.log, err, "Failed to create post")
		return
	}
	sendJSON(w, http.StatusCreated, post)
}

// Update handles replacing an existing post. The collection route takes the
// id from ?id= or the body.
func (bc *BlogController) Update(w http.ResponseWriter, r *http.Request) {
	var payload blogPayload
	if !decode(w, r, &payload) {
		return
	}
	post := payload.post()
	id, ok := targetID(w, r, post.ID)
	if !ok {
		return
	}
	post.ID = id

	if err := bc.blogService.UpdatePost(post); err != nil {
		sendServiceError(w, bc.log, err, "Failed to update post")
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Delete handles deleting a post
func (bc *BlogController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := targetID(w, r, 0)
	if !ok {
		return
	}

	if err := bc.blogService.DeletePost(id); err != nil {
		sendServiceError(w, bc.log, err, "Failed to delete post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// View bumps the view counter of a post
func (bc *BlogController) View(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	post, err := bc.blogService.IncrementView(id)
	if err != nil {
		sendServiceError(w, bc.log, err, "Failed to count view")
		return
	}
	sendJSON(w, http.StatusOK, map[string]int{"view_count": post.ViewCount})
}

type scoreRequest struct {
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// ScoreTitle rates a title
func (bc *BlogController) ScoreTitle(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decode(w, r, &req) {
		return
	}
	score, err := bc.blogService.ScoreTitle(req.Title, req.Keywords)
	if err != nil {
		sendServiceError(w, bc.log, err, "Failed to score title")
		return
	}
	sendJSON(w, http.StatusOK, score)
}

// Quality runs the content checker over a stored post. The body is optional.
func (bc *BlogController) Quality(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req scoreRequest
	if err := decodeOptional(w, r, &req); err != nil {
		sendError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	report, err := bc.blogService.CheckQuality(r.Context(), id, req.Keywords)
	if err != nil {
		sendServiceError(w, bc.log, err, "Failed to check quality")
		return
	}
	sendJSON(w, http.StatusOK, report)
}
