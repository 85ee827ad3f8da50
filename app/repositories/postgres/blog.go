package postgres

import (
	"github.com/jmoiron/sqlx"

	"fairway/app/models"
	"fairway/app/repositories"
)

const blogColumns = `id, title, slug, summary, content, category, status, meta_title, meta_description,
	meta_keywords, featured_image, published_at, view_count, calendar_id, created_at, updated_at`

type BlogRepository struct {
	db *sqlx.DB
}

func (r *BlogRepository) Create(post *models.BlogPost) error {
	id, err := insertReturningID(r.db, `INSERT INTO blog_posts
		(title, slug, summary, content, category, status, meta_title, meta_description, meta_keywords,
		 featured_image, published_at, view_count, calendar_id, created_at, updated_at)
		VALUES (:title, :slug, :summary, :content, :category, :status, :meta_title, :meta_description,
		 :meta_keywords, :featured_image, :published_at, :view_count, :calendar_id, :created_at, :updated_at)
		RETURNING id`, post)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *BlogRepository) GetByID(id int) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.Get(&post, "SELECT "+blogColumns+" FROM blog_posts WHERE id = $1", id); err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

func (r *BlogRepository) GetBySlug(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	if err := r.db.Get(&post, "SELECT "+blogColumns+" FROM blog_posts WHERE slug = $1", slug); err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

func (r *BlogRepository) List(q repositories.BlogQuery) ([]*models.BlogPost, int, error) {
	q = q.Normalize()
	var f filter
	if q.Status != "" {
		f.add("status = ?", q.Status)
	}
	if q.Category != "" {
		f.add("category = ?", q.Category)
	}
	posts := []*models.BlogPost{}
	total, err := selectPage(r.db, &posts, "blog_posts", blogColumns, &f, orderClause(q.SortBy, q.SortOrder), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *BlogRepository) Update(post *models.BlogPost) error {
	return execNamed(r.db, `UPDATE blog_posts SET
		title = :title, slug = :slug, summary = :summary, content = :content, category = :category,
		status = :status, meta_title = :meta_title, meta_description = :meta_description,
		meta_keywords = :meta_keywords, featured_image = :featured_image, published_at = :published_at,
		view_count = :view_count, calendar_id = :calendar_id, updated_at = :updated_at
		WHERE id = :id`, post)
}

func (r *BlogRepository) Delete(id int) error {
	return execAffecting(r.db, "DELETE FROM blog_posts WHERE id = $1", id)
}
