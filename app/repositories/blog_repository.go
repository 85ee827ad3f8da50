package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerBlogRepository implements BlogRepository using BadgerDB
type BadgerBlogRepository struct {
	db *badger.DB
}

// NewBadgerBlogRepository creates a new BadgerDB blog repository
func NewBadgerBlogRepository(db *badger.DB) *BadgerBlogRepository {
	return &BadgerBlogRepository{db: db}
}

func slugKey(slug string) string {
	return BlogSlugKeyPrefix + slug
}

// Create creates a new blog post. A slug already in use returns ErrConflict.
func (r *BadgerBlogRepository) Create(post *models.BlogPost) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if post.Slug != "" {
			if _, err := getIndex(txn, slugKey(post.Slug)); err == nil {
				return ErrConflict
			} else if err != ErrNotFound {
				return err
			}
		}

		id, err := getNextID(txn, BlogSeqKey)
		if err != nil {
			return err
		}
		post.ID = id

		if err := putEntity(txn, idKey(BlogKeyPrefix, id), post); err != nil {
			return err
		}
		if post.Slug != "" {
			return putEntity(txn, []byte(slugKey(post.Slug)), id)
		}
		return nil
	})
}

// GetByID retrieves a blog post by ID
func (r *BadgerBlogRepository) GetByID(id int) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(BlogKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetBySlug retrieves a blog post through the slug index
func (r *BadgerBlogRepository) GetBySlug(slug string) (*models.BlogPost, error) {
	var post models.BlogPost
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, slugKey(slug))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(BlogKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns a page of posts and the total number matching q
func (r *BadgerBlogRepository) List(q BlogQuery) ([]*models.BlogPost, int, error) {
	q = q.Normalize()
	var posts []*models.BlogPost
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = scanPrefix[models.BlogPost](txn, BlogKeyPrefix)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	posts = Filter(posts, q.Match)
	SortBlogPosts(posts, q.SortBy, q.SortOrder)
	return Paginate(posts, q.Limit, q.Offset), len(posts), nil
}

// Update updates an existing blog post and moves its slug index
func (r *BadgerBlogRepository) Update(post *models.BlogPost) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var old models.BlogPost
		if err := getEntity(txn, idKey(BlogKeyPrefix, post.ID), &old); err != nil {
			return err
		}

		if post.Slug != old.Slug {
			if post.Slug != "" {
				owner, err := getIndex(txn, slugKey(post.Slug))
				if err == nil && owner != post.ID {
					return ErrConflict
				} else if err != nil && err != ErrNotFound {
					return err
				}
				if err := putEntity(txn, []byte(slugKey(post.Slug)), post.ID); err != nil {
					return err
				}
			}
			if old.Slug != "" {
				if err := txn.Delete([]byte(slugKey(old.Slug))); err != nil {
					return err
				}
			}
		}

		return putEntity(txn, idKey(BlogKeyPrefix, post.ID), post)
	})
}

// Delete deletes a blog post by ID
func (r *BadgerBlogRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var old models.BlogPost
		if err := getEntity(txn, idKey(BlogKeyPrefix, id), &old); err != nil {
			return err
		}
		if old.Slug != "" {
			if err := txn.Delete([]byte(slugKey(old.Slug))); err != nil {
				return err
			}
		}
		return txn.Delete(idKey(BlogKeyPrefix, id))
	})
}
