package postgres

import (
	"github.com/jmoiron/sqlx"

	"fairway/app/models"
)

type ShortLinkRepository struct {
	db *sqlx.DB
}

func (r *ShortLinkRepository) Create(l *models.ShortLink) error {
	q, args, err := sqlx.Named(`INSERT INTO short_links (code, target_url, hits, created_at)
		VALUES (:code, :target_url, :hits, :created_at)`, l)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(r.db.Rebind(q), args...)
	return mapErr(err)
}

func (r *ShortLinkRepository) Get(code string) (*models.ShortLink, error) {
	var l models.ShortLink
	if err := r.db.Get(&l, "SELECT code, target_url, hits, created_at FROM short_links WHERE code = $1", code); err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (r *ShortLinkRepository) FindByTarget(target string) (*models.ShortLink, error) {
	var l models.ShortLink
	err := r.db.Get(&l, `SELECT code, target_url, hits, created_at FROM short_links
		WHERE target_url = $1 ORDER BY created_at LIMIT 1`, target)
	if err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}

func (r *ShortLinkRepository) IncrementHits(code string) (*models.ShortLink, error) {
	var l models.ShortLink
	err := r.db.Get(&l, `UPDATE short_links SET hits = hits + 1 WHERE code = $1
		RETURNING code, target_url, hits, created_at`, code)
	if err != nil {
		return nil, mapErr(err)
	}
	return &l, nil
}
