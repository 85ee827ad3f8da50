package postgres

import (
	"github.com/jmoiron/sqlx"

	"fairway/app/models"
	"fairway/app/repositories"
)

const calendarColumns = `id, title, content_type, channel_type, target_audience, target_audience_type,
	content_date, status, blog_post_id, parent_content_id, is_root_content, content_body, landing_page_url,
	conversion_goals, derived_content_count, multichannel_status, created_at, updated_at`

type CalendarRepository struct {
	db *sqlx.DB
}

func (r *CalendarRepository) Create(e *models.CalendarEntry) error {
	id, err := insertReturningID(r.db, `INSERT INTO content_calendar
		(title, content_type, channel_type, target_audience, target_audience_type, content_date, status,
		 blog_post_id, parent_content_id, is_root_content, content_body, landing_page_url, conversion_goals,
		 derived_content_count, multichannel_status, created_at, updated_at)
		VALUES (:title, :content_type, :channel_type, :target_audience, :target_audience_type, :content_date,
		 :status, :blog_post_id, :parent_content_id, :is_root_content, :content_body, :landing_page_url,
		 :conversion_goals, :derived_content_count, :multichannel_status, :created_at, :updated_at)
		RETURNING id`, e)
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

func (r *CalendarRepository) GetByID(id int) (*models.CalendarEntry, error) {
	var e models.CalendarEntry
	if err := r.db.Get(&e, "SELECT "+calendarColumns+" FROM content_calendar WHERE id = $1", id); err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *CalendarRepository) FindRoot(blogPostID int) (*models.CalendarEntry, error) {
	var e models.CalendarEntry
	err := r.db.Get(&e, "SELECT "+calendarColumns+` FROM content_calendar
		WHERE blog_post_id = $1 AND is_root_content = TRUE ORDER BY id LIMIT 1`, blogPostID)
	if err != nil {
		return nil, mapErr(err)
	}
	return &e, nil
}

func (r *CalendarRepository) ListDerived(parentID, blogPostID int) ([]*models.CalendarEntry, error) {
	es := []*models.CalendarEntry{}
	err := r.db.Select(&es, "SELECT "+calendarColumns+` FROM content_calendar
		WHERE content_type = 'social' AND is_root_content = FALSE
		AND (parent_content_id = $1 OR blog_post_id = $2)
		ORDER BY content_date ASC, id ASC`, parentID, blogPostID)
	if err != nil {
		return nil, err
	}
	return es, nil
}

func (r *CalendarRepository) List(q repositories.CalendarQuery) ([]*models.CalendarEntry, int, error) {
	var f filter
	if !q.From.IsZero() {
		f.add("content_date >= ?", q.From)
	}
	if !q.To.IsZero() {
		f.add("content_date <= ?", q.To)
	}
	if q.ContentType != "" {
		f.add("content_type = ?", q.ContentType)
	}
	if q.Status != "" {
		f.add("status = ?", q.Status)
	}
	es := []*models.CalendarEntry{}
	total, err := selectPage(r.db, &es, "content_calendar", calendarColumns, &f,
		" ORDER BY content_date ASC, id ASC", q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	return es, total, nil
}

func (r *CalendarRepository) Update(e *models.CalendarEntry) error {
	return execNamed(r.db, `UPDATE content_calendar SET
		title = :title, content_type = :content_type, channel_type = :channel_type,
		target_audience = :target_audience, target_audience_type = :target_audience_type,
		content_date = :content_date, status = :status, blog_post_id = :blog_post_id,
		parent_content_id = :parent_content_id, is_root_content = :is_root_content,
		content_body = :content_body, landing_page_url = :landing_page_url,
		conversion_goals = :conversion_goals, derived_content_count = :derived_content_count,
		multichannel_status = :multichannel_status, updated_at = :updated_at
		WHERE id = :id`, e)
}

func (r *CalendarRepository) Delete(id int) error {
	return execAffecting(r.db, "DELETE FROM content_calendar WHERE id = $1", id)
}
