package postgres

import (
	"time"

	"github.com/jmoiron/sqlx"

	"fairway/app/models"
	"fairway/app/repositories"
)

const channelColumns = `id, channel, title, content, message_type, template_type, template_id, button_text,
	button_link, image_url, image_id, short_link, recipient_numbers, recipient_uuids, friend_group_id, status,
	scheduled_at, sent_at, sent_count, success_count, fail_count, group_id, calendar_id, blog_post_id, note,
	send_errors, created_at, updated_at`

type ChannelRepository struct {
	db *sqlx.DB
}

func (r *ChannelRepository) Create(post *models.ChannelPost) error {
	id, err := insertReturningID(r.db, `INSERT INTO channel_posts
		(channel, title, content, message_type, template_type, template_id, button_text, button_link,
		 image_url, image_id, short_link, recipient_numbers, recipient_uuids, friend_group_id, status,
		 scheduled_at, sent_at, sent_count, success_count, fail_count, group_id, calendar_id, blog_post_id,
		 note, send_errors, created_at, updated_at)
		VALUES (:channel, :title, :content, :message_type, :template_type, :template_id, :button_text,
		 :button_link, :image_url, :image_id, :short_link, :recipient_numbers, :recipient_uuids,
		 :friend_group_id, :status, :scheduled_at, :sent_at, :sent_count, :success_count, :fail_count,
		 :group_id, :calendar_id, :blog_post_id, :note, :send_errors, :created_at, :updated_at)
		RETURNING id`, post)
	if err != nil {
		return err
	}
	post.ID = id
	return nil
}

func (r *ChannelRepository) GetByID(id int) (*models.ChannelPost, error) {
	var post models.ChannelPost
	if err := r.db.Get(&post, "SELECT "+channelColumns+" FROM channel_posts WHERE id = $1", id); err != nil {
		return nil, mapErr(err)
	}
	return &post, nil
}

func (r *ChannelRepository) List(q repositories.ChannelQuery) ([]*models.ChannelPost, int, error) {
	var f filter
	if q.Channel != "" {
		f.add("channel = ?", q.Channel)
	}
	if q.Status != "" {
		f.add("status = ?", q.Status)
	}
	posts := []*models.ChannelPost{}
	total, err := selectPage(r.db, &posts, "channel_posts", channelColumns, &f, orderClause("created_at", repositories.SortDesc), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *ChannelRepository) ListDue(now time.Time) ([]*models.ChannelPost, error) {
	posts := []*models.ChannelPost{}
	err := r.db.Select(&posts, "SELECT "+channelColumns+` FROM channel_posts
		WHERE channel = $1 AND status = $2 AND scheduled_at IS NOT NULL AND scheduled_at <= $3
		ORDER BY scheduled_at ASC, id ASC`, models.ChannelSMS, models.StatusDraft, now)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *ChannelRepository) Update(post *models.ChannelPost) error {
	return execNamed(r.db, `UPDATE channel_posts SET
		title = :title, content = :content, message_type = :message_type, template_type = :template_type,
		template_id = :template_id, button_text = :button_text, button_link = :button_link,
		image_url = :image_url, image_id = :image_id, short_link = :short_link,
		recipient_numbers = :recipient_numbers, recipient_uuids = :recipient_uuids,
		friend_group_id = :friend_group_id, status = :status, scheduled_at = :scheduled_at,
		sent_at = :sent_at, sent_count = :sent_count, success_count = :success_count,
		fail_count = :fail_count, group_id = :group_id, calendar_id = :calendar_id,
		blog_post_id = :blog_post_id, note = :note, send_errors = :send_errors, updated_at = :updated_at
		WHERE id = :id`, post)
}

func (r *ChannelRepository) Delete(id int) error {
	return execAffecting(r.db, "DELETE FROM channel_posts WHERE id = $1", id)
}
