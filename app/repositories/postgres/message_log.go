package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fairway/app/models"
)

type MessageLogRepository struct {
	db *sqlx.DB
}

func (r *MessageLogRepository) Upsert(l *models.MessageLog) error {
	id, err := insertReturningID(r.db, `INSERT INTO message_logs
		(content_id, customer_phone, message_type, status, channel, sent_at)
		VALUES (:content_id, :customer_phone, :message_type, :status, :channel, :sent_at)
		ON CONFLICT (content_id, customer_phone) DO UPDATE SET
		message_type = EXCLUDED.message_type, status = EXCLUDED.status,
		channel = EXCLUDED.channel, sent_at = EXCLUDED.sent_at
		RETURNING id`, l)
	if err != nil {
		return err
	}
	l.ID = id
	return nil
}

func (r *MessageLogRepository) SentPhones(contentID string, phones []string) (map[string]bool, error) {
	var found []string
	err := r.db.Select(&found, "SELECT customer_phone FROM message_logs WHERE content_id = $1 AND customer_phone = ANY($2)",
		contentID, pq.Array(phones))
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(found))
	for _, p := range found {
		out[p] = true
	}
	return out, nil
}

func (r *MessageLogRepository) ListByPhones(phones []string, limit, offset int) ([]*models.MessageLog, int, error) {
	var total int
	if err := r.db.Get(&total, "SELECT COUNT(*) FROM message_logs WHERE customer_phone = ANY($1)", pq.Array(phones)); err != nil {
		return nil, 0, err
	}
	q, args := page(`SELECT id, content_id, customer_phone, message_type, status, channel, sent_at
		FROM message_logs WHERE customer_phone = ANY(?) ORDER BY sent_at DESC, id DESC`,
		[]interface{}{pq.Array(phones)}, limit, offset)
	logs := []*models.MessageLog{}
	if err := r.db.Select(&logs, r.db.Rebind(q), args...); err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}
