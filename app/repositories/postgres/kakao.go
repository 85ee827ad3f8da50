package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fairway/app/models"
)

type KakaoRepository struct {
	db *sqlx.DB
}

func (r *KakaoRepository) UpsertFriend(f *models.KakaoFriend) error {
	q, args, err := sqlx.Named(`INSERT INTO kakao_friends (uuid, phone, nickname, created_at)
		VALUES (:uuid, :phone, :nickname, :created_at)
		ON CONFLICT (uuid) DO UPDATE SET phone = EXCLUDED.phone, nickname = EXCLUDED.nickname`, f)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(r.db.Rebind(q), args...)
	return mapErr(err)
}

func (r *KakaoRepository) UUIDsByPhones(phones []string) (map[string]string, error) {
	var rows []models.KakaoFriend
	if err := r.db.Select(&rows, "SELECT uuid, phone FROM kakao_friends WHERE phone = ANY($1)", pq.Array(phones)); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, f := range rows {
		out[f.Phone] = f.UUID
	}
	return out, nil
}

func (r *KakaoRepository) PhonesByUUIDs(uuids []string) (map[string]string, error) {
	var rows []models.KakaoFriend
	if err := r.db.Select(&rows, "SELECT uuid, phone FROM kakao_friends WHERE uuid = ANY($1)", pq.Array(uuids)); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(rows))
	for _, f := range rows {
		out[f.UUID] = f.Phone
	}
	return out, nil
}

func (r *KakaoRepository) CreateGroup(g *models.KakaoFriendGroup) error {
	id, err := insertReturningID(r.db, `INSERT INTO kakao_friend_groups (name, uuids, active, created_at)
		VALUES (:name, :uuids, :active, :created_at) RETURNING id`, g)
	if err != nil {
		return err
	}
	g.ID = id
	return nil
}

func (r *KakaoRepository) GetGroup(id int) (*models.KakaoFriendGroup, error) {
	var g models.KakaoFriendGroup
	if err := r.db.Get(&g, "SELECT id, name, uuids, active, created_at FROM kakao_friend_groups WHERE id = $1", id); err != nil {
		return nil, mapErr(err)
	}
	return &g, nil
}
