package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/messaging"
	"fairway/app/models"
)

// BadgerKakaoRepository stores friends under their uuid and groups under a sequence id
type BadgerKakaoRepository struct {
	db *badger.DB
}

func NewBadgerKakaoRepository(db *badger.DB) *BadgerKakaoRepository {
	return &BadgerKakaoRepository{db: db}
}

func (r *BadgerKakaoRepository) UpsertFriend(f *models.KakaoFriend) error {
	f.Phone = messaging.NormalizePhone(f.Phone)
	return r.db.Update(func(txn *badger.Txn) error {
		return putEntity(txn, []byte(KakaoFriendKeyPrefix+f.UUID), f)
	})
}

func (r *BadgerKakaoRepository) friends() ([]*models.KakaoFriend, error) {
	var fs []*models.KakaoFriend
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		fs, err = scanPrefix[models.KakaoFriend](txn, KakaoFriendKeyPrefix)
		return err
	})
	return fs, err
}

func (r *BadgerKakaoRepository) UUIDsByPhones(phones []string) (map[string]string, error) {
	want := phoneSet(phones)
	fs, err := r.friends()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string)
	for _, f := range fs {
		if want[f.Phone] {
			out[f.Phone] = f.UUID
		}
	}
	return out, nil
}

func (r *BadgerKakaoRepository) PhonesByUUIDs(uuids []string) (map[string]string, error) {
	out := make(map[string]string)
	err := r.db.View(func(txn *badger.Txn) error {
		for _, id := range uuids {
			var f models.KakaoFriend
			err := getEntity(txn, []byte(KakaoFriendKeyPrefix+id), &f)
			if err == ErrNotFound {
				continue
			} else if err != nil {
				return err
			}
			out[id] = f.Phone
		}
		return nil
	})
	return out, err
}

func (r *BadgerKakaoRepository) CreateGroup(g *models.KakaoFriendGroup) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, KakaoGroupSeqKey)
		if err != nil {
			return err
		}
		g.ID = id
		return putEntity(txn, idKey(KakaoGroupKeyPrefix, id), g)
	})
}

func (r *BadgerKakaoRepository) GetGroup(id int) (*models.KakaoFriendGroup, error) {
	var g models.KakaoFriendGroup
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(KakaoGroupKeyPrefix, id), &g)
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}
