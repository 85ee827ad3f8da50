package repositories

import (
	"time"

	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerChannelRepository implements ChannelRepository using BadgerDB
type BadgerChannelRepository struct {
	db *badger.DB
}

func NewBadgerChannelRepository(db *badger.DB) *BadgerChannelRepository {
	return &BadgerChannelRepository{db: db}
}

func (r *BadgerChannelRepository) Create(post *models.ChannelPost) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, ChannelSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		return putEntity(txn, idKey(ChannelKeyPrefix, id), post)
	})
}

func (r *BadgerChannelRepository) GetByID(id int) (*models.ChannelPost, error) {
	var post models.ChannelPost
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(ChannelKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *BadgerChannelRepository) all() ([]*models.ChannelPost, error) {
	var posts []*models.ChannelPost
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		posts, err = scanPrefix[models.ChannelPost](txn, ChannelKeyPrefix)
		return err
	})
	return posts, err
}

func (r *BadgerChannelRepository) List(q ChannelQuery) ([]*models.ChannelPost, int, error) {
	posts, err := r.all()
	if err != nil {
		return nil, 0, err
	}
	posts = Filter(posts, q.Match)
	SortChannelPosts(posts)
	return Paginate(posts, q.Limit, q.Offset), len(posts), nil
}

func (r *BadgerChannelRepository) ListDue(now time.Time) ([]*models.ChannelPost, error) {
	posts, err := r.all()
	if err != nil {
		return nil, err
	}
	posts = Filter(posts, func(p *models.ChannelPost) bool {
		return p.Channel == models.ChannelSMS && p.IsDue(now)
	})
	SortDue(posts)
	return posts, nil
}

func (r *BadgerChannelRepository) Update(post *models.ChannelPost) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := idKey(ChannelKeyPrefix, post.ID)
		if err := mustExist(txn, key); err != nil {
			return err
		}
		return putEntity(txn, key, post)
	})
}

func (r *BadgerChannelRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := idKey(ChannelKeyPrefix, id)
		if err := mustExist(txn, key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
