package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerShortLinkRepository stores links under their code
type BadgerShortLinkRepository struct {
	db *badger.DB
}

func NewBadgerShortLinkRepository(db *badger.DB) *BadgerShortLinkRepository {
	return &BadgerShortLinkRepository{db: db}
}

func shortKey(code string) []byte {
	return []byte(ShortLinkKeyPrefix + code)
}

// Create returns ErrConflict when the code is taken
func (r *BadgerShortLinkRepository) Create(l *models.ShortLink) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, shortKey(l.Code)); err == nil {
			return ErrConflict
		} else if err != ErrNotFound {
			return err
		}
		return putEntity(txn, shortKey(l.Code), l)
	})
}

func (r *BadgerShortLinkRepository) Get(code string) (*models.ShortLink, error) {
	var l models.ShortLink
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, shortKey(code), &l)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *BadgerShortLinkRepository) FindByTarget(target string) (*models.ShortLink, error) {
	var found *models.ShortLink
	err := r.db.View(func(txn *badger.Txn) error {
		ls, err := scanPrefix[models.ShortLink](txn, ShortLinkKeyPrefix)
		if err != nil {
			return err
		}
		for _, l := range ls {
			if l.TargetURL == target {
				found = l
				return nil
			}
		}
		return ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (r *BadgerShortLinkRepository) IncrementHits(code string) (*models.ShortLink, error) {
	var l models.ShortLink
	err := r.db.Update(func(txn *badger.Txn) error {
		if err := getEntity(txn, shortKey(code), &l); err != nil {
			return err
		}
		l.Hits++
		return putEntity(txn, shortKey(code), &l)
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}
