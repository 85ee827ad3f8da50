package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerMessageLogRepository keys each log by its (content id, phone) pair
type BadgerMessageLogRepository struct {
	db *badger.DB
}

func NewBadgerMessageLogRepository(db *badger.DB) *BadgerMessageLogRepository {
	return &BadgerMessageLogRepository{db: db}
}

func logKey(contentID, phone string) []byte {
	return []byte(MessageLogKeyPrefix + contentID + "|" + phone)
}

// Upsert keeps the original id when replacing an existing log
func (r *BadgerMessageLogRepository) Upsert(l *models.MessageLog) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := logKey(l.ContentID, l.CustomerPhone)
		var old models.MessageLog
		switch err := getEntity(txn, key, &old); err {
		case nil:
			l.ID = old.ID
		case ErrNotFound:
			id, err := getNextID(txn, MessageLogSeqKey)
			if err != nil {
				return err
			}
			l.ID = id
		default:
			return err
		}
		return putEntity(txn, key, l)
	})
}

func (r *BadgerMessageLogRepository) SentPhones(contentID string, phones []string) (map[string]bool, error) {
	out := make(map[string]bool)
	err := r.db.View(func(txn *badger.Txn) error {
		for phone := range phoneSet(phones) {
			err := mustExist(txn, logKey(contentID, phone))
			if err == nil {
				out[phone] = true
			} else if err != ErrNotFound {
				return err
			}
		}
		return nil
	})
	return out, err
}

func (r *BadgerMessageLogRepository) ListByPhones(phones []string, limit, offset int) ([]*models.MessageLog, int, error) {
	want := phoneSet(phones)
	var logs []*models.MessageLog
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		logs, err = scanPrefix[models.MessageLog](txn, MessageLogKeyPrefix)
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	logs = Filter(logs, func(l *models.MessageLog) bool { return want[l.CustomerPhone] })
	SortLogs(logs)
	return Paginate(logs, limit, offset), len(logs), nil
}
