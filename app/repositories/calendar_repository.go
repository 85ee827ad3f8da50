package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerCalendarRepository implements CalendarRepository using BadgerDB
type BadgerCalendarRepository struct {
	db *badger.DB
}

func NewBadgerCalendarRepository(db *badger.DB) *BadgerCalendarRepository {
	return &BadgerCalendarRepository{db: db}
}

func (r *BadgerCalendarRepository) Create(e *models.CalendarEntry) error {
	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, CalendarSeqKey)
		if err != nil {
			return err
		}
		e.ID = id
		return putEntity(txn, idKey(CalendarKeyPrefix, id), e)
	})
}

func (r *BadgerCalendarRepository) GetByID(id int) (*models.CalendarEntry, error) {
	var e models.CalendarEntry
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(CalendarKeyPrefix, id), &e)
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *BadgerCalendarRepository) all() ([]*models.CalendarEntry, error) {
	var es []*models.CalendarEntry
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		es, err = scanPrefix[models.CalendarEntry](txn, CalendarKeyPrefix)
		return err
	})
	if err != nil {
		return nil, err
	}
	SortCalendar(es)
	return es, nil
}

// FindRoot returns the lowest-id root entry for blogPostID
func (r *BadgerCalendarRepository) FindRoot(blogPostID int) (*models.CalendarEntry, error) {
	es, err := r.all()
	if err != nil {
		return nil, err
	}
	var root *models.CalendarEntry
	for _, e := range es {
		if e.IsRoot && e.BlogPostID != nil && *e.BlogPostID == blogPostID {
			if root == nil || e.ID < root.ID {
				root = e
			}
		}
	}
	if root == nil {
		return nil, ErrNotFound
	}
	return root, nil
}

func (r *BadgerCalendarRepository) ListDerived(parentID, blogPostID int) ([]*models.CalendarEntry, error) {
	es, err := r.all()
	if err != nil {
		return nil, err
	}
	return Filter(es, func(e *models.CalendarEntry) bool {
		return IsDerived(e, parentID, blogPostID)
	}), nil
}

func (r *BadgerCalendarRepository) List(q CalendarQuery) ([]*models.CalendarEntry, int, error) {
	es, err := r.all()
	if err != nil {
		return nil, 0, err
	}
	es = Filter(es, q.Match)
	return Paginate(es, q.Limit, q.Offset), len(es), nil
}

func (r *BadgerCalendarRepository) Update(e *models.CalendarEntry) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := idKey(CalendarKeyPrefix, e.ID)
		if err := mustExist(txn, key); err != nil {
			return err
		}
		return putEntity(txn, key, e)
	})
}

func (r *BadgerCalendarRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := idKey(CalendarKeyPrefix, id)
		if err := mustExist(txn, key); err != nil {
			return err
		}
		return txn.Delete(key)
	})
}
