package repositories

import (
	"github.com/dgraph-io/badger/v4"

	"fairway/app/models"
)

// BadgerCustomerRepository implements CustomerRepository using BadgerDB.
// Phones are unique through a customer_phone: index.
type BadgerCustomerRepository struct {
	db *badger.DB
}

func NewBadgerCustomerRepository(db *badger.DB) *BadgerCustomerRepository {
	return &BadgerCustomerRepository{db: db}
}

func phoneKey(phone string) []byte {
	return []byte(CustomerPhonePrefix + phone)
}

// Create stores c, returning ErrConflict when the phone is taken
func (r *BadgerCustomerRepository) Create(c *models.Customer) error {
	return r.db.Update(func(txn *badger.Txn) error {
		if err := mustExist(txn, phoneKey(c.Phone)); err == nil {
			return ErrConflict
		} else if err != ErrNotFound {
			return err
		}

		id, err := getNextID(txn, CustomerSeqKey)
		if err != nil {
			return err
		}
		c.ID = id
		if err := putEntity(txn, idKey(CustomerKeyPrefix, id), c); err != nil {
			return err
		}
		return putEntity(txn, phoneKey(c.Phone), id)
	})
}

func (r *BadgerCustomerRepository) GetByID(id int) (*models.Customer, error) {
	var c models.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, idKey(CustomerKeyPrefix, id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BadgerCustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	var c models.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		id, err := getIndex(txn, string(phoneKey(phone)))
		if err != nil {
			return err
		}
		return getEntity(txn, idKey(CustomerKeyPrefix, id), &c)
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *BadgerCustomerRepository) all() ([]*models.Customer, error) {
	var cs []*models.Customer
	err := r.db.View(func(txn *badger.Txn) error {
		var err error
		cs, err = scanPrefix[models.Customer](txn, CustomerKeyPrefix)
		return err
	})
	return cs, err
}

// List returns a page of customers and the total number matching q
func (r *BadgerCustomerRepository) List(q CustomerQuery) ([]*models.Customer, int, error) {
	q = q.Normalize()
	cs, err := r.all()
	if err != nil {
		return nil, 0, err
	}
	cs = Filter(cs, q.Match)
	SortCustomers(cs, q.SortBy, q.SortOrder)
	return Paginate(cs, q.Limit, q.Offset), len(cs), nil
}

func (r *BadgerCustomerRepository) Update(c *models.Customer) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var old models.Customer
		if err := getEntity(txn, idKey(CustomerKeyPrefix, c.ID), &old); err != nil {
			return err
		}
		if old.Phone != c.Phone {
			owner, err := getIndex(txn, string(phoneKey(c.Phone)))
			if err == nil && owner != c.ID {
				return ErrConflict
			} else if err != nil && err != ErrNotFound {
				return err
			}
			if err := txn.Delete(phoneKey(old.Phone)); err != nil {
				return err
			}
			if err := putEntity(txn, phoneKey(c.Phone), c.ID); err != nil {
				return err
			}
		}
		return putEntity(txn, idKey(CustomerKeyPrefix, c.ID), c)
	})
}

func (r *BadgerCustomerRepository) Delete(id int) error {
	return r.db.Update(func(txn *badger.Txn) error {
		var old models.Customer
		if err := getEntity(txn, idKey(CustomerKeyPrefix, id), &old); err != nil {
			return err
		}
		if err := txn.Delete(phoneKey(old.Phone)); err != nil {
			return err
		}
		return txn.Delete(idKey(CustomerKeyPrefix, id))
	})
}

// OptedOut looks each phone up through the index
func (r *BadgerCustomerRepository) OptedOut(phones []string) (map[string]bool, error) {
	out := make(map[string]bool)
	err := r.db.View(func(txn *badger.Txn) error {
		for phone := range phoneSet(phones) {
			id, err := getIndex(txn, string(phoneKey(phone)))
			if err == ErrNotFound {
				continue
			} else if err != nil {
				return err
			}
			var c models.Customer
			if err := getEntity(txn, idKey(CustomerKeyPrefix, id), &c); err != nil {
				return err
			}
			if c.OptOut {
				out[phone] = true
			}
		}
		return nil
	})
	return out, err
}
