package postgres

import (
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fairway/app/messaging"
	"fairway/app/models"
	"fairway/app/repositories"
)

const customerColumns = `id, name, phone, address, vip_level, opt_out, first_purchase_date,
	last_purchase_date, last_contact_date, first_inquiry_date, created_at, updated_at`

type CustomerRepository struct {
	db *sqlx.DB
}

func (r *CustomerRepository) Create(c *models.Customer) error {
	id, err := insertReturningID(r.db, `INSERT INTO customers
		(name, phone, address, vip_level, opt_out, first_purchase_date, last_purchase_date,
		 last_contact_date, first_inquiry_date, created_at, updated_at)
		VALUES (:name, :phone, :address, :vip_level, :opt_out, :first_purchase_date, :last_purchase_date,
		 :last_contact_date, :first_inquiry_date, :created_at, :updated_at)
		RETURNING id`, c)
	if err != nil {
		return err
	}
	c.ID = id
	return nil
}

func (r *CustomerRepository) GetByID(id int) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Get(&c, "SELECT "+customerColumns+" FROM customers WHERE id = $1", id); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CustomerRepository) GetByPhone(phone string) (*models.Customer, error) {
	var c models.Customer
	if err := r.db.Get(&c, "SELECT "+customerColumns+" FROM customers WHERE phone = $1", phone); err != nil {
		return nil, mapErr(err)
	}
	return &c, nil
}

func (r *CustomerRepository) List(q repositories.CustomerQuery) ([]*models.Customer, int, error) {
	q = q.Normalize()
	var f filter
	if q.Search != "" {
		like := "%" + q.Search + "%"
		if digits := messaging.NormalizePhone(q.Search); digits != "" {
			f.add("(name ILIKE ? OR address ILIKE ? OR phone LIKE ?)", like, like, "%"+digits+"%")
		} else {
			f.add("(name ILIKE ? OR address ILIKE ?)", like, like)
		}
	}
	if q.VIPLevel != "" {
		f.add("vip_level = ?", q.VIPLevel)
	}
	if q.OptOut != nil {
		f.add("opt_out = ?", *q.OptOut)
	}
	if q.Purchased != nil {
		if *q.Purchased {
			f.add("(first_purchase_date IS NOT NULL OR last_purchase_date IS NOT NULL)")
		} else {
			f.add("first_purchase_date IS NULL AND last_purchase_date IS NULL")
		}
	}
	if q.ContactDays > 0 {
		cutoff := q.ContactCutoff()
		f.add("(last_contact_date >= ? OR first_inquiry_date >= ?)", cutoff, cutoff)
	}
	cs := []*models.Customer{}
	total, err := selectPage(r.db, &cs, "customers", customerColumns, &f, orderClause(q.SortBy, q.SortOrder), q.Limit, q.Offset)
	if err != nil {
		return nil, 0, err
	}
	return cs, total, nil
}

func (r *CustomerRepository) Update(c *models.Customer) error {
	return execNamed(r.db, `UPDATE customers SET
		name = :name, phone = :phone, address = :address, vip_level = :vip_level, opt_out = :opt_out,
		first_purchase_date = :first_purchase_date, last_purchase_date = :last_purchase_date,
		last_contact_date = :last_contact_date, first_inquiry_date = :first_inquiry_date,
		updated_at = :updated_at
		WHERE id = :id`, c)
}

func (r *CustomerRepository) Delete(id int) error {
	return execAffecting(r.db, "DELETE FROM customers WHERE id = $1", id)
}

func (r *CustomerRepository) OptedOut(phones []string) (map[string]bool, error) {
	var found []string
	err := r.db.Select(&found, "SELECT phone FROM customers WHERE opt_out = TRUE AND phone = ANY($1)", pq.Array(phones))
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(found))
	for _, p := range found {
		out[p] = true
	}
	return out, nil
}
