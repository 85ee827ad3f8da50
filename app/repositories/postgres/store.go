// Package postgres implements the repositories on PostgreSQL through sqlx.
// Queries are written with ? or :name placeholders and rebound for lib/pq.
package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"fairway/app/repositories"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const uniqueViolation = "23505"

// Open connects to dsn and verifies the connection.
func Open(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return db, nil
}

// Repositories returns PostgreSQL implementations sharing db.
func Repositories(db *sqlx.DB) repositories.Set {
	return repositories.Set{
		Blog:       &BlogRepository{db: db},
		Channels:   &ChannelRepository{db: db},
		Customers:  &CustomerRepository{db: db},
		Logs:       &MessageLogRepository{db: db},
		Calendar:   &CalendarRepository{db: db},
		Kakao:      &KakaoRepository{db: db},
		ShortLinks: &ShortLinkRepository{db: db},
	}
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return nil, err
	}
	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		return nil, err
	}
	return migrate.NewWithInstance("iofs", src, "postgres", driver)
}

// MigrateUp applies every pending migration.
func MigrateUp(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// MigrateDown rolls back every migration.
func MigrateDown(db *sql.DB) error {
	m, err := newMigrator(db)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// mapErr translates driver errors into repository sentinels.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return repositories.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return repositories.ErrConflict
	}
	return err
}

// insertReturningID runs a named INSERT ... RETURNING id.
func insertReturningID(db *sqlx.DB, query string, arg interface{}) (int, error) {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return 0, err
	}
	var id int
	if err := db.QueryRowx(db.Rebind(q), args...).Scan(&id); err != nil {
		return 0, mapErr(err)
	}
	return id, nil
}

// execNamed runs a named statement and reports ErrNotFound when it touched no row.
func execNamed(db *sqlx.DB, query string, arg interface{}) error {
	q, args, err := sqlx.Named(query, arg)
	if err != nil {
		return err
	}
	return execAffecting(db, db.Rebind(q), args...)
}

func execAffecting(db *sqlx.DB, query string, args ...interface{}) error {
	res, err := db.Exec(query, args...)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// filter accumulates AND-ed WHERE clauses with ? placeholders.
type filter struct {
	clauses []string
	args    []interface{}
}

func (f *filter) add(clause string, args ...interface{}) {
	f.clauses = append(f.clauses, clause)
	f.args = append(f.args, args...)
}

func (f *filter) String() string {
	if len(f.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.clauses, " AND ")
}

// page appends LIMIT/OFFSET. A non-positive limit means no limit.
func page(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}

func orderClause(column, order string) string {
	if order == repositories.SortAsc {
		return fmt.Sprintf(" ORDER BY %s ASC NULLS FIRST, id ASC", column)
	}
	return fmt.Sprintf(" ORDER BY %s DESC NULLS LAST, id DESC", column)
}

// selectPage runs a count and a page query sharing the same filter.
func selectPage(db *sqlx.DB, dest interface{}, table, columns string, f *filter, order string, limit, offset int) (int, error) {
	var total int
	if err := db.Get(&total, db.Rebind("SELECT COUNT(*) FROM "+table+f.String()), f.args...); err != nil {
		return 0, err
	}
	q, args := page("SELECT "+columns+" FROM "+table+f.String()+order, append([]interface{}{}, f.args...), limit, offset)
	if err := db.Select(dest, db.Rebind(q), args...); err != nil {
		return 0, err
	}
	return total, nil
}
