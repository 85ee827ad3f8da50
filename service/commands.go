package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v4"

	"fairway/app/repositories/postgres"
)

// ErrCancelled is returned when the operator declines a destructive step.
var ErrCancelled = errors.New("operation cancelled")

func openBadger(path string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(path).WithLogger(nil))
}

// InitDB creates an empty database at path.
func InitDB(path string, out io.Writer) error {
	if exists(path) {
		return fmt.Errorf("database already exists at %s; run 'db clean' first to reinitialize", path)
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := openBadger(path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

// BackupDB writes a full backup of the database at path into dir and
// returns the backup file name.
func BackupDB(path, dir string, out io.Writer) (string, error) {
	if !exists(path) {
		return "", fmt.Errorf("no database exists at %s", path)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	db, err := openBadger(path)
	if err != nil {
		return "", fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	backupFile := filepath.Join(dir, fmt.Sprintf("backup_%s.db", time.Now().UTC().Format("20060102T150405.000000000")))
	f, err := os.Create(backupFile)
	if err != nil {
		return "", fmt.Errorf("failed to create backup file: %w", err)
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		return "", fmt.Errorf("failed to backup database: %w", err)
	}

	fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
	return backupFile, nil
}

// RestoreDB replaces the database at path with the contents of backupFile.
// An existing database is only replaced after confirmation unless force is set.
func RestoreDB(path, backupFile string, in io.Reader, out io.Writer, force bool) (err error) {
	fi, err := os.Stat(backupFile)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", backupFile)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", backupFile)
	}

	if exists(path) {
		if !force && !confirm(in, out, "Existing database found. Do you want to replace it?") {
			return ErrCancelled
		}
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := openBadger(path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	f, err := os.Open(backupFile)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic occurred during restore: %v", r)
		}
	}()
	if err := db.Load(f, 4); err != nil {
		return fmt.Errorf("failed to restore database: %w", err)
	}

	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

// CleanDB removes the database at path after confirmation unless force is set.
func CleanDB(path string, in io.Reader, out io.Writer, force bool) error {
	if !exists(path) {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !force && !confirm(in, out, "Are you sure you want to clean the database? This cannot be undone.") {
		return ErrCancelled
	}
	if err := os.RemoveAll(path); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

// Migrate applies (up) or rolls back (down) the PostgreSQL schema.
func Migrate(dsn string, up bool, out io.Writer) error {
	if dsn == "" {
		return errors.New("DATABASE_URL is required for migrations")
	}
	db, err := postgres.Open(dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	if up {
		if err := postgres.MigrateUp(db.DB); err != nil {
			return err
		}
		fmt.Fprintln(out, "Migrations applied")
		return nil
	}
	if err := postgres.MigrateDown(db.DB); err != nil {
		return err
	}
	fmt.Fprintln(out, "Migrations rolled back")
	return nil
}
