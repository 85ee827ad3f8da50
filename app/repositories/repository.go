package repositories

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// Set bundles one implementation of every repository.
type Set struct {
	Blog       BlogRepository
	Channels   ChannelRepository
	Customers  CustomerRepository
	Logs       MessageLogRepository
	Calendar   CalendarRepository
	Kakao      KakaoRepository
	ShortLinks ShortLinkRepository
}

// Store owns the Badger database backing the default repositories.
type Store struct {
	db       *badger.DB
	mutex    sync.RWMutex
	dbPath   string
	isTestDB bool
}

// NewStore opens the database at path. An empty path or "test_db" opens an
// isolated temporary database that is removed on Close.
func NewStore(path string) (*Store, error) {
	isTest := false
	if path == "" || path == "test_db" {
		tempPath, err := os.MkdirTemp("", "fairway_test_db_")
		if err != nil {
			return nil, fmt.Errorf("error creating temp dir: %w", err)
		}
		path = tempPath
		isTest = true
	}
	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, dbPath: path, isTestDB: isTest}, nil
}

// NewInMemoryStore opens a Badger instance that never touches disk.
func NewInMemoryStore() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// DB exposes the underlying handle for maintenance commands.
func (s *Store) DB() *badger.DB {
	return s.db
}

// Repositories returns Badger implementations sharing this store.
func (s *Store) Repositories() Set {
	return Set{
		Blog:       NewBadgerBlogRepository(s.db),
		Channels:   NewBadgerChannelRepository(s.db),
		Customers:  NewBadgerCustomerRepository(s.db),
		Logs:       NewBadgerMessageLogRepository(s.db),
		Calendar:   NewBadgerCalendarRepository(s.db),
		Kakao:      NewBadgerKakaoRepository(s.db),
		ShortLinks: NewBadgerShortLinkRepository(s.db),
	}
}

func (s *Store) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if err := s.db.Close(); err != nil {
		return err
	}

	// Clean up test database
	if s.isTestDB {
		if err := os.RemoveAll(s.dbPath); err != nil {
			return fmt.Errorf("failed to cleanup test database: %w", err)
		}
	}
	return nil
}

// Clear drops every key.
func (s *Store) Clear() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.db.DropAll()
}
