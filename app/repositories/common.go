package repositories

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const (
	// Key prefixes for different entity types
	BlogKeyPrefix        = "blog:"
	BlogSlugKeyPrefix    = "blog_slug:"
	ChannelKeyPrefix     = "channel:"
	CustomerKeyPrefix    = "customer:"
	CustomerPhonePrefix  = "customer_phone:"
	MessageLogKeyPrefix  = "log:"
	CalendarKeyPrefix    = "calendar:"
	KakaoFriendKeyPrefix = "kakao_friend:"
	KakaoGroupKeyPrefix  = "kakao_group:"
	ShortLinkKeyPrefix   = "short:"

	// Sequence keys for auto-incrementing IDs
	BlogSeqKey       = "seq:blog"
	ChannelSeqKey    = "seq:channel"
	CustomerSeqKey   = "seq:customer"
	MessageLogSeqKey = "seq:log"
	CalendarSeqKey   = "seq:calendar"
	KakaoGroupSeqKey = "seq:kakao_group"
)

// getNextID gets the next available ID for a given sequence key
func getNextID(txn *badger.Txn, seqKey string) (int, error) {
	var id int
	item, err := txn.Get([]byte(seqKey))
	if err == badger.ErrKeyNotFound {
		id = 1
	} else if err != nil {
		return 0, err
	} else {
		err = item.Value(func(val []byte) error {
			id = int(val[0])<<24 | int(val[1])<<16 | int(val[2])<<8 | int(val[3])
			return nil
		})
		if err != nil {
			return 0, err
		}
		id++
	}

	// Store new ID
	idBytes := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	if err := txn.Set([]byte(seqKey), idBytes); err != nil {
		return 0, err
	}

	return id, nil
}

func idKey(prefix string, id int) []byte {
	return []byte(fmt.Sprintf("%s%d", prefix, id))
}

// marshalEntity marshals an entity to JSON
func marshalEntity(entity interface{}) ([]byte, error) {
	data, err := json.Marshal(entity)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal entity: %w", err)
	}
	return data, nil
}

// unmarshalEntity unmarshals JSON data into an entity
func unmarshalEntity(data []byte, entity interface{}) error {
	if err := json.Unmarshal(data, entity); err != nil {
		return fmt.Errorf("failed to unmarshal entity: %w", err)
	}
	return nil
}

// getEntity loads key into entity, mapping a missing key to ErrNotFound
func getEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return unmarshalEntity(val, entity)
	})
}

func putEntity(txn *badger.Txn, key []byte, entity interface{}) error {
	data, err := marshalEntity(entity)
	if err != nil {
		return err
	}
	return txn.Set(key, data)
}

// mustExist returns ErrNotFound when key is absent
func mustExist(txn *badger.Txn, key []byte) error {
	_, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	return err
}

// scanPrefix decodes every value stored under prefix
func scanPrefix[T any](txn *badger.Txn, prefix string) ([]*T, error) {
	var out []*T
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	p := []byte(prefix)
	for it.Seek(p); it.ValidForPrefix(p); it.Next() {
		var v T
		if err := it.Item().Value(func(val []byte) error {
			return unmarshalEntity(val, &v)
		}); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", it.Item().Key(), err)
		}
		out = append(out, &v)
	}
	return out, nil
}

func getIndex(txn *badger.Txn, key string) (int, error) {
	var id int
	if err := getEntity(txn, []byte(key), &id); err != nil {
		return 0, err
	}
	return id, nil
}
