package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is a list of strings stored as a JSON array column.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(l))
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src interface{}) error {
	data, err := scanBytes(src)
	if err != nil || data == nil {
		*l = nil
		return err
	}
	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		// A bare scalar is treated as a single element list.
		out = []string{string(data)}
	}
	*l = out
	return nil
}

// Value implements driver.Valuer.
func (a Audience) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *Audience) Scan(src interface{}) error {
	data, err := scanBytes(src)
	if err != nil || data == nil {
		*a = Audience{}
		return err
	}
	return json.Unmarshal(data, a)
}

func scanBytes(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported column type %T", src)
	}
}
