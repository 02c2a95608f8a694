package storage

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrCorrupt is returned by GetJSON when a stored value does not decode.
var ErrCorrupt = errors.New("corrupt value")

// GetJSON decodes the value at key into v. A missing key returns ErrNotFound
// and an undecodable one returns ErrCorrupt.
func GetJSON(db DB, key string, v any) error {
	data, err := db.Get([]byte(key))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrCorrupt, key, err)
	}
	return nil
}

// PutJSON encodes v and stores it at key with a single Put.
func PutJSON(db DB, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return db.Put([]byte(key), data)
}
