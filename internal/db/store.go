package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrKeyNotFound is returned by Get when the key has no value.
var ErrKeyNotFound = errors.New("key not found")

// Entry is one key/value pair returned by Scan.
type Entry struct {
	Key   string
	Value []byte
}

// Tx is the read/write surface shared by stores and their transactions.
type Tx interface {
	Get(ctx context.Context, key string) ([]byte, error)
	// Scan returns every entry whose key starts with prefix, ordered by key.
	Scan(ctx context.Context, prefix string) ([]Entry, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is the durable key-value capability the booking core runs on.
// Calls made directly on a Store commit immediately. Update runs fn inside
// one transaction: all writes made through tx land together or not at all.
// fn must use tx, never the Store itself.
type Store interface {
	Tx
	Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}

// GetJSON decodes the value at key into dst. It reports false when the key is absent.
func GetJSON(ctx context.Context, tx Tx, key string, dst any) (bool, error) {
	raw, err := tx.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// PutJSON encodes v and stores it at key.
func PutJSON(ctx context.Context, tx Tx, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return tx.Put(ctx, key, raw)
}

// likePrefix turns a key prefix into a LIKE pattern escaped with '!'.
func likePrefix(prefix string) string {
	out := make([]byte, 0, len(prefix)+1)
	for i := 0; i < len(prefix); i++ {
		switch c := prefix[i]; c {
		case '!', '%', '_':
			out = append(out, '!', c)
		default:
			out = append(out, c)
		}
	}
	return string(append(out, '%'))
}
