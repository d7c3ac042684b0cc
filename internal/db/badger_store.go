package db

import (
	"context"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
)

// BadgerStore is an embedded, on-disk store. An empty dir opens it in memory.
type BadgerStore struct {
	DB *badger.DB
}

func OpenBadger(dir string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	bdb, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{DB: bdb}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) ([]byte, error) {
	var out []byte
	err := s.DB.View(func(txn *badger.Txn) error {
		v, err := badgerTx{txn: txn}.Get(ctx, key)
		out = v
		return err
	})
	return out, err
}

func (s *BadgerStore) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	var out []Entry
	err := s.DB.View(func(txn *badger.Txn) error {
		entries, err := badgerTx{txn: txn}.Scan(ctx, prefix)
		out = entries
		return err
	})
	return out, err
}

func (s *BadgerStore) Put(ctx context.Context, key string, value []byte) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return badgerTx{txn: txn}.Put(ctx, key, value)
	})
}

func (s *BadgerStore) Delete(ctx context.Context, key string) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return badgerTx{txn: txn}.Delete(ctx, key)
	})
}

func (s *BadgerStore) Update(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return s.DB.Update(func(txn *badger.Txn) error {
		return fn(ctx, badgerTx{txn: txn})
	})
}

func (s *BadgerStore) Close() error {
	return s.DB.Close()
}

type badgerTx struct {
	txn *badger.Txn
}

func (t badgerTx) Get(_ context.Context, key string) ([]byte, error) {
	item, err := t.txn.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return v, nil
}

func (t badgerTx) Scan(_ context.Context, prefix string) ([]Entry, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	out := []Entry{}
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		v, err := item.ValueCopy(nil)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", prefix, err)
		}
		out = append(out, Entry{Key: string(item.KeyCopy(nil)), Value: v})
	}
	return out, nil
}

func (t badgerTx) Put(_ context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if err := t.txn.Set([]byte(key), value); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (t badgerTx) Delete(_ context.Context, key string) error {
	if err := t.txn.Delete([]byte(key)); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
