// Package blocklist stores originator addresses whose MMS notifications are
// dropped on arrival.
package blocklist

import (
	"strings"
	"time"

	"github.com/dgraph-io/badger"
	log "github.com/sirupsen/logrus"
)

var prefix = []byte("block/")

type Store struct {
	db *badger.DB
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions
	opts.Dir, opts.ValueDir = dir, dir
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Normalize strips the formatting characters people put in phone numbers.
func Normalize(addr string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '(', ')', '.':
			return -1
		}
		return r
	}, addr)
}

func key(addr string) []byte {
	k := make([]byte, 0, len(prefix)+len(addr))
	k = append(k, prefix...)
	return append(k, addr...)
}

// Add blocks addr. The value records when the entry was added.
func (s *Store) Add(addr string) error {
	addr = Normalize(addr)
	if addr == "" {
		return nil
	}
	ts := []byte(time.Now().UTC().Format(time.RFC3339))
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key(addr), ts)
	})
}

func (s *Store) Remove(addr string) error {
	addr = Normalize(addr)
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(addr))
	})
}

// IsBlocked reports whether addr is on the list. Store errors are logged and
// reported as not blocked.
func (s *Store) IsBlocked(addr string) bool {
	addr = Normalize(addr)
	if addr == "" {
		return false
	}

	var blocked bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key(addr))
		if err != nil {
			if err != badger.ErrKeyNotFound {
				return err
			}
			return nil
		}
		blocked = true
		return nil
	})
	if err != nil {
		log.WithFields(log.Fields{
			"address": addr,
		}).WithError(err).Error("block list lookup failed")
		return false
	}
	return blocked
}

// List returns every blocked address in key order.
func (s *Store) List() ([]string, error) {
	var addrs []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			k := it.Item().Key()
			addrs = append(addrs, string(k[len(prefix):]))
		}
		return nil
	})
	return addrs, err
}
