/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package cache

import (
	"errors"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
)

// dbDir is the on-disk directory name for the embedded key-value store,
// per §4.H's "cache.<db-ext>" (badger is a directory-of-files store, not a
// single file, but it is the one ACID embedded store in the dependency
// pack, so the directory plays the role the spec's single-file name
// implies).
const dbDir = "cache.badger"

// buildPrefix and metaPrefix realize the spec's two logical tables —
// "cache" and "metadata" — as key prefixes, since badger exposes one flat
// keyspace rather than separate tables.
const (
	buildPrefix = "build:"
	metaPrefix  = "meta:"
)

// Store wraps the badger database holding cached serialized builds and
// small operational metadata entries.
type Store struct {
	db *badger.DB
}

// Open opens (creating if absent) the badger database under dir.
func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(filepath.Join(dir, dbDir)).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database's file locks.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetBuild returns the serialized build stored under key, if any.
func (s *Store) GetBuild(key string) ([]byte, bool, error) {
	return s.get(buildPrefix + key)
}

// PutBuild stores data under key, overwriting any existing entry.
func (s *Store) PutBuild(key string, data []byte) error {
	return s.put(buildPrefix+key, data)
}

// GetMeta returns a small operational string value, if present.
func (s *Store) GetMeta(key string) (string, bool, error) {
	data, ok, err := s.get(metaPrefix + key)
	if err != nil || !ok {
		return "", ok, err
	}
	return string(data), true, nil
}

// PutMeta stores a small operational string value.
func (s *Store) PutMeta(key, value string) error {
	return s.put(metaPrefix+key, []byte(value))
}

func (s *Store) get(key string) ([]byte, bool, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = append([]byte(nil), val...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

func (s *Store) put(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}
