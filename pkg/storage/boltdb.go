package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fuzeworks/fuzeworks/pkg/types"
	bolt "go.etcd.io/bbolt"
)

// DBFile is the database file name inside the data directory
const DBFile = "fuzeworks.db"

var (
	// Bucket names
	bucketModules  = []byte("modules")
	bucketRegister = []byte("register")
)

// BoltStore implements Store using BoltDB
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens (or creates) the database in dataDir
func NewBoltStore(dataDir string) (*BoltStore, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := bolt.Open(filepath.Join(dataDir, DBFile), 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketModules, bucketRegister} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStore{db: db}, nil
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// SaveModule upserts a module record keyed by module name
func (s *BoltStore) SaveModule(record *types.ModuleRecord) error {
	if record == nil || record.Name() == "" {
		return fmt.Errorf("module record without name")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(record)
		if err != nil {
			return err
		}
		return tx.Bucket(bucketModules).Put([]byte(record.Name()), data)
	})
}

// GetModule returns the record for name, or ErrNotFound
func (s *BoltStore) GetModule(name string) (*types.ModuleRecord, error) {
	var record types.ModuleRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketModules).Get([]byte(name))
		if data == nil {
			return fmt.Errorf("module %s: %w", name, ErrNotFound)
		}
		return json.Unmarshal(data, &record)
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListModules returns every module record ordered by name
func (s *BoltStore) ListModules() ([]*types.ModuleRecord, error) {
	var records []*types.ModuleRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModules).ForEach(func(k, v []byte) error {
			var record types.ModuleRecord
			if err := json.Unmarshal(v, &record); err != nil {
				return fmt.Errorf("decode module %s: %w", k, err)
			}
			records = append(records, &record)
			return nil
		})
	})
	return records, err
}

// DeleteModule removes a module record. Deleting a missing record is not an error.
func (s *BoltStore) DeleteModule(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModules).Delete([]byte(name))
	})
}

// SaveRegister replaces the stored event register
func (s *BoltStore) SaveRegister(register map[string][]string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket(bucketRegister) != nil {
			if err := tx.DeleteBucket(bucketRegister); err != nil {
				return err
			}
		}
		b, err := tx.CreateBucket(bucketRegister)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(register))
		for name := range register {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			data, err := json.Marshal(register[name])
			if err != nil {
				return err
			}
			if err := b.Put([]byte(name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadRegister returns the stored event register; empty when never saved
func (s *BoltStore) LoadRegister() (map[string][]string, error) {
	register := make(map[string][]string)
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketRegister).ForEach(func(k, v []byte) error {
			var modules []string
			if err := json.Unmarshal(v, &modules); err != nil {
				return fmt.Errorf("decode register entry %s: %w", k, err)
			}
			register[string(k)] = modules
			return nil
		})
	})
	return register, err
}
