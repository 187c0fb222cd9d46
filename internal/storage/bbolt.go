package storage

import (
	"encoding/binary"
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	MetaBucket     = []byte("meta")     // Schema version, creation time
	SettingsBucket = []byte("settings") // Counters and timestamps - unencrypted
)

// Meta keys
var (
	MetaVersion = []byte("version")
	MetaCreated = []byte("created")
)

const schemaVersion = "1"

// BoltStore is a KeyValueStore backed by a BBolt file
type BoltStore struct {
	db *bolt.DB
}

// Open opens or creates a settings database and ensures its buckets exist
func Open(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &BoltStore{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initialize creates the bucket structure on first open
func (s *BoltStore) initialize() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{MetaBucket, SettingsBucket} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}

		meta := tx.Bucket(MetaBucket)
		if meta.Get(MetaVersion) != nil {
			return nil
		}
		if err := meta.Put(MetaVersion, []byte(schemaVersion)); err != nil {
			return err
		}
		created, _ := time.Now().MarshalBinary()
		return meta.Put(MetaCreated, created)
	})
}

// Close closes the database
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path
func (s *BoltStore) Path() string {
	return s.db.Path()
}

// Created returns the time the database was first initialized
func (s *BoltStore) Created() (time.Time, error) {
	var created time.Time
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(MetaBucket).Get(MetaCreated)
		if data == nil {
			return ErrNotFound
		}
		return created.UnmarshalBinary(data)
	})
	return created, err
}

// Read retrieves a string value
func (s *BoltStore) Read(key string) (string, error) {
	data, err := s.get(key)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write stores a string value
func (s *BoltStore) Write(key, value string) error {
	return s.put(key, []byte(value))
}

// Delete removes a value
func (s *BoltStore) Delete(key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(SettingsBucket).Delete([]byte(key))
	})
}

// ReadInt retrieves an integer stored by WriteInt
func (s *BoltStore) ReadInt(key string) (int, error) {
	data, err := s.get(key)
	if err != nil {
		return 0, err
	}
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid integer value for %s", key)
	}
	return int(int64(binary.BigEndian.Uint64(data))), nil
}

// WriteInt stores an integer as 8 big-endian bytes
func (s *BoltStore) WriteInt(key string, value int) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, uint64(int64(value)))
	return s.put(key, buf)
}

func (s *BoltStore) get(key string) ([]byte, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		settings := tx.Bucket(SettingsBucket)
		if settings == nil {
			return fmt.Errorf("settings bucket not found")
		}
		v := settings.Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// Make a copy since the slice is only valid during the transaction
		data = append([]byte(nil), v...)
		return nil
	})
	return data, err
}

func (s *BoltStore) put(key string, value []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(SettingsBucket).Put([]byte(key), value)
	})
}

// Compact creates a compacted copy of the database, removing unused space.
// This is useful after a reset deletes most keys.
func (s *BoltStore) Compact() error {
	srcPath := s.db.Path()
	tmpPath := srcPath + ".compact"

	dst, err := bolt.Open(tmpPath, 0600, nil)
	if err != nil {
		return fmt.Errorf("failed to create compact database: %w", err)
	}

	// Copy all buckets
	err = s.db.View(func(srcTx *bolt.Tx) error {
		return dst.Update(func(dstTx *bolt.Tx) error {
			return srcTx.ForEach(func(name []byte, srcBucket *bolt.Bucket) error {
				dstBucket, err := dstTx.CreateBucketIfNotExists(name)
				if err != nil {
					return err
				}
				return srcBucket.ForEach(func(k, v []byte) error {
					return dstBucket.Put(k, v)
				})
			})
		})
	})

	if err != nil {
		dst.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to copy data: %w", err)
	}

	if err := dst.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close compact database: %w", err)
	}

	if err := s.db.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close source database: %w", err)
	}

	// Atomic replace
	backupPath := srcPath + ".backup"
	if err := os.Rename(srcPath, backupPath); err != nil {
		return fmt.Errorf("failed to backup original: %w", err)
	}
	if err := os.Rename(tmpPath, srcPath); err != nil {
		os.Rename(backupPath, srcPath) // rollback
		return fmt.Errorf("failed to replace database: %w", err)
	}
	os.Remove(backupPath)

	s.db, err = bolt.Open(srcPath, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return fmt.Errorf("failed to reopen database: %w", err)
	}

	return nil
}
