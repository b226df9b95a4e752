package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"lecture-processor/pkg/models"

	"github.com/dgraph-io/badger/v3"
)

type DiskStore interface {
	StoreLecture(record *models.LectureRecord) error
	GetLecture(id string) (*models.LectureRecord, error)
	Close() error
}

type diskStore struct {
	db *badger.DB
}

func NewDiskStore(path string) (DiskStore, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	opts := badger.DefaultOptions(filepath.Join(path, "badger"))
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &diskStore{db: db}, nil
}

func (s *diskStore) StoreLecture(record *models.LectureRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal lecture record: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(record.ID), data)
	})
}

func (s *diskStore) GetLecture(id string) (*models.LectureRecord, error) {
	var record models.LectureRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})

	if err == badger.ErrKeyNotFound {
		return nil, ErrLectureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lecture record: %w", err)
	}
	return &record, nil
}

func (s *diskStore) Close() error {
	return s.db.Close()
}

var ErrLectureNotFound = fmt.Errorf("lecture not found")
