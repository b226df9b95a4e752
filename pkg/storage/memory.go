package storage

import (
	"sort"
	"sync"

	"lecture-processor/pkg/models"
)

type MemoryStore interface {
	StoreLecture(record *models.LectureRecord) error
	GetLecture(id string) (*models.LectureRecord, error)
	ListLectures() ([]*models.LectureRecord, error)
	UpdateStatus(id string, status models.ProcessingStatus) error
}

type memoryStore struct {
	lectures map[string]*models.LectureRecord
	mu       sync.RWMutex
}

func NewMemoryStore() MemoryStore {
	return &memoryStore{
		lectures: make(map[string]*models.LectureRecord),
	}
}

// StoreLecture keeps a snapshot of the record, so the pipeline worker
// can keep mutating its own copy between checkpoints.
func (s *memoryStore) StoreLecture(record *models.LectureRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := *record
	s.lectures[record.ID] = &snapshot
	return nil
}

func (s *memoryStore) GetLecture(id string) (*models.LectureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.lectures[id]
	if !exists {
		return nil, ErrLectureNotFound
	}
	snapshot := *record
	return &snapshot, nil
}

func (s *memoryStore) ListLectures() ([]*models.LectureRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*models.LectureRecord, 0, len(s.lectures))
	for _, record := range s.lectures {
		snapshot := *record
		records = append(records, &snapshot)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Submitted.After(records[j].Submitted)
	})
	return records, nil
}

func (s *memoryStore) UpdateStatus(id string, status models.ProcessingStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, exists := s.lectures[id]
	if !exists {
		return ErrLectureNotFound
	}
	record.Status = status
	return nil
}
