package storage

import (
	"testing"
	"time"

	"lecture-processor/pkg/models"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()

	record := &models.LectureRecord{
		ID:        "abc",
		Status:    models.StatusPending,
		Submitted: time.Now(),
	}
	if err := store.StoreLecture(record); err != nil {
		t.Fatalf("StoreLecture() error = %v", err)
	}

	got, err := store.GetLecture("abc")
	if err != nil {
		t.Fatalf("GetLecture() error = %v", err)
	}
	if got.ID != "abc" || got.Status != models.StatusPending {
		t.Errorf("got %+v", got)
	}

	if _, err := store.GetLecture("missing"); err != ErrLectureNotFound {
		t.Errorf("missing lecture error = %v", err)
	}
}

func TestMemoryStoreSnapshots(t *testing.T) {
	store := NewMemoryStore()

	record := &models.LectureRecord{ID: "abc", Status: models.StatusPending}
	store.StoreLecture(record)

	// Mutations to the caller's copy must not leak into the store.
	record.Status = models.StatusFailed
	got, _ := store.GetLecture("abc")
	if got.Status != models.StatusPending {
		t.Errorf("stored status changed to %q after caller mutation", got.Status)
	}

	// Mutations to a returned record must not affect the store either.
	got.Status = models.StatusCompleted
	again, _ := store.GetLecture("abc")
	if again.Status != models.StatusPending {
		t.Errorf("stored status changed to %q after reader mutation", again.Status)
	}
}

func TestMemoryStoreListNewestFirst(t *testing.T) {
	store := NewMemoryStore()

	base := time.Now()
	store.StoreLecture(&models.LectureRecord{ID: "older", Submitted: base.Add(-time.Hour)})
	store.StoreLecture(&models.LectureRecord{ID: "newest", Submitted: base})
	store.StoreLecture(&models.LectureRecord{ID: "oldest", Submitted: base.Add(-2 * time.Hour)})

	records, err := store.ListLectures()
	if err != nil {
		t.Fatalf("ListLectures() error = %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	want := []string{"newest", "older", "oldest"}
	for i, id := range want {
		if records[i].ID != id {
			t.Errorf("records[%d].ID = %q, want %q", i, records[i].ID, id)
		}
	}
}

func TestMemoryStoreUpdateStatus(t *testing.T) {
	store := NewMemoryStore()
	store.StoreLecture(&models.LectureRecord{ID: "abc", Status: models.StatusPending})

	if err := store.UpdateStatus("abc", models.StatusTranscribing); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, _ := store.GetLecture("abc")
	if got.Status != models.StatusTranscribing {
		t.Errorf("status = %q", got.Status)
	}

	if err := store.UpdateStatus("missing", models.StatusFailed); err != ErrLectureNotFound {
		t.Errorf("missing lecture error = %v", err)
	}
}
