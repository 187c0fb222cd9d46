package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *BoltStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "applock.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpenCreatesMeta(t *testing.T) {
	db := openTestStore(t)

	created, err := db.Created()
	if err != nil {
		t.Fatalf("Failed to read creation time: %v", err)
	}
	if time.Since(created) > time.Minute {
		t.Errorf("Creation time too old: %v", created)
	}
}

func TestReopenKeepsValues(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "applock.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := db.WriteInt("failed_attempts", 2); err != nil {
		t.Fatalf("Failed to write int: %v", err)
	}
	created, _ := db.Created()
	db.Close()

	db, err = Open(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db.Close()

	n, err := db.ReadInt("failed_attempts")
	if err != nil {
		t.Fatalf("Failed to read int: %v", err)
	}
	if n != 2 {
		t.Errorf("Attempts mismatch: got %d, want 2", n)
	}

	reopened, _ := db.Created()
	if !reopened.Equal(created) {
		t.Errorf("Creation time changed on reopen: got %v, want %v", reopened, created)
	}
}

func TestStringValues(t *testing.T) {
	db := openTestStore(t)

	if _, err := db.Read("last_activity"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Expected ErrNotFound, got %v", err)
	}

	ts := "2025-06-01T10:00:00Z"
	if err := db.Write("last_activity", ts); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	got, err := db.Read("last_activity")
	if err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	if got != ts {
		t.Errorf("Value mismatch: got %s, want %s", got, ts)
	}

	if err := db.Delete("last_activity"); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	if _, err := db.Read("last_activity"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound after delete, got %v", err)
	}

	// Deleting a missing key is not an error
	if err := db.Delete("last_activity"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestIntValues(t *testing.T) {
	db := openTestStore(t)

	for _, v := range []int{0, 1, 5, -3, 1 << 40} {
		if err := db.WriteInt("n", v); err != nil {
			t.Fatalf("Failed to write %d: %v", v, err)
		}
		got, err := db.ReadInt("n")
		if err != nil {
			t.Fatalf("Failed to read %d: %v", v, err)
		}
		if got != v {
			t.Errorf("Int mismatch: got %d, want %d", got, v)
		}
	}

	if err := db.Write("n", "abc"); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if _, err := db.ReadInt("n"); err == nil {
		t.Error("Expected error reading a non-integer value")
	}
}

func TestCompact(t *testing.T) {
	db := openTestStore(t)

	if err := db.Write("lockout_expires", "2025-06-01T10:05:00Z"); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := db.WriteInt("failed_attempts", 3); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}

	if err := db.Compact(); err != nil {
		t.Fatalf("Compact failed: %v", err)
	}

	got, err := db.Read("lockout_expires")
	if err != nil {
		t.Fatalf("Failed to read after compact: %v", err)
	}
	if got != "2025-06-01T10:05:00Z" {
		t.Errorf("Value mismatch after compact: got %s", got)
	}
	n, err := db.ReadInt("failed_attempts")
	if err != nil || n != 3 {
		t.Errorf("Int mismatch after compact: got %d, %v", n, err)
	}
}
