package core

import (
	"errors"
	"fmt"
	"testing"
)

func testFile(name string) StoredFile {
	id := NewFileID()
	return StoredFile{
		Name:        name,
		ID:          id,
		URL:         "/f/" + id,
		StoragePath: "/tmp/fileden-test/" + id,
		MediaType:   "text/plain",
		Size:        10,
	}
}

func TestNewFileID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewFileID()
		if len(id) != 8 {
			t.Fatalf("expected 8-char id, got %q", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %s", id)
		}
		seen[id] = true
	}
}

func TestUserFileStore_Insert(t *testing.T) {
	t.Run("appends in insertion order", func(t *testing.T) {
		store := NewUserFileStore(10)
		for _, name := range []string{"a.txt", "b.txt", "c.txt"} {
			if evicted := store.Insert("username", testFile(name)); evicted != nil {
				t.Fatalf("unexpected eviction of %s", evicted.Name)
			}
		}

		entries := store.List("username")
		if len(entries) != 3 {
			t.Fatalf("expected 3 files, got %d", len(entries))
		}
		for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
			if entries[i].Name != want {
				t.Errorf("position %d: expected %s, got %s", i, want, entries[i].Name)
			}
		}
	})

	t.Run("evicts oldest first at capacity", func(t *testing.T) {
		const capacity = 3
		store := NewUserFileStore(capacity)

		var first StoredFile
		for i := 0; i < capacity; i++ {
			f := testFile(fmt.Sprintf("file%d.txt", i))
			if i == 0 {
				first = f
			}
			store.Insert("username", f)
		}

		evicted := store.Insert("username", testFile("overflow.txt"))
		if evicted == nil {
			t.Fatal("expected an eviction")
		}
		if evicted.ID != first.ID {
			t.Errorf("expected oldest file %s evicted, got %s", first.Name, evicted.Name)
		}
		if evicted.StoragePath != first.StoragePath {
			t.Errorf("evicted copy must carry the storage path for byte cleanup")
		}

		entries := store.List("username")
		if len(entries) != capacity {
			t.Fatalf("expected %d files after eviction, got %d", capacity, len(entries))
		}
		if entries[0].Name != "file1.txt" {
			t.Errorf("expected file1.txt at the front, got %s", entries[0].Name)
		}
		if entries[capacity-1].Name != "overflow.txt" {
			t.Errorf("expected overflow.txt at the back, got %s", entries[capacity-1].Name)
		}
		if store.FindByID("username", first.ID) != nil {
			t.Error("evicted file should not be findable by id")
		}
	})

	t.Run("N plus one distinct names leave the last N", func(t *testing.T) {
		const capacity = 5
		store := NewUserFileStore(capacity)
		for i := 0; i <= capacity; i++ {
			store.Insert("username", testFile(fmt.Sprintf("f%d", i)))
		}

		entries := store.List("username")
		if len(entries) != capacity {
			t.Fatalf("expected %d files, got %d", capacity, len(entries))
		}
		for i := 0; i < capacity; i++ {
			want := fmt.Sprintf("f%d", i+1)
			if entries[i].Name != want {
				t.Errorf("position %d: expected %s, got %s", i, want, entries[i].Name)
			}
		}
	})

	t.Run("users are isolated", func(t *testing.T) {
		store := NewUserFileStore(2)
		store.Insert("alice", testFile("a.txt"))
		store.Insert("bob", testFile("b.txt"))

		if len(store.List("alice")) != 1 || len(store.List("bob")) != 1 {
			t.Error("expected one file per user")
		}
	})
}

func TestUserFileStore_Overwrite(t *testing.T) {
	t.Run("keeps identity and position", func(t *testing.T) {
		store := NewUserFileStore(10)
		original := testFile("doc.txt")
		store.Insert("username", original)
		store.Insert("username", testFile("other.txt"))

		updated, err := store.Overwrite("username", "doc.txt", "application/pdf", 999)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if updated.ID != original.ID || updated.URL != original.URL {
			t.Error("overwrite must keep id and url")
		}
		if updated.Size != 999 || updated.MediaType != "application/pdf" {
			t.Error("overwrite must update size and media type")
		}

		entries := store.List("username")
		if len(entries) != 2 {
			t.Fatalf("expected overwrite to keep file count at 2, got %d", len(entries))
		}
		if entries[0].Name != "doc.txt" {
			t.Error("overwrite must not move the file in eviction order")
		}
	})

	t.Run("unknown name", func(t *testing.T) {
		store := NewUserFileStore(10)
		if _, err := store.Overwrite("username", "missing.txt", "text/plain", 1); !errors.Is(err, ErrFileNotFound) {
			t.Errorf("expected ErrFileNotFound, got %v", err)
		}
	})
}

func TestUserFileStore_Find(t *testing.T) {
	store := NewUserFileStore(10)
	f := testFile("pic.jpg")
	store.Insert("username", f)

	t.Run("by id", func(t *testing.T) {
		got := store.FindByID("username", f.ID)
		if got == nil || got.Name != "pic.jpg" {
			t.Fatalf("expected pic.jpg, got %+v", got)
		}
		// Returned value is a copy; mutating it must not leak into the store
		got.Size = 12345
		if store.FindByID("username", f.ID).Size == 12345 {
			t.Error("FindByID must return a copy")
		}
	})

	t.Run("by name", func(t *testing.T) {
		if got := store.FindByName("username", "pic.jpg"); got == nil || got.ID != f.ID {
			t.Fatalf("expected id %s, got %+v", f.ID, got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		if store.FindByID("username", "unknown") != nil {
			t.Error("expected nil for unknown id")
		}
		if store.FindByName("username", "unknown") != nil {
			t.Error("expected nil for unknown name")
		}
		if store.FindByID("stranger", f.ID) != nil {
			t.Error("expected nil for another user's id")
		}
	})
}
