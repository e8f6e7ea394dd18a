package replay

import (
	"context"
	"path/filepath"
	"testing"
)

func TestMemoryStoreMarkUsed(t *testing.T) {
	s := NewMemoryStore()
	hash := []byte("payload-hash")

	used, err := s.MarkUsed(context.Background(), hash)
	if err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if used {
		t.Fatal("expected first MarkUsed to report unused")
	}

	used, err = s.MarkUsed(context.Background(), hash)
	if err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if !used {
		t.Fatal("expected second MarkUsed of the same hash to report already-used")
	}
}

func TestMemoryStoreDistinctHashesIndependent(t *testing.T) {
	s := NewMemoryStore()
	a, err := s.MarkUsed(context.Background(), []byte("a"))
	if err != nil || a {
		t.Fatalf("MarkUsed(a) = %v, %v, want false, nil", a, err)
	}
	b, err := s.MarkUsed(context.Background(), []byte("b"))
	if err != nil || b {
		t.Fatalf("MarkUsed(b) = %v, %v, want false, nil", b, err)
	}
}

func TestSQLiteStoreMarkUsed(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenSQLiteStore(filepath.Join(dir, "replay.db"))
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	defer store.Close()

	hash := []byte{0x01, 0x02, 0x03}
	used, err := store.MarkUsed(context.Background(), hash)
	if err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if used {
		t.Fatal("expected first MarkUsed to report unused")
	}

	used, err = store.MarkUsed(context.Background(), hash)
	if err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if !used {
		t.Fatal("expected second MarkUsed of the same hash to report already-used")
	}
}

func TestSQLiteStorePersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "replay.db")

	store1, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	hash := []byte{0xAA, 0xBB}
	if _, err := store1.MarkUsed(context.Background(), hash); err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if err := store1.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	store2, err := OpenSQLiteStore(path)
	if err != nil {
		t.Fatalf("OpenSQLiteStore() error = %v", err)
	}
	defer store2.Close()
	used, err := store2.MarkUsed(context.Background(), hash)
	if err != nil {
		t.Fatalf("MarkUsed() error = %v", err)
	}
	if !used {
		t.Fatal("expected hash marked used before reopen to persist")
	}
}
