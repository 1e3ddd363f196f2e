package kv

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sq, err := Open(DriverSQLite, filepath.Join(dir, "kv.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })

	bg, err := Open(DriverBadger, filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { bg.Close() })

	return map[string]Store{DriverSQLite: sq, DriverBadger: bg}
}

func TestStore_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
				t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
			}
			if err := s.Set(ctx, "k", []byte("v1")); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := s.Set(ctx, "k", []byte("v2")); err != nil {
				t.Fatalf("Set overwrite: %v", err)
			}
			got, err := s.Get(ctx, "k")
			if err != nil {
				t.Fatalf("Get: %v", err)
			}
			if string(got) != "v2" {
				t.Errorf("Get = %q, want v2", got)
			}
			if err := s.Delete(ctx, "k"); err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Get after delete err = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("durable")); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "durable" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestBadger_InMemory(t *testing.T) {
	s, err := OpenBadger("")
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatal(err)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("redis", "x"); err == nil {
		t.Error("expected error for unknown driver")
	}
}
