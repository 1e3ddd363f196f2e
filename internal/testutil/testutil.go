// Package testutil provides shared test helpers for setting up data
// directories, key-value stores and persistence writers.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/quire/internal/kv"
	"github.com/starford/quire/internal/persistence"
	"github.com/starford/quire/internal/storage"
)

// TestBridge creates a desktop bridge over a temporary data directory.
func TestBridge(t *testing.T) (*persistence.DesktopBridge, *storage.FS) {
	t.Helper()
	fsys, err := storage.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return persistence.NewDesktopBridge(fsys, "", nil), fsys
}

// TestKV creates a temporary SQLite key-value store that is closed on cleanup.
func TestKV(t *testing.T) kv.Store {
	t.Helper()
	s, err := kv.OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// TestWriter starts a writer over bridge (or store when bridge is nil) and
// closes it on cleanup.
func TestWriter(t *testing.T, bridge persistence.HostBridge, store kv.Store) *persistence.Writer {
	t.Helper()
	gw, err := persistence.NewGateway(bridge, store)
	if err != nil {
		t.Fatal(err)
	}
	w := persistence.NewWriter(gw, nil)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = w.Close(ctx)
	})
	return w
}

// Eventually polls fn every tick until it returns true or timeout elapses.
func Eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}
