package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/kv"
	"github.com/starford/quire/internal/models"
)

// Key-value keys.
const (
	DataKey  = "quire-notes-data"
	ThemeKey = "quire-notes-theme"
)

// Backend names, used in logs and metric labels.
const (
	BackendFile = "file"
	BackendKV   = "kv"
)

// Backend stores one snapshot.
type Backend interface {
	Name() string
	Save(ctx context.Context, s *Snapshot) error
	// Load returns nil without error when nothing has been stored yet.
	Load(ctx context.Context) (*Snapshot, error)
}

// FileBackend keeps the whole snapshot in the bridge's data file.
type FileBackend struct {
	bridge HostBridge
	logger *slog.Logger
}

func NewFileBackend(bridge HostBridge, logger *slog.Logger) *FileBackend {
	return &FileBackend{bridge: bridge, logger: logger}
}

func (b *FileBackend) Name() string { return BackendFile }

func (b *FileBackend) Save(ctx context.Context, s *Snapshot) error {
	data, err := Encode(s, true)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return b.bridge.SaveNotes(ctx, data)
}

func (b *FileBackend) Load(ctx context.Context) (*Snapshot, error) {
	data, err := b.bridge.LoadNotes(ctx)
	if err != nil || data == nil {
		return nil, err
	}
	s, err := Decode(data)
	if err != nil {
		// A newer file is left alone for the binary that wrote it.
		if errors.Is(err, apperr.ErrUnsupportedVersion) {
			return nil, err
		}
		if q, ok := b.bridge.(Quarantiner); ok {
			if _, qerr := q.Quarantine(ctx); qerr != nil {
				b.logger.Error("quarantine failed", slog.String("error", qerr.Error()))
			}
		}
		return nil, err
	}
	if terr := s.ThemeError(); terr != nil {
		b.logger.Warn("stored theme is malformed", slog.String("error", terr.Error()))
	}
	return s, nil
}

// KVBackend splits the snapshot over two keys so a damaged theme never
// blocks restoring notes.
type KVBackend struct {
	store  kv.Store
	logger *slog.Logger
}

func NewKVBackend(store kv.Store, logger *slog.Logger) *KVBackend {
	return &KVBackend{store: store, logger: logger}
}

func (b *KVBackend) Name() string { return BackendKV }

func (b *KVBackend) Save(ctx context.Context, s *Snapshot) error {
	data := *s
	data.CurrentTheme = nil
	raw, err := Encode(&data, false)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := b.store.Set(ctx, DataKey, raw); err != nil {
		return err
	}
	if s.CurrentTheme == nil {
		return nil
	}
	theme, err := json.Marshal(s.CurrentTheme)
	if err != nil {
		return fmt.Errorf("encode theme: %w", err)
	}
	return b.store.Set(ctx, ThemeKey, theme)
}

func (b *KVBackend) Load(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	raw, err := b.store.Get(ctx, DataKey)
	switch {
	case errors.Is(err, kv.ErrNotFound):
	case err != nil:
		return nil, err
	default:
		if snap, err = Decode(raw); err != nil {
			return nil, err
		}
	}

	theme := b.loadTheme(ctx)
	if theme == nil {
		return snap, nil
	}
	if snap == nil {
		snap = &Snapshot{Version: CurrentVersion}
	}
	snap.CurrentTheme = theme
	return snap, nil
}

func (b *KVBackend) loadTheme(ctx context.Context) models.Theme {
	raw, err := b.store.Get(ctx, ThemeKey)
	if errors.Is(err, kv.ErrNotFound) {
		return nil
	}
	if err != nil {
		b.logger.Warn("theme load failed", slog.String("error", err.Error()))
		return nil
	}
	var theme models.Theme
	if err := json.Unmarshal(raw, &theme); err != nil {
		b.logger.Warn("stored theme is malformed", slog.String("error", err.Error()))
		return nil
	}
	return theme
}
