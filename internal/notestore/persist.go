package notestore

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/foldertree"
	"github.com/starford/quire/internal/linkgraph"
	"github.com/starford/quire/internal/persistence"
)

// ImportSummary reports what an import added.
type ImportSummary struct {
	Notes      int `json:"notes"`
	Folders    int `json:"folders"`
	Collisions int `json:"collisions"`
}

// Load restores persisted state. A failed or empty load keeps the current
// in-memory state.
func (s *Store) Load(ctx context.Context) error {
	return s.load(ctx, "loaded")
}

// Reload re-reads persisted state after an external change to it.
func (s *Store) Reload(ctx context.Context) error {
	return s.load(ctx, "reloaded")
}

func (s *Store) load(ctx context.Context, verb string) error {
	if s.writer == nil {
		return nil
	}
	res := s.writer.Gateway().Load(ctx)
	if !res.Success {
		return fmt.Errorf("load: %s", res.Error)
	}
	if res.Data == nil {
		s.logger.Info("no saved state, keeping defaults")
		return nil
	}

	s.mu.Lock()
	s.applyLocked(res.Data)
	notes, folders := len(s.notes), len(s.folders)
	s.mu.Unlock()

	s.logger.Info("store "+verb,
		slog.String("backend", s.writer.Gateway().Backend()),
		slog.Int("notes", notes),
		slog.Int("folders", folders),
	)
	s.emit(Event{Kind: EventStoreLoaded})
	return nil
}

// applyLocked merges a loaded snapshot. Empty note or folder arrays never
// replace what is in memory.
func (s *Store) applyLocked(d *persistence.Snapshot) {
	if len(d.Notes) > 0 {
		s.notes = d.Notes
	}
	if len(d.Folders) > 0 {
		s.folders = d.Folders
	}
	if d.SelectedNoteID.Set {
		s.selNote = d.SelectedNoteID.ID
	}
	if d.SelectedFolderID.Set {
		s.selFold = d.SelectedFolderID.ID
	}
	if d.CurrentTheme != nil {
		s.theme = d.CurrentTheme
	}
	s.repairLocked()
}

func (s *Store) repairLocked() {
	links := linkgraph.Repair(s.notes)
	loops := foldertree.BreakCycles(s.folders)
	orphans := foldertree.ReassignOrphans(s.notes, s.folders)
	if links+loops+orphans > 0 {
		s.logger.Warn("repaired inconsistent state",
			slog.Int("notes_relinked", links),
			slog.Int("folders_rerooted", loops),
			slog.Int("notes_unfiled", orphans),
		)
	}
	if s.selNote != nil && s.noteLocked(*s.selNote) == nil {
		s.selNote = nil
	}
	if s.selFold != nil && s.folderLocked(*s.selFold) == nil {
		s.selFold = nil
	}
}

// Save queues the current state and waits until it is written.
func (s *Store) Save(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	s.mu.RLock()
	s.writer.Enqueue(s.snapshotLocked())
	s.mu.RUnlock()
	return s.writer.Flush(ctx)
}

// Flush waits for every queued save.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Flush(ctx)
}

// Export writes the full state to path through the host bridge.
func (s *Store) Export(ctx context.Context, path string) error {
	gw, err := s.bridged()
	if err != nil {
		return err
	}
	if res := gw.Export(ctx, path, s.Snapshot()); !res.Success {
		return fmt.Errorf("export: %s", res.Error)
	}
	s.logger.Info("state exported", slog.String("path", path))
	return nil
}

// Import appends the notes and folders stored at path. Ids are not
// reconciled; collisions are counted and logged.
func (s *Store) Import(ctx context.Context, path string) (ImportSummary, error) {
	gw, err := s.bridged()
	if err != nil {
		return ImportSummary{}, err
	}
	res := gw.Import(ctx, path)
	if !res.Success {
		return ImportSummary{}, fmt.Errorf("import: %s", res.Error)
	}
	if res.Data == nil {
		return ImportSummary{}, nil
	}

	var sum ImportSummary
	err = s.mutate(func() ([]Event, error) {
		seen := make(map[string]struct{}, len(s.notes)+len(s.folders))
		for _, n := range s.notes {
			seen["n:"+n.ID] = struct{}{}
		}
		for _, f := range s.folders {
			seen["f:"+f.ID] = struct{}{}
		}
		for _, n := range res.Data.Notes {
			if _, ok := seen["n:"+n.ID]; ok {
				sum.Collisions++
			}
		}
		for _, f := range res.Data.Folders {
			if _, ok := seen["f:"+f.ID]; ok {
				sum.Collisions++
			}
		}
		s.notes = append(s.notes, res.Data.Notes...)
		s.folders = append(s.folders, res.Data.Folders...)
		sum.Notes, sum.Folders = len(res.Data.Notes), len(res.Data.Folders)
		s.repairLocked()
		return []Event{{Kind: EventStoreLoaded}}, nil
	})
	if sum.Collisions > 0 {
		s.logger.Warn("import introduced duplicate ids", slog.Int("collisions", sum.Collisions))
	}
	s.logger.Info("state imported",
		slog.String("path", path),
		slog.Int("notes", sum.Notes),
		slog.Int("folders", sum.Folders),
	)
	return sum, err
}

// Close flushes pending saves and stops the writer.
func (s *Store) Close(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.Close(ctx)
}

func (s *Store) bridged() (*persistence.Gateway, error) {
	if s.writer == nil || !s.writer.Gateway().HasBridge() {
		return nil, apperr.ErrBridgeUnavailable
	}
	return s.writer.Gateway(), nil
}
