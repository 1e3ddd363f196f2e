package notestore

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/foldertree"
	"github.com/starford/quire/internal/models"
)

// AddFolder creates a folder under parentID (nil = root) and selects it.
// An empty name becomes the default folder name.
func (s *Store) AddFolder(parentID *string, name string) (*models.Folder, error) {
	var out *models.Folder
	err := s.mutate(func() ([]Event, error) {
		if parentID != nil && s.folderLocked(*parentID) == nil {
			return nil, fmt.Errorf("parent folder %s: %w", *parentID, apperr.ErrNotFound)
		}
		f := models.NewFolder(parentID, name)
		f.Color = models.DefaultTheme().Text("accent")
		s.folders = append(s.folders, f)
		s.selFold = models.ID(f.ID)
		out = f.Clone()
		return []Event{
			{Kind: EventFolderCreated, ID: f.ID},
			{Kind: EventSelectionChanged, ID: f.ID},
		}, nil
	})
	return out, err
}

// UpdateFolder merges display fields into the folder.
func (s *Store) UpdateFolder(id string, patch models.FolderPatch) (*models.Folder, error) {
	var out *models.Folder
	err := s.mutate(func() ([]Event, error) {
		f := s.folderLocked(id)
		if f == nil {
			return nil, fmt.Errorf("folder %s: %w", id, apperr.ErrNotFound)
		}
		f.Apply(patch)
		out = f.Clone()
		return []Event{{Kind: EventFolderUpdated, ID: id}}, nil
	})
	return out, err
}

// MoveFolder re-parents a folder. A move that would create a cycle is
// rejected with apperr.ErrCycle and leaves the tree unchanged.
func (s *Store) MoveFolder(id string, parentID *string) error {
	return s.mutate(func() ([]Event, error) {
		if err := foldertree.Move(s.folders, id, parentID); err != nil {
			if errors.Is(err, apperr.ErrCycle) {
				s.logger.Warn("folder move rejected", slog.String("folder", id), slog.String("error", err.Error()))
			}
			return nil, err
		}
		return []Event{{Kind: EventFolderUpdated, ID: id}}, nil
	})
}

// DeleteFolder removes a folder. Its notes become unfiled and its child
// folders move up one level.
func (s *Store) DeleteFolder(id string) error {
	return s.mutate(func() ([]Event, error) {
		children := foldertree.Children(s.folders, models.ID(id))
		remaining, touched, err := foldertree.Delete(s.folders, s.notes, id)
		if err != nil {
			return nil, err
		}
		s.folders = remaining

		events := []Event{{Kind: EventFolderDeleted, ID: id}}
		for _, c := range children {
			events = append(events, Event{Kind: EventFolderUpdated, ID: c.ID})
		}
		for _, n := range touched {
			events = append(events, Event{Kind: EventNoteUpdated, ID: n.ID})
		}
		if s.selFold != nil && *s.selFold == id {
			s.selFold = nil
			events = append(events, Event{Kind: EventSelectionChanged})
		}
		return events, nil
	})
}

// SelectFolder focuses a folder. Nil clears the selection.
func (s *Store) SelectFolder(id *string) error {
	return s.mutate(func() ([]Event, error) {
		if id != nil && s.folderLocked(*id) == nil {
			return nil, fmt.Errorf("folder %s: %w", *id, apperr.ErrNotFound)
		}
		if models.SameID(s.selFold, id) {
			return nil, nil
		}
		s.selFold = nil
		if id != nil {
			s.selFold = models.ID(*id)
		}
		return []Event{{Kind: EventSelectionChanged}}, nil
	})
}

// SetTheme replaces the current theme. Its contents are not interpreted.
func (s *Store) SetTheme(theme models.Theme) error {
	if len(theme) == 0 {
		return fmt.Errorf("empty theme: %w", apperr.ErrInvalidInput)
	}
	return s.mutate(func() ([]Event, error) {
		s.theme = theme.Clone()
		return []Event{{Kind: EventThemeChanged}}, nil
	})
}
