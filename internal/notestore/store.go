// Package notestore is the single source of truth for notes, folders,
// selection and theme. Every mutation restores the link and folder invariants,
// queues a save and publishes a change event before returning.
package notestore

import (
	"log/slog"
	"sync"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/persistence"
)

// Event kinds.
const (
	EventNoteCreated      = "note.created"
	EventNoteUpdated      = "note.updated"
	EventNoteDeleted      = "note.deleted"
	EventFolderCreated    = "folder.created"
	EventFolderUpdated    = "folder.updated"
	EventFolderDeleted    = "folder.deleted"
	EventSelectionChanged = "selection.changed"
	EventThemeChanged     = "theme.changed"
	EventStoreLoaded      = "store.loaded"
)

// Event describes one change to the store.
type Event struct {
	Kind string `json:"kind"`
	ID   string `json:"id,omitempty"`
}

// Selection is the currently focused note and folder.
type Selection struct {
	NoteID   *string `json:"selectedNoteId"`
	FolderID *string `json:"selectedFolderId"`
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithWriter enables persistence through w. Without a writer the store is
// purely in-memory.
func WithWriter(w *persistence.Writer) Option {
	return func(s *Store) { s.writer = w }
}

// WithSeed starts the store with the welcome notes and folders.
func WithSeed() Option {
	return func(s *Store) { s.seed = true }
}

// WithObserver registers fn to receive every change event. Observers are
// called outside the store lock and may read from the store.
func WithObserver(fn func(Event)) Option {
	return func(s *Store) { s.observers = append(s.observers, fn) }
}

// Store owns the collections. It is safe for concurrent use.
type Store struct {
	logger    *slog.Logger
	writer    *persistence.Writer
	observers []func(Event)
	seed      bool

	mu      sync.RWMutex
	notes   []*models.Note
	folders []*models.Folder
	selNote *string
	selFold *string
	theme   models.Theme
}

// New creates a store.
func New(opts ...Option) *Store {
	s := &Store{
		logger:  slog.Default(),
		notes:   []*models.Note{},
		folders: []*models.Folder{},
		theme:   models.DefaultTheme(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.seed {
		seed := DefaultSeed()
		s.notes = seed.Notes
		s.folders = seed.Folders
		s.selNote = seed.SelectedNoteID.ID
		s.selFold = seed.SelectedFolderID.ID
	}
	return s
}

// mutate runs fn under the write lock. When fn reports events the new state
// is queued for saving before the lock is released, so saves are ordered
// like mutations. Events are delivered after unlocking.
func (s *Store) mutate(fn func() ([]Event, error)) error {
	s.mu.Lock()
	events, err := fn()
	if len(events) > 0 && s.writer != nil {
		s.writer.Enqueue(s.snapshotLocked())
	}
	s.mu.Unlock()

	s.emit(events...)
	return err
}

func (s *Store) emit(events ...Event) {
	for _, e := range events {
		for _, fn := range s.observers {
			fn(e)
		}
	}
}

func (s *Store) snapshotLocked() *persistence.Snapshot {
	return &persistence.Snapshot{
		Version:          persistence.CurrentVersion,
		Notes:            models.CloneNotes(s.notes),
		Folders:          models.CloneFolders(s.folders),
		SelectedNoteID:   persistence.SetID(s.selNote),
		SelectedFolderID: persistence.SetID(s.selFold),
		CurrentTheme:     s.theme.Clone(),
	}
}

func (s *Store) noteLocked(id string) *models.Note {
	for _, n := range s.notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func (s *Store) folderLocked(id string) *models.Folder {
	for _, f := range s.folders {
		if f.ID == id {
			return f
		}
	}
	return nil
}
