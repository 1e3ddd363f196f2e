// Package persistence saves and restores the store's collections through
// either the desktop file bridge or a key-value backend.
package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/mod/semver"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/models"
)

// CurrentVersion is written into every snapshot.
const CurrentVersion = "2.0.0"

// legacyVersion is assumed for payloads that carry no version at all.
const legacyVersion = "1.0.0"

var supportedMajors = []string{"v1", "v2"}

// NullableID is a selection id that distinguishes "absent from the payload"
// from an explicit null.
type NullableID struct {
	ID  *string
	Set bool
}

// SetID returns a present NullableID holding id (which may be nil).
func SetID(id *string) NullableID {
	if id == nil {
		return NullableID{Set: true}
	}
	return NullableID{ID: models.ID(*id), Set: true}
}

// IsZero makes omitzero drop an unset id.
func (n NullableID) IsZero() bool { return !n.Set }

func (n NullableID) MarshalJSON() ([]byte, error) {
	if n.ID == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.ID)
}

func (n *NullableID) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.ID = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.ID = &s
	return nil
}

// Snapshot is the single persisted schema shared by both backends.
type Snapshot struct {
	Version          string           `json:"version"`
	LastSaved        time.Time        `json:"lastSaved"`
	ExportedAt       *time.Time       `json:"exportedAt,omitempty"`
	Notes            []*models.Note   `json:"notes"`
	Folders          []*models.Folder `json:"folders"`
	SelectedNoteID   NullableID       `json:"selectedNoteId,omitzero"`
	SelectedFolderID NullableID       `json:"selectedFolderId,omitzero"`
	CurrentTheme     models.Theme     `json:"currentTheme,omitempty"`

	themeErr error
}

// UnmarshalJSON decodes the theme on its own so that a theme of the wrong
// shape is dropped instead of failing the whole payload.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	aux := struct {
		*plain
		CurrentTheme json.RawMessage `json:"currentTheme"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.CurrentTheme, s.themeErr = nil, nil
	raw := bytes.TrimSpace(aux.CurrentTheme)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var theme models.Theme
	if err := json.Unmarshal(raw, &theme); err != nil {
		s.themeErr = fmt.Errorf("decode theme: %w", err)
		return nil
	}
	s.CurrentTheme = theme
	return nil
}

// ThemeError reports why a decoded theme was discarded, if it was.
func (s *Snapshot) ThemeError() error {
	return s.themeErr
}

// Encode serialises s. Indented output is used for files people may read.
func Encode(s *Snapshot, indent bool) ([]byte, error) {
	if indent {
		return json.MarshalIndent(s, "", "  ")
	}
	return json.Marshal(s)
}

// Decode parses, version-checks, validates and normalises a payload.
func Decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if s.Version == "" {
		s.Version = legacyVersion
	}
	if err := checkVersion(s.Version); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("validate snapshot: %w: %w", apperr.ErrInvalidInput, err)
	}
	s.normalize()
	return &s, nil
}

func checkVersion(v string) error {
	sv := "v" + v
	if !semver.IsValid(sv) {
		return fmt.Errorf("version %q: %w", v, apperr.ErrUnsupportedVersion)
	}
	major := semver.Major(sv)
	for _, m := range supportedMajors {
		if m == major {
			return nil
		}
	}
	return fmt.Errorf("version %q: %w", v, apperr.ErrUnsupportedVersion)
}

// Validate checks that every entity is present and identified.
func (s *Snapshot) Validate() error {
	for i, n := range s.Notes {
		if n == nil {
			return fmt.Errorf("note %d is null", i)
		}
		if err := validation.ValidateStruct(n,
			validation.Field(&n.ID, validation.Required),
		); err != nil {
			return fmt.Errorf("note %d: %w", i, err)
		}
	}
	for i, f := range s.Folders {
		if f == nil {
			return fmt.Errorf("folder %d is null", i)
		}
		if err := validation.ValidateStruct(f,
			validation.Field(&f.ID, validation.Required),
		); err != nil {
			return fmt.Errorf("folder %d: %w", i, err)
		}
	}
	return nil
}

func (s *Snapshot) normalize() {
	for _, n := range s.Notes {
		n.Normalize()
	}
	for _, f := range s.Folders {
		f.Normalize()
	}
}

// Clone deep-copies s so it can be handed to another goroutine.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Notes = models.CloneNotes(s.Notes)
	c.Folders = models.CloneFolders(s.Folders)
	c.SelectedNoteID = cloneNullable(s.SelectedNoteID)
	c.SelectedFolderID = cloneNullable(s.SelectedFolderID)
	c.CurrentTheme = s.CurrentTheme.Clone()
	if s.ExportedAt != nil {
		t := *s.ExportedAt
		c.ExportedAt = &t
	}
	return &c
}

func cloneNullable(n NullableID) NullableID {
	if !n.Set {
		return n
	}
	return SetID(n.ID)
}
