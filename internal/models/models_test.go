package models

import (
	"testing"
	"time"
)

func TestNewNote(t *testing.T) {
	n := NewNote(ID("f1"))
	if n.ID == "" || n.Title != DefaultNoteTitle {
		t.Errorf("note = %+v", n)
	}
	if !n.InFolder(ID("f1")) || n.InFolder(nil) {
		t.Error("folder membership wrong")
	}
	if n.Tags == nil || n.Links == nil || n.Backlinks == nil || n.Attachments == nil {
		t.Error("new note has nil slices")
	}
	if !n.CreatedAt.Equal(n.UpdatedAt) || n.CreatedAt.Nanosecond()%int(time.Millisecond) != 0 {
		t.Errorf("timestamps = %v / %v", n.CreatedAt, n.UpdatedAt)
	}
	if other := NewNote(nil); other.ID == n.ID {
		t.Error("ids collide")
	}
}

func TestNoteApply(t *testing.T) {
	n := NewNote(ID("f1"))
	n.UpdatedAt = n.UpdatedAt.Add(-time.Hour)
	before := n.UpdatedAt

	title := "Plan"
	if n.Apply(NotePatch{Title: &title}) {
		t.Error("title-only patch reported a content change")
	}
	if n.Title != "Plan" || !n.UpdatedAt.After(before) {
		t.Errorf("after title patch: %+v", n)
	}

	content := "see [[x]]"
	if !n.Apply(NotePatch{Content: &content}) {
		t.Error("content patch not reported")
	}
	if n.Apply(NotePatch{Content: &content}) {
		t.Error("identical content reported as a change")
	}

	n.Apply(NotePatch{Tags: []string{" a ", "a", "", "b"}})
	if len(n.Tags) != 2 || n.Tags[0] != "a" || n.Tags[1] != "b" {
		t.Errorf("tags = %v", n.Tags)
	}

	cur := CurrentFolder()
	n.Apply(NotePatch{Folder: &cur})
	if !n.InFolder(ID("f1")) {
		t.Error("current-folder ref moved the note")
	}
	unfiled := Unfiled()
	n.Apply(NotePatch{Folder: &unfiled})
	if n.FolderID != nil {
		t.Error("unfiled ref kept the folder")
	}
}

func TestNoteClone(t *testing.T) {
	n := NewNote(ID("f1"))
	n.Tags = []string{"a"}
	c := n.Clone()
	c.Tags[0] = "changed"
	*c.FolderID = "f2"
	if n.Tags[0] != "a" || *n.FolderID != "f1" {
		t.Error("clone shares state with original")
	}
	if (*Note)(nil).Clone() != nil {
		t.Error("nil clone")
	}
}

func TestNoteNormalize(t *testing.T) {
	created := Now()
	n := &Note{ID: "x", CreatedAt: created}
	n.Normalize()
	if n.Tags == nil || n.Links == nil || n.Backlinks == nil || n.Attachments == nil {
		t.Error("nil slices after Normalize")
	}
	if !n.UpdatedAt.Equal(created) {
		t.Errorf("updatedAt = %v, want %v", n.UpdatedAt, created)
	}
}

func TestSameID(t *testing.T) {
	cases := []struct {
		a, b *string
		want bool
	}{
		{nil, nil, true},
		{ID("a"), nil, false},
		{nil, ID("a"), false},
		{ID("a"), ID("a"), true},
		{ID("a"), ID("b"), false},
	}
	for _, tc := range cases {
		if got := SameID(tc.a, tc.b); got != tc.want {
			t.Errorf("SameID(%v, %v) = %v", tc.a, tc.b, got)
		}
	}
}

func TestFolderRef(t *testing.T) {
	sel := ID("sel")
	if got := CurrentFolder().Resolve(sel); got == nil || *got != "sel" {
		t.Errorf("current resolves to %v", got)
	}
	if got := Unfiled().Resolve(sel); got != nil {
		t.Errorf("unfiled resolves to %v", *got)
	}
	if got := InFolder("f").Resolve(sel); got == nil || *got != "f" {
		t.Errorf("explicit resolves to %v", got)
	}
	if RefFromID(nil).ID() != nil || *RefFromID(ID("f")).ID() != "f" {
		t.Error("RefFromID")
	}
}

func TestNewFolderAndPatch(t *testing.T) {
	f := NewFolder(nil, "")
	if f.Name != DefaultFolderName || !f.IsRoot() {
		t.Errorf("folder = %+v", f)
	}
	name, icon := "docs", "book"
	f.Apply(FolderPatch{Name: &name, Icon: &icon})
	if f.Name != "docs" || f.Icon != "book" {
		t.Errorf("after patch = %+v", f)
	}
	c := f.Clone()
	c.Name = "x"
	if f.Name != "docs" {
		t.Error("clone shares state")
	}
}

func TestThemes(t *testing.T) {
	themes := DefaultThemes()
	if len(themes) != 4 {
		t.Fatalf("themes = %d, want 4", len(themes))
	}
	d := DefaultTheme()
	if d["name"] != "dark brutalist" || d["accent"] != "#00ff88" {
		t.Errorf("default = %v", d)
	}
	c := d.Clone()
	c["accent"] = "#000"
	if d["accent"] != "#00ff88" {
		t.Error("clone shares map")
	}
}
