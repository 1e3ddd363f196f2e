// Package linkgraph maintains the forward-link / backlink relation between
// notes. Every function operates on a slice owned by the caller and keeps
// B.id ∈ A.Links ⟺ A.id ∈ B.Backlinks.
package linkgraph

import (
	"slices"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
)

// Resolve recomputes the links of noteID from its content and adjusts the
// backlinks of every other note whose membership changed. It reports whether
// any note was modified. Unknown ids are a no-op.
func Resolve(notes []*models.Note, noteID string) bool {
	src := find(notes, noteID)
	if src == nil {
		return false
	}

	refs := parser.References(src.Content)
	want := make(map[string]struct{}, len(refs))
	for _, r := range refs {
		want[r] = struct{}{}
	}

	links := []string{}
	if len(want) > 0 {
		for _, n := range notes {
			if n.ID == noteID || slices.Contains(links, n.ID) {
				continue
			}
			if _, ok := want[parser.Normalize(n.Title)]; ok {
				links = append(links, n.ID)
			}
		}
	}

	changed := !slices.Equal(src.Links, links)
	src.Links = links

	for _, n := range notes {
		if n.ID == noteID {
			continue
		}
		if setMember(&n.Backlinks, noteID, slices.Contains(links, n.ID)) {
			changed = true
		}
	}
	return changed
}

// Link adds a manual edge from -> to. Both ids must exist and differ.
func Link(notes []*models.Note, from, to string) bool {
	if from == to {
		return false
	}
	src, dst := find(notes, from), find(notes, to)
	if src == nil || dst == nil {
		return false
	}
	a := setMember(&src.Links, to, true)
	b := setMember(&dst.Backlinks, from, true)
	return a || b
}

// Unlink removes the edge from -> to in both directions of the relation.
func Unlink(notes []*models.Note, from, to string) bool {
	src, dst := find(notes, from), find(notes, to)
	changed := false
	if src != nil && setMember(&src.Links, to, false) {
		changed = true
	}
	if dst != nil && setMember(&dst.Backlinks, from, false) {
		changed = true
	}
	return changed
}

// Detach scrubs id from the links and backlinks of every note. Used when a
// note is removed from the collection.
func Detach(notes []*models.Note, id string) []*models.Note {
	var touched []*models.Note
	for _, n := range notes {
		if n.ID == id {
			continue
		}
		a := setMember(&n.Links, id, false)
		b := setMember(&n.Backlinks, id, false)
		if a || b {
			touched = append(touched, n)
		}
	}
	return touched
}

// Repair drops references to unknown ids and rebuilds every backlink list as
// the exact inverse of the links. It returns the number of notes modified.
func Repair(notes []*models.Note) int {
	ids := make(map[string]struct{}, len(notes))
	for _, n := range notes {
		ids[n.ID] = struct{}{}
	}

	inverse := make(map[string][]string, len(notes))
	modified := make(map[string]struct{})
	for _, n := range notes {
		kept := make([]string, 0, len(n.Links))
		for _, l := range n.Links {
			if _, ok := ids[l]; !ok || l == n.ID || slices.Contains(kept, l) {
				continue
			}
			kept = append(kept, l)
			inverse[l] = append(inverse[l], n.ID)
		}
		if !slices.Equal(kept, n.Links) {
			modified[n.ID] = struct{}{}
		}
		n.Links = kept
	}

	for _, n := range notes {
		want := inverse[n.ID]
		// Keep the existing order for entries that survive, then append new ones.
		back := make([]string, 0, len(want))
		for _, b := range n.Backlinks {
			if slices.Contains(want, b) && !slices.Contains(back, b) {
				back = append(back, b)
			}
		}
		for _, b := range want {
			if !slices.Contains(back, b) {
				back = append(back, b)
			}
		}
		if !slices.Equal(back, n.Backlinks) {
			modified[n.ID] = struct{}{}
		}
		n.Backlinks = back
	}
	return len(modified)
}

// Consistent reports whether the relation is symmetric across notes.
func Consistent(notes []*models.Note) bool {
	byID := make(map[string]*models.Note, len(notes))
	for _, n := range notes {
		byID[n.ID] = n
	}
	for _, a := range notes {
		for _, l := range a.Links {
			b, ok := byID[l]
			if !ok || !slices.Contains(b.Backlinks, a.ID) {
				return false
			}
		}
		for _, bl := range a.Backlinks {
			b, ok := byID[bl]
			if !ok || !slices.Contains(b.Links, a.ID) {
				return false
			}
		}
	}
	return true
}

func find(notes []*models.Note, id string) *models.Note {
	for _, n := range notes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

// setMember makes id present or absent in *list and reports a change.
func setMember(list *[]string, id string, present bool) bool {
	has := slices.Contains(*list, id)
	switch {
	case present && !has:
		*list = append(*list, id)
		return true
	case !present && has:
		*list = slices.DeleteFunc(*list, func(s string) bool { return s == id })
		return true
	}
	return false
}
