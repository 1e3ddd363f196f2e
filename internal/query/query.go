// Package query implements the read-only views over the note and folder
// collections. Nothing here mutates its inputs.
package query

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
)

// NotesInFolder returns notes whose folder is exactly folderID (nil = unfiled).
func NotesInFolder(notes []*models.Note, folderID *string) []*models.Note {
	out := []*models.Note{}
	for _, n := range notes {
		if n.InFolder(folderID) {
			out = append(out, n)
		}
	}
	return out
}

// Filter returns notes whose title or content contains term, ignoring case.
// An empty term returns every note.
func Filter(notes []*models.Note, term string) []*models.Note {
	if term == "" {
		return slices.Clone(notes)
	}
	needle := strings.ToLower(term)
	out := []*models.Note{}
	for _, n := range notes {
		if strings.Contains(strings.ToLower(n.Title), needle) ||
			strings.Contains(strings.ToLower(n.Content), needle) {
			out = append(out, n)
		}
	}
	return out
}

// AllTags returns the sorted, de-duplicated union of every note's tags.
func AllTags(notes []*models.Note) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, n := range notes {
		for _, t := range n.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

// NotesWithTag returns notes carrying exactly tag.
func NotesWithTag(notes []*models.Note, tag string) []*models.Note {
	out := []*models.Note{}
	for _, n := range notes {
		if n.HasTag(tag) {
			out = append(out, n)
		}
	}
	return out
}

// Backlinked resolves the backlinks of noteID to notes. Unknown ids yield an
// empty result.
func Backlinked(notes []*models.Note, noteID string) []*models.Note {
	out := []*models.Note{}
	var target *models.Note
	for _, n := range notes {
		if n.ID == noteID {
			target = n
			break
		}
	}
	if target == nil {
		return out
	}
	for _, n := range notes {
		if slices.Contains(target.Backlinks, n.ID) {
			out = append(out, n)
		}
	}
	return out
}

// GraphNodes returns one node per note and per folder. A note's connections
// are its links followed by its backlinks; a folder's are the notes filed in it.
func GraphNodes(notes []*models.Note, folders []*models.Folder) []models.GraphNode {
	out := make([]models.GraphNode, 0, len(notes)+len(folders))
	for _, n := range notes {
		conns := make([]string, 0, len(n.Links)+len(n.Backlinks))
		conns = append(conns, n.Links...)
		conns = append(conns, n.Backlinks...)
		out = append(out, models.GraphNode{ID: n.ID, Title: n.Title, Type: models.NodeNote, Connections: conns})
	}
	for _, f := range folders {
		conns := []string{}
		id := f.ID
		for _, n := range NotesInFolder(notes, &id) {
			conns = append(conns, n.ID)
		}
		out = append(out, models.GraphNode{ID: f.ID, Title: f.Name, Type: models.NodeFolder, Connections: conns})
	}
	return out
}

// GraphConnections returns one link edge per forward link and one folder edge
// per note filed in an existing folder.
func GraphConnections(notes []*models.Note, folders []*models.Folder) []models.GraphConnection {
	known := make(map[string]struct{}, len(folders))
	for _, f := range folders {
		known[f.ID] = struct{}{}
	}
	out := []models.GraphConnection{}
	for _, n := range notes {
		for _, l := range n.Links {
			out = append(out, models.GraphConnection{
				ID:       n.ID + "-" + l,
				SourceID: n.ID,
				TargetID: l,
				Type:     models.ConnectionLink,
			})
		}
	}
	for _, n := range notes {
		if n.FolderID == nil {
			continue
		}
		if _, ok := known[*n.FolderID]; !ok {
			continue
		}
		out = append(out, models.GraphConnection{
			ID:       *n.FolderID + "-" + n.ID,
			SourceID: *n.FolderID,
			TargetID: n.ID,
			Type:     models.ConnectionFolder,
		})
	}
	return out
}

// Snippet returns up to limit runes of the note's plain text, with an ellipsis
// when truncated.
func Snippet(content string, limit int) string {
	text := parser.PlainText(content)
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	r := []rune(text)
	return strings.TrimSpace(string(r[:limit])) + "…"
}
