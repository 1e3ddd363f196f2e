package notestore

import (
	"time"

	"github.com/starford/quire/internal/linkgraph"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/persistence"
)

// DefaultSeed returns the welcome content shown on first start: three notes
// and two folders, with the first note and folder selected.
func DefaultSeed() *persistence.Snapshot {
	now := models.Now()
	day := 24 * time.Hour

	gettingStarted := &models.Folder{
		ID: "folder-1", Name: "getting started", Color: "#00ff88",
		CreatedAt: now, UpdatedAt: now,
	}
	projects := &models.Folder{
		ID: "folder-2", Name: "projects", Color: "#ff6b6b",
		CreatedAt: now, UpdatedAt: now,
	}

	welcome := seedNote("1", "welcome to notes",
		"this is your first note. click on any note to edit it or create a new one with the + button.",
		models.ID(gettingStarted.ID), now, "welcome", "getting-started")
	design := seedNote("2", "neo-brutalist design",
		"this notes app uses neo-brutalist design principles:\n\n• bold borders\n• high contrast\n• offset shadows\n• functional aesthetics\n\ntry creating more notes!\n\nThis note is linked to the [[welcome to notes]] note.",
		models.ID(gettingStarted.ID), now.Add(-day), "design", "brutalism")
	knowledge := seedNote("3", "knowledge management",
		"building a second brain with:\n\n• [[neo-brutalist design]] principles\n• interconnected notes\n• visual knowledge graphs\n• multimedia support",
		nil, now.Add(-2*day), "pkm", "second-brain")

	notes := []*models.Note{welcome, design, knowledge}
	for _, n := range notes {
		linkgraph.Resolve(notes, n.ID)
	}

	return &persistence.Snapshot{
		Version:          persistence.CurrentVersion,
		Notes:            notes,
		Folders:          []*models.Folder{gettingStarted, projects},
		SelectedNoteID:   persistence.SetID(models.ID(welcome.ID)),
		SelectedFolderID: persistence.SetID(models.ID(gettingStarted.ID)),
		CurrentTheme:     models.DefaultTheme(),
	}
}

func seedNote(id, title, content string, folderID *string, at time.Time, tags ...string) *models.Note {
	n := models.NewNote(folderID)
	n.ID = id
	n.Title = title
	n.Content = content
	n.Tags = tags
	n.CreatedAt = at
	n.UpdatedAt = at
	return n
}
