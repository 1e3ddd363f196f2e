package models

// Graph node kinds.
const (
	NodeNote   = "note"
	NodeFolder = "folder"
)

// Graph connection kinds. ConnectionTag is part of the taxonomy but the
// query engine does not emit it yet.
const (
	ConnectionLink   = "link"
	ConnectionFolder = "folder"
	ConnectionTag    = "tag"
)

// GraphNode is one vertex of the display graph.
type GraphNode struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Type        string   `json:"type"`
	Connections []string `json:"connections"`
}

// GraphConnection is one directed edge of the display graph.
type GraphConnection struct {
	ID       string `json:"id"`
	SourceID string `json:"sourceId"`
	TargetID string `json:"targetId"`
	Type     string `json:"type"`
}
