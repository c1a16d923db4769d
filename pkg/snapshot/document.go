package snapshot

import (
	"encoding/json"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
)

// CurrentVersion is written by Encode.
const CurrentVersion = 2

// Document is the persisted form of a canvas.
type Document struct {
	Version   int                          `json:"version"`
	Nodes     map[string]canvas.Node       `json:"nodes"`
	Edges     map[string]canvas.Edge       `json:"edges"`
	NodeOrder []string                     `json:"nodeOrder"`
	Files     map[string]canvas.FileRecord `json:"files"`
	Viewport  canvas.Viewport              `json:"viewport"`
}

// FromState wraps a deep copy of s.
func FromState(s *canvas.State) *Document {
	c := s.Clone()
	return &Document{
		Version:   CurrentVersion,
		Nodes:     c.Nodes,
		Edges:     c.Edges,
		NodeOrder: c.NodeOrder,
		Files:     c.Files,
		Viewport:  c.Viewport,
	}
}

// Encode marshals s as an indented current-version document.
func Encode(s *canvas.State) ([]byte, error) {
	return json.MarshalIndent(FromState(s), "", "  ")
}
