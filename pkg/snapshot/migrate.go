package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
	"github.com/iamvince24/serenity-canvas/pkg/errors"
)

// Report lists what Migrate changed.
type Report struct {
	FromVersion    int
	LegacyNodes    []string // nodes rewritten from a legacy shape
	ExtractedFiles []string // file records lifted out of image nodes
	DroppedOrder   []string // order entries without a node
	AppendedOrder  []string // nodes missing from the order
	DroppedEdges   []string // edges with a missing or identical endpoint
}

// Changed reports whether migration altered anything.
func (r *Report) Changed() bool {
	return r.FromVersion != CurrentVersion ||
		len(r.LegacyNodes)+len(r.ExtractedFiles)+len(r.DroppedOrder)+
			len(r.AppendedOrder)+len(r.DroppedEdges) > 0
}

type rawDocument struct {
	Version   int                          `json:"version"`
	Nodes     json.RawMessage              `json:"nodes"`
	Edges     json.RawMessage              `json:"edges"`
	NodeOrder []string                     `json:"nodeOrder"`
	Files     map[string]canvas.FileRecord `json:"files"`
	Viewport  *canvas.Viewport             `json:"viewport"`
}

// rawNode accepts both the current and the legacy node shape.
type rawNode struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Width      float64 `json:"width"`
	Height     float64 `json:"height"`
	HeightMode string  `json:"heightMode"`
	Color      *string `json:"color"`

	ContentMarkdown       *string `json:"contentMarkdown"`
	LegacyContentMarkdown *string `json:"content_markdown"`
	Content               string  `json:"content"`
	AssetID               string  `json:"assetId"`

	// Legacy inline image metadata.
	MimeType       string `json:"mime_type"`
	OriginalWidth  int    `json:"original_width"`
	OriginalHeight int    `json:"original_height"`
	ByteSize       int64  `json:"byte_size"`
	CreatedAt      int64  `json:"created_at"`
}

// Migrate parses data in any supported format and returns a valid state.
func Migrate(data []byte) (*canvas.State, *Report, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse snapshot")
	}
	report := &Report{FromVersion: doc.Version}

	s := canvas.NewState()
	if doc.Viewport != nil && doc.Viewport.Zoom > 0 {
		s.Viewport = *doc.Viewport
	}
	for id, f := range doc.Files {
		if f.ID == "" {
			f.ID = id
		}
		s.Files[id] = f
	}

	keys, nodes, err := decodeNodes(doc.Nodes)
	if err != nil {
		return nil, nil, err
	}
	for i, raw := range nodes {
		n, file, legacy := normalizeNode(raw, keys[i])
		if err := errors.ValidateID(n.ID); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "node %d", i)
		}
		if _, dup := s.Nodes[n.ID]; dup {
			return nil, nil, errors.New(errors.ErrCodeInvalidSnapshot, "duplicate node id %q", n.ID)
		}
		s.Nodes[n.ID] = n
		if legacy {
			report.LegacyNodes = append(report.LegacyNodes, n.ID)
		}
		if file != nil {
			if _, ok := s.Files[file.ID]; !ok {
				s.Files[file.ID] = *file
				report.ExtractedFiles = append(report.ExtractedFiles, file.ID)
			}
		}
	}

	order := make([]string, len(keys))
	for i, raw := range nodes {
		order[i] = nodeID(raw, keys[i])
	}
	s.NodeOrder, report.DroppedOrder, report.AppendedOrder = MigrateOrder(doc.NodeOrder, order)
	if doc.NodeOrder == nil {
		// No persisted order: key order is the order, nothing was appended.
		report.AppendedOrder = nil
	}

	edges, err := decodeEdges(doc.Edges)
	if err != nil {
		return nil, nil, err
	}
	for _, e := range edges {
		if e.Direction == "" {
			e.Direction = canvas.DirectionForward
		}
		if e.LineStyle == "" {
			e.LineStyle = canvas.LineSolid
		}
		_, fromOK := s.Nodes[e.FromNode]
		_, toOK := s.Nodes[e.ToNode]
		if e.ID == "" || !fromOK || !toOK || e.FromNode == e.ToNode {
			report.DroppedEdges = append(report.DroppedEdges, e.ID)
			continue
		}
		s.Edges[e.ID] = e
	}

	if err := s.Validate(); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "migrated snapshot is inconsistent")
	}
	return s, report, nil
}

// MigrateOrder reconciles a persisted order with the node ids in their
// original key order: unknown and duplicate entries are dropped, and
// nodes missing from the order are appended in key order.
func MigrateOrder(persisted, keys []string) (order, dropped, appended []string) {
	known := make(map[string]bool, len(keys))
	for _, k := range keys {
		known[k] = true
	}
	seen := make(map[string]bool, len(keys))
	order = make([]string, 0, len(keys))
	for _, id := range persisted {
		if !known[id] || seen[id] {
			dropped = append(dropped, id)
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			order = append(order, k)
			appended = append(appended, k)
		}
	}
	return order, dropped, appended
}

// decodeNodes reads the nodes collection, either an object keyed by id or
// an array, preserving document order.
func decodeNodes(raw json.RawMessage) ([]string, []rawNode, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil, nil
	}
	if raw[0] == '[' {
		var nodes []rawNode
		if err := json.Unmarshal(raw, &nodes); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse nodes")
		}
		keys := make([]string, len(nodes))
		for i, n := range nodes {
			keys[i] = n.ID
		}
		return keys, nodes, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('{') {
		return nil, nil, errors.New(errors.ErrCodeInvalidSnapshot, "nodes must be an object or an array")
	}
	var (
		keys  []string
		nodes []rawNode
	)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse nodes")
		}
		key, _ := tok.(string)
		var n rawNode
		if err := dec.Decode(&n); err != nil {
			return nil, nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse node %q", key)
		}
		keys = append(keys, key)
		nodes = append(nodes, n)
	}
	return keys, nodes, nil
}

func decodeEdges(raw json.RawMessage) ([]canvas.Edge, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] == '[' {
		var edges []canvas.Edge
		if err := json.Unmarshal(raw, &edges); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse edges")
		}
		return edges, nil
	}
	var byID map[string]canvas.Edge
	if err := json.Unmarshal(raw, &byID); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidSnapshot, err, "parse edges")
	}
	edges := make([]canvas.Edge, 0, len(byID))
	for _, id := range slices.Sorted(maps.Keys(byID)) {
		e := byID[id]
		if e.ID == "" {
			e.ID = id
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func nodeID(raw rawNode, key string) string {
	if raw.ID != "" {
		return raw.ID
	}
	return key
}

// normalizeNode converts raw into the current node shape. It returns the
// file record carried inline by legacy image nodes, and whether raw used
// any legacy field.
func normalizeNode(raw rawNode, key string) (canvas.Node, *canvas.FileRecord, bool) {
	kind := canvas.NodeKind(raw.Type)
	if kind != canvas.KindImage {
		kind = canvas.KindText
	}

	n := canvas.Node{
		Base: canvas.Base{
			ID:         nodeID(raw, key),
			X:          raw.X,
			Y:          raw.Y,
			Width:      raw.Width,
			Height:     raw.Height,
			HeightMode: canvas.HeightMode(raw.HeightMode),
			Color:      raw.Color,
		},
		Kind: kind,
	}
	w, h := canvas.DefaultSize(kind)
	if n.Width <= 0 {
		n.Width = w
	}
	if n.Height <= 0 {
		n.Height = h
	}
	if n.HeightMode != canvas.HeightAuto && n.HeightMode != canvas.HeightFixed {
		n.HeightMode = canvas.HeightAuto
		if kind == canvas.KindImage {
			n.HeightMode = canvas.HeightFixed
		}
	}
	if !canvas.ValidColor(n.Color) {
		n.Color = nil
	}

	legacy := false
	var file *canvas.FileRecord
	switch kind {
	case canvas.KindText:
		switch {
		case raw.ContentMarkdown != nil:
			n.ContentMarkdown = *raw.ContentMarkdown
		case raw.LegacyContentMarkdown != nil:
			n.ContentMarkdown = *raw.LegacyContentMarkdown
			legacy = true
		}
	case canvas.KindImage:
		n.Content = raw.Content
		n.AssetID = raw.AssetID
		if raw.MimeType != "" {
			legacy = true
			if raw.AssetID != "" {
				file = &canvas.FileRecord{
					ID:             raw.AssetID,
					MimeType:       raw.MimeType,
					OriginalWidth:  raw.OriginalWidth,
					OriginalHeight: raw.OriginalHeight,
					ByteSize:       raw.ByteSize,
					CreatedAt:      raw.CreatedAt,
				}
			}
		}
	}
	return n, file, legacy
}

// String summarizes the report for logs.
func (r *Report) String() string {
	return fmt.Sprintf("v%d→v%d legacy=%d files=%d dropped-order=%d appended-order=%d dropped-edges=%d",
		r.FromVersion, CurrentVersion, len(r.LegacyNodes), len(r.ExtractedFiles),
		len(r.DroppedOrder), len(r.AppendedOrder), len(r.DroppedEdges))
}
