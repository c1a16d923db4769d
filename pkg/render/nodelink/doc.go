// Package nodelink renders canvases as Graphviz node-link diagrams.
//
// # Usage
//
//	dot := nodelink.ToDOT(state, nodelink.Options{Pinned: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Nodes are emitted in layer order, bottom first, so later nodes paint over
// earlier ones. Text nodes are labelled with the first line of their
// markdown, image nodes with their caption. Palette colors map directly to
// Graphviz color names, and edge direction and line style map to the dir
// and style attributes.
//
// # Layout
//
// With [Options.Pinned] the diagram uses the neato engine and pins every
// node at its canvas position (canvas pixels are treated as points, and the
// y axis is flipped). Otherwise dot lays the graph out left to right.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion lives in the parent render package.
package nodelink
