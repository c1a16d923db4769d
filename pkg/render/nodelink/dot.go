package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/iamvince24/serenity-canvas/pkg/canvas"
)

// pointsPerInch converts canvas pixels (treated as points) to Graphviz inches.
const pointsPerInch = 72.0

// maxLabelRunes truncates node labels.
const maxLabelRunes = 40

// Options configures diagram generation.
type Options struct {
	// Pinned places nodes at their canvas coordinates instead of letting
	// Graphviz lay them out.
	Pinned bool
}

// ToDOT converts a canvas to Graphviz DOT.
func ToDOT(s *canvas.State, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph canvas {\n")
	if opts.Pinned {
		buf.WriteString("  layout=neato;\n")
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=LR;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, n := range s.OrderedNodes() {
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(nodeAttrs(n, opts), ", "))
	}

	buf.WriteString("\n")
	for _, id := range slices.Sorted(maps.Keys(s.Edges)) {
		e := s.Edges[id]
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.FromNode, e.ToNode, strings.Join(edgeAttrs(e), ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Label returns the text shown for n.
func Label(n canvas.Node) string {
	text := strings.TrimSpace(n.Text())
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimLeft(text, "# ")
	if text == "" {
		if n.Kind == canvas.KindImage {
			return "image"
		}
		return n.ID
	}
	if r := []rune(text); len(r) > maxLabelRunes {
		text = string(r[:maxLabelRunes-1]) + "…"
	}
	return text
}

func nodeAttrs(n canvas.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", Label(n))}
	if n.Kind == canvas.KindImage {
		attrs = append(attrs, "shape=note")
	}
	if n.Color != nil {
		attrs = append(attrs, fmt.Sprintf("color=%s", *n.Color), fmt.Sprintf("fillcolor=%q", *n.Color+":white"))
	}
	if opts.Pinned {
		cx, cy := n.Center()
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%.2f,%.2f!\"", cx/pointsPerInch, -cy/pointsPerInch),
			fmt.Sprintf("width=%.2f", n.Width/pointsPerInch),
			fmt.Sprintf("height=%.2f", n.Height/pointsPerInch),
			"fixedsize=true",
		)
	}
	return attrs
}

func edgeAttrs(e canvas.Edge) []string {
	dir := "forward"
	switch e.Direction {
	case canvas.DirectionNone:
		dir = "none"
	case canvas.DirectionBoth:
		dir = "both"
	}
	attrs := []string{"dir=" + dir}
	if e.LineStyle == canvas.LineDashed || e.LineStyle == canvas.LineDotted {
		attrs = append(attrs, "style="+string(e.LineStyle))
	}
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	if e.Color != nil {
		attrs = append(attrs, "color="+*e.Color)
	}
	return attrs
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
