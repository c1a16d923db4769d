// Package render provides visual export for canvases.
//
// # Overview
//
// The [nodelink] subpackage turns a canvas into Graphviz DOT and renders it
// to SVG in-process. This package converts any SVG to other formats:
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(state, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [ToPDF] and [ToPNG] shell out to rsvg-convert (from librsvg).
//
// [nodelink]: github.com/iamvince24/serenity-canvas/pkg/render/nodelink
package render
