// Package render holds output helpers shared by the vrtour renderers.
//
// [Convert] turns an SVG into PDF or PNG with the external rsvg-convert tool
// (from librsvg):
//
//	svg, err := roomgraph.RenderSVG(ctx, dot, roomgraph.Options{})
//	png, err := render.Convert(svg, render.FormatPNG, 2.0)
//
// The [roomgraph] subpackage draws the rooms of a house and the hotspots
// linking them as a Graphviz diagram.
//
// [roomgraph]: github.com/matzehuels/vrtour/pkg/render/roomgraph
package render
