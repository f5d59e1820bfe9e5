// Package roomgraph draws the rooms of a house and the hotspots between them.
//
// Convert a house to DOT, then render it to SVG:
//
//	dot := roomgraph.ToDOT(house, roomgraph.Options{Detailed: true})
//	svg, err := roomgraph.RenderSVG(ctx, dot, roomgraph.Options{})
//
// The entry room is drawn with a thick border. Rooms that link to each other
// share one double-headed edge, and hotspots that point at rooms missing from
// the manifest end at a dashed red node, which makes broken tours easy to spot.
//
// With [LayoutPlan], rooms that carry floor plan coordinates are pinned at
// them and the neato engine routes the edges.
//
// Rendering is done in-process by [github.com/goccy/go-graphviz].
package roomgraph
