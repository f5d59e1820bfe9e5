package roomgraph

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/vrtour/pkg/tour"
)

// Layout engines.
const (
	// LayoutDot ranks rooms top to bottom from the entry room.
	LayoutDot = "dot"
	// LayoutPlan pins rooms at their floor plan coordinates.
	LayoutPlan = "plan"
)

// planScale converts floor plan units to Graphviz inches.
const planScale = 0.01

// Options configures room graph rendering.
type Options struct {
	// Detailed adds the room id, facing and hotspot count to labels.
	Detailed bool

	// Layout is LayoutDot (default) or LayoutPlan.
	Layout string

	// ShowMap titles the graph with the floor plan picture.
	ShowMap bool
}

// ToDOT converts a house to Graphviz DOT. Rooms linked both ways share a
// single double-headed edge. Hotspots pointing at unknown rooms end at a
// dashed "missing" node.
func ToDOT(h *tour.House, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#555555\"];\n")
	if opts.Layout == LayoutPlan {
		buf.WriteString("  splines=true;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n  ranksep=0.5;\n  nodesep=0.3;\n")
	}
	if opts.ShowMap && h.Map != nil {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", "floor plan "+h.Map.Picture)
	}
	buf.WriteString("\n")

	entry, hasEntry := h.Entry()
	known := make(map[int]bool, len(h.Rooms))
	for _, r := range h.Rooms {
		known[r.ID] = true
		attrs := fmtAttrs(r, opts, hasEntry && r.ID == entry.ID)
		fmt.Fprintf(&buf, "  %s [%s];\n", nodeID(r.ID), strings.Join(attrs, ", "))
	}

	missing := make(map[int]bool)
	for _, l := range h.Dangling() {
		if !missing[l.To] {
			missing[l.To] = true
			fmt.Fprintf(&buf, "  %s [label=%q, style=\"rounded,dashed\", fontcolor=red];\n",
				nodeID(l.To), fmt.Sprintf("missing #%d", l.To))
		}
	}

	buf.WriteString("\n")
	for _, e := range edges(h.Links()) {
		attrs := ""
		if e.both {
			attrs = " [dir=both]"
		} else if missing[e.to] {
			attrs = " [style=dashed, color=red]"
		}
		fmt.Fprintf(&buf, "  %s -> %s%s;\n", nodeID(e.from), nodeID(e.to), attrs)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(id int) string { return "r" + strconv.Itoa(id) }

func fmtLabel(r tour.Room, detailed bool) string {
	if !detailed {
		return r.Name
	}
	parts := []string{fmt.Sprintf("#%d", r.ID)}
	if r.Facing.Valid() {
		parts = append(parts, "facing: "+r.Facing.English())
	}
	parts = append(parts, fmt.Sprintf("hotspots: %d", len(r.Hotspots)))
	return r.Name + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(r tour.Room, opts Options, entry bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(r, opts.Detailed))}
	if entry {
		attrs = append(attrs, "penwidth=2")
	}
	if opts.Layout == LayoutPlan && r.Plan != nil {
		// y grows downwards on the floor plan and upwards in Graphviz.
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", r.Plan.X*planScale, -r.Plan.Y*planScale))
	}
	return attrs
}

type edge struct {
	from, to int
	both     bool
}

// edges collapses repeated and mutual links into one edge per room pair,
// in first-seen order.
func edges(links []tour.Link) []edge {
	type pair struct{ a, b int }
	index := make(map[pair]int)
	var out []edge
	for _, l := range links {
		if l.From == l.To {
			continue
		}
		if i, ok := index[pair{l.To, l.From}]; ok {
			out[i].both = true
			continue
		}
		if _, ok := index[pair{l.From, l.To}]; ok {
			continue
		}
		index[pair{l.From, l.To}] = len(out)
		out = append(out, edge{from: l.From, to: l.To})
	}
	return out
}

// RenderSVG renders a DOT graph to SVG in-process. LayoutPlan uses the
// neato engine so pinned positions are kept.
func RenderSVG(ctx context.Context, dot string, opts Options) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	if opts.Layout == LayoutPlan {
		gv.SetLayout(graphviz.NEATO)
	}

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
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the root svg tag so the drawing scales with its
// container.
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
	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
