package roomgraph

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/vrtour/pkg/tour"
)

func testHouse() *tour.House {
	return &tour.House{
		Rooms: []tour.Room{
			{ID: 1, Name: "客厅", Facing: tour.South, Plan: &tour.PlanPoint{X: 100, Y: 200},
				Hotspots: []tour.Hotspot{{Target: 2}, {Target: 3}, {Target: 2}}},
			{ID: 2, Name: "厨房", Hotspots: []tour.Hotspot{{Target: 1}}},
			{ID: 3, Name: "卧室", Hotspots: []tour.Hotspot{{Target: 8}}},
		},
		Map: &tour.MapDetail{ID: 9, Picture: "9.jpg"},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(testHouse(), Options{})

	for _, want := range []string{
		"digraph G",
		`r1 [label="客厅", penwidth=2]`,
		`r2 [label="厨房"]`,
		"rankdir=TB",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "floor plan") {
		t.Error("map title shown without ShowMap")
	}
}

func TestToDOT_MutualLinksCollapse(t *testing.T) {
	dot := ToDOT(testHouse(), Options{})

	if got := strings.Count(dot, "r1 -> r2"); got != 1 {
		t.Errorf("r1 -> r2 appears %d times, want 1:\n%s", got, dot)
	}
	if !strings.Contains(dot, "r1 -> r2 [dir=both]") {
		t.Errorf("mutual link not double-headed:\n%s", dot)
	}
	if strings.Contains(dot, "r2 -> r1") {
		t.Errorf("reverse edge not collapsed:\n%s", dot)
	}
	if !strings.Contains(dot, "r1 -> r3;") {
		t.Errorf("one-way link missing:\n%s", dot)
	}
}

func TestToDOT_Dangling(t *testing.T) {
	dot := ToDOT(testHouse(), Options{})

	if !strings.Contains(dot, `r8 [label="missing #8"`) {
		t.Errorf("missing node not drawn:\n%s", dot)
	}
	if !strings.Contains(dot, "r3 -> r8 [style=dashed, color=red]") {
		t.Errorf("dangling edge not dashed:\n%s", dot)
	}
}

func TestToDOT_PlanLayout(t *testing.T) {
	dot := ToDOT(testHouse(), Options{Layout: LayoutPlan, ShowMap: true})

	if !strings.Contains(dot, `pos="1.00,-2.00!"`) {
		t.Errorf("room 1 not pinned:\n%s", dot)
	}
	if strings.Contains(dot, "rankdir") {
		t.Error("plan layout should not set rankdir")
	}
	if !strings.Contains(dot, `label="floor plan 9.jpg"`) {
		t.Errorf("map title missing:\n%s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	r := testHouse().Rooms[0]
	if got := fmtLabel(r, false); got != "客厅" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	got := fmtLabel(r, true)
	for _, want := range []string{"#1", "facing: south", "hotspots: 3"} {
		if !strings.Contains(got, want) {
			t.Errorf("fmtLabel() detailed = %q, missing %q", got, want)
		}
	}
	if strings.Contains(fmtLabel(testHouse().Rooms[1], true), "facing") {
		t.Error("room without facing should not show one")
	}
}

func TestEdgesSkipsSelfLinks(t *testing.T) {
	got := edges([]tour.Link{{From: 1, To: 1}, {From: 1, To: 2}, {From: 1, To: 2}})
	if len(got) != 1 || got[0] != (edge{from: 1, to: 2}) {
		t.Errorf("edges() = %+v", got)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20">`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

func TestRenderSVG(t *testing.T) {
	for _, layout := range []string{LayoutDot, LayoutPlan} {
		t.Run(layout, func(t *testing.T) {
			opts := Options{Layout: layout}
			svg, err := RenderSVG(context.Background(), ToDOT(testHouse(), opts), opts)
			if err != nil {
				t.Fatalf("RenderSVG() error = %v", err)
			}
			out := string(svg)
			if !strings.Contains(out, "<svg") || !strings.Contains(out, "厨房") {
				t.Errorf("RenderSVG() output does not look like the room graph:\n%s", out)
			}
		})
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {", Options{}); err == nil {
		t.Error("RenderSVG() accepted broken DOT")
	}
}
