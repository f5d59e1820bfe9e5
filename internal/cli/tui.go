package cli

import (
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/vrtour/pkg/overlay"
	"github.com/matzehuels/vrtour/pkg/sphere"
	"github.com/matzehuels/vrtour/pkg/tour"
)

// Panorama styles
var (
	markerStyle      = lipgloss.NewStyle().Foreground(colorWhite).Background(lipgloss.Color("24")).Bold(true)
	markerLeaveStyle = lipgloss.NewStyle().Foreground(colorDim).Strikethrough(true)
	horizonStyle     = lipgloss.NewStyle().Foreground(colorDim)
	compassStyle     = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	trashStyle       = lipgloss.NewStyle().Foreground(colorRed)
	modeEditStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorYellow).Padding(0, 1)
	modeViewStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(colorCyan).Padding(0, 1)
)

// markerIcon prefixes every marker label.
const markerIcon = "◉ "

// leaveFrames is how many frames the leave transition of a removed marker
// lasts.
const leaveFrames = 8

// =============================================================================
// termSurface - overlay.Surface drawn into terminal cells
// =============================================================================

// termSurface keeps marker elements for the terminal viewer. It is safe for
// concurrent use.
type termSurface struct {
	mu       sync.Mutex
	elements []*termElement // attach order, later on top
}

// termElement is one marker label. Its anchor is the centre of the label.
type termElement struct {
	s       *termSurface
	text    string
	pos     sphere.Point
	visible bool
	leaving int // frames left of the leave transition; 0 when idle
	onEnd   []func()
}

// elementView is a drawing snapshot of one element.
type elementView struct {
	text    string
	pos     sphere.Point
	leaving bool
}

func newTermSurface() *termSurface {
	return &termSurface{}
}

// Attach implements overlay.Surface.
func (s *termSurface) Attach(c overlay.Content) overlay.Element {
	var label string
	switch v := c.(type) {
	case overlay.Markup:
		label = string(v)
	case overlay.Node:
		label = fmt.Sprint(v.Value)
	}
	e := &termElement{s: s, text: markerIcon + label}
	s.mu.Lock()
	s.elements = append(s.elements, e)
	s.mu.Unlock()
	return e
}

// Detach implements overlay.Surface.
func (s *termSurface) Detach(el overlay.Element) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.elements = slices.DeleteFunc(s.elements, func(e *termElement) bool { return e == el })
}

// step advances leave transitions by one frame and runs the end callbacks
// of those that finished.
func (s *termSurface) step() {
	var done []func()
	s.mu.Lock()
	for _, e := range s.elements {
		if e.leaving == 0 {
			continue
		}
		e.leaving--
		if e.leaving == 0 {
			done = append(done, e.onEnd...)
			e.onEnd = nil
		}
	}
	s.mu.Unlock()

	for _, fn := range done {
		fn()
	}
}

// snapshot returns the visible elements in drawing order.
func (s *termSurface) snapshot() []elementView {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]elementView, 0, len(s.elements))
	for _, e := range s.elements {
		if e.visible {
			out = append(out, elementView{text: e.text, pos: e.pos, leaving: e.leaving > 0})
		}
	}
	return out
}

// Size implements overlay.Element. Labels are one row high.
func (e *termElement) Size() sphere.Size {
	return sphere.Size{Width: float64(lipgloss.Width(e.text)), Height: 1}
}

func (e *termElement) SetPosition(p sphere.Point) {
	e.s.mu.Lock()
	e.pos = p
	e.s.mu.Unlock()
}

func (e *termElement) SetVisible(visible bool) {
	e.s.mu.Lock()
	e.visible = visible
	e.s.mu.Unlock()
}

// AddClass starts the leave transition for tour.LeaveClass and ignores
// other classes.
func (e *termElement) AddClass(name string) {
	if name != tour.LeaveClass {
		return
	}
	e.s.mu.Lock()
	e.leaving = leaveFrames
	e.s.mu.Unlock()
}

func (e *termElement) OnTransitionEnd(fn func()) {
	e.s.mu.Lock()
	e.onEnd = append(e.onEnd, fn)
	e.s.mu.Unlock()
}

// =============================================================================
// canvas - styled cell grid
// =============================================================================

// cellPoint maps terminal cell (x, y) to viewport coordinates. Columns are
// sampled at their centre; row y is the viewport line y, so an element
// centred on y is drawn in that row.
func cellPoint(x, y int) sphere.Point {
	return sphere.Point{X: float64(x) + 0.5, Y: float64(y)}
}

type cell struct {
	ch    string // "" for the right half of a wide rune
	style *lipgloss.Style
}

type canvas struct {
	w, h  int
	cells [][]cell
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([][]cell, h)}
	for y := range c.cells {
		row := make([]cell, w)
		for x := range row {
			row[x] = cell{ch: " "}
		}
		c.cells[y] = row
	}
	return c
}

// text writes s starting at column x of row y, clipped to the canvas.
func (c *canvas) text(x, y int, s string, style *lipgloss.Style) {
	if y < 0 || y >= c.h {
		return
	}
	for _, r := range s {
		w := lipgloss.Width(string(r))
		if x >= 0 && x+w <= c.w {
			c.cells[y][x] = cell{ch: string(r), style: style}
			for i := 1; i < w; i++ {
				c.cells[y][x+i] = cell{style: style}
			}
		}
		x += w
	}
}

// centered writes s centred on p.
func (c *canvas) centered(p sphere.Point, s string, style *lipgloss.Style) {
	x := int(math.Round(p.X - float64(lipgloss.Width(s))/2))
	c.text(x, int(math.Round(p.Y)), s, style)
}

// box outlines r with a title on its top edge.
func (c *canvas) box(r sphere.Rect, title string, style *lipgloss.Style) {
	left, top := int(r.Left), int(r.Top)
	right, bottom := int(r.Right())-1, int(r.Bottom())-1
	if right <= left || bottom <= top {
		return
	}
	inner := right - left - 1
	c.text(left, top, "┌"+strings.Repeat("─", inner)+"┐", style)
	for y := top + 1; y < bottom; y++ {
		c.text(left, y, "│", style)
		c.text(right, y, "│", style)
	}
	c.text(left, bottom, "└"+strings.Repeat("─", inner)+"┘", style)
	c.centered(sphere.Point{X: r.Center().X, Y: float64(top+bottom) / 2}, title, style)
}

// String renders the canvas, one styled run per style change.
func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			style := row[x].style
			var run strings.Builder
			for ; x < len(row) && row[x].style == style; x++ {
				run.WriteString(row[x].ch)
			}
			if style == nil {
				b.WriteString(run.String())
			} else {
				b.WriteString(style.Render(run.String()))
			}
		}
	}
	return b.String()
}
