package tour

import (
	"fmt"
	"math"
	"strings"
)

// Facing is the compass direction a room's panorama starts at (chaoxiang).
type Facing string

// Facings as they appear in manifests.
const (
	East  Facing = "东"
	South Facing = "南"
	West  Facing = "西"
	North Facing = "北"
)

var facingNames = map[Facing]string{
	East:  "east",
	South: "south",
	West:  "west",
	North: "north",
}

// Valid reports whether f is one of the four facings.
func (f Facing) Valid() bool {
	_, ok := facingNames[f]
	return ok
}

// English returns the English name, or "" for an invalid facing.
func (f Facing) English() string { return facingNames[f] }

// Bearing returns the compass bearing in radians, clockwise from north.
func (f Facing) Bearing() float64 {
	switch f {
	case East:
		return math.Pi / 2
	case South:
		return math.Pi
	case West:
		return 3 * math.Pi / 2
	default:
		return 0
	}
}

// ParseFacing accepts either the manifest character or the English name.
func ParseFacing(s string) (Facing, error) {
	f := Facing(strings.TrimSpace(s))
	if f.Valid() {
		return f, nil
	}
	for k, name := range facingNames {
		if strings.EqualFold(string(f), name) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown facing %q", s)
}

// Mode is the interaction mode of a tour.
type Mode int

const (
	// View navigates between rooms on hotspot click.
	View Mode = iota
	// Edit lets hotspots be dragged, dropped and deleted.
	Edit
)

// String returns "view" or "edit".
func (m Mode) String() string {
	if m == Edit {
		return "edit"
	}
	return "view"
}

// ParseMode parses "view" or "edit".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "view", "":
		return View, nil
	case "edit":
		return Edit, nil
	default:
		return View, fmt.Errorf("unknown mode %q (want view or edit)", s)
	}
}
