// Package viewer is a software panorama host for the marker overlay.
//
// # Overview
//
// A [Viewer] models a camera standing at the centre of a unit sphere: it
// knows where the camera looks, how wide its field of view is and how large
// the viewport is. It implements [overlay.Host], so the overlay can be driven
// by it exactly as it would be by a browser panorama engine:
//
//	v := viewer.New(viewer.Options{Size: sphere.Size{Width: 800, Height: 600}})
//	ov := overlay.New(v, surface, overlay.Options{CanDrag: true})
//	defer ov.Close()
//
//	v.Rotate(0.1, 0) // fires a render notification, markers follow
//
// # Scene
//
// The panorama surface is a sphere tagged [PanoramaTag]. Additional objects
// can be placed in the scene with [Viewer.AddObject]; they take part in
// [Viewer.Intersections] but [Viewer.Unproject] ignores them, so dragging a
// marker across foreign geometry never snaps it onto that geometry.
//
// # Animation
//
// [Viewer.AnimateCamera] records a target and an angular speed. The caller
// advances it with [Viewer.Step], typically once per frame; each step that
// moves the camera fires a render notification.
//
// # Projection
//
// Projection is rectilinear. CellAspect stretches the horizontal axis for
// displays whose pixels are not square (terminal cells are roughly twice as
// tall as they are wide).
package viewer
