// Package overlay keeps interactive marker elements attached to directions on
// a panorama sphere.
//
// # Overview
//
// An [Overlay] sits between a panorama engine (the [Host]) and a container of
// on-screen elements (the [Surface]). It owns a registry of markers, each
// bound to a scene direction, and does three things:
//
//   - On every host render it projects each marker's direction to the screen,
//     shows it there if it is in view and hides it otherwise.
//   - It turns pointer input into drags. While a marker is dragged its element
//     follows the pointer and its direction is re-derived by casting a ray at
//     the element position. When the element crosses the viewport edge the
//     camera is asked to rotate towards it, at most once per throttle window.
//   - It reports clicks and drag lifecycles as [Event] values.
//
// # Usage
//
//	ov := overlay.New(host, surface, overlay.Options{CanDrag: true})
//	defer ov.Close()
//
//	cancel := ov.Subscribe(func(e overlay.Event) {
//	    switch e := e.(type) {
//	    case overlay.MarkerClick:
//	        navigate(e.MetaData)
//	    case overlay.MarkerTouchEnd:
//	        save(e.MetaData, e.Position)
//	    }
//	})
//	defer cancel()
//
//	h := ov.AddMarker(overlay.Markup("⌂ Kitchen"), overlay.MarkerInfo{
//	    Position: sphere.Position{Pitch: 0, Yaw: math.Pi / 2},
//	    MetaData: hotspot,
//	})
//
// Pointer input is routed by the caller, which usually finds the target with
// [Overlay.HitTest]:
//
//	if h, ok := ov.HitTest(p); ok {
//	    ov.PointerDown(0, h, p)
//	}
//	ov.PointerMove(0, p2)
//	ov.PointerUp(0, p2, rawEvent)
//
// # Ordering
//
// The render pass skips markers being dragged, so a frame never overwrites a
// position the pointer just set. A direction written during a drag is the one
// the next frame after the drag projects.
//
// # Failure handling
//
// Nothing in the overlay returns an error or panics into the render loop. A
// ray that misses the panorama leaves the marker direction unchanged for that
// move; removing an unknown marker is a no-op.
//
// # Concurrency
//
// Every method is safe for concurrent use. Listeners, camera animation
// requests and transition-end registration run without the overlay lock, so
// listeners may call back into the overlay.
package overlay
