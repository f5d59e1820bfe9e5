// Package pkg provides the libraries behind vrtour, a panorama house tour
// viewer and editor.
//
// # Overview
//
// A house tour is a set of 360° room panoramas linked by hotspots: markers
// pinned to a direction on the panorama sphere that lead to another room.
// The pkg directory is organized into three main areas:
//
//  1. Geometry and overlay ([sphere], [viewer], [overlay])
//  2. Tour data ([tour], [render/roomgraph])
//  3. Infrastructure ([cache], [httputil], [config], [server], [errors], [observability])
//
// # Architecture
//
// The typical data flow through vrtour:
//
//	Manifest (file, URL or MongoDB)
//	         ↓
//	    [tour] package (parse rooms and hotspots, Store, Navigator)
//	         ↓
//	    [overlay] package (project, cull and drag hotspot markers)
//	         ↓
//	    [viewer] package (camera, ray casting, auto-rotate animation)
//
// # Quick Start
//
// Place the hotspots of a room on a viewer and walk through the house:
//
//	h, _ := tour.Parse(data)
//	store := tour.NewMemoryStore(h)
//
//	v := viewer.New(viewer.Options{Size: sphere.Size{Width: 800, Height: 600}})
//	ov := overlay.New(v, surface, overlay.Options{})
//	nav := tour.NewNavigator(ctx, ov, store, tour.NavigatorOptions{Mode: tour.View})
//
//	entry, _ := h.Entry()
//	nav.Enter(ctx, entry.ID)
//
// # Main Packages
//
// ## Geometry and Overlay
//
// [sphere] - Spherical positions (pitch, yaw), direction vectors and screen
// rectangles.
//
// [viewer] - A software panorama host: camera state, perspective projection,
// ray casting against the panorama sphere and camera animation.
//
// [overlay] - The marker overlay. Markers follow the camera every frame, are
// hidden when off screen, can be dragged with the pointer and turn the camera
// when dragged against a viewport edge. Four events report clicks and drags.
//
// ## Tour Data
//
// [tour] - Manifest parsing, stores (memory, file, MongoDB), the change feed
// and the Navigator that binds a store to an overlay.
//
// [render/roomgraph] - Room connectivity diagrams using Graphviz.
//
// [render] - Format conversion (SVG to PDF/PNG).
//
// ## Infrastructure
//
// [cache] - Manifest caches: file, Redis and a no-op cache.
//
// [httputil] - Cached HTTP fetching with retry.
//
// [server] - HTTP API and WebSocket change stream for editing a tour.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                    # All tests
//	go test ./pkg/overlay/...            # Specific package
//	go test -run Example                 # Examples only
//	go test -tags integration ./pkg/...  # Include integration tests
//
// [sphere]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/sphere
// [viewer]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/viewer
// [overlay]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/overlay
// [tour]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/tour
// [render]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/render
// [render/roomgraph]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/render/roomgraph
// [cache]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/cache
// [httputil]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/httputil
// [config]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/server
// [errors]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/vrtour/pkg/observability
package pkg
