// Package server exposes a house over HTTP so hotspots can be edited from a
// browser or script.
//
// # Routes
//
//	GET    /api/rooms                          every room
//	GET    /api/rooms/{id}                     one room
//	POST   /api/rooms/{id}/hotspots            add a hotspot, returns its index
//	PUT    /api/rooms/{id}/hotspots/{index}    move or retarget a hotspot
//	DELETE /api/rooms/{id}/hotspots/{index}    delete a hotspot
//	GET    /api/graph.svg                      room graph (?layout=plan&detailed=1&map=1)
//	GET    /api/events                         websocket stream of hotspot changes
//
// Hotspot bodies are JSON objects with pitch, yaw (radians) and target (room
// id); all three are required.
//
// # Errors
//
// Failures are answered with {"code": ..., "message": ...}. The status comes
// from [errors.HTTPStatus]: invalid input is 400, unknown rooms and hotspots
// are 404.
//
// # Events
//
// When [Options.Feed] is set, every successful write is pushed to connected
// websocket clients as a [tour.Change]. Clients that fall behind miss changes
// instead of slowing writers down, and should refetch the room on reconnect.
//
// [errors.HTTPStatus]: github.com/matzehuels/vrtour/pkg/errors.HTTPStatus
package server
