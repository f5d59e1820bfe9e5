// Package tour models a house tour: rooms with panoramas, hotspots linking
// rooms, and the stores that persist them.
//
// # Manifests
//
// A house is published as a JSON manifest. Each entry of its data array is a
// room, except for the single entry named "map" which holds the floor plan.
// Hotspots are stored inside each room as a JSON-encoded string under
// connect_position:
//
//	{"status": true, "data": [
//	  {"vr_id": 1, "hus_id": 7, "picture": "1.jpg", "name": "客厅",
//	   "chaoxiang": "南", "connect_position": "[{\"pitch\":0,\"yaw\":1.2,\"target\":2}]"}
//	]}
//
// [Parse] validates a manifest and returns a [House]; [House.Encode] writes it
// back in the same format.
//
// # Stores
//
// [Store] is implemented by [MemoryStore], [FileStore] (writes the manifest
// back after every change) and [MongoStore] (one document per room). [Feed]
// wraps any store and publishes each successful write as a [Change].
//
// # Navigation
//
// [Navigator] binds a store to an overlay. In [View] mode clicking a hotspot
// enters its target room. In [Edit] mode hotspots can be dragged to a new
// direction or dropped on a trash zone to delete them.
package tour
