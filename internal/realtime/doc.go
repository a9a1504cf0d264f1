// Package realtime implements the WebSocket side of the system: per-room
// broadcast channels, connection sessions, and the authorization guard
// that stands between a command and a state change.
//
// Each connection is scoped to a single room for its whole lifetime. A
// session authenticates, proves it owns the room, joins the room's
// channel, and then processes commands one at a time. Every accepted
// command flows through the same pipeline: authorize the device (owner
// and room must both match), merge the partial state, persist, and
// broadcast the full post-merge snapshot to everyone in the room.
//
// When an MQTT broker is configured the hub publishes broadcasts to the
// bus and delivers them on receipt, so sessions on different server
// instances see the same traffic. Without a broker the hub falls back to
// direct in-process fan-out.
package realtime
