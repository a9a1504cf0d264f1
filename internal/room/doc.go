// Package room manages the grouping layer between users and their devices.
//
// A room belongs to exactly one user and acts both as an organisational
// unit in the REST API and as the scope of a real-time broadcast channel.
// Ownership checks for WebSocket joins go through the same repository the
// HTTP handlers use, so there is a single source of truth for who may see
// a room's state.
package room
