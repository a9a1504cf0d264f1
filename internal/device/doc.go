// Package device holds the device model, its SQLite repository, and the
// state-merge engine that turns partial commands into full state updates.
//
// State is split in two: the power flag (is_on) lives in its own column
// so it can be queried cheaply, while everything else (brightness, colour,
// and whatever future device types need) lives in a free-form attributes
// document. Merge treats the two uniformly from the caller's point of
// view and reports whether anything actually changed, which is what lets
// duplicate commands die quietly instead of echoing around a room.
//
// StateStore serialises merge-and-save per device so two commands racing
// on the same device cannot interleave their read-modify-write cycles.
package device
