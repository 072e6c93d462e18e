// Package session holds per-connection mutable state: whether a client has
// authenticated, and which room (if any) it currently hosts. One State is
// owned by exactly one connection goroutine (internal/matchserver's
// connection driver), so it needs no internal locking of its own.
package session

import "matchmaker/internal/wire"

// State tracks a single TCP connection's progress through
// unauthenticated -> authenticated -> (optionally) hosting.
type State struct {
	Authenticated bool
	FullName      wire.PlayerName
	hasFullName   bool

	HostingGroupIndex uint8
	HostingRoomID     uint32
	hosting           bool
}

// Authenticate marks the session authenticated. Idempotent: calling it again
// (a client is free to re-send authentication_request) is harmless.
func (s *State) Authenticate() {
	s.Authenticated = true
}

// SetFullName records the player identity carried by create_room_request,
// the only place a full name currently enters a session.
func (s *State) SetFullName(n wire.PlayerName) {
	s.FullName = n
	s.hasFullName = true
}

// FullNameOK reports whether a full name has been recorded yet.
func (s *State) FullNameOK() (wire.PlayerName, bool) {
	return s.FullName, s.hasFullName
}

// SetHosting records that this session now owns roomID in groupIndex.
func (s *State) SetHosting(groupIndex uint8, roomID uint32) {
	s.HostingGroupIndex = groupIndex
	s.HostingRoomID = roomID
	s.hosting = true
}

// ClearHosting drops hosting state, e.g. after a successful
// update_room_status(remove).
func (s *State) ClearHosting() {
	s.hosting = false
}

// Hosting reports the currently-hosted room, if any.
func (s *State) Hosting() (groupIndex uint8, roomID uint32, ok bool) {
	return s.HostingGroupIndex, s.HostingRoomID, s.hosting
}

// IsHosting is a convenience predicate used by create_room's
// client_already_hosting_room check (I5).
func (s *State) IsHosting() bool {
	return s.hosting
}
