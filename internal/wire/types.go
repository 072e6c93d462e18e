// Package wire implements the binary framed protocol: message kinds, the
// fixed-layout request/reply records, and a hand-written codec for them.
// Every record here has a size known at compile time, per the matchmaker
// protocol's "no length-prefix needed" design.
package wire

import "fmt"

// Kind identifies a message on the wire. Client requests and server replies
// share the same numbering space.
type Kind uint8

const (
	KindAuthenticationRequest Kind = iota
	KindAuthenticationReply
	KindCreateRoomRequest
	KindCreateRoomReply
	KindListRoomRequest
	KindListRoomReply
	KindJoinRoomRequest
	KindJoinRoomReply
	KindUpdateRoomStatusRequest
	KindUpdateRoomStatusReply
	KindRandomMatchRequest
	KindListRoomGroupRequest
	KindListRoomGroupReply
)

func (k Kind) String() string {
	switch k {
	case KindAuthenticationRequest:
		return "authentication_request"
	case KindAuthenticationReply:
		return "authentication_reply"
	case KindCreateRoomRequest:
		return "create_room_request"
	case KindCreateRoomReply:
		return "create_room_reply"
	case KindListRoomRequest:
		return "list_room_request"
	case KindListRoomReply:
		return "list_room_reply"
	case KindJoinRoomRequest:
		return "join_room_request"
	case KindJoinRoomReply:
		return "join_room_reply"
	case KindUpdateRoomStatusRequest:
		return "update_room_status_request"
	case KindUpdateRoomStatusReply:
		return "update_room_status_reply"
	case KindRandomMatchRequest:
		return "random_match_request"
	case KindListRoomGroupRequest:
		return "list_room_group_request"
	case KindListRoomGroupReply:
		return "list_room_group_reply"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ErrorCode is the second byte of every reply header.
type ErrorCode uint8

const (
	Ok ErrorCode = iota
	UnknownError
	VersionMismatch
	AuthenticationError
	Denied
	RoomGroupNotFound
	RoomNameDuplicated
	RoomCountReachesLimit
	ClientAlreadyHostingRoom
	RoomNotExist
	PermissionDenied
	JoinRejected
	PlayerCountReachesLimit
)

func (e ErrorCode) String() string {
	switch e {
	case Ok:
		return "ok"
	case UnknownError:
		return "unknown_error"
	case VersionMismatch:
		return "version_mismatch"
	case AuthenticationError:
		return "authentication_error"
	case Denied:
		return "denied"
	case RoomGroupNotFound:
		return "room_group_not_found"
	case RoomNameDuplicated:
		return "room_name_duplicated"
	case RoomCountReachesLimit:
		return "room_count_reaches_limit"
	case ClientAlreadyHostingRoom:
		return "client_already_hosting_room"
	case RoomNotExist:
		return "room_not_exist"
	case PermissionDenied:
		return "permission_denied"
	case JoinRejected:
		return "join_rejected"
	case PlayerCountReachesLimit:
		return "player_count_reaches_limit"
	default:
		return fmt.Sprintf("error_code(%d)", uint8(e))
	}
}

// SortKind selects the ordering for a list_room_request.
type SortKind uint8

const (
	SortNameAscending SortKind = iota
	SortNameDescending
	SortCreateDatetimeAscending
	SortCreateDatetimeDescending
)

func (s SortKind) valid() bool { return s <= SortCreateDatetimeDescending }

// RoomStatus is the requested transition in an update_room_status_request.
type RoomStatus uint8

const (
	RoomStatusOpen RoomStatus = iota
	RoomStatusClose
	RoomStatusRemove
)

func (s RoomStatus) valid() bool { return s <= RoomStatusRemove }

// RoomFlags is the bitmask carried on the wire for a room's public/open state.
type RoomFlags uint8

const (
	FlagPublic RoomFlags = 1 << iota
	FlagOpen
)

// Fixed field widths, resolved in SPEC_FULL.md from the original server's
// documented struct sizes.
const (
	NameSize      = 24
	PasswordSize  = 16
	GroupNameSize = 24

	// ListRoomCapacity is the compile-time cap on rooms returned per
	// list_room_reply (spec.md §4.E: "default 6").
	ListRoomCapacity = 6

	// MaxGroupsInReply bounds the supplemental list_room_group_reply.
	MaxGroupsInReply = 8

	// EndpointSize is 16 bytes of IPv6 (v4-mapped when applicable) + 2 bytes port.
	EndpointSize = 18
)

// MalformedFrame is returned by Decode when a buffer's length does not match
// the record's declared size, or an enum field holds an out-of-range value.
type MalformedFrame struct {
	Record string
	Reason string
}

func (e *MalformedFrame) Error() string {
	return fmt.Sprintf("malformed frame: %s: %s", e.Record, e.Reason)
}
