package wire

import (
	"encoding/binary"
)

// RequestBodySize returns the fixed number of bytes that follow a request's
// 1-byte kind header, for kinds a client may send. The connection driver
// reads exactly this many bytes before decoding, the same way the original
// server reads a known-size struct directly off the socket.
func RequestBodySize(k Kind) (int, bool) {
	switch k {
	case KindAuthenticationRequest:
		return authenticationRequestSize, true
	case KindCreateRoomRequest:
		return createRoomRequestSize, true
	case KindListRoomRequest:
		return listRoomRequestSize, true
	case KindJoinRoomRequest:
		return joinRoomRequestSize, true
	case KindUpdateRoomStatusRequest:
		return updateRoomStatusRequestSize, true
	case KindRandomMatchRequest:
		return randomMatchRequestSize, true
	case KindListRoomGroupRequest:
		return 0, true
	default:
		return 0, false
	}
}

// AuthenticationRequest is the sole client→server message sent before a
// session is authenticated.
type AuthenticationRequest struct {
	Version uint16
}

const authenticationRequestSize = 2

func (m AuthenticationRequest) Encode() []byte {
	b := make([]byte, authenticationRequestSize)
	binary.BigEndian.PutUint16(b, m.Version)
	return b
}

func (m *AuthenticationRequest) Decode(b []byte) error {
	if len(b) != authenticationRequestSize {
		return &MalformedFrame{Record: "authentication_request", Reason: "wrong length"}
	}
	m.Version = binary.BigEndian.Uint16(b)
	return nil
}

// CreateRoomRequest carries the host's full name (name+tag) as the room's
// only identity, plus room settings.
type CreateRoomRequest struct {
	GroupIndex     uint8
	HostName       PlayerName
	Flags          RoomFlags
	Password       string
	MaxPlayerCount uint8
	Port           uint16
}

const createRoomRequestSize = 1 + playerNameSize + 1 + PasswordSize + 1 + 2 // 47

func (m CreateRoomRequest) Encode() []byte {
	b := make([]byte, createRoomRequestSize)
	off := 0
	b[off] = m.GroupIndex
	off++
	m.HostName.encode(b[off : off+playerNameSize])
	off += playerNameSize
	b[off] = byte(m.Flags)
	off++
	putFixedString(b[off:off+PasswordSize], m.Password)
	off += PasswordSize
	b[off] = m.MaxPlayerCount
	off++
	binary.BigEndian.PutUint16(b[off:off+2], m.Port)
	return b
}

func (m *CreateRoomRequest) Decode(b []byte) error {
	if len(b) != createRoomRequestSize {
		return &MalformedFrame{Record: "create_room_request", Reason: "wrong length"}
	}
	off := 0
	m.GroupIndex = b[off]
	off++
	m.HostName.decode(b[off : off+playerNameSize])
	off += playerNameSize
	m.Flags = RoomFlags(b[off])
	off++
	m.Password = getFixedString(b[off : off+PasswordSize])
	off += PasswordSize
	m.MaxPlayerCount = b[off]
	off++
	m.Port = binary.BigEndian.Uint16(b[off : off+2])
	return nil
}

// CreateRoomReply carries the newly assigned room_id in its body.
type CreateRoomReply struct {
	RoomID uint32
}

const createRoomReplySize = 4

func (m CreateRoomReply) Encode() []byte {
	b := make([]byte, createRoomReplySize)
	binary.BigEndian.PutUint32(b, m.RoomID)
	return b
}

func (m *CreateRoomReply) Decode(b []byte) error {
	if len(b) != createRoomReplySize {
		return &MalformedFrame{Record: "create_room_reply", Reason: "wrong length"}
	}
	m.RoomID = binary.BigEndian.Uint32(b)
	return nil
}

// ListRoomRequest selects a group, a sort order, a window, and an optional
// public-only filter.
type ListRoomRequest struct {
	GroupIndex uint8
	SortKind   SortKind
	StartIndex uint16
	EndIndex   uint16
	PublicOnly bool
}

const listRoomRequestSize = 1 + 1 + 2 + 2 + 1 // 7

func (m ListRoomRequest) Encode() []byte {
	b := make([]byte, listRoomRequestSize)
	off := 0
	b[off] = m.GroupIndex
	off++
	b[off] = byte(m.SortKind)
	off++
	binary.BigEndian.PutUint16(b[off:off+2], m.StartIndex)
	off += 2
	binary.BigEndian.PutUint16(b[off:off+2], m.EndIndex)
	off += 2
	if m.PublicOnly {
		b[off] = 1
	}
	return b
}

func (m *ListRoomRequest) Decode(b []byte) error {
	if len(b) != listRoomRequestSize {
		return &MalformedFrame{Record: "list_room_request", Reason: "wrong length"}
	}
	off := 0
	m.GroupIndex = b[off]
	off++
	sk := SortKind(b[off])
	if !sk.valid() {
		return &MalformedFrame{Record: "list_room_request", Reason: "invalid sort_kind"}
	}
	m.SortKind = sk
	off++
	m.StartIndex = binary.BigEndian.Uint16(b[off : off+2])
	off += 2
	m.EndIndex = binary.BigEndian.Uint16(b[off : off+2])
	off += 2
	m.PublicOnly = b[off] != 0
	return nil
}

// RoomInfo is the 39-byte directory listing record: identity, capacity, and
// creation time, but no host tag (the tag is session-private, not listed).
type RoomInfo struct {
	RoomID              uint32
	HostName            string
	Flags               RoomFlags
	MaxPlayerCount      uint8
	CurrentPlayerCount  uint8
	CreateUnixTimestamp int64
}

const roomInfoSize = 4 + NameSize + 1 + 1 + 1 + 8 // 39

func (m RoomInfo) encode(dst []byte) {
	off := 0
	binary.BigEndian.PutUint32(dst[off:off+4], m.RoomID)
	off += 4
	putFixedString(dst[off:off+NameSize], m.HostName)
	off += NameSize
	dst[off] = byte(m.Flags)
	off++
	dst[off] = m.MaxPlayerCount
	off++
	dst[off] = m.CurrentPlayerCount
	off++
	binary.BigEndian.PutUint64(dst[off:off+8], uint64(m.CreateUnixTimestamp))
}

func (m *RoomInfo) decode(src []byte) {
	off := 0
	m.RoomID = binary.BigEndian.Uint32(src[off : off+4])
	off += 4
	m.HostName = getFixedString(src[off : off+NameSize])
	off += NameSize
	m.Flags = RoomFlags(src[off])
	off++
	m.MaxPlayerCount = src[off]
	off++
	m.CurrentPlayerCount = src[off]
	off++
	m.CreateUnixTimestamp = int64(binary.BigEndian.Uint64(src[off : off+8]))
}

// ListRoomReply carries the full match count (for pagination) and the
// window of RoomInfo records actually returned.
type ListRoomReply struct {
	TotalRoomCount uint16
	Rooms          []RoomInfo
}

func (m ListRoomReply) Encode() []byte {
	n := len(m.Rooms)
	b := make([]byte, 2+1+n*roomInfoSize)
	binary.BigEndian.PutUint16(b[0:2], m.TotalRoomCount)
	b[2] = uint8(n)
	off := 3
	for _, r := range m.Rooms {
		r.encode(b[off : off+roomInfoSize])
		off += roomInfoSize
	}
	return b
}

func (m *ListRoomReply) Decode(b []byte) error {
	if len(b) < 3 {
		return &MalformedFrame{Record: "list_room_reply", Reason: "too short"}
	}
	m.TotalRoomCount = binary.BigEndian.Uint16(b[0:2])
	count := int(b[2])
	want := 3 + count*roomInfoSize
	if len(b) != want {
		return &MalformedFrame{Record: "list_room_reply", Reason: "room count does not match length"}
	}
	rooms := make([]RoomInfo, count)
	off := 3
	for i := range rooms {
		rooms[i].decode(b[off : off+roomInfoSize])
		off += roomInfoSize
	}
	m.Rooms = rooms
	return nil
}

// JoinRoomRequest identifies the target room and, if it requires one, a
// plaintext password to match against the stored one.
type JoinRoomRequest struct {
	RoomID   uint32
	Password string
}

const joinRoomRequestSize = 4 + PasswordSize // 20

func (m JoinRoomRequest) Encode() []byte {
	b := make([]byte, joinRoomRequestSize)
	binary.BigEndian.PutUint32(b[0:4], m.RoomID)
	putFixedString(b[4:4+PasswordSize], m.Password)
	return b
}

func (m *JoinRoomRequest) Decode(b []byte) error {
	if len(b) != joinRoomRequestSize {
		return &MalformedFrame{Record: "join_room_request", Reason: "wrong length"}
	}
	m.RoomID = binary.BigEndian.Uint32(b[0:4])
	m.Password = getFixedString(b[4 : 4+PasswordSize])
	return nil
}

// JoinRoomReply hands the joining client the host's rendezvous endpoint and
// the room's player count at the moment of the join.
type JoinRoomReply struct {
	HostEndpoint       Endpoint
	CurrentPlayerCount uint8
}

const joinRoomReplySize = EndpointSize + 1 // 19

func (m JoinRoomReply) Encode() []byte {
	b := make([]byte, joinRoomReplySize)
	m.HostEndpoint.encode(b[0:EndpointSize])
	b[EndpointSize] = m.CurrentPlayerCount
	return b
}

func (m *JoinRoomReply) Decode(b []byte) error {
	if len(b) != joinRoomReplySize {
		return &MalformedFrame{Record: "join_room_reply", Reason: "wrong length"}
	}
	m.HostEndpoint.decode(b[0:EndpointSize])
	m.CurrentPlayerCount = b[EndpointSize]
	return nil
}

// UpdateRoomStatusRequest asks the server to open, close, or remove a room
// the caller's session is currently hosting.
type UpdateRoomStatusRequest struct {
	RoomID uint32
	Status RoomStatus
}

const updateRoomStatusRequestSize = 4 + 1 // 5

func (m UpdateRoomStatusRequest) Encode() []byte {
	b := make([]byte, updateRoomStatusRequestSize)
	binary.BigEndian.PutUint32(b[0:4], m.RoomID)
	b[4] = byte(m.Status)
	return b
}

func (m *UpdateRoomStatusRequest) Decode(b []byte) error {
	if len(b) != updateRoomStatusRequestSize {
		return &MalformedFrame{Record: "update_room_status_request", Reason: "wrong length"}
	}
	m.RoomID = binary.BigEndian.Uint32(b[0:4])
	st := RoomStatus(b[4])
	if !st.valid() {
		return &MalformedFrame{Record: "update_room_status_request", Reason: "invalid status"}
	}
	m.Status = st
	return nil
}

// RandomMatchRequest asks the server to pick an open room in the group on
// the caller's behalf, replying as if the pick had been a join_room_request.
type RandomMatchRequest struct {
	GroupIndex uint8
}

const randomMatchRequestSize = 1

func (m RandomMatchRequest) Encode() []byte {
	return []byte{m.GroupIndex}
}

func (m *RandomMatchRequest) Decode(b []byte) error {
	if len(b) != randomMatchRequestSize {
		return &MalformedFrame{Record: "random_match_request", Reason: "wrong length"}
	}
	m.GroupIndex = b[0]
	return nil
}

// ListRoomGroupReply reports the server's configured groups by name, so a
// client can populate a group picker before listing or creating rooms.
type ListRoomGroupReply struct {
	GroupNames []string
}

func (m ListRoomGroupReply) Encode() []byte {
	n := len(m.GroupNames)
	if n > MaxGroupsInReply {
		n = MaxGroupsInReply
	}
	b := make([]byte, 1+n*GroupNameSize)
	b[0] = uint8(n)
	off := 1
	for i := 0; i < n; i++ {
		putFixedString(b[off:off+GroupNameSize], m.GroupNames[i])
		off += GroupNameSize
	}
	return b
}

func (m *ListRoomGroupReply) Decode(b []byte) error {
	if len(b) < 1 {
		return &MalformedFrame{Record: "list_room_group_reply", Reason: "too short"}
	}
	count := int(b[0])
	want := 1 + count*GroupNameSize
	if len(b) != want {
		return &MalformedFrame{Record: "list_room_group_reply", Reason: "group count does not match length"}
	}
	names := make([]string, count)
	off := 1
	for i := range names {
		names[i] = getFixedString(b[off : off+GroupNameSize])
		off += GroupNameSize
	}
	m.GroupNames = names
	return nil
}
