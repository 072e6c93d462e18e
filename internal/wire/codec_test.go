package wire

import (
	"net"
	"testing"
)

func TestAuthenticationRequestRoundTrip(t *testing.T) {
	in := AuthenticationRequest{Version: 7}
	var out AuthenticationRequest
	if err := out.Decode(in.Encode()); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestAuthenticationRequestWrongLength(t *testing.T) {
	var out AuthenticationRequest
	if err := out.Decode([]byte{1}); err == nil {
		t.Fatal("expected MalformedFrame")
	}
}

func TestCreateRoomRequestRoundTrip(t *testing.T) {
	in := CreateRoomRequest{
		GroupIndex:     2,
		HostName:       PlayerName{Name: "room-A", Tag: 1234},
		Flags:          FlagOpen,
		Password:       "secret",
		MaxPlayerCount: 4,
		Port:           30000,
	}
	b := in.Encode()
	if len(b) != createRoomRequestSize {
		t.Fatalf("encoded length %d, want %d", len(b), createRoomRequestSize)
	}
	var out CreateRoomRequest
	if err := out.Decode(b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != in {
		t.Fatalf("got %+v, want %+v", out, in)
	}
}

func TestListRoomRequestRejectsInvalidSortKind(t *testing.T) {
	in := ListRoomRequest{GroupIndex: 0, SortKind: SortKind(200), StartIndex: 0, EndIndex: 6}
	b := in.Encode()
	var out ListRoomRequest
	if err := out.Decode(b); err == nil {
		t.Fatal("expected MalformedFrame for invalid sort_kind")
	}
}

func TestListRoomReplyRoundTrip(t *testing.T) {
	in := ListRoomReply{
		TotalRoomCount: 10,
		Rooms: []RoomInfo{
			{RoomID: 1, HostName: "alice", Flags: FlagPublic, MaxPlayerCount: 4, CurrentPlayerCount: 1, CreateUnixTimestamp: 1700000000},
			{RoomID: 2, HostName: "bob", Flags: 0, MaxPlayerCount: 2, CurrentPlayerCount: 2, CreateUnixTimestamp: 1700000005},
		},
	}
	b := in.Encode()
	var out ListRoomReply
	if err := out.Decode(b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.TotalRoomCount != in.TotalRoomCount || len(out.Rooms) != len(in.Rooms) {
		t.Fatalf("got %+v, want %+v", out, in)
	}
	for i := range in.Rooms {
		if out.Rooms[i] != in.Rooms[i] {
			t.Fatalf("room %d: got %+v, want %+v", i, out.Rooms[i], in.Rooms[i])
		}
	}
}

func TestListRoomReplyRejectsLengthMismatch(t *testing.T) {
	b := []byte{0, 0, 2} // claims 2 rooms, carries none
	var out ListRoomReply
	if err := out.Decode(b); err == nil {
		t.Fatal("expected MalformedFrame")
	}
}

func TestJoinRoomRoundTrip(t *testing.T) {
	req := JoinRoomRequest{RoomID: 42, Password: "pw"}
	var outReq JoinRoomRequest
	if err := outReq.Decode(req.Encode()); err != nil {
		t.Fatalf("decode request: %v", err)
	}
	if outReq != req {
		t.Fatalf("got %+v, want %+v", outReq, req)
	}

	reply := JoinRoomReply{
		HostEndpoint:       NewEndpoint(net.ParseIP("203.0.113.5"), 31000),
		CurrentPlayerCount: 3,
	}
	b := reply.Encode()
	if len(b) != joinRoomReplySize {
		t.Fatalf("encoded length %d, want %d", len(b), joinRoomReplySize)
	}
	var outReply JoinRoomReply
	if err := outReply.Decode(b); err != nil {
		t.Fatalf("decode reply: %v", err)
	}
	if !outReply.HostEndpoint.IP.Equal(reply.HostEndpoint.IP) || outReply.HostEndpoint.Port != reply.HostEndpoint.Port {
		t.Fatalf("endpoint mismatch: got %+v, want %+v", outReply.HostEndpoint, reply.HostEndpoint)
	}
	if outReply.CurrentPlayerCount != reply.CurrentPlayerCount {
		t.Fatalf("player count mismatch: got %d, want %d", outReply.CurrentPlayerCount, reply.CurrentPlayerCount)
	}
}

func TestUpdateRoomStatusRequestRejectsInvalidStatus(t *testing.T) {
	b := UpdateRoomStatusRequest{RoomID: 1, Status: RoomStatus(99)}.Encode()
	var out UpdateRoomStatusRequest
	if err := out.Decode(b); err == nil {
		t.Fatal("expected MalformedFrame for invalid status")
	}
}

func TestListRoomGroupReplyRoundTrip(t *testing.T) {
	in := ListRoomGroupReply{GroupNames: []string{"lobby", "ranked", "custom"}}
	b := in.Encode()
	var out ListRoomGroupReply
	if err := out.Decode(b); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.GroupNames) != len(in.GroupNames) {
		t.Fatalf("got %d groups, want %d", len(out.GroupNames), len(in.GroupNames))
	}
	for i := range in.GroupNames {
		if out.GroupNames[i] != in.GroupNames[i] {
			t.Fatalf("group %d: got %q, want %q", i, out.GroupNames[i], in.GroupNames[i])
		}
	}
}

func TestReplyHeaderRoundTrip(t *testing.T) {
	h := ReplyHeader{Kind: KindJoinRoomReply, ErrorCode: RoomNotExist}
	out, err := DecodeReplyHeader(h.Encode())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out != h {
		t.Fatalf("got %+v, want %+v", out, h)
	}
}

func TestEndpointIPv4Mapping(t *testing.T) {
	e := NewEndpoint(net.ParseIP("192.0.2.1"), 8080)
	b := make([]byte, EndpointSize)
	e.encode(b)
	if b[10] != 0xff || b[11] != 0xff {
		t.Fatalf("expected ::ffff: prefix, got %x", b[:12])
	}
	var out Endpoint
	out.decode(b)
	if !out.IP.Equal(e.IP) || out.Port != e.Port {
		t.Fatalf("got %+v, want %+v", out, e)
	}
}
