package matchserver

import (
	"net"
	"testing"
	"time"

	"matchmaker/internal/denylist"
	"matchmaker/internal/session"
	"matchmaker/internal/wire"
)

func testConfig() Config {
	return Config{
		ListenNetwork:         "tcp",
		ListenAddr:            "127.0.0.1:0",
		AcceptedVersions:      []uint16{1},
		SessionTimeout:        2 * time.Second,
		Groups:                []string{"lobby", "ranked"},
		MaxRoomsPerGroup:      0,
		MaxConcurrentSessions: 0,
	}
}

func newTestServer() *Server {
	return New(testConfig(), nil, nil)
}

var testIP = net.ParseIP("203.0.113.7")

func TestHandleAuthenticateAcceptsKnownVersion(t *testing.T) {
	s := newTestServer()
	var sess session.State
	res, err := s.handleAuthenticate(&sess, testIP, wire.AuthenticationRequest{Version: 1}.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.code != wire.Ok {
		t.Fatalf("got code %v, want Ok", res.code)
	}
	if !sess.Authenticated {
		t.Fatal("expected session authenticated")
	}
}

func TestHandleAuthenticateRejectsUnknownVersion(t *testing.T) {
	s := newTestServer()
	var sess session.State
	res, err := s.handleAuthenticate(&sess, testIP, wire.AuthenticationRequest{Version: 99}.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.code != wire.VersionMismatch {
		t.Fatalf("got code %v, want VersionMismatch", res.code)
	}
	if sess.Authenticated {
		t.Fatal("session should not be authenticated")
	}
}

func TestHandleAuthenticateDeniesBannedIP(t *testing.T) {
	dl, err := denylist.Open(":memory:")
	if err != nil {
		t.Fatalf("open denylist: %v", err)
	}
	defer dl.Close()
	if err := dl.Add(testIP.String(), "cheating"); err != nil {
		t.Fatalf("ban: %v", err)
	}

	s := New(testConfig(), dl, nil)
	var sess session.State
	res, err := s.handleAuthenticate(&sess, testIP, wire.AuthenticationRequest{Version: 1}.Encode())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.code != wire.Denied {
		t.Fatalf("got code %v, want Denied", res.code)
	}
	if !res.closeAfterReply {
		t.Fatal("expected closeAfterReply for a denylisted IP")
	}
	if sess.Authenticated {
		t.Fatal("denylisted session must not become authenticated")
	}
}

func TestHandleAuthenticateIsIdempotent(t *testing.T) {
	s := newTestServer()
	var sess session.State
	body := wire.AuthenticationRequest{Version: 1}.Encode()
	if _, err := s.handleAuthenticate(&sess, testIP, body); err != nil {
		t.Fatal(err)
	}
	res, err := s.handleAuthenticate(&sess, testIP, body)
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.Ok {
		t.Fatalf("second authentication should still succeed, got %v", res.code)
	}
}

func authedSession() *session.State {
	var sess session.State
	sess.Authenticate()
	return &sess
}

func TestHandleCreateRoomThenDuplicateHostNameRejected(t *testing.T) {
	s := newTestServer()
	req := wire.CreateRoomRequest{
		GroupIndex:     0,
		HostName:       wire.PlayerName{Name: "room-A", Tag: 1},
		MaxPlayerCount: 4,
		Port:           30000,
	}
	sess1 := authedSession()
	res, err := s.handleCreateRoom(sess1, testIP, req.Encode())
	if err != nil || res.code != wire.Ok {
		t.Fatalf("got (%+v, %v), want ok", res, err)
	}
	if !sess1.IsHosting() {
		t.Fatal("expected session to be hosting")
	}

	sess2 := authedSession()
	res2, err := s.handleCreateRoom(sess2, testIP, req.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res2.code != wire.RoomNameDuplicated {
		t.Fatalf("got code %v, want RoomNameDuplicated", res2.code)
	}
}

func TestHandleCreateRoomRejectsAlreadyHosting(t *testing.T) {
	s := newTestServer()
	sess := authedSession()
	req1 := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room-A", Tag: 1}, MaxPlayerCount: 4}
	if _, err := s.handleCreateRoom(sess, testIP, req1.Encode()); err != nil {
		t.Fatal(err)
	}
	req2 := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room-B", Tag: 1}, MaxPlayerCount: 4}
	res, err := s.handleCreateRoom(sess, testIP, req2.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.ClientAlreadyHostingRoom {
		t.Fatalf("got %v, want ClientAlreadyHostingRoom", res.code)
	}
}

func TestHandleCreateRoomUnknownGroup(t *testing.T) {
	s := newTestServer()
	sess := authedSession()
	req := wire.CreateRoomRequest{GroupIndex: 200, HostName: wire.PlayerName{Name: "x", Tag: 1}, MaxPlayerCount: 4}
	res, err := s.handleCreateRoom(sess, testIP, req.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.RoomGroupNotFound {
		t.Fatalf("got %v, want RoomGroupNotFound", res.code)
	}
}

func TestJoinRoomFullRoomRejected(t *testing.T) {
	s := newTestServer()
	host := authedSession()
	createReq := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room-A", Tag: 1}, MaxPlayerCount: 1, Port: 40000}
	createRes, err := s.handleCreateRoom(host, testIP, createReq.Encode())
	if err != nil || createRes.code != wire.Ok {
		t.Fatalf("create: %+v %v", createRes, err)
	}
	var createReply wire.CreateRoomReply
	if err := createReply.Decode(createRes.body); err != nil {
		t.Fatal(err)
	}

	joiner := authedSession()
	joinReq := wire.JoinRoomRequest{RoomID: createReply.RoomID}
	res, err := s.handleJoinRoom(joiner, testIP, joinReq.Encode())
	if err != nil || res.code != wire.Ok {
		t.Fatalf("first join: %+v %v", res, err)
	}

	secondJoiner := authedSession()
	res2, err := s.handleJoinRoom(secondJoiner, testIP, joinReq.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res2.code != wire.PlayerCountReachesLimit {
		t.Fatalf("got %v, want PlayerCountReachesLimit", res2.code)
	}
}

func TestJoinRoomNotExist(t *testing.T) {
	s := newTestServer()
	sess := authedSession()
	res, err := s.handleJoinRoom(sess, testIP, wire.JoinRoomRequest{RoomID: 9999}.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.RoomNotExist {
		t.Fatalf("got %v, want RoomNotExist", res.code)
	}
}

func TestUpdateRoomStatusRejectsNonOwnerSession(t *testing.T) {
	s := newTestServer()
	host := authedSession()
	createReq := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room-A", Tag: 1}, MaxPlayerCount: 4}
	createRes, _ := s.handleCreateRoom(host, testIP, createReq.Encode())
	var createReply wire.CreateRoomReply
	createReply.Decode(createRes.body)

	other := authedSession()
	req := wire.UpdateRoomStatusRequest{RoomID: createReply.RoomID, Status: wire.RoomStatusRemove}
	res, err := s.handleUpdateRoomStatus(other, testIP, req.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.RoomNotExist {
		t.Fatalf("got %v, want RoomNotExist (ownership hidden)", res.code)
	}
}

func TestUpdateRoomStatusRemoveClearsHosting(t *testing.T) {
	s := newTestServer()
	host := authedSession()
	createReq := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room-A", Tag: 1}, MaxPlayerCount: 4}
	createRes, _ := s.handleCreateRoom(host, testIP, createReq.Encode())
	var createReply wire.CreateRoomReply
	createReply.Decode(createRes.body)

	req := wire.UpdateRoomStatusRequest{RoomID: createReply.RoomID, Status: wire.RoomStatusRemove}
	res, err := s.handleUpdateRoomStatus(host, testIP, req.Encode())
	if err != nil || res.code != wire.Ok {
		t.Fatalf("got (%+v, %v)", res, err)
	}
	if host.IsHosting() {
		t.Fatal("expected hosting cleared")
	}
	if s.directories[0].Count() != 0 {
		t.Fatal("expected room removed from directory")
	}
}

func TestListRoomGroupReturnsConfiguredGroups(t *testing.T) {
	s := newTestServer()
	sess := authedSession()
	res, err := s.handleListRoomGroup(sess, testIP, nil)
	if err != nil {
		t.Fatal(err)
	}
	var reply wire.ListRoomGroupReply
	if err := reply.Decode(res.body); err != nil {
		t.Fatal(err)
	}
	if len(reply.GroupNames) != 2 || reply.GroupNames[0] != "lobby" || reply.GroupNames[1] != "ranked" {
		t.Fatalf("got %v, want [lobby ranked]", reply.GroupNames)
	}
}

func TestListRoomTruncatesEndIndexSilently(t *testing.T) {
	s := newTestServer()
	for i := 0; i < 3; i++ {
		sess := authedSession()
		req := wire.CreateRoomRequest{HostName: wire.PlayerName{Name: "room", Tag: uint16(i)}, MaxPlayerCount: 4}
		if _, err := s.handleCreateRoom(sess, testIP, req.Encode()); err != nil {
			t.Fatal(err)
		}
	}

	sess := authedSession()
	req := wire.ListRoomRequest{StartIndex: 0, EndIndex: 100}
	res, err := s.handleListRoom(sess, testIP, req.Encode())
	if err != nil {
		t.Fatal(err)
	}
	var reply wire.ListRoomReply
	if err := reply.Decode(res.body); err != nil {
		t.Fatal(err)
	}
	if reply.TotalRoomCount != 3 || len(reply.Rooms) != 3 {
		t.Fatalf("got total=%d rooms=%d, want 3/3", reply.TotalRoomCount, len(reply.Rooms))
	}
}

func TestRandomMatchSkipsPasswordProtectedRooms(t *testing.T) {
	s := newTestServer()
	hostA := authedSession()
	reqA := wire.CreateRoomRequest{
		HostName:       wire.PlayerName{Name: "protected", Tag: 1},
		Flags:          wire.FlagPublic | wire.FlagOpen,
		Password:       "secret",
		MaxPlayerCount: 4,
	}
	if _, err := s.handleCreateRoom(hostA, testIP, reqA.Encode()); err != nil {
		t.Fatal(err)
	}

	joiner := authedSession()
	res, err := s.handleRandomMatch(joiner, testIP, wire.RandomMatchRequest{GroupIndex: 0}.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res.code != wire.RoomNotExist {
		t.Fatalf("got %v, want RoomNotExist (no eligible public unprotected room)", res.code)
	}

	hostB := authedSession()
	reqB := wire.CreateRoomRequest{
		HostName:       wire.PlayerName{Name: "open", Tag: 1},
		Flags:          wire.FlagPublic | wire.FlagOpen,
		MaxPlayerCount: 4,
	}
	if _, err := s.handleCreateRoom(hostB, testIP, reqB.Encode()); err != nil {
		t.Fatal(err)
	}

	res2, err := s.handleRandomMatch(joiner, testIP, wire.RandomMatchRequest{GroupIndex: 0}.Encode())
	if err != nil {
		t.Fatal(err)
	}
	if res2.code != wire.Ok {
		t.Fatalf("got %v, want Ok", res2.code)
	}
}
