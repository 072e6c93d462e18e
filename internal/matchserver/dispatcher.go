package matchserver

import (
	"net"

	"matchmaker/internal/session"
	"matchmaker/internal/wire"
)

type handlerFunc func(s *Server, sess *session.State, remoteIP net.IP, body []byte) (handlerResult, error)

// route describes one request kind's dispatch entry: whether a session must
// already be authenticated to invoke it, which reply kind carries its
// response, and the handler itself.
type route struct {
	requiresAuth bool
	replyKind    wire.Kind
	handle       handlerFunc
}

var routes = map[wire.Kind]route{
	wire.KindAuthenticationRequest: {
		requiresAuth: false,
		replyKind:    wire.KindAuthenticationReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleAuthenticate(sess, ip, b) },
	},
	wire.KindCreateRoomRequest: {
		requiresAuth: true,
		replyKind:    wire.KindCreateRoomReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleCreateRoom(sess, ip, b) },
	},
	wire.KindListRoomRequest: {
		requiresAuth: true,
		replyKind:    wire.KindListRoomReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleListRoom(sess, ip, b) },
	},
	wire.KindJoinRoomRequest: {
		requiresAuth: true,
		replyKind:    wire.KindJoinRoomReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleJoinRoom(sess, ip, b) },
	},
	wire.KindUpdateRoomStatusRequest: {
		requiresAuth: true,
		replyKind:    wire.KindUpdateRoomStatusReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleUpdateRoomStatus(sess, ip, b) },
	},
	wire.KindRandomMatchRequest: {
		requiresAuth: true,
		replyKind:    wire.KindJoinRoomReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleRandomMatch(sess, ip, b) },
	},
	wire.KindListRoomGroupRequest: {
		requiresAuth: true,
		replyKind:    wire.KindListRoomGroupReply,
		handle:       func(s *Server, sess *session.State, ip net.IP, b []byte) (handlerResult, error) { return s.handleListRoomGroup(sess, ip, b) },
	},
}
