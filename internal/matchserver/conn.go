package matchserver

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"matchmaker/internal/directory"
	"matchmaker/internal/session"
	"matchmaker/internal/wire"
)

// handleConn drives a single accepted connection end to end: read kind byte,
// read its fixed-size body, dispatch, write the reply, repeat. On any fatal
// condition (malformed frame, read timeout, unknown kind, a request sent
// before authentication, or the peer closing the socket) it finalizes and
// returns.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	remoteIP := connRemoteIP(conn)

	var sess session.State
	defer func() {
		conn.Close()
		s.finalize(&sess)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if s.cfg.SessionTimeout > 0 {
			conn.SetReadDeadline(time.Now().Add(s.cfg.SessionTimeout))
		}

		kind, err := readKind(conn)
		if err != nil {
			logDisconnect(remoteIP, err, false)
			return
		}

		r, known := routes[kind]
		if !known {
			slog.Warn("matchserver: unknown message kind", "remote_ip", remoteIP, "kind", byte(kind))
			return
		}
		if r.requiresAuth && !sess.Authenticated {
			slog.Warn("matchserver: request before authentication", "remote_ip", remoteIP, "kind", kind)
			return
		}

		size, _ := wire.RequestBodySize(kind)
		body := make([]byte, size)
		if size > 0 {
			if _, err := io.ReadFull(conn, body); err != nil {
				logDisconnect(remoteIP, err, true)
				return
			}
		}

		result, err := r.handle(s, &sess, remoteIP, body)
		if err != nil {
			slog.Warn("matchserver: handler error, closing session", "remote_ip", remoteIP, "kind", kind, "error", err)
			return
		}

		if s.metrics != nil {
			s.metrics.HandlerInvoked(kind.String(), result.code.String())
		}

		if result.code == wire.Ok {
			slog.Info("matchserver: handled request", "remote_ip", remoteIP, "kind", kind)
		} else {
			slog.Warn("matchserver: request refused", "remote_ip", remoteIP, "kind", kind, "error_code", result.code)
		}

		reply := wire.ReplyHeader{Kind: r.replyKind, ErrorCode: result.code}.Encode()
		reply = append(reply, result.body...)
		if _, err := conn.Write(reply); err != nil {
			logDisconnect(remoteIP, err, true)
			return
		}

		if result.closeAfterReply {
			return
		}
	}
}

// finalize removes any room the session was hosting, mirroring the original
// server's session-teardown step.
func (s *Server) finalize(sess *session.State) {
	groupIdx, roomID, hosting := sess.Hosting()
	if !hosting {
		return
	}
	fullName, _ := sess.FullNameOK()
	ownerKey := directory.OwnerKeyFor(fullName)
	d := s.directories[groupIdx]
	if err := d.Remove(roomID, ownerKey); err == nil {
		if s.metrics != nil {
			s.metrics.RoomRemoved(groupLabel(groupIdx))
			s.metrics.SetRoomsCurrent(groupLabel(groupIdx), d.Count())
		}
	}
}

func readKind(conn net.Conn) (wire.Kind, error) {
	var b [1]byte
	if _, err := io.ReadFull(conn, b[:]); err != nil {
		return 0, err
	}
	return wire.Kind(b[0]), nil
}

func connRemoteIP(conn net.Conn) net.IP {
	addr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return net.IPv4zero
	}
	return addr.IP
}

// logDisconnect logs at info for an ordinary client-initiated close (EOF) and
// for an idle read timeout observed at the top of the receive loop, before
// any byte of the next message arrived — both are DisconnectedExpectedly,
// not an error. A timeout (or any other error) observed mid-message, after
// the kind byte was already consumed, means the peer went away mid-frame and
// is logged at warn.
func logDisconnect(remoteIP net.IP, err error, midMessage bool) {
	if !midMessage && errors.Is(err, io.EOF) {
		slog.Info("matchserver: disconnected expectedly", "remote_ip", remoteIP)
		return
	}
	var netErr net.Error
	if !midMessage && errors.As(err, &netErr) && netErr.Timeout() {
		slog.Info("matchserver: disconnected expectedly (idle timeout)", "remote_ip", remoteIP)
		return
	}
	slog.Warn("matchserver: connection error", "remote_ip", remoteIP, "error", err)
}
