package matchserver

import (
	"math/rand"
	"net"
	"sort"
	"strconv"

	"matchmaker/internal/directory"
	"matchmaker/internal/session"
	"matchmaker/internal/wire"
)

// handlerResult is what every per-kind handler produces. err is non-nil
// only for fatal conditions (never for a continuable protocol error, which
// is reported via code instead). closeAfterReply asks the connection driver
// to write the reply and then end the session — used for the denylist
// check, which must refuse even a structurally valid authentication.
type handlerResult struct {
	body            []byte
	code            wire.ErrorCode
	closeAfterReply bool
}

func ok(body []byte) handlerResult { return handlerResult{body: body, code: wire.Ok} }

func refused(code wire.ErrorCode) handlerResult { return handlerResult{code: code} }

func groupLabel(i uint8) string { return strconv.Itoa(int(i)) }

func (s *Server) handleAuthenticate(sess *session.State, remoteIP net.IP, body []byte) (handlerResult, error) {
	var req wire.AuthenticationRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}

	if s.denylist != nil {
		banned, err := s.denylist.Check(remoteIP.String())
		if err != nil {
			return handlerResult{}, err
		}
		if banned {
			return handlerResult{code: wire.Denied, closeAfterReply: true}, nil
		}
	}

	if !s.cfg.versionAccepted(req.Version) {
		return refused(wire.VersionMismatch), nil
	}

	sess.Authenticate()
	return ok(nil), nil
}

func (s *Server) handleCreateRoom(sess *session.State, remoteIP net.IP, body []byte) (handlerResult, error) {
	var req wire.CreateRoomRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}

	if sess.IsHosting() {
		return refused(wire.ClientAlreadyHostingRoom), nil
	}
	if int(req.GroupIndex) >= len(s.directories) {
		return refused(wire.RoomGroupNotFound), nil
	}

	// A room is public exactly when it has no password; the public bit is
	// derived here, never trusted from the client's flags, so a password
	// room can never be advertised as public.
	flags := req.Flags &^ wire.FlagPublic
	if req.Password == "" {
		flags |= wire.FlagPublic
	}

	room := &directory.Room{
		HostName:       req.HostName,
		Flags:          flags,
		Password:       req.Password,
		MaxPlayerCount: req.MaxPlayerCount,
		OwnerIP:        remoteIP,
		Port:           req.Port,
	}
	d := s.directories[req.GroupIndex]
	id, err := d.AssignIDAndInsert(room)
	if err != nil {
		switch err {
		case directory.ErrRoomNameDuplicated:
			return refused(wire.RoomNameDuplicated), nil
		case directory.ErrRoomCountReachesLimit:
			return refused(wire.RoomCountReachesLimit), nil
		default:
			return handlerResult{}, err
		}
	}
	ownerKey := directory.OwnerKeyFor(req.HostName)
	d.SetOwnerKey(id, ownerKey)

	sess.SetFullName(req.HostName)
	sess.SetHosting(req.GroupIndex, id)

	if s.metrics != nil {
		s.metrics.RoomCreated(groupLabel(req.GroupIndex))
		s.metrics.SetRoomsCurrent(groupLabel(req.GroupIndex), d.Count())
	}

	return ok(wire.CreateRoomReply{RoomID: id}.Encode()), nil
}

func (s *Server) handleListRoom(_ *session.State, _ net.IP, body []byte) (handlerResult, error) {
	var req wire.ListRoomRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}
	if int(req.GroupIndex) >= len(s.directories) {
		return refused(wire.RoomGroupNotFound), nil
	}

	rooms := s.directories[req.GroupIndex].Snapshot()
	if req.PublicOnly {
		filtered := rooms[:0]
		for _, r := range rooms {
			if r.Flags&wire.FlagPublic != 0 {
				filtered = append(filtered, r)
			}
		}
		rooms = filtered
	}

	sortRooms(rooms, req.SortKind)

	total := len(rooms)
	start := int(req.StartIndex)
	if start > total {
		start = total
	}
	end := int(req.EndIndex)
	if end > total {
		end = total // silent truncation, resolved open question
	}
	if end < start {
		end = start
	}
	if end-start > wire.ListRoomCapacity {
		end = start + wire.ListRoomCapacity
	}

	window := rooms[start:end]
	infos := make([]wire.RoomInfo, len(window))
	for i, r := range window {
		infos[i] = wire.RoomInfo{
			RoomID:              r.ID,
			HostName:            r.HostName.Name,
			Flags:               r.Flags,
			MaxPlayerCount:      r.MaxPlayerCount,
			CurrentPlayerCount:  r.CurrentPlayerCount,
			CreateUnixTimestamp: r.CreatedAt.Unix(),
		}
	}

	reply := wire.ListRoomReply{TotalRoomCount: uint16(total), Rooms: infos}
	return ok(reply.Encode()), nil
}

// sortRooms orders rooms by the requested key, breaking ties by room_id
// ascending so the result is a total order: rooms with equal keys (hosts
// sharing a name under different tags, or equal creation times) would
// otherwise compare equal, and sort.Slice's instability would make repeated
// list_room calls disagree on their ordering.
func sortRooms(rooms []directory.Room, kind wire.SortKind) {
	switch kind {
	case wire.SortNameAscending:
		sort.Slice(rooms, func(i, j int) bool {
			if rooms[i].HostName.Name != rooms[j].HostName.Name {
				return rooms[i].HostName.Name < rooms[j].HostName.Name
			}
			return rooms[i].ID < rooms[j].ID
		})
	case wire.SortNameDescending:
		sort.Slice(rooms, func(i, j int) bool {
			if rooms[i].HostName.Name != rooms[j].HostName.Name {
				return rooms[i].HostName.Name > rooms[j].HostName.Name
			}
			return rooms[i].ID < rooms[j].ID
		})
	case wire.SortCreateDatetimeAscending:
		sort.Slice(rooms, func(i, j int) bool {
			if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
				return rooms[i].CreatedAt.Before(rooms[j].CreatedAt)
			}
			return rooms[i].ID < rooms[j].ID
		})
	case wire.SortCreateDatetimeDescending:
		sort.Slice(rooms, func(i, j int) bool {
			if !rooms[i].CreatedAt.Equal(rooms[j].CreatedAt) {
				return rooms[i].CreatedAt.After(rooms[j].CreatedAt)
			}
			return rooms[i].ID < rooms[j].ID
		})
	}
}

func (s *Server) handleJoinRoom(_ *session.State, _ net.IP, body []byte) (handlerResult, error) {
	var req wire.JoinRoomRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}

	for _, d := range s.directories {
		if _, exists := d.Get(req.RoomID); !exists {
			continue
		}
		room, err := d.Join(req.RoomID, req.Password)
		if err != nil {
			return handlerResult{code: mapJoinError(err)}, nil
		}
		reply := wire.JoinRoomReply{HostEndpoint: room.Endpoint(), CurrentPlayerCount: room.CurrentPlayerCount}
		return ok(reply.Encode()), nil
	}
	return refused(wire.RoomNotExist), nil
}

func mapJoinError(err error) wire.ErrorCode {
	switch err {
	case directory.ErrRoomNotExist:
		return wire.RoomNotExist
	case directory.ErrPermissionDenied:
		return wire.PermissionDenied
	case directory.ErrPlayerCountReachesLimit:
		return wire.PlayerCountReachesLimit
	default:
		return wire.UnknownError
	}
}

func (s *Server) handleUpdateRoomStatus(sess *session.State, _ net.IP, body []byte) (handlerResult, error) {
	var req wire.UpdateRoomStatusRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}

	groupIdx, roomID, hosting := sess.Hosting()
	if !hosting || roomID != req.RoomID {
		// Ownership is never revealed to a non-owner (resolved open question).
		return refused(wire.RoomNotExist), nil
	}

	fullName, _ := sess.FullNameOK()
	ownerKey := directory.OwnerKeyFor(fullName)

	d := s.directories[groupIdx]
	if err := d.UpdateStatus(req.RoomID, ownerKey, req.Status); err != nil {
		return refused(wire.RoomNotExist), nil
	}

	if req.Status == wire.RoomStatusRemove {
		sess.ClearHosting()
		if s.metrics != nil {
			s.metrics.RoomRemoved(groupLabel(groupIdx))
			s.metrics.SetRoomsCurrent(groupLabel(groupIdx), d.Count())
		}
	}
	return ok(nil), nil
}

func (s *Server) handleRandomMatch(_ *session.State, _ net.IP, body []byte) (handlerResult, error) {
	var req wire.RandomMatchRequest
	if err := req.Decode(body); err != nil {
		return handlerResult{}, err
	}
	if int(req.GroupIndex) >= len(s.directories) {
		return refused(wire.RoomGroupNotFound), nil
	}

	rooms := s.directories[req.GroupIndex].Snapshot()
	var candidates []uint32
	for _, r := range rooms {
		if r.Status == wire.RoomStatusOpen &&
			r.Flags&wire.FlagPublic != 0 &&
			r.Password == "" &&
			r.CurrentPlayerCount < r.MaxPlayerCount {
			candidates = append(candidates, r.ID)
		}
	}
	if len(candidates) == 0 {
		return refused(wire.RoomNotExist), nil
	}

	roomID := candidates[rand.Intn(len(candidates))]
	room, err := s.directories[req.GroupIndex].Join(roomID, "")
	if err != nil {
		return handlerResult{code: mapJoinError(err)}, nil
	}
	reply := wire.JoinRoomReply{HostEndpoint: room.Endpoint(), CurrentPlayerCount: room.CurrentPlayerCount}
	return ok(reply.Encode()), nil
}

func (s *Server) handleListRoomGroup(_ *session.State, _ net.IP, _ []byte) (handlerResult, error) {
	reply := wire.ListRoomGroupReply{GroupNames: s.cfg.Groups}
	return ok(reply.Encode()), nil
}
