// Package directory implements the per-group concurrent room registry:
// atomic ID assignment, uniqueness enforcement, and point-in-time snapshots
// for listing, grounded on the teacher's Room type (assign-ID-on-insert,
// RWMutex-guarded maps, snapshot-then-release-lock fan-out).
package directory

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"matchmaker/internal/wire"
)

var (
	ErrRoomNameDuplicated      = errors.New("directory: host already hosts a room in this group")
	ErrRoomCountReachesLimit   = errors.New("directory: group room count limit reached")
	ErrRoomNotExist            = errors.New("directory: room does not exist")
	ErrPermissionDenied        = errors.New("directory: room is not open, or password does not match")
	ErrPlayerCountReachesLimit = errors.New("directory: room is full")
)

// Room is a hosted room's server-side state. A room has no identity
// independent of its host's full name (I2): two sessions cannot host rooms
// under the same name in the same group.
type Room struct {
	ID                 uint32
	GroupIndex         uint8
	HostName           wire.PlayerName
	Flags              wire.RoomFlags
	Password           string
	MaxPlayerCount     uint8
	CurrentPlayerCount uint8
	OwnerIP            net.IP
	Port               uint16
	CreatedAt          time.Time
	Status             wire.RoomStatus

	// ownerKey identifies the session that created this room, so that
	// update_room_status can reject a non-owner (I5).
	ownerKey string
}

// Endpoint is the rendezvous address handed to a joining client.
func (r *Room) Endpoint() wire.Endpoint {
	return wire.NewEndpoint(r.OwnerIP, r.Port)
}

// snapshot returns a value copy safe to read without the directory's lock.
func (r *Room) snapshot() Room {
	cp := *r
	return cp
}

// Directory is one group's room map. room_id is assigned from a counter
// shared across every group in the server, so I1 (global room_id
// uniqueness) holds without the directories coordinating with each other.
type Directory struct {
	mu         sync.RWMutex
	groupIndex uint8
	rooms      map[uint32]*Room
	byHostName map[string]uint32 // full name key -> room id
	nextID     *atomic.Uint32
	maxRooms   int
}

func New(groupIndex uint8, nextID *atomic.Uint32, maxRooms int) *Directory {
	return &Directory{
		groupIndex: groupIndex,
		rooms:      make(map[uint32]*Room),
		byHostName: make(map[string]uint32),
		nextID:     nextID,
		maxRooms:   maxRooms,
	}
}

func hostKey(n wire.PlayerName) string {
	return n.Name + "#" + strconv.Itoa(int(n.Tag))
}

// AssignIDAndInsert assigns r.ID and registers it, enforcing I2 (host
// uniqueness) and I3 (room count bound) inside a single critical section so
// neither check can race a concurrent insert.
func (d *Directory) AssignIDAndInsert(r *Room) (uint32, error) {
	if r.MaxPlayerCount == 0 {
		r.MaxPlayerCount = 1
	}

	key := hostKey(r.HostName)

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.byHostName[key]; exists {
		return 0, ErrRoomNameDuplicated
	}
	if d.maxRooms > 0 && len(d.rooms) >= d.maxRooms {
		return 0, ErrRoomCountReachesLimit
	}

	id := d.nextID.Add(1)
	r.ID = id
	r.GroupIndex = d.groupIndex
	r.Status = wire.RoomStatusOpen
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	d.rooms[id] = r
	d.byHostName[key] = id
	return id, nil
}

// Remove deletes a room the caller owns. ownerKey must match the key
// recorded at creation, or ErrRoomNotExist is returned — including when the
// room does not exist, since the handler must not reveal whether a room
// exists under a different owner (resolved open question, update semantics).
func (d *Directory) Remove(roomID uint32, ownerKey string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok || r.ownerKey != ownerKey {
		return ErrRoomNotExist
	}
	delete(d.rooms, roomID)
	delete(d.byHostName, hostKey(r.HostName))
	return nil
}

// SetOwnerKey records the session identity allowed to mutate this room.
// Called once, immediately after AssignIDAndInsert succeeds.
func (d *Directory) SetOwnerKey(roomID uint32, ownerKey string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok := d.rooms[roomID]; ok {
		r.ownerKey = ownerKey
	}
}

// UpdateStatus transitions a room's open/closed state, or removes it, as
// requested by its owner.
func (d *Directory) UpdateStatus(roomID uint32, ownerKey string, status wire.RoomStatus) error {
	if status == wire.RoomStatusRemove {
		return d.Remove(roomID, ownerKey)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok || r.ownerKey != ownerKey {
		return ErrRoomNotExist
	}
	r.Status = status
	if status == wire.RoomStatusOpen {
		r.Flags |= wire.FlagOpen
	} else {
		r.Flags &^= wire.FlagOpen
	}
	return nil
}

// Get returns a value-copy snapshot of a room, safe to read lock-free.
func (d *Directory) Get(roomID uint32) (Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return r.snapshot(), true
}

// Join validates and applies a join against the live room, returning the
// post-join snapshot. A room that is not open, or whose password does not
// match, yields ErrPermissionDenied — the caller may see the room listed but
// is not permitted to enter it.
func (d *Directory) Join(roomID uint32, password string) (Room, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return Room{}, ErrRoomNotExist
	}
	if r.Status != wire.RoomStatusOpen {
		return Room{}, ErrPermissionDenied
	}
	if r.Password != "" && r.Password != password {
		return Room{}, ErrPermissionDenied
	}
	if r.CurrentPlayerCount >= r.MaxPlayerCount {
		return Room{}, ErrPlayerCountReachesLimit
	}
	r.CurrentPlayerCount++
	return r.snapshot(), nil
}

// Snapshot returns every room as of a single instant, sorted by the caller.
// Copies are taken under the read lock and the lock is released before
// return, so a slow caller (e.g. encoding a large reply) never blocks
// concurrent inserts or joins.
func (d *Directory) Snapshot() []Room {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		out = append(out, r.snapshot())
	}
	return out
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}

// OwnerKeyFor derives the stable identity used as a room's ownerKey from the
// hosting session's full name — distinct sessions can never collide on a
// name already rejected by AssignIDAndInsert's I2 check.
func OwnerKeyFor(n wire.PlayerName) string { return hostKey(n) }
