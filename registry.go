package main

import (
	"sync"

	"codesync/wire"
)

// Registry maps room identifiers to live rooms. Rooms are created lazily on
// first join and dropped once their last participant leaves.
type Registry struct {
	rooms map[string]*Room
	lock  sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

func (reg *Registry) GetRoom(roomID string) (*Room, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()
	room, exists := reg.rooms[roomID]
	return room, exists
}

// Join enters userID into roomID, creating the room if needed.
func (reg *Registry) Join(roomID, userID string, send chan<- []byte) (wire.Role, string) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, exists := reg.rooms[roomID]
	if !exists {
		room = NewRoom()
		reg.rooms[roomID] = room
		LogCreatedRoom(roomID)
	}
	return room.Join(userID, send)
}

// Leave removes userID from roomID and drops the room when it empties.
// Unknown rooms are a no-op.
func (reg *Registry) Leave(roomID, userID string, send chan<- []byte) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	room, exists := reg.rooms[roomID]
	if !exists {
		return
	}
	if _, empty := room.Leave(userID, send); empty {
		delete(reg.rooms, roomID)
		LogRemovedRoom(roomID)
	}
}

// UpdateCode applies a Student edit. Returns false when the caller is not
// the room's Student; the server never trusts the client to enforce that.
func (reg *Registry) UpdateCode(roomID, userID, text string) bool {
	reg.lock.RLock()
	room, exists := reg.rooms[roomID]
	reg.lock.RUnlock()
	if !exists {
		return false
	}
	return room.UpdateCode(userID, text)
}
