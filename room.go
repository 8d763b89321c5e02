package main

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"codesync/wire"
)

// Room holds the authoritative state of one collaboration session:
// participants in join order, their roles and their current code. All
// mutations run under a single per-room lock, so updates within a room
// are applied in a total order.
type Room struct {
	lock         sync.Mutex
	participants []*Participant
	nextOrdinal  int
}

func NewRoom() *Room {
	return &Room{participants: make([]*Participant, 0)}
}

// Join adds userID to the room, or rebinds the connection of an already
// present participant. The first joiner becomes Student, later joiners
// Mentor. Rejoining never duplicates membership and returns the existing
// role and code unchanged.
func (r *Room) Join(userID string, send chan<- []byte) (wire.Role, string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if p, ok := r.findLocked(userID); ok {
		p.send = send
		pushTo(p, marshalEvent(wire.RoleAssignedEvent{Type: wire.TypeRoleAssigned, Role: p.Role, Code: p.Code}))
		if p.Role == wire.RoleMentor {
			pushTo(p, marshalEvent(r.snapshotLocked()))
		}
		return p.Role, p.Code
	}

	role := wire.RoleMentor
	if !r.hasStudentLocked() {
		role = wire.RoleStudent
	}
	r.nextOrdinal++
	p := &Participant{
		UserID:      userID,
		Role:        role,
		DisplayName: fmt.Sprintf("Student %d", r.nextOrdinal),
		JoinedAt:    time.Now(),
		send:        send,
	}
	r.participants = append(r.participants, p)

	pushTo(p, marshalEvent(wire.RoleAssignedEvent{Type: wire.TypeRoleAssigned, Role: role, Code: ""}))
	r.broadcastMentorsLocked(marshalEvent(r.snapshotLocked()))
	return role, ""
}

// Leave removes userID from the room. The send channel must match the one
// currently bound, so a lingering connection of a user who has already
// reconnected cannot evict them. When the Student departs and Mentors
// remain, the earliest-joined Mentor is promoted and inherits the code.
// Reports whether the participant was removed and whether the room is now
// empty.
func (r *Room) Leave(userID string, send chan<- []byte) (removed, empty bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	i := slices.IndexFunc(r.participants, func(p *Participant) bool { return p.UserID == userID })
	if i < 0 {
		return false, len(r.participants) == 0
	}
	p := r.participants[i]
	if p.send != send {
		return false, false
	}
	r.participants = slices.Delete(r.participants, i, i+1)
	if len(r.participants) == 0 {
		return true, true
	}

	if p.Role == wire.RoleStudent {
		next := r.participants[0]
		next.Role = wire.RoleStudent
		next.Code = p.Code
		pushTo(next, marshalEvent(wire.RoleAssignedEvent{Type: wire.TypeRoleAssigned, Role: wire.RoleStudent, Code: next.Code}))
	}
	r.broadcastMentorsLocked(marshalEvent(r.snapshotLocked()))
	return true, false
}

// UpdateCode overwrites the caller's code and broadcasts the delta to every
// other participant. Returns false without touching room state when the
// caller is absent or not the Student.
func (r *Room) UpdateCode(userID, text string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.findLocked(userID)
	if !ok || p.Role != wire.RoleStudent {
		return false
	}
	p.Code = text
	delta := marshalEvent(wire.CodeUpdatedEvent{Type: wire.TypeCodeUpdated, StudentName: p.DisplayName, Code: text})
	for _, q := range r.participants {
		if q != p {
			pushTo(q, delta)
		}
	}
	return true
}

func (r *Room) ParticipantCount() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.participants)
}

func (r *Room) findLocked(userID string) (*Participant, bool) {
	for _, p := range r.participants {
		if p.UserID == userID {
			return p, true
		}
	}
	return nil, false
}

func (r *Room) hasStudentLocked() bool {
	for _, p := range r.participants {
		if p.Role == wire.RoleStudent {
			return true
		}
	}
	return false
}

// snapshotLocked builds the Mentor-facing view: display name to code for
// Students that have typed something, plus the full participant roster.
func (r *Room) snapshotLocked() wire.AllCodesEvent {
	snap := wire.AllCodesEvent{
		Type:         wire.TypeAllCodes,
		Codes:        make(map[string]string),
		Participants: make([]string, 0, len(r.participants)),
	}
	for _, p := range r.participants {
		snap.Participants = append(snap.Participants, p.DisplayName)
		if p.Role == wire.RoleStudent && p.Code != "" {
			snap.Codes[p.DisplayName] = p.Code
		}
	}
	return snap
}

func (r *Room) broadcastMentorsLocked(data []byte) {
	for _, p := range r.participants {
		if p.Role == wire.RoleMentor {
			pushTo(p, data)
		}
	}
}

// pushTo never blocks: a participant whose send buffer is full misses the
// event and catches up from the next snapshot.
func pushTo(p *Participant, data []byte) {
	select {
	case p.send <- data:
	default:
		LogDroppedMessage(p.UserID)
	}
}

func marshalEvent(event any) []byte {
	data, _ := json.Marshal(event)
	return data
}
