package main

import (
	"encoding/json"
	"testing"

	"codesync/wire"
)

func studentCount(r *Room) int {
	count := 0
	for _, p := range r.participants {
		if p.Role == wire.RoleStudent {
			count++
		}
	}
	return count
}

func drain(ch chan []byte) []wire.Envelope {
	var events []wire.Envelope
	for {
		select {
		case data := <-ch:
			var env wire.Envelope
			json.Unmarshal(data, &env)
			events = append(events, env)
		default:
			return events
		}
	}
}

func TestFirstJoinerIsStudent(t *testing.T) {
	room := NewRoom()
	role, code := room.Join("u1", make(chan []byte, 16))
	if role != wire.RoleStudent {
		t.Errorf("expected Student got %v", role)
	}
	if code != "" {
		t.Errorf("expected empty code got %q", code)
	}
	role, _ = room.Join("u2", make(chan []byte, 16))
	if role != wire.RoleMentor {
		t.Errorf("expected Mentor got %v", role)
	}
	role, _ = room.Join("u3", make(chan []byte, 16))
	if role != wire.RoleMentor {
		t.Errorf("expected Mentor got %v", role)
	}
	if studentCount(room) != 1 {
		t.Errorf("expected exactly one Student got %d", studentCount(room))
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	room := NewRoom()
	ch := make(chan []byte, 16)
	firstRole, _ := room.Join("u1", ch)
	room.UpdateCode("u1", "x=1")
	secondRole, secondCode := room.Join("u1", ch)
	if secondRole != firstRole {
		t.Errorf("rejoin changed role: %v then %v", firstRole, secondRole)
	}
	if secondCode != "x=1" {
		t.Errorf("rejoin lost code: got %q", secondCode)
	}
	if room.ParticipantCount() != 1 {
		t.Errorf("rejoin duplicated membership: %d participants", room.ParticipantCount())
	}
}

func TestStudentLeavePromotesEarliestMentor(t *testing.T) {
	room := NewRoom()
	studentCh := make(chan []byte, 16)
	mentor1Ch := make(chan []byte, 16)
	mentor2Ch := make(chan []byte, 16)
	room.Join("student", studentCh)
	room.Join("mentor1", mentor1Ch)
	room.Join("mentor2", mentor2Ch)
	room.UpdateCode("student", "x=1")
	drain(mentor1Ch)

	room.Leave("student", studentCh)

	if studentCount(room) != 1 {
		t.Fatalf("expected exactly one Student got %d", studentCount(room))
	}
	promoted := room.participants[0]
	if promoted.UserID != "mentor1" {
		t.Errorf("expected earliest-joined mentor1 promoted, got %v", promoted.UserID)
	}
	if promoted.Role != wire.RoleStudent {
		t.Errorf("promoted participant has role %v", promoted.Role)
	}
	if promoted.Code != "x=1" {
		t.Errorf("promoted participant did not inherit code, got %q", promoted.Code)
	}

	var event wire.RoleAssignedEvent
	json.Unmarshal(<-mentor1Ch, &event)
	if event.Type != wire.TypeRoleAssigned || event.Role != wire.RoleStudent || event.Code != "x=1" {
		t.Errorf("promoted mentor was not notified correctly: %+v", event)
	}
}

func TestMentorLeaveKeepsStudent(t *testing.T) {
	room := NewRoom()
	studentCh := make(chan []byte, 16)
	mentorCh := make(chan []byte, 16)
	room.Join("student", studentCh)
	room.Join("mentor", mentorCh)
	room.Leave("mentor", mentorCh)
	if studentCount(room) != 1 {
		t.Errorf("expected one Student got %d", studentCount(room))
	}
	if room.participants[0].UserID != "student" {
		t.Errorf("wrong participant left behind")
	}
}

func TestLeaveLastParticipantEmptiesRoom(t *testing.T) {
	room := NewRoom()
	ch := make(chan []byte, 16)
	room.Join("u1", ch)
	removed, empty := room.Leave("u1", ch)
	if !removed || !empty {
		t.Errorf("expected removed and empty, got %v %v", removed, empty)
	}
}

func TestLeaveWithStaleConnectionIsIgnored(t *testing.T) {
	room := NewRoom()
	oldCh := make(chan []byte, 16)
	newCh := make(chan []byte, 16)
	room.Join("u1", oldCh)
	room.Join("u1", newCh)
	removed, _ := room.Leave("u1", oldCh)
	if removed {
		t.Error("stale connection evicted a reconnected participant")
	}
	if room.ParticipantCount() != 1 {
		t.Errorf("expected 1 participant got %d", room.ParticipantCount())
	}
}

func TestUpdateCodeFromMentorIsIgnored(t *testing.T) {
	room := NewRoom()
	studentCh := make(chan []byte, 16)
	mentorCh := make(chan []byte, 16)
	room.Join("student", studentCh)
	room.Join("mentor", mentorCh)
	drain(studentCh)

	if room.UpdateCode("mentor", "evil") {
		t.Error("mentor edit was accepted")
	}
	if events := drain(studentCh); len(events) != 0 {
		t.Errorf("mentor edit was broadcast: %v", events)
	}
	if room.UpdateCode("stranger", "evil") {
		t.Error("non-member edit was accepted")
	}
}

func TestUpdatesArriveInOrder(t *testing.T) {
	room := NewRoom()
	studentCh := make(chan []byte, 16)
	mentorCh := make(chan []byte, 16)
	room.Join("student", studentCh)
	room.Join("mentor", mentorCh)
	drain(mentorCh)

	inputs := []string{"x", "x=", "x=1"}
	for _, text := range inputs {
		room.UpdateCode("student", text)
	}

	var got []string
	for range inputs {
		var event wire.CodeUpdatedEvent
		json.Unmarshal(<-mentorCh, &event)
		if event.Type != wire.TypeCodeUpdated {
			t.Fatalf("unexpected event type %v", event.Type)
		}
		got = append(got, event.Code)
	}
	for i, text := range inputs {
		if got[i] != text {
			t.Errorf("update %d out of order: got %q want %q", i, got[i], text)
		}
	}
}

func TestSnapshotOmitsEmptyCode(t *testing.T) {
	room := NewRoom()
	studentCh := make(chan []byte, 16)
	room.Join("student", studentCh)

	snap := room.snapshotLocked()
	if len(snap.Codes) != 0 {
		t.Errorf("snapshot should omit empty code, got %v", snap.Codes)
	}
	if len(snap.Participants) != 1 {
		t.Errorf("expected 1 participant in roster, got %v", snap.Participants)
	}

	room.UpdateCode("student", "x=1")
	snap = room.snapshotLocked()
	if snap.Codes["Student 1"] != "x=1" {
		t.Errorf("snapshot missing student code: %v", snap.Codes)
	}
}

func TestMentorJoinReceivesRoleThenSnapshot(t *testing.T) {
	room := NewRoom()
	room.Join("student", make(chan []byte, 16))
	mentorCh := make(chan []byte, 16)
	room.Join("mentor", mentorCh)

	var role wire.RoleAssignedEvent
	json.Unmarshal(<-mentorCh, &role)
	if role.Type != wire.TypeRoleAssigned || role.Role != wire.RoleMentor {
		t.Fatalf("expected mentor role assignment first, got %+v", role)
	}
	var snap wire.AllCodesEvent
	json.Unmarshal(<-mentorCh, &snap)
	if snap.Type != wire.TypeAllCodes {
		t.Fatalf("expected snapshot second, got %+v", snap)
	}
	if len(snap.Participants) != 2 {
		t.Errorf("expected both participants in roster, got %v", snap.Participants)
	}
}
