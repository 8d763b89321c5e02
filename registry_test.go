package main

import (
	"testing"

	"codesync/wire"
)

func TestJoinCreatesRoomLazily(t *testing.T) {
	registry := NewRegistry()
	if _, exists := registry.GetRoom("1"); exists {
		t.Fatal("room exists before any join")
	}
	role, _ := registry.Join("1", "u1", make(chan []byte, 16))
	if role != wire.RoleStudent {
		t.Errorf("expected Student got %v", role)
	}
	if _, exists := registry.GetRoom("1"); !exists {
		t.Error("room missing after join")
	}
}

func TestRoomRemovedWhenLastParticipantLeaves(t *testing.T) {
	registry := NewRegistry()
	ch1 := make(chan []byte, 16)
	ch2 := make(chan []byte, 16)
	registry.Join("1", "u1", ch1)
	registry.Join("1", "u2", ch2)

	registry.Leave("1", "u1", ch1)
	if _, exists := registry.GetRoom("1"); !exists {
		t.Fatal("room removed while a participant remains")
	}
	registry.Leave("1", "u2", ch2)
	if _, exists := registry.GetRoom("1"); exists {
		t.Error("empty room was not removed")
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	registry := NewRegistry()
	registry.Join("1", "u1", make(chan []byte, 16))
	role, _ := registry.Join("2", "u1", make(chan []byte, 16))
	if role != wire.RoleStudent {
		t.Errorf("first joiner of a fresh room should be Student, got %v", role)
	}
}

func TestUpdateCodeUnknownRoom(t *testing.T) {
	registry := NewRegistry()
	if registry.UpdateCode("nope", "u1", "x") {
		t.Error("update accepted for a room that does not exist")
	}
}

func TestLeaveUnknownRoomIsNoop(t *testing.T) {
	registry := NewRegistry()
	registry.Leave("nope", "u1", make(chan []byte, 16))
}
