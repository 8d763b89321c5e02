package main

import (
	"time"

	"codesync/wire"
)

// Participant is one member of a room. send carries pre-marshaled
// server-to-client events and is rebound when the same user reconnects.
type Participant struct {
	UserID      string
	Role        wire.Role
	Code        string
	DisplayName string
	JoinedAt    time.Time

	send chan<- []byte
}
