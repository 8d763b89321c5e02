package client

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"codesync/wire"
)

// Option configures a SyncClient at dial time.
type Option func(*SyncClient)

// WithDebounceWindow overrides the outbound edit quiescence window.
func WithDebounceWindow(window time.Duration) Option {
	return func(c *SyncClient) {
		c.debounceWindow = window
	}
}

// SyncClient is the client half of the sync channel. It joins one room on
// dial and surfaces server events on typed channels, which all close when
// the connection goes down. SendCode is debounced trailing-edge and is a
// no-op unless the server has assigned this client the Student role.
type SyncClient struct {
	conn     net.Conn
	identity *Identity
	roomID   string

	debounceWindow time.Duration
	debounce       *Debouncer

	roles     chan wire.RoleAssignedEvent
	snapshots chan wire.AllCodesEvent
	updates   chan wire.CodeUpdatedEvent

	mu      sync.Mutex
	role    wire.Role
	writeMu sync.Mutex
}

// Dial connects to url (a ws:// endpoint), announces the identity's user id
// and joins roomID. The role arrives asynchronously on Roles.
func Dial(ctx context.Context, url string, roomID string, identity *Identity, opts ...Option) (*SyncClient, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, err
	}
	c := &SyncClient{
		conn:           conn,
		identity:       identity,
		roomID:         roomID,
		debounceWindow: DefaultDebounceWindow,
		roles:          make(chan wire.RoleAssignedEvent, 16),
		snapshots:      make(chan wire.AllCodesEvent, 16),
		updates:        make(chan wire.CodeUpdatedEvent, 16),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debounce = NewDebouncer(c.debounceWindow, c.writeCode)

	join := wire.JoinEvent{Type: wire.TypeJoin, Room: roomID, UserID: identity.UserID(), Resume: identity.ResumeToken()}
	if err := c.writeJSON(join); err != nil {
		conn.Close()
		return nil, err
	}

	var source io.Reader = conn
	if br != nil {
		source = br
	}
	go c.readLoop(source)
	return c, nil
}

func (c *SyncClient) Roles() <-chan wire.RoleAssignedEvent  { return c.roles }
func (c *SyncClient) Snapshots() <-chan wire.AllCodesEvent  { return c.snapshots }
func (c *SyncClient) Updates() <-chan wire.CodeUpdatedEvent { return c.updates }

// Role returns the last role the server assigned, or "" before assignment.
func (c *SyncClient) Role() wire.Role {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.role
}

// SendCode schedules the current editor contents for sending. Rapid calls
// coalesce: the latest value goes out once input pauses for the debounce
// window. Non-Students are silently ignored.
func (c *SyncClient) SendCode(text string) {
	if c.Role() != wire.RoleStudent {
		return
	}
	c.debounce.Set(text)
}

// Close sends a best-effort leave, stops the debounce timer so no update
// can fire from a torn-down session, and closes the transport. The server's
// silence timeout covers the case where the leave never arrives.
func (c *SyncClient) Close() error {
	c.debounce.Stop()
	c.writeJSON(wire.LeaveEvent{Type: wire.TypeLeave, Room: c.roomID, UserID: c.identity.UserID()})
	return c.conn.Close()
}

func (c *SyncClient) writeCode(text string) {
	// Text over the frame limit cannot be represented on the wire; the
	// update is dropped and the next small-enough edit resyncs.
	frame, err := wire.Encode(text)
	if err != nil {
		return
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	wsutil.WriteClientBinary(c.conn, frame)
}

func (c *SyncClient) writeJSON(event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return wsutil.WriteClientText(c.conn, data)
}

func (c *SyncClient) readLoop(source io.Reader) {
	defer func() {
		close(c.roles)
		close(c.snapshots)
		close(c.updates)
	}()

	control := wsutil.ControlFrameHandler(c.conn, ws.StateClientSide)
	handleControl := func(h ws.Header, r io.Reader) error {
		c.writeMu.Lock()
		defer c.writeMu.Unlock()
		return control(h, r)
	}
	reader := &wsutil.Reader{
		Source:         source,
		State:          ws.StateClientSide,
		CheckUTF8:      true,
		OnIntermediate: handleControl,
	}

	for {
		header, err := reader.NextFrame()
		if err != nil {
			return
		}
		if header.OpCode.IsControl() {
			if err := handleControl(header, reader); err != nil {
				return
			}
			continue
		}
		payload, err := io.ReadAll(reader)
		if err != nil {
			return
		}
		if header.OpCode != ws.OpText {
			continue
		}
		c.dispatch(payload)
	}
}

func (c *SyncClient) dispatch(payload []byte) {
	var envelope wire.Envelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return
	}
	switch envelope.Type {
	case wire.TypeRoleAssigned:
		var event wire.RoleAssignedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return
		}
		c.mu.Lock()
		c.role = event.Role
		c.mu.Unlock()
		c.roles <- event
	case wire.TypeAllCodes:
		var event wire.AllCodesEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return
		}
		c.snapshots <- event
	case wire.TypeCodeUpdated:
		var event wire.CodeUpdatedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return
		}
		c.updates <- event
	case wire.TypeResumeKey:
		var event wire.ResumeKeyEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			return
		}
		c.identity.SetResumeToken(event.ResumeKey)
	}
}
