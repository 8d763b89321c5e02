package main

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"codesync/wire"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// A connection silent for longer than pongWait is treated as departed,
	// the same as an explicit leave.
	pongWait = 60 * time.Second

	// Ping period must be shorter than pongWait.
	pingPeriod = (pongWait * 9) / 10
)

// CodeUpdateMessage is a decoded binary frame from the Student: the code
// text alone, since room and sender are fixed per connection at join time.
type CodeUpdateMessage struct {
	Text string
}

var ErrUndefinedType = errors.New("incorrect type")

// ParticipantWebsocket wraps one upgraded connection. Reads happen from the
// connection's read goroutine only; writes are serialized with a mutex
// because pong replies, pings and event pushes come from different
// goroutines.
type ParticipantWebsocket struct {
	conn    net.Conn
	reader  *wsutil.Reader
	control wsutil.FrameHandlerFunc
	writeMu sync.Mutex
}

func NewParticipantWebsocket(conn net.Conn) *ParticipantWebsocket {
	p := &ParticipantWebsocket{conn: conn}
	p.control = wsutil.ControlFrameHandler(conn, ws.StateServerSide)
	p.reader = &wsutil.Reader{
		Source:         conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		OnIntermediate: p.handleControl,
	}
	return p
}

func (p *ParticipantWebsocket) handleControl(h ws.Header, r io.Reader) error {
	p.lockWrite()
	defer p.unlockWrite()
	return p.control(h, r)
}

func (p *ParticipantWebsocket) lockWrite() {
	p.writeMu.Lock()
	p.conn.SetWriteDeadline(time.Now().Add(writeWait))
}

func (p *ParticipantWebsocket) unlockWrite() {
	p.writeMu.Unlock()
}

// ReadMessage blocks for the next client message and returns one of
// wire.JoinEvent, wire.LeaveEvent or CodeUpdateMessage. A message of an
// unknown type or with an invalid code frame yields a recoverable error;
// transport failures and silence beyond pongWait yield terminal ones.
func (p *ParticipantWebsocket) ReadMessage() (any, error) {
	for {
		p.conn.SetReadDeadline(time.Now().Add(pongWait))
		header, err := p.reader.NextFrame()
		if err != nil {
			return nil, err
		}
		if header.OpCode.IsControl() {
			if err := p.handleControl(header, p.reader); err != nil {
				return nil, err
			}
			continue
		}
		payload, err := io.ReadAll(p.reader)
		if err != nil {
			return nil, err
		}
		switch header.OpCode {
		case ws.OpBinary:
			text, err := wire.Decode(payload)
			if err != nil {
				return nil, err
			}
			return CodeUpdateMessage{Text: text}, nil
		case ws.OpText:
			message := UnmarshalJSON[wire.Envelope](payload)
			switch message.Type {
			case wire.TypeJoin:
				return UnmarshalJSON[wire.JoinEvent](payload), nil
			case wire.TypeLeave:
				return UnmarshalJSON[wire.LeaveEvent](payload), nil
			default:
				return nil, ErrUndefinedType
			}
		default:
			return nil, ErrUndefinedType
		}
	}
}

// IsRecoverable reports whether a ReadMessage error spoils only that single
// message. The connection stays up and shared room state is untouched.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrUndefinedType) ||
		errors.Is(err, wire.ErrPayloadTooLarge) ||
		errors.Is(err, wire.ErrMalformedFrame) ||
		errors.Is(err, wire.ErrInvalidEncoding)
}

func (p *ParticipantWebsocket) SendRaw(data []byte) error {
	p.lockWrite()
	defer p.unlockWrite()
	return wsutil.WriteServerText(p.conn, data)
}

func (p *ParticipantWebsocket) sendMessage(message any) error {
	encoded, _ := json.Marshal(message)
	return p.SendRaw(encoded)
}

func (p *ParticipantWebsocket) SendResumeKey(resumeKey string) error {
	return p.sendMessage(wire.ResumeKeyEvent{Type: wire.TypeResumeKey, ResumeKey: resumeKey})
}

func (p *ParticipantWebsocket) Ping() error {
	p.lockWrite()
	defer p.unlockWrite()
	return wsutil.WriteServerMessage(p.conn, ws.OpPing, nil)
}
