package wire

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// MaxPayloadSize is the largest code text, in UTF-8 bytes, that fits the
// 2-byte length prefix.
const MaxPayloadSize = 0xFFFF

var (
	ErrPayloadTooLarge = errors.New("payload exceeds 65535 bytes")
	ErrMalformedFrame  = errors.New("declared length does not match payload")
	ErrInvalidEncoding = errors.New("payload is not valid UTF-8")
)

// Encode wraps text in a frame: 2-byte big-endian length followed by the
// UTF-8 payload bytes.
func Encode(text string) ([]byte, error) {
	if len(text) > MaxPayloadSize {
		return nil, ErrPayloadTooLarge
	}
	frame := make([]byte, 2+len(text))
	binary.BigEndian.PutUint16(frame, uint16(len(text)))
	copy(frame[2:], text)
	return frame, nil
}

// Decode validates a frame and returns its text. A frame whose declared
// length disagrees with the bytes actually present is rejected whole.
func Decode(frame []byte) (string, error) {
	if len(frame) < 2 {
		return "", ErrMalformedFrame
	}
	declared := int(binary.BigEndian.Uint16(frame))
	payload := frame[2:]
	if len(payload) != declared {
		return "", ErrMalformedFrame
	}
	if !utf8.Valid(payload) {
		return "", ErrInvalidEncoding
	}
	return string(payload), nil
}
