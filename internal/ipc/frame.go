package ipc

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// MaxPayload bounds a single frame payload.
const MaxPayload = 1 << 20

// ErrFrameTooLarge is returned when a frame exceeds MaxPayload.
var ErrFrameTooLarge = errors.New("ipc: frame too large")

// FrameType identifies the purpose of a frame.
type FrameType byte

const (
	FrameConnect FrameType = iota + 1
	FrameExecute
	FrameAck
	FrameDisconnect
)

// String returns the frame type name.
func (t FrameType) String() string {
	switch t {
	case FrameConnect:
		return "connect"
	case FrameExecute:
		return "execute"
	case FrameAck:
		return "ack"
	case FrameDisconnect:
		return "disconnect"
	default:
		return fmt.Sprintf("frame(%d)", byte(t))
	}
}

// writeFrame writes type(1) | length(4, big endian) | payload.
func writeFrame(w io.Writer, t FrameType, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrFrameTooLarge
	}
	var hdr [5]byte
	hdr[0] = byte(t)
	binary.BigEndian.PutUint32(hdr[1:], uint32(len(payload)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

func readFrame(r io.Reader) (FrameType, []byte, error) {
	var hdr [5]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, err
	}
	n := binary.BigEndian.Uint32(hdr[1:])
	if n > MaxPayload {
		return 0, nil, ErrFrameTooLarge
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("ipc: short %s frame: %w", FrameType(hdr[0]), err)
	}
	return FrameType(hdr[0]), payload, nil
}

func ackPayload(ok bool) []byte {
	if ok {
		return []byte{'1'}
	}
	return []byte{'0'}
}
