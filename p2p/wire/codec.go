package wire

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// MaxFrameSize bounds an incoming frame body, guarding against a malformed
// or hostile length prefix forcing an unbounded allocation.
const MaxFrameSize = 32 << 20

// ErrFrameTooLarge is returned when a frame's declared length exceeds
// MaxFrameSize.
var ErrFrameTooLarge = errors.New("wire: frame exceeds maximum size")

// WriteFrame writes m to w as a 4-byte big-endian length prefix followed by
// its protobuf encoding (spec.md §6 "Frames are length-prefixed, delimited
// by codec").
func WriteFrame(w io.Writer, m Message) error {
	body := m.AppendProto(nil)
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(len(body)))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return errors.Wrap(err, "wire: writing frame length")
	}
	if _, err := w.Write(body); err != nil {
		return errors.Wrap(err, "wire: writing frame body")
	}
	return nil
}

// ReadFrame reads one length-prefixed frame from r and parses its body.
func ReadFrame(r io.Reader) (Message, error) {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return Message{}, errors.Wrap(err, "wire: reading frame length")
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	if n > MaxFrameSize {
		return Message{}, ErrFrameTooLarge
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return Message{}, errors.Wrap(err, "wire: reading frame body")
	}
	return ParseMessage(body)
}
