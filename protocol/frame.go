package protocol

import (
	"bytes"
	"errors"
)

// ErrFrameTooLarge is returned when a payload does not fit in one frame
var ErrFrameTooLarge = errors.New("frame payload too large")

// EncodeFrame writes one framed message to output.
// frameData writes the payload; the header and trailer are filled in here.
func EncodeFrame(output OutputBuffer, seq uint8, frameData func(output OutputBuffer)) error {
	cursor := output.CurPosition()

	// Write header (length placeholder and sequence)
	output.Output([]byte{0, MessageDest | (seq & MessageSeqMask)})

	// Write frame contents
	frameData(output)

	// Update length field
	changed := len(output.DataSince(cursor))
	if changed+MessageTrailerSize > MessageLengthMax {
		return ErrFrameTooLarge
	}
	output.Update(cursor, uint8(changed+MessageTrailerSize))

	// Calculate and write CRC
	crc := CRC16(output.DataSince(cursor))
	output.Output([]byte{
		uint8((crc & 0xFF00) >> 8),
		uint8(crc & 0xFF),
		MessageValueSync,
	})
	return nil
}

// Frame is one decoded message block
type Frame struct {
	Seq     uint8
	Payload []byte
}

// Decoder reassembles frames from a byte stream.
// Corrupt data is skipped by resynchronizing on the next sync byte.
type Decoder struct {
	buf          []byte
	synchronized bool

	// Dropped counts the number of times the stream lost sync
	Dropped uint32
}

// NewDecoder creates a decoder that starts synchronized
func NewDecoder() *Decoder {
	return &Decoder{synchronized: true}
}

// Write appends received bytes. It never fails.
func (d *Decoder) Write(p []byte) (int, error) {
	d.buf = append(d.buf, p...)
	return len(p), nil
}

// Next returns the next complete frame, or false if more data is needed
func (d *Decoder) Next() (Frame, bool) {
	for len(d.buf) > 0 {
		if !d.synchronized {
			// Look for sync byte to resynchronize
			syncPos := bytes.IndexByte(d.buf, MessageValueSync)
			if syncPos < 0 {
				d.buf = d.buf[:0]
				return Frame{}, false
			}
			d.buf = d.buf[syncPos+1:]
			d.synchronized = true
			continue
		}

		// Skip leading sync bytes
		if d.buf[0] == MessageValueSync {
			d.buf = d.buf[1:]
			continue
		}

		// Need at least minimum message length
		if len(d.buf) < MessageLengthMin {
			break
		}

		msgLen := int(d.buf[MessagePositionLen])
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax {
			d.lostSync()
			continue
		}

		seq := d.buf[MessagePositionSeq]
		if seq&^MessageSeqMask != MessageDest {
			d.lostSync()
			continue
		}

		// Wait for full message
		if len(d.buf) < msgLen {
			break
		}

		if d.buf[msgLen-MessageTrailerSync] != MessageValueSync {
			d.lostSync()
			continue
		}

		frameCRC := uint16(d.buf[msgLen-MessageTrailerCRC])<<8 |
			uint16(d.buf[msgLen-MessageTrailerCRC+1])
		if frameCRC != CRC16(d.buf[:msgLen-MessageTrailerSize]) {
			d.lostSync()
			continue
		}

		payload := make([]byte, msgLen-MessageLengthMin)
		copy(payload, d.buf[MessageHeaderSize:msgLen-MessageTrailerSize])
		d.buf = d.buf[msgLen:]
		return Frame{Seq: seq & MessageSeqMask, Payload: payload}, true
	}

	if len(d.buf) == 0 {
		d.buf = nil
	}
	return Frame{}, false
}

func (d *Decoder) lostSync() {
	d.synchronized = false
	d.Dropped++
}
