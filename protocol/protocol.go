// Package protocol implements the tachometer's binary telemetry framing.
//
// The framing follows the Klipper/Anchor message block layout:
//
//	[len][seq][payload ...][crc16 hi][crc16 lo][0x7E]
//
// Payload fields are VLQ-encoded integers.
package protocol

// Version represents the tachometer firmware version
const Version = "0.1.0"

// Protocol constants
const (
	MessageMax         = 128 // Scratch buffer size
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10

	// Message sequence masks
	MessageSeqMask = 0x0F
)
