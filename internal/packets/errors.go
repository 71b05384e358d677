package packets

import "errors"

// Sentinel decode errors. ErrUnderflow is not a malformed-packet condition:
// it means buf does not yet hold a complete packet and the caller (the
// reactor's read loop) should retry Decode once more bytes have arrived.
var (
	ErrUnderflow         = errors.New("packets: buffer ends mid-packet")
	ErrMalformedVarint   = errors.New("packets: variable byte integer exceeds four bytes")
	ErrInvalidUTF8       = errors.New("packets: invalid utf-8 string")
	ErrUnknownPacketType = errors.New("packets: unknown control packet type")
	ErrInvalidFlags      = errors.New("packets: fixed header flags do not match packet type")
	ErrMalformedPacket   = errors.New("packets: malformed packet body")
)
