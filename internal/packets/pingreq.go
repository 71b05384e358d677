package packets

import "io"

// PingreqPacket requests a keepalive PINGRESP from the server.
type PingreqPacket struct{}

func (p *PingreqPacket) Type() PacketType { return PINGREQ }

func (p *PingreqPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: PINGREQ}, nil)
}

// DecodePingreq decodes a PINGREQ packet (no body).
func DecodePingreq(buf []byte) (*PingreqPacket, error) {
	return &PingreqPacket{}, nil
}
