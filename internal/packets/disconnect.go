package packets

import "io"

// DisconnectPacket announces a graceful client-initiated disconnect.
type DisconnectPacket struct{}

func (p *DisconnectPacket) Type() PacketType { return DISCONNECT }

func (p *DisconnectPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: DISCONNECT}, nil)
}

// DecodeDisconnect decodes a DISCONNECT packet (no body).
func DecodeDisconnect(buf []byte) (*DisconnectPacket, error) {
	return &DisconnectPacket{}, nil
}
