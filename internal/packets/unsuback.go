package packets

import "io"

// UnsubackPacket acknowledges an UNSUBSCRIBE.
type UnsubackPacket struct {
	PacketID uint16
}

func (p *UnsubackPacket) Type() PacketType { return UNSUBACK }

func (p *UnsubackPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: UNSUBACK}, packetIDBody(p.PacketID))
}

// DecodeUnsuback decodes an UNSUBACK packet body.
func DecodeUnsuback(buf []byte) (*UnsubackPacket, error) {
	id, err := decodePacketID(buf)
	if err != nil {
		return nil, err
	}
	return &UnsubackPacket{PacketID: id}, nil
}
