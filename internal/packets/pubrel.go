package packets

import "io"

// PubrelPacket is step two of the QoS 2 PUBLISH handshake.
type PubrelPacket struct {
	PacketID uint16
}

func (p *PubrelPacket) Type() PacketType { return PUBREL }

func (p *PubrelPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: PUBREL, Flags: 0x02}, packetIDBody(p.PacketID))
}

// DecodePubrel decodes a PUBREL packet body.
func DecodePubrel(buf []byte) (*PubrelPacket, error) {
	id, err := decodePacketID(buf)
	if err != nil {
		return nil, err
	}
	return &PubrelPacket{PacketID: id}, nil
}
