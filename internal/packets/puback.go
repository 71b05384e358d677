package packets

import "io"

// PubackPacket acknowledges a QoS 1 PUBLISH.
type PubackPacket struct {
	PacketID uint16
}

func (p *PubackPacket) Type() PacketType { return PUBACK }

func (p *PubackPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: PUBACK}, packetIDBody(p.PacketID))
}

// DecodePuback decodes a PUBACK packet body.
func DecodePuback(buf []byte) (*PubackPacket, error) {
	id, err := decodePacketID(buf)
	if err != nil {
		return nil, err
	}
	return &PubackPacket{PacketID: id}, nil
}
