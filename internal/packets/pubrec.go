package packets

import "io"

// PubrecPacket is step one of the QoS 2 PUBLISH handshake.
type PubrecPacket struct {
	PacketID uint16
}

func (p *PubrecPacket) Type() PacketType { return PUBREC }

func (p *PubrecPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: PUBREC}, packetIDBody(p.PacketID))
}

// DecodePubrec decodes a PUBREC packet body.
func DecodePubrec(buf []byte) (*PubrecPacket, error) {
	id, err := decodePacketID(buf)
	if err != nil {
		return nil, err
	}
	return &PubrecPacket{PacketID: id}, nil
}
