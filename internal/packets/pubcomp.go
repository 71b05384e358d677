package packets

import "io"

// PubcompPacket is the final step of the QoS 2 PUBLISH handshake.
type PubcompPacket struct {
	PacketID uint16
}

func (p *PubcompPacket) Type() PacketType { return PUBCOMP }

func (p *PubcompPacket) WriteTo(w io.Writer) (int64, error) {
	return writePacket(w, FixedHeader{Type: PUBCOMP}, packetIDBody(p.PacketID))
}

// DecodePubcomp decodes a PUBCOMP packet body.
func DecodePubcomp(buf []byte) (*PubcompPacket, error) {
	id, err := decodePacketID(buf)
	if err != nil {
		return nil, err
	}
	return &PubcompPacket{PacketID: id}, nil
}
