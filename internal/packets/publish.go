package packets

import "io"

// PublishPacket carries application payload, in either direction.
type PublishPacket struct {
	Dup      bool
	QoS      uint8
	Retain   bool
	Topic    string
	PacketID uint16 // only meaningful when QoS > 0; see invariant (b)
	Payload  []byte
}

func (p *PublishPacket) Type() PacketType { return PUBLISH }

func (p *PublishPacket) flags() uint8 {
	var f uint8
	if p.Dup {
		f |= 0x08
	}
	f |= (p.QoS & 0x03) << 1
	if p.Retain {
		f |= 0x01
	}
	return f
}

func (p *PublishPacket) WriteTo(w io.Writer) (int64, error) {
	body := appendString(make([]byte, 0, 2+len(p.Topic)+2+len(p.Payload)), p.Topic)
	if p.QoS > 0 {
		body = append(body, byte(p.PacketID>>8), byte(p.PacketID))
	}
	body = append(body, p.Payload...)
	return writePacket(w, FixedHeader{Type: PUBLISH, Flags: p.flags()}, body)
}

// DecodePublish decodes a PUBLISH packet body. fh is the fixed header
// already decoded by Decode, carrying the Dup/QoS/Retain bits.
func DecodePublish(buf []byte, fh FixedHeader) (*PublishPacket, error) {
	pkt := &PublishPacket{
		Dup:    fh.Flags&0x08 != 0,
		QoS:    (fh.Flags >> 1) & 0x03,
		Retain: fh.Flags&0x01 != 0,
	}

	topic, n, err := decodeString(buf)
	if err != nil {
		return nil, err
	}
	pkt.Topic = topic
	offset := n

	if pkt.QoS > 0 {
		id, err := decodePacketID(buf[offset:])
		if err != nil {
			return nil, err
		}
		pkt.PacketID = id
		offset += 2
	}

	pkt.Payload = append([]byte(nil), buf[offset:]...)
	return pkt, nil
}
