package packets_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cobaltmq/reactor/internal/packets"
)

// roundTrip encodes pkt, decodes it back, and asserts decode consumed
// exactly the bytes WriteTo produced.
func roundTrip(t *testing.T, pkt packets.Packet) packets.Packet {
	t.Helper()
	var buf bytes.Buffer
	n, err := pkt.WriteTo(&buf)
	require.NoError(t, err)
	require.EqualValues(t, buf.Len(), n)

	consumed, got, err := packets.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, buf.Len(), consumed)
	return got
}

func TestDecodeRoundTripsEveryPacketType(t *testing.T) {
	t.Run("connect", func(t *testing.T) {
		want := &packets.ConnectPacket{
			ClientID:     "sensor-01",
			CleanSession: true,
			KeepAlive:    60,
			WillFlag:     true,
			WillTopic:    "last/will",
			WillMessage:  []byte("bye"),
			WillQoS:      1,
			WillRetain:   true,
			UsernameFlag: true,
			Username:     "alice",
			PasswordFlag: true,
			Password:     []byte("hunter2"),
		}
		got := roundTrip(t, want).(*packets.ConnectPacket)
		assert.Equal(t, want, got)
	})

	t.Run("connack", func(t *testing.T) {
		want := &packets.ConnackPacket{SessionPresent: true, ReturnCode: packets.ConnAccepted}
		got := roundTrip(t, want).(*packets.ConnackPacket)
		assert.Equal(t, want, got)
	})

	t.Run("publish qos0", func(t *testing.T) {
		want := &packets.PublishPacket{Topic: "a/b", Payload: []byte("hello")}
		got := roundTrip(t, want).(*packets.PublishPacket)
		assert.Equal(t, want, got)
	})

	t.Run("publish qos2 with dup and retain", func(t *testing.T) {
		want := &packets.PublishPacket{
			Dup: true, QoS: 2, Retain: true,
			Topic: "a/b", PacketID: 42, Payload: []byte("hello"),
		}
		got := roundTrip(t, want).(*packets.PublishPacket)
		assert.Equal(t, want, got)
	})

	t.Run("publish empty payload", func(t *testing.T) {
		want := &packets.PublishPacket{Topic: "a/b", Payload: nil}
		got := roundTrip(t, want).(*packets.PublishPacket)
		assert.Equal(t, "a/b", got.Topic)
		assert.Empty(t, got.Payload)
	})

	t.Run("puback", func(t *testing.T) {
		want := &packets.PubackPacket{PacketID: 7}
		got := roundTrip(t, want).(*packets.PubackPacket)
		assert.Equal(t, want, got)
	})

	t.Run("pubrec", func(t *testing.T) {
		want := &packets.PubrecPacket{PacketID: 7}
		got := roundTrip(t, want).(*packets.PubrecPacket)
		assert.Equal(t, want, got)
	})

	t.Run("pubrel", func(t *testing.T) {
		want := &packets.PubrelPacket{PacketID: 7}
		got := roundTrip(t, want).(*packets.PubrelPacket)
		assert.Equal(t, want, got)
	})

	t.Run("pubcomp", func(t *testing.T) {
		want := &packets.PubcompPacket{PacketID: 7}
		got := roundTrip(t, want).(*packets.PubcompPacket)
		assert.Equal(t, want, got)
	})

	t.Run("subscribe", func(t *testing.T) {
		want := &packets.SubscribePacket{
			PacketID: 9,
			Topics: []packets.TopicFilter{
				{Filter: "a/#", QoS: 0},
				{Filter: "b/+/c", QoS: 2},
			},
		}
		got := roundTrip(t, want).(*packets.SubscribePacket)
		assert.Equal(t, want, got)
	})

	t.Run("suback", func(t *testing.T) {
		want := &packets.SubackPacket{
			PacketID: 9,
			Results:  []packets.SubscribeResult{packets.SubackQoS0, packets.SubackFailure, packets.SubackQoS2},
		}
		got := roundTrip(t, want).(*packets.SubackPacket)
		assert.Equal(t, want, got)
	})

	t.Run("unsubscribe", func(t *testing.T) {
		want := &packets.UnsubscribePacket{PacketID: 3, Filters: []string{"a/#", "b/+"}}
		got := roundTrip(t, want).(*packets.UnsubscribePacket)
		assert.Equal(t, want, got)
	})

	t.Run("unsuback", func(t *testing.T) {
		want := &packets.UnsubackPacket{PacketID: 3}
		got := roundTrip(t, want).(*packets.UnsubackPacket)
		assert.Equal(t, want, got)
	})

	t.Run("pingreq", func(t *testing.T) {
		roundTrip(t, &packets.PingreqPacket{})
	})

	t.Run("pingresp", func(t *testing.T) {
		roundTrip(t, &packets.PingrespPacket{})
	})

	t.Run("disconnect", func(t *testing.T) {
		roundTrip(t, &packets.DisconnectPacket{})
	})
}

func TestDecodeReturnsErrUnderflowOnPartialFixedHeader(t *testing.T) {
	_, _, err := packets.Decode(nil)
	assert.ErrorIs(t, err, packets.ErrUnderflow)
}

func TestDecodeReturnsErrUnderflowOnPartialBody(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&packets.PublishPacket{Topic: "a/b", Payload: []byte("hello world")}).WriteTo(&buf)
	require.NoError(t, err)

	full := buf.Bytes()
	for cut := 1; cut < len(full); cut++ {
		_, _, err := packets.Decode(full[:cut])
		assert.ErrorIsf(t, err, packets.ErrUnderflow, "cut at %d", cut)
	}
}

func TestDecodeLeavesTrailingBytesUnconsumed(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&packets.PingreqPacket{}).WriteTo(&buf)
	require.NoError(t, err)
	full := append(buf.Bytes(), 0xAA, 0xBB)

	consumed, pkt, err := packets.Decode(full)
	require.NoError(t, err)
	assert.Equal(t, packets.PINGREQ, pkt.Type())
	assert.Equal(t, buf.Len(), consumed)
}

func TestDecodeRejectsReservedPacketTypes(t *testing.T) {
	_, _, err := packets.Decode([]byte{0x00, 0x00})
	assert.Error(t, err)

	_, _, err = packets.Decode([]byte{0xF0, 0x00})
	assert.ErrorIs(t, err, packets.ErrUnknownPacketType)
}

func TestDecodeRejectsBadFixedHeaderFlags(t *testing.T) {
	// CONNACK (type 2) requires flags 0b0000; 0b0001 is invalid.
	_, _, err := packets.Decode([]byte{0x21, 0x02, 0x00, 0x00})
	assert.ErrorIs(t, err, packets.ErrInvalidFlags)
}

func TestDecodeRejectsSubscribeWithNoFilters(t *testing.T) {
	var buf bytes.Buffer
	_, err := (&packets.SubscribePacket{PacketID: 1}).WriteTo(&buf)
	require.NoError(t, err)

	_, _, err = packets.Decode(buf.Bytes())
	assert.ErrorIs(t, err, packets.ErrMalformedPacket)
}
