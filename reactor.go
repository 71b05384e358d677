// Package reactor implements a non-blocking MQTT 3.1.1 client session:
// a protocol state machine driven entirely by an external caller through
// read/write/want_read/want_write and a scheduler tick, with no internal
// goroutines or locks.
package reactor

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/cobaltmq/reactor/internal/packets"
	"github.com/cobaltmq/reactor/internal/scheduler"
	"github.com/cobaltmq/reactor/reactorerr"
)

// State is one of the reactor's session states.
type State uint8

const (
	Init State = iota
	Connecting
	Connack
	Connected
	Stopping
	Stopped
	Error
)

func (s State) String() string {
	switch s {
	case Init:
		return "init"
	case Connecting:
		return "connecting"
	case Connack:
		return "connack"
	case Connected:
		return "connected"
	case Stopping:
		return "stopping"
	case Stopped:
		return "stopped"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// recvChunk is the scratch size read() copies socket bytes into before
// appending to the inbound buffer.
const recvChunk = 4096

// Reactor is a single MQTT session. It owns the socket, the inbound and
// outbound byte buffers, the in-flight tables, and the keepalive timers.
// Every exported method must be called from the single goroutine driving
// the reactor; nothing here is safe for concurrent use.
type Reactor struct {
	opts   *Options
	socket Socket
	sched  *scheduler.Scheduler

	state State
	err   error

	outBuf []byte
	inBuf  []byte

	pendingAcks *pendingAcks
	idGen       *packetIDGen

	keepaliveEntry *scheduler.Entry
	pingTimeout    *scheduler.Entry

	// inboundQoS2 tracks packet ids of inbound QoS 2 Publish packets for
	// which a Pubrec has been sent and a Pubrel is still outstanding.
	inboundQoS2 map[uint16]bool
}

// New validates opts and constructs a Reactor in the Init state. The
// returned Reactor does not touch the network until start() is called.
func New(socket Socket, sched *scheduler.Scheduler, opts ...Option) (*Reactor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	pending := newPendingAcks()
	r := &Reactor{
		opts:        o,
		socket:      socket,
		sched:       sched,
		state:       Init,
		pendingAcks: pending,
		idGen:       &packetIDGen{pending: pending},
		inboundQoS2: make(map[uint16]bool),
	}
	return r, nil
}

// State returns the reactor's current state.
func (r *Reactor) State() State { return r.state }

// Err returns the terminal error once State() == Error, nil otherwise.
func (r *Reactor) Err() error { return r.err }

// WantRead reports whether the poll adapter should watch the socket for
// readability. In Connack, reads only become interesting once the
// initial Connect has fully drained to the socket (§4.3); Connected and
// Stopping always want to read.
func (r *Reactor) WantRead() bool {
	switch r.state {
	case Connack:
		return len(r.outBuf) == 0
	case Connected, Stopping:
		return true
	default:
		return false
	}
}

// WantWrite reports whether the poll adapter should watch the socket for
// writability.
func (r *Reactor) WantWrite() bool {
	switch r.state {
	case Connecting:
		return true
	case Connack, Connected, Stopping:
		return len(r.outBuf) > 0
	default:
		return false
	}
}

// Start moves the reactor from Init to Connecting, initiating a
// nonblocking connect to Options.Endpoint.
func (r *Reactor) Start() {
	if r.state != Init {
		return
	}

	err := r.socket.Connect(r.opts.Endpoint)
	if err == nil || errors.Is(err, ErrInProgress) {
		r.state = Connecting
		r.log().Debug("connecting", "endpoint", r.opts.Endpoint)
		return
	}
	r.failConnect(&reactorerr.Error{Reason: reactorerr.ConnectFailed, Detail: err})
}

// Stop requests a graceful shutdown: enqueues a Disconnect and closes the
// socket once it has fully drained.
func (r *Reactor) Stop() {
	switch r.state {
	case Connack, Connected:
		r.enqueue(&packets.DisconnectPacket{})
		r.state = Stopping
	case Init, Connecting:
		r.closeClean()
	}
}

// Terminate closes the socket immediately and discards anything queued,
// bypassing the Disconnect handshake. Valid from any non-terminal state.
func (r *Reactor) Terminate() {
	switch r.state {
	case Stopped, Error:
		return
	}
	r.closeClean()
}

func (r *Reactor) closeClean() {
	r.socket.Close()
	r.cancelTimers()
	r.pendingAcks.clear()
	r.outBuf = nil
	r.inBuf = nil
	r.state = Stopped
	r.opts.Callbacks.OnDisconnect(r, nil)
}

// Subscribe enqueues a Subscribe for the given topic filters and
// registers the resulting packet id in pending_ack.
func (r *Reactor) Subscribe(topics []packets.TopicFilter) (*Ticket, error) {
	if r.state != Connected {
		return nil, fmt.Errorf("reactor: subscribe called in state %s", r.state)
	}
	for _, t := range topics {
		if err := validateSubscribeFilter(t.Filter, r.opts); err != nil {
			return nil, err
		}
	}
	id, err := r.idGen.next()
	if err != nil {
		r.fail(err.(*reactorerr.Error))
		return nil, err
	}
	pkt := &packets.SubscribePacket{PacketID: id, Topics: topics}
	r.pendingAcks.add(id, requestSubscribe, pkt)
	r.enqueue(pkt)
	return &Ticket{PacketID: id}, nil
}

// Unsubscribe enqueues an Unsubscribe for the given topic filters.
func (r *Reactor) Unsubscribe(filters []string) (*Ticket, error) {
	if r.state != Connected {
		return nil, fmt.Errorf("reactor: unsubscribe called in state %s", r.state)
	}
	for _, f := range filters {
		if err := validateSubscribeFilter(f, r.opts); err != nil {
			return nil, err
		}
	}
	id, err := r.idGen.next()
	if err != nil {
		r.fail(err.(*reactorerr.Error))
		return nil, err
	}
	pkt := &packets.UnsubscribePacket{PacketID: id, Filters: filters}
	r.pendingAcks.add(id, requestUnsubscribe, pkt)
	r.enqueue(pkt)
	return &Ticket{PacketID: id}, nil
}

// Publish enqueues a Publish. QoS 0 is fire-and-forget: the returned
// Ticket carries PacketID 0 and is never acknowledged. QoS 1/2 allocate a
// packet id and register it in pending_ack.
func (r *Reactor) Publish(topic string, payload []byte, qos QoS, retain bool) (*Ticket, error) {
	if r.state != Connected {
		return nil, fmt.Errorf("reactor: publish called in state %s", r.state)
	}
	if err := validatePublishTopic(topic, r.opts); err != nil {
		return nil, err
	}
	if err := validatePayloadSize(payload, r.opts); err != nil {
		return nil, err
	}

	pkt := &packets.PublishPacket{
		Topic:   topic,
		Payload: payload,
		QoS:     uint8(qos),
		Retain:  retain,
	}

	if qos == AtMostOnce {
		r.enqueue(pkt)
		return &Ticket{QoS: qos}, nil
	}

	id, err := r.idGen.next()
	if err != nil {
		r.fail(err.(*reactorerr.Error))
		return nil, err
	}
	pkt.PacketID = id

	kind := requestPublishQoS1
	if qos == ExactlyOnce {
		kind = requestPublishQoS2
	}
	r.pendingAcks.add(id, kind, pkt)
	r.enqueue(pkt)
	return &Ticket{PacketID: id, QoS: qos}, nil
}

// enqueue encodes pkt and appends it to the outbound buffer. Encoding is
// a pure, synchronous operation, so pending_send's packet-level FIFO is
// realized directly as byte order in outBuf rather than as a separate
// packet queue.
func (r *Reactor) enqueue(pkt packets.Packet) {
	var buf bytes.Buffer
	if _, err := pkt.WriteTo(&buf); err != nil {
		panic(fmt.Sprintf("reactor: encoding %s failed: %v", pkt.Type(), err))
	}
	r.outBuf = append(r.outBuf, buf.Bytes()...)
}

// Write drains as much of the outbound buffer as the socket currently
// accepts. Short writes keep the remainder for the next call.
func (r *Reactor) Write() {
	switch r.state {
	case Connecting:
		r.completeConnect()
		return
	case Connack, Connected, Stopping:
	default:
		return
	}

	if !r.drain(r.fail) {
		return
	}

	if r.state == Stopping && len(r.outBuf) == 0 {
		r.closeClean()
	}
}

// drain sends as much of outBuf as the socket accepts, reporting any
// terminal failure through onFail (which differs before vs. after the
// Connect has fully drained). It returns false if a failure occurred.
func (r *Reactor) drain(onFail func(*reactorerr.Error)) bool {
	for len(r.outBuf) > 0 {
		n, err := r.socket.Send(r.outBuf)
		if err != nil {
			if errors.Is(err, ErrAgain) {
				return true
			}
			onFail(&reactorerr.Error{Reason: reactorerr.SocketError, Detail: err})
			return false
		}
		if n == 0 {
			onFail(&reactorerr.Error{Reason: reactorerr.PeerDisconnect})
			return false
		}
		r.outBuf = r.outBuf[n:]
		r.armKeepalive()
		if len(r.outBuf) > 0 {
			// Short write: the remainder waits for the next Write.
			return true
		}
	}
	return true
}

// completeConnect checks SO_ERROR after a nonblocking connect, and on
// success sends the initial Connect packet. A failure draining the
// Connect itself is still a connect failure, since want_read (and thus
// the Connack phase proper) only begins once it fully drains.
func (r *Reactor) completeConnect() {
	if err := r.socket.SOError(); err != nil {
		r.failConnect(&reactorerr.Error{Reason: reactorerr.SocketError, Detail: err})
		return
	}

	r.enqueue(r.buildConnect())
	r.state = Connack
	r.drain(r.failConnect)
}

func (r *Reactor) buildConnect() *packets.ConnectPacket {
	pkt := &packets.ConnectPacket{
		ClientID:     r.opts.ClientID,
		CleanSession: r.opts.CleanSession,
		KeepAlive:    r.opts.KeepalivePeriod,
		UsernameFlag: r.opts.UsernameFlag,
		Username:     r.opts.Username,
		PasswordFlag: r.opts.PasswordFlag,
		Password:     r.opts.Password,
	}
	if w := r.opts.Will; w != nil {
		pkt.WillFlag = true
		pkt.WillTopic = w.Topic
		pkt.WillMessage = w.Message
		pkt.WillQoS = uint8(w.QoS)
		pkt.WillRetain = w.Retain
	}
	return pkt
}

// Read drains available bytes from the socket into the inbound buffer
// and decodes as many complete packets as are available.
func (r *Reactor) Read() {
	switch r.state {
	case Connack, Connected, Stopping:
	default:
		return
	}

	scratch := make([]byte, recvChunk)
	for {
		n, err := r.socket.Recv(scratch)
		if err != nil {
			if errors.Is(err, ErrAgain) {
				break
			}
			r.fail(&reactorerr.Error{Reason: reactorerr.SocketError, Detail: err})
			return
		}
		if n == 0 {
			r.fail(&reactorerr.Error{Reason: reactorerr.PeerDisconnect})
			return
		}
		r.inBuf = append(r.inBuf, scratch[:n]...)
		if max := limitOrDefault(r.opts.MaxIncomingPacket, defaultMaxIncomingPacket); len(r.inBuf) > max {
			r.fail(&reactorerr.Error{Reason: reactorerr.MalformedPacket,
				Detail: fmt.Errorf("inbound buffer exceeds maximum incoming packet size %d", max)})
			return
		}
		if n < len(scratch) {
			break
		}
	}

	for {
		consumed, pkt, err := packets.Decode(r.inBuf)
		if err != nil {
			if errors.Is(err, packets.ErrUnderflow) {
				return
			}
			r.fail(&reactorerr.Error{Reason: reactorerr.MalformedPacket, Detail: err})
			return
		}
		r.inBuf = r.inBuf[consumed:]
		r.dispatch(pkt)
		if r.state == Error || r.state == Stopped {
			return
		}
	}
}

// dispatch routes a decoded packet to its state-specific handler. In
// Connack only a Connack is accepted; in Connected and Stopping the acks,
// Publish, Pubrel and Pingresp are handled and any other type is a
// protocol violation.
func (r *Reactor) dispatch(pkt packets.Packet) {
	if r.state == Connack {
		r.dispatchConnack(pkt)
		return
	}
	r.dispatchConnected(pkt)
}

func (r *Reactor) dispatchConnack(pkt packets.Packet) {
	p, ok := pkt.(*packets.ConnackPacket)
	if !ok {
		r.fail(&reactorerr.Error{Reason: reactorerr.ProtocolViolation,
			Detail: fmt.Errorf("expected connack, got %s", pkt.Type())})
		return
	}
	if p.ReturnCode != packets.ConnAccepted {
		r.fail(&reactorerr.Error{
			Reason: reactorerr.ConnackRefused,
			Detail: &reactorerr.ConnackRefusedError{Code: p.ReturnCode},
		})
		return
	}
	if r.opts.CleanSession && p.SessionPresent {
		r.fail(&reactorerr.Error{
			Reason: reactorerr.ProtocolViolation,
			Detail: fmt.Errorf("session present with clean_session=true"),
		})
		return
	}

	r.state = Connected
	r.opts.Callbacks.OnConnack(r, p)

	if !r.opts.CleanSession {
		for _, e := range r.pendingAcks.byID {
			r.enqueue(e.packet)
		}
	}
}

func (r *Reactor) dispatchConnected(pkt packets.Packet) {
	switch p := pkt.(type) {
	case *packets.SubackPacket:
		e, ok := r.pendingAcks.take(p.PacketID)
		if !ok || e.kind != requestSubscribe {
			r.protocolViolation("unmatched suback for id %d", p.PacketID)
			return
		}
		r.opts.Callbacks.OnSuback(r, p)

	case *packets.UnsubackPacket:
		e, ok := r.pendingAcks.take(p.PacketID)
		if !ok || e.kind != requestUnsubscribe {
			r.protocolViolation("unmatched unsuback for id %d", p.PacketID)
			return
		}
		r.opts.Callbacks.OnUnsuback(r, p)

	case *packets.PubackPacket:
		e, ok := r.pendingAcks.take(p.PacketID)
		if !ok || e.kind != requestPublishQoS1 {
			r.protocolViolation("unmatched puback for id %d", p.PacketID)
			return
		}
		r.opts.Callbacks.OnPuback(r, p)

	case *packets.PubrecPacket:
		e, ok := r.pendingAcks.take(p.PacketID)
		if !ok || e.kind != requestPublishQoS2 {
			r.protocolViolation("unmatched pubrec for id %d", p.PacketID)
			return
		}
		r.pendingAcks.add(p.PacketID, requestPubrel, e.packet)
		r.enqueue(&packets.PubrelPacket{PacketID: p.PacketID})

	case *packets.PubcompPacket:
		e, ok := r.pendingAcks.take(p.PacketID)
		if !ok || e.kind != requestPubrel {
			r.protocolViolation("unmatched pubcomp for id %d", p.PacketID)
			return
		}
		r.opts.Callbacks.OnPubcomp(r, p)

	case *packets.PublishPacket:
		r.handleInboundPublish(p)

	case *packets.PubrelPacket:
		if !r.inboundQoS2[p.PacketID] {
			r.protocolViolation("unmatched pubrel for id %d", p.PacketID)
			return
		}
		delete(r.inboundQoS2, p.PacketID)
		r.enqueue(&packets.PubcompPacket{PacketID: p.PacketID})

	case *packets.PingrespPacket:
		if r.pingTimeout != nil {
			r.pingTimeout.Cancel()
			r.pingTimeout = nil
		}

	default:
		r.protocolViolation("unexpected %s while connected", pkt.Type())
	}
}

func (r *Reactor) handleInboundPublish(p *packets.PublishPacket) {
	switch p.QoS {
	case uint8(AtMostOnce):
		r.opts.Callbacks.OnPublish(r, p)
	case uint8(AtLeastOnce):
		r.opts.Callbacks.OnPublish(r, p)
		r.enqueue(&packets.PubackPacket{PacketID: p.PacketID})
	case uint8(ExactlyOnce):
		if r.inboundQoS2[p.PacketID] {
			// Broker retransmit: the original Pubrec was lost. Re-ack
			// without re-invoking OnPublish, or QoS 2 would deliver twice.
			r.enqueue(&packets.PubrecPacket{PacketID: p.PacketID})
			return
		}
		r.opts.Callbacks.OnPublish(r, p)
		r.inboundQoS2[p.PacketID] = true
		r.enqueue(&packets.PubrecPacket{PacketID: p.PacketID})
	}
}

func (r *Reactor) protocolViolation(format string, args ...any) {
	r.fail(&reactorerr.Error{Reason: reactorerr.ProtocolViolation, Detail: fmt.Errorf(format, args...)})
}

// armKeepalive resets the keepalive deadline after a successful outbound
// write, per the algorithm in §4.3: one Pingreq per silent period,
// followed by a half-period window for the matching Pingresp.
func (r *Reactor) armKeepalive() {
	if r.opts.KeepalivePeriod == 0 {
		return
	}
	if r.keepaliveEntry != nil {
		r.keepaliveEntry.Cancel()
	}
	period := int64(r.opts.KeepalivePeriod)
	r.keepaliveEntry = r.sched.Add(period, r.onKeepaliveDue)
}

func (r *Reactor) onKeepaliveDue() {
	if r.state != Connected && r.state != Connack {
		return
	}
	r.enqueue(&packets.PingreqPacket{})
	half := int64(r.opts.KeepalivePeriod) / 2
	r.pingTimeout = r.sched.Add(half, r.onPingTimeout)
}

func (r *Reactor) onPingTimeout() {
	r.fail(&reactorerr.Error{Reason: reactorerr.KeepaliveTimeout})
}

func (r *Reactor) cancelTimers() {
	if r.keepaliveEntry != nil {
		r.keepaliveEntry.Cancel()
		r.keepaliveEntry = nil
	}
	if r.pingTimeout != nil {
		r.pingTimeout.Cancel()
		r.pingTimeout = nil
	}
}

// fail transitions the reactor to Error from Connack/Connected/Stopping,
// invoking OnDisconnect since the session had reached the broker.
func (r *Reactor) fail(e *reactorerr.Error) {
	r.socket.Close()
	r.cancelTimers()
	r.pendingAcks.clear()
	r.state = Error
	r.err = e
	r.log().Error("reactor error", "reason", e.Reason, "detail", e.Detail)
	r.opts.Callbacks.OnDisconnect(r, e)
}

// failConnect transitions the reactor to Error before it ever reached
// Connected, invoking OnConnectFail instead of OnDisconnect.
func (r *Reactor) failConnect(e *reactorerr.Error) {
	r.socket.Close()
	r.cancelTimers()
	r.state = Error
	r.err = e
	r.log().Error("connect failed", "reason", e.Reason, "detail", e.Detail)
	r.opts.Callbacks.OnConnectFail(r, e)
}

func (r *Reactor) log() interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
} {
	return r.opts.Logger
}
