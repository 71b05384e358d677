package reactor

import "github.com/cobaltmq/reactor/internal/packets"

// Callbacks is the capability set a Reactor invokes as the session
// progresses. Embed NopCallbacks to override only the methods a caller
// cares about, rather than implementing every method.
type Callbacks interface {
	// OnConnack fires when a Connack is accepted (ReturnCode == 0). A
	// refused Connack, or one that violates the clean_session/
	// session_present contract, instead goes through OnDisconnect: the
	// Connect had already fully drained to the broker by the time either
	// is detected.
	OnConnack(r *Reactor, p *packets.ConnackPacket)

	// OnSuback fires when a Suback matches an outstanding Subscribe.
	OnSuback(r *Reactor, p *packets.SubackPacket)

	// OnUnsuback fires when an Unsuback matches an outstanding
	// Unsubscribe.
	OnUnsuback(r *Reactor, p *packets.UnsubackPacket)

	// OnPuback fires when a Puback matches an outstanding QoS 1 Publish.
	OnPuback(r *Reactor, p *packets.PubackPacket)

	// OnPubcomp fires when a Pubcomp completes an outstanding QoS 2
	// Publish handshake.
	OnPubcomp(r *Reactor, p *packets.PubcompPacket)

	// OnPublish fires for every inbound Publish, at any QoS, except a
	// retransmitted QoS 2 Publish whose id is still awaiting its Pubrel.
	// The reactor enqueues the corresponding Puback/Pubrec right after
	// this callback returns.
	OnPublish(r *Reactor, p *packets.PublishPacket)

	// OnDisconnect fires when the reactor enters Stopped, from any
	// non-terminal state via Stop or Terminate (err is nil), or enters
	// Error from Connack, Connected or Stopping (err is the cause).
	OnDisconnect(r *Reactor, err error)

	// OnConnectFail fires when the reactor fails before the initial
	// Connect packet has fully drained to the socket: a failed dial, or
	// a socket error while sending Connect itself.
	OnConnectFail(r *Reactor, err error)
}

// NopCallbacks implements Callbacks with no-op methods. Embed it in a
// caller-defined type to pick up the methods not overridden.
type NopCallbacks struct{}

func (NopCallbacks) OnConnack(*Reactor, *packets.ConnackPacket)   {}
func (NopCallbacks) OnSuback(*Reactor, *packets.SubackPacket)     {}
func (NopCallbacks) OnUnsuback(*Reactor, *packets.UnsubackPacket) {}
func (NopCallbacks) OnPuback(*Reactor, *packets.PubackPacket)     {}
func (NopCallbacks) OnPubcomp(*Reactor, *packets.PubcompPacket)   {}
func (NopCallbacks) OnPublish(*Reactor, *packets.PublishPacket)   {}
func (NopCallbacks) OnDisconnect(*Reactor, error)                 {}
func (NopCallbacks) OnConnectFail(*Reactor, error)                {}
