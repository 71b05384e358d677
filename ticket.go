package reactor

// Ticket identifies a Publish call for correlation against the
// OnPuback/OnPubcomp callback that eventually completes it. Unlike the
// teacher's Token, a Ticket carries no channel or blocking Wait: the
// reactor is single-threaded and synchronous, so completion is observed
// through Callbacks on the same goroutine that drives the reactor, not
// through a second one waiting on this value.
type Ticket struct {
	// PacketID is 0 for a QoS 0 publish, which is fire-and-forget and
	// never acknowledged.
	PacketID uint16
	QoS      QoS
}
