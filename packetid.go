package reactor

import "github.com/cobaltmq/reactor/reactorerr"

// packetIDGen allocates 16-bit packet identifiers that skip whatever is
// currently outstanding in pending_ack. 0 is reserved for "no id".
type packetIDGen struct {
	last    uint16
	pending *pendingAcks
}

// next returns the first id in [1, 65535] not currently in pending_ack,
// searching upward from one past the last issued id and wrapping from
// 65535 back to 1.
func (g *packetIDGen) next() (uint16, error) {
	for i := 0; i < 65535; i++ {
		candidate := g.last + 1
		if candidate == 0 {
			candidate = 1
		}
		g.last = candidate
		if !g.pending.has(candidate) {
			return candidate, nil
		}
	}
	return 0, &reactorerr.Error{Reason: reactorerr.TooManyInFlight}
}
