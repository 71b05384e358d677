package reactor

import "github.com/cobaltmq/reactor/internal/packets"

// requestKind tags what kind of request a pending_ack entry is waiting
// on, so the matching ack type can be validated against it.
type requestKind uint8

const (
	requestSubscribe requestKind = iota
	requestUnsubscribe
	requestPublishQoS1
	requestPublishQoS2
	requestPubrel
)

// pendingEntry is one outstanding request awaiting its ack.
type pendingEntry struct {
	kind   requestKind
	packet packets.Packet
}

// pendingAcks tracks packet ids awaiting acknowledgment. At most one
// entry exists per id at any time (invariant c in the data model).
type pendingAcks struct {
	byID map[uint16]pendingEntry
}

func newPendingAcks() *pendingAcks {
	return &pendingAcks{byID: make(map[uint16]pendingEntry)}
}

func (p *pendingAcks) add(id uint16, kind requestKind, pkt packets.Packet) {
	p.byID[id] = pendingEntry{kind: kind, packet: pkt}
}

func (p *pendingAcks) has(id uint16) bool {
	_, ok := p.byID[id]
	return ok
}

// take removes and returns the entry for id, reporting whether it
// existed. A missing id is the caller's signal to raise
// reactorerr.ProtocolViolation: an ack arrived for nothing outstanding.
func (p *pendingAcks) take(id uint16) (pendingEntry, bool) {
	e, ok := p.byID[id]
	if ok {
		delete(p.byID, id)
	}
	return e, ok
}

func (p *pendingAcks) len() int {
	return len(p.byID)
}

// clear discards every outstanding entry. The reactor calls it whenever
// the session ends in Stopped or Error, whatever clean_session was.
func (p *pendingAcks) clear() {
	p.byID = make(map[uint16]pendingEntry)
}
