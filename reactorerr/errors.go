// Package reactorerr defines the closed error taxonomy a Reactor can
// settle into. Every terminal error is a *Error wrapping one of the
// sentinel Reasons below; callers recover detail with errors.Is/errors.As
// rather than switching on an enum.
package reactorerr

import (
	"errors"
	"fmt"
)

// Reasons a Reactor can fail for. Compare against these with errors.Is.
var (
	// ConnectFailed means the OS reported a connect failure before a
	// Connack was ever expected.
	ConnectFailed = errors.New("connect failed")

	// SocketError means the transport failed after the handshake began.
	SocketError = errors.New("socket error")

	// PeerDisconnect means recv returned 0 bytes.
	PeerDisconnect = errors.New("peer closed the connection")

	// MalformedPacket means the codec rejected an inbound frame.
	MalformedPacket = errors.New("malformed packet")

	// ProtocolViolation means a structurally valid but semantically
	// invalid packet arrived: an ack for an unknown id, a Connack outside
	// Connack state, a clean_session/session_present mismatch.
	ProtocolViolation = errors.New("protocol violation")

	// ConnackRefused means the broker rejected the Connect. Use
	// errors.As to recover the *ConnackRefusedError for the return code.
	ConnackRefused = errors.New("connect refused by broker")

	// KeepaliveTimeout means no Pingresp arrived within the response
	// window following a Pingreq.
	KeepaliveTimeout = errors.New("keepalive timeout")

	// TooManyInFlight means the 16-bit packet-id pool is exhausted.
	TooManyInFlight = errors.New("too many packets in flight")

	// Stopped names the normal, non-error terminal state. It is never
	// wrapped in an *Error, and no Reactor method returns it: a stopped
	// reactor reports State() == Stopped and Err() == nil.
	Stopped = errors.New("stopped")
)

// Error is the value a Reactor's Err() returns once it has transitioned
// to the Error state. Reason is always one of the package-level sentinels
// above; Detail carries the underlying cause where one exists (a syscall
// error, a codec error).
type Error struct {
	Reason error
	Detail error
}

func (e *Error) Error() string {
	if e.Detail != nil {
		return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
	}
	return e.Reason.Error()
}

func (e *Error) Unwrap() error {
	return e.Detail
}

// Is lets errors.Is(err, reactorerr.KeepaliveTimeout) succeed against an
// *Error without needing to unwrap into Detail first.
func (e *Error) Is(target error) bool {
	return e.Reason == target
}

// ConnackRefusedError carries the broker's CONNACK return code. It is
// always wrapped as the Detail of an *Error whose Reason is
// ConnackRefused; recover it with errors.As.
type ConnackRefusedError struct {
	Code uint8
}

func (e *ConnackRefusedError) Error() string {
	return fmt.Sprintf("connack return code %d", e.Code)
}
