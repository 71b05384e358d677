package reactor

import "errors"

// ErrInProgress is returned by Socket.Connect when a nonblocking connect
// has been initiated but not yet completed; this is the expected outcome,
// not a failure.
var ErrInProgress = errors.New("reactor: connect in progress")

// ErrAgain is returned by Socket.Send/Socket.Recv when the operation
// would block on a nonblocking socket. It is not an error condition; the
// caller retries once the poll adapter reports readiness again.
var ErrAgain = errors.New("reactor: operation would block")

// Socket is the reactor's only collaborator with the outside world. The
// reactor never assumes blocking behavior: every method must return
// promptly, reporting ErrInProgress/ErrAgain instead of blocking.
// Implementations typically wrap a nonblocking net.Conn and translate
// syscall.EINPROGRESS/syscall.EAGAIN into the sentinels above.
type Socket interface {
	// Connect initiates a connection to endpoint. A nonblocking socket
	// normally returns ErrInProgress; the reactor confirms success on the
	// first subsequent Write by checking SOError.
	Connect(endpoint string) error

	// Send writes as much of b as the socket will currently accept,
	// returning the number of bytes consumed. ErrAgain with n==0 means
	// the socket is not currently writable.
	Send(b []byte) (int, error)

	// Recv reads into b, returning the number of bytes read. Zero bytes
	// with a nil error means the peer closed the connection. ErrAgain
	// with n==0 means no data is currently available.
	Recv(b []byte) (int, error)

	// SOError returns the pending SO_ERROR value following a connect
	// attempt, or nil if the connection succeeded.
	SOError() error

	// Close releases the underlying transport. Idempotent.
	Close() error
}
