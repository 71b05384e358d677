// Package mocksocket provides a scriptable reactor.Socket test double,
// grounded on the queued connect/send/recv results used to drive a
// reactor's state machine from unit tests without a real network.
package mocksocket

// result queues a single scripted outcome for Send or Recv: either a
// byte count (n, nil) or an error (0, err).
type result struct {
	n   int
	b   []byte
	err error
}

// Socket is a scriptable reactor.Socket. Queue outcomes with QueueConnect,
// QueueSend, and QueueRecv before exercising the reactor; each queue is
// drained FIFO, one entry per call. SentBytes accumulates everything
// passed to Send for assertions against the wire-exact expected buffer.
type Socket struct {
	ConnectEndpoint string
	connectQueue    []error
	sendQueue       []result
	recvQueue       []result

	SentBytes []byte
	Closed    bool
	soError   error
}

// New returns a Socket with empty queues; Connect, Send, and Recv panic
// if called before the corresponding Queue method primes a result, since
// an unscripted call is a test bug, not a runtime condition.
func New() *Socket {
	return &Socket{}
}

// QueueConnect schedules the next Connect call to return err.
func (s *Socket) QueueConnect(err error) {
	s.connectQueue = append(s.connectQueue, err)
}

// QueueSend schedules the next Send call to report n bytes written, or
// err if non-nil.
func (s *Socket) QueueSend(n int, err error) {
	s.sendQueue = append(s.sendQueue, result{n: n, err: err})
}

// QueueRecv schedules the next Recv call to copy b into the caller's
// buffer, or report err if non-nil. b == nil, err == nil means a
// peer-closed connection (0 bytes, no error).
func (s *Socket) QueueRecv(b []byte, err error) {
	s.recvQueue = append(s.recvQueue, result{b: b, err: err})
}

// SetSOError arms the value SOError returns until changed again.
func (s *Socket) SetSOError(err error) {
	s.soError = err
}

func (s *Socket) Connect(endpoint string) error {
	s.ConnectEndpoint = endpoint
	if len(s.connectQueue) == 0 {
		panic("mocksocket: Connect called with no queued result")
	}
	err := s.connectQueue[0]
	s.connectQueue = s.connectQueue[1:]
	return err
}

func (s *Socket) Send(b []byte) (int, error) {
	if len(s.sendQueue) == 0 {
		panic("mocksocket: Send called with no queued result")
	}
	r := s.sendQueue[0]
	s.sendQueue = s.sendQueue[1:]
	if r.err != nil {
		return 0, r.err
	}
	n := r.n
	if n > len(b) {
		n = len(b)
	}
	s.SentBytes = append(s.SentBytes, b[:n]...)
	return n, nil
}

func (s *Socket) Recv(b []byte) (int, error) {
	if len(s.recvQueue) == 0 {
		panic("mocksocket: Recv called with no queued result")
	}
	r := s.recvQueue[0]
	s.recvQueue = s.recvQueue[1:]
	if r.err != nil {
		return 0, r.err
	}
	n := copy(b, r.b)
	return n, nil
}

func (s *Socket) SOError() error {
	return s.soError
}

func (s *Socket) Close() error {
	s.Closed = true
	return nil
}
