// Package reactor implements a non-blocking MQTT 3.1.1 client protocol
// engine: a packet codec, a deadline scheduler, and a single-threaded
// session state machine driving one logical connection over an
// externally supplied, non-blocking socket.
//
// The reactor performs no I/O on its own. A caller (a poll/select
// adapter, out of scope for this package) owns the event loop: it polls
// WantRead/WantWrite to decide what to watch the socket for, calls
// Read/Write when the socket is ready, and calls the Scheduler's Poll
// with elapsed wall-clock time so keepalive and other deadlines fire.
//
// # Quick start
//
//	sock := dialNonblocking("broker.example.com:1883")
//	sched := scheduler.New()
//	r, err := reactor.New(sock, sched,
//		reactor.WithEndpoint("broker.example.com:1883"),
//		reactor.WithClientID("sensor-01"),
//		reactor.WithKeepalivePeriod(60),
//		reactor.WithCallbacks(myCallbacks{}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	r.Start()
//
//	// in the poll loop:
//	if r.WantWrite() { r.Write() }
//	if r.WantRead() { r.Read() }
//	sched.Poll(elapsedSeconds)
//
// # Scope
//
// This package implements MQTT 3.1.1 only: CONNECT through DISCONNECT,
// QoS 0/1/2, and the keepalive Pingreq/Pingresp cycle. It does not dial
// sockets, does not retry a failed connection, and does not persist
// session state across process restarts — those are the driving
// application's concerns.
package reactor
