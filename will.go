package reactor

// Will is the Last Will and Testament the broker publishes on the
// client's behalf if the connection drops uncleanly.
type Will struct {
	Topic   string
	Message []byte
	QoS     QoS
	Retain  bool
}
