package reactor

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"unicode/utf8"
)

// AddressFamily constrains which IP family the transport adapter should
// use when resolving Endpoint. The reactor itself never dials; this is
// validated and stored for the adapter's benefit.
type AddressFamily uint8

const (
	AddressFamilyUnspecified AddressFamily = iota
	AddressFamilyIPv4
	AddressFamilyIPv6
)

// Options holds the configuration consumed once at New and then treated
// as an immutable snapshot for the lifetime of the Reactor.
type Options struct {
	Endpoint      string
	AddressFamily AddressFamily

	ClientID        string
	CleanSession    bool
	KeepalivePeriod uint16 // seconds; 0 disables keepalive

	Username     string
	UsernameFlag bool
	Password     []byte
	PasswordFlag bool

	Will *Will

	// MaxTopicLength, MaxPayloadSize, and MaxIncomingPacket guard against
	// oversized topics, outgoing payloads, and inbound frames. Zero means
	// the MQTT 3.1.1 wire maximum for each.
	MaxTopicLength    int
	MaxPayloadSize    int
	MaxIncomingPacket int

	Callbacks Callbacks
	Logger    *slog.Logger
}

// Option configures a Reactor at construction time.
type Option func(*Options)

// WithEndpoint sets the "host:port" the transport adapter dials.
// Validated at New time against the port range in §6 of the wire spec.
func WithEndpoint(endpoint string) Option {
	return func(o *Options) { o.Endpoint = endpoint }
}

// WithAddressFamily restricts which IP family the transport adapter
// should prefer.
func WithAddressFamily(f AddressFamily) Option {
	return func(o *Options) { o.AddressFamily = f }
}

// WithClientID sets the MQTT client identifier sent in Connect.
func WithClientID(id string) Option {
	return func(o *Options) { o.ClientID = id }
}

// WithCleanSession sets the Connect clean-session flag. Default true.
func WithCleanSession(clean bool) Option {
	return func(o *Options) { o.CleanSession = clean }
}

// WithKeepalivePeriod sets the keepalive interval in seconds. 0 disables
// both the Pingreq timer and the Pingresp timeout.
func WithKeepalivePeriod(seconds uint16) Option {
	return func(o *Options) { o.KeepalivePeriod = seconds }
}

// WithCredentials sets the username/password sent in Connect.
func WithCredentials(username string, password []byte) Option {
	return func(o *Options) {
		o.Username = username
		o.UsernameFlag = true
		o.Password = password
		o.PasswordFlag = true
	}
}

// WithWill sets the Last Will and Testament sent in Connect.
func WithWill(w Will) Option {
	return func(o *Options) { o.Will = &w }
}

// WithCallbacks sets the capability set the reactor invokes as the
// session progresses. Defaults to NopCallbacks.
func WithCallbacks(cb Callbacks) Option {
	return func(o *Options) { o.Callbacks = cb }
}

// WithLogger sets the structured logger the reactor writes state
// transitions and errors to. Defaults to a handler discarding everything.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMaxTopicLength caps the length of topics and topic filters the
// reactor will send, below the MQTT wire maximum of 65535 bytes.
func WithMaxTopicLength(max int) Option {
	return func(o *Options) { o.MaxTopicLength = max }
}

// WithMaxPayloadSize caps the size of an outgoing Publish payload, below
// the MQTT wire maximum.
func WithMaxPayloadSize(max int) Option {
	return func(o *Options) { o.MaxPayloadSize = max }
}

// WithMaxIncomingPacket caps how many undecoded inbound bytes the reactor
// will buffer before failing the connection, guarding against memory
// exhaustion from a broker that announces an oversized packet. The cap
// applies to the whole inbound buffer, which can hold several packets
// received in one Read.
func WithMaxIncomingPacket(max int) Option {
	return func(o *Options) { o.MaxIncomingPacket = max }
}

func defaultOptions() *Options {
	return &Options{
		CleanSession:    true,
		KeepalivePeriod: 60,
		Callbacks:       NopCallbacks{},
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// validate checks the invariants New must enforce before constructing a
// Reactor: client_id UTF-8 length, endpoint host:port well-formedness,
// keepalive fits its wire width (the uint16 field already enforces this
// at compile time), and well-formed will/credentials.
func (o *Options) validate() error {
	if err := validateEndpoint(o.Endpoint); err != nil {
		return err
	}
	if !utf8.ValidString(o.ClientID) {
		return fmt.Errorf("reactor: client id is not valid utf-8")
	}
	if len(o.ClientID) > 65535 {
		return fmt.Errorf("reactor: client id exceeds 65535 bytes")
	}
	if o.AddressFamily > AddressFamilyIPv6 {
		return fmt.Errorf("reactor: address family %d is invalid", o.AddressFamily)
	}
	if o.UsernameFlag && !utf8.ValidString(o.Username) {
		return fmt.Errorf("reactor: username is not valid utf-8")
	}
	if o.Will != nil {
		if !utf8.ValidString(o.Will.Topic) {
			return fmt.Errorf("reactor: will topic is not valid utf-8")
		}
		if o.Will.QoS > ExactlyOnce {
			return fmt.Errorf("reactor: will qos %d is invalid", o.Will.QoS)
		}
	}
	return nil
}

// validateEndpoint parses "host:port" and range-checks the port against
// [1, 65535] per §6 of the wire spec. The reactor never dials endpoint
// itself; this only rejects values no transport adapter could ever use.
func validateEndpoint(endpoint string) error {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return fmt.Errorf("reactor: endpoint %q is not a valid host:port: %w", endpoint, err)
	}
	if host == "" {
		return fmt.Errorf("reactor: endpoint %q is missing a host", endpoint)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return fmt.Errorf("reactor: endpoint %q has a non-numeric port: %w", endpoint, err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("reactor: endpoint %q port %d is outside [1, 65535]", endpoint, port)
	}
	return nil
}
