package chat

import "context"

// TransportHooks are the callbacks a Transport drives while connected. The
// live backend maps them one-to-one onto session events with no added
// buffering.
type TransportHooks struct {
	OnRegistered func()
	OnMessage    func(nick, target, body string)
	OnJoin       func(nick, channel string)
	OnPart       func(nick, channel string)
	OnUserList   func(channel string, users []string)
	OnTopic      func(nick, channel, topic string)
	OnError      func(err error)
	OnDisconnect func(err error)
}

// Transport is the external messaging-protocol boundary. Implementations own
// wire framing; the session layer only sees the primitives below.
type Transport interface {
	// Connect dials and begins registration. It returns once the dial
	// succeeds; OnRegistered fires when the network accepts the session.
	Connect(ctx context.Context, cfg Config, hooks TransportHooks) error
	Join(channel string)
	Part(channel string)
	Say(channel, text string)
	Quit(reason string)
}
