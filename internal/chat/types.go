// Package chat implements the session layer: connection lifecycle, channel
// membership, per-channel message logs and rosters, fed by an event stream.
// Two backends satisfy the same Session contract: one driven by a live
// network transport, one self-simulating for offline use.
package chat

import (
	"context"
	"errors"
	"time"
)

// ConnState is the session connection state.
type ConnState int

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "disconnected"
	}
}

// ChannelState is the per-channel membership state.
type ChannelState int

const (
	NotJoined ChannelState = iota
	Joining
	Joined
)

// Origin tags where a message came from.
type Origin string

const (
	OriginReceived Origin = "received"
	OriginOwn      Origin = "own"
	OriginSystem   Origin = "system"
)

// Message is one chat line. Messages are immutable once appended; log order
// is arrival order, never wall-clock order.
type Message struct {
	ID      string
	From    string
	Channel string
	Body    string
	Time    time.Time
	Origin  Origin
}

// EventKind discriminates session events.
type EventKind string

const (
	EventConnect  EventKind = "connect"
	EventMessage  EventKind = "message"
	EventJoin     EventKind = "join"
	EventPart     EventKind = "part"
	EventUserList EventKind = "userList"
	EventTopic    EventKind = "topic"
	EventError    EventKind = "error"
)

// Event is one session notification. Fields are populated per kind: Message
// for message events, Nick/Channel for join/part, Users for userList, Topic
// for topic, Err for error.
type Event struct {
	Kind    EventKind
	Nick    string
	Channel string
	Users   []string
	Topic   string
	Message *Message
	Err     error
}

// Handler consumes session events. Handlers registered for the same kind are
// invoked in registration order.
type Handler func(Event)

// Config describes one connection.
type Config struct {
	Server   string
	Port     int
	Nick     string
	Username string
	RealName string
	UseTLS   bool
}

// Precondition errors, raised synchronously to the caller and fatal to that
// one call only.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrNotJoined        = errors.New("channel not joined")
	ErrAlreadyConnected = errors.New("already connected")
)

// Session is the contract both backends satisfy. Event ordering within one
// channel follows the order the session observes them; across channels there
// is no guarantee.
type Session interface {
	Connect(ctx context.Context, cfg Config) error
	JoinChannel(name string) error
	PartChannel(name string) error
	Send(channel, text string) error
	Subscribe(kind EventKind, h Handler)
	State() ConnState
	Nick() string
	Channels() []string
	Messages(channel string) []Message
	Users(channel string) []string
	Topic(channel string) string
	Close() error
}
