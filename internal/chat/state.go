package chat

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// channelRec is the session store's record for one channel. The message log
// outlives membership: parting clears the roster but keeps cached history.
type channelRec struct {
	name  string
	topic string
	state ChannelState
	users map[string]struct{}
	msgs  []Message
}

// sessionState is the bookkeeping shared by both backends. It is the single
// writer for channel, message and roster state; backends feed it transport or
// simulated events and it applies them in arrival order.
type sessionState struct {
	mu       sync.Mutex
	conn     ConnState
	nick     string
	channels map[string]*channelRec
	subs     map[EventKind][]Handler
	logger   *zap.Logger
	now      func() time.Time
}

func newSessionState(logger *zap.Logger) sessionState {
	if logger == nil {
		logger = zap.NewNop()
	}
	return sessionState{
		channels: make(map[string]*channelRec),
		subs:     make(map[EventKind][]Handler),
		logger:   logger,
		now:      time.Now,
	}
}

// Subscribe registers a handler for one event kind. Handlers accumulate;
// registering twice means being called twice.
func (s *sessionState) Subscribe(kind EventKind, h Handler) {
	if h == nil {
		return
	}
	s.mu.Lock()
	s.subs[kind] = append(s.subs[kind], h)
	s.mu.Unlock()
}

// emit delivers an event to its subscribers. Handlers run outside the lock so
// they may call back into the session.
func (s *sessionState) emit(ev Event) {
	s.mu.Lock()
	handlers := make([]Handler, len(s.subs[ev.Kind]))
	copy(handlers, s.subs[ev.Kind])
	s.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

func (s *sessionState) State() ConnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn
}

func (s *sessionState) Nick() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nick
}

// Channels lists channels currently joined or being joined, sorted by name.
func (s *sessionState) Channels() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.channels))
	for name, rec := range s.channels {
		if rec.state != NotJoined {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Messages returns a copy of the channel's message log in insertion order.
// Cached history survives parting the channel.
func (s *sessionState) Messages(channel string) []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.channels[channel]
	if !ok {
		return nil
	}
	out := make([]Message, len(rec.msgs))
	copy(out, rec.msgs)
	return out
}

// Users returns the channel's roster, sorted.
func (s *sessionState) Users(channel string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.channels[channel]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(rec.users))
	for u := range rec.users {
		out = append(out, u)
	}
	sort.Strings(out)
	return out
}

// Topic returns the channel's last seen topic, empty when none was announced.
func (s *sessionState) Topic(channel string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.channels[channel]
	if !ok {
		return ""
	}
	return rec.topic
}

func (s *sessionState) setConn(c ConnState) {
	s.mu.Lock()
	s.conn = c
	s.mu.Unlock()
}

// channel returns the record for name, creating it lazily.
func (s *sessionState) channel(name string) *channelRec {
	rec, ok := s.channels[name]
	if !ok {
		rec = &channelRec{name: name, users: make(map[string]struct{})}
		s.channels[name] = rec
	}
	return rec
}

// beginJoin moves a channel to Joining. Reports false when the channel is
// already joined or joining (idempotent no-op).
func (s *sessionState) beginJoin(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := s.channel(name)
	if rec.state != NotJoined {
		return false
	}
	rec.state = Joining
	return true
}

// handleRegistered applies the connection-established event.
func (s *sessionState) handleRegistered() {
	s.setConn(Connected)
	s.logger.Info("session connected", zap.String("nick", s.Nick()))
	s.emit(Event{Kind: EventConnect, Nick: s.Nick()})
}

// handleMessage appends an inbound message to its target channel's log,
// creating the log lazily. Insertion order is message order.
func (s *sessionState) handleMessage(nick, target, body string, origin Origin) {
	msg := Message{
		ID:      uuid.NewString(),
		From:    nick,
		Channel: target,
		Body:    body,
		Time:    s.now(),
		Origin:  origin,
	}
	s.mu.Lock()
	rec := s.channel(target)
	rec.msgs = append(rec.msgs, msg)
	s.mu.Unlock()
	s.emit(Event{Kind: EventMessage, Nick: nick, Channel: target, Message: &msg})
}

// handleJoin applies a join: our own join confirms membership, someone else's
// join adds them to the roster.
func (s *sessionState) handleJoin(nick, channel string) {
	s.mu.Lock()
	rec := s.channel(channel)
	if nick == s.nick {
		rec.state = Joined
	} else {
		rec.users[nick] = struct{}{}
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventJoin, Nick: nick, Channel: channel})
}

// handlePart applies a part: our own part drops membership and the roster but
// keeps cached history; someone else's part removes them from the roster.
func (s *sessionState) handlePart(nick, channel string) {
	s.mu.Lock()
	rec, ok := s.channels[channel]
	if ok {
		if nick == s.nick {
			rec.state = NotJoined
			rec.users = make(map[string]struct{})
		} else {
			delete(rec.users, nick)
		}
	}
	s.mu.Unlock()
	if ok {
		s.emit(Event{Kind: EventPart, Nick: nick, Channel: channel})
	}
}

// handleUserList replaces the channel roster with a full snapshot. Until one
// arrives the roster is whatever incremental joins/parts built up.
func (s *sessionState) handleUserList(channel string, users []string) {
	s.mu.Lock()
	rec := s.channel(channel)
	rec.users = make(map[string]struct{}, len(users))
	for _, u := range users {
		if u != "" {
			rec.users[u] = struct{}{}
		}
	}
	s.mu.Unlock()
	s.emit(Event{Kind: EventUserList, Channel: channel, Users: users})
}

// handleTopic records a topic announcement or change. nick is empty for the
// initial announcement sent on join.
func (s *sessionState) handleTopic(nick, channel, topic string) {
	s.mu.Lock()
	rec := s.channel(channel)
	rec.topic = topic
	s.mu.Unlock()
	s.emit(Event{Kind: EventTopic, Nick: nick, Channel: channel, Topic: topic})
}

// handleError surfaces a soft error without touching connection state.
func (s *sessionState) handleError(err error) {
	s.logger.Warn("session error", zap.Error(err))
	s.emit(Event{Kind: EventError, Err: err})
}

// handleDisconnect applies a fatal transport loss.
func (s *sessionState) handleDisconnect(err error) {
	s.setConn(Disconnected)
	if err != nil {
		s.logger.Warn("transport lost", zap.Error(err))
		s.emit(Event{Kind: EventError, Err: err})
	}
}

// sendLocal validates preconditions and appends the own-origin echo. The
// returned message is what the backend should deliver; on error nothing was
// appended.
func (s *sessionState) sendLocal(channel, text string) (Message, error) {
	s.mu.Lock()
	if s.conn != Connected {
		s.mu.Unlock()
		return Message{}, ErrNotConnected
	}
	rec, ok := s.channels[channel]
	if !ok || rec.state != Joined {
		s.mu.Unlock()
		return Message{}, ErrNotJoined
	}
	msg := Message{
		ID:      uuid.NewString(),
		From:    s.nick,
		Channel: channel,
		Body:    text,
		Time:    s.now(),
		Origin:  OriginOwn,
	}
	rec.msgs = append(rec.msgs, msg)
	s.mu.Unlock()
	s.emit(Event{Kind: EventMessage, Nick: msg.From, Channel: channel, Message: &msg})
	return msg, nil
}
