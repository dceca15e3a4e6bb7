package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// LiveSession is the transport-driven backend: every session event is a
// direct mapping of a transport primitive.
type LiveSession struct {
	sessionState
	transport Transport
}

// NewLiveSession wraps a transport in the Session contract.
func NewLiveSession(transport Transport, logger *zap.Logger) *LiveSession {
	return &LiveSession{
		sessionState: newSessionState(logger),
		transport:    transport,
	}
}

// Connect dials the transport. On failure the session stays Disconnected and
// an error event is emitted; there is no automatic retry.
func (s *LiveSession) Connect(ctx context.Context, cfg Config) error {
	s.mu.Lock()
	if s.conn != Disconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.conn = Connecting
	s.nick = cfg.Nick
	s.mu.Unlock()

	hooks := TransportHooks{
		OnRegistered: s.handleRegistered,
		OnMessage: func(nick, target, body string) {
			s.handleMessage(nick, target, body, OriginReceived)
		},
		OnJoin:       s.handleJoin,
		OnPart:       s.handlePart,
		OnUserList:   s.handleUserList,
		OnTopic:      s.handleTopic,
		OnError:      s.handleError,
		OnDisconnect: s.handleDisconnect,
	}
	if err := s.transport.Connect(ctx, cfg, hooks); err != nil {
		s.setConn(Disconnected)
		s.handleError(err)
		return err
	}
	return nil
}

// JoinChannel asks the transport to join. Valid only when connected; joining
// an already-joined channel is a no-op. Membership is confirmed when the
// transport echoes our own join.
func (s *LiveSession) JoinChannel(name string) error {
	if s.State() != Connected {
		return ErrNotConnected
	}
	name = strings.TrimSpace(name)
	if !s.beginJoin(name) {
		return nil
	}
	s.logger.Debug("joining channel", zap.String("channel", name))
	s.transport.Join(name)
	return nil
}

// PartChannel leaves a channel. Parting a channel that was never joined is a
// no-op, not an error.
func (s *LiveSession) PartChannel(name string) error {
	s.mu.Lock()
	rec, ok := s.channels[name]
	joined := ok && rec.state != NotJoined
	s.mu.Unlock()
	if !joined {
		return nil
	}
	s.transport.Part(name)
	s.handlePart(s.Nick(), name)
	return nil
}

// Send appends the own-origin echo synchronously, then hands the line to the
// transport. The local log never waits for a network acknowledgment.
func (s *LiveSession) Send(channel, text string) error {
	msg, err := s.sendLocal(channel, text)
	if err != nil {
		return err
	}
	s.transport.Say(msg.Channel, msg.Body)
	return nil
}

// Close quits the transport and ends the session.
func (s *LiveSession) Close() error {
	if s.State() != Disconnected {
		s.transport.Quit("")
	}
	s.setConn(Disconnected)
	return nil
}

var _ Session = (*LiveSession)(nil)
