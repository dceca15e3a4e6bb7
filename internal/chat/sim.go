package chat

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// SimConfig tunes the simulated backend. Clock and Rand are the determinism
// seams: tests substitute a manual clock and a seeded source.
type SimConfig struct {
	Clock         Clock
	Rand          *rand.Rand
	Script        *Script
	ConnectDelay  time.Duration
	JoinDelay     time.Duration
	MinMessageGap time.Duration
	MaxMessageGap time.Duration
}

// DefaultSimConfig returns the production simulation settings.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Clock:         SystemClock(),
		Rand:          rand.New(rand.NewSource(time.Now().UnixNano())),
		Script:        DefaultScript(),
		ConnectDelay:  300 * time.Millisecond,
		JoinDelay:     150 * time.Millisecond,
		MinMessageGap: 2 * time.Second,
		MaxMessageGap: 9 * time.Second,
	}
}

// SimSession is the self-simulating backend. It manufactures the same event
// sequence a live transport would deliver, on delays driven through the Clock
// seam, and satisfies the identical Session contract.
type SimSession struct {
	sessionState
	cfg    SimConfig
	timers map[int]Timer
	nextID int
	closed bool
}

// NewSimSession builds a simulated session.
func NewSimSession(cfg SimConfig, logger *zap.Logger) *SimSession {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock()
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Script == nil || len(cfg.Script.Personas) == 0 || len(cfg.Script.Lines) == 0 {
		cfg.Script = DefaultScript()
	}
	if cfg.MaxMessageGap < cfg.MinMessageGap {
		cfg.MaxMessageGap = cfg.MinMessageGap
	}
	s := &SimSession{
		sessionState: newSessionState(logger),
		cfg:          cfg,
		timers:       make(map[int]Timer),
	}
	s.now = cfg.Clock.Now
	return s
}

// schedule registers a timer that is cancelled by Close.
func (s *SimSession) schedule(d time.Duration, f func()) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	id := s.nextID
	s.nextID++
	t := s.cfg.Clock.AfterFunc(d, func() {
		s.mu.Lock()
		_, live := s.timers[id]
		delete(s.timers, id)
		closed := s.closed
		s.mu.Unlock()
		if live && !closed {
			f()
		}
	})
	s.timers[id] = t
	s.mu.Unlock()
}

// Connect starts the simulated registration handshake.
func (s *SimSession) Connect(ctx context.Context, cfg Config) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	if s.conn != Disconnected {
		s.mu.Unlock()
		return ErrAlreadyConnected
	}
	s.conn = Connecting
	s.nick = cfg.Nick
	s.mu.Unlock()

	s.logger.Info("simulated connect", zap.String("nick", cfg.Nick))
	s.schedule(s.cfg.ConnectDelay, s.handleRegistered)
	return nil
}

// JoinChannel simulates the join handshake: a join echo, a roster snapshot,
// then ambient chatter for the channel.
func (s *SimSession) JoinChannel(name string) error {
	if s.State() != Connected {
		return ErrNotConnected
	}
	name = strings.TrimSpace(name)
	if !s.beginJoin(name) {
		return nil
	}
	s.schedule(s.cfg.JoinDelay, func() {
		if s.State() != Connected {
			return
		}
		s.handleJoin(s.Nick(), name)
		if s.cfg.Script.Topic != "" {
			s.handleTopic("", name, s.cfg.Script.Topic)
		}
		roster := append([]string{s.Nick()}, s.cfg.Script.Personas...)
		s.handleUserList(name, roster)
		s.scheduleChatter(name)
	})
	return nil
}

// scheduleChatter emits one simulated message after a randomized gap and
// re-arms itself while the channel stays joined. Each joined channel runs its
// own timer chain against the one shared Rand, which is not safe for
// concurrent use, so every draw happens under the session lock.
func (s *SimSession) scheduleChatter(channel string) {
	s.mu.Lock()
	gap := s.cfg.MinMessageGap
	if spread := s.cfg.MaxMessageGap - s.cfg.MinMessageGap; spread > 0 {
		gap += time.Duration(s.cfg.Rand.Int63n(int64(spread)))
	}
	s.mu.Unlock()
	s.schedule(gap, func() {
		s.mu.Lock()
		rec, ok := s.channels[channel]
		joined := ok && rec.state == Joined
		connected := s.conn == Connected
		var persona, line string
		if joined && connected {
			persona = s.cfg.Script.Personas[s.cfg.Rand.Intn(len(s.cfg.Script.Personas))]
			line = s.cfg.Script.Lines[s.cfg.Rand.Intn(len(s.cfg.Script.Lines))]
		}
		s.mu.Unlock()
		if !joined || !connected {
			return
		}
		s.handleMessage(persona, channel, line, OriginReceived)
		s.scheduleChatter(channel)
	})
}

// PartChannel leaves a simulated channel; parting a never-joined channel is a
// no-op. The chatter loop stops once membership drops.
func (s *SimSession) PartChannel(name string) error {
	s.mu.Lock()
	rec, ok := s.channels[name]
	joined := ok && rec.state != NotJoined
	s.mu.Unlock()
	if !joined {
		return nil
	}
	s.handlePart(s.Nick(), name)
	return nil
}

// Send appends the own-origin echo; there is no network to deliver to.
func (s *SimSession) Send(channel, text string) error {
	_, err := s.sendLocal(channel, text)
	return err
}

// Close cancels all pending simulated activity.
func (s *SimSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.conn = Disconnected
	timers := s.timers
	s.timers = make(map[int]Timer)
	s.mu.Unlock()
	for _, t := range timers {
		t.Stop()
	}
	return nil
}

var _ Session = (*SimSession)(nil)
