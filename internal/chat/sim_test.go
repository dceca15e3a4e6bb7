package chat

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeClock is a manual clock. Advance moves virtual time and fires due
// timers in order, so simulator tests never sleep.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	when    time.Time
	f       func()
	stopped bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, when: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Advance moves the clock forward, firing timers as their deadlines pass.
// Callbacks run outside the clock lock and may schedule new timers.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.when.After(target) {
				continue
			}
			if next == nil || t.when.Before(next.when) {
				next = t
			}
		}
		if next == nil {
			break
		}
		next.stopped = true
		c.now = next.when
		c.mu.Unlock()
		next.f()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

func simConfig(clock Clock) SimConfig {
	return SimConfig{
		Clock:         clock,
		Rand:          rand.New(rand.NewSource(42)),
		Script:        DefaultScript(),
		ConnectDelay:  300 * time.Millisecond,
		JoinDelay:     150 * time.Millisecond,
		MinMessageGap: time.Second,
		MaxMessageGap: 3 * time.Second,
	}
}

func TestSimConnectLifecycle(t *testing.T) {
	clock := newFakeClock()
	s := NewSimSession(simConfig(clock), nil)
	defer s.Close()

	var connects int
	s.Subscribe(EventConnect, func(Event) { connects++ })

	if err := s.Connect(context.Background(), Config{Nick: "phantom"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if s.State() != Connecting {
		t.Fatalf("state = %v, want Connecting before the delay elapses", s.State())
	}

	clock.Advance(300 * time.Millisecond)
	if s.State() != Connected {
		t.Fatalf("state = %v, want Connected", s.State())
	}
	if connects != 1 {
		t.Errorf("connect events = %d, want 1", connects)
	}
}

func TestSimJoinEmitsRosterAndChatter(t *testing.T) {
	clock := newFakeClock()
	s := NewSimSession(simConfig(clock), nil)
	defer s.Close()

	s.Connect(context.Background(), Config{Nick: "phantom"})
	clock.Advance(300 * time.Millisecond)

	if err := s.JoinChannel("#sim"); err != nil {
		t.Fatalf("JoinChannel: %v", err)
	}
	clock.Advance(150 * time.Millisecond)

	users := s.Users("#sim")
	if len(users) != len(DefaultScript().Personas)+1 {
		t.Errorf("roster = %v", users)
	}
	if got := s.Topic("#sim"); got != DefaultScript().Topic {
		t.Errorf("Topic = %q, want the script topic", got)
	}
	if !sort.StringsAreSorted(users) {
		t.Errorf("Users not sorted: %v", users)
	}

	clock.Advance(10 * time.Second)
	msgs := s.Messages("#sim")
	if len(msgs) == 0 {
		t.Fatal("no simulated chatter after 10s of virtual time")
	}
	personas := make(map[string]bool)
	for _, p := range DefaultScript().Personas {
		personas[p] = true
	}
	for _, m := range msgs {
		if !personas[m.From] {
			t.Errorf("message from unknown persona %q", m.From)
		}
		if m.Origin != OriginReceived {
			t.Errorf("origin = %q, want received", m.Origin)
		}
	}
}

func TestSimDeterministicUnderSeed(t *testing.T) {
	run := func() []string {
		clock := newFakeClock()
		s := NewSimSession(simConfig(clock), nil)
		defer s.Close()
		s.Connect(context.Background(), Config{Nick: "phantom"})
		clock.Advance(300 * time.Millisecond)
		s.JoinChannel("#sim")
		clock.Advance(30 * time.Second)
		var bodies []string
		for _, m := range s.Messages("#sim") {
			bodies = append(bodies, m.From+": "+m.Body)
		}
		return bodies
	}

	a, b := run(), run()
	if len(a) == 0 {
		t.Fatal("no messages generated")
	}
	if len(a) != len(b) {
		t.Fatalf("runs differ in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverge at %d: %q vs %q", i, a[i], b[i])
		}
	}
}

func TestSimPartStopsChatter(t *testing.T) {
	clock := newFakeClock()
	s := NewSimSession(simConfig(clock), nil)
	defer s.Close()

	s.Connect(context.Background(), Config{Nick: "phantom"})
	clock.Advance(300 * time.Millisecond)
	s.JoinChannel("#sim")
	clock.Advance(5 * time.Second)

	if err := s.PartChannel("#sim"); err != nil {
		t.Fatalf("PartChannel: %v", err)
	}
	before := len(s.Messages("#sim"))
	clock.Advance(60 * time.Second)
	if after := len(s.Messages("#sim")); after != before {
		t.Errorf("chatter continued after part: %d -> %d", before, after)
	}
}

func TestSimSendEcho(t *testing.T) {
	clock := newFakeClock()
	s := NewSimSession(simConfig(clock), nil)
	defer s.Close()

	s.Connect(context.Background(), Config{Nick: "phantom"})
	clock.Advance(300 * time.Millisecond)
	s.JoinChannel("#sim")
	clock.Advance(150 * time.Millisecond)

	if err := s.Send("#sim", "hello sim"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	msgs := s.Messages("#sim")
	last := msgs[len(msgs)-1]
	if last.Origin != OriginOwn || last.From != "phantom" || last.Body != "hello sim" {
		t.Errorf("own echo = %+v", last)
	}
}

// Chatter timers for separate channels fire on independent goroutines under
// the real clock; the race detector covers the shared Rand here.
func TestSimChatterConcurrentChannels(t *testing.T) {
	cfg := SimConfig{
		Clock:         SystemClock(),
		Rand:          rand.New(rand.NewSource(7)),
		Script:        DefaultScript(),
		ConnectDelay:  time.Millisecond,
		JoinDelay:     time.Millisecond,
		MinMessageGap: time.Millisecond,
		MaxMessageGap: 2 * time.Millisecond,
	}
	s := NewSimSession(cfg, nil)
	defer s.Close()

	if err := s.Connect(context.Background(), Config{Nick: "phantom"}); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	deadline := time.Now().Add(time.Second)
	for s.State() != Connected {
		if time.Now().After(deadline) {
			t.Fatal("never connected")
		}
		time.Sleep(time.Millisecond)
	}

	channels := []string{"#a", "#b", "#c", "#d"}
	for _, ch := range channels {
		if err := s.JoinChannel(ch); err != nil {
			t.Fatalf("JoinChannel %s: %v", ch, err)
		}
	}

	time.Sleep(50 * time.Millisecond)
	s.Close()
	time.Sleep(10 * time.Millisecond)

	for _, ch := range channels {
		if len(s.Messages(ch)) == 0 {
			t.Errorf("no chatter in %s", ch)
		}
	}
}

func TestSimEmptyScriptFallsBack(t *testing.T) {
	clock := newFakeClock()
	cfg := simConfig(clock)
	cfg.Script = &Script{}
	s := NewSimSession(cfg, nil)
	defer s.Close()

	s.Connect(context.Background(), Config{Nick: "phantom"})
	clock.Advance(300 * time.Millisecond)
	if err := s.JoinChannel("#sim"); err != nil {
		t.Fatalf("JoinChannel: %v", err)
	}
	clock.Advance(150 * time.Millisecond)
	clock.Advance(10 * time.Second)
	if len(s.Messages("#sim")) == 0 {
		t.Fatal("no chatter with an empty script")
	}
	if got := s.Topic("#sim"); got != DefaultScript().Topic {
		t.Errorf("Topic = %q, want the built-in topic", got)
	}
}

func TestSimJoinBeforeConnect(t *testing.T) {
	s := NewSimSession(simConfig(newFakeClock()), nil)
	defer s.Close()
	if err := s.JoinChannel("#sim"); err != ErrNotConnected {
		t.Errorf("JoinChannel = %v, want ErrNotConnected", err)
	}
}

func TestSimCloseCancelsTimers(t *testing.T) {
	clock := newFakeClock()
	s := NewSimSession(simConfig(clock), nil)
	s.Connect(context.Background(), Config{Nick: "phantom"})
	clock.Advance(300 * time.Millisecond)
	s.JoinChannel("#sim")

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	clock.Advance(time.Hour)
	if got := len(s.Messages("#sim")); got != 0 {
		t.Errorf("events after Close: %d messages", got)
	}
	if s.State() != Disconnected {
		t.Errorf("state = %v, want Disconnected", s.State())
	}
}

func TestLoadScript(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.yaml")
	content := "personas: [alice, bob]\nlines:\n  - hi there\n  - ship it\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadScript(path)
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	if len(s.Personas) != 2 || len(s.Lines) != 2 {
		t.Errorf("script = %+v", s)
	}

	if _, err := LoadScript(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	empty := filepath.Join(dir, "empty.yaml")
	os.WriteFile(empty, []byte("personas: []\nlines: []\n"), 0o644)
	if _, err := LoadScript(empty); err == nil {
		t.Error("expected error for empty script")
	}
}
