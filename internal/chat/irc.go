package chat

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	irc "github.com/thoj/go-ircevent"
	"go.uber.org/zap"
)

// ircTransport adapts go-ircevent to the Transport contract.
type ircTransport struct {
	conn   *irc.Connection
	logger *zap.Logger
}

// NewIRCTransport returns a Transport backed by the IRC protocol library.
func NewIRCTransport(logger *zap.Logger) Transport {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ircTransport{logger: logger}
}

func (t *ircTransport) Connect(ctx context.Context, cfg Config, hooks TransportHooks) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	username := cfg.Username
	if username == "" {
		username = cfg.Nick
	}
	conn := irc.IRC(cfg.Nick, username)
	conn.RealName = cfg.RealName
	conn.UseTLS = cfg.UseTLS
	if cfg.UseTLS {
		conn.TLSConfig = &tls.Config{ServerName: cfg.Server}
	}

	conn.AddCallback("001", func(e *irc.Event) {
		if hooks.OnRegistered != nil {
			hooks.OnRegistered()
		}
	})
	conn.AddCallback("PRIVMSG", func(e *irc.Event) {
		if hooks.OnMessage != nil && len(e.Arguments) > 0 {
			hooks.OnMessage(e.Nick, e.Arguments[0], e.Message())
		}
	})
	conn.AddCallback("JOIN", func(e *irc.Event) {
		if hooks.OnJoin != nil {
			hooks.OnJoin(e.Nick, eventChannel(e))
		}
	})
	conn.AddCallback("PART", func(e *irc.Event) {
		if hooks.OnPart != nil {
			hooks.OnPart(e.Nick, eventChannel(e))
		}
	})
	// RPL_NAMREPLY: full roster snapshot for a channel.
	conn.AddCallback("353", func(e *irc.Event) {
		if hooks.OnUserList == nil || len(e.Arguments) < 4 {
			return
		}
		channel := e.Arguments[2]
		users := strings.Fields(e.Message())
		for i, u := range users {
			users[i] = strings.TrimLeft(u, "@+%&~")
		}
		hooks.OnUserList(channel, users)
	})
	// RPL_TOPIC: topic announced on join.
	conn.AddCallback("332", func(e *irc.Event) {
		if hooks.OnTopic != nil && len(e.Arguments) >= 2 {
			hooks.OnTopic("", e.Arguments[1], e.Message())
		}
	})
	conn.AddCallback("TOPIC", func(e *irc.Event) {
		if hooks.OnTopic != nil && len(e.Arguments) > 0 {
			hooks.OnTopic(e.Nick, e.Arguments[0], e.Message())
		}
	})
	conn.AddCallback("ERROR", func(e *irc.Event) {
		if hooks.OnError != nil {
			hooks.OnError(fmt.Errorf("server error: %s", e.Message()))
		}
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server, cfg.Port)
	t.logger.Info("dialing", zap.String("addr", addr), zap.String("nick", cfg.Nick))
	if err := conn.Connect(addr); err != nil {
		return fmt.Errorf("connect %s: %w", addr, err)
	}
	t.conn = conn

	go conn.Loop()
	go func() {
		for err := range conn.ErrorChan() {
			if hooks.OnDisconnect != nil {
				hooks.OnDisconnect(err)
			}
			return
		}
	}()
	return nil
}

// eventChannel extracts the channel from a JOIN/PART event; some servers send
// it as a trailing parameter.
func eventChannel(e *irc.Event) string {
	if len(e.Arguments) > 0 && strings.HasPrefix(e.Arguments[0], "#") {
		return e.Arguments[0]
	}
	return e.Message()
}

func (t *ircTransport) Join(channel string) {
	if t.conn != nil {
		t.conn.Join(channel)
	}
}

func (t *ircTransport) Part(channel string) {
	if t.conn != nil {
		t.conn.Part(channel)
	}
}

func (t *ircTransport) Say(channel, text string) {
	if t.conn != nil {
		t.conn.Privmsg(channel, text)
	}
}

func (t *ircTransport) Quit(reason string) {
	if t.conn == nil {
		return
	}
	if reason != "" {
		t.conn.QuitMessage = reason
	}
	t.conn.Quit()
}
