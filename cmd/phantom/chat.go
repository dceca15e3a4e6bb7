package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/Kevthetech143/phantom-irc/internal/ai"
	"github.com/Kevthetech143/phantom-irc/internal/chat"
	"github.com/Kevthetech143/phantom-irc/internal/config"
	"github.com/Kevthetech143/phantom-irc/internal/provider"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// chatApp holds the wiring for one interactive run.
type chatApp struct {
	sess chat.Session
	svc  *ai.Service
	cfg  *config.Config

	mu      sync.Mutex
	current string // active channel for bare-text sends
	qaLog   []ai.QAEntry
}

func (a *chatApp) currentChannel() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *chatApp) setCurrent(ch string) {
	a.mu.Lock()
	a.current = ch
	a.mu.Unlock()
}

func runChat(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if flagServer != "" {
		cfg.Server = flagServer
	}
	if flagNick != "" {
		cfg.Nick = flagNick
	}
	if simulate {
		cfg.Simulate = true
	}
	if cfg.Server == "" {
		cfg.Simulate = true
	}

	app := &chatApp{cfg: cfg}

	if cfg.Simulate {
		simCfg := chat.DefaultSimConfig()
		if cfg.ScriptPath != "" {
			script, err := chat.LoadScript(cfg.ScriptPath)
			if err != nil {
				return err
			}
			simCfg.Script = script
		}
		app.sess = chat.NewSimSession(simCfg, logger)
		if cfg.Server == "" {
			fmt.Println("* no server configured: running against the simulated network")
		} else {
			fmt.Println("* running against the simulated network")
		}
	} else {
		app.sess = chat.NewLiveSession(chat.NewIRCTransport(logger), logger)
	}
	defer app.sess.Close()

	app.svc = ai.NewService(bindAdapter(cfg.APIKey, cfg.Model), logger)
	app.printAIStatus()
	app.subscribePrinters()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.sess.Connect(ctx, chat.Config{
		Server:   cfg.Server,
		Port:     cfg.Port,
		Nick:     cfg.Nick,
		Username: cfg.Username,
		RealName: cfg.RealName,
		UseTLS:   cfg.UseTLS,
	}); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	// Rebind the provider when the config file changes on disk.
	g.Go(func() error {
		err := config.Watch(ctx, configPath, logger, func(updated *config.Config) {
			app.svc.SetAdapter(bindAdapter(updated.APIKey, updated.Model))
			app.printAIStatus()
		})
		if ctx.Err() != nil {
			return nil
		}
		return err
	})

	g.Go(func() error {
		defer stop()
		return app.inputLoop(ctx, os.Stdin)
	})

	return g.Wait()
}

// bindAdapter detects the vendor from the key and applies any configured
// model override.
func bindAdapter(key, model string) provider.Adapter {
	adapter := provider.New(key)
	if adapter != nil && model != "" {
		adapter.SetModel(model)
	}
	return adapter
}

func (a *chatApp) printAIStatus() {
	if !a.svc.Enabled() {
		fmt.Println("* AI features disabled (no API key configured)")
		return
	}
	info := provider.Info(a.svc.Vendor())
	fmt.Printf("* AI features enabled via %s %s\n", info.Glyph, info.Label)
}

// subscribePrinters renders session events to the terminal.
func (a *chatApp) subscribePrinters() {
	self := a.cfg.Nick
	a.sess.Subscribe(chat.EventConnect, func(ev chat.Event) {
		fmt.Printf("* connected as %s\n", ev.Nick)
		for _, ch := range a.cfg.Channels {
			if err := a.sess.JoinChannel(ch); err != nil {
				fmt.Printf("* join %s failed: %v\n", ch, err)
			}
		}
	})
	a.sess.Subscribe(chat.EventMessage, func(ev chat.Event) {
		m := ev.Message
		if m == nil || m.Origin == chat.OriginOwn {
			return
		}
		marker := " "
		if scoreAll && a.svc.Enabled() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			res := a.svc.NotificationPriority(ctx, m.Body, self)
			cancel()
			if res.Priority == ai.PriorityHigh {
				marker = "!"
			}
		} else if self != "" && strings.Contains(strings.ToLower(m.Body), strings.ToLower(self)) {
			marker = "!"
		}
		fmt.Printf("%s[%s] <%s> %s\n", marker, m.Channel, m.From, m.Body)
	})
	a.sess.Subscribe(chat.EventJoin, func(ev chat.Event) {
		fmt.Printf("* %s joined %s\n", ev.Nick, ev.Channel)
		if ev.Nick == self {
			a.setCurrent(ev.Channel)
		}
	})
	a.sess.Subscribe(chat.EventPart, func(ev chat.Event) {
		fmt.Printf("* %s left %s\n", ev.Nick, ev.Channel)
	})
	a.sess.Subscribe(chat.EventUserList, func(ev chat.Event) {
		fmt.Printf("* %s users: %s\n", ev.Channel, strings.Join(ev.Users, " "))
	})
	a.sess.Subscribe(chat.EventTopic, func(ev chat.Event) {
		if ev.Nick == "" {
			fmt.Printf("* %s topic: %s\n", ev.Channel, ev.Topic)
		} else {
			fmt.Printf("* %s set %s topic: %s\n", ev.Nick, ev.Channel, ev.Topic)
		}
	})
	a.sess.Subscribe(chat.EventError, func(ev chat.Event) {
		fmt.Printf("* error: %v\n", ev.Err)
	})
}

// inputLoop reads commands until r closes, /quit, or ctx cancellation. The
// scanner runs on its own goroutine so a blocked read cannot outlive ctx.
func (a *chatApp) inputLoop(ctx context.Context, r io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-scanErr:
			return err
		case raw := <-lines:
			line := strings.TrimSpace(raw)
			if line == "" {
				continue
			}
			if line == "/quit" {
				return nil
			}
			a.dispatch(ctx, line)
		}
	}
}

func (a *chatApp) dispatch(ctx context.Context, line string) {
	if !strings.HasPrefix(line, "/") {
		a.sendChecked(ctx, line)
		return
	}

	cmd, rest, _ := strings.Cut(line[1:], " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "join":
		if rest == "" {
			fmt.Println("usage: /join #channel")
			return
		}
		if err := a.sess.JoinChannel(rest); err != nil {
			fmt.Printf("* join failed: %v\n", err)
		}
	case "part":
		target := rest
		if target == "" {
			target = a.currentChannel()
		}
		if err := a.sess.PartChannel(target); err != nil {
			fmt.Printf("* part failed: %v\n", err)
		} else if target == a.currentChannel() {
			a.setCurrent("")
		}
	case "msg":
		channel, text, ok := strings.Cut(rest, " ")
		if !ok || strings.TrimSpace(text) == "" {
			fmt.Println("usage: /msg #channel <text>")
			return
		}
		if err := a.sess.Send(channel, strings.TrimSpace(text)); err != nil {
			fmt.Printf("* send failed: %v\n", err)
		}
	case "channels":
		fmt.Printf("* joined: %s\n", strings.Join(a.sess.Channels(), " "))
	case "users":
		target := a.currentOr(rest)
		fmt.Printf("* %s users: %s\n", target, strings.Join(a.sess.Users(target), " "))
	case "topic":
		target := a.currentOr(rest)
		if topic := a.sess.Topic(target); topic != "" {
			fmt.Printf("* %s topic: %s\n", target, topic)
		} else {
			fmt.Printf("* %s has no topic\n", target)
		}
	case "force":
		// Send without the spam gate.
		if err := a.sess.Send(a.currentChannel(), rest); err != nil {
			fmt.Printf("* send failed: %v\n", err)
		}
	case "summary":
		target := a.currentOr(rest)
		fmt.Println(a.svc.Summarize(ctx, a.sess.Messages(target), target))
	case "catchup":
		a.printCatchUp(ctx, a.currentOr(rest))
	case "snippets":
		a.printSnippets(ctx, a.currentOr(rest))
	case "ask":
		a.ask(ctx, rest)
	case "providers":
		active := a.svc.Vendor()
		for _, v := range provider.Vendors() {
			info := provider.Info(v)
			mark := " "
			if v == active {
				mark = "*"
			}
			fmt.Printf("%s %s %s (%s)\n", mark, info.Glyph, info.Label, strings.Join(info.Models, ", "))
		}
	case "help":
		fmt.Println("commands: /join /part /msg /channels /users /topic /summary /catchup /snippets /ask /providers /force /quit")
	default:
		fmt.Printf("* unknown command /%s (try /help)\n", cmd)
	}
}

func (a *chatApp) currentOr(arg string) string {
	if arg != "" {
		return arg
	}
	return a.currentChannel()
}

// sendChecked runs the outgoing spam gate, then sends. The gate fails open:
// AI trouble never blocks the message.
func (a *chatApp) sendChecked(ctx context.Context, text string) {
	channel := a.currentChannel()
	if channel == "" {
		fmt.Println("* no active channel (use /join)")
		return
	}
	verdict := a.svc.CheckSpam(ctx, text, channel)
	if verdict.IsSpam && verdict.Confidence >= 75 {
		fmt.Printf("* held: looks like spam (%d%%: %s); use /force to send anyway\n", verdict.Confidence, verdict.Reason)
		return
	}
	if err := a.sess.Send(channel, text); err != nil {
		fmt.Printf("* send failed: %v\n", err)
	}
}

func (a *chatApp) printCatchUp(ctx context.Context, channel string) {
	report := a.svc.CatchUp(ctx, a.sess.Messages(channel), channel)
	fmt.Printf("--- catch-up for %s ---\n", channel)
	if len(report.Topics) > 0 {
		fmt.Printf("topics:    %s\n", strings.Join(report.Topics, "; "))
	}
	if len(report.Decisions) > 0 {
		fmt.Printf("decisions: %s\n", strings.Join(report.Decisions, "; "))
	}
	fmt.Printf("code:      %d snippet(s)\n", report.CodeSnippetCount)
	fmt.Printf("summary:   %s\n", report.Summary)
}

func (a *chatApp) printSnippets(ctx context.Context, channel string) {
	snips := a.svc.ExtractSnippets(ctx, a.sess.Messages(channel))
	if len(snips) == 0 {
		fmt.Println("* no code snippets found")
		return
	}
	for i, s := range snips {
		fmt.Printf("--- snippet %d [%s] by %s (%s: %s) ---\n%s\n", i+1, s.Language, s.Author, s.Category, s.Context, s.Code)
	}
}

// ask answers a question, preferring a previously given answer over a fresh
// completion, and records fresh answers for next time.
func (a *chatApp) ask(ctx context.Context, question string) {
	if question == "" {
		fmt.Println("usage: /ask <question>")
		return
	}
	a.mu.Lock()
	history := make([]ai.QAEntry, len(a.qaLog))
	copy(history, a.qaLog)
	a.mu.Unlock()

	if match := a.svc.FindPastAnswer(ctx, question, history); match.FoundAnswer {
		fmt.Printf("* answered before (%d%% similar): %s\n", match.Similarity, match.Answer)
		return
	}
	if !a.svc.Enabled() {
		fmt.Println("* no past answer, and AI is disabled")
		return
	}
	answer, err := a.svc.Ask(ctx, question)
	if err != nil || answer == "" {
		fmt.Println("* no answer available")
		return
	}
	fmt.Println(answer)
	a.mu.Lock()
	a.qaLog = append(a.qaLog, ai.QAEntry{Question: question, Answer: answer, Author: a.cfg.Nick, Time: time.Now()})
	a.mu.Unlock()
}
