package main

import (
	"fmt"
	"os"

	"github.com/Kevthetech143/phantom-irc/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "dev"

var (
	// Global flags
	configPath string
	verbose    bool
	flagServer string
	flagNick   string
	simulate   bool
	scoreAll   bool

	// Logger
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "phantom",
	Short: "phantom - an IRC client with an AI copilot",
	Long: `phantom is a terminal IRC client that layers AI features over the
conversation: spam screening before you send, channel summaries, catch-up
digests, code-snippet cataloguing and prior-answer lookup.

Paste any supported AI API key into the config and the vendor is detected
from the key format alone. Without a key, phantom is just a chat client.
Without a server, phantom runs against a simulated network.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		cfg.OutputPaths = []string{logFilePath()}
		cfg.ErrorOutputPaths = cfg.OutputPaths
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat(cmd)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the phantom version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("phantom %s\n", version)
	},
}

// logFilePath keeps zap output out of the interactive terminal.
func logFilePath() string {
	dir := os.TempDir()
	if home, err := os.UserHomeDir(); err == nil {
		d := home + "/.phantom"
		if err := os.MkdirAll(d, 0o755); err == nil {
			dir = d
		}
	}
	return dir + "/phantom.log"
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().StringVar(&flagServer, "server", "", "IRC server (overrides config)")
	rootCmd.Flags().StringVar(&flagNick, "nick", "", "nickname (overrides config)")
	rootCmd.Flags().BoolVar(&simulate, "simulate", false, "use the simulated network backend")
	rootCmd.Flags().BoolVar(&scoreAll, "score-notifications", false, "rate every incoming message's priority with the AI provider")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(providersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
