package main

import (
	"fmt"
	"strings"

	"github.com/Kevthetech143/phantom-irc/internal/config"
	"github.com/Kevthetech143/phantom-irc/internal/provider"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	providerHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	providerCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	providerDimStyle    = lipgloss.NewStyle().Faint(true).Padding(0, 1)
	providerBoxStyle    = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#5A5A5A")).
				Padding(0, 1)
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported AI providers",
	Long:  "Show all AI providers phantom can bind, their models, and which one the configured key selects.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		active := provider.Detect(cfg.APIKey)

		rows := []string{
			providerHeaderStyle.Render("  provider") +
				providerHeaderStyle.Render("models"),
		}
		for _, v := range provider.Vendors() {
			info := provider.Info(v)
			glyph := lipgloss.NewStyle().
				Foreground(lipgloss.Color(info.Accent)).
				Render(info.Glyph)
			label := providerCellStyle.Render(info.Label)
			if v == active {
				label = providerCellStyle.Bold(true).Render(info.Label + " (active)")
			}
			rows = append(rows,
				glyph+label+providerDimStyle.Render(strings.Join(info.Models, ", ")))
		}

		fmt.Fprintln(cmd.OutOrStdout(), providerBoxStyle.Render(strings.Join(rows, "\n")))
		if active == provider.VendorNone {
			fmt.Fprintln(cmd.OutOrStdout(), "no API key configured; AI features will be disabled")
		}
		return nil
	},
}
